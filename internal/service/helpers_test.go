package service

import (
	"testing"

	"yatube/internal/repository"
	"yatube/internal/testutil"

	"gorm.io/gorm"
)

type services struct {
	db      *gorm.DB
	feeds   *FeedService
	posts   *PostService
	follows *FollowService
	account *AccountService
}

func newServices(t *testing.T, perPage int) *services {
	t.Helper()
	db := testutil.NewSQLiteDB(t)

	postRepo := repository.NewPostRepository(db)
	userRepo := repository.NewUserRepository(db)
	groupRepo := repository.NewGroupRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	followRepo := repository.NewFollowRepository(db)

	follows := NewFollowService(followRepo, userRepo)
	return &services{
		db:      db,
		feeds:   NewFeedService(postRepo, userRepo, groupRepo, commentRepo, follows, perPage),
		posts:   NewPostService(postRepo, commentRepo, groupRepo),
		follows: follows,
		account: NewAccountService(userRepo).WithHashCost(4),
	}
}

func postIDs(page PostPage) []uint {
	ids := make([]uint, 0, len(page.Items))
	for _, p := range page.Items {
		ids = append(ids, p.ID)
	}
	return ids
}
