package service

import (
	"context"

	"yatube/internal/middleware"
	"yatube/internal/models"
	"yatube/internal/observability"
	"yatube/internal/repository"
)

// FollowService manages the directed follower -> author graph. Follow and
// Unfollow are idempotent and following yourself is a no-op.
type FollowService struct {
	follows repository.FollowRepository
	users   repository.UserRepository
}

func NewFollowService(follows repository.FollowRepository, users repository.UserRepository) *FollowService {
	return &FollowService{follows: follows, users: users}
}

// Follow adds the edge follower -> author. It reports whether an edge was created.
func (s *FollowService) Follow(ctx context.Context, followerID, authorID uint) (bool, error) {
	if followerID == 0 || followerID == authorID {
		return false, nil
	}
	created, err := s.follows.Create(ctx, followerID, authorID)
	if err != nil {
		return false, err
	}
	if created {
		observability.FollowChanges.WithLabelValues("follow").Inc()
		middleware.Logger.InfoContext(ctx, "follow created", "author_id", authorID)
	}
	return created, nil
}

// Unfollow removes the edge if present. It reports whether an edge was removed.
func (s *FollowService) Unfollow(ctx context.Context, followerID, authorID uint) (bool, error) {
	if followerID == 0 || followerID == authorID {
		return false, nil
	}
	removed, err := s.follows.Delete(ctx, followerID, authorID)
	if err != nil {
		return false, err
	}
	if removed {
		observability.FollowChanges.WithLabelValues("unfollow").Inc()
	}
	return removed, nil
}

func (s *FollowService) IsFollowing(ctx context.Context, followerID, authorID uint) (bool, error) {
	if followerID == 0 || followerID == authorID {
		return false, nil
	}
	return s.follows.Exists(ctx, followerID, authorID)
}

// FollowedAuthorIDs returns the set of authors userID follows. The result
// is never nil, so it can be used directly as a post author filter.
func (s *FollowService) FollowedAuthorIDs(ctx context.Context, userID uint) ([]uint, error) {
	ids, err := s.follows.FollowedAuthorIDs(ctx, userID)
	if err != nil {
		return nil, err
	}
	if ids == nil {
		ids = []uint{}
	}
	return ids, nil
}

// Counts returns how many users follow userID and how many userID follows.
func (s *FollowService) Counts(ctx context.Context, userID uint) (followers, following int64, err error) {
	if followers, err = s.follows.CountFollowers(ctx, userID); err != nil {
		return 0, 0, err
	}
	if following, err = s.follows.CountFollowing(ctx, userID); err != nil {
		return 0, 0, err
	}
	return followers, following, nil
}

// FollowUsername resolves username and follows it.
func (s *FollowService) FollowUsername(ctx context.Context, followerID uint, username string) (*models.User, bool, error) {
	author, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, false, err
	}
	created, err := s.Follow(ctx, followerID, author.ID)
	return author, created, err
}

// UnfollowUsername resolves username and unfollows it.
func (s *FollowService) UnfollowUsername(ctx context.Context, followerID uint, username string) (*models.User, bool, error) {
	author, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, false, err
	}
	removed, err := s.Unfollow(ctx, followerID, author.ID)
	return author, removed, err
}
