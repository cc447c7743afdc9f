// Package testutil provides shared test doubles and fixtures for backend tests.
package testutil

import (
	"fmt"
	"testing"
	"time"

	"yatube/internal/database"
	"yatube/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// NewSQLiteDB opens an isolated in-memory database with the full schema migrated.
// Every handle shares one connection, so code under test must use the tx it is
// given inside gorm Transaction callbacks.
func NewSQLiteDB(t testing.TB) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=on", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), database.GormConfig())
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, database.AutoMigrate(db))
	return db
}

// NewRedis starts a miniredis server and returns it with a connected client.
func NewRedis(t testing.TB) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

// CreateUser inserts a user with a placeholder password hash.
func CreateUser(t testing.TB, db *gorm.DB, username string) *models.User {
	t.Helper()
	u := &models.User{Username: username, Password: "!"}
	require.NoError(t, db.Create(u).Error)
	return u
}

// CreateGroup inserts a group.
func CreateGroup(t testing.TB, db *gorm.DB, slug, title string) *models.Group {
	t.Helper()
	g := &models.Group{Slug: slug, Title: title, Description: title + " description"}
	require.NoError(t, db.Create(g).Error)
	return g
}

// PostOption customizes CreatePost.
type PostOption func(*models.Post)

// InGroup publishes the post in g.
func InGroup(g *models.Group) PostOption {
	return func(p *models.Post) { p.GroupID = &g.ID }
}

// At pins the creation timestamp.
func At(ts time.Time) PostOption {
	return func(p *models.Post) { p.CreatedAt = ts.UTC() }
}

// CreatePost inserts a post authored by author.
func CreatePost(t testing.TB, db *gorm.DB, author *models.User, text string, opts ...PostOption) *models.Post {
	t.Helper()
	p := &models.Post{Text: text}
	if author != nil {
		p.AuthorID = &author.ID
	}
	for _, opt := range opts {
		opt(p)
	}
	require.NoError(t, db.Create(p).Error)
	return p
}

// CreatePosts inserts n posts one second apart, oldest first, and returns them
// in that order.
func CreatePosts(t testing.TB, db *gorm.DB, author *models.User, n int, opts ...PostOption) []*models.Post {
	t.Helper()
	base := time.Now().UTC().Add(-time.Duration(n) * time.Second)
	out := make([]*models.Post, 0, n)
	for i := 0; i < n; i++ {
		all := append([]PostOption{At(base.Add(time.Duration(i) * time.Second))}, opts...)
		out = append(out, CreatePost(t, db, author, fmt.Sprintf("post %d", i+1), all...))
	}
	return out
}

// Follow inserts a follow edge.
func Follow(t testing.TB, db *gorm.DB, user, author *models.User) {
	t.Helper()
	require.NoError(t, db.Create(&models.Follow{UserID: user.ID, AuthorID: author.ID}).Error)
}
