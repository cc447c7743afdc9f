package repository

import (
	"context"
	"testing"
	"time"

	"yatube/internal/models"
	"yatube/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommentRepository_ListByPostNewestFirst(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	repo := NewCommentRepository(db)
	ctx := context.Background()

	alice := testutil.CreateUser(t, db, "alice")
	bob := testutil.CreateUser(t, db, "bob")
	post := testutil.CreatePost(t, db, alice, "hello")
	other := testutil.CreatePost(t, db, alice, "other")

	ts := time.Now().UTC()
	first := &models.Comment{PostID: post.ID, AuthorID: bob.ID, Text: "first", CreatedAt: ts.Add(-time.Minute)}
	second := &models.Comment{PostID: post.ID, AuthorID: alice.ID, Text: "second", CreatedAt: ts}
	require.NoError(t, repo.Create(ctx, first))
	require.NoError(t, repo.Create(ctx, second))
	require.NoError(t, repo.Create(ctx, &models.Comment{PostID: other.ID, AuthorID: bob.ID, Text: "elsewhere"}))

	comments, err := repo.ListByPost(ctx, post.ID)
	require.NoError(t, err)
	require.Len(t, comments, 2)
	assert.Equal(t, "second", comments[0].Text)
	assert.Equal(t, "first", comments[1].Text)
	require.NotNil(t, comments[1].Author)
	assert.Equal(t, "bob", comments[1].Author.Username)

	none, err := repo.ListByPost(ctx, 9999)
	require.NoError(t, err)
	assert.Empty(t, none)
}
