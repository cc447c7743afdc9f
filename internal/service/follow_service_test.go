package service

import (
	"context"
	"testing"

	"yatube/internal/models"
	"yatube/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func countFollows(t *testing.T, s *services) int64 {
	t.Helper()
	var n int64
	require.NoError(t, s.db.Model(&models.Follow{}).Count(&n).Error)
	return n
}

func TestFollowService_Scenario(t *testing.T) {
	s := newServices(t, 10)
	ctx := context.Background()
	alice := testutil.CreateUser(t, s.db, "alice")
	bob := testutil.CreateUser(t, s.db, "bob")

	_, created, err := s.follows.FollowUsername(ctx, bob.ID, "alice")
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, int64(1), countFollows(t, s))

	_, created, err = s.follows.FollowUsername(ctx, bob.ID, "alice")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, int64(1), countFollows(t, s))

	following, err := s.follows.IsFollowing(ctx, bob.ID, alice.ID)
	require.NoError(t, err)
	assert.True(t, following)

	authors, err := s.follows.FollowedAuthorIDs(ctx, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, []uint{alice.ID}, authors)

	followers, followingCount, err := s.follows.Counts(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), followers)
	assert.Zero(t, followingCount)

	_, removed, err := s.follows.UnfollowUsername(ctx, bob.ID, "alice")
	require.NoError(t, err)
	assert.True(t, removed)
	assert.Zero(t, countFollows(t, s))

	_, removed, err = s.follows.UnfollowUsername(ctx, bob.ID, "alice")
	require.NoError(t, err)
	assert.False(t, removed)

	_, created, err = s.follows.FollowUsername(ctx, bob.ID, "bob")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Zero(t, countFollows(t, s))

	following, err = s.follows.IsFollowing(ctx, bob.ID, bob.ID)
	require.NoError(t, err)
	assert.False(t, following)

	authors, err = s.follows.FollowedAuthorIDs(ctx, bob.ID)
	require.NoError(t, err)
	assert.NotNil(t, authors, "an empty set still filters")
	assert.Empty(t, authors)
}

func TestFollowService_UnknownAuthor(t *testing.T) {
	s := newServices(t, 10)
	bob := testutil.CreateUser(t, s.db, "bob")

	_, _, err := s.follows.FollowUsername(context.Background(), bob.ID, "ghost")
	assert.True(t, models.IsNotFound(err))
	_, _, err = s.follows.UnfollowUsername(context.Background(), bob.ID, "ghost")
	assert.True(t, models.IsNotFound(err))
}
