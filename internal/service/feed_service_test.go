package service

import (
	"context"
	"testing"

	"yatube/internal/models"
	"yatube/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFeedService_GroupPagination(t *testing.T) {
	s := newServices(t, 10)
	ctx := context.Background()

	alice := testutil.CreateUser(t, s.db, "alice")
	group := testutil.CreateGroup(t, s.db, "test-slug", "g1")
	posts := testutil.CreatePosts(t, s.db, alice, 13, testutil.InGroup(group))
	testutil.CreatePost(t, s.db, alice, "outside the group")

	first, err := s.feeds.Group(ctx, "test-slug", "")
	require.NoError(t, err)
	assert.Equal(t, group.ID, first.Group.ID)
	require.Len(t, first.Page.Items, 10)
	assert.Equal(t, posts[12].ID, first.Page.Items[0].ID, "newest first")
	assert.Equal(t, 13, first.Page.Count)
	assert.Equal(t, 2, first.Page.NumPages)

	second, err := s.feeds.Group(ctx, "test-slug", "2")
	require.NoError(t, err)
	require.Len(t, second.Page.Items, 3)
	assert.Equal(t, posts[0].ID, second.Page.Items[2].ID)

	third, err := s.feeds.Group(ctx, "test-slug", "3")
	require.NoError(t, err)
	assert.Equal(t, 2, third.Page.Number)
	assert.Equal(t, postIDs(second.Page), postIDs(third.Page))

	garbage, err := s.feeds.Group(ctx, "test-slug", "abc")
	require.NoError(t, err)
	assert.Equal(t, postIDs(first.Page), postIDs(garbage.Page))

	_, err = s.feeds.Group(ctx, "missing", "")
	assert.True(t, models.IsNotFound(err))
}

func TestFeedService_GlobalPagesCoverEveryPostOnce(t *testing.T) {
	s := newServices(t, 4)
	ctx := context.Background()

	alice := testutil.CreateUser(t, s.db, "alice")
	bob := testutil.CreateUser(t, s.db, "bob")
	testutil.CreatePosts(t, s.db, alice, 5)
	testutil.CreatePosts(t, s.db, bob, 6)

	var seen []uint
	for _, raw := range []string{"1", "2", "3"} {
		page, err := s.feeds.Global(ctx, raw)
		require.NoError(t, err)
		seen = append(seen, postIDs(page)...)
	}
	assert.Len(t, seen, 11)
	uniq := make(map[uint]struct{}, len(seen))
	for _, id := range seen {
		uniq[id] = struct{}{}
	}
	assert.Len(t, uniq, 11)
}

func TestFeedService_Profile(t *testing.T) {
	s := newServices(t, 10)
	ctx := context.Background()

	alice := testutil.CreateUser(t, s.db, "alice")
	bob := testutil.CreateUser(t, s.db, "bob")
	carol := testutil.CreateUser(t, s.db, "carol")
	testutil.CreatePosts(t, s.db, alice, 3)
	testutil.CreatePost(t, s.db, bob, "bob's post")
	testutil.Follow(t, s.db, bob, alice)
	testutil.Follow(t, s.db, carol, alice)
	testutil.Follow(t, s.db, alice, carol)

	tests := []struct {
		name          string
		viewerID      uint
		wantFollowing bool
	}{
		{"anonymous", 0, false},
		{"follower", bob.ID, true},
		{"non-follower", testutil.CreateUser(t, s.db, "dave").ID, false},
		{"self", alice.ID, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			feed, err := s.feeds.Profile(ctx, "alice", tt.viewerID, "")
			require.NoError(t, err)
			assert.Equal(t, alice.ID, feed.Author.ID)
			assert.Equal(t, 3, feed.PostCount)
			assert.Len(t, feed.Page.Items, 3)
			assert.Equal(t, tt.wantFollowing, feed.Following)
			assert.Equal(t, int64(2), feed.FollowerCount)
			assert.Equal(t, int64(1), feed.FollowingCount)
		})
	}

	_, err := s.feeds.Profile(ctx, "nobody", 0, "")
	assert.True(t, models.IsNotFound(err))
}

func TestFeedService_FollowFeed(t *testing.T) {
	s := newServices(t, 10)
	ctx := context.Background()

	alice := testutil.CreateUser(t, s.db, "alice")
	bob := testutil.CreateUser(t, s.db, "bob")
	carol := testutil.CreateUser(t, s.db, "carol")
	alicePost := testutil.CreatePost(t, s.db, alice, "from alice")
	testutil.CreatePost(t, s.db, carol, "from carol")

	empty, err := s.feeds.Follow(ctx, bob.ID, "")
	require.NoError(t, err)
	assert.Empty(t, empty.Items)
	assert.Equal(t, 1, empty.Number)

	testutil.Follow(t, s.db, bob, alice)
	page, err := s.feeds.Follow(ctx, bob.ID, "")
	require.NoError(t, err)
	assert.Equal(t, []uint{alicePost.ID}, postIDs(page))

	_, err = s.feeds.Follow(ctx, 0, "")
	assert.True(t, models.HasCode(err, models.CodeUnauthorized))
}

func TestFeedService_PostDetail(t *testing.T) {
	s := newServices(t, 10)
	ctx := context.Background()

	alice := testutil.CreateUser(t, s.db, "alice")
	bob := testutil.CreateUser(t, s.db, "bob")
	post := testutil.CreatePost(t, s.db, alice, "hello")
	testutil.CreatePost(t, s.db, alice, "again")

	first, err := s.posts.AddComment(ctx, post.ID, bob.ID, CommentForm{Text: "first"})
	require.NoError(t, err)
	second, err := s.posts.AddComment(ctx, post.ID, alice.ID, CommentForm{Text: "second"})
	require.NoError(t, err)

	detail, err := s.feeds.PostDetail(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, "hello", detail.Post.Text)
	assert.Equal(t, "alice", detail.Post.Author.Username)
	assert.Equal(t, int64(2), detail.AuthorPostCount)
	require.Len(t, detail.Comments, 2)
	assert.Equal(t, second.ID, detail.Comments[0].ID)
	assert.Equal(t, first.ID, detail.Comments[1].ID)

	_, err = s.feeds.PostDetail(ctx, 9999)
	assert.True(t, models.IsNotFound(err))
}

func TestFeedService_OrphanedPostsStayListed(t *testing.T) {
	s := newServices(t, 10)
	ctx := context.Background()

	ghost := testutil.CreatePost(t, s.db, nil, "no author")

	page, err := s.feeds.Global(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, []uint{ghost.ID}, postIDs(page))

	detail, err := s.feeds.PostDetail(ctx, ghost.ID)
	require.NoError(t, err)
	assert.Nil(t, detail.Post.Author)
	assert.Zero(t, detail.AuthorPostCount)
}
