// Package service provides application business logic (feeds, posts, follows, accounts).
package service

import (
	"context"

	"yatube/internal/models"
	"yatube/internal/observability"
	"yatube/internal/pagination"
	"yatube/internal/repository"

	"go.opentelemetry.io/otel/attribute"
)

// PostPage is one page of a post listing.
type PostPage = pagination.Page[*models.Post]

// Feed names, used for span names and the render counter.
const (
	FeedGlobal  = "global"
	FeedGroup   = "group"
	FeedProfile = "profile"
	FeedFollow  = "follow"
)

// FeedService composes the paginated post listings.
type FeedService struct {
	posts    repository.PostRepository
	users    repository.UserRepository
	groups   repository.GroupRepository
	comments repository.CommentRepository
	graph    *FollowService
	perPage  int
}

// GroupFeed is a group's page of posts.
type GroupFeed struct {
	Group *models.Group `json:"group"`
	Page  PostPage      `json:"page_obj"`
}

// ProfileFeed is an author's page of posts. Following is true when the
// viewer follows the author.
type ProfileFeed struct {
	Author         *models.User `json:"author"`
	PostCount      int          `json:"post_count"`
	Following      bool         `json:"following"`
	FollowerCount  int64        `json:"follower_count"`
	FollowingCount int64        `json:"following_count"`
	Page           PostPage     `json:"page_obj"`
}

// PostDetail is a single post with its comments, newest first.
type PostDetail struct {
	Post            *models.Post      `json:"post"`
	AuthorPostCount int64             `json:"author_post_count"`
	Comments        []*models.Comment `json:"comments"`
}

func NewFeedService(
	posts repository.PostRepository,
	users repository.UserRepository,
	groups repository.GroupRepository,
	comments repository.CommentRepository,
	graph *FollowService,
	perPage int,
) *FeedService {
	if perPage <= 0 {
		perPage = 10
	}
	return &FeedService{
		posts:    posts,
		users:    users,
		groups:   groups,
		comments: comments,
		graph:    graph,
		perPage:  perPage,
	}
}

// PerPage is the configured page size.
func (s *FeedService) PerPage() int {
	return s.perPage
}

// Global lists every post.
func (s *FeedService) Global(ctx context.Context, rawPage string) (PostPage, error) {
	return s.list(ctx, FeedGlobal, repository.PostFilter{}, rawPage)
}

// Group lists the posts published in the group with the given slug.
func (s *FeedService) Group(ctx context.Context, slug, rawPage string) (*GroupFeed, error) {
	group, err := s.groups.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	page, err := s.list(ctx, FeedGroup, repository.PostFilter{GroupID: &group.ID}, rawPage,
		attribute.String("group.slug", slug))
	if err != nil {
		return nil, err
	}
	return &GroupFeed{Group: group, Page: page}, nil
}

// Profile lists an author's posts. viewerID is 0 for anonymous callers.
func (s *FeedService) Profile(ctx context.Context, username string, viewerID uint, rawPage string) (*ProfileFeed, error) {
	author, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}

	page, err := s.list(ctx, FeedProfile, repository.PostFilter{AuthorID: &author.ID}, rawPage,
		attribute.String("author.username", username))
	if err != nil {
		return nil, err
	}

	feed := &ProfileFeed{Author: author, PostCount: page.Count, Page: page}
	if feed.Following, err = s.graph.IsFollowing(ctx, viewerID, author.ID); err != nil {
		return nil, err
	}
	if feed.FollowerCount, feed.FollowingCount, err = s.graph.Counts(ctx, author.ID); err != nil {
		return nil, err
	}
	return feed, nil
}

// Follow lists posts by the authors userID follows. Following nobody gives
// an empty first page.
func (s *FeedService) Follow(ctx context.Context, userID uint, rawPage string) (PostPage, error) {
	if userID == 0 {
		return PostPage{}, models.NewUnauthorizedError("authentication required")
	}
	authors, err := s.graph.FollowedAuthorIDs(ctx, userID)
	if err != nil {
		return PostPage{}, err
	}
	return s.list(ctx, FeedFollow, repository.PostFilter{AuthorIDs: authors}, rawPage,
		attribute.Int64("user.id", int64(userID)),
		attribute.Int("follow.authors", len(authors)))
}

// PostDetail loads a post with its comments and the author's post count.
func (s *FeedService) PostDetail(ctx context.Context, postID uint) (*PostDetail, error) {
	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}

	detail := &PostDetail{Post: post}
	if post.AuthorID != nil {
		if detail.AuthorPostCount, err = s.posts.Count(ctx, repository.PostFilter{AuthorID: post.AuthorID}); err != nil {
			return nil, err
		}
	}
	if detail.Comments, err = s.comments.ListByPost(ctx, post.ID); err != nil {
		return nil, err
	}
	return detail, nil
}

func (s *FeedService) list(ctx context.Context, feed string, filter repository.PostFilter, rawPage string, attrs ...attribute.KeyValue) (PostPage, error) {
	span, ctx := observability.NewSpan(ctx, "feed."+feed, attrs...)
	defer span.End()

	count, err := s.posts.Count(ctx, filter)
	if err != nil {
		span.SetError(err)
		return PostPage{}, err
	}

	w := pagination.Resolve(int(count), s.perPage, rawPage)
	posts, err := s.posts.List(ctx, filter, w.Limit, w.Offset)
	if err != nil {
		span.SetError(err)
		return PostPage{}, err
	}

	span.AddAttributes(
		attribute.Int("feed.page", w.Number),
		attribute.Int("feed.count", w.Count),
	)
	observability.FeedRenders.WithLabelValues(feed).Inc()
	return pagination.NewPage(w, posts), nil
}
