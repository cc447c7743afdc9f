package service

import (
	"context"
	"strconv"
	"strings"

	"yatube/internal/middleware"
	"yatube/internal/models"
	"yatube/internal/observability"
	"yatube/internal/repository"
	"yatube/internal/validation"
)

const invalidGroupChoice = "Select a valid choice. That choice is not one of the available choices."

// PostForm is the create/edit payload. Group holds a group id; blank means
// no group.
type PostForm struct {
	Text  string `form:"text" json:"text" validate:"required"`
	Group string `form:"group" json:"group"`
	Image string `form:"image" json:"image" validate:"max=255"`
}

// CommentForm is the add-comment payload.
type CommentForm struct {
	Text string `form:"text" json:"text" validate:"required"`
}

// PostService handles post and comment writes.
type PostService struct {
	posts    repository.PostRepository
	comments repository.CommentRepository
	groups   repository.GroupRepository
}

func NewPostService(
	posts repository.PostRepository,
	comments repository.CommentRepository,
	groups repository.GroupRepository,
) *PostService {
	return &PostService{posts: posts, comments: comments, groups: groups}
}

// Groups lists the choices for the post form's group field.
func (s *PostService) Groups(ctx context.Context) ([]models.Group, error) {
	return s.groups.List(ctx)
}

// Create publishes a post by authorID. The author always comes from the
// caller, never from the form.
func (s *PostService) Create(ctx context.Context, authorID uint, form PostForm) (*models.Post, error) {
	if authorID == 0 {
		return nil, models.NewUnauthorizedError("authentication required")
	}
	groupID, err := s.clean(ctx, &form)
	if err != nil {
		return nil, err
	}

	post := &models.Post{
		Text:     form.Text,
		AuthorID: &authorID,
		GroupID:  groupID,
		Image:    form.Image,
	}
	if err := s.posts.Create(ctx, post); err != nil {
		return nil, err
	}
	observability.PostWrites.WithLabelValues("post_create").Inc()
	middleware.Logger.InfoContext(ctx, "post created", "post_id", post.ID)
	return post, nil
}

// Edit updates a post in place when callerID is its author. Non-authors get
// AccessForbidden and no validation is attempted for them.
func (s *PostService) Edit(ctx context.Context, postID, callerID uint, form PostForm) (*models.Post, models.AccessResult, error) {
	current, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		if models.IsNotFound(err) {
			return nil, models.AccessNotFound, nil
		}
		return nil, models.AccessForbidden, err
	}
	if !current.IsAuthoredBy(callerID) {
		return current, models.AccessForbidden, nil
	}

	groupID, err := s.clean(ctx, &form)
	if err != nil {
		return current, models.AccessOK, err
	}

	post, access, err := s.posts.UpdateIfAuthor(ctx, postID, callerID, func(p *models.Post) {
		p.Text = form.Text
		p.GroupID = groupID
		p.Image = form.Image
	})
	if err != nil || access != models.AccessOK {
		return post, access, err
	}
	observability.PostWrites.WithLabelValues("post_edit").Inc()
	return post, models.AccessOK, nil
}

// Delete removes a post and its comments when callerID is its author.
func (s *PostService) Delete(ctx context.Context, postID, callerID uint) (models.AccessResult, error) {
	access, err := s.posts.DeleteIfAuthor(ctx, postID, callerID)
	if err == nil && access == models.AccessOK {
		observability.PostWrites.WithLabelValues("post_delete").Inc()
	}
	return access, err
}

// AddComment attaches a comment by authorID. An invalid comment is dropped:
// it returns a nil comment and no error. A missing post is NotFound.
func (s *PostService) AddComment(ctx context.Context, postID, authorID uint, form CommentForm) (*models.Comment, error) {
	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}

	form.Text = strings.TrimSpace(form.Text)
	if err := validation.Struct(form); err != nil {
		middleware.Logger.DebugContext(ctx, "comment dropped", "post_id", postID, "error", err)
		return nil, nil
	}

	comment := &models.Comment{PostID: post.ID, AuthorID: authorID, Text: form.Text}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, err
	}
	observability.PostWrites.WithLabelValues("comment_create").Inc()
	return comment, nil
}

// clean normalises and validates the form and resolves its group.
func (s *PostService) clean(ctx context.Context, form *PostForm) (*uint, error) {
	form.Text = strings.TrimSpace(form.Text)
	form.Group = strings.TrimSpace(form.Group)
	form.Image = strings.TrimSpace(form.Image)

	if err := validation.Struct(*form); err != nil {
		return nil, err
	}
	if form.Group == "" {
		return nil, nil
	}

	id, err := strconv.ParseUint(form.Group, 10, 32)
	if err != nil {
		return nil, models.NewFieldValidationError(map[string]string{"group": invalidGroupChoice})
	}
	group, err := s.groups.GetByID(ctx, uint(id))
	if err != nil {
		if models.IsNotFound(err) {
			return nil, models.NewFieldValidationError(map[string]string{"group": invalidGroupChoice})
		}
		return nil, err
	}
	return &group.ID, nil
}
