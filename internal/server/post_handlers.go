package server

import (
	"errors"
	"strconv"

	"yatube/internal/middleware"
	"yatube/internal/models"
	"yatube/internal/service"

	"github.com/gofiber/fiber/v2"
)

func (s *Server) postFormResponse(c *fiber.Ctx, status int, form service.PostForm, post *models.Post, formErr error) error {
	groups, err := s.postService.Groups(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}

	resp := fiber.Map{
		"form":    form,
		"groups":  groups,
		"is_edit": post != nil,
	}
	if post != nil {
		resp["post"] = post
	}
	var appErr *models.AppError
	if formErr != nil && errors.As(formErr, &appErr) {
		resp["error"] = appErr.Message
		resp["code"] = appErr.Code
		resp["fields"] = appErr.Fields
	}
	return c.Status(status).JSON(resp)
}

// CreatePostForm handles GET /create/.
func (s *Server) CreatePostForm(c *fiber.Ctx) error {
	return s.postFormResponse(c, fiber.StatusOK, service.PostForm{}, nil, nil)
}

// CreatePost handles POST /create/ and redirects to the author's profile.
func (s *Server) CreatePost(c *fiber.Ctx) error {
	var form service.PostForm
	if err := bindForm(c, &form); err != nil {
		return respondError(c, err)
	}

	_, err := s.postService.Create(c.UserContext(), currentUserID(c), form)
	if err != nil {
		if models.HasCode(err, models.CodeValidation) {
			return s.postFormResponse(c, fiber.StatusBadRequest, form, nil, err)
		}
		return respondError(c, err)
	}
	return redirect(c, profilePath(middleware.CurrentUsername(c)))
}

// EditPostForm handles GET /posts/:id/edit/. Anyone but the author is sent
// back to the post.
func (s *Server) EditPostForm(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	detail, err := s.feedService.PostDetail(c.UserContext(), id)
	if err != nil {
		return respondError(c, err)
	}
	post := detail.Post
	if !post.IsAuthoredBy(currentUserID(c)) {
		return redirect(c, postPath(id))
	}

	form := service.PostForm{Text: post.Text, Image: post.Image}
	if post.GroupID != nil {
		form.Group = strconv.FormatUint(uint64(*post.GroupID), 10)
	}
	return s.postFormResponse(c, fiber.StatusOK, form, post, nil)
}

// EditPost handles POST /posts/:id/edit/. A non-author is silently
// redirected to the post, without any error.
func (s *Server) EditPost(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	var form service.PostForm
	if err := bindForm(c, &form); err != nil {
		return respondError(c, err)
	}

	post, access, err := s.postService.Edit(c.UserContext(), id, currentUserID(c), form)
	switch {
	case access == models.AccessOK && models.HasCode(err, models.CodeValidation):
		return s.postFormResponse(c, fiber.StatusBadRequest, form, post, err)
	case err != nil:
		return respondError(c, err)
	case access == models.AccessNotFound:
		return respondError(c, models.NewNotFoundError("post", id))
	}
	return redirect(c, postPath(id))
}

// AddComment handles POST /posts/:id/comment/. It always redirects to the
// post; an invalid comment is dropped without feedback.
func (s *Server) AddComment(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	var form service.CommentForm
	_ = bindForm(c, &form)

	if _, err := s.postService.AddComment(c.UserContext(), id, currentUserID(c), form); err != nil {
		return respondError(c, err)
	}
	return redirect(c, postPath(id))
}

// DeletePost handles POST /posts/:id/delete/.
func (s *Server) DeletePost(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	access, err := s.postService.Delete(c.UserContext(), id, currentUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	switch access {
	case models.AccessNotFound:
		return respondError(c, models.NewNotFoundError("post", id))
	case models.AccessForbidden:
		return redirect(c, postPath(id))
	}
	return redirect(c, profilePath(middleware.CurrentUsername(c)))
}
