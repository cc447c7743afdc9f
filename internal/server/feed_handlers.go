package server

import (
	"context"
	"encoding/json"

	"yatube/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

// Index handles GET /. The rendered page is served from the index cache,
// which is only refreshed when its entry expires; new posts show up after
// the TTL.
func (s *Server) Index(c *fiber.Ctx) error {
	rawPage := c.Query("page")
	body, hit, err := s.indexCache.GetOrRender(c.UserContext(), rawPage, func(ctx context.Context) ([]byte, error) {
		page, err := s.feedService.Global(ctx, rawPage)
		if err != nil {
			return nil, err
		}
		return json.Marshal(fiber.Map{"page_obj": page})
	})
	if err != nil {
		return respondError(c, err)
	}

	if hit {
		c.Set("X-Cache", "HIT")
	} else {
		c.Set("X-Cache", "MISS")
	}
	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSONCharsetUTF8)
	return c.Send(body)
}

// GroupPosts handles GET /group/:slug/.
func (s *Server) GroupPosts(c *fiber.Ctx) error {
	feed, err := s.feedService.Group(c.UserContext(), c.Params("slug"), c.Query("page"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(feed)
}

// Profile handles GET /profile/:username/.
func (s *Server) Profile(c *fiber.Ctx) error {
	feed, err := s.feedService.Profile(c.UserContext(), c.Params("username"), currentUserID(c), c.Query("page"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(feed)
}

// FollowIndex handles GET /follow/.
func (s *Server) FollowIndex(c *fiber.Ctx) error {
	page, err := s.feedService.Follow(c.UserContext(), currentUserID(c), c.Query("page"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"page_obj": page})
}

// PostDetail handles GET /posts/:id/.
func (s *Server) PostDetail(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	detail, err := s.feedService.PostDetail(c.UserContext(), id)
	if err != nil {
		return respondError(c, err)
	}

	uid, authenticated := middleware.CurrentUserID(c)
	resp := fiber.Map{
		"post":              detail.Post,
		"author_post_count": detail.AuthorPostCount,
		"comments":          detail.Comments,
		"can_edit":          authenticated && detail.Post.IsAuthoredBy(uid),
	}
	if authenticated {
		resp["form"] = fiber.Map{"text": ""}
	}
	return c.JSON(resp)
}

