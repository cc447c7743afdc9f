package server

import (
	"github.com/gofiber/fiber/v2"
)

// ProfileFollow handles GET /profile/:username/follow/. Following twice or
// following yourself changes nothing; both still redirect to the profile.
func (s *Server) ProfileFollow(c *fiber.Ctx) error {
	author, _, err := s.followService.FollowUsername(c.UserContext(), currentUserID(c), c.Params("username"))
	if err != nil {
		return respondError(c, err)
	}
	return redirect(c, profilePath(author.Username))
}

// ProfileUnfollow handles GET /profile/:username/unfollow/.
func (s *Server) ProfileUnfollow(c *fiber.Ctx) error {
	author, _, err := s.followService.UnfollowUsername(c.UserContext(), currentUserID(c), c.Params("username"))
	if err != nil {
		return respondError(c, err)
	}
	return redirect(c, profilePath(author.Username))
}
