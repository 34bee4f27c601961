package server

import (
	"inkwell/internal/models"

	"github.com/gofiber/fiber/v2"
)

// Home renders the post list, newest first.
func (s *Server) Home(c *fiber.Ctx) error {
	posts, err := s.postService.List(c.UserContext())
	if err != nil {
		return err
	}
	return s.render(c, "home", fiber.Map{
		"Title": "Home",
		"Posts": posts,
	})
}

// About renders the static about page.
func (s *Server) About(c *fiber.Ctx) error {
	return s.render(c, "about", fiber.Map{"Title": "About"})
}

// ShowPost renders a single post looked up by slug.
func (s *Server) ShowPost(c *fiber.Ctx) error {
	post, err := s.postService.GetBySlug(c.UserContext(), c.Params("slug"))
	if err != nil {
		if models.IsCode(err, models.CodeNotFound) {
			return s.renderNotFound(c)
		}
		return err
	}
	return s.render(c, "post", fiber.Map{
		"Title": post.Title,
		"Post":  post,
	})
}
