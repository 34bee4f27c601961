package server

import (
	"inkwell/internal/middleware"
	"inkwell/internal/models"
	"inkwell/internal/service"

	"github.com/gofiber/fiber/v2"
)

// ShowNewPost renders the post composer.
func (s *Server) ShowNewPost(c *fiber.Ctx) error {
	return s.render(c, "create_post", fiber.Map{"Title": "New Post"})
}

// CreatePost handles a post submission from the composer.
func (s *Server) CreatePost(c *fiber.Ctx) error {
	user := s.currentUser(c)

	title := c.FormValue("title")
	content := c.FormValue("content")

	post, err := s.postService.Create(c.UserContext(), service.CreatePostInput{
		UserID:  user.ID,
		Title:   title,
		Content: content,
	})
	if err != nil {
		if models.IsCode(err, models.CodeValidation) {
			c.Status(fiber.StatusBadRequest)
			return s.render(c, "create_post", fiber.Map{
				"Title":       "New Post",
				"Error":       err.Error(),
				"PostTitle":   title,
				"PostContent": content,
			})
		}
		return err
	}

	middleware.Logger.InfoContext(c.UserContext(), "post created",
		"post_id", post.ID, "slug", post.Slug)
	_ = s.sessions.Flash(c, "Your post has been created!")
	return c.Redirect("/", fiber.StatusFound)
}
