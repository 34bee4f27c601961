package server

import (
	"io"

	"inkwell/internal/middleware"
	"inkwell/internal/models"
	"inkwell/internal/service"

	"github.com/gofiber/fiber/v2"
)

// ShowAccount renders the profile page with the account form and the
// user's recent posts.
func (s *Server) ShowAccount(c *fiber.Ctx) error {
	user := s.currentUser(c)

	posts, err := s.postRepo.GetByUserID(c.UserContext(), user.ID, 10, 0)
	if err != nil {
		return err
	}

	return s.render(c, "account", fiber.Map{
		"Title":     "Account",
		"AvatarURL": s.avatarURL(user),
		"Posts":     posts,
	})
}

// UpdateAccount handles the profile form: username, email, and an
// optional avatar upload. The avatar is stored on disk first; if that
// fails nothing about the account changes.
func (s *Server) UpdateAccount(c *fiber.Ctx) error {
	user := s.currentUser(c)

	username := c.FormValue("username")
	email := c.FormValue("email")

	storedImage := ""
	if fileHeader, err := c.FormFile("picture"); err == nil && fileHeader != nil {
		content, err := readUpload(fileHeader.Open())
		if err != nil {
			return models.NewStorageError(err)
		}
		storedImage, err = s.avatarService.Store(content, fileHeader.Filename)
		if err != nil {
			return s.renderAccountError(c, user, err)
		}
	}

	updated, err := s.userService.UpdateAccount(c.UserContext(), service.UpdateAccountInput{
		UserID:   user.ID,
		Username: username,
		Email:    email,
		Image:    storedImage,
	})
	if err != nil {
		return s.renderAccountError(c, user, err)
	}

	middleware.Logger.InfoContext(c.UserContext(), "account updated",
		"user_id", updated.ID)
	_ = s.sessions.Flash(c, "Your account has been updated!")
	return c.Redirect("/account", fiber.StatusFound)
}

func (s *Server) renderAccountError(c *fiber.Ctx, user *models.User, err error) error {
	status := fiber.StatusBadRequest
	switch models.ErrorCode(err) {
	case models.CodeValidation:
	case models.CodeStorageIO:
		status = fiber.StatusInternalServerError
	default:
		return err
	}

	posts, postsErr := s.postRepo.GetByUserID(c.UserContext(), user.ID, 10, 0)
	if postsErr != nil {
		posts = nil
	}

	c.Status(status)
	return s.render(c, "account", fiber.Map{
		"Title":     "Account",
		"Error":     err.Error(),
		"AvatarURL": s.avatarURL(user),
		"Posts":     posts,
	})
}

// avatarURL resolves the user's avatar to a servable static path,
// falling back to the default image when the file is gone.
func (s *Server) avatarURL(user *models.User) string {
	return "/static/profiles/" + s.avatarService.Resolve(user.Image)
}

func readUpload(f io.ReadCloser, err error) ([]byte, error) {
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}
