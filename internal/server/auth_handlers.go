package server

import (
	"time"

	"inkwell/internal/middleware"
	"inkwell/internal/models"
	"inkwell/internal/service"
	"inkwell/internal/session"

	"github.com/gofiber/fiber/v2"
)

// ShowRegister renders the registration form. Logged-in users are sent
// home instead.
func (s *Server) ShowRegister(c *fiber.Ctx) error {
	if s.currentUser(c) != nil {
		return c.Redirect("/", fiber.StatusFound)
	}
	return s.render(c, "register", fiber.Map{"Title": "Register"})
}

// Register handles a registration submission.
func (s *Server) Register(c *fiber.Ctx) error {
	if s.currentUser(c) != nil {
		return c.Redirect("/", fiber.StatusFound)
	}

	username := c.FormValue("username")
	email := c.FormValue("email")
	pass := c.FormValue("password")
	confirm := c.FormValue("confirm_password")

	if confirm != pass {
		return s.renderRegisterError(c, username, email, "Passwords must match")
	}

	user, err := s.userService.Register(c.UserContext(), service.RegisterInput{
		Username: username,
		Email:    email,
		Password: pass,
	})
	if err != nil {
		if models.IsCode(err, models.CodeValidation) {
			return s.renderRegisterError(c, username, email, err.Error())
		}
		return err
	}

	middleware.Logger.InfoContext(c.UserContext(), "user registered",
		"user_id", user.ID, "username", user.Username)
	_ = s.sessions.Flash(c, "Your account has been created! You are now able to log in")
	return c.Redirect("/login", fiber.StatusFound)
}

func (s *Server) renderRegisterError(c *fiber.Ctx, username, email, message string) error {
	c.Status(fiber.StatusBadRequest)
	return s.render(c, "register", fiber.Map{
		"Title":    "Register",
		"Error":    message,
		"Username": username,
		"Email":    email,
	})
}

// ShowLogin renders the login form. Logged-in users are sent home.
func (s *Server) ShowLogin(c *fiber.Ctx) error {
	if s.currentUser(c) != nil {
		return c.Redirect("/", fiber.StatusFound)
	}
	return s.render(c, "login", fiber.Map{
		"Title": "Log In",
		"Next":  safeNextTarget(c),
	})
}

// Login handles a credentials submission. Failures use one message for
// unknown email and wrong password alike.
func (s *Server) Login(c *fiber.Ctx) error {
	if s.currentUser(c) != nil {
		return c.Redirect("/", fiber.StatusFound)
	}

	email := c.FormValue("email")
	pass := c.FormValue("password")

	user, err := s.userService.Authenticate(c.UserContext(), email, pass)
	if err != nil {
		if models.IsCode(err, models.CodeUnauthorized) {
			c.Status(fiber.StatusUnauthorized)
			return s.render(c, "login", fiber.Map{
				"Title": "Log In",
				"Error": err.Error(),
				"Email": email,
				"Next":  safeNextTarget(c),
			})
		}
		return err
	}

	if err := s.sessions.Login(c, user); err != nil {
		return models.NewInternalError(err)
	}

	if c.FormValue("remember") == "on" {
		token, err := session.IssueRememberToken(s.config.SessionSecret, user.ID)
		if err == nil {
			c.Cookie(&fiber.Cookie{
				Name:     session.RememberCookieName,
				Value:    token,
				Expires:  time.Now().Add(session.RememberLifetime),
				HTTPOnly: true,
				Secure:   s.config.IsProduction(),
				SameSite: "Lax",
			})
		} else {
			middleware.Logger.WarnContext(c.UserContext(),
				"remember token issue failed", "error", err)
		}
	}

	middleware.Logger.InfoContext(c.UserContext(), "user logged in", "user_id", user.ID)
	return c.Redirect(safeNextTarget(c), fiber.StatusFound)
}

// Logout ends the session and drops the remember cookie.
func (s *Server) Logout(c *fiber.Ctx) error {
	if err := s.sessions.Logout(c); err != nil {
		middleware.Logger.WarnContext(c.UserContext(), "logout failed", "error", err)
	}
	c.ClearCookie(session.RememberCookieName)
	return c.Redirect("/", fiber.StatusFound)
}
