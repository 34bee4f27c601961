package server

import (
	"context"
	"net/url"

	"inkwell/internal/middleware"
	"inkwell/internal/models"
	"inkwell/internal/session"

	"github.com/gofiber/fiber/v2"
)

const currentUserLocal = "currentUser"

// render draws a template with the bindings every page needs: the
// logged-in user (nil for visitors) and any queued flash notices.
func (s *Server) render(c *fiber.Ctx, name string, bind fiber.Map) error {
	if bind == nil {
		bind = fiber.Map{}
	}
	bind["CurrentUser"] = s.currentUser(c)
	bind["Flashes"] = s.sessions.PopFlashes(c)
	return c.Render(name, bind)
}

func (s *Server) renderNotFound(c *fiber.Ctx) error {
	return c.Status(fiber.StatusNotFound).Render("not_found", fiber.Map{
		"Title":       "Not found",
		"CurrentUser": s.currentUser(c),
	})
}

// currentUser returns the resolved logged-in user, or nil.
func (s *Server) currentUser(c *fiber.Ctx) *models.User {
	user, _ := c.Locals(currentUserLocal).(*models.User)
	return user
}

// LoadCurrentUser resolves the logged-in user once per request: first
// from the session cookie, then from the remember-me token. A valid
// remember token re-establishes a server-side session so later requests
// take the fast path.
func (s *Server) LoadCurrentUser() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, ok := s.sessions.UserID(c)
		if !ok {
			userID, ok = s.loginFromRememberCookie(c)
		}
		if !ok {
			return c.Next()
		}

		user, err := s.userService.GetByID(c.UserContext(), userID)
		if err != nil || user == nil {
			// Stale session pointing at a deleted account.
			_ = s.sessions.Logout(c)
			return c.Next()
		}

		c.Locals(currentUserLocal, user)
		c.Locals("userID", user.ID)
		ctx := context.WithValue(c.UserContext(), middleware.UserIDKey, user.ID)
		c.SetUserContext(ctx)
		return c.Next()
	}
}

func (s *Server) loginFromRememberCookie(c *fiber.Ctx) (uint, bool) {
	token := c.Cookies(session.RememberCookieName)
	if token == "" {
		return 0, false
	}
	userID, err := session.ParseRememberToken(s.config.SessionSecret, token)
	if err != nil {
		c.ClearCookie(session.RememberCookieName)
		return 0, false
	}

	user, err := s.userService.GetByID(c.UserContext(), userID)
	if err != nil || user == nil {
		c.ClearCookie(session.RememberCookieName)
		return 0, false
	}
	if err := s.sessions.Login(c, user); err != nil {
		return 0, false
	}
	return userID, true
}

// LoginRequired redirects anonymous visitors to the login page,
// remembering where they were headed.
func (s *Server) LoginRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if s.currentUser(c) != nil {
			return c.Next()
		}
		_ = s.sessions.Flash(c, "Please log in to access that page")
		return c.Redirect("/login?next="+url.QueryEscape(c.Path()), fiber.StatusFound)
	}
}

// safeNextTarget returns the ?next= redirect target if it is a local
// path, falling back to home. Absolute URLs are rejected so login
// cannot be used as an open redirect.
func safeNextTarget(c *fiber.Ctx) string {
	next := c.Query("next")
	if next == "" {
		next = c.FormValue("next")
	}
	if next == "" || next[0] != '/' || (len(next) > 1 && next[1] == '/') {
		return "/"
	}
	return next
}
