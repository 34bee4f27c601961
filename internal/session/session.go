package session

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	fsession "github.com/gofiber/fiber/v2/middleware/session"
	"github.com/redis/go-redis/v9"
)

const (
	// CookieName is the session cookie sent to browsers.
	CookieName = "inkwell_session"

	userIDKey  = "user_id"
	flashesKey = "flashes"

	// flashSep joins queued flash messages into a single session value.
	// Messages are authored in code and never contain newlines.
	flashSep = "\n"

	// Lifetime is how long an idle session survives.
	Lifetime = 7 * 24 * time.Hour
)

// Principal is implemented by any entity that can back an authenticated
// session: it can identify itself and answer whether it is logged in.
type Principal interface {
	PrincipalID() uint
	IsAuthenticated() bool
}

// Manager wraps fiber's session store with login/logout semantics.
type Manager struct {
	store *fsession.Store
}

// NewManager builds a session manager. When redisClient is non-nil the
// session data lives in Redis and survives restarts; otherwise fiber's
// in-memory storage is used.
func NewManager(redisClient *redis.Client, secureCookies bool) *Manager {
	cfg := fsession.Config{
		Expiration:     Lifetime,
		KeyLookup:      "cookie:" + CookieName,
		CookieHTTPOnly: true,
		CookieSecure:   secureCookies,
		CookieSameSite: "Lax",
	}
	if redisClient != nil {
		cfg.Storage = NewRedisStorage(redisClient)
	}
	return &Manager{store: fsession.New(cfg)}
}

// Login records the principal's identity in a fresh session.
func (m *Manager) Login(c *fiber.Ctx, p Principal) error {
	sess, err := m.store.Get(c)
	if err != nil {
		return err
	}
	// Rotate the session ID so a pre-login cookie cannot be fixated.
	if err := sess.Regenerate(); err != nil {
		return err
	}
	sess.Set(userIDKey, p.PrincipalID())
	return sess.Save()
}

// Logout destroys the session, returning the browser to anonymous state.
func (m *Manager) Logout(c *fiber.Ctx) error {
	sess, err := m.store.Get(c)
	if err != nil {
		return err
	}
	return sess.Destroy()
}

// Flash queues a one-time notice to be shown on the next rendered page.
func (m *Manager) Flash(c *fiber.Ctx, message string) error {
	sess, err := m.store.Get(c)
	if err != nil {
		return err
	}
	queued, _ := sess.Get(flashesKey).(string)
	if queued != "" {
		queued += flashSep
	}
	sess.Set(flashesKey, queued+message)
	return sess.Save()
}

// PopFlashes returns all queued flash notices and clears the queue.
func (m *Manager) PopFlashes(c *fiber.Ctx) []string {
	sess, err := m.store.Get(c)
	if err != nil {
		return nil
	}
	queued, _ := sess.Get(flashesKey).(string)
	if queued == "" {
		return nil
	}
	sess.Delete(flashesKey)
	if err := sess.Save(); err != nil {
		return nil
	}
	return strings.Split(queued, flashSep)
}

// UserID returns the logged-in user's ID, or false when the request is
// anonymous.
func (m *Manager) UserID(c *fiber.Ctx) (uint, bool) {
	sess, err := m.store.Get(c)
	if err != nil {
		return 0, false
	}
	id, ok := sess.Get(userIDKey).(uint)
	if !ok || id == 0 {
		return 0, false
	}
	return id, true
}
