package session

import (
	"context"
	"fmt"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"inkwell/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisStorage(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	storage := NewRedisStorage(client)

	t.Run("missing key returns nil without error", func(t *testing.T) {
		val, err := storage.Get("missing")
		require.NoError(t, err)
		assert.Nil(t, val)
	})

	t.Run("set then get", func(t *testing.T) {
		require.NoError(t, storage.Set("k", []byte("v"), time.Minute))
		val, err := storage.Get("k")
		require.NoError(t, err)
		assert.Equal(t, []byte("v"), val)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, storage.Set("gone", []byte("v"), time.Minute))
		require.NoError(t, storage.Delete("gone"))
		val, err := storage.Get("gone")
		require.NoError(t, err)
		assert.Nil(t, val)
	})

	t.Run("reset clears only session keys", func(t *testing.T) {
		require.NoError(t, storage.Set("a", []byte("1"), time.Minute))
		require.NoError(t, storage.Set("b", []byte("2"), time.Minute))
		require.NoError(t, client.Set(context.Background(), "unrelated", "keep", 0).Err())

		require.NoError(t, storage.Reset())

		val, err := storage.Get("a")
		require.NoError(t, err)
		assert.Nil(t, val)
		kept, err := client.Get(context.Background(), "unrelated").Result()
		require.NoError(t, err)
		assert.Equal(t, "keep", kept)
	})
}

func TestManagerLoginLogout(t *testing.T) {
	m := NewManager(nil, false)
	app := fiber.New()

	app.Post("/login", func(c *fiber.Ctx) error {
		return m.Login(c, &models.User{ID: 42})
	})
	app.Get("/whoami", func(c *fiber.Ctx) error {
		id, ok := m.UserID(c)
		if !ok {
			return c.SendStatus(fiber.StatusUnauthorized)
		}
		return c.SendString(fmt.Sprintf("user:%d", id))
	})
	app.Post("/logout", func(c *fiber.Ctx) error {
		return m.Logout(c)
	})

	// Anonymous request has no identity.
	resp, err := app.Test(httptest.NewRequest("GET", "/whoami", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	// Login sets the session cookie.
	resp, err = app.Test(httptest.NewRequest("POST", "/login", nil))
	require.NoError(t, err)
	cookie := resp.Header.Get("Set-Cookie")
	require.Contains(t, cookie, CookieName)

	req := httptest.NewRequest("GET", "/whoami", nil)
	req.Header.Set("Cookie", cookie)
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	// Logout destroys the session.
	req = httptest.NewRequest("POST", "/logout", nil)
	req.Header.Set("Cookie", cookie)
	_, err = app.Test(req)
	require.NoError(t, err)

	req = httptest.NewRequest("GET", "/whoami", nil)
	req.Header.Set("Cookie", cookie)
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestFlashesPopOnce(t *testing.T) {
	m := NewManager(nil, false)
	app := fiber.New()

	app.Post("/queue", func(c *fiber.Ctx) error {
		if err := m.Flash(c, "first notice"); err != nil {
			return err
		}
		return m.Flash(c, "second notice")
	})
	app.Get("/notices", func(c *fiber.Ctx) error {
		return c.JSON(m.PopFlashes(c))
	})

	resp, err := app.Test(httptest.NewRequest("POST", "/queue", nil))
	require.NoError(t, err)
	cookie := resp.Header.Get("Set-Cookie")
	require.Contains(t, cookie, CookieName)

	req := httptest.NewRequest("GET", "/notices", nil)
	req.Header.Set("Cookie", cookie)
	resp, err = app.Test(req)
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.JSONEq(t, `["first notice","second notice"]`, string(body))

	// A second read finds the queue empty.
	req = httptest.NewRequest("GET", "/notices", nil)
	req.Header.Set("Cookie", cookie)
	resp, err = app.Test(req)
	require.NoError(t, err)
	body, err = io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "null", string(body))
}

func TestRememberTokenRoundTrip(t *testing.T) {
	secret := "0123456789abcdef0123456789abcdef"

	token, err := IssueRememberToken(secret, 7)
	require.NoError(t, err)

	userID, err := ParseRememberToken(secret, token)
	require.NoError(t, err)
	assert.Equal(t, uint(7), userID)
}

func TestRememberTokenRejections(t *testing.T) {
	secret := "0123456789abcdef0123456789abcdef"

	t.Run("empty secret cannot issue", func(t *testing.T) {
		_, err := IssueRememberToken("", 7)
		assert.Error(t, err)
	})

	t.Run("wrong secret", func(t *testing.T) {
		token, err := IssueRememberToken(secret, 7)
		require.NoError(t, err)
		_, err = ParseRememberToken("another-secret-another-secret-xx", token)
		assert.Error(t, err)
	})

	t.Run("garbage token", func(t *testing.T) {
		_, err := ParseRememberToken(secret, "not.a.token")
		assert.Error(t, err)
	})
}
