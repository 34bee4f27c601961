package server

import (
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"inkwell/internal/config"
	"inkwell/internal/models"
	"inkwell/internal/repository"
	"inkwell/internal/service"
	"inkwell/internal/session"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupHandlerTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	if err := db.AutoMigrate(&models.User{}, &models.Post{}); err != nil {
		t.Fatalf("migrate sqlite: %v", err)
	}

	return db
}

// newTestServer wires a full server over in-memory sqlite, a temp
// avatar directory, and in-memory sessions. Prometheus middleware is
// left out so repeated registration cannot collide across tests.
func newTestServer(t *testing.T) (*Server, *fiber.App) {
	t.Helper()

	db := setupHandlerTestDB(t)
	cfg := &config.Config{
		SessionSecret: "test-secret",
		AvatarDir:     t.TempDir(),
		TemplatesDir:  "../../web/templates",
		Env:           "test",
	}

	s := &Server{
		config:   cfg,
		db:       db,
		userRepo: repository.NewUserRepository(db),
		postRepo: repository.NewPostRepository(db),
		sessions: session.NewManager(nil, false),
	}
	s.userService = service.NewUserService(s.userRepo)
	s.postService = service.NewPostService(s.postRepo)
	s.avatarService = service.NewAvatarService(cfg)
	require.NoError(t, s.avatarService.EnsureDefault())

	return s, s.BuildApp()
}

// browser drives the app through fiber's test transport while carrying
// cookies between requests, like a real user agent would.
type browser struct {
	t       *testing.T
	app     *fiber.App
	cookies map[string]string
}

func newBrowser(t *testing.T, app *fiber.App) *browser {
	return &browser{t: t, app: app, cookies: make(map[string]string)}
}

func (b *browser) do(req *http.Request) *http.Response {
	b.t.Helper()
	for name, value := range b.cookies {
		req.AddCookie(&http.Cookie{Name: name, Value: value})
	}

	resp, err := b.app.Test(req, -1)
	require.NoError(b.t, err)

	for _, ck := range resp.Cookies() {
		expired := ck.MaxAge < 0 || (!ck.Expires.IsZero() && ck.Expires.Before(time.Now()))
		if expired || ck.Value == "" {
			delete(b.cookies, ck.Name)
			continue
		}
		b.cookies[ck.Name] = ck.Value
	}
	return resp
}

func (b *browser) get(path string) *http.Response {
	b.t.Helper()
	return b.do(httptest.NewRequest(http.MethodGet, path, nil))
}

func (b *browser) postForm(path string, form url.Values) *http.Response {
	b.t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return b.do(req)
}

func (b *browser) postMultipart(path string, fields map[string]string, fileField, filename string, fileContent []byte) *http.Response {
	b.t.Helper()

	var body strings.Builder
	w := multipart.NewWriter(&body)
	for name, value := range fields {
		require.NoError(b.t, w.WriteField(name, value))
	}
	if fileField != "" {
		fw, err := w.CreateFormFile(fileField, filename)
		require.NoError(b.t, err)
		_, err = fw.Write(fileContent)
		require.NoError(b.t, err)
	}
	require.NoError(b.t, w.Close())

	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body.String()))
	req.Header.Set("Content-Type", w.FormDataContentType())
	return b.do(req)
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer func() { _ = resp.Body.Close() }()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(body)
}

// registerAndLogin creates an account through the real handlers and
// leaves the browser with an authenticated session.
func registerAndLogin(t *testing.T, b *browser, username, email, pass string) {
	t.Helper()

	resp := b.postForm("/register", url.Values{
		"username":         {username},
		"email":            {email},
		"password":         {pass},
		"confirm_password": {pass},
	})
	require.Equal(t, http.StatusFound, resp.StatusCode)
	_ = resp.Body.Close()

	resp = b.postForm("/login", url.Values{
		"email":    {email},
		"password": {pass},
	})
	require.Equal(t, http.StatusFound, resp.StatusCode)
	_ = resp.Body.Close()
}
