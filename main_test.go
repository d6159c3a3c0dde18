package main

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"regexp"
	"strings"
	"testing"
	"time"

	"tokodash/internal/config"
	logx "tokodash/pkg/logger"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestMain(m *testing.M) {
	logx.Silence()
	os.Exit(m.Run())
}

func testConfig(t *testing.T, env map[string]string) *config.Config {
	t.Helper()
	v := viper.New()
	v.Set("APP_ENV", "testing")
	v.Set("CSRF_ENABLED", false)
	v.Set("MODERATION_LOAD_DELAY", "0s")
	for k, val := range env {
		v.Set(k, val)
	}
	cfg, err := config.Load(v)
	require.NoError(t, err)
	return cfg
}

func TestHealthCheck(t *testing.T) {
	app, err := NewApp(testConfig(t, nil))
	require.NoError(t, err)
	defer app.Close()

	resp, err := app.Fiber.Test(httptest.NewRequest(http.MethodGet, "/health", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, false, body["queue_loading"])
}

func TestUnauthenticatedAccess(t *testing.T) {
	app, err := NewApp(testConfig(t, nil))
	require.NoError(t, err)
	defer app.Close()

	resp, err := app.Fiber.Test(httptest.NewRequest(http.MethodGet, "/admin", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/admin/login", resp.Header.Get("Location"))

	resp, err = app.Fiber.Test(httptest.NewRequest(http.MethodGet, "/dashboard", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/login", resp.Header.Get("Location"))
}

func TestLoginPageRenders(t *testing.T) {
	app, err := NewApp(testConfig(t, nil))
	require.NoError(t, err)
	defer app.Close()

	resp, err := app.Fiber.Test(httptest.NewRequest(http.MethodGet, "/login", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `action="/login"`)
}

func TestUnknownRouteRendersErrorPage(t *testing.T) {
	app, err := NewApp(testConfig(t, nil))
	require.NoError(t, err)
	defer app.Close()

	resp, err := app.Fiber.Test(httptest.NewRequest(http.MethodGet, "/nope", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(body), "does not exist"))
}

func TestNewAppWithDatabaseSource(t *testing.T) {
	app, err := NewApp(testConfig(t, map[string]string{
		"MODERATION_SOURCE": "database",
		"DATABASE_DRIVER":   "sqlite",
		"DATABASE_DSN":      "file:mainapp?mode=memory&cache=shared",
	}))
	require.NoError(t, err)
	defer app.Close()

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	select {
	case <-app.Moderation.Activate(ctx):
	case <-time.After(2 * time.Second):
		t.Fatal("moderation queue did not load")
	}
	assert.NoError(t, app.Moderation.LoadError())
	for _, s := range app.Moderation.Sections() {
		assert.True(t, s.Empty())
	}
}

var csrfField = regexp.MustCompile(`name="_csrf" value="([^"]+)"`)

// browser keeps cookies between requests made through app.Test.
type browser struct {
	app     *App
	cookies map[string]*http.Cookie
}

func (b *browser) do(t *testing.T, method, target string, form url.Values) (*http.Response, string) {
	t.Helper()
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req := httptest.NewRequest(method, target, body)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	for _, ck := range b.cookies {
		req.AddCookie(ck)
	}

	resp, err := b.app.Fiber.Test(req, -1)
	require.NoError(t, err)
	for _, ck := range resp.Cookies() {
		b.cookies[ck.Name] = ck
	}
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(raw)
}

func TestCSRFProtectedForm(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	require.NoError(t, err)
	cfg := testConfig(t, map[string]string{
		"CSRF_ENABLED":        "true",
		"ADMIN_PASSWORD_HASH": string(hash),
	})
	require.True(t, cfg.CSRFEnabled)

	app, err := NewApp(cfg)
	require.NoError(t, err)
	defer app.Close()
	b := &browser{app: app, cookies: map[string]*http.Cookie{}}

	resp, body := b.do(t, http.MethodGet, "/admin/login", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	match := csrfField.FindStringSubmatch(body)
	require.Len(t, match, 2, "login form carries a csrf token")
	token := match[1]

	credentials := url.Values{"username": {"admin"}, "password": {"s3cret"}}
	resp, _ = b.do(t, http.MethodPost, "/admin/login", credentials)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	credentials.Set("_csrf", "not-the-token")
	resp, _ = b.do(t, http.MethodPost, "/admin/login", credentials)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	credentials.Set("_csrf", token)
	resp, _ = b.do(t, http.MethodPost, "/admin/login", credentials)
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/admin", resp.Header.Get("Location"))

	resp, body = b.do(t, http.MethodGet, "/admin", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, `name="_csrf"`)
}
