package handlers_test

import (
	"bytes"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"storefront/internal/config"
	"storefront/internal/repos"
	"storefront/internal/server"
)

// Seeded account ids on a fresh database.
const (
	aliceID int64 = 1
	bobID   int64 = 2
	adminID int64 = 3
)

func testConfig() config.Config {
	return config.Config{
		DBDSN:        ":memory:",
		TemplatesDir: "../../web/templates",
		StaticDir:    "../../web/static",
		MediaDir:     "../../web/media",
		RateLimit:    1000,
		LoginLimit:   100,
	}
}

// newApp builds the full storefront on a fresh in-memory database.
func newApp(t *testing.T) (*fiber.App, *sqlx.DB) {
	t.Helper()
	return newAppWith(t, testConfig())
}

func newAppWith(t *testing.T, cfg config.Config) (*fiber.App, *sqlx.DB) {
	t.Helper()
	db, err := repos.OpenDB(cfg.DBDSN)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return server.New(cfg, db), db
}

func extractCookie(resp *http.Response, name string) string {
	for _, c := range resp.Cookies() {
		if c.Name == name {
			return c.Value
		}
	}
	return ""
}

// client carries the session and CSRF cookies between requests.
type client struct {
	t    *testing.T
	app  *fiber.App
	sid  string
	csrf string
}

// anon returns a client holding a CSRF token but no session.
func anon(t *testing.T, app *fiber.App) *client {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest("GET", "/trackorder", nil))
	require.NoError(t, err)
	tok := extractCookie(resp, "csrf_")
	require.NotEmpty(t, tok, "csrf token missing")
	return &client{t: t, app: app, csrf: tok}
}

// as returns a client logged in as userID through a bound session.
func as(t *testing.T, app *fiber.App, db *sqlx.DB, userID int64) *client {
	t.Helper()
	c := anon(t, app)
	c.sid = "sid-test-" + strings.Repeat("x", int(userID))
	require.NoError(t, repos.NewUserRepo(db).BindSession(c.sid, userID))
	return c
}

func (c *client) do(req *http.Request) *http.Response {
	c.t.Helper()
	req.AddCookie(&http.Cookie{Name: "csrf_", Value: c.csrf})
	if c.sid != "" {
		req.AddCookie(&http.Cookie{Name: "sid", Value: c.sid})
	}
	resp, err := c.app.Test(req, -1)
	require.NoError(c.t, err)
	return resp
}

func (c *client) get(path string) *http.Response {
	return c.do(httptest.NewRequest("GET", path, nil))
}

func (c *client) post(path string, form url.Values) *http.Response {
	if form == nil {
		form = url.Values{}
	}
	form.Set("csrf", c.csrf)
	req := httptest.NewRequest("POST", path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return c.do(req)
}

func (c *client) postJSON(path string, body any) *http.Response {
	b, err := json.Marshal(body)
	require.NoError(c.t, err)
	req := httptest.NewRequest("POST", path, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-CSRF-Token", c.csrf)
	return c.do(req)
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(b)
}

// flashOf decodes the one-shot notice a redirect carries.
func flashOf(resp *http.Response) string {
	v, err := url.QueryUnescape(extractCookie(resp, "flash"))
	if err != nil {
		return ""
	}
	return v
}

type logEntry struct {
	Level  string         `json:"level"`
	Action string         `json:"action"`
	UserID int64          `json:"user_id"`
	Fields map[string]any `json:"fields"`
}

type lockedWriter struct {
	w  *bytes.Buffer
	mu *sync.Mutex
}

func (lw *lockedWriter) Write(p []byte) (int, error) {
	lw.mu.Lock()
	defer lw.mu.Unlock()
	return lw.w.Write(p)
}

// captureLogs swaps the standard logger output while fn runs and returns the
// JSON lines it wrote.
func captureLogs(t *testing.T, fn func()) []logEntry {
	t.Helper()
	var buf bytes.Buffer
	var mu sync.Mutex
	oldW := log.Writer()
	oldFlags := log.Flags()
	log.SetOutput(&lockedWriter{w: &buf, mu: &mu})
	log.SetFlags(0) // remove timestamps to make JSON parseable
	defer func() {
		log.SetOutput(oldW)
		log.SetFlags(oldFlags)
	}()

	fn()

	var entries []logEntry
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		var e logEntry
		if err := json.Unmarshal([]byte(line), &e); err == nil {
			entries = append(entries, e)
		}
	}
	return entries
}

func findLog(entries []logEntry, action string) (logEntry, bool) {
	for _, e := range entries {
		if e.Action == action {
			return e, true
		}
	}
	return logEntry{}, false
}
