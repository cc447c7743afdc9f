package server

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"yatube/internal/config"
	"yatube/internal/models"
	"yatube/internal/pagination"
	"yatube/internal/testutil"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type testEnv struct {
	server *Server
	app    *fiber.App
	db     *gorm.DB
	redis  *miniredis.Miniredis
}

func testConfig() *config.Config {
	return &config.Config{
		Env:                     "test",
		Port:                    "0",
		JWTSecret:               "test-secret-key-12345678901234567890123456789012",
		PostsPerPage:            10,
		IndexCacheSeconds:       20,
		IndexCachePrefix:        "index_page",
		IndexCacheMemoryEntries: 16,
		LoginURL:                "/auth/login/",
		TokenTTLHours:           1,
	}
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := testutil.NewSQLiteDB(t)
	mr, rdb := testutil.NewRedis(t)

	s, err := NewServerWithDeps(testConfig(), db, rdb)
	require.NoError(t, err)
	return &testEnv{server: s, app: s.App(), db: db, redis: mr}
}

func (e *testEnv) token(t *testing.T, u *models.User) string {
	t.Helper()
	tok, err := e.server.auth.Issue(u.ID, u.Username)
	require.NoError(t, err)
	return tok
}

// do performs a request. form may be nil; token may be empty.
func (e *testEnv) do(t *testing.T, method, target, token string, form url.Values) *http.Response {
	t.Helper()
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req := httptest.NewRequest(method, target, body)
	if form != nil {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationForm)
	}
	if token != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}
	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func decode(t *testing.T, resp *http.Response, out interface{}) {
	t.Helper()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
}

type pageBody struct {
	PageObj pagination.Page[models.Post] `json:"page_obj"`
}

func texts(p pagination.Page[models.Post]) []string {
	out := make([]string, 0, len(p.Items))
	for _, post := range p.Items {
		out = append(out, post.Text)
	}
	return out
}
