package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"yatube/internal/config"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key-12345678901234567890123456789012"

func newTestAuthenticator(t *testing.T) (*Authenticator, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	cfg := &config.Config{JWTSecret: testSecret, LoginURL: "/auth/login/", TokenTTLHours: 1}
	return NewAuthenticator(cfg, rdb), mr
}

func signClaims(t *testing.T, claims jwt.Claims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return s
}

func TestAuthenticator_IssueAndParse(t *testing.T) {
	auth, _ := newTestAuthenticator(t)

	token, err := auth.Issue(42, "alice")
	require.NoError(t, err)

	claims, err := auth.Parse(token)
	require.NoError(t, err)
	id, err := claims.UserID()
	require.NoError(t, err)
	assert.Equal(t, uint(42), id)
	assert.Equal(t, "alice", claims.Username)
	assert.NotEmpty(t, claims.ID)
	assert.WithinDuration(t, time.Now().Add(time.Hour), claims.ExpiresAt.Time, 5*time.Second)
}

func TestAuthenticator_ParseRejects(t *testing.T) {
	auth, _ := newTestAuthenticator(t)
	now := time.Now()

	valid := func() jwt.RegisteredClaims {
		return jwt.RegisteredClaims{
			Subject:   "7",
			Issuer:    TokenIssuer,
			Audience:  jwt.ClaimStrings{TokenAudience},
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		}
	}

	tests := []struct {
		name  string
		token string
	}{
		{"malformed", "malformed.token.here"},
		{"expired", signClaims(t, func() jwt.RegisteredClaims { c := valid(); c.ExpiresAt = jwt.NewNumericDate(now.Add(-time.Hour)); return c }())},
		{"wrong issuer", signClaims(t, func() jwt.RegisteredClaims { c := valid(); c.Issuer = "other"; return c }())},
		{"wrong audience", signClaims(t, func() jwt.RegisteredClaims { c := valid(); c.Audience = jwt.ClaimStrings{"x"}; return c }())},
		{"bad subject", signClaims(t, func() jwt.RegisteredClaims { c := valid(); c.Subject = "abc"; return c }())},
		{"no expiry", signClaims(t, func() jwt.RegisteredClaims { c := valid(); c.ExpiresAt = nil; return c }())},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := auth.Parse(tt.token)
			assert.Error(t, err)
		})
	}
}

func TestLoginRedirectURL(t *testing.T) {
	assert.Equal(t, "/auth/login/?next=/create/", LoginRedirectURL("/auth/login/", "/create/"))
	assert.Equal(t, "/auth/login/?next=/follow/%3Fpage%3D2", LoginRedirectURL("/auth/login/", "/follow/?page=2"))
	assert.Equal(t, "/login?x=1&next=/a/", LoginRedirectURL("/login?x=1", "/a/"))
}

func TestAuthenticator_Required(t *testing.T) {
	auth, _ := newTestAuthenticator(t)
	app := fiber.New()
	app.Get("/create/", auth.Required(), func(c *fiber.Ctx) error {
		id, _ := CurrentUserID(c)
		return c.JSON(fiber.Map{"userID": id, "username": CurrentUsername(c)})
	})

	token, err := auth.Issue(123, "bob")
	require.NoError(t, err)

	tests := []struct {
		name           string
		setup          func(*http.Request)
		path           string
		expectedStatus int
		expectedUserID uint
	}{
		{"Bearer header", func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+token) }, "/create/", http.StatusOK, 123},
		{"Cookie", func(r *http.Request) { r.AddCookie(&http.Cookie{Name: TokenCookie, Value: token}) }, "/create/", http.StatusOK, 123},
		{"Query param", func(*http.Request) {}, "/create/?token=" + token, http.StatusOK, 123},
		{"Anonymous", func(*http.Request) {}, "/create/", http.StatusFound, 0},
		{"Basic auth", func(r *http.Request) { r.Header.Set("Authorization", "Basic dXNlcjpwYXNz") }, "/create/", http.StatusFound, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			tt.setup(req)

			resp, err := app.Test(req)
			require.NoError(t, err)
			defer func() { _ = resp.Body.Close() }()
			assert.Equal(t, tt.expectedStatus, resp.StatusCode)

			if tt.expectedStatus == http.StatusFound {
				assert.Equal(t, "/auth/login/?next=/create/", resp.Header.Get("Location"))
				return
			}
			var body map[string]interface{}
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
			assert.Equal(t, float64(tt.expectedUserID), body["userID"])
			assert.Equal(t, "bob", body["username"])
		})
	}
}

func TestAuthenticator_RevokedTokenIsAnonymous(t *testing.T) {
	auth, mr := newTestAuthenticator(t)
	app := fiber.New()
	app.Get("/follow/", auth.Required(), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	token, err := auth.Issue(5, "carol")
	require.NoError(t, err)
	claims, err := auth.Parse(token)
	require.NoError(t, err)

	require.NoError(t, auth.Revoke(context.Background(), claims))
	assert.True(t, mr.Exists("blacklist:"+claims.ID))
	ttl := mr.TTL("blacklist:" + claims.ID)
	assert.Greater(t, ttl, 59*time.Minute)

	req := httptest.NewRequest(http.MethodGet, "/follow/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusFound, resp.StatusCode)
}

func TestAuthenticator_OptionalPassesAnonymous(t *testing.T) {
	auth, _ := newTestAuthenticator(t)
	app := fiber.New()
	app.Use(auth.Optional())
	app.Get("/", func(c *fiber.Ctx) error {
		id, ok := CurrentUserID(c)
		return c.SendString(strconv.FormatBool(ok) + ":" + strconv.FormatUint(uint64(id), 10))
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
