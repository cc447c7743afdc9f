// Package middleware provides authentication and authorization middleware for the application.
package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"yatube/internal/config"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	TokenIssuer   = "yatube-api"
	TokenAudience = "yatube-client"
	// TokenCookie carries the token for browser clients.
	TokenCookie = "token"

	blacklistPrefix = "blacklist:"
)

// Claims are the JWT claims issued at login.
type Claims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// UserID parses the subject claim.
func (c *Claims) UserID() (uint, error) {
	id, err := strconv.ParseUint(c.Subject, 10, 32)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid subject %q", c.Subject)
	}
	return uint(id), nil
}

// Authenticator issues and verifies access tokens. Revoked token ids are
// kept in Redis until the token would have expired anyway.
type Authenticator struct {
	secret   []byte
	ttl      time.Duration
	loginURL string
	redis    *redis.Client
}

// NewAuthenticator builds an Authenticator. rdb may be nil, which disables revocation.
func NewAuthenticator(cfg *config.Config, rdb *redis.Client) *Authenticator {
	return &Authenticator{
		secret:   []byte(cfg.JWTSecret),
		ttl:      cfg.TokenTTL(),
		loginURL: cfg.LoginURL,
		redis:    rdb,
	}
}

// Issue signs a token for the user.
func (a *Authenticator) Issue(userID uint, username string) (string, error) {
	if len(a.secret) == 0 {
		return "", errors.New("JWT secret not configured")
	}

	now := time.Now()
	claims := Claims{
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(userID), 10),
			Issuer:    TokenIssuer,
			Audience:  jwt.ClaimStrings{TokenAudience},
			ExpiresAt: jwt.NewNumericDate(now.Add(a.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ID:        uuid.NewString(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(a.secret)
}

// Parse verifies signature, issuer, audience and expiry.
func (a *Authenticator) Parse(tokenString string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(*jwt.Token) (interface{}, error) {
		return a.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(TokenIssuer),
		jwt.WithAudience(TokenAudience),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, err
	}
	if _, err := claims.UserID(); err != nil {
		return nil, err
	}
	return claims, nil
}

// Revoke blacklists the token id for the rest of its lifetime.
func (a *Authenticator) Revoke(ctx context.Context, claims *Claims) error {
	if a.redis == nil || claims.ID == "" {
		return nil
	}
	ttl := time.Minute
	if claims.ExpiresAt != nil {
		if remaining := time.Until(claims.ExpiresAt.Time); remaining > 0 {
			ttl = remaining
		}
	}
	return a.redis.Set(ctx, blacklistPrefix+claims.ID, "1", ttl).Err()
}

func (a *Authenticator) isRevoked(ctx context.Context, jti string) bool {
	if a.redis == nil || jti == "" {
		return false
	}
	n, err := a.redis.Exists(ctx, blacklistPrefix+jti).Result()
	return err == nil && n > 0
}

// TokenFromRequest returns the bearer token, the token cookie or the token
// query parameter, in that order.
func TokenFromRequest(c *fiber.Ctx) string {
	if authHeader := c.Get(fiber.HeaderAuthorization); authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && parts[0] == "Bearer" {
			return strings.TrimSpace(parts[1])
		}
	}
	if cookie := c.Cookies(TokenCookie); cookie != "" {
		return cookie
	}
	return c.Query("token")
}

// authenticate resolves the caller and stores their identity in locals and
// the request context. It returns false for anonymous or invalid callers.
func (a *Authenticator) authenticate(c *fiber.Ctx) bool {
	if _, ok := c.Locals("userID").(uint); ok {
		return true
	}

	tokenString := TokenFromRequest(c)
	if tokenString == "" {
		return false
	}
	claims, err := a.Parse(tokenString)
	if err != nil {
		return false
	}
	if a.isRevoked(c.UserContext(), claims.ID) {
		return false
	}

	userID, _ := claims.UserID()
	c.Locals("userID", userID)
	c.Locals("username", claims.Username)
	c.Locals("claims", claims)
	c.SetUserContext(context.WithValue(c.UserContext(), UserIDKey, userID))
	return true
}

// Optional identifies the caller when a valid token is present and lets
// anonymous requests through unchanged.
func (a *Authenticator) Optional() fiber.Handler {
	return func(c *fiber.Ctx) error {
		a.authenticate(c)
		return c.Next()
	}
}

// Required lets authenticated callers through and redirects everyone else to
// the login page with the current path as the return target.
func (a *Authenticator) Required() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if a.authenticate(c) {
			return c.Next()
		}
		return c.Redirect(LoginRedirectURL(a.loginURL, c.OriginalURL()), fiber.StatusFound)
	}
}

// LoginRedirectURL builds "<loginURL>?next=<next>" leaving slashes readable.
func LoginRedirectURL(loginURL, next string) string {
	escaped := strings.ReplaceAll(url.QueryEscape(next), "%2F", "/")
	sep := "?"
	if strings.Contains(loginURL, "?") {
		sep = "&"
	}
	return loginURL + sep + "next=" + escaped
}

// CurrentUserID returns the authenticated caller set by Optional or Required.
func CurrentUserID(c *fiber.Ctx) (uint, bool) {
	id, ok := c.Locals("userID").(uint)
	return id, ok && id != 0
}

// CurrentUsername returns the authenticated caller's username.
func CurrentUsername(c *fiber.Ctx) string {
	name, _ := c.Locals("username").(string)
	return name
}

// CurrentClaims returns the verified token claims.
func CurrentClaims(c *fiber.Ctx) (*Claims, bool) {
	claims, ok := c.Locals("claims").(*Claims)
	return claims, ok
}
