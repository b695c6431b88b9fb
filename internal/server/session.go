package server

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"murmur/internal/middleware"
	"murmur/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	sessionCookieName = "murmur_session"
	tokenIssuer       = "murmur-api"
	tokenAudience     = "murmur-client"
	revokedKeyPrefix  = "revoked:"
)

var errTokenRevoked = errors.New("token has been revoked")

// sessionManager issues and verifies the signed session tokens carried in the
// session cookie or an Authorization header. Revoked token ids live in Redis
// until the token would have expired anyway.
type sessionManager struct {
	secret []byte
	ttl    time.Duration
	redis  *redis.Client
}

func newSessionManager(secret string, ttl time.Duration, rdb *redis.Client) *sessionManager {
	return &sessionManager{secret: []byte(secret), ttl: ttl, redis: rdb}
}

func (m *sessionManager) issue(userID uint) (string, time.Time, error) {
	if len(m.secret) == 0 {
		return "", time.Time{}, fmt.Errorf("JWT secret not configured")
	}

	now := time.Now()
	expires := now.Add(m.ttl)
	claims := jwt.RegisteredClaims{
		Subject:   strconv.FormatUint(uint64(userID), 10),
		Issuer:    tokenIssuer,
		Audience:  jwt.ClaimStrings{tokenAudience},
		ExpiresAt: jwt.NewNumericDate(expires),
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		ID:        uuid.NewString(),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expires, nil
}

// parse validates the token and returns its claims and subject user id.
func (m *sessionManager) parse(ctx context.Context, tokenString string) (*jwt.RegisteredClaims, uint, error) {
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return m.secret, nil
	},
		jwt.WithIssuer(tokenIssuer),
		jwt.WithAudience(tokenAudience),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, 0, err
	}
	if !token.Valid {
		return nil, 0, errors.New("invalid token")
	}

	userID, err := strconv.ParseUint(claims.Subject, 10, 32)
	if err != nil || userID == 0 {
		return nil, 0, errors.New("invalid subject claim")
	}

	if m.redis != nil && claims.ID != "" {
		n, err := m.redis.Exists(ctx, revokedKeyPrefix+claims.ID).Result()
		switch {
		case err != nil:
			middleware.Logger.WarnContext(ctx, "revocation check unavailable", "error", err)
		case n > 0:
			return nil, 0, errTokenRevoked
		}
	}

	return claims, uint(userID), nil
}

// revoke blacklists the token id for the rest of its lifetime. Without Redis
// revocation is limited to clearing the cookie.
func (m *sessionManager) revoke(ctx context.Context, claims *jwt.RegisteredClaims) error {
	if m.redis == nil || claims == nil || claims.ID == "" || claims.ExpiresAt == nil {
		return nil
	}
	ttl := time.Until(claims.ExpiresAt.Time)
	if ttl <= 0 {
		return nil
	}
	return m.redis.Set(ctx, revokedKeyPrefix+claims.ID, "1", ttl).Err()
}

// tokenFromRequest prefers the session cookie and falls back to a Bearer header.
func tokenFromRequest(c *fiber.Ctx) string {
	if token := c.Cookies(sessionCookieName); token != "" {
		return token
	}
	parts := strings.SplitN(c.Get(fiber.HeaderAuthorization), " ", 2)
	if len(parts) == 2 && parts[0] == "Bearer" {
		return strings.TrimSpace(parts[1])
	}
	return ""
}

// ResolveSession attaches the session user, if any, to the request. It never
// rejects; AuthRequired does that for protected routes.
func (s *Server) ResolveSession() fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := tokenFromRequest(c)
		if token == "" {
			return c.Next()
		}

		claims, userID, err := s.sessions.parse(c.UserContext(), token)
		if err != nil {
			c.Locals("sessionError", err)
			return c.Next()
		}

		c.Locals("userID", userID)
		c.Locals("sessionClaims", claims)
		middleware.WithRequestValues(c)
		return c.Next()
	}
}

// AuthRequired rejects requests without a valid session with 401.
func (s *Server) AuthRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, ok := currentUserID(c); ok {
			return c.Next()
		}
		msg := "Authentication required"
		if err, ok := c.Locals("sessionError").(error); ok {
			msg = "Invalid or expired session"
			if errors.Is(err, errTokenRevoked) {
				msg = "Session has been revoked"
			}
		}
		return models.RespondWithError(c, fiber.StatusUnauthorized, models.NewUnauthorizedError(msg))
	}
}

func (s *Server) setSessionCookie(c *fiber.Ctx, token string, expires time.Time) {
	c.Cookie(&fiber.Cookie{
		Name:     sessionCookieName,
		Value:    token,
		Path:     "/",
		Expires:  expires,
		HTTPOnly: true,
		Secure:   s.config.CookieSecure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

func (s *Server) clearSessionCookie(c *fiber.Ctx) {
	c.Cookie(&fiber.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		HTTPOnly: true,
		Secure:   s.config.CookieSecure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

func currentUserID(c *fiber.Ctx) (uint, bool) {
	id, ok := c.Locals("userID").(uint)
	return id, ok && id != 0
}
