package auth

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"tradeline-server/internal/apierrors"
	"tradeline-server/internal/observability"
)

var (
	ErrExpiredToken  = errors.New("token expired")
	ErrParseJWTToken = errors.New("failed to parse token")
)

// Guard protects operator-only routes with a bearer JWT signed with a shared
// secret. It carries no user store; the diagnostics surface only needs to
// know the caller holds a valid token.
type Guard struct {
	secret  string
	enabled bool
	logger  *observability.Logger
}

func NewGuard(secret string, logger *observability.Logger) Guard {
	return Guard{
		secret:  secret,
		enabled: secret != "",
		logger:  logger,
	}
}

// Middleware rejects requests without a valid bearer token. When no secret
// is configured the guard is open, which keeps local development usable.
func (g *Guard) Middleware(c *gin.Context) {
	if !g.enabled {
		c.Next()
		return
	}

	ctx := c.Request.Context()
	tokenHeader := c.GetHeader("Authorization")

	if tokenHeader == "" || !strings.HasPrefix(tokenHeader, "Bearer ") {
		apierrors.Unauthorized(c, "Authorization token is missing or invalid")
		c.Abort()
		return
	}

	tokenString := strings.TrimPrefix(tokenHeader, "Bearer ")

	if err := g.validate(tokenString); err != nil {
		g.logger.Warn(ctx, "rejecting diagnostics request with invalid token")
		apierrors.Unauthorized(c, err.Error())
		c.Abort()
		return
	}

	c.Next()
}

func (g *Guard) validate(tokenString string) error {
	_, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(g.secret), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return ErrExpiredToken
		}
		return ErrParseJWTToken
	}
	return nil
}
