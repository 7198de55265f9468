package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"tradeline-server/internal/observability"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "diagnostics-secret"

func init() {
	gin.SetMode(gin.TestMode)
}

func setupRouter(secret string) *gin.Engine {
	guard := NewGuard(secret, observability.NewLogger())
	r := gin.New()
	r.GET("/twilioz", guard.Middleware, func(c *gin.Context) {
		c.String(http.StatusOK, "diagnostics")
	})
	return r
}

func signToken(t *testing.T, secret string, expiresIn time.Duration) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"iat": time.Now().Unix(),
		"exp": time.Now().Add(expiresIn).Unix(),
	})
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func get(r *gin.Engine, bearer string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "http://example.com/twilioz", nil)
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestMiddleware_ValidToken(t *testing.T) {
	t.Parallel()
	r := setupRouter(testSecret)

	w := get(r, signToken(t, testSecret, time.Hour))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "diagnostics", w.Body.String())
}

func TestMiddleware_MissingToken(t *testing.T) {
	t.Parallel()
	r := setupRouter(testSecret)

	w := get(r, "")

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "UNAUTHORIZED")
	assert.NotContains(t, w.Body.String(), "diagnostics")
}

func TestMiddleware_WrongSecret(t *testing.T) {
	t.Parallel()
	r := setupRouter(testSecret)

	w := get(r, signToken(t, "some-other-secret", time.Hour))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "UNAUTHORIZED")
}

func TestMiddleware_ExpiredToken(t *testing.T) {
	t.Parallel()
	r := setupRouter(testSecret)

	w := get(r, signToken(t, testSecret, -time.Hour))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), ErrExpiredToken.Error())
}

func TestMiddleware_OpenWithoutSecret(t *testing.T) {
	t.Parallel()
	r := setupRouter("")

	w := get(r, "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "diagnostics", w.Body.String())
}
