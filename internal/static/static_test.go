package static

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"tradeline-server/internal/observability"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func writeBundle(t *testing.T) string {
	t.Helper()
	dist := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dist, "index.html"),
		[]byte("<html>app shell</html>"), 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(dist, "assets"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dist, "assets", "app.abc123.js"),
		[]byte("console.log('app')"), 0o644))
	return dist
}

func setupRouter(distDir string) *gin.Engine {
	site := New(distDir, observability.NewLogger())
	r := gin.New()
	r.NoRoute(site.ServeSPA)
	return r
}

func get(r *gin.Engine, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "http://example.com"+path, nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestServeSPA_HashedAssetImmutable(t *testing.T) {
	t.Parallel()
	r := setupRouter(writeBundle(t))

	w := get(r, "/assets/app.abc123.js")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "public, max-age=31536000, immutable", w.Header().Get("Cache-Control"))
	assert.Contains(t, w.Body.String(), "console.log")
}

func TestServeSPA_DeepLinkFallsBackToIndex(t *testing.T) {
	t.Parallel()
	r := setupRouter(writeBundle(t))

	w := get(r, "/pricing/compare")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "no-cache", w.Header().Get("Cache-Control"))
	assert.Contains(t, w.Body.String(), "app shell")
}

func TestServeSPA_IndexNeverCached(t *testing.T) {
	t.Parallel()
	r := setupRouter(writeBundle(t))

	w := get(r, "/index.html")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "no-cache", w.Header().Get("Cache-Control"))
}

func TestServeSPA_MissingBundleAnswers503(t *testing.T) {
	t.Parallel()
	r := setupRouter(t.TempDir())

	w := get(r, "/pricing/compare")

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "Build missing", w.Body.String())
}

func TestServeSPA_NonGETAnswers404(t *testing.T) {
	t.Parallel()
	r := setupRouter(writeBundle(t))

	req := httptest.NewRequest(http.MethodPost, "http://example.com/pricing/compare", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.NotContains(t, w.Body.String(), "app shell")
}

func TestReady(t *testing.T) {
	t.Parallel()
	withBundle := New(writeBundle(t), observability.NewLogger())
	assert.True(t, withBundle.Ready())

	empty := New(t.TempDir(), observability.NewLogger())
	assert.False(t, empty.Ready())
}
