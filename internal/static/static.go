package static

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"tradeline-server/internal/observability"
)

// Cache policy for the bundle: hashed assets never change under the same
// name, index.html must always be revalidated so deploys take effect.
const (
	assetCacheControl = "public, max-age=31536000, immutable"
	indexCacheControl = "no-cache"
)

// Server serves the pre-built single-page app bundle. Every GET that is not
// an API route falls back to index.html so client-side routing works on deep
// links and refreshes.
type Server struct {
	distDir string
	logger  *observability.Logger
}

func New(distDir string, logger *observability.Logger) Server {
	return Server{distDir: distDir, logger: logger}
}

// ServeSPA serves an existing asset from the bundle, or index.html for
// anything else. A missing bundle answers 503 so the condition reads as a
// deploy problem, not a bad route. Non-GET methods are not the SPA's to
// answer. Path traversal outside the bundle directory is refused.
func (s *Server) ServeSPA(c *gin.Context) {
	if c.Request.Method != http.MethodGet {
		c.Status(http.StatusNotFound)
		return
	}

	requested := filepath.Clean(c.Request.URL.Path)
	if strings.Contains(requested, "..") {
		c.Status(http.StatusBadRequest)
		return
	}

	asset := filepath.Join(s.distDir, requested)
	if info, err := os.Stat(asset); err == nil && !info.IsDir() {
		if strings.HasPrefix(requested, "/assets/") {
			c.Header("Cache-Control", assetCacheControl)
		} else {
			c.Header("Cache-Control", indexCacheControl)
		}
		c.File(asset)
		return
	}

	index := filepath.Join(s.distDir, "index.html")
	if _, err := os.Stat(index); err != nil {
		c.String(http.StatusServiceUnavailable, "Build missing")
		return
	}
	c.Header("Cache-Control", indexCacheControl)
	c.File(index)
}

// Ready reports whether the bundle is present on disk. The process can still
// answer voice webhooks without it, but a load balancer should not route
// site traffic here until the bundle exists.
func (s *Server) Ready() bool {
	info, err := os.Stat(filepath.Join(s.distDir, "index.html"))
	return err == nil && !info.IsDir()
}
