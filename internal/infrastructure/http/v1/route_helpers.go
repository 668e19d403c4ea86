package v1

import (
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"apikit/internal/infrastructure/http/v1/middleware"
)

// secureGroup returns parent's "/secure" subgroup, which requires a bearer token.
func secureGroup(parent *gin.RouterGroup, authenticator middleware.Authenticator) *gin.RouterGroup {
	group := parent.Group("/secure")
	group.Use(middleware.Auth(authenticator))
	return group
}

func ok(*gin.Context) (any, error) {
	return "ok", nil
}

// noRoute raises the no-route failure for API paths. Other GET and HEAD
// requests are served from staticDir, falling back to index.html so the
// SPA can route on the client.
func noRoute(staticDir string) gin.HandlerFunc {
	notFound := middleware.NoRoute()
	if staticDir == "" {
		return notFound
	}

	root := http.Dir(staticDir)
	fileServer := http.FileServer(root)
	index := filepath.Join(staticDir, "index.html")

	return func(c *gin.Context) {
		p := c.Request.URL.Path
		if isAPIPath(p) || (c.Request.Method != http.MethodGet && c.Request.Method != http.MethodHead) {
			notFound(c)
			return
		}

		if f, err := root.Open(path.Clean(p)); err == nil {
			stat, statErr := f.Stat()
			_ = f.Close()
			if statErr == nil && !stat.IsDir() {
				fileServer.ServeHTTP(c.Writer, c.Request)
				served(c)
				return
			}
		}

		if _, err := os.Stat(index); err != nil {
			notFound(c)
			return
		}
		c.File(index)
		served(c)
	}
}

// served flushes the status of a file response. A 304 or a HEAD reply
// carries no body, and Lifecycle must still see the response as written.
func served(c *gin.Context) {
	c.Writer.WriteHeaderNow()
	c.Abort()
}

func isAPIPath(p string) bool {
	return p == "/api" || strings.HasPrefix(p, "/api/")
}
