package middleware

import (
	"net/http"
	"slices"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// CORSConfig configures cross-origin access.
type CORSConfig struct {
	// AllowOrigins lists allowed origins; "*" allows every origin.
	AllowOrigins     []string
	AllowCredentials bool
	MaxAge           time.Duration
}

// CORS returns the cross-origin middleware. A wildcard origin is echoed back
// per request so it can be combined with credentials.
func CORS(cfg CORSConfig) gin.HandlerFunc {
	c := cors.Config{
		AllowMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodPut,
			http.MethodDelete,
			http.MethodPatch,
			http.MethodOptions,
			http.MethodHead,
		},
		AllowHeaders: []string{
			"X-Requested-With",
			"Content-Type",
			"Accept",
			"Accept-Language",
			"Origin",
			"Authorization",
		},
		ExposeHeaders:    []string{HeaderRequestID, HeaderTraceID},
		AllowCredentials: cfg.AllowCredentials,
		MaxAge:           cfg.MaxAge,
	}

	if len(cfg.AllowOrigins) == 0 || slices.Contains(cfg.AllowOrigins, "*") {
		c.AllowOriginFunc = func(string) bool { return true }
	} else {
		c.AllowOrigins = cfg.AllowOrigins
	}

	return cors.New(c)
}
