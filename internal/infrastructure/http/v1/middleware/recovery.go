// Package middleware provides HTTP middleware components.
package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"apikit/internal/core/apperror"
	"apikit/pkg/logger"
)

// Recovery converts panics into failures for the lifecycle's failure path.
// It must run inside Lifecycle. A panic carrying an error is a recognized
// internal failure; any other panic value is an unknown failure.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			r := recover()
			if r == nil {
				return
			}
			if r == http.ErrAbortHandler {
				panic(r)
			}

			logger.Error(c.Request.Context(), "panic recovered",
				"panic", r,
				"stack", string(debug.Stack()),
			)

			var err error
			if e, ok := r.(error); ok {
				err = apperror.NewInternal(fmt.Errorf("panic: %w", e))
			} else {
				err = apperror.NewUnknown(r)
			}
			abortWith(c, err)
		}()
		c.Next()
	}
}

// NoRoute raises the routing layer's not-found signal.
func NoRoute() gin.HandlerFunc {
	return func(c *gin.Context) {
		abortWith(c, fmt.Errorf("%s %s: %w", c.Request.Method, c.Request.URL.Path, apperror.ErrNoRoute))
	}
}
