// Package handlers provides HTTP request handlers.
package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"apikit/internal/core/apperror"
	"apikit/internal/infrastructure/http/v1/middleware"
)

// MsgBadRequest is returned when a request body cannot be decoded.
const MsgBadRequest = "app.common.exception.bad-request"

// HandlerFunc returns its result instead of writing the response.
type HandlerFunc func(c *gin.Context) (any, error)

// Handle adapts fn to gin. The result is rendered by middleware.Lifecycle:
// errors go to the failure path, everything else to the success path.
func Handle(fn HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		result, err := fn(c)
		if err != nil {
			_ = c.Error(err)
			c.Abort()
			return
		}
		middleware.SetResult(c, result)
	}
}

// BindJSON binds and validates JSON request body.
// Field validation errors are returned as-is; undecodable bodies become logic failures.
func BindJSON(c *gin.Context, obj any) error {
	err := c.ShouldBindJSON(obj)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		return verrs
	}
	return apperror.NewLogic(MsgBadRequest).WithCause(err)
}
