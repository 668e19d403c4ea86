package middleware

import (
	"github.com/gin-gonic/gin"

	appctx "apikit/internal/core/context"
	"apikit/internal/infrastructure/http/v1/response"
)

// HeaderAcceptLanguage is stored verbatim as the request locale.
const HeaderAcceptLanguage = "Accept-Language"

const resultKey = "apikit.result"

// SetResult records a handler's successful return value for the success path.
func SetResult(c *gin.Context, result any) {
	c.Set(resultKey, result)
}

// Result returns the value recorded by SetResult.
func Result(c *gin.Context) (any, bool) {
	return c.Get(resultKey)
}

// Lifecycle decorates every request:
//
//  1. pre-hook: the Accept-Language header (or "en") becomes the request locale;
//  2. dispatch: the rest of the chain runs;
//  3. post-hook: exactly one of the success path (Normalize) or the failure path
//     (Classify) renders the response.
//
// A missing or blank header never aborts the request.
func Lifecycle() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := appctx.WithLocale(c.Request.Context(), c.GetHeader(HeaderAcceptLanguage))
		c.Request = c.Request.WithContext(ctx)

		c.Next()

		if len(c.Errors) > 0 {
			handleFailure(c, c.Errors.Last().Err)
			return
		}
		handleSuccess(c)
	}
}

func handleFailure(c *gin.Context, err error) {
	status, env := response.Classify(c.Request.Context(), err)

	// If response already written by handler, do not override it.
	if c.Writer.Written() {
		return
	}
	c.JSON(status, env)
}

func handleSuccess(c *gin.Context) {
	if c.Writer.Written() {
		return
	}
	result, _ := Result(c)
	status, env := response.Normalize(result)
	c.JSON(status, env)
}
