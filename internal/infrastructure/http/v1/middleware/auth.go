package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"apikit/internal/core/apperror"
	appctx "apikit/internal/core/context"
)

const HeaderAuthorization = "Authorization"

// Authenticator verifies a bearer token and resolves the user behind it.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*appctx.UserProfile, error)
}

// Auth binds the bearer token's user to the request. A missing or non-bearer
// credential fails with the router's unauthorized signal; failures from the
// authenticator pass through unchanged.
func Auth(authenticator Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader(HeaderAuthorization))
		if !ok {
			abortWith(c, apperror.ErrUnauthorized)
			return
		}

		user, err := authenticator.Authenticate(c.Request.Context(), token)
		if err != nil {
			abortWith(c, err)
			return
		}

		c.Request = c.Request.WithContext(appctx.WithUser(c.Request.Context(), user))
		c.Next()
	}
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// abortWith hands err to Lifecycle and stops the chain.
func abortWith(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}
