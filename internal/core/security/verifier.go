// Package security provides role-based access checks against the request's user.
package security

import (
	"context"

	"apikit/internal/core/apperror"
	appctx "apikit/internal/core/context"
)

// Role codes carried in token claims.
const (
	RoleAdmin = "ADMIN"
	RoleUser  = "USER"
)

// RequireRole fails closed: it returns an authorization failure unless the
// current user holds role. An unauthenticated request has no roles.
func RequireRole(ctx context.Context, role string) error {
	if appctx.CurrentUserRoles(ctx).Has(role) {
		return nil
	}
	return apperror.NewAuthorization("missing role").WithVariable("role", role)
}

// AccessVerifier is the injectable form of RequireRole for services and handlers.
type AccessVerifier struct{}

// NewAccessVerifier creates a new verifier.
func NewAccessVerifier() *AccessVerifier {
	return &AccessVerifier{}
}

// RequireRole checks role against the user bound to ctx.
func (v *AccessVerifier) RequireRole(ctx context.Context, role string) error {
	return RequireRole(ctx, role)
}
