// Package context provides request-scoped values: locale, authenticated user and trace ids.
// Values live on the request's context.Context, so they are never shared between requests.
package context

import (
	"context"
	"sort"
)

// RoleSet is a set of role codes.
type RoleSet map[string]struct{}

// NewRoleSet builds a set from role codes, skipping empty ones.
func NewRoleSet(roles ...string) RoleSet {
	set := make(RoleSet, len(roles))
	for _, r := range roles {
		if r != "" {
			set[r] = struct{}{}
		}
	}
	return set
}

// Has reports whether role is in the set. A nil set has no roles.
func (s RoleSet) Has(role string) bool {
	_, ok := s[role]
	return ok
}

// Slice returns the roles in sorted order.
func (s RoleSet) Slice() []string {
	out := make([]string, 0, len(s))
	for r := range s {
		out = append(out, r)
	}
	sort.Strings(out)
	return out
}

// UserProfile contains authenticated user information.
type UserProfile struct {
	UserID    int64
	Username  string
	Roles     RoleSet
	SessionID string // jti of the token that authenticated the request
}

type userContextKey struct{}

// WithUser adds UserProfile to context.
func WithUser(ctx context.Context, user *UserProfile) context.Context {
	return context.WithValue(ctx, userContextKey{}, user)
}

// User returns UserProfile from context, or nil.
func User(ctx context.Context) *UserProfile {
	if v, ok := ctx.Value(userContextKey{}).(*UserProfile); ok {
		return v
	}
	return nil
}

// CurrentUserID returns the authenticated user id, or 0.
func CurrentUserID(ctx context.Context) int64 {
	if u := User(ctx); u != nil {
		return u.UserID
	}
	return 0
}

// CurrentUserRoles returns the authenticated user's roles, or an empty set.
func CurrentUserRoles(ctx context.Context) RoleSet {
	if u := User(ctx); u != nil && u.Roles != nil {
		return u.Roles
	}
	return RoleSet{}
}
