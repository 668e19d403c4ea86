package auth

import (
	"context"
	"time"
)

// UserRepository defines user storage operations.
type UserRepository interface {
	// FindByUsernameOrEmail returns the user whose username or email equals login.
	// It returns (nil, nil) when there is no such user.
	FindByUsernameOrEmail(ctx context.Context, login string) (*User, error)

	// ExistsByUsernameOrEmail checks whether either value is already taken.
	ExistsByUsernameOrEmail(ctx context.Context, username, email string) (bool, error)

	// Create inserts the user and sets its ID.
	Create(ctx context.Context, user *User) error

	// AssignRole grants a role to user.
	AssignRole(ctx context.Context, userID int64, role string) error

	// LoadRoles loads user's role names.
	LoadRoles(ctx context.Context, userID int64) ([]string, error)
}

// SessionStore tracks issued token ids so tokens can be revoked before expiry.
type SessionStore interface {
	Register(ctx context.Context, tokenID string, userID int64, ttl time.Duration) error
	Exists(ctx context.Context, tokenID string) (bool, error)
	Revoke(ctx context.Context, tokenID string) error
}

// AuditLogger records authentication events.
type AuditLogger interface {
	Record(ctx context.Context, event Event) error
}
