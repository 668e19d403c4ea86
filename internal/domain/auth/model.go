// Package auth provides authentication domain logic.
package auth

import (
	"time"
)

// Message keys returned to clients.
const (
	MsgInvalidCredentials = "app.auth.exception.invalid-credentials"
	MsgUserExists         = "app.auth.exception.user-exists"
	MsgUserInactive       = "app.auth.exception.user-inactive"
	MsgMalformedToken     = "app.auth.exception.malformed-token"
	MsgNotAuthenticated   = "app.auth.exception.not-authenticated"
)

// User represents a system user.
type User struct {
	ID           int64     `db:"id" json:"id"`
	Username     string    `db:"username" json:"username"`
	Email        string    `db:"email" json:"email"`
	FullName     string    `db:"full_name" json:"fullName,omitempty"`
	PasswordHash string    `db:"password_hash" json:"-"`
	IsActive     bool      `db:"is_active" json:"isActive"`
	CreatedAt    time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt    time.Time `db:"updated_at" json:"updatedAt"`

	// Loaded relations
	Roles []string `db:"-" json:"roles,omitempty"`
}

// NewUser creates a new active user.
func NewUser(username, email, passwordHash string) *User {
	now := time.Now().UTC()
	return &User{
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// Credentials for login. Username may also be an email address.
type Credentials struct {
	Username string
	Password string
	// Remember selects the longer token lifetime.
	Remember bool
}

// RegisterRequest for user registration.
type RegisterRequest struct {
	Username string
	Email    string
	Password string
	FullName string
}

// Token is an issued access token.
type Token struct {
	AccessToken string    `json:"accessToken"`
	TokenType   string    `json:"tokenType"`
	ExpiresAt   time.Time `json:"expiresAt"`
	ExpiresIn   int64     `json:"expiresIn"`
}

// Audit actions.
const (
	ActionLogin       = "login"
	ActionLoginFailed = "login_failed"
	ActionLogout      = "logout"
	ActionRegister    = "register"
)

// Event is an authentication event handed to the audit log.
type Event struct {
	Action     string
	UserID     int64
	Username   string
	Details    map[string]any
	OccurredAt time.Time
}
