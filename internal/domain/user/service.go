// Package user provides read access to the signed-in user.
package user

import (
	"context"
	"fmt"
	"time"

	"apikit/internal/core/apperror"
	appctx "apikit/internal/core/context"
)

// Info is the public view of the current user.
type Info struct {
	ID        int64     `db:"id" json:"id"`
	Username  string    `db:"username" json:"username"`
	Email     string    `db:"email" json:"email"`
	FullName  string    `db:"full_name" json:"fullName,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	Roles     []string  `db:"-" json:"roles"`
}

// Repository loads user views.
type Repository interface {
	// FindActiveInfo loads an active user by id.
	// A missing or inactive user surfaces pgx.ErrNoRows in the error chain.
	FindActiveInfo(ctx context.Context, userID int64) (*Info, error)

	// LoadRoles loads user's role names.
	LoadRoles(ctx context.Context, userID int64) ([]string, error)
}

// Service provides user read operations.
type Service struct {
	repo Repository
}

// NewService creates a new user service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// CurrentUserInfo returns the user of the current request with roles.
func (s *Service) CurrentUserInfo(ctx context.Context) (*Info, error) {
	userID := appctx.CurrentUserID(ctx)
	if userID == 0 {
		return nil, apperror.ErrUnauthorized
	}

	info, err := s.repo.FindActiveInfo(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("find user %d: %w", userID, err)
	}

	roles, err := s.repo.LoadRoles(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load roles: %w", err)
	}
	if roles == nil {
		roles = []string{}
	}
	info.Roles = roles

	return info, nil
}
