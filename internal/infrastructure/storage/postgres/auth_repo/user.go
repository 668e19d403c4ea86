// Package auth_repo provides PostgreSQL implementations for auth repositories.
package auth_repo

import (
	"context"
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"

	"apikit/internal/domain/auth"
	"apikit/internal/domain/user"
	"apikit/internal/infrastructure/storage/postgres"
)

// Compile-time interface checks.
var (
	_ auth.UserRepository = (*UserRepo)(nil)
	_ user.Repository     = (*UserRepo)(nil)
)

const (
	usersTable     = "users"
	userRolesTable = "user_roles"
)

var userColumns = []string{
	"id", "username", "email", "full_name", "password_hash",
	"is_active", "created_at", "updated_at",
}

// UserRepo implements auth.UserRepository and user.Repository.
type UserRepo struct {
	txManager *postgres.TxManager
	builder   squirrel.StatementBuilderType
}

// NewUserRepo creates a new user repository.
func NewUserRepo(txManager *postgres.TxManager) *UserRepo {
	return &UserRepo{
		txManager: txManager,
		builder:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// FindByUsernameOrEmail retrieves a user by username or email, case-insensitively.
func (r *UserRepo) FindByUsernameOrEmail(ctx context.Context, login string) (*auth.User, error) {
	login = strings.ToLower(strings.TrimSpace(login))

	sql, args, err := r.builder.
		Select(userColumns...).
		From(usersTable).
		Where(squirrel.Or{
			squirrel.Expr("lower(username) = ?", login),
			squirrel.Expr("lower(email) = ?", login),
		}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var u auth.User
	err = pgxscan.Get(ctx, r.txManager.DB(ctx), &u, sql, args...)
	if pgxscan.NotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query user: %w", err)
	}
	return &u, nil
}

// ExistsByUsernameOrEmail checks whether the username or email is taken.
func (r *UserRepo) ExistsByUsernameOrEmail(ctx context.Context, username, email string) (bool, error) {
	sql, args, err := r.builder.
		Select("1").
		From(usersTable).
		Where(squirrel.Or{
			squirrel.Expr("lower(username) = lower(?)", username),
			squirrel.Expr("lower(email) = lower(?)", email),
		}).
		Limit(1).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build query: %w", err)
	}

	var one int
	err = pgxscan.Get(ctx, r.txManager.DB(ctx), &one, sql, args...)
	if pgxscan.NotFound(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check user exists: %w", err)
	}
	return true, nil
}

// Create inserts a new user and sets its ID.
func (r *UserRepo) Create(ctx context.Context, u *auth.User) error {
	sql, args, err := r.builder.
		Insert(usersTable).
		Columns("username", "email", "full_name", "password_hash", "is_active", "created_at", "updated_at").
		Values(u.Username, u.Email, u.FullName, u.PasswordHash, u.IsActive, u.CreatedAt, u.UpdatedAt).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if err := r.txManager.DB(ctx).QueryRow(ctx, sql, args...).Scan(&u.ID); err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

// AssignRole grants role to the user; granting twice is a no-op.
func (r *UserRepo) AssignRole(ctx context.Context, userID int64, role string) error {
	sql, args, err := r.builder.
		Insert(userRolesTable).
		Columns("user_id", "role").
		Values(userID, role).
		Suffix("ON CONFLICT (user_id, role) DO NOTHING").
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.txManager.DB(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("assign role: %w", err)
	}
	return nil
}

// LoadRoles loads user's role names in alphabetical order.
func (r *UserRepo) LoadRoles(ctx context.Context, userID int64) ([]string, error) {
	sql, args, err := r.builder.
		Select("role").
		From(userRolesTable).
		Where(squirrel.Eq{"user_id": userID}).
		OrderBy("role").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var roles []string
	if err := pgxscan.Select(ctx, r.txManager.DB(ctx), &roles, sql, args...); err != nil {
		return nil, fmt.Errorf("query roles: %w", err)
	}
	return roles, nil
}

// FindActiveInfo loads the public view of an active user.
// pgx.ErrNoRows is kept in the chain when the user is missing or inactive.
func (r *UserRepo) FindActiveInfo(ctx context.Context, userID int64) (*user.Info, error) {
	sql, args, err := r.builder.
		Select("id", "username", "email", "full_name", "created_at").
		From(usersTable).
		Where(squirrel.Eq{"id": userID, "is_active": true}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var info user.Info
	err = pgxscan.Get(ctx, r.txManager.DB(ctx), &info, sql, args...)
	if pgxscan.NotFound(err) {
		return nil, fmt.Errorf("user %d: %w", userID, pgx.ErrNoRows)
	}
	if err != nil {
		return nil, fmt.Errorf("query user: %w", err)
	}
	return &info, nil
}
