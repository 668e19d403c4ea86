package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"apikit/internal/core/apperror"
	appctx "apikit/internal/core/context"
	"apikit/internal/core/security"
	"apikit/internal/core/tx"
	"apikit/pkg/logger"
)

// ServiceConfig holds auth service configuration.
type ServiceConfig struct {
	BcryptCost  int
	DefaultRole string
}

// DefaultServiceConfig returns default configuration.
func DefaultServiceConfig() ServiceConfig {
	return ServiceConfig{
		BcryptCost:  bcrypt.DefaultCost,
		DefaultRole: security.RoleUser,
	}
}

// Service provides authentication logic.
type Service struct {
	users      UserRepository
	sessions   SessionStore
	audit      AuditLogger
	txManager  tx.Manager
	jwtService *JWTService
	config     ServiceConfig
}

// NewService creates a new auth service.
func NewService(
	users UserRepository,
	sessions SessionStore,
	audit AuditLogger,
	txManager tx.Manager,
	jwtService *JWTService,
	config ServiceConfig,
) *Service {
	return &Service{
		users:      users,
		sessions:   sessions,
		audit:      audit,
		txManager:  txManager,
		jwtService: jwtService,
		config:     config,
	}
}

// Register creates a new user holding the default role.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (*User, error) {
	exists, err := s.users.ExistsByUsernameOrEmail(ctx, req.Username, req.Email)
	if err != nil {
		return nil, fmt.Errorf("check user exists: %w", err)
	}
	if exists {
		return nil, apperror.NewLogic(MsgUserExists).
			WithVariable("username", req.Username).
			WithVariable("email", req.Email)
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.config.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := NewUser(req.Username, req.Email, string(passwordHash))
	user.FullName = req.FullName

	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.users.Create(ctx, user); err != nil {
			return fmt.Errorf("create user: %w", err)
		}
		if err := s.users.AssignRole(ctx, user.ID, s.config.DefaultRole); err != nil {
			return fmt.Errorf("assign default role: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	user.Roles = []string{s.config.DefaultRole}

	s.record(ctx, Event{Action: ActionRegister, UserID: user.ID, Username: user.Username})

	logger.Info(ctx, "user registered",
		"user_id", user.ID,
		"username", user.Username)

	return user, nil
}

// Login verifies credentials and issues a token registered in the session store.
func (s *Service) Login(ctx context.Context, creds Credentials) (*Token, error) {
	user, err := s.users.FindByUsernameOrEmail(ctx, creds.Username)
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	if user == nil {
		s.record(ctx, Event{Action: ActionLoginFailed, Username: creds.Username})
		return nil, apperror.NewAuthentication(MsgInvalidCredentials)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(creds.Password)); err != nil {
		s.record(ctx, Event{Action: ActionLoginFailed, UserID: user.ID, Username: user.Username})
		return nil, apperror.NewAuthentication(MsgInvalidCredentials)
	}

	if !user.IsActive {
		return nil, apperror.NewForbidden(MsgUserInactive)
	}

	roles, err := s.users.LoadRoles(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("load roles: %w", err)
	}

	ttl := s.jwtService.TTL(creds.Remember)
	accessToken, tokenID, expiresAt, err := s.jwtService.Generate(user, roles, ttl)
	if err != nil {
		return nil, err
	}

	if err := s.sessions.Register(ctx, tokenID, user.ID, ttl); err != nil {
		return nil, fmt.Errorf("register session: %w", err)
	}

	s.record(ctx, Event{
		Action:   ActionLogin,
		UserID:   user.ID,
		Username: user.Username,
		Details:  map[string]any{"remember": creds.Remember},
	})

	logger.Info(ctx, "user logged in", "user_id", user.ID)

	return &Token{
		AccessToken: accessToken,
		TokenType:   "Bearer",
		ExpiresAt:   expiresAt,
		ExpiresIn:   int64(ttl.Seconds()),
	}, nil
}

// Logout revokes the token of the current request.
func (s *Service) Logout(ctx context.Context) error {
	user := appctx.User(ctx)
	if user == nil || user.SessionID == "" {
		return apperror.NewAuthorization(MsgNotAuthenticated)
	}

	if err := s.sessions.Revoke(ctx, user.SessionID); err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}

	s.record(ctx, Event{Action: ActionLogout, UserID: user.UserID, Username: user.Username})
	return nil
}

// Authenticate verifies a bearer token and returns the user it was issued to.
// A malformed token is an authentication failure; any other invalid, expired
// or revoked token is apperror.ErrUnauthorized.
func (s *Service) Authenticate(ctx context.Context, token string) (*appctx.UserProfile, error) {
	claims, err := s.jwtService.Parse(token)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenMalformed) {
			return nil, apperror.NewAuthentication(MsgMalformedToken).WithCause(err)
		}
		return nil, fmt.Errorf("%w: %w", apperror.ErrUnauthorized, err)
	}

	userID, err := claims.UserID()
	if err != nil || claims.ID == "" {
		return nil, fmt.Errorf("%w: incomplete claims", apperror.ErrUnauthorized)
	}

	active, err := s.sessions.Exists(ctx, claims.ID)
	if err != nil {
		return nil, fmt.Errorf("check session: %w", err)
	}
	if !active {
		return nil, fmt.Errorf("%w: token revoked", apperror.ErrUnauthorized)
	}

	return &appctx.UserProfile{
		UserID:    userID,
		Username:  claims.Username,
		Roles:     appctx.NewRoleSet(claims.Roles...),
		SessionID: claims.ID,
	}, nil
}

// record writes an audit event; audit failures never fail the operation.
func (s *Service) record(ctx context.Context, event Event) {
	if s.audit == nil {
		return
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}
	if err := s.audit.Record(ctx, event); err != nil {
		logger.Warn(ctx, "failed to record audit event", "action", event.Action, "error", err)
	}
}
