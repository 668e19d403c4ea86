package auth

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"apikit/internal/core/apperror"
	appctx "apikit/internal/core/context"
	"apikit/internal/core/security"
)

// Mock objects
type mockUsers struct {
	mu     sync.Mutex
	nextID int64
	byID   map[int64]*User
	roles  map[int64][]string
}

func newMockUsers() *mockUsers {
	return &mockUsers{byID: map[int64]*User{}, roles: map[int64][]string{}}
}

func (m *mockUsers) FindByUsernameOrEmail(_ context.Context, login string) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.byID {
		if u.Username == login || u.Email == login {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *mockUsers) ExistsByUsernameOrEmail(_ context.Context, username, email string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.byID {
		if u.Username == username || u.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockUsers) Create(_ context.Context, user *User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	user.ID = m.nextID
	cp := *user
	m.byID[user.ID] = &cp
	return nil
}

func (m *mockUsers) AssignRole(_ context.Context, userID int64, role string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.roles[userID] = append(m.roles[userID], role)
	return nil
}

func (m *mockUsers) LoadRoles(_ context.Context, userID int64) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.roles[userID], nil
}

type mockSessions struct {
	mu   sync.Mutex
	ttls map[string]time.Duration
}

func (m *mockSessions) Register(_ context.Context, tokenID string, _ int64, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ttls == nil {
		m.ttls = map[string]time.Duration{}
	}
	m.ttls[tokenID] = ttl
	return nil
}

func (m *mockSessions) Exists(_ context.Context, tokenID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.ttls[tokenID]
	return ok, nil
}

func (m *mockSessions) Revoke(_ context.Context, tokenID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.ttls, tokenID)
	return nil
}

type mockAudit struct {
	events []Event
	err    error
}

func (m *mockAudit) Record(_ context.Context, event Event) error {
	m.events = append(m.events, event)
	return m.err
}

func (m *mockAudit) actions() []string {
	out := make([]string, 0, len(m.events))
	for _, e := range m.events {
		out = append(out, e.Action)
	}
	return out
}

type mockTx struct{ calls int }

func (m *mockTx) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	m.calls++
	return fn(ctx)
}

type fixture struct {
	svc      *Service
	users    *mockUsers
	sessions *mockSessions
	audit    *mockAudit
	tx       *mockTx
	jwt      *JWTService
}

func newFixture() *fixture {
	f := &fixture{
		users:    newMockUsers(),
		sessions: &mockSessions{},
		audit:    &mockAudit{},
		tx:       &mockTx{},
		jwt: NewJWTService(JWTConfig{
			Secret:      "test-secret",
			Issuer:      "apikit-test",
			TTL:         time.Hour,
			RememberTTL: 48 * time.Hour,
		}),
	}
	cfg := DefaultServiceConfig()
	cfg.BcryptCost = bcrypt.MinCost
	f.svc = NewService(f.users, f.sessions, f.audit, f.tx, f.jwt, cfg)
	return f
}

func (f *fixture) register(t *testing.T, username, email, password string) *User {
	t.Helper()
	user, err := f.svc.Register(context.Background(), RegisterRequest{
		Username: username,
		Email:    email,
		Password: password,
	})
	require.NoError(t, err)
	return user
}

func TestRegister(t *testing.T) {
	f := newFixture()

	user := f.register(t, "alice", "alice@example.com", "secret123")

	assert.Equal(t, int64(1), user.ID)
	assert.True(t, user.IsActive)
	assert.Equal(t, []string{security.RoleUser}, user.Roles)
	assert.NotEqual(t, "secret123", user.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("secret123")))
	assert.Equal(t, 1, f.tx.calls)
	assert.Equal(t, []string{security.RoleUser}, f.users.roles[user.ID])
	assert.Equal(t, []string{ActionRegister}, f.audit.actions())
}

func TestRegister_Duplicate(t *testing.T) {
	f := newFixture()
	f.register(t, "alice", "alice@example.com", "secret123")

	_, err := f.svc.Register(context.Background(), RegisterRequest{
		Username: "bob",
		Email:    "alice@example.com",
		Password: "secret123",
	})

	appErr, ok := apperror.AsError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.KindLogic, appErr.Kind)
	assert.Equal(t, MsgUserExists, appErr.Message)
	assert.Equal(t, map[string]any{"username": "bob", "email": "alice@example.com"}, appErr.Variables)
	assert.Equal(t, 1, f.tx.calls)
}

func TestLogin(t *testing.T) {
	f := newFixture()
	user := f.register(t, "alice", "alice@example.com", "secret123")

	for _, login := range []string{"alice", "alice@example.com"} {
		t.Run(login, func(t *testing.T) {
			token, err := f.svc.Login(context.Background(), Credentials{Username: login, Password: "secret123"})
			require.NoError(t, err)

			assert.Equal(t, "Bearer", token.TokenType)
			assert.Equal(t, int64(time.Hour.Seconds()), token.ExpiresIn)

			claims, err := f.jwt.Parse(token.AccessToken)
			require.NoError(t, err)
			uid, err := claims.UserID()
			require.NoError(t, err)
			assert.Equal(t, user.ID, uid)
			assert.Equal(t, []string{security.RoleUser}, claims.Roles)
			assert.Equal(t, time.Hour, f.sessions.ttls[claims.ID])
		})
	}
}

func TestLogin_Remember(t *testing.T) {
	f := newFixture()
	f.register(t, "alice", "alice@example.com", "secret123")

	token, err := f.svc.Login(context.Background(), Credentials{Username: "alice", Password: "secret123", Remember: true})
	require.NoError(t, err)

	assert.Equal(t, int64((48 * time.Hour).Seconds()), token.ExpiresIn)
}

func TestLogin_InvalidCredentials(t *testing.T) {
	f := newFixture()
	f.register(t, "alice", "alice@example.com", "secret123")

	tests := []struct {
		name string
		cred Credentials
	}{
		{"unknown user", Credentials{Username: "nobody", Password: "secret123"}},
		{"wrong password", Credentials{Username: "alice", Password: "wrong"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.Login(context.Background(), tt.cred)

			appErr, ok := apperror.AsError(err)
			require.True(t, ok)
			assert.Equal(t, apperror.KindAuthentication, appErr.Kind)
			assert.Equal(t, MsgInvalidCredentials, appErr.Message)
		})
	}
	assert.Empty(t, f.sessions.ttls)
}

func TestLogin_Inactive(t *testing.T) {
	f := newFixture()
	user := f.register(t, "alice", "alice@example.com", "secret123")
	f.users.byID[user.ID].IsActive = false

	_, err := f.svc.Login(context.Background(), Credentials{Username: "alice", Password: "secret123"})

	assert.True(t, apperror.IsKind(err, apperror.KindForbidden))
}

func TestAuthenticate(t *testing.T) {
	f := newFixture()
	user := f.register(t, "alice", "alice@example.com", "secret123")
	token, err := f.svc.Login(context.Background(), Credentials{Username: "alice", Password: "secret123"})
	require.NoError(t, err)

	profile, err := f.svc.Authenticate(context.Background(), token.AccessToken)
	require.NoError(t, err)

	assert.Equal(t, user.ID, profile.UserID)
	assert.Equal(t, "alice", profile.Username)
	assert.True(t, profile.Roles.Has(security.RoleUser))
	assert.NotEmpty(t, profile.SessionID)
}

func TestAuthenticate_Malformed(t *testing.T) {
	f := newFixture()

	_, err := f.svc.Authenticate(context.Background(), "not-a-jwt")

	appErr, ok := apperror.AsError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.KindAuthentication, appErr.Kind)
	assert.Equal(t, MsgMalformedToken, appErr.Message)
}

func TestAuthenticate_Unauthorized(t *testing.T) {
	f := newFixture()
	user := f.register(t, "alice", "alice@example.com", "secret123")

	other := NewJWTService(JWTConfig{Secret: "other", Issuer: "apikit-test", TTL: time.Hour})
	foreign, _, _, err := other.Generate(user, nil, time.Hour)
	require.NoError(t, err)

	expired, _, _, err := f.jwt.Generate(user, nil, -time.Minute)
	require.NoError(t, err)

	unregistered, _, _, err := f.jwt.Generate(user, nil, time.Hour)
	require.NoError(t, err)

	for name, token := range map[string]string{
		"bad signature": foreign,
		"expired":       expired,
		"not issued":    unregistered,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := f.svc.Authenticate(context.Background(), token)
			assert.ErrorIs(t, err, apperror.ErrUnauthorized)
		})
	}
}

func TestLogout(t *testing.T) {
	f := newFixture()
	f.register(t, "alice", "alice@example.com", "secret123")
	token, err := f.svc.Login(context.Background(), Credentials{Username: "alice", Password: "secret123"})
	require.NoError(t, err)

	profile, err := f.svc.Authenticate(context.Background(), token.AccessToken)
	require.NoError(t, err)

	ctx := appctx.WithUser(context.Background(), profile)
	require.NoError(t, f.svc.Logout(ctx))

	_, err = f.svc.Authenticate(context.Background(), token.AccessToken)
	assert.ErrorIs(t, err, apperror.ErrUnauthorized)
	assert.Equal(t, []string{ActionRegister, ActionLogin, ActionLogout}, f.audit.actions())
}

func TestLogout_Anonymous(t *testing.T) {
	f := newFixture()

	err := f.svc.Logout(context.Background())

	assert.True(t, apperror.IsKind(err, apperror.KindAuthorization))
}

func TestAuditFailureDoesNotFailLogin(t *testing.T) {
	f := newFixture()
	f.register(t, "alice", "alice@example.com", "secret123")
	f.audit.err = errors.New("audit down")

	token, err := f.svc.Login(context.Background(), Credentials{Username: "alice", Password: "secret123"})

	require.NoError(t, err)
	assert.True(t, strings.Count(token.AccessToken, ".") == 2)
}
