package security

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"apikit/internal/core/apperror"
	appctx "apikit/internal/core/context"
)

func TestRequireRole_FailsClosed(t *testing.T) {
	tests := []struct {
		name string
		ctx  context.Context
	}{
		{"no user", context.Background()},
		{"nil roles", appctx.WithUser(context.Background(), &appctx.UserProfile{UserID: 1})},
		{"empty roles", appctx.WithUser(context.Background(), &appctx.UserProfile{UserID: 1, Roles: appctx.NewRoleSet()})},
		{"user only", appctx.WithUser(context.Background(), &appctx.UserProfile{UserID: 1, Roles: appctx.NewRoleSet(RoleUser)})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := RequireRole(tt.ctx, RoleAdmin)
			require.Error(t, err)
			assert.True(t, apperror.IsKind(err, apperror.KindAuthorization))
		})
	}
}

func TestRequireRole_Granted(t *testing.T) {
	ctx := appctx.WithUser(context.Background(), &appctx.UserProfile{
		UserID: 7,
		Roles:  appctx.NewRoleSet(RoleUser, RoleAdmin),
	})

	assert.NoError(t, RequireRole(ctx, RoleAdmin))
	assert.NoError(t, NewAccessVerifier().RequireRole(ctx, RoleUser))
}
