package authorization

import (
	"context"
	"testing"

	"github.com/smallbiznis/bookkeeper/internal/testsupport"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestService(t *testing.T) Service {
	t.Helper()
	enforcer, err := NewEnforcer(testsupport.OpenDB(t))
	require.NoError(t, err)
	return NewService(Params{Log: zap.NewNop(), Enforcer: enforcer})
}

func TestIsAdmin(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	assert.True(t, svc.IsAdmin(ctx, "admin"))
	assert.True(t, svc.IsAdmin(ctx, "ADMIN"))
	assert.True(t, svc.IsAdmin(ctx, "owner"))
	assert.False(t, svc.IsAdmin(ctx, "member"))
	assert.False(t, svc.IsAdmin(ctx, ""))
}

func TestAuthorize(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	require.NoError(t, svc.Authorize(ctx, "member", ObjectLedger, ActionManage))
	assert.ErrorIs(t, svc.Authorize(ctx, "member", ObjectAuditLog, ActionView), ErrForbidden)
	assert.ErrorIs(t, svc.Authorize(ctx, " ", ObjectLedger, ActionManage), ErrInvalidRole)
	assert.ErrorIs(t, svc.Authorize(ctx, "admin", "", ActionManage), ErrInvalidObject)
}

func TestNewEnforcerIsIdempotent(t *testing.T) {
	db := testsupport.OpenDB(t)

	_, err := NewEnforcer(db)
	require.NoError(t, err)
	enforcer, err := NewEnforcer(db)
	require.NoError(t, err)

	policies, err := enforcer.GetPolicy()
	require.NoError(t, err)
	assert.Len(t, policies, 4)
}
