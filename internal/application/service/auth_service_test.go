package service

import (
	"context"
	"testing"
	"time"

	"github.com/hpharmamirmart-dev/hafsa-pharmacy-mir-mart-pos/internal/domain/entity"
	"github.com/hpharmamirmart-dev/hafsa-pharmacy-mir-mart-pos/internal/domain/enum"
	"github.com/hpharmamirmart-dev/hafsa-pharmacy-mir-mart-pos/pkg/apperror"
	"github.com/hpharmamirmart-dev/hafsa-pharmacy-mir-mart-pos/pkg/utils"
	"github.com/panjf2000/ants/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newActivity(t *testing.T) (*ActivityLogService, *fakeLogs) {
	t.Helper()
	pool, err := ants.NewPool(2)
	require.NoError(t, err)
	t.Cleanup(pool.Release)
	logs := &fakeLogs{}
	return NewActivityLogService(logs, pool), logs
}

type authFixture struct {
	svc      *AuthService
	users    *fakeUsers
	sessions *fakeSessions
	activity *ActivityLogService
	logs     *fakeLogs
}

func newAuthFixture(t *testing.T, role enum.Role) *authFixture {
	activity, logs := newActivity(t)
	f := &authFixture{
		users:    &fakeUsers{session: &entity.Session{Username: "sana", Role: role}},
		sessions: &fakeSessions{},
		activity: activity,
		logs:     logs,
	}
	f.svc = NewAuthService(f.users, f.sessions, utils.NewJWTManager("test-secret", time.Hour), activity)
	return f
}

func TestLoginStoresSession(t *testing.T) {
	f := newAuthFixture(t, enum.RoleReception)

	out, err := f.svc.Login(context.Background(), " sana ", "secret1")
	require.NoError(t, err)
	assert.Equal(t, "reception.html", out.LandingPage)
	assert.NotEmpty(t, out.AccessToken)

	current, err := f.svc.Current()
	require.NoError(t, err)
	require.NotNil(t, current)
	assert.Equal(t, "sana", current.Username)

	session, err := f.svc.ValidateToken(out.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, enum.RoleReception, session.Role)

	f.activity.Wait()
	assert.Equal(t, []string{"sana: User logged in"}, f.logs.actions())
}

func TestLoginRequiresBothFields(t *testing.T) {
	f := newAuthFixture(t, enum.RoleReception)

	_, err := f.svc.Login(context.Background(), "  ", "")
	appErr := apperror.GetAppError(err)
	assert.Equal(t, apperror.KindValidation, appErr.Kind)
	assert.Len(t, appErr.Errors, 2)
}

func TestLoginFailureKeepsExistingSession(t *testing.T) {
	f := newAuthFixture(t, enum.RoleReception)
	require.NoError(t, f.sessions.Save(&entity.Session{Username: "owner", Role: enum.RoleOwner}))

	_, err := f.svc.Login(context.Background(), "someone", "wrong-pass")
	assert.ErrorIs(t, err, apperror.ErrInvalidCredentials)

	f.users.err = apperror.ErrLoginNetwork
	_, err = f.svc.Login(context.Background(), "sana", "secret1")
	assert.ErrorIs(t, err, apperror.ErrLoginNetwork)

	current, _ := f.svc.Current()
	require.NotNil(t, current)
	assert.Equal(t, "owner", current.Username)
}

func TestLogoutEndsTokens(t *testing.T) {
	f := newAuthFixture(t, enum.RoleInventory)
	out, err := f.svc.Login(context.Background(), "sana", "secret1")
	require.NoError(t, err)

	require.NoError(t, f.svc.Logout(context.Background()))

	_, err = f.svc.ValidateToken(out.AccessToken)
	assert.ErrorIs(t, err, apperror.ErrSessionEnded)
	_, err = f.svc.ValidateToken("not-a-token")
	assert.ErrorIs(t, err, apperror.ErrInvalidToken)

	f.activity.Wait()
	assert.Contains(t, f.logs.actions(), "sana: User logged out")
}

func TestCheckPageAccess(t *testing.T) {
	ctx := context.Background()

	t.Run("anonymous goes to login", func(t *testing.T) {
		f := newAuthFixture(t, enum.RoleOwner)
		d, err := f.svc.CheckPageAccess(ctx, enum.RoleCustomer)
		require.NoError(t, err)
		assert.False(t, d.Allowed)
		assert.Equal(t, enum.DefaultLandingPage, d.Redirect)
	})

	t.Run("higher rank is allowed", func(t *testing.T) {
		f := newAuthFixture(t, enum.RoleOwner)
		_, err := f.svc.Login(ctx, "sana", "secret1")
		require.NoError(t, err)
		d, err := f.svc.CheckPageAccess(ctx, enum.RoleReception)
		require.NoError(t, err)
		assert.True(t, d.Allowed)
	})

	t.Run("lower rank goes to own landing page", func(t *testing.T) {
		f := newAuthFixture(t, enum.RoleInventory)
		_, err := f.svc.Login(ctx, "sana", "secret1")
		require.NoError(t, err)
		d, err := f.svc.CheckPageAccess(ctx, enum.RoleReception)
		require.NoError(t, err)
		assert.False(t, d.Allowed)
		assert.Equal(t, "add-items.html", d.Redirect)
		assert.Equal(t, MsgAccessDenied, d.Message)
	})

	t.Run("invalid role signs out", func(t *testing.T) {
		f := newAuthFixture(t, enum.RoleInvalid)
		_, err := f.svc.Login(ctx, "sana", "secret1")
		require.NoError(t, err)
		d, err := f.svc.CheckPageAccess(ctx, enum.RoleCustomer)
		require.NoError(t, err)
		assert.True(t, d.LoggedOut)
		assert.Equal(t, MsgInvalidRole, d.Message)
		current, _ := f.svc.Current()
		assert.Nil(t, current)
	})
}
