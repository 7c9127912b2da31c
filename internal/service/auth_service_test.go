package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"habitquest/pkg/util"
)

func newAuthFixture() (*AuthService, *fakeUserStore) {
	users := newFakeUserStore()
	return NewAuthService(users, "test-secret", zap.NewNop()), users
}

func TestRegisterAndLogin(t *testing.T) {
	svc, _ := newAuthFixture()

	user, token, err := svc.Register(context.Background(), "Alice@Example.com", "correct horse", "Alice")
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", user.Email, "email is normalized")
	assert.Equal(t, 1, user.Level)
	assert.NotEmpty(t, token)

	got, token, err := svc.Login(context.Background(), "alice@example.com", "correct horse")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)

	userID, err := util.ParseJWT(token, "test-secret")
	require.NoError(t, err)
	assert.Equal(t, user.ID, userID)
}

func TestRegisterRejectsBadInput(t *testing.T) {
	svc, _ := newAuthFixture()

	_, _, err := svc.Register(context.Background(), "not-an-email", "long enough pw", "")
	assert.ErrorIs(t, err, ErrValidation)

	_, _, err = svc.Register(context.Background(), "a@b.com", "short", "")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc, _ := newAuthFixture()

	_, _, err := svc.Register(context.Background(), "a@b.com", "long enough pw", "")
	require.NoError(t, err)

	_, _, err = svc.Register(context.Background(), "a@b.com", "another password", "")
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestLoginWrongPassword(t *testing.T) {
	svc, _ := newAuthFixture()

	_, _, err := svc.Register(context.Background(), "a@b.com", "long enough pw", "")
	require.NoError(t, err)

	_, _, err = svc.Login(context.Background(), "a@b.com", "wrong password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, _, err = svc.Login(context.Background(), "nobody@b.com", "long enough pw")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}
