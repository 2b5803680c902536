package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taskhive/taskhive/internal/config"
	"github.com/taskhive/taskhive/internal/utils"
)

func newTestAuthService(t *testing.T) *AuthService {
	t.Helper()
	utils.SetJWTSecret("test-secret")
	db := setupTestDB(t)
	return NewAuthService(db, &config.JWTConfig{
		Secret:            "test-secret",
		ExpireHour:        1,
		RefreshExpireHour: 24,
	})
}

func TestRegisterAndLogin(t *testing.T) {
	svc := newTestAuthService(t)

	user, err := svc.Register(&RegisterRequest{
		Username: "alice",
		Password: "hunter22",
		Email:    "alice@example.com",
	})
	require.NoError(t, err)
	assert.True(t, user.IsActive)
	assert.NotEqual(t, "hunter22", user.Password)

	result, err := svc.Login(&LoginRequest{Username: "alice", Password: "hunter22"}, "127.0.0.1")
	require.NoError(t, err)
	assert.NotEmpty(t, result.AccessToken)
	assert.NotEmpty(t, result.RefreshToken)

	claims, err := utils.ParseToken(result.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, "alice", claims.Username)
}

func TestRegisterDuplicateUsername(t *testing.T) {
	svc := newTestAuthService(t)

	_, err := svc.Register(&RegisterRequest{Username: "alice", Password: "hunter22"})
	require.NoError(t, err)

	_, err = svc.Register(&RegisterRequest{Username: "alice", Password: "other456"})
	assert.ErrorIs(t, err, ErrUsernameTaken)
}

func TestLoginWrongPassword(t *testing.T) {
	svc := newTestAuthService(t)

	_, err := svc.Register(&RegisterRequest{Username: "alice", Password: "hunter22"})
	require.NoError(t, err)

	_, err = svc.Login(&LoginRequest{Username: "alice", Password: "wrong"}, "")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(&LoginRequest{Username: "nobody", Password: "hunter22"}, "")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestRefreshRotatesToken(t *testing.T) {
	svc := newTestAuthService(t)

	_, err := svc.Register(&RegisterRequest{Username: "alice", Password: "hunter22"})
	require.NoError(t, err)
	login, err := svc.Login(&LoginRequest{Username: "alice", Password: "hunter22"}, "")
	require.NoError(t, err)

	refreshed, err := svc.Refresh(login.RefreshToken, "")
	require.NoError(t, err)
	assert.NotEqual(t, login.RefreshToken, refreshed.RefreshToken)

	// The old token is single use
	_, err = svc.Refresh(login.RefreshToken, "")
	assert.ErrorIs(t, err, ErrInvalidRefreshToken)

	// The new one still works
	_, err = svc.Refresh(refreshed.RefreshToken, "")
	require.NoError(t, err)
}

func TestRevokeRefreshToken(t *testing.T) {
	svc := newTestAuthService(t)

	_, err := svc.Register(&RegisterRequest{Username: "alice", Password: "hunter22"})
	require.NoError(t, err)
	login, err := svc.Login(&LoginRequest{Username: "alice", Password: "hunter22"}, "")
	require.NoError(t, err)

	require.NoError(t, svc.RevokeRefreshToken(login.RefreshToken))

	_, err = svc.Refresh(login.RefreshToken, "")
	assert.ErrorIs(t, err, ErrInvalidRefreshToken)
}

func TestChangePassword(t *testing.T) {
	svc := newTestAuthService(t)

	user, err := svc.Register(&RegisterRequest{Username: "alice", Password: "hunter22"})
	require.NoError(t, err)

	err = svc.ChangePassword(user.ID, &ChangePasswordRequest{
		OldPassword: "wrong",
		NewPassword: "newpass1",
	})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	require.NoError(t, svc.ChangePassword(user.ID, &ChangePasswordRequest{
		OldPassword: "hunter22",
		NewPassword: "newpass1",
	}))

	_, err = svc.Login(&LoginRequest{Username: "alice", Password: "newpass1"}, "")
	require.NoError(t, err)
}
