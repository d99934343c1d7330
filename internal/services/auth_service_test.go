package services

import (
	"testing"

	"github.com/oceanwatch/marinewatch/internal/dto"
	"github.com/oceanwatch/marinewatch/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignup_DefaultsToPublicRole(t *testing.T) {
	svc := NewAuthService(setupTestDB(t), testConfig())

	resp, err := svc.Signup(&dto.SignupRequest{
		Name:     "Ada",
		Email:    "ada@example.com",
		Password: "correct-horse",
	})

	require.NoError(t, err)
	assert.Equal(t, models.RolePublic, resp.Role)
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
}

func TestSignup_ReviewerRole(t *testing.T) {
	svc := NewAuthService(setupTestDB(t), testConfig())

	resp, err := svc.Signup(&dto.SignupRequest{
		Name:     "Rae",
		Email:    "rae@example.com",
		Password: "correct-horse",
		Role:     models.RoleReviewer,
	})

	require.NoError(t, err)
	assert.Equal(t, models.RoleReviewer, resp.Role)
}

func TestSignup_RejectsUnknownRole(t *testing.T) {
	svc := NewAuthService(setupTestDB(t), testConfig())

	_, err := svc.Signup(&dto.SignupRequest{
		Email:    "x@example.com",
		Password: "correct-horse",
		Role:     "admin",
	})

	require.ErrorIs(t, err, ErrInvalidRole)
}

func TestSignup_DuplicateEmail(t *testing.T) {
	svc := NewAuthService(setupTestDB(t), testConfig())

	req := &dto.SignupRequest{Email: "dup@example.com", Password: "correct-horse"}
	_, err := svc.Signup(req)
	require.NoError(t, err)

	_, err = svc.Signup(req)
	require.ErrorIs(t, err, ErrEmailTaken)
}

func TestSignup_ShortPassword(t *testing.T) {
	svc := NewAuthService(setupTestDB(t), testConfig())

	_, err := svc.Signup(&dto.SignupRequest{Email: "s@example.com", Password: "short"})
	require.Error(t, err)
}

func TestLogin(t *testing.T) {
	svc := NewAuthService(setupTestDB(t), testConfig())

	_, err := svc.Signup(&dto.SignupRequest{Email: "lee@example.com", Password: "correct-horse"})
	require.NoError(t, err)

	resp, err := svc.Login(&dto.LoginRequest{Email: "lee@example.com", Password: "correct-horse"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)

	_, err = svc.Login(&dto.LoginRequest{Email: "lee@example.com", Password: "wrong"})
	require.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(&dto.LoginRequest{Email: "nobody@example.com", Password: "correct-horse"})
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestRefresh_RotatesToken(t *testing.T) {
	svc := NewAuthService(setupTestDB(t), testConfig())

	signup, err := svc.Signup(&dto.SignupRequest{Email: "rot@example.com", Password: "correct-horse"})
	require.NoError(t, err)

	refreshed, err := svc.Refresh(&dto.RefreshRequest{RefreshToken: signup.RefreshToken})
	require.NoError(t, err)
	assert.NotEqual(t, signup.RefreshToken, refreshed.RefreshToken)

	// The old refresh token is revoked by the rotation.
	_, err = svc.Refresh(&dto.RefreshRequest{RefreshToken: signup.RefreshToken})
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestLogout_RevokesRefreshToken(t *testing.T) {
	svc := NewAuthService(setupTestDB(t), testConfig())

	signup, err := svc.Signup(&dto.SignupRequest{Email: "bye@example.com", Password: "correct-horse"})
	require.NoError(t, err)

	require.NoError(t, svc.Logout(&dto.LogoutRequest{RefreshToken: signup.RefreshToken}))

	_, err = svc.Refresh(&dto.RefreshRequest{RefreshToken: signup.RefreshToken})
	require.ErrorIs(t, err, ErrInvalidToken)
}
