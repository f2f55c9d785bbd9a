package services

import (
	"context"
	"errors"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahmetcoskunkizilkaya/mamacare-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/mamacare-backend/internal/errs"
	"github.com/ahmetcoskunkizilkaya/mamacare-backend/internal/models"
)

func register(t *testing.T, env *testEnv, email string) *dto.AuthResponse {
	t.Helper()
	resp, err := env.auth.Register(context.Background(), &dto.RegisterRequest{
		Email:    email,
		Password: "correct-horse",
		FullName: "Wanjiru Kamau",
		Phone:    "+254712345678",
	})
	require.NoError(t, err)
	return resp
}

func TestRegisterIssuesTokens(t *testing.T) {
	env := newTestEnv(t)
	resp := register(t, env, "  Wanjiru@MamaCare.test ")

	assert.Equal(t, "wanjiru@mamacare.test", resp.User.Email)
	assert.Equal(t, models.RoleUser, resp.User.Role)
	assert.NotEmpty(t, resp.RefreshToken)

	claims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(resp.AccessToken, claims, func(*jwt.Token) (interface{}, error) {
		return []byte(env.cfg.JWTSecret), nil
	})
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID.String(), claims["sub"])
	assert.Equal(t, "wanjiru@mamacare.test", claims["email"])

	var user models.User
	require.NoError(t, env.db.First(&user, "id = ?", resp.User.ID).Error)
	assert.NotEqual(t, "correct-horse", user.Password)
}

func TestRegisterRejectsDuplicatesAndWeakInput(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	register(t, env, "dup@mamacare.test")

	_, err := env.auth.Register(ctx, &dto.RegisterRequest{Email: "DUP@mamacare.test", Password: "another-pass"})
	assert.True(t, errors.Is(err, ErrEmailTaken))
	assert.True(t, errors.Is(err, errs.ErrConflict))

	_, err = env.auth.Register(ctx, &dto.RegisterRequest{Email: "not-an-email", Password: "long-enough"})
	assert.True(t, errors.Is(err, errs.ErrInvalidInput))

	_, err = env.auth.Register(ctx, &dto.RegisterRequest{Email: "short@mamacare.test", Password: "short"})
	assert.True(t, errors.Is(err, errs.ErrInvalidInput))
}

func TestRegisterGrantsAdminRole(t *testing.T) {
	env := newTestEnv(t)
	resp := register(t, env, "Admin@mamacare.test")
	assert.Equal(t, models.RoleAdmin, resp.User.Role)
}

func TestLogin(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	registered := register(t, env, "login@mamacare.test")

	resp, err := env.auth.Login(ctx, &dto.LoginRequest{Email: "LOGIN@mamacare.test", Password: "correct-horse"})
	require.NoError(t, err)
	assert.Equal(t, registered.User.ID, resp.User.ID)

	_, err = env.auth.Login(ctx, &dto.LoginRequest{Email: "login@mamacare.test", Password: "wrong-horse"})
	assert.True(t, errors.Is(err, ErrInvalidCredentials))

	_, err = env.auth.Login(ctx, &dto.LoginRequest{Email: "nobody@mamacare.test", Password: "correct-horse"})
	assert.True(t, errors.Is(err, errs.ErrUnauthenticated))
}

func TestRefreshRotatesToken(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	registered := register(t, env, "refresh@mamacare.test")

	rotated, err := env.auth.Refresh(ctx, &dto.RefreshRequest{RefreshToken: registered.RefreshToken})
	require.NoError(t, err)
	assert.NotEqual(t, registered.RefreshToken, rotated.RefreshToken)

	_, err = env.auth.Refresh(ctx, &dto.RefreshRequest{RefreshToken: registered.RefreshToken})
	assert.True(t, errors.Is(err, ErrInvalidToken), "a rotated token must not be reusable")

	require.NoError(t, env.auth.Logout(ctx, &dto.LogoutRequest{RefreshToken: rotated.RefreshToken}))
	_, err = env.auth.Refresh(ctx, &dto.RefreshRequest{RefreshToken: rotated.RefreshToken})
	assert.True(t, errors.Is(err, ErrInvalidToken))
}

func TestUpdateUser(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	registered := register(t, env, "profile@mamacare.test")

	name := " Amina Otieno "
	phone := "+254 700 111 222"
	me, err := env.auth.UpdateUser(ctx, registered.User.ID, &dto.UpdateMeRequest{FullName: &name, Phone: &phone})
	require.NoError(t, err)
	assert.Equal(t, "Amina Otieno", me.FullName)
	assert.Equal(t, "+254700111222", me.Phone)

	bad := "call me"
	_, err = env.auth.UpdateUser(ctx, registered.User.ID, &dto.UpdateMeRequest{Phone: &bad})
	assert.True(t, errors.Is(err, errs.ErrInvalidInput))

	_, err = env.auth.UpdateUser(ctx, uuid.New(), &dto.UpdateMeRequest{FullName: &name})
	assert.True(t, errors.Is(err, errs.ErrNotFound))

	_, err = env.auth.GetUser(ctx, uuid.New())
	assert.True(t, errors.Is(err, errs.ErrNotFound))
}
