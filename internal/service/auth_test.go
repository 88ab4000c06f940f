package service

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flicky/storefront-api/internal/dto"
)

const testSecret = "test-secret"

func TestAuthService_Register(t *testing.T) {
	store := newMemStore()
	svc := NewAuthService(store.Users(), testSecret, time.Hour)

	user, err := svc.Register(context.Background(), dto.RegisterRequest{
		Email: "Test@Example.com", Name: "John Doe", Password: "password123",
	})
	require.NoError(t, err)
	assert.NotZero(t, user.ID)
	assert.Equal(t, "test@example.com", user.Email)
	assert.NotEqual(t, "password123", user.PasswordHash)

	_, err = svc.Register(context.Background(), dto.RegisterRequest{
		Email: "test@example.com", Name: "Jane", Password: "password456",
	})
	assert.ErrorIs(t, err, ErrUserAlreadyExists)
}

func TestAuthService_Login(t *testing.T) {
	store := newMemStore()
	svc := NewAuthService(store.Users(), testSecret, 7*24*time.Hour)
	user, err := svc.Register(context.Background(), dto.RegisterRequest{
		Email: "test@example.com", Name: "John", Password: "password123",
	})
	require.NoError(t, err)

	resp, err := svc.Login(context.Background(), dto.LoginRequest{Email: "test@example.com", Password: "password123"})
	require.NoError(t, err)
	assert.Equal(t, "bearer", resp.TokenType)
	assert.Equal(t, user.ID, resp.User.ID)

	claims := &jwt.RegisteredClaims{}
	_, err = jwt.ParseWithClaims(resp.AccessToken, claims, func(*jwt.Token) (interface{}, error) {
		return []byte(testSecret), nil
	})
	require.NoError(t, err)
	assert.Equal(t, strconv.FormatInt(user.ID, 10), claims.Subject)
	assert.WithinDuration(t, time.Now().Add(7*24*time.Hour), claims.ExpiresAt.Time, time.Minute)
}

func TestAuthService_LoginInvalidCredentials(t *testing.T) {
	store := newMemStore()
	svc := NewAuthService(store.Users(), testSecret, time.Hour)
	_, err := svc.Register(context.Background(), dto.RegisterRequest{
		Email: "test@example.com", Name: "John", Password: "password123",
	})
	require.NoError(t, err)

	_, err = svc.Login(context.Background(), dto.LoginRequest{Email: "test@example.com", Password: "wrong"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(context.Background(), dto.LoginRequest{Email: "nobody@example.com", Password: "password123"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}
