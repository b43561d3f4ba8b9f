package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestLogin(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	require.NoError(t, err)
	svc := NewAuthService("td", string(hash))
	ctx := context.Background()

	org, err := svc.Login(ctx, LoginInput{Username: "td", Password: "s3cret"})
	require.NoError(t, err)
	assert.Equal(t, "td", org.Username)
	assert.Equal(t, RoleOrganizer, org.Role)

	_, err = svc.Login(ctx, LoginInput{Username: "td", Password: "wrong"})
	assert.ErrorIs(t, err, ErrAuthInvalidCredentials)

	_, err = svc.Login(ctx, LoginInput{Username: "someone", Password: "s3cret"})
	assert.ErrorIs(t, err, ErrAuthInvalidCredentials)
}

func TestLoginWithoutConfiguredAccount(t *testing.T) {
	_, err := NewAuthService("", "").Login(context.Background(), LoginInput{Username: "", Password: ""})
	assert.ErrorIs(t, err, ErrAuthInvalidCredentials)
}

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("pw")
	require.NoError(t, err)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte("pw")))

	_, err = HashPassword("")
	assert.ErrorIs(t, err, ErrValidationFailed)
}
