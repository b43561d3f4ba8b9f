package services

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

const RoleOrganizer = "organizer"

type AuthService interface {
	Login(ctx context.Context, input LoginInput) (*Organizer, error)
}

type LoginInput struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type Organizer struct {
	Username string `json:"username"`
	Role     string `json:"role"`
}

type authService struct {
	username     string
	passwordHash []byte
}

// NewAuthService checks logins against a single organizer account whose
// password is stored as a bcrypt hash.
func NewAuthService(username, passwordHash string) AuthService {
	return &authService{
		username:     username,
		passwordHash: []byte(passwordHash),
	}
}

func (s *authService) Login(ctx context.Context, input LoginInput) (*Organizer, error) {
	if s.username == "" || len(s.passwordHash) == 0 {
		return nil, ErrAuthInvalidCredentials
	}
	if subtle.ConstantTimeCompare([]byte(input.Username), []byte(s.username)) != 1 {
		return nil, ErrAuthInvalidCredentials
	}

	err := bcrypt.CompareHashAndPassword(s.passwordHash, []byte(input.Password))
	if err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return nil, ErrAuthInvalidCredentials
		}
		return nil, fmt.Errorf("failed to compare password hash: %w", err)
	}

	return &Organizer{Username: s.username, Role: RoleOrganizer}, nil
}

// HashPassword returns the bcrypt hash to put into ADMIN_PASSWORD_HASH.
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", fmt.Errorf("%w: password must not be empty", ErrValidationFailed)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("ошибка хеширования пароля: %w", err)
	}
	return string(hash), nil
}
