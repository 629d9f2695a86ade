package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Teknovat/farm-tracker-sub001/internal/models"
	"github.com/Teknovat/farm-tracker-sub001/internal/security"
	"github.com/Teknovat/farm-tracker-sub001/internal/validation"
)

var (
	ErrEmailTaken         = errors.New("email already taken")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUserNotFound       = errors.New("user not found")
)

// UserStore is the user persistence surface the auth service depends on.
type UserStore interface {
	CreateUser(email, passwordHash, name string) (*models.User, error)
	CreateOAuthUser(email, name, provider, subject string) (*models.User, error)
	GetUserByEmail(email string) (*models.User, error)
	GetUserByID(id int64) (*models.User, error)
	GetUserByOAuth(provider, subject string) (*models.User, error)
	LinkOAuthProvider(userID int64, provider, subject string) error
}

// AuthService handles authentication business logic
type AuthService struct {
	users UserStore
}

// NewAuthService creates a new auth service
func NewAuthService(users UserStore) *AuthService {
	return &AuthService{users: users}
}

// Register creates a new user account with an email and password.
func (s *AuthService) Register(email, password, name string) (*models.User, error) {
	email = normalizeEmail(email)
	if err := validation.ValidateEmail(email); err != nil {
		return nil, err
	}
	if err := validation.ValidatePassword(password); err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	if err := validation.ValidateName(name); err != nil {
		return nil, err
	}

	existing, err := s.users.GetUserByEmail(email)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}
	if existing != nil {
		return nil, ErrEmailTaken
	}

	hash, err := security.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user, err := s.users.CreateUser(email, hash, name)
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

// Login verifies an email and password pair. A user created through OAuth
// that never set a password cannot log in this way.
func (s *AuthService) Login(email, password string) (*models.User, error) {
	user, err := s.users.GetUserByEmail(normalizeEmail(email))
	if err != nil {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	if user == nil || !user.HasPassword() {
		return nil, ErrInvalidCredentials
	}
	if !security.CheckPassword(password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	return user, nil
}

// OAuthLogin resolves an external identity to a local user. An existing
// account with the same email is linked rather than duplicated.
func (s *AuthService) OAuthLogin(provider, subject, email, name string) (*models.User, error) {
	user, err := s.users.GetUserByOAuth(provider, subject)
	if err != nil {
		return nil, fmt.Errorf("failed to look up oauth user: %w", err)
	}
	if user != nil {
		return user, nil
	}

	email = normalizeEmail(email)
	if err := validation.ValidateEmail(email); err != nil {
		return nil, err
	}

	existing, err := s.users.GetUserByEmail(email)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}
	if existing != nil {
		if err := s.users.LinkOAuthProvider(existing.ID, provider, subject); err != nil {
			return nil, fmt.Errorf("failed to link oauth provider: %w", err)
		}
		linked, err := s.users.GetUserByID(existing.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to reload user: %w", err)
		}
		return linked, nil
	}

	name = strings.TrimSpace(name)
	if name == "" {
		// Fall back to the mailbox name when the provider sends none.
		name = email[:strings.Index(email, "@")]
	}

	user, err = s.users.CreateOAuthUser(email, name, provider, subject)
	if err != nil {
		return nil, fmt.Errorf("failed to create oauth user: %w", err)
	}

	return user, nil
}

// GetUser retrieves a user by ID
func (s *AuthService) GetUser(id int64) (*models.User, error) {
	user, err := s.users.GetUserByID(id)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
