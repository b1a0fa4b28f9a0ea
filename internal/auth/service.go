package auth

import (
	"context"

	"golang.org/x/crypto/bcrypt"

	"github.com/classpulse/classpulse/internal/shared"
	"github.com/classpulse/classpulse/internal/users"
)

// Service wraps authentication business rules.
type Service struct {
	repo users.Repository
}

// NewService constructs a new Service.
func NewService(repo users.Repository) *Service {
	return &Service{repo: repo}
}

// Authenticate validates email/password credentials.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*users.User, error) {
	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return nil, shared.ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, shared.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, shared.ErrInvalidCredentials
	}
	return user, nil
}

// Lookup resolves the user behind a session's user id.
func (s *Service) Lookup(ctx context.Context, id string) (*users.User, error) {
	return s.repo.Get(ctx, id)
}
