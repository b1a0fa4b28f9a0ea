package users

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/classpulse/classpulse/internal/perm"
	"github.com/classpulse/classpulse/internal/shared"
)

// Decider authorizes operations for the current principal.
type Decider interface {
	Decide(ctx context.Context, p perm.Principal, target perm.Target, permission perm.Permission) (bool, error)
}

// Service wraps account business rules.
type Service struct {
	repo    Repository
	decider Decider
}

// NewService constructs a new Service.
func NewService(repo Repository, decider Decider) *Service {
	return &Service{repo: repo, decider: decider}
}

// Register creates an account. Registration is open; the policy allows it
// for any caller, account-provisioning services included.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (*User, error) {
	if err := s.authorize(ctx, perm.UserProfile{}, perm.PermCreate); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := time.Now().UTC()
	user := User{
		ID:           uuid.NewString(),
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		DisplayName:  req.DisplayName,
		PasswordHash: string(hash),
		Authorities:  []perm.Authority{},
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("register user: %w", err)
	}
	return &user, nil
}

// Get returns the full account for its owner (or account management) and
// the public subset for everyone else.
func (s *Service) Get(ctx context.Context, id string) (any, error) {
	user, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	p := perm.PrincipalFromContext(ctx)
	owner, err := s.decider.Decide(ctx, p, Snapshot(*user), perm.PermOwner)
	if err != nil {
		return nil, fmt.Errorf("authorize: %w", err)
	}
	if owner {
		return user, nil
	}
	return Public(*user), nil
}

// Update applies self-service profile changes.
func (s *Service) Update(ctx context.Context, id string, req UpdateUserRequest) (*User, error) {
	user, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(ctx, Snapshot(*user), perm.PermUpdate); err != nil {
		return nil, err
	}

	if req.DisplayName != nil {
		user.DisplayName = *req.DisplayName
	}
	if req.Password != nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(*req.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		user.PasswordHash = string(hash)
	}
	user.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, *user); err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}
	return user, nil
}

// Delete removes an account.
func (s *Service) Delete(ctx context.Context, id string) error {
	user, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.authorize(ctx, Snapshot(*user), perm.PermDelete); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	return nil
}

func (s *Service) authorize(ctx context.Context, target perm.Target, permission perm.Permission) error {
	p := perm.PrincipalFromContext(ctx)
	allowed, err := s.decider.Decide(ctx, p, target, permission)
	if err != nil {
		return fmt.Errorf("authorize: %w", err)
	}
	if !allowed {
		return shared.ErrForbidden
	}
	return nil
}
