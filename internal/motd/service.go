package motd

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/classpulse/classpulse/internal/perm"
	"github.com/classpulse/classpulse/internal/shared"
)

// Decider authorizes operations for the current principal. Motd decisions
// always go through the object-based form; the reference-based form has no
// motd resolver.
type Decider interface {
	Decide(ctx context.Context, p perm.Principal, target perm.Target, permission perm.Permission) (bool, error)
}

// Service wraps motd business rules.
type Service struct {
	repo    Repository
	decider Decider
}

// NewService constructs a new Service.
func NewService(repo Repository, decider Decider) *Service {
	return &Service{repo: repo, decider: decider}
}

// Create publishes a notice. Only room-scoped notices can be created
// through the public API; broader audiences are reserved to admins, which
// the policy's capability short-circuit covers.
func (s *Service) Create(ctx context.Context, req CreateMotdRequest) (*Motd, error) {
	candidate := perm.Motd{RoomID: req.RoomID, Audience: perm.MotdAudience(req.Audience)}
	if err := s.authorize(ctx, candidate, perm.PermCreate); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	m := Motd{
		ID:        uuid.NewString(),
		RoomID:    req.RoomID,
		Audience:  perm.MotdAudience(req.Audience),
		Title:     req.Title,
		Body:      req.Body,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Create(ctx, m); err != nil {
		return nil, fmt.Errorf("create motd: %w", err)
	}
	return &m, nil
}

// List returns the notices visible to the principal, optionally including
// a room's scoped notices.
func (s *Service) List(ctx context.Context, roomID string) ([]Motd, error) {
	all, err := s.repo.List(ctx, roomID)
	if err != nil {
		return nil, fmt.Errorf("list motds: %w", err)
	}
	p := perm.PrincipalFromContext(ctx)
	visible := make([]Motd, 0, len(all))
	for _, m := range all {
		allowed, err := s.decider.Decide(ctx, p, Snapshot(m), perm.PermRead)
		if err != nil {
			return nil, fmt.Errorf("authorize motd list: %w", err)
		}
		if allowed {
			visible = append(visible, m)
		}
	}
	return visible, nil
}

// Update edits a notice's title or body.
func (s *Service) Update(ctx context.Context, id string, req UpdateMotdRequest) (*Motd, error) {
	m, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(ctx, Snapshot(*m), perm.PermUpdate); err != nil {
		return nil, err
	}

	if req.Title != nil {
		m.Title = *req.Title
	}
	if req.Body != nil {
		m.Body = *req.Body
	}
	m.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, *m); err != nil {
		return nil, fmt.Errorf("update motd: %w", err)
	}
	return m, nil
}

// Delete removes a notice.
func (s *Service) Delete(ctx context.Context, id string) error {
	m, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.authorize(ctx, Snapshot(*m), perm.PermDelete); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete motd: %w", err)
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
