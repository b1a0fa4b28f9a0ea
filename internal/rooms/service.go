package rooms

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/classpulse/classpulse/internal/perm"
	"github.com/classpulse/classpulse/internal/shared"
)

// Decider authorizes operations for the current principal.
type Decider interface {
	Decide(ctx context.Context, p perm.Principal, target perm.Target, permission perm.Permission) (bool, error)
}

// Events receives notifications after committed mutations.
type Events interface {
	RoomDeleted(ctx context.Context, roomID string) error
}

// Service wraps room business rules.
type Service struct {
	repo    Repository
	decider Decider
	events  Events
}

// NewService constructs a new Service. events may be nil.
func NewService(repo Repository, decider Decider, events Events) *Service {
	return &Service{repo: repo, decider: decider, events: events}
}

// Create opens a new room owned by the current principal.
func (s *Service) Create(ctx context.Context, req CreateRoomRequest) (*Room, error) {
	p := perm.PrincipalFromContext(ctx)
	if err := s.authorize(ctx, perm.Room{}, perm.PermCreate); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	room := Room{
		ID:          uuid.NewString(),
		Name:        req.Name,
		Description: req.Description,
		OwnerID:     p.ID,
		Moderators:  []Moderator{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.Create(ctx, room); err != nil {
		return nil, fmt.Errorf("create room: %w", err)
	}
	return &room, nil
}

// Get returns a room the principal may read.
func (s *Service) Get(ctx context.Context, id string) (*Room, error) {
	room, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(ctx, Snapshot(*room), perm.PermRead); err != nil {
		return nil, err
	}
	return room, nil
}

// List returns the rooms visible to the principal. The returned total is
// corrected for rooms filtered off the current page only; rooms hidden on
// other pages still count, so it is an upper bound, not an exact count.
// Visibility lives in the policy evaluator and is not replicated in SQL.
func (s *Service) List(ctx context.Context, req ListRoomsRequest) ([]Room, int, error) {
	all, total, err := s.repo.List(ctx, req)
	if err != nil {
		return nil, 0, fmt.Errorf("list rooms: %w", err)
	}
	p := perm.PrincipalFromContext(ctx)
	visible := make([]Room, 0, len(all))
	for _, room := range all {
		allowed, err := s.decider.Decide(ctx, p, Snapshot(room), perm.PermRead)
		if err != nil {
			return nil, 0, fmt.Errorf("authorize room list: %w", err)
		}
		if allowed {
			visible = append(visible, room)
		}
	}
	if len(visible) < len(all) {
		total -= len(all) - len(visible)
	}
	return visible, total, nil
}

// Update applies partial changes, moderator assignments included.
func (s *Service) Update(ctx context.Context, id string, req UpdateRoomRequest) (*Room, error) {
	room, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(ctx, Snapshot(*room), perm.PermUpdate); err != nil {
		return nil, err
	}

	if req.Name != nil {
		room.Name = *req.Name
	}
	if req.Description != nil {
		room.Description = *req.Description
	}
	if req.Closed != nil {
		room.Closed = *req.Closed
	}
	if req.Moderators != nil {
		seen := make(map[string]struct{}, len(req.Moderators))
		for _, m := range req.Moderators {
			if _, dup := seen[m.UserID]; dup {
				return nil, fmt.Errorf("%w: user %s listed as moderator twice", shared.ErrValidation, m.UserID)
			}
			seen[m.UserID] = struct{}{}
		}
		room.Moderators = req.Moderators
	}
	room.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, *room); err != nil {
		return nil, fmt.Errorf("update room: %w", err)
	}
	return room, nil
}

// Delete removes a room and triggers the cascade purge of its contents.
func (s *Service) Delete(ctx context.Context, id string) error {
	room, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.authorize(ctx, Snapshot(*room), perm.PermDelete); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete room: %w", err)
	}
	if s.events != nil {
		if err := s.events.RoomDeleted(ctx, id); err != nil {
			return fmt.Errorf("enqueue room purge: %w", err)
		}
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
