package comments

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
	DecideRef(ctx context.Context, p perm.Principal, id string, kind perm.Kind, permission perm.Permission) (bool, error)
}

// Service wraps comment business rules. Comments carry no rule set of their
// own; they piggyback on the owning room's policy: reading a room's
// comments requires reading the room, posting additionally requires an
// authenticated principal, and deleting a foreign comment requires room
// moderation.
type Service struct {
	repo    Repository
	decider Decider
}

// NewService constructs a new Service.
func NewService(repo Repository, decider Decider) *Service {
	return &Service{repo: repo, decider: decider}
}

// Create posts a comment to a room.
func (s *Service) Create(ctx context.Context, req CreateCommentRequest) (*Comment, error) {
	p := perm.PrincipalFromContext(ctx)
	if p.Anonymous() {
		return nil, shared.ErrUnauthenticated
	}
	if err := s.authorizeRoom(ctx, req.RoomID, perm.PermRead); err != nil {
		return nil, err
	}

	comment := Comment{
		ID:        uuid.NewString(),
		RoomID:    req.RoomID,
		CreatorID: p.ID,
		Body:      req.Body,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.repo.Create(ctx, comment); err != nil {
		return nil, fmt.Errorf("create comment: %w", err)
	}
	return &comment, nil
}

// ListByRoom returns a room's comments if the principal may read the room.
func (s *Service) ListByRoom(ctx context.Context, roomID string) ([]Comment, error) {
	if err := s.authorizeRoom(ctx, roomID, perm.PermRead); err != nil {
		return nil, err
	}
	list, err := s.repo.ListByRoom(ctx, roomID)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	return list, nil
}

// Delete removes a comment; creators remove their own, room moderation
// removes any.
func (s *Service) Delete(ctx context.Context, id string) error {
	comment, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	p := perm.PrincipalFromContext(ctx)
	if p.Anonymous() || p.ID != comment.CreatorID {
		if err := s.authorizeRoom(ctx, comment.RoomID, perm.PermReadExtended); err != nil {
			return err
		}
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete comment: %w", err)
	}
	return nil
}

func (s *Service) authorizeRoom(ctx context.Context, roomID string, permission perm.Permission) error {
	p := perm.PrincipalFromContext(ctx)
	allowed, err := s.decider.DecideRef(ctx, p, roomID, perm.KindRoom, permission)
	if err != nil {
		return fmt.Errorf("authorize: %w", err)
	}
	if !allowed {
		return shared.ErrForbidden
	}
	return nil
}
