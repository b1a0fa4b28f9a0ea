package answers

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
	AnswerSubmitted(ctx context.Context, contentID string) error
}

// Service wraps answer business rules.
type Service struct {
	repo     Repository
	contents perm.ContentLookup
	decider  Decider
	events   Events
}

// NewService constructs a new Service. events may be nil.
func NewService(repo Repository, contents perm.ContentLookup, decider Decider, events Events) *Service {
	return &Service{repo: repo, contents: contents, decider: decider, events: events}
}

// Create submits an answer. The policy requires the parent content to be
// readable and answerable; a vanished content denies.
func (s *Service) Create(ctx context.Context, req CreateAnswerRequest) (*Answer, error) {
	p := perm.PrincipalFromContext(ctx)
	if err := s.authorize(ctx, perm.Answer{ContentID: req.ContentID, CreatorID: p.ID}, perm.PermCreate); err != nil {
		return nil, err
	}

	content, err := s.contents.Get(ctx, req.ContentID)
	if err != nil {
		return nil, err
	}

	answer := Answer{
		ID:        uuid.NewString(),
		ContentID: content.ID,
		RoomID:    content.RoomID,
		CreatorID: p.ID,
		Body:      req.Body,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.repo.Create(ctx, answer); err != nil {
		return nil, fmt.Errorf("create answer: %w", err)
	}
	if s.events != nil {
		if err := s.events.AnswerSubmitted(ctx, content.ID); err != nil {
			return nil, fmt.Errorf("enqueue answer stats: %w", err)
		}
	}
	return &answer, nil
}

// Get returns an answer the principal may read.
func (s *Service) Get(ctx context.Context, id string) (*Answer, error) {
	answer, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(ctx, Snapshot(*answer), perm.PermRead); err != nil {
		return nil, err
	}
	return answer, nil
}

// ListByContent returns the answers on a content visible to the principal.
// Before publication that is the principal's own answer plus, for
// moderators, everyone's.
func (s *Service) ListByContent(ctx context.Context, contentID string) ([]Answer, error) {
	all, err := s.repo.ListByContent(ctx, contentID)
	if err != nil {
		return nil, fmt.Errorf("list answers: %w", err)
	}
	p := perm.PrincipalFromContext(ctx)
	visible := make([]Answer, 0, len(all))
	for _, answer := range all {
		allowed, err := s.decider.Decide(ctx, p, Snapshot(answer), perm.PermRead)
		if err != nil {
			return nil, fmt.Errorf("authorize answer list: %w", err)
		}
		if allowed {
			visible = append(visible, answer)
		}
	}
	return visible, nil
}

// Delete removes an answer; only room moderation may do so.
func (s *Service) Delete(ctx context.Context, id string) error {
	answer, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.authorize(ctx, Snapshot(*answer), perm.PermDelete); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete answer: %w", err)
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
