package contents

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

// Service wraps content and content group business rules.
type Service struct {
	repo    Repository
	decider Decider
}

// NewService constructs a new Service.
func NewService(repo Repository, decider Decider) *Service {
	return &Service{repo: repo, decider: decider}
}

// Create adds a content to a room. The evaluator resolves the owning room;
// a room that no longer exists denies rather than errors.
func (s *Service) Create(ctx context.Context, req CreateContentRequest) (*Content, error) {
	if err := s.authorize(ctx, perm.Content{RoomID: req.RoomID}, perm.PermCreate); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	content := Content{
		ID:         uuid.NewString(),
		RoomID:     req.RoomID,
		Body:       req.Body,
		Format:     req.Format,
		Options:    req.Options,
		Answerable: req.Answerable,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.repo.Create(ctx, content); err != nil {
		return nil, fmt.Errorf("create content: %w", err)
	}
	return &content, nil
}

// Get returns a content the principal may read.
func (s *Service) Get(ctx context.Context, id string) (*Content, error) {
	content, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(ctx, Snapshot(*content), perm.PermRead); err != nil {
		return nil, err
	}
	return content, nil
}

// ListByRoom returns the room's contents visible to the principal.
func (s *Service) ListByRoom(ctx context.Context, roomID string) ([]Content, error) {
	all, err := s.repo.ListByRoom(ctx, roomID)
	if err != nil {
		return nil, fmt.Errorf("list contents: %w", err)
	}
	p := perm.PrincipalFromContext(ctx)
	visible := make([]Content, 0, len(all))
	for _, content := range all {
		allowed, err := s.decider.Decide(ctx, p, Snapshot(content), perm.PermRead)
		if err != nil {
			return nil, fmt.Errorf("authorize content list: %w", err)
		}
		if allowed {
			visible = append(visible, content)
		}
	}
	return visible, nil
}

// Update applies partial changes to a content.
func (s *Service) Update(ctx context.Context, id string, req UpdateContentRequest) (*Content, error) {
	content, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(ctx, Snapshot(*content), perm.PermUpdate); err != nil {
		return nil, err
	}

	if req.Body != nil {
		content.Body = *req.Body
	}
	if req.Options != nil {
		content.Options = req.Options
	}
	if req.Answerable != nil {
		content.Answerable = *req.Answerable
	}
	if req.AnswersPublished != nil {
		content.AnswersPublished = *req.AnswersPublished
	}
	content.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, *content); err != nil {
		return nil, fmt.Errorf("update content: %w", err)
	}
	return content, nil
}

// Delete removes a content.
func (s *Service) Delete(ctx context.Context, id string) error {
	content, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.authorize(ctx, Snapshot(*content), perm.PermDelete); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete content: %w", err)
	}
	return nil
}

// CreateGroup creates a content group in a room.
func (s *Service) CreateGroup(ctx context.Context, req CreateGroupRequest) (*ContentGroup, error) {
	if err := s.authorize(ctx, perm.ContentGroup{RoomID: req.RoomID}, perm.PermCreate); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	group := ContentGroup{
		ID:                  uuid.NewString(),
		RoomID:              req.RoomID,
		Name:                req.Name,
		PublishedContentIDs: []string{},
		CreatedAt:           now,
		UpdatedAt:           now,
	}
	if err := s.repo.CreateGroup(ctx, group); err != nil {
		return nil, fmt.Errorf("create content group: %w", err)
	}
	return &group, nil
}

// GetGroup returns a content group the principal may read.
func (s *Service) GetGroup(ctx context.Context, id string) (*ContentGroup, error) {
	group, err := s.repo.GetGroup(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(ctx, GroupSnapshot(*group), perm.PermRead); err != nil {
		return nil, err
	}
	return group, nil
}

// ListGroupsByRoom returns the room's groups visible to the principal.
func (s *Service) ListGroupsByRoom(ctx context.Context, roomID string) ([]ContentGroup, error) {
	all, err := s.repo.ListGroupsByRoom(ctx, roomID)
	if err != nil {
		return nil, fmt.Errorf("list content groups: %w", err)
	}
	p := perm.PrincipalFromContext(ctx)
	visible := make([]ContentGroup, 0, len(all))
	for _, group := range all {
		allowed, err := s.decider.Decide(ctx, p, GroupSnapshot(group), perm.PermRead)
		if err != nil {
			return nil, fmt.Errorf("authorize group list: %w", err)
		}
		if allowed {
			visible = append(visible, group)
		}
	}
	return visible, nil
}

// UpdateGroup applies partial changes, publication state included.
func (s *Service) UpdateGroup(ctx context.Context, id string, req UpdateGroupRequest) (*ContentGroup, error) {
	group, err := s.repo.GetGroup(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(ctx, GroupSnapshot(*group), perm.PermUpdate); err != nil {
		return nil, err
	}

	if req.Name != nil {
		group.Name = *req.Name
	}
	if req.Published != nil {
		group.Published = *req.Published
	}
	if req.PublishedContentIDs != nil {
		group.PublishedContentIDs = req.PublishedContentIDs
	}
	if req.CorrectOptionsPublished != nil {
		group.CorrectOptionsPublished = *req.CorrectOptionsPublished
	}
	group.UpdatedAt = time.Now().UTC()

	if err := s.repo.UpdateGroup(ctx, *group); err != nil {
		return nil, fmt.Errorf("update content group: %w", err)
	}
	return group, nil
}

// DeleteGroup removes a content group.
func (s *Service) DeleteGroup(ctx context.Context, id string) error {
	group, err := s.repo.GetGroup(ctx, id)
	if err != nil {
		return err
	}
	if err := s.authorize(ctx, GroupSnapshot(*group), perm.PermDelete); err != nil {
		return err
	}
	if err := s.repo.DeleteGroup(ctx, id); err != nil {
		return fmt.Errorf("delete content group: %w", err)
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
