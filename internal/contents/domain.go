package contents

import (
	"time"

	"github.com/classpulse/classpulse/internal/perm"
)

// Content is a poll or question inside a room.
type Content struct {
	ID               string    `json:"id"`
	RoomID           string    `json:"room_id"`
	Body             string    `json:"body"`
	Format           string    `json:"format"`
	Options          []string  `json:"options,omitempty"`
	Answerable       bool      `json:"answerable"`
	AnswersPublished bool      `json:"answers_published"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// ContentGroup bundles contents for publication. A content is visible to
// participants once any published group lists it.
type ContentGroup struct {
	ID                      string    `json:"id"`
	RoomID                  string    `json:"room_id"`
	Name                    string    `json:"name"`
	Published               bool      `json:"published"`
	PublishedContentIDs     []string  `json:"published_content_ids"`
	CorrectOptionsPublished bool      `json:"correct_options_published"`
	CreatedAt               time.Time `json:"created_at"`
	UpdatedAt               time.Time `json:"updated_at"`
}

// CreateContentRequest is the payload for adding a content to a room.
type CreateContentRequest struct {
	RoomID     string   `json:"room_id" validate:"required"`
	Body       string   `json:"body" validate:"required,max=2000"`
	Format     string   `json:"format" validate:"required,oneof=choice text scale"`
	Options    []string `json:"options,omitempty" validate:"omitempty,max=16,dive,max=500"`
	Answerable bool     `json:"answerable"`
}

// UpdateContentRequest carries partial content changes.
type UpdateContentRequest struct {
	Body             *string  `json:"body,omitempty" validate:"omitempty,min=1,max=2000"`
	Options          []string `json:"options,omitempty" validate:"omitempty,max=16,dive,max=500"`
	Answerable       *bool    `json:"answerable,omitempty"`
	AnswersPublished *bool    `json:"answers_published,omitempty"`
}

// CreateGroupRequest is the payload for creating a content group.
type CreateGroupRequest struct {
	RoomID string `json:"room_id" validate:"required"`
	Name   string `json:"name" validate:"required,max=100"`
}

// UpdateGroupRequest carries partial group changes.
type UpdateGroupRequest struct {
	Name                    *string  `json:"name,omitempty" validate:"omitempty,min=1,max=100"`
	Published               *bool    `json:"published,omitempty"`
	PublishedContentIDs     []string `json:"published_content_ids,omitempty"`
	CorrectOptionsPublished *bool    `json:"correct_options_published,omitempty"`
}

// Snapshot converts the content into its policy snapshot.
func Snapshot(c Content) perm.Content {
	return perm.Content{
		ID:               c.ID,
		RoomID:           c.RoomID,
		Answerable:       c.Answerable,
		AnswersPublished: c.AnswersPublished,
	}
}

// GroupSnapshot converts the group into its policy snapshot.
func GroupSnapshot(g ContentGroup) perm.ContentGroup {
	return perm.ContentGroup{
		ID:                      g.ID,
		RoomID:                  g.RoomID,
		Published:               g.Published,
		PublishedContentIDs:     g.PublishedContentIDs,
		CorrectOptionsPublished: g.CorrectOptionsPublished,
	}
}
