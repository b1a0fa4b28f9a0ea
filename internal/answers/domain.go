package answers

import (
	"time"

	"github.com/classpulse/classpulse/internal/perm"
)

// Answer is a participant's response to a content.
type Answer struct {
	ID        string    `json:"id"`
	ContentID string    `json:"content_id"`
	RoomID    string    `json:"room_id"`
	CreatorID string    `json:"creator_id"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}

// CreateAnswerRequest is the payload for submitting an answer.
type CreateAnswerRequest struct {
	ContentID string `json:"content_id" validate:"required"`
	Body      string `json:"body" validate:"required,max=4000"`
}

// Snapshot converts the answer into its policy snapshot.
func Snapshot(a Answer) perm.Answer {
	return perm.Answer{ID: a.ID, ContentID: a.ContentID, RoomID: a.RoomID, CreatorID: a.CreatorID}
}
