package motd

import (
	"time"

	"github.com/classpulse/classpulse/internal/perm"
)

// Motd is a message-of-the-day notice shown to an audience, or to the
// participants of one room.
type Motd struct {
	ID        string            `json:"id"`
	RoomID    string            `json:"room_id,omitempty"`
	Audience  perm.MotdAudience `json:"audience"`
	Title     string            `json:"title"`
	Body      string            `json:"body"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}

// CreateMotdRequest is the payload for publishing a notice.
type CreateMotdRequest struct {
	RoomID   string `json:"room_id,omitempty" validate:"required_if=Audience ROOM"`
	Audience string `json:"audience" validate:"required,oneof=ALL LOGGED_IN TUTORS STUDENTS ROOM"`
	Title    string `json:"title" validate:"required,max=200"`
	Body     string `json:"body" validate:"required,max=2000"`
}

// UpdateMotdRequest carries partial notice changes. Audience and room
// binding are immutable after creation.
type UpdateMotdRequest struct {
	Title *string `json:"title,omitempty" validate:"omitempty,min=1,max=200"`
	Body  *string `json:"body,omitempty" validate:"omitempty,min=1,max=2000"`
}

// Snapshot converts the notice into its policy snapshot.
func Snapshot(m Motd) perm.Motd {
	return perm.Motd{ID: m.ID, RoomID: m.RoomID, Audience: m.Audience}
}
