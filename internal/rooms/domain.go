package rooms

import (
	"time"

	"github.com/classpulse/classpulse/internal/perm"
)

// Room is a session container owning contents, answers and comments.
type Room struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Description string      `json:"description,omitempty"`
	OwnerID     string      `json:"owner_id"`
	Closed      bool        `json:"closed"`
	Moderators  []Moderator `json:"moderators"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

// Moderator grants a user room-management sub-roles.
type Moderator struct {
	UserID string               `json:"user_id" validate:"required"`
	Roles  []perm.ModeratorRole `json:"roles" validate:"required,min=1,dive,oneof=EDITING EXECUTIVE"`
}

// CreateRoomRequest is the payload for opening a new room.
type CreateRoomRequest struct {
	Name        string `json:"name" validate:"required,max=100"`
	Description string `json:"description" validate:"max=500"`
}

// UpdateRoomRequest is the payload for room updates, moderator changes
// included. Nil fields stay untouched.
type UpdateRoomRequest struct {
	Name        *string     `json:"name,omitempty" validate:"omitempty,min=1,max=100"`
	Description *string     `json:"description,omitempty" validate:"omitempty,max=500"`
	Closed      *bool       `json:"closed,omitempty"`
	Moderators  []Moderator `json:"moderators,omitempty" validate:"omitempty,dive"`
}

// ListRoomsRequest filters room listings.
type ListRoomsRequest struct {
	OwnerID string
	Page    int
	PerPage int
}

// Snapshot converts the room into its policy snapshot.
func Snapshot(r Room) perm.Room {
	mods := make([]perm.Moderator, len(r.Moderators))
	for i, m := range r.Moderators {
		mods[i] = perm.Moderator{UserID: m.UserID, Roles: m.Roles}
	}
	return perm.Room{ID: r.ID, OwnerID: r.OwnerID, Closed: r.Closed, Moderators: mods}
}
