package comments

import "time"

// Comment is a participant note attached to a room.
type Comment struct {
	ID        string    `json:"id"`
	RoomID    string    `json:"room_id"`
	CreatorID string    `json:"creator_id"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}

// CreateCommentRequest is the payload for posting a comment.
type CreateCommentRequest struct {
	RoomID string `json:"room_id" validate:"required"`
	Body   string `json:"body" validate:"required,max=2000"`
}
