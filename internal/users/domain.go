package users

import (
	"time"

	"github.com/classpulse/classpulse/internal/perm"
)

// User is a platform account. PasswordHash never leaves the service layer.
type User struct {
	ID           string           `json:"id"`
	Email        string           `json:"email"`
	DisplayName  string           `json:"display_name"`
	PasswordHash string           `json:"-"`
	Authorities  []perm.Authority `json:"authorities,omitempty"`
	IsActive     bool             `json:"is_active"`
	CreatedAt    time.Time        `json:"created_at"`
	UpdatedAt    time.Time        `json:"updated_at"`
}

// PublicProfile is the subset of a user visible to everyone.
type PublicProfile struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
}

// RegisterRequest is the payload for creating an account.
type RegisterRequest struct {
	Email       string `json:"email" validate:"required,email"`
	DisplayName string `json:"display_name" validate:"required,max=100"`
	Password    string `json:"password" validate:"required,min=8,max=128"`
}

// UpdateUserRequest carries partial profile changes.
type UpdateUserRequest struct {
	DisplayName *string `json:"display_name,omitempty" validate:"omitempty,min=1,max=100"`
	Password    *string `json:"password,omitempty" validate:"omitempty,min=8,max=128"`
}

// Snapshot converts the user into its policy snapshot.
func Snapshot(u User) perm.UserProfile {
	return perm.UserProfile{ID: u.ID}
}

// Public strips the user down to its public subset.
func Public(u User) PublicProfile {
	return PublicProfile{ID: u.ID, DisplayName: u.DisplayName}
}
