package user

import (
	"context"

	"github.com/google/uuid"
)

type User struct {
	ID              uuid.UUID      `json:"id"`
	Email           string         `json:"email"`
	Name            *string        `json:"name"`
	PasswordHash    string         `json:"-"`
	ProfileSettings map[string]any `json:"profile_settings"`
}

// DisplayName falls back to the email when no name is set.
func (u *User) DisplayName() string {
	if u.Name != nil && *u.Name != "" {
		return *u.Name
	}
	return u.Email
}

// Identity is the signed-in owner as seen by the wizard.
type Identity struct {
	ID          uuid.UUID `json:"id"`
	DisplayName string    `json:"display_name"`
}

func (u *User) Identity() Identity {
	return Identity{ID: u.ID, DisplayName: u.DisplayName()}
}

type Repository interface {
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByID(ctx context.Context, id uuid.UUID) (*User, error)
}
