package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// User is the internal identity record. WorkOSUserID is the external auth
// principal subject; a row is created on first sign-in and only ever
// soft-deactivated.
type User struct {
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
	LastLoginAt *time.Time      `json:"last_login_at,omitempty"`
	Email       string          `json:"email"`
	WorkOSID    string          `json:"-"`
	FirstName   *string         `json:"first_name,omitempty"`
	LastName    *string         `json:"last_name,omitempty"`
	AvatarURL   *string         `json:"avatar_url,omitempty"`
	Preferences json.RawMessage `json:"preferences,omitempty"`
	ID          uuid.UUID       `json:"id"`
	IsActive    bool            `json:"is_active"`
}

// Name assembles a display name the way the dashboard shows it.
func (u *User) Name() string {
	first, last := "", ""
	if u.FirstName != nil {
		first = *u.FirstName
	}
	if u.LastName != nil {
		last = *u.LastName
	}
	switch {
	case first != "" && last != "":
		return first + " " + last
	case first != "":
		return first
	case last != "":
		return last
	default:
		return u.Email
	}
}
