package model

import (
	"time"

	"github.com/google/uuid"
)

// Session is a server-side login session, created on AuthKit callback and
// checked for expiry on every request.
type Session struct {
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
}
