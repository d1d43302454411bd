package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Workspace is the tenant boundary. Every other business entity carries a
// workspace id and every query filters by it.
type Workspace struct {
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
	Name        string          `json:"name"`
	Slug        string          `json:"slug"`
	Settings    json.RawMessage `json:"settings,omitempty"`
	ID          uuid.UUID       `json:"id"`
	OwnerUserID uuid.UUID       `json:"owner_user_id"`
	IsActive    bool            `json:"is_active"`
}
