package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// AgentTemplate is a marketplace listing. Rating is stored scaled by 100
// (0..500) and divided back down at the API boundary.
type AgentTemplate struct {
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
	PublishedAt      *time.Time      `json:"published_at,omitempty"`
	Name             string          `json:"name"`
	Slug             string          `json:"slug"`
	Description      string          `json:"description"`
	ShortDescription string          `json:"short_description"`
	Category         string          `json:"category"`
	AuthorName       string          `json:"author_name"`
	Config           json.RawMessage `json:"config"`
	Tags             []string        `json:"tags"`
	AuthorID         *uuid.UUID      `json:"author_id,omitempty"`
	ID               uuid.UUID       `json:"id"`
	InstallCount     int             `json:"install_count"`
	Rating           int             `json:"-"`
	ReviewCount      int             `json:"review_count"`
	Installs24h      int             `json:"-"`
	Installs7d       int             `json:"-"`
	Installs30d      int             `json:"-"`
	TrendingScore    int             `json:"-"`
	IsPublished      bool            `json:"is_published"`
	IsFeatured       bool            `json:"is_featured"`
}

// Agent is a workspace-scoped instance created from a template on install.
type Agent struct {
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
	Name             string          `json:"name"`
	Description      string          `json:"description"`
	Status           string          `json:"status"`
	Config           json.RawMessage `json:"config"`
	SourceTemplateID *uuid.UUID      `json:"source_template_id,omitempty"`
	ID               uuid.UUID       `json:"id"`
	WorkspaceID      uuid.UUID       `json:"workspace_id"`
	CreatedBy        uuid.UUID       `json:"created_by"`
}
