package dto

import (
	"encoding/json"

	"github.com/google/uuid"
)

type InstallTemplateRequest struct {
	AgentName string `json:"agent_name" binding:"omitempty,max=255"`
}

type RateTemplateRequest struct {
	Stars int `json:"stars" binding:"required,min=1,max=5"`
}

type CreateTemplateRequest struct {
	Slug             *string         `json:"slug,omitempty" binding:"omitempty,min=1,max=64"`
	Name             string          `json:"name" binding:"required,min=1,max=255"`
	Description      string          `json:"description" binding:"required"`
	ShortDescription string          `json:"short_description" binding:"required,max=500"`
	Category         string          `json:"category" binding:"required,max=64"`
	Config           json.RawMessage `json:"config" binding:"required"`
	Tags             []string        `json:"tags" binding:"omitempty,max=10,dive,max=32"`
}

type InstallTemplateResponse struct {
	AgentID     uuid.UUID `json:"agent_id"`
	TemplateID  uuid.UUID `json:"template_id"`
	WorkspaceID uuid.UUID `json:"workspace_id"`
}
