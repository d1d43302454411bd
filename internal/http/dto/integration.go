package dto

import (
	"time"

	"github.com/google/uuid"

	"galaxyco.ai/api-server/internal/model"
)

type InitiateConnectionResponse struct {
	AuthorizationURL string `json:"authorization_url"`
}

type IntegrationResponse struct {
	ConnectedAt       time.Time `json:"connected_at"`
	Provider          string    `json:"provider"`
	Status            string    `json:"status"`
	ExternalAccountID *string   `json:"external_account_id,omitempty"`
	ExternalEmail     *string   `json:"external_email,omitempty"`
	ID                uuid.UUID `json:"id"`
	WorkspaceID       uuid.UUID `json:"workspace_id"`
	ConnectedBy       uuid.UUID `json:"connected_by"`
}

func ToIntegrationResponse(in *model.Integration) *IntegrationResponse {
	return &IntegrationResponse{
		ID:                in.ID,
		WorkspaceID:       in.WorkspaceID,
		Provider:          string(in.Provider),
		Status:            string(in.Status),
		ExternalAccountID: in.ExternalAccountID,
		ExternalEmail:     in.ExternalEmail,
		ConnectedBy:       in.ConnectedBy,
		ConnectedAt:       in.CreatedAt,
	}
}

func ToIntegrationResponses(integrations []model.Integration) []IntegrationResponse {
	out := make([]IntegrationResponse, 0, len(integrations))
	for i := range integrations {
		out = append(out, *ToIntegrationResponse(&integrations[i]))
	}
	return out
}
