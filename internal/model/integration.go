package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Provider identifies an external OAuth provider.
type Provider string

const (
	ProviderGoogle    Provider = "google"
	ProviderMicrosoft Provider = "microsoft"
	ProviderSlack     Provider = "slack"
	ProviderHubSpot   Provider = "hubspot"
	ProviderPipedrive Provider = "pipedrive"
)

var knownProviders = map[Provider]bool{
	ProviderGoogle:    true,
	ProviderMicrosoft: true,
	ProviderSlack:     true,
	ProviderHubSpot:   true,
	ProviderPipedrive: true,
}

func (p Provider) Valid() bool {
	return knownProviders[p]
}

// IntegrationStatus is the connection lifecycle state.
type IntegrationStatus string

const (
	IntegrationActive  IntegrationStatus = "active"
	IntegrationRevoked IntegrationStatus = "revoked"
	IntegrationError   IntegrationStatus = "error"
)

// Integration is a per-workspace connection to one provider. One row per
// (workspace, provider); tokens live in OAuthToken rows.
type Integration struct {
	CreatedAt         time.Time         `json:"created_at"`
	UpdatedAt         time.Time         `json:"updated_at"`
	Provider          Provider          `json:"provider"`
	Status            IntegrationStatus `json:"status"`
	ExternalAccountID *string           `json:"external_account_id,omitempty"`
	ExternalEmail     *string           `json:"external_email,omitempty"`
	Settings          json.RawMessage   `json:"settings,omitempty"`
	ID                uuid.UUID         `json:"id"`
	WorkspaceID       uuid.UUID         `json:"workspace_id"`
	ConnectedBy       uuid.UUID         `json:"connected_by"`
}

// OAuthToken holds the encrypted credentials for one integration. The
// access/refresh fields are AES-256-GCM sealed blobs, never plaintext.
type OAuthToken struct {
	CreatedAt             time.Time  `json:"created_at"`
	UpdatedAt             time.Time  `json:"updated_at"`
	ExpiresAt             *time.Time `json:"expires_at,omitempty"`
	EncryptedAccessToken  string     `json:"-"`
	EncryptedRefreshToken *string    `json:"-"`
	Scopes                []string   `json:"scopes"`
	ID                    uuid.UUID  `json:"id"`
	IntegrationID         uuid.UUID  `json:"integration_id"`
}
