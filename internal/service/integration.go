package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"galaxyco.ai/api-server/internal/crypto"
	"galaxyco.ai/api-server/internal/model"
	"galaxyco.ai/api-server/internal/store"
)

var (
	ErrUnknownProvider     = errors.New("unknown provider")
	ErrIntegrationNotFound = errors.New("integration not found")
	ErrNoRefreshToken      = errors.New("integration has no refresh token")
)

// defaultScopes requested per provider at connect time.
var defaultScopes = map[model.Provider][]string{
	model.ProviderGoogle:    {"openid", "email", "https://www.googleapis.com/auth/calendar.readonly"},
	model.ProviderMicrosoft: {"offline_access", "User.Read", "Calendars.Read"},
	model.ProviderSlack:     {"channels:read", "chat:write", "users:read"},
	model.ProviderHubSpot:   {"crm.objects.contacts.read", "crm.objects.deals.read"},
	model.ProviderPipedrive: {"deals:read", "contacts:read"},
}

// IntegrationStatusInfo is what the status endpoint returns: presence and
// health, never token material.
type IntegrationStatusInfo struct {
	ConnectedAt   *time.Time              `json:"connected_at,omitempty"`
	Status        model.IntegrationStatus `json:"status,omitempty"`
	Provider      model.Provider          `json:"provider,omitempty"`
	IntegrationID uuid.UUID               `json:"integrationId"`
	Connected     bool                    `json:"connected"`
}

type IntegrationService interface {
	// Initiate returns the provider's consent URL carrying a signed state
	// token. Nothing is persisted until the callback completes.
	Initiate(ctx context.Context, tc *TenantContext, provider model.Provider) (string, error)
	// CompleteCallback verifies the state, exchanges the code, and stores the
	// encrypted tokens under the workspace the state was minted for.
	CompleteCallback(ctx context.Context, tc *TenantContext, state, code string) (*model.Integration, error)
	// Disconnect revokes upstream best-effort and deletes the connection.
	// Disconnecting an unknown or already-deleted integration is a no-op.
	Disconnect(ctx context.Context, tc *TenantContext, integrationID uuid.UUID) error
	Status(ctx context.Context, tc *TenantContext, integrationID uuid.UUID) (*IntegrationStatusInfo, error)
	List(ctx context.Context, tc *TenantContext) ([]model.Integration, error)
	// RefreshToken rotates the access token using the stored refresh token.
	// A failed refresh marks the integration as errored.
	RefreshToken(ctx context.Context, integrationID uuid.UUID) error
}

type integrationService struct {
	tx     store.TxRunner
	stores store.StoreProvider
	oauth  OAuthClient
	cipher *crypto.TokenCipher
	state  *stateSigner
}

func NewIntegrationService(
	tx store.TxRunner,
	stores store.StoreProvider,
	oauth OAuthClient,
	cipher *crypto.TokenCipher,
	stateSecret []byte,
) IntegrationService {
	return &integrationService{
		tx:     tx,
		stores: stores,
		oauth:  oauth,
		cipher: cipher,
		state:  newStateSigner(stateSecret),
	}
}

func (s *integrationService) Initiate(ctx context.Context, tc *TenantContext, provider model.Provider) (string, error) {
	if err := RequireRole(tc, model.RoleMember); err != nil {
		return "", err
	}
	if !provider.Valid() {
		return "", ErrUnknownProvider
	}
	// Refuse up front rather than after the provider redirect: without an
	// encryption key the callback could never store the tokens.
	if s.cipher == nil {
		return "", crypto.ErrNotConfigured
	}

	state, err := s.state.Sign(tc.WorkspaceID, provider)
	if err != nil {
		return "", fmt.Errorf("signing oauth state: %w", err)
	}
	return s.oauth.AuthorizeURL(provider, state, defaultScopes[provider])
}

func (s *integrationService) CompleteCallback(ctx context.Context, tc *TenantContext, state, code string) (*model.Integration, error) {
	workspaceID, provider, err := s.state.Verify(state)
	if err != nil {
		return nil, err
	}
	// The state binds the flow to the workspace it started in. The caller's
	// current workspace header does not matter here, but the caller must
	// still hold an active membership in the bound workspace.
	member, err := s.stores.Members().GetActive(ctx, workspaceID, tc.UserID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrForbidden
		}
		return nil, fmt.Errorf("loading membership: %w", err)
	}
	if !member.Role.AtLeast(model.RoleMember) {
		return nil, ErrForbidden
	}

	token, err := s.oauth.ExchangeCode(ctx, provider, code)
	if err != nil {
		return nil, err
	}

	encryptedAccess, err := s.cipher.Encrypt(token.AccessToken)
	if err != nil {
		return nil, fmt.Errorf("encrypting access token: %w", err)
	}
	var encryptedRefresh *string
	if token.RefreshToken != "" {
		enc, err := s.cipher.Encrypt(token.RefreshToken)
		if err != nil {
			return nil, fmt.Errorf("encrypting refresh token: %w", err)
		}
		encryptedRefresh = &enc
	}

	var expiresAt *time.Time
	if token.ExpiresIn > 0 {
		t := time.Now().Add(time.Duration(token.ExpiresIn) * time.Second)
		expiresAt = &t
	}
	var scopes []string
	if token.Scope != "" {
		scopes = strings.Fields(token.Scope)
	} else {
		scopes = defaultScopes[provider]
	}

	integration := &model.Integration{
		ID:          uuid.New(),
		WorkspaceID: workspaceID,
		Provider:    provider,
		Status:      model.IntegrationActive,
		ConnectedBy: tc.UserID,
	}

	err = s.tx.WithTx(ctx, func(stores store.StoreProvider) error {
		if err := stores.Integrations().Upsert(ctx, integration); err != nil {
			return fmt.Errorf("upserting integration: %w", err)
		}
		oauthToken := &model.OAuthToken{
			ID:                    uuid.New(),
			IntegrationID:         integration.ID,
			EncryptedAccessToken:  encryptedAccess,
			EncryptedRefreshToken: encryptedRefresh,
			Scopes:                scopes,
			ExpiresAt:             expiresAt,
		}
		if err := stores.Tokens().Upsert(ctx, oauthToken); err != nil {
			return fmt.Errorf("upserting oauth token: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	boundTC := &TenantContext{UserID: tc.UserID, WorkspaceID: workspaceID, Role: member.Role}
	auditWith(ctx, s.stores.Audit(), boundTC, model.AuditIntegrationConnected, "integration", integration.ID.String())

	return integration, nil
}

func (s *integrationService) Disconnect(ctx context.Context, tc *TenantContext, integrationID uuid.UUID) error {
	if err := RequireRole(tc, model.RoleAdmin); err != nil {
		return err
	}

	integration, err := s.stores.Integrations().GetByID(ctx, integrationID)
	if errors.Is(err, store.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("loading integration: %w", err)
	}
	// An id from another workspace behaves exactly like an unknown one.
	if integration.WorkspaceID != tc.WorkspaceID {
		return nil
	}

	// Revocation is best effort. A dead upstream must not leave tokens in
	// our database.
	if token, err := s.stores.Tokens().GetByIntegration(ctx, integration.ID); err == nil {
		if access, err := s.cipher.Decrypt(token.EncryptedAccessToken); err == nil {
			if err := s.oauth.Revoke(ctx, integration.Provider, access); err != nil {
				slog.WarnContext(ctx, "provider token revocation failed",
					"provider", integration.Provider,
					"integration_id", integration.ID,
					"error", err)
			}
		}
	}

	err = s.tx.WithTx(ctx, func(stores store.StoreProvider) error {
		if err := stores.Tokens().DeleteByIntegration(ctx, integration.ID); err != nil {
			return fmt.Errorf("deleting tokens: %w", err)
		}
		if err := stores.Integrations().Delete(ctx, integration.ID); err != nil {
			return fmt.Errorf("deleting integration: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	auditWith(ctx, s.stores.Audit(), tc, model.AuditIntegrationDisconnected, "integration", integration.ID.String())

	return nil
}

func (s *integrationService) Status(ctx context.Context, tc *TenantContext, integrationID uuid.UUID) (*IntegrationStatusInfo, error) {
	integration, err := s.stores.Integrations().GetByID(ctx, integrationID)
	if errors.Is(err, store.ErrNotFound) {
		return &IntegrationStatusInfo{IntegrationID: integrationID, Connected: false}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading integration: %w", err)
	}
	if integration.WorkspaceID != tc.WorkspaceID {
		return &IntegrationStatusInfo{IntegrationID: integrationID, Connected: false}, nil
	}

	return &IntegrationStatusInfo{
		IntegrationID: integrationID,
		Provider:      integration.Provider,
		Connected:     integration.Status == model.IntegrationActive,
		Status:        integration.Status,
		ConnectedAt:   &integration.CreatedAt,
	}, nil
}

func (s *integrationService) List(ctx context.Context, tc *TenantContext) ([]model.Integration, error) {
	return s.stores.Integrations().ListByWorkspace(ctx, tc.WorkspaceID)
}

func (s *integrationService) RefreshToken(ctx context.Context, integrationID uuid.UUID) error {
	integration, err := s.stores.Integrations().GetByID(ctx, integrationID)
	if errors.Is(err, store.ErrNotFound) {
		return ErrIntegrationNotFound
	}
	if err != nil {
		return fmt.Errorf("loading integration: %w", err)
	}

	token, err := s.stores.Tokens().GetByIntegration(ctx, integrationID)
	if err != nil {
		return fmt.Errorf("loading token: %w", err)
	}
	if token.EncryptedRefreshToken == nil {
		return ErrNoRefreshToken
	}
	refresh, err := s.cipher.Decrypt(*token.EncryptedRefreshToken)
	if err != nil {
		return fmt.Errorf("decrypting refresh token: %w", err)
	}

	rotated, err := s.oauth.RefreshGrant(ctx, integration.Provider, refresh)
	if err != nil {
		if statusErr := s.stores.Integrations().SetStatus(ctx, integrationID, model.IntegrationError); statusErr != nil {
			slog.ErrorContext(ctx, "marking integration errored after failed refresh",
				"integration_id", integrationID,
				"error", statusErr)
		}
		return err
	}

	encryptedAccess, err := s.cipher.Encrypt(rotated.AccessToken)
	if err != nil {
		return fmt.Errorf("encrypting access token: %w", err)
	}
	encryptedRefresh := token.EncryptedRefreshToken
	if rotated.RefreshToken != "" {
		enc, err := s.cipher.Encrypt(rotated.RefreshToken)
		if err != nil {
			return fmt.Errorf("encrypting refresh token: %w", err)
		}
		encryptedRefresh = &enc
	}
	var expiresAt *time.Time
	if rotated.ExpiresIn > 0 {
		t := time.Now().Add(time.Duration(rotated.ExpiresIn) * time.Second)
		expiresAt = &t
	}

	if err := s.stores.Tokens().UpdateTokens(ctx, integrationID, encryptedAccess, encryptedRefresh, expiresAt); err != nil {
		return fmt.Errorf("storing rotated tokens: %w", err)
	}
	if integration.Status != model.IntegrationActive {
		if err := s.stores.Integrations().SetStatus(ctx, integrationID, model.IntegrationActive); err != nil {
			return fmt.Errorf("restoring integration status: %w", err)
		}
	}
	return nil
}
