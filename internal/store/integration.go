package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"galaxyco.ai/api-server/internal/model"
)

type integrationStore struct {
	q querier
}

const integrationColumns = `id, workspace_id, provider, status, connected_by,
       external_account_id, external_email, settings, created_at, updated_at`

func (s *integrationStore) GetByID(ctx context.Context, id uuid.UUID) (*model.Integration, error) {
	row := s.q.QueryRow(ctx, `SELECT `+integrationColumns+` FROM integrations WHERE id = $1`, id)
	return scanIntegration(row)
}

func (s *integrationStore) GetByWorkspaceAndProvider(ctx context.Context, workspaceID uuid.UUID, provider model.Provider) (*model.Integration, error) {
	row := s.q.QueryRow(ctx, `
		SELECT `+integrationColumns+`
		FROM integrations
		WHERE workspace_id = $1 AND provider = $2`,
		workspaceID, string(provider),
	)
	return scanIntegration(row)
}

func (s *integrationStore) Upsert(ctx context.Context, integration *model.Integration) error {
	row := s.q.QueryRow(ctx, `
		INSERT INTO integrations (id, workspace_id, provider, status, connected_by,
			external_account_id, external_email, settings)
		VALUES ($1, $2, $3, $4, $5, $6, $7, COALESCE($8, '{}'::jsonb))
		ON CONFLICT (workspace_id, provider) DO UPDATE SET
			status = EXCLUDED.status,
			connected_by = EXCLUDED.connected_by,
			external_account_id = EXCLUDED.external_account_id,
			external_email = EXCLUDED.external_email,
			updated_at = NOW()
		RETURNING `+integrationColumns,
		integration.ID, integration.WorkspaceID, string(integration.Provider),
		string(integration.Status), integration.ConnectedBy,
		integration.ExternalAccountID, integration.ExternalEmail, integration.Settings,
	)
	stored, err := scanIntegration(row)
	if err != nil {
		return err
	}
	*integration = *stored
	return nil
}

func (s *integrationStore) SetStatus(ctx context.Context, id uuid.UUID, status model.IntegrationStatus) error {
	tag, err := s.q.Exec(ctx, `UPDATE integrations SET status = $2, updated_at = NOW() WHERE id = $1`,
		id, string(status))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *integrationStore) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := s.q.Exec(ctx, `DELETE FROM integrations WHERE id = $1`, id)
	return err
}

func (s *integrationStore) ListByWorkspace(ctx context.Context, workspaceID uuid.UUID) ([]model.Integration, error) {
	rows, err := s.q.Query(ctx, `
		SELECT `+integrationColumns+`
		FROM integrations
		WHERE workspace_id = $1
		ORDER BY created_at`,
		workspaceID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.Integration
	for rows.Next() {
		in, err := scanIntegration(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *in)
	}
	return result, rows.Err()
}

func scanIntegration(row pgx.Row) (*model.Integration, error) {
	var in model.Integration
	var provider, status string
	err := row.Scan(
		&in.ID,
		&in.WorkspaceID,
		&provider,
		&status,
		&in.ConnectedBy,
		&in.ExternalAccountID,
		&in.ExternalEmail,
		&in.Settings,
		&in.CreatedAt,
		&in.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	in.Provider = model.Provider(provider)
	in.Status = model.IntegrationStatus(status)
	return &in, nil
}

type tokenStore struct {
	q querier
}

const tokenColumns = `id, integration_id, encrypted_access_token, encrypted_refresh_token,
       scopes, expires_at, created_at, updated_at`

func (s *tokenStore) GetByIntegration(ctx context.Context, integrationID uuid.UUID) (*model.OAuthToken, error) {
	row := s.q.QueryRow(ctx, `SELECT `+tokenColumns+` FROM oauth_tokens WHERE integration_id = $1`, integrationID)
	return scanToken(row)
}

func (s *tokenStore) Upsert(ctx context.Context, token *model.OAuthToken) error {
	row := s.q.QueryRow(ctx, `
		INSERT INTO oauth_tokens (id, integration_id, encrypted_access_token,
			encrypted_refresh_token, scopes, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (integration_id) DO UPDATE SET
			encrypted_access_token = EXCLUDED.encrypted_access_token,
			encrypted_refresh_token = EXCLUDED.encrypted_refresh_token,
			scopes = EXCLUDED.scopes,
			expires_at = EXCLUDED.expires_at,
			updated_at = NOW()
		RETURNING `+tokenColumns,
		token.ID, token.IntegrationID, token.EncryptedAccessToken,
		token.EncryptedRefreshToken, token.Scopes, token.ExpiresAt,
	)
	stored, err := scanToken(row)
	if err != nil {
		return err
	}
	*token = *stored
	return nil
}

func (s *tokenStore) UpdateTokens(ctx context.Context, integrationID uuid.UUID, encryptedAccess string, encryptedRefresh *string, expiresAt *time.Time) error {
	tag, err := s.q.Exec(ctx, `
		UPDATE oauth_tokens
		SET encrypted_access_token = $2,
		    encrypted_refresh_token = COALESCE($3, encrypted_refresh_token),
		    expires_at = $4,
		    updated_at = NOW()
		WHERE integration_id = $1`,
		integrationID, encryptedAccess, encryptedRefresh, expiresAt,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *tokenStore) DeleteByIntegration(ctx context.Context, integrationID uuid.UUID) error {
	_, err := s.q.Exec(ctx, `DELETE FROM oauth_tokens WHERE integration_id = $1`, integrationID)
	return err
}

func scanToken(row pgx.Row) (*model.OAuthToken, error) {
	var t model.OAuthToken
	err := row.Scan(
		&t.ID,
		&t.IntegrationID,
		&t.EncryptedAccessToken,
		&t.EncryptedRefreshToken,
		&t.Scopes,
		&t.ExpiresAt,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &t, nil
}
