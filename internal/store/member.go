package store

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"galaxyco.ai/api-server/internal/model"
)

type memberStore struct {
	q querier
}

const memberColumns = `id, workspace_id, user_id, role, invited_by, is_active, joined_at, created_at, updated_at`

func (s *memberStore) Get(ctx context.Context, workspaceID, userID uuid.UUID) (*model.WorkspaceMember, error) {
	row := s.q.QueryRow(ctx, `
		SELECT `+memberColumns+`
		FROM workspace_members
		WHERE workspace_id = $1 AND user_id = $2`,
		workspaceID, userID,
	)
	return scanMember(row)
}

func (s *memberStore) GetActive(ctx context.Context, workspaceID, userID uuid.UUID) (*model.WorkspaceMember, error) {
	row := s.q.QueryRow(ctx, `
		SELECT `+memberColumns+`
		FROM workspace_members
		WHERE workspace_id = $1 AND user_id = $2 AND is_active`,
		workspaceID, userID,
	)
	return scanMember(row)
}

func (s *memberStore) Create(ctx context.Context, member *model.WorkspaceMember) error {
	row := s.q.QueryRow(ctx, `
		INSERT INTO workspace_members (id, workspace_id, user_id, role, invited_by)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (workspace_id, user_id) DO UPDATE SET
			role = EXCLUDED.role,
			is_active = TRUE,
			updated_at = NOW()
		RETURNING `+memberColumns,
		member.ID, member.WorkspaceID, member.UserID, string(member.Role), member.InvitedBy,
	)
	stored, err := scanMember(row)
	if err != nil {
		return err
	}
	*member = *stored
	return nil
}

func (s *memberStore) UpdateRole(ctx context.Context, workspaceID, userID uuid.UUID, role model.Role) error {
	tag, err := s.q.Exec(ctx, `
		UPDATE workspace_members SET role = $3, updated_at = NOW()
		WHERE workspace_id = $1 AND user_id = $2 AND is_active`,
		workspaceID, userID, string(role),
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *memberStore) Deactivate(ctx context.Context, workspaceID, userID uuid.UUID) error {
	tag, err := s.q.Exec(ctx, `
		UPDATE workspace_members SET is_active = FALSE, updated_at = NOW()
		WHERE workspace_id = $1 AND user_id = $2`,
		workspaceID, userID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *memberStore) ListByWorkspace(ctx context.Context, workspaceID uuid.UUID) ([]model.WorkspaceMember, error) {
	rows, err := s.q.Query(ctx, `
		SELECT `+memberColumns+`
		FROM workspace_members
		WHERE workspace_id = $1 AND is_active
		ORDER BY joined_at`,
		workspaceID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.WorkspaceMember
	for rows.Next() {
		m, err := scanMember(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *m)
	}
	return result, rows.Err()
}

func (s *memberStore) FirstActiveByUser(ctx context.Context, userID uuid.UUID) (*model.WorkspaceMember, error) {
	row := s.q.QueryRow(ctx, `
		SELECT `+memberColumns+`
		FROM workspace_members
		WHERE user_id = $1 AND is_active
		ORDER BY joined_at
		LIMIT 1`,
		userID,
	)
	return scanMember(row)
}

func scanMember(row pgx.Row) (*model.WorkspaceMember, error) {
	var m model.WorkspaceMember
	var role string
	err := row.Scan(
		&m.ID,
		&m.WorkspaceID,
		&m.UserID,
		&role,
		&m.InvitedBy,
		&m.IsActive,
		&m.JoinedAt,
		&m.CreatedAt,
		&m.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	m.Role = model.Role(role)
	return &m, nil
}
