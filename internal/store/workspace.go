package store

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"galaxyco.ai/api-server/internal/model"
)

type workspaceStore struct {
	q querier
}

const workspaceColumns = `id, name, slug, owner_user_id, settings, is_active, created_at, updated_at`

func (s *workspaceStore) GetByID(ctx context.Context, id uuid.UUID) (*model.Workspace, error) {
	row := s.q.QueryRow(ctx, `SELECT `+workspaceColumns+` FROM workspaces WHERE id = $1 AND is_active`, id)
	return scanWorkspace(row)
}

func (s *workspaceStore) GetBySlug(ctx context.Context, slug string) (*model.Workspace, error) {
	row := s.q.QueryRow(ctx, `SELECT `+workspaceColumns+` FROM workspaces WHERE slug = $1 AND is_active`, slug)
	return scanWorkspace(row)
}

func (s *workspaceStore) Create(ctx context.Context, ws *model.Workspace) error {
	row := s.q.QueryRow(ctx, `
		INSERT INTO workspaces (id, name, slug, owner_user_id, settings)
		VALUES ($1, $2, $3, $4, COALESCE($5, '{}'::jsonb))
		RETURNING `+workspaceColumns,
		ws.ID, ws.Name, ws.Slug, ws.OwnerUserID, ws.Settings,
	)
	stored, err := scanWorkspace(row)
	if err != nil {
		return err
	}
	*ws = *stored
	return nil
}

func (s *workspaceStore) Update(ctx context.Context, ws *model.Workspace) error {
	row := s.q.QueryRow(ctx, `
		UPDATE workspaces
		SET name = $2, settings = COALESCE($3, settings), updated_at = NOW()
		WHERE id = $1 AND is_active
		RETURNING `+workspaceColumns,
		ws.ID, ws.Name, ws.Settings,
	)
	stored, err := scanWorkspace(row)
	if err != nil {
		return err
	}
	*ws = *stored
	return nil
}

func (s *workspaceStore) Deactivate(ctx context.Context, id uuid.UUID) error {
	tag, err := s.q.Exec(ctx, `UPDATE workspaces SET is_active = FALSE, updated_at = NOW() WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *workspaceStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]model.Workspace, error) {
	rows, err := s.q.Query(ctx, `
		SELECT w.id, w.name, w.slug, w.owner_user_id, w.settings, w.is_active, w.created_at, w.updated_at
		FROM workspaces w
		JOIN workspace_members m ON m.workspace_id = w.id
		WHERE m.user_id = $1 AND m.is_active AND w.is_active
		ORDER BY w.created_at`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.Workspace
	for rows.Next() {
		ws, err := scanWorkspace(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *ws)
	}
	return result, rows.Err()
}

func scanWorkspace(row pgx.Row) (*model.Workspace, error) {
	var ws model.Workspace
	err := row.Scan(
		&ws.ID,
		&ws.Name,
		&ws.Slug,
		&ws.OwnerUserID,
		&ws.Settings,
		&ws.IsActive,
		&ws.CreatedAt,
		&ws.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &ws, nil
}
