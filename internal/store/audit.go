package store

import (
	"context"
	"time"

	"github.com/google/uuid"

	"galaxyco.ai/api-server/internal/model"
)

// auditStore is insert-only. There is intentionally no update or delete.
type auditStore struct {
	q querier
}

func (s *auditStore) Append(ctx context.Context, event *model.AuditEvent) error {
	row := s.q.QueryRow(ctx, `
		INSERT INTO audit_events (id, workspace_id, actor_user_id, action, resource_type, resource_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at`,
		event.ID, event.WorkspaceID, event.ActorUserID, event.Action,
		event.ResourceType, event.ResourceID,
	)
	return row.Scan(&event.CreatedAt)
}

func (s *auditStore) ListByWorkspace(ctx context.Context, workspaceID uuid.UUID, limit int) ([]model.AuditEvent, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	rows, err := s.q.Query(ctx, `
		SELECT id, workspace_id, actor_user_id, action, resource_type, resource_id, created_at
		FROM audit_events
		WHERE workspace_id = $1
		ORDER BY id DESC
		LIMIT $2`,
		workspaceID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.AuditEvent
	for rows.Next() {
		var e model.AuditEvent
		if err := rows.Scan(&e.ID, &e.WorkspaceID, &e.ActorUserID, &e.Action,
			&e.ResourceType, &e.ResourceID, &e.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, e)
	}
	return result, rows.Err()
}

func (s *auditStore) CountByAction(ctx context.Context, workspaceID uuid.UUID, since time.Time) (map[string]int, error) {
	rows, err := s.q.Query(ctx, `
		SELECT action, COUNT(*)
		FROM audit_events
		WHERE workspace_id = $1 AND created_at >= $2
		GROUP BY action`,
		workspaceID, since,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var action string
		var count int
		if err := rows.Scan(&action, &count); err != nil {
			return nil, err
		}
		counts[action] = count
	}
	return counts, rows.Err()
}
