package service

import (
	"context"
	"log/slog"

	"galaxyco.ai/api-server/common/id"
	"galaxyco.ai/api-server/internal/model"
	"galaxyco.ai/api-server/internal/store"
)

// auditWith appends an event best-effort. Audit writes outside a transaction
// never fail the parent operation.
func auditWith(ctx context.Context, auditStore store.AuditStore, tc *TenantContext, action, resourceType, resourceID string) {
	err := auditStore.Append(ctx, &model.AuditEvent{
		ID:           id.New(),
		WorkspaceID:  tc.WorkspaceID,
		ActorUserID:  tc.UserID,
		Action:       action,
		ResourceType: resourceType,
		ResourceID:   resourceID,
	})
	if err != nil {
		slog.WarnContext(ctx, "failed to record audit event",
			"error", err,
			"action", action,
			"workspace_id", tc.WorkspaceID,
		)
	}
}
