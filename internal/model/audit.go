package model

import (
	"time"

	"github.com/google/uuid"
)

// Audit actions recorded by the services. The audit log is append-only and is
// the sole source for dashboard activity statistics.
const (
	AuditWorkspaceCreated        = "workspace.created"
	AuditMemberAdded             = "member.added"
	AuditMemberRoleChanged       = "member.role_changed"
	AuditMemberRemoved           = "member.removed"
	AuditIntegrationConnected    = "integration.connected"
	AuditIntegrationDisconnected = "integration.disconnected"
	AuditTemplateInstalled       = "template.installed"
	AuditTemplateRated           = "template.rated"
)

// AuditEvent records who did what in which workspace. IDs are snowflakes so
// insertion order is recoverable from the id alone.
type AuditEvent struct {
	CreatedAt    time.Time `json:"created_at"`
	Action       string    `json:"action"`
	ResourceType string    `json:"resource_type"`
	ResourceID   string    `json:"resource_id"`
	WorkspaceID  uuid.UUID `json:"workspace_id"`
	ActorUserID  uuid.UUID `json:"actor_user_id"`
	ID           int64     `json:"id,string"`
}
