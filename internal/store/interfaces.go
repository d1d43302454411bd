package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"galaxyco.ai/api-server/internal/model"
)

var ErrNotFound = errors.New("not found")

type UserStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	GetByWorkOSID(ctx context.Context, workosID string) (*model.User, error)
	UpsertByWorkOSID(ctx context.Context, user *model.User) error
	UpdateProfile(ctx context.Context, user *model.User) error
	Deactivate(ctx context.Context, id uuid.UUID) error
}

type WorkspaceStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.Workspace, error)
	GetBySlug(ctx context.Context, slug string) (*model.Workspace, error)
	Create(ctx context.Context, ws *model.Workspace) error
	Update(ctx context.Context, ws *model.Workspace) error
	Deactivate(ctx context.Context, id uuid.UUID) error
	ListByUser(ctx context.Context, userID uuid.UUID) ([]model.Workspace, error)
}

type MemberStore interface {
	Get(ctx context.Context, workspaceID, userID uuid.UUID) (*model.WorkspaceMember, error)
	GetActive(ctx context.Context, workspaceID, userID uuid.UUID) (*model.WorkspaceMember, error)
	Create(ctx context.Context, member *model.WorkspaceMember) error
	UpdateRole(ctx context.Context, workspaceID, userID uuid.UUID, role model.Role) error
	Deactivate(ctx context.Context, workspaceID, userID uuid.UUID) error
	ListByWorkspace(ctx context.Context, workspaceID uuid.UUID) ([]model.WorkspaceMember, error)
	FirstActiveByUser(ctx context.Context, userID uuid.UUID) (*model.WorkspaceMember, error)
}

type IntegrationStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.Integration, error)
	GetByWorkspaceAndProvider(ctx context.Context, workspaceID uuid.UUID, provider model.Provider) (*model.Integration, error)
	Upsert(ctx context.Context, integration *model.Integration) error
	SetStatus(ctx context.Context, id uuid.UUID, status model.IntegrationStatus) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListByWorkspace(ctx context.Context, workspaceID uuid.UUID) ([]model.Integration, error)
}

type TokenStore interface {
	GetByIntegration(ctx context.Context, integrationID uuid.UUID) (*model.OAuthToken, error)
	Upsert(ctx context.Context, token *model.OAuthToken) error
	UpdateTokens(ctx context.Context, integrationID uuid.UUID, encryptedAccess string, encryptedRefresh *string, expiresAt *time.Time) error
	DeleteByIntegration(ctx context.Context, integrationID uuid.UUID) error
}

type TemplateStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.AgentTemplate, error)
	GetBySlug(ctx context.Context, slug string) (*model.AgentTemplate, error)
	Create(ctx context.Context, tpl *model.AgentTemplate) error
	ListPublished(ctx context.Context, filter TemplateFilter) ([]model.AgentTemplate, error)
	RecordInstall(ctx context.Context, id uuid.UUID) error
	ApplyRating(ctx context.Context, id uuid.UUID, rating, reviewCount int) error
}

// TemplateFilter narrows marketplace listings.
type TemplateFilter struct {
	Category     string
	SortBy       string // "trending", "installs", "rating", "newest"
	Limit        int
	FeaturedOnly bool
}

type AgentStore interface {
	GetByID(ctx context.Context, workspaceID, id uuid.UUID) (*model.Agent, error)
	Create(ctx context.Context, agent *model.Agent) error
	ListByWorkspace(ctx context.Context, workspaceID uuid.UUID) ([]model.Agent, error)
}

type AuditStore interface {
	Append(ctx context.Context, event *model.AuditEvent) error
	ListByWorkspace(ctx context.Context, workspaceID uuid.UUID, limit int) ([]model.AuditEvent, error)
	CountByAction(ctx context.Context, workspaceID uuid.UUID, since time.Time) (map[string]int, error)
}

type SessionStore interface {
	GetValid(ctx context.Context, id uuid.UUID) (*model.Session, error)
	Create(ctx context.Context, session *model.Session) error
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteExpired(ctx context.Context) error
}

// StoreProvider hands out stores bound to one querier (the pool, or a single
// transaction inside TxRunner.WithTx).
type StoreProvider interface {
	Users() UserStore
	Workspaces() WorkspaceStore
	Members() MemberStore
	Integrations() IntegrationStore
	Tokens() TokenStore
	Templates() TemplateStore
	Agents() AgentStore
	Audit() AuditStore
	Sessions() SessionStore
}

// TxRunner runs fn with every store bound to the same transaction; an error
// rolls everything back.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(stores StoreProvider) error) error
}
