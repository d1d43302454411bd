package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"galaxyco.ai/api-server/common"
	"galaxyco.ai/api-server/common/id"
	"galaxyco.ai/api-server/internal/model"
	"galaxyco.ai/api-server/internal/store"
)

var ErrOwnerImmutable = errors.New("workspace owner cannot be removed or demoted")

type WorkspaceService interface {
	Create(ctx context.Context, name string, slug *string, ownerUserID uuid.UUID) (*model.Workspace, error)
	Get(ctx context.Context, workspaceID uuid.UUID) (*model.Workspace, error)
	ListForUser(ctx context.Context, userID uuid.UUID) ([]model.Workspace, error)
	ListMembers(ctx context.Context, tc *TenantContext) ([]model.WorkspaceMember, error)
	AddMember(ctx context.Context, tc *TenantContext, userID uuid.UUID, role model.Role) (*model.WorkspaceMember, error)
	ChangeMemberRole(ctx context.Context, tc *TenantContext, userID uuid.UUID, role model.Role) error
	RemoveMember(ctx context.Context, tc *TenantContext, userID uuid.UUID) error
}

type workspaceService struct {
	tx     store.TxRunner
	stores store.StoreProvider
}

func NewWorkspaceService(tx store.TxRunner, stores store.StoreProvider) WorkspaceService {
	return &workspaceService{tx: tx, stores: stores}
}

// Create inserts the workspace and the owner membership in one transaction,
// then appends the audit event.
func (s *workspaceService) Create(ctx context.Context, name string, slug *string, ownerUserID uuid.UUID) (*model.Workspace, error) {
	var created *model.Workspace

	err := s.tx.WithTx(ctx, func(stores store.StoreProvider) error {
		workspaceStore := stores.Workspaces()

		finalSlug, err := s.ensureSlug(ctx, workspaceStore, name, slug)
		if err != nil {
			return err
		}

		ws := &model.Workspace{
			ID:          uuid.New(),
			Name:        name,
			Slug:        finalSlug,
			OwnerUserID: ownerUserID,
		}
		if err := workspaceStore.Create(ctx, ws); err != nil {
			return fmt.Errorf("creating workspace: %w", err)
		}

		member := &model.WorkspaceMember{
			ID:          uuid.New(),
			WorkspaceID: ws.ID,
			UserID:      ownerUserID,
			Role:        model.RoleOwner,
		}
		if err := stores.Members().Create(ctx, member); err != nil {
			return fmt.Errorf("creating owner membership: %w", err)
		}

		if err := stores.Audit().Append(ctx, &model.AuditEvent{
			ID:           id.New(),
			WorkspaceID:  ws.ID,
			ActorUserID:  ownerUserID,
			Action:       model.AuditWorkspaceCreated,
			ResourceType: "workspace",
			ResourceID:   ws.ID.String(),
		}); err != nil {
			return fmt.Errorf("recording audit event: %w", err)
		}

		created = ws
		return nil
	})
	if err != nil {
		return nil, err
	}

	return created, nil
}

func (s *workspaceService) Get(ctx context.Context, workspaceID uuid.UUID) (*model.Workspace, error) {
	return s.stores.Workspaces().GetByID(ctx, workspaceID)
}

func (s *workspaceService) ListForUser(ctx context.Context, userID uuid.UUID) ([]model.Workspace, error) {
	return s.stores.Workspaces().ListByUser(ctx, userID)
}

func (s *workspaceService) ListMembers(ctx context.Context, tc *TenantContext) ([]model.WorkspaceMember, error) {
	return s.stores.Members().ListByWorkspace(ctx, tc.WorkspaceID)
}

func (s *workspaceService) AddMember(ctx context.Context, tc *TenantContext, userID uuid.UUID, role model.Role) (*model.WorkspaceMember, error) {
	if err := RequireRole(tc, model.RoleAdmin); err != nil {
		return nil, err
	}
	// Nobody grants a role above their own.
	if !tc.Role.AtLeast(role) {
		return nil, ErrForbidden
	}

	member := &model.WorkspaceMember{
		ID:          uuid.New(),
		WorkspaceID: tc.WorkspaceID,
		UserID:      userID,
		Role:        role,
		InvitedBy:   &tc.UserID,
	}
	if err := s.stores.Members().Create(ctx, member); err != nil {
		return nil, fmt.Errorf("adding member: %w", err)
	}

	s.audit(ctx, tc, model.AuditMemberAdded, "member", userID.String())
	return member, nil
}

func (s *workspaceService) ChangeMemberRole(ctx context.Context, tc *TenantContext, userID uuid.UUID, role model.Role) error {
	if err := RequireRole(tc, model.RoleAdmin); err != nil {
		return err
	}
	if !tc.Role.AtLeast(role) {
		return ErrForbidden
	}
	if err := s.guardOwner(ctx, tc.WorkspaceID, userID); err != nil {
		return err
	}

	if err := s.stores.Members().UpdateRole(ctx, tc.WorkspaceID, userID, role); err != nil {
		return fmt.Errorf("changing member role: %w", err)
	}

	s.audit(ctx, tc, model.AuditMemberRoleChanged, "member", userID.String())
	return nil
}

func (s *workspaceService) RemoveMember(ctx context.Context, tc *TenantContext, userID uuid.UUID) error {
	if err := RequireRole(tc, model.RoleAdmin); err != nil {
		return err
	}
	if err := s.guardOwner(ctx, tc.WorkspaceID, userID); err != nil {
		return err
	}

	if err := s.stores.Members().Deactivate(ctx, tc.WorkspaceID, userID); err != nil {
		return fmt.Errorf("removing member: %w", err)
	}

	s.audit(ctx, tc, model.AuditMemberRemoved, "member", userID.String())
	return nil
}

func (s *workspaceService) guardOwner(ctx context.Context, workspaceID, userID uuid.UUID) error {
	ws, err := s.stores.Workspaces().GetByID(ctx, workspaceID)
	if err != nil {
		return fmt.Errorf("loading workspace: %w", err)
	}
	if ws.OwnerUserID == userID {
		return ErrOwnerImmutable
	}
	return nil
}

func (s *workspaceService) audit(ctx context.Context, tc *TenantContext, action, resourceType, resourceID string) {
	auditWith(ctx, s.stores.Audit(), tc, action, resourceType, resourceID)
}

// ensureSlug derives a slug from the preferred input and probes numeric
// suffixes until one is free.
func (s *workspaceService) ensureSlug(ctx context.Context, workspaceStore store.WorkspaceStore, name string, slug *string) (string, error) {
	input := name
	if slug != nil && *slug != "" {
		input = *slug
	}

	base, err := common.Slugify(input, "workspace")
	if err != nil {
		return "", fmt.Errorf("generating slug: %w", err)
	}

	// Fast path
	if _, err := workspaceStore.GetBySlug(ctx, base); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return base, nil
		}
		return "", fmt.Errorf("checking slug availability: %w", err)
	}

	// Add numeric suffix until available
	for i := 1; i <= 20; i++ {
		candidate := fmt.Sprintf("%s-%d", base, i)
		_, err := workspaceStore.GetBySlug(ctx, candidate)
		if errors.Is(err, store.ErrNotFound) {
			return candidate, nil
		}
		if err != nil {
			return "", fmt.Errorf("checking slug availability: %w", err)
		}
	}

	return "", fmt.Errorf("unable to find available slug for %q", base)
}
