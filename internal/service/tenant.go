package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"galaxyco.ai/api-server/internal/model"
	"galaxyco.ai/api-server/internal/store"
)

// ErrForbidden means the caller is authenticated but has no active membership
// or an insufficient role for the workspace.
var ErrForbidden = errors.New("forbidden")

// TenantContext is the resolved (user, workspace, role) triple. Nothing
// workspace-scoped runs without one; downstream queries filter by
// WorkspaceID from here, never by a client-supplied id alone.
type TenantContext struct {
	UserID      uuid.UUID
	WorkspaceID uuid.UUID
	Role        model.Role
}

type TenantService interface {
	// Resolve maps an external auth principal and a requested workspace to a
	// TenantContext, failing closed: ErrUserNotFound when the principal has no
	// user row, ErrForbidden when no active membership exists. Read-only.
	Resolve(ctx context.Context, principalID string, workspaceID uuid.UUID) (*TenantContext, error)
	// ResolveForUser is Resolve for an already-identified internal user.
	ResolveForUser(ctx context.Context, userID, workspaceID uuid.UUID) (*TenantContext, error)
	// DefaultWorkspace returns the user's first active membership workspace.
	DefaultWorkspace(ctx context.Context, userID uuid.UUID) (uuid.UUID, error)
}

// RequireRole fails with ErrForbidden unless the context role sits at or
// above minRole in the owner > admin > member > viewer hierarchy.
func RequireRole(tc *TenantContext, minRole model.Role) error {
	if tc == nil || !tc.Role.AtLeast(minRole) {
		return ErrForbidden
	}
	return nil
}

type tenantService struct {
	userStore   store.UserStore
	memberStore store.MemberStore
}

func NewTenantService(userStore store.UserStore, memberStore store.MemberStore) TenantService {
	return &tenantService{
		userStore:   userStore,
		memberStore: memberStore,
	}
}

func (s *tenantService) Resolve(ctx context.Context, principalID string, workspaceID uuid.UUID) (*TenantContext, error) {
	if principalID == "" {
		return nil, ErrUserNotFound
	}

	user, err := s.userStore.GetByWorkOSID(ctx, principalID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("resolving user: %w", err)
	}
	if !user.IsActive {
		return nil, ErrUserNotFound
	}

	return s.ResolveForUser(ctx, user.ID, workspaceID)
}

func (s *tenantService) ResolveForUser(ctx context.Context, userID, workspaceID uuid.UUID) (*TenantContext, error) {
	member, err := s.memberStore.GetActive(ctx, workspaceID, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrForbidden
		}
		return nil, fmt.Errorf("resolving membership: %w", err)
	}

	return &TenantContext{
		UserID:      userID,
		WorkspaceID: workspaceID,
		Role:        member.Role,
	}, nil
}

func (s *tenantService) DefaultWorkspace(ctx context.Context, userID uuid.UUID) (uuid.UUID, error) {
	member, err := s.memberStore.FirstActiveByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return uuid.Nil, ErrForbidden
		}
		return uuid.Nil, fmt.Errorf("finding default workspace: %w", err)
	}
	return member.WorkspaceID, nil
}
