package service

import (
	"context"
	"fmt"
	"time"

	"galaxyco.ai/api-server/internal/model"
	"galaxyco.ai/api-server/internal/store"
)

// DashboardStats summarizes a workspace for the dashboard landing page. All
// activity figures are derived from the audit log.
type DashboardStats struct {
	ActivityByAction   map[string]int     `json:"activity_by_action"`
	RecentActivity     []model.AuditEvent `json:"recent_activity"`
	MemberCount        int                `json:"member_count"`
	IntegrationCount   int                `json:"integration_count"`
	AgentCount         int                `json:"agent_count"`
	InstallsLast30Days int                `json:"installs_last_30_days"`
}

type DashboardService interface {
	Stats(ctx context.Context, tc *TenantContext) (*DashboardStats, error)
	Activity(ctx context.Context, tc *TenantContext, limit int) ([]model.AuditEvent, error)
}

type dashboardService struct {
	stores store.StoreProvider
}

func NewDashboardService(stores store.StoreProvider) DashboardService {
	return &dashboardService{stores: stores}
}

func (s *dashboardService) Stats(ctx context.Context, tc *TenantContext) (*DashboardStats, error) {
	members, err := s.stores.Members().ListByWorkspace(ctx, tc.WorkspaceID)
	if err != nil {
		return nil, fmt.Errorf("listing members: %w", err)
	}
	integrations, err := s.stores.Integrations().ListByWorkspace(ctx, tc.WorkspaceID)
	if err != nil {
		return nil, fmt.Errorf("listing integrations: %w", err)
	}
	agents, err := s.stores.Agents().ListByWorkspace(ctx, tc.WorkspaceID)
	if err != nil {
		return nil, fmt.Errorf("listing agents: %w", err)
	}

	since := time.Now().AddDate(0, 0, -30)
	byAction, err := s.stores.Audit().CountByAction(ctx, tc.WorkspaceID, since)
	if err != nil {
		return nil, fmt.Errorf("counting audit actions: %w", err)
	}
	recent, err := s.stores.Audit().ListByWorkspace(ctx, tc.WorkspaceID, 10)
	if err != nil {
		return nil, fmt.Errorf("listing recent activity: %w", err)
	}

	return &DashboardStats{
		MemberCount:        len(members),
		IntegrationCount:   len(integrations),
		AgentCount:         len(agents),
		InstallsLast30Days: byAction[model.AuditTemplateInstalled],
		ActivityByAction:   byAction,
		RecentActivity:     recent,
	}, nil
}

func (s *dashboardService) Activity(ctx context.Context, tc *TenantContext, limit int) ([]model.AuditEvent, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	return s.stores.Audit().ListByWorkspace(ctx, tc.WorkspaceID, limit)
}
