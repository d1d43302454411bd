package service_test

import (
	"context"
	"time"

	"github.com/google/uuid"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"galaxyco.ai/api-server/internal/model"
	"galaxyco.ai/api-server/internal/service"
)

var _ = Describe("DashboardService", func() {
	var (
		svc      service.DashboardService
		provider *mockStoreProvider
		ctx      context.Context
		tc       *service.TenantContext
	)

	BeforeEach(func() {
		ctx = context.Background()
		provider = &mockStoreProvider{
			members:      &mockMemberStore{},
			integrations: &mockIntegrationStore{},
			agents:       &mockAgentStore{},
			audit:        &mockAuditStore{},
		}
		svc = service.NewDashboardService(provider)
		tc = &service.TenantContext{
			UserID:      uuid.New(),
			WorkspaceID: uuid.New(),
			Role:        model.RoleViewer,
		}
	})

	Describe("Stats", func() {
		It("aggregates counts and 30-day activity", func() {
			provider.members.listByWorkspaceFn = func(_ context.Context, _ uuid.UUID) ([]model.WorkspaceMember, error) {
				return make([]model.WorkspaceMember, 3), nil
			}
			provider.integrations.listByWorkspaceFn = func(_ context.Context, _ uuid.UUID) ([]model.Integration, error) {
				return make([]model.Integration, 2), nil
			}
			provider.agents.listByWorkspaceFn = func(_ context.Context, _ uuid.UUID) ([]model.Agent, error) {
				return make([]model.Agent, 4), nil
			}
			provider.audit.countByActionFn = func(_ context.Context, _ uuid.UUID, since time.Time) (map[string]int, error) {
				Expect(since).To(BeTemporally("~", time.Now().AddDate(0, 0, -30), time.Minute))
				return map[string]int{
					model.AuditTemplateInstalled: 7,
					model.AuditMemberAdded:       1,
				}, nil
			}
			provider.audit.listByWorkspaceFn = func(_ context.Context, _ uuid.UUID, limit int) ([]model.AuditEvent, error) {
				Expect(limit).To(Equal(10))
				return []model.AuditEvent{{Action: model.AuditTemplateInstalled}}, nil
			}

			stats, err := svc.Stats(ctx, tc)
			Expect(err).NotTo(HaveOccurred())
			Expect(stats.MemberCount).To(Equal(3))
			Expect(stats.IntegrationCount).To(Equal(2))
			Expect(stats.AgentCount).To(Equal(4))
			Expect(stats.InstallsLast30Days).To(Equal(7))
			Expect(stats.RecentActivity).To(HaveLen(1))
		})
	})

	Describe("Activity", func() {
		limits := func(requested, effective int) {
			var got int
			provider.audit.listByWorkspaceFn = func(_ context.Context, _ uuid.UUID, limit int) ([]model.AuditEvent, error) {
				got = limit
				return []model.AuditEvent{}, nil
			}
			_, err := svc.Activity(ctx, tc, requested)
			Expect(err).NotTo(HaveOccurred())
			Expect(got).To(Equal(effective))
		}

		It("passes a sane limit through", func() {
			limits(25, 25)
		})

		It("defaults a zero limit", func() {
			limits(0, 50)
		})

		It("defaults a negative limit", func() {
			limits(-5, 50)
		})

		It("defaults an oversized limit", func() {
			limits(500, 50)
		})
	})
})
