package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"galaxyco.ai/api-server/internal/http/handler"
	"galaxyco.ai/api-server/internal/model"
	"galaxyco.ai/api-server/internal/service"
)

var _ = Describe("WorkspaceHandler", func() {
	var (
		router *gin.Engine
		svc    *mockWorkspaceService
		user   *model.User
		tc     *service.TenantContext
	)

	BeforeEach(func() {
		gin.SetMode(gin.TestMode)
		router = gin.New()
		svc = &mockWorkspaceService{}
		user = &model.User{ID: uuid.New(), Email: "owner@example.com"}
		tc = &service.TenantContext{
			UserID:      user.ID,
			WorkspaceID: uuid.New(),
			Role:        model.RoleOwner,
		}

		h := handler.NewWorkspaceHandler(svc)
		authed := router.Group("", withUser(user))
		authed.POST("/workspaces", h.Create)
		authed.GET("/workspaces", h.List)

		tenant := authed.Group("", withTenant(tc))
		tenant.GET("/workspace/current", h.Current)
		tenant.GET("/workspaces/:id/members", h.ListMembers)
		tenant.POST("/workspaces/:id/members", h.AddMember)
		tenant.PATCH("/workspaces/:id/members/:userID", h.ChangeMemberRole)
		tenant.DELETE("/workspaces/:id/members/:userID", h.RemoveMember)
	})

	Describe("Create", func() {
		It("creates a workspace for the authenticated user", func() {
			svc.createFn = func(_ context.Context, name string, slug *string, ownerUserID uuid.UUID) (*model.Workspace, error) {
				Expect(name).To(Equal("Acme"))
				Expect(ownerUserID).To(Equal(user.ID))
				return &model.Workspace{ID: uuid.New(), Name: name, Slug: "acme"}, nil
			}

			body, _ := json.Marshal(map[string]string{"name": "Acme"})
			req := httptest.NewRequest(http.MethodPost, "/workspaces", bytes.NewBuffer(body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			Expect(w.Code).To(Equal(http.StatusCreated))
			var resp map[string]interface{}
			Expect(json.Unmarshal(w.Body.Bytes(), &resp)).To(Succeed())
			Expect(resp["slug"]).To(Equal("acme"))
		})

		It("rejects a missing name", func() {
			req := httptest.NewRequest(http.MethodPost, "/workspaces", bytes.NewBufferString(`{}`))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)
			Expect(w.Code).To(Equal(http.StatusBadRequest))
		})
	})

	Describe("Current", func() {
		It("returns the resolved workspace and the caller's role", func() {
			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/workspace/current", nil))

			Expect(w.Code).To(Equal(http.StatusOK))
			var resp map[string]interface{}
			Expect(json.Unmarshal(w.Body.Bytes(), &resp)).To(Succeed())
			Expect(resp["role"]).To(Equal("owner"))
		})
	})

	Describe("members", func() {
		It("refuses a path workspace that is not the resolved one", func() {
			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet,
				"/workspaces/"+uuid.NewString()+"/members", nil))
			Expect(w.Code).To(Equal(http.StatusForbidden))
		})

		It("adds a member", func() {
			newUser := uuid.New()
			svc.addMemberFn = func(_ context.Context, tc *service.TenantContext, userID uuid.UUID, role model.Role) (*model.WorkspaceMember, error) {
				Expect(userID).To(Equal(newUser))
				Expect(role).To(Equal(model.RoleMember))
				return &model.WorkspaceMember{WorkspaceID: tc.WorkspaceID, UserID: userID, Role: role, IsActive: true}, nil
			}

			body, _ := json.Marshal(map[string]string{"user_id": newUser.String(), "role": "member"})
			req := httptest.NewRequest(http.MethodPost,
				"/workspaces/"+tc.WorkspaceID.String()+"/members", bytes.NewBuffer(body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			Expect(w.Code).To(Equal(http.StatusCreated))
		})

		It("rejects a role outside the known set", func() {
			body, _ := json.Marshal(map[string]string{"user_id": uuid.NewString(), "role": "superuser"})
			req := httptest.NewRequest(http.MethodPost,
				"/workspaces/"+tc.WorkspaceID.String()+"/members", bytes.NewBuffer(body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			Expect(w.Code).To(Equal(http.StatusBadRequest))
		})

		It("answers 409 when touching the owner", func() {
			svc.changeMemberRoleFn = func(_ context.Context, _ *service.TenantContext, _ uuid.UUID, _ model.Role) error {
				return service.ErrOwnerImmutable
			}

			body, _ := json.Marshal(map[string]string{"role": "member"})
			req := httptest.NewRequest(http.MethodPatch,
				"/workspaces/"+tc.WorkspaceID.String()+"/members/"+uuid.NewString(), bytes.NewBuffer(body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			Expect(w.Code).To(Equal(http.StatusConflict))
		})

		It("removes a member", func() {
			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodDelete,
				"/workspaces/"+tc.WorkspaceID.String()+"/members/"+uuid.NewString(), nil))

			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(w.Body.String()).To(MatchJSON(`{"status":"removed"}`))
		})
	})
})
