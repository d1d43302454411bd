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

var _ = Describe("MarketplaceHandler", func() {
	var (
		router *gin.Engine
		svc    *mockMarketplaceService
		tc     *service.TenantContext
	)

	BeforeEach(func() {
		gin.SetMode(gin.TestMode)
		router = gin.New()
		svc = &mockMarketplaceService{}
		tc = &service.TenantContext{
			UserID:      uuid.New(),
			WorkspaceID: uuid.New(),
			Role:        model.RoleMember,
		}

		h := handler.NewMarketplaceHandler(svc)
		api := router.Group("", withTenant(tc))
		api.GET("/marketplace/templates", h.ListTemplates)
		api.GET("/marketplace/templates/:id", h.GetTemplate)
		api.POST("/marketplace/templates/:id/install", h.Install)
		api.POST("/marketplace/templates/:id/rate", h.Rate)
	})

	Describe("ListTemplates", func() {
		It("passes the query filters through", func() {
			var got service.ListTemplatesParams
			svc.listTemplatesFn = func(_ context.Context, params service.ListTemplatesParams) ([]service.TemplateListing, error) {
				got = params
				return []service.TemplateListing{}, nil
			}

			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet,
				"/marketplace/templates?category=sales&sort=trending&limit=10&featured=true", nil))

			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(got.Category).To(Equal("sales"))
			Expect(got.SortBy).To(Equal("trending"))
			Expect(got.Limit).To(Equal(10))
			Expect(got.FeaturedOnly).To(BeTrue())
		})

		It("rejects a non-numeric limit", func() {
			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/marketplace/templates?limit=many", nil))
			Expect(w.Code).To(Equal(http.StatusBadRequest))
		})
	})

	Describe("GetTemplate", func() {
		It("answers 404 for an unknown template", func() {
			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/marketplace/templates/no-such", nil))
			Expect(w.Code).To(Equal(http.StatusNotFound))
		})
	})

	Describe("Install", func() {
		It("installs without a body", func() {
			templateID := uuid.New()
			agentID := uuid.New()
			svc.installFn = func(_ context.Context, tc *service.TenantContext, gotID uuid.UUID, agentName string) (*model.Agent, error) {
				Expect(gotID).To(Equal(templateID))
				Expect(agentName).To(BeEmpty())
				return &model.Agent{ID: agentID, WorkspaceID: tc.WorkspaceID}, nil
			}

			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodPost,
				"/marketplace/templates/"+templateID.String()+"/install", nil))

			Expect(w.Code).To(Equal(http.StatusCreated))
			var resp map[string]interface{}
			Expect(json.Unmarshal(w.Body.Bytes(), &resp)).To(Succeed())
			Expect(resp["agent_id"]).To(Equal(agentID.String()))
			Expect(resp["template_id"]).To(Equal(templateID.String()))
		})

		It("passes a custom agent name", func() {
			svc.installFn = func(_ context.Context, tc *service.TenantContext, _ uuid.UUID, agentName string) (*model.Agent, error) {
				Expect(agentName).To(Equal("My Agent"))
				return &model.Agent{ID: uuid.New(), WorkspaceID: tc.WorkspaceID}, nil
			}

			body, _ := json.Marshal(map[string]string{"agent_name": "My Agent"})
			req := httptest.NewRequest(http.MethodPost,
				"/marketplace/templates/"+uuid.NewString()+"/install", bytes.NewBuffer(body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			Expect(w.Code).To(Equal(http.StatusCreated))
		})

		It("answers 404 when the template does not exist", func() {
			svc.installFn = func(_ context.Context, _ *service.TenantContext, _ uuid.UUID, _ string) (*model.Agent, error) {
				return nil, service.ErrTemplateNotFound
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodPost,
				"/marketplace/templates/"+uuid.NewString()+"/install", nil))
			Expect(w.Code).To(Equal(http.StatusNotFound))
		})

		It("rejects a malformed template id", func() {
			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/marketplace/templates/abc/install", nil))
			Expect(w.Code).To(Equal(http.StatusBadRequest))
		})
	})

	Describe("Rate", func() {
		It("rejects stars outside 1..5 at binding", func() {
			body, _ := json.Marshal(map[string]int{"stars": 9})
			req := httptest.NewRequest(http.MethodPost,
				"/marketplace/templates/"+uuid.NewString()+"/rate", bytes.NewBuffer(body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			Expect(w.Code).To(Equal(http.StatusBadRequest))
			Expect(w.Body.String()).To(MatchJSON(`{"error":"stars must be between 1 and 5"}`))
		})

		It("returns the updated listing", func() {
			svc.rateFn = func(_ context.Context, _ *service.TenantContext, _ uuid.UUID, stars int) (*service.TemplateListing, error) {
				Expect(stars).To(Equal(4))
				return &service.TemplateListing{Rating: 4.2}, nil
			}

			body, _ := json.Marshal(map[string]int{"stars": 4})
			req := httptest.NewRequest(http.MethodPost,
				"/marketplace/templates/"+uuid.NewString()+"/rate", bytes.NewBuffer(body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			Expect(w.Code).To(Equal(http.StatusOK))
			var resp map[string]interface{}
			Expect(json.Unmarshal(w.Body.Bytes(), &resp)).To(Succeed())
			Expect(resp["rating"]).To(Equal(4.2))
		})
	})
})
