package router_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"

	"github.com/gin-gonic/gin"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"galaxyco.ai/api-server/core/config"
	"galaxyco.ai/api-server/internal/http/router"
)

var _ = Describe("SetupRoutes", func() {
	Describe("without a database", func() {
		var engine *gin.Engine

		BeforeEach(func() {
			gin.SetMode(gin.TestMode)
			engine = gin.New()
			router.SetupRoutes(engine, nil, router.RouterConfig{Cfg: &config.Config{}})
		})

		It("still serves the health check and reports the missing dependency", func() {
			w := httptest.NewRecorder()
			engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))

			Expect(w.Code).To(Equal(http.StatusOK))
			var resp struct {
				Status       string            `json:"status"`
				Dependencies map[string]string `json:"dependencies"`
			}
			Expect(json.Unmarshal(w.Body.Bytes(), &resp)).To(Succeed())
			Expect(resp.Status).To(Equal("ok"))
			Expect(resp.Dependencies["database"]).To(Equal("not_configured"))
		})

		It("answers 503 on every API route", func() {
			for _, path := range []string{"/api/dashboard/stats", "/api/integrations", "/auth/login"} {
				w := httptest.NewRecorder()
				engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))

				Expect(w.Code).To(Equal(http.StatusServiceUnavailable), path)
				Expect(w.Body.String()).To(MatchJSON(`{"error":"Service unavailable","details":"database is not configured"}`), path)
			}
		})
	})
})
