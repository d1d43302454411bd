package handler_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"

	"github.com/gin-gonic/gin"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"galaxyco.ai/api-server/core/config"
	"galaxyco.ai/api-server/internal/http/handler"
)

var _ = Describe("HealthHandler", func() {
	var router *gin.Engine

	setup := func(cfg *config.Config) {
		gin.SetMode(gin.TestMode)
		router = gin.New()
		h := handler.NewHealthHandler(nil, nil, cfg)
		router.GET("/healthz", h.Check)
	}

	It("always answers 200 with per-dependency detail", func() {
		setup(&config.Config{})

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))

		Expect(w.Code).To(Equal(http.StatusOK))
		var resp struct {
			Status       string            `json:"status"`
			Dependencies map[string]string `json:"dependencies"`
		}
		Expect(json.Unmarshal(w.Body.Bytes(), &resp)).To(Succeed())
		Expect(resp.Status).To(Equal("ok"))
		Expect(resp.Dependencies).To(HaveKeyWithValue("database", "not_configured"))
		Expect(resp.Dependencies).To(HaveKeyWithValue("redis", "not_configured"))
		Expect(resp.Dependencies).To(HaveKeyWithValue("workos", "not_configured"))
		Expect(resp.Dependencies).To(HaveKeyWithValue("encryption", "not_configured"))
	})

	It("reports configured auth and encryption", func() {
		cfg := &config.Config{}
		cfg.WorkOS.APIKey = "sk_test"
		cfg.Security.TokenEncryptionKey = bytes.Repeat([]byte{0x01}, 32)
		setup(cfg)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))

		var resp struct {
			Dependencies map[string]string `json:"dependencies"`
		}
		Expect(json.Unmarshal(w.Body.Bytes(), &resp)).To(Succeed())
		Expect(resp.Dependencies).To(HaveKeyWithValue("workos", "ok"))
		Expect(resp.Dependencies).To(HaveKeyWithValue("encryption", "ok"))
	})
})
