package router

import (
	"github.com/gin-gonic/gin"

	"galaxyco.ai/api-server/internal/http/handler"
)

func MarketplaceRouter(rg *gin.RouterGroup, h *handler.MarketplaceHandler) {
	rg.GET("/agents", h.ListTemplates)
	rg.GET("/agents/:id", h.GetTemplate)
	rg.POST("/agents/:id/install", h.Install)
	rg.POST("/agents/:id/rate", h.Rate)
}

func TemplateRouter(rg *gin.RouterGroup, h *handler.MarketplaceHandler) {
	rg.GET("", h.ListTemplates)
	rg.POST("", h.CreateTemplate)
}

func DashboardRouter(rg *gin.RouterGroup, h *handler.DashboardHandler) {
	rg.GET("/stats", h.Stats)
	rg.GET("/activity", h.Activity)
}
