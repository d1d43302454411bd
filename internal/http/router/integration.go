package router

import (
	"github.com/gin-gonic/gin"

	"galaxyco.ai/api-server/internal/http/handler"
)

func IntegrationRouter(rg *gin.RouterGroup, h *handler.IntegrationHandler) {
	rg.GET("", h.List)
	rg.GET("/status", h.Status)
	rg.GET("/callback", h.Callback)
	// gin forbids differently-named wildcards in one position, so both routes
	// share :id; connect reads it as the provider name.
	rg.POST("/:id/connect", h.Connect)
	rg.POST("/:id/disconnect", h.Disconnect)
}
