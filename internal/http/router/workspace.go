package router

import (
	"github.com/gin-gonic/gin"

	"galaxyco.ai/api-server/internal/http/handler"
)

func WorkspaceMemberRouter(rg *gin.RouterGroup, h *handler.WorkspaceHandler) {
	rg.GET("", h.ListMembers)
	rg.POST("", h.AddMember)
	rg.PATCH("/:userID", h.ChangeMemberRole)
	rg.DELETE("/:userID", h.RemoveMember)
}
