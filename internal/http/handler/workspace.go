package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"galaxyco.ai/api-server/internal/http/dto"
	"galaxyco.ai/api-server/internal/http/middleware"
	"galaxyco.ai/api-server/internal/model"
	"galaxyco.ai/api-server/internal/service"
)

type WorkspaceHandler struct {
	workspaces service.WorkspaceService
}

func NewWorkspaceHandler(workspaces service.WorkspaceService) *WorkspaceHandler {
	return &WorkspaceHandler{workspaces: workspaces}
}

func (h *WorkspaceHandler) Create(c *gin.Context) {
	ctx := c.Request.Context()

	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req dto.CreateWorkspaceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "details": err.Error()})
		return
	}

	ws, err := h.workspaces.Create(ctx, req.Name, req.Slug, user.ID)
	if err != nil {
		slog.ErrorContext(ctx, "failed to create workspace", "error", err, "user_id", user.ID)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create workspace"})
		return
	}

	c.JSON(http.StatusCreated, dto.ToWorkspaceResponse(ws))
}

func (h *WorkspaceHandler) List(c *gin.Context) {
	ctx := c.Request.Context()

	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	workspaces, err := h.workspaces.ListForUser(ctx, user.ID)
	if err != nil {
		slog.ErrorContext(ctx, "failed to list workspaces", "error", err, "user_id", user.ID)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list workspaces"})
		return
	}

	out := make([]dto.WorkspaceResponse, 0, len(workspaces))
	for i := range workspaces {
		out = append(out, *dto.ToWorkspaceResponse(&workspaces[i]))
	}
	c.JSON(http.StatusOK, out)
}

// Current returns the workspace the tenant guard resolved for this request,
// plus the caller's role in it.
func (h *WorkspaceHandler) Current(c *gin.Context) {
	ctx := c.Request.Context()

	tc, ok := middleware.TenantFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	ws, err := h.workspaces.Get(ctx, tc.WorkspaceID)
	if err != nil {
		slog.ErrorContext(ctx, "failed to load workspace", "error", err, "workspace_id", tc.WorkspaceID)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load workspace"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"workspace": dto.ToWorkspaceResponse(ws),
		"role":      tc.Role,
	})
}

// tenantForWorkspace checks that the path workspace id matches the resolved
// tenant. Queries always run against the resolved id.
func tenantForWorkspace(c *gin.Context) (*service.TenantContext, bool) {
	tc, ok := middleware.TenantFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return nil, false
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid workspace id"})
		return nil, false
	}
	if id != tc.WorkspaceID {
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
		return nil, false
	}
	return tc, true
}

func (h *WorkspaceHandler) ListMembers(c *gin.Context) {
	ctx := c.Request.Context()

	tc, ok := tenantForWorkspace(c)
	if !ok {
		return
	}

	members, err := h.workspaces.ListMembers(ctx, tc)
	if err != nil {
		slog.ErrorContext(ctx, "failed to list members", "error", err, "workspace_id", tc.WorkspaceID)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list members"})
		return
	}

	c.JSON(http.StatusOK, dto.ToMemberResponses(members))
}

func (h *WorkspaceHandler) AddMember(c *gin.Context) {
	ctx := c.Request.Context()

	tc, ok := tenantForWorkspace(c)
	if !ok {
		return
	}

	var req dto.AddMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "details": err.Error()})
		return
	}

	member, err := h.workspaces.AddMember(ctx, tc, req.UserID, model.Role(req.Role))
	if err != nil {
		h.memberError(c, err, tc.WorkspaceID, "failed to add member")
		return
	}

	c.JSON(http.StatusCreated, dto.ToMemberResponse(member))
}

func (h *WorkspaceHandler) ChangeMemberRole(c *gin.Context) {
	ctx := c.Request.Context()

	tc, ok := tenantForWorkspace(c)
	if !ok {
		return
	}

	userID, err := uuid.Parse(c.Param("userID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}

	var req dto.ChangeMemberRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "details": err.Error()})
		return
	}

	if err := h.workspaces.ChangeMemberRole(ctx, tc, userID, model.Role(req.Role)); err != nil {
		h.memberError(c, err, tc.WorkspaceID, "failed to change member role")
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "updated"})
}

func (h *WorkspaceHandler) RemoveMember(c *gin.Context) {
	ctx := c.Request.Context()

	tc, ok := tenantForWorkspace(c)
	if !ok {
		return
	}

	userID, err := uuid.Parse(c.Param("userID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}

	if err := h.workspaces.RemoveMember(ctx, tc, userID); err != nil {
		h.memberError(c, err, tc.WorkspaceID, "failed to remove member")
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "removed"})
}

func (h *WorkspaceHandler) memberError(c *gin.Context, err error, workspaceID uuid.UUID, msg string) {
	ctx := c.Request.Context()
	switch {
	case errors.Is(err, service.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
	case errors.Is(err, service.ErrOwnerImmutable):
		c.JSON(http.StatusConflict, gin.H{"error": "workspace owner cannot be removed or demoted"})
	default:
		slog.ErrorContext(ctx, msg, "error", err, "workspace_id", workspaceID)
		c.JSON(http.StatusInternalServerError, gin.H{"error": msg})
	}
}
