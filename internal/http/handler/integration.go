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

type IntegrationHandler struct {
	integrations service.IntegrationService
	dashboardURL string
}

func NewIntegrationHandler(integrations service.IntegrationService, dashboardURL string) *IntegrationHandler {
	return &IntegrationHandler{integrations: integrations, dashboardURL: dashboardURL}
}

func (h *IntegrationHandler) Connect(c *gin.Context) {
	ctx := c.Request.Context()

	tc, ok := middleware.TenantFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	provider := model.Provider(c.Param("id"))
	if !provider.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown provider"})
		return
	}

	authURL, err := h.integrations.Initiate(ctx, tc, provider)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrForbidden):
			c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
		default:
			slog.ErrorContext(ctx, "failed to initiate connection", "error", err, "provider", provider)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to initiate connection"})
		}
		return
	}

	c.JSON(http.StatusOK, dto.InitiateConnectionResponse{AuthorizationURL: authURL})
}

func (h *IntegrationHandler) Callback(c *gin.Context) {
	ctx := c.Request.Context()

	tc, ok := middleware.TenantFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	state := c.Query("state")
	code := c.Query("code")
	if state == "" || code == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "code and state are required"})
		return
	}

	integration, err := h.integrations.CompleteCallback(ctx, tc, state, code)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidState):
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid or expired state"})
		case errors.Is(err, service.ErrForbidden):
			c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
		case errors.Is(err, service.ErrUpstream):
			slog.ErrorContext(ctx, "provider exchange failed", "error", err)
			c.JSON(http.StatusBadGateway, gin.H{"error": "provider exchange failed"})
		default:
			slog.ErrorContext(ctx, "failed to complete connection", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to complete connection"})
		}
		return
	}

	slog.InfoContext(ctx, "integration connected",
		"integration_id", integration.ID,
		"provider", integration.Provider,
		"workspace_id", integration.WorkspaceID)

	// The callback is browser navigation; send the user back to the dashboard
	// when one is configured.
	if h.dashboardURL != "" {
		c.Redirect(http.StatusFound, h.dashboardURL+"/integrations?connected="+string(integration.Provider))
		return
	}
	c.JSON(http.StatusOK, dto.ToIntegrationResponse(integration))
}

func (h *IntegrationHandler) List(c *gin.Context) {
	ctx := c.Request.Context()

	tc, ok := middleware.TenantFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	integrations, err := h.integrations.List(ctx, tc)
	if err != nil {
		slog.ErrorContext(ctx, "failed to list integrations", "error", err, "workspace_id", tc.WorkspaceID)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list integrations"})
		return
	}

	c.JSON(http.StatusOK, dto.ToIntegrationResponses(integrations))
}

func (h *IntegrationHandler) Status(c *gin.Context) {
	ctx := c.Request.Context()

	tc, ok := middleware.TenantFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	raw := c.Query("integrationId")
	if raw == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "integrationId is required"})
		return
	}
	integrationID, err := uuid.Parse(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid integrationId"})
		return
	}

	status, err := h.integrations.Status(ctx, tc, integrationID)
	if err != nil {
		slog.ErrorContext(ctx, "failed to load integration status", "error", err, "integration_id", integrationID)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load integration status"})
		return
	}

	c.JSON(http.StatusOK, status)
}

func (h *IntegrationHandler) Disconnect(c *gin.Context) {
	ctx := c.Request.Context()

	tc, ok := middleware.TenantFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	integrationID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid integration id"})
		return
	}

	if err := h.integrations.Disconnect(ctx, tc, integrationID); err != nil {
		switch {
		case errors.Is(err, service.ErrForbidden):
			c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
		default:
			slog.ErrorContext(ctx, "failed to disconnect integration", "error", err, "integration_id", integrationID)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to disconnect integration"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "disconnected"})
}
