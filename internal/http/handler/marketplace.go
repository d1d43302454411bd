package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"galaxyco.ai/api-server/internal/http/dto"
	"galaxyco.ai/api-server/internal/http/middleware"
	"galaxyco.ai/api-server/internal/service"
)

type MarketplaceHandler struct {
	marketplace service.MarketplaceService
}

func NewMarketplaceHandler(marketplace service.MarketplaceService) *MarketplaceHandler {
	return &MarketplaceHandler{marketplace: marketplace}
}

func (h *MarketplaceHandler) ListTemplates(c *gin.Context) {
	ctx := c.Request.Context()

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
			return
		}
		limit = n
	}

	listings, err := h.marketplace.ListTemplates(ctx, service.ListTemplatesParams{
		Category:     c.Query("category"),
		SortBy:       c.Query("sort"),
		Limit:        limit,
		FeaturedOnly: c.Query("featured") == "true",
	})
	if err != nil {
		slog.ErrorContext(ctx, "failed to list templates", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list templates"})
		return
	}

	c.JSON(http.StatusOK, listings)
}

func (h *MarketplaceHandler) GetTemplate(c *gin.Context) {
	ctx := c.Request.Context()

	listing, err := h.marketplace.GetTemplate(ctx, c.Param("id"))
	if err != nil {
		if errors.Is(err, service.ErrTemplateNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "template not found"})
			return
		}
		slog.ErrorContext(ctx, "failed to load template", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load template"})
		return
	}

	c.JSON(http.StatusOK, listing)
}

func (h *MarketplaceHandler) Install(c *gin.Context) {
	ctx := c.Request.Context()

	tc, ok := middleware.TenantFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	templateID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid template id"})
		return
	}

	// The body is optional; an empty one installs under the template's name.
	var req dto.InstallTemplateRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "details": err.Error()})
			return
		}
	}

	agent, err := h.marketplace.Install(ctx, tc, templateID, req.AgentName)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrTemplateNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "template not found"})
		case errors.Is(err, service.ErrForbidden):
			c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
		default:
			slog.ErrorContext(ctx, "failed to install template", "error", err, "template_id", templateID)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to install template"})
		}
		return
	}

	slog.InfoContext(ctx, "template installed",
		"template_id", templateID,
		"agent_id", agent.ID,
		"workspace_id", tc.WorkspaceID)

	c.JSON(http.StatusCreated, dto.InstallTemplateResponse{
		AgentID:     agent.ID,
		TemplateID:  templateID,
		WorkspaceID: agent.WorkspaceID,
	})
}

func (h *MarketplaceHandler) Rate(c *gin.Context) {
	ctx := c.Request.Context()

	tc, ok := middleware.TenantFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	templateID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid template id"})
		return
	}

	var req dto.RateTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "stars must be between 1 and 5"})
		return
	}

	listing, err := h.marketplace.Rate(ctx, tc, templateID, req.Stars)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrTemplateNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "template not found"})
		case errors.Is(err, service.ErrInvalidRating):
			c.JSON(http.StatusBadRequest, gin.H{"error": "stars must be between 1 and 5"})
		case errors.Is(err, service.ErrForbidden):
			c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
		default:
			slog.ErrorContext(ctx, "failed to rate template", "error", err, "template_id", templateID)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to rate template"})
		}
		return
	}

	c.JSON(http.StatusOK, listing)
}

func (h *MarketplaceHandler) CreateTemplate(c *gin.Context) {
	ctx := c.Request.Context()

	tc, ok := middleware.TenantFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req dto.CreateTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "details": err.Error()})
		return
	}

	listing, err := h.marketplace.CreateTemplate(ctx, tc, service.NewTemplateParams{
		Name:             req.Name,
		Slug:             req.Slug,
		Description:      req.Description,
		ShortDescription: req.ShortDescription,
		Category:         req.Category,
		Config:           req.Config,
		Tags:             req.Tags,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrForbidden):
			c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
		default:
			slog.ErrorContext(ctx, "failed to create template", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create template"})
		}
		return
	}

	c.JSON(http.StatusCreated, listing)
}

func (h *MarketplaceHandler) ListAgents(c *gin.Context) {
	ctx := c.Request.Context()

	tc, ok := middleware.TenantFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	agents, err := h.marketplace.ListAgents(ctx, tc)
	if err != nil {
		slog.ErrorContext(ctx, "failed to list agents", "error", err, "workspace_id", tc.WorkspaceID)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list agents"})
		return
	}

	c.JSON(http.StatusOK, agents)
}
