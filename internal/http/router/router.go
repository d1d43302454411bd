package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	"galaxyco.ai/api-server/core/config"
	"galaxyco.ai/api-server/internal/cache"
	"galaxyco.ai/api-server/internal/http/handler"
	"galaxyco.ai/api-server/internal/http/middleware"
	"galaxyco.ai/api-server/internal/service"
)

type RouterConfig struct {
	Pool  *pgxpool.Pool
	Cache *cache.Cache
	Cfg   *config.Config
}

func SetupRoutes(router *gin.Engine, services *service.Services, cfg RouterConfig) {
	healthHandler := handler.NewHealthHandler(cfg.Pool, cfg.Cache, cfg.Cfg)
	router.GET("/healthz", healthHandler.Check)

	// Without a database nothing past the health check can serve. Keep the
	// listener up so probes see not_configured instead of a dead port.
	if cfg.Pool == nil {
		router.NoRoute(func(c *gin.Context) {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"error":   "Service unavailable",
				"details": "database is not configured",
			})
		})
		return
	}

	authHandler := handler.NewAuthHandler(services.Auth(), cfg.Cfg.DashboardURL, cfg.Cfg.IsProduction())
	AuthRouter(router.Group("/auth"), authHandler)

	api := router.Group("/api")
	api.Use(middleware.RequireAuth(services.Auth()))

	workspaceHandler := handler.NewWorkspaceHandler(services.Workspaces())
	// Workspace creation and listing need a user but no resolved workspace.
	api.POST("/workspaces", workspaceHandler.Create)
	api.GET("/workspaces", workspaceHandler.List)

	tenant := api.Group("")
	tenant.Use(middleware.RequireTenant(services.Tenants()))
	{
		tenant.GET("/workspace/current", workspaceHandler.Current)
		WorkspaceMemberRouter(tenant.Group("/workspaces/:id/members"), workspaceHandler)

		integrationHandler := handler.NewIntegrationHandler(services.Integrations(), cfg.Cfg.DashboardURL)
		IntegrationRouter(tenant.Group("/integrations"), integrationHandler)

		marketplaceHandler := handler.NewMarketplaceHandler(services.Marketplace())
		MarketplaceRouter(tenant.Group("/marketplace"), marketplaceHandler)
		TemplateRouter(tenant.Group("/templates"), marketplaceHandler)
		tenant.GET("/agents", marketplaceHandler.ListAgents)

		dashboardHandler := handler.NewDashboardHandler(services.Dashboard())
		DashboardRouter(tenant.Group("/dashboard"), dashboardHandler)
	}
}
