package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	"galaxyco.ai/api-server/core/config"
	"galaxyco.ai/api-server/internal/cache"
)

// Dependency states reported by the health endpoint. The shape is stable and
// the status code is always 200 so probes can parse it unconditionally.
const (
	healthOK            = "ok"
	healthError         = "error"
	healthNotConfigured = "not_configured"
)

type HealthHandler struct {
	pool  *pgxpool.Pool
	cache *cache.Cache
	cfg   *config.Config
}

func NewHealthHandler(pool *pgxpool.Pool, c *cache.Cache, cfg *config.Config) *HealthHandler {
	return &HealthHandler{pool: pool, cache: c, cfg: cfg}
}

func (h *HealthHandler) Check(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	deps := gin.H{
		"database":   h.databaseStatus(ctx),
		"redis":      h.redisStatus(ctx),
		"workos":     configuredStatus(h.cfg.WorkOS.APIKey != ""),
		"encryption": configuredStatus(len(h.cfg.Security.TokenEncryptionKey) == 32),
	}

	status := healthOK
	for _, v := range deps {
		if v == healthError {
			status = healthError
			break
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"status":       status,
		"dependencies": deps,
	})
}

func (h *HealthHandler) databaseStatus(ctx context.Context) string {
	if h.pool == nil {
		return healthNotConfigured
	}
	if err := h.pool.Ping(ctx); err != nil {
		return healthError
	}
	return healthOK
}

func (h *HealthHandler) redisStatus(ctx context.Context) string {
	if h.cache == nil {
		return healthNotConfigured
	}
	if err := h.cache.Ping(ctx); err != nil {
		return healthError
	}
	return healthOK
}

func configuredStatus(ok bool) string {
	if ok {
		return healthOK
	}
	return healthNotConfigured
}
