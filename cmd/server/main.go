package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"galaxyco.ai/api-server/core/config"
	"galaxyco.ai/api-server/core/db"
	"galaxyco.ai/api-server/core/observability"
	"galaxyco.ai/api-server/internal/cache"
	"galaxyco.ai/api-server/internal/crypto"
	"galaxyco.ai/api-server/internal/http/middleware"
	httprouter "galaxyco.ai/api-server/internal/http/router"
	"galaxyco.ai/api-server/internal/service"
	"galaxyco.ai/api-server/internal/store"
)

const serviceName = "galaxyco-api-server"

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		slog.ErrorContext(ctx, "failed to load config", "error", err)
		os.Exit(1)
	}

	shutdownOtel, err := observability.Setup(ctx, cfg.OTLPEndpoint)
	if err != nil {
		os.Stderr.WriteString("failed to initialize telemetry: " + err.Error() + "\n")
		os.Exit(1)
	}

	slog.InfoContext(ctx, "api-server starting", "env", cfg.Environment)

	// An unset DATABASE_URL starts the server degraded: /healthz reports the
	// missing dependency and everything else answers 503. A URL that is set
	// but unusable is a misconfiguration and still fails fast.
	var pool *pgxpool.Pool
	if cfg.DatabaseURL == "" {
		slog.WarnContext(ctx, "DATABASE_URL not set, serving /healthz only")
	} else {
		pool, err = db.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			slog.ErrorContext(ctx, "failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer pool.Close()
		slog.InfoContext(ctx, "database connected")
	}

	redisCache := cache.New(cfg.RedisAddr)
	if redisCache != nil {
		if err := redisCache.Ping(ctx); err != nil {
			slog.ErrorContext(ctx, "failed to connect to redis", "error", err)
			os.Exit(1)
		}
		slog.InfoContext(ctx, "redis connected", "addr", cfg.RedisAddr)
	} else {
		slog.WarnContext(ctx, "redis not configured, marketplace cache disabled")
	}

	// Same degradation rule for the encryption key: absent means integration
	// connect/callback refuse with ErrNotConfigured while the rest of the API
	// stays up; a key of the wrong length fails fast.
	var cipher *crypto.TokenCipher
	if len(cfg.Security.TokenEncryptionKey) == 0 {
		slog.WarnContext(ctx, "TOKEN_ENCRYPTION_KEY not set, integration connections disabled")
	} else {
		cipher, err = crypto.NewTokenCipher(cfg.Security.TokenEncryptionKey)
		if err != nil {
			slog.ErrorContext(ctx, "failed to initialize token cipher", "error", err)
			os.Exit(1)
		}
	}

	stores := store.New(pool)
	services := service.NewServices(stores, stores, redisCache, cipher, cfg)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := setupRouter(cfg, services, pool, redisCache)
	server := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		slog.InfoContext(ctx, "http server starting", "addr", cfg.ListenAddr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.ErrorContext(ctx, "http server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.InfoContext(ctx, "shutting down...")

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.ErrorContext(shutdownCtx, "http server shutdown error", "error", err)
	}
	if shutdownOtel != nil {
		if err := shutdownOtel(shutdownCtx); err != nil {
			slog.ErrorContext(shutdownCtx, "telemetry shutdown error", "error", err)
		}
	}

	slog.InfoContext(shutdownCtx, "shutdown complete")
}

func setupRouter(cfg *config.Config, services *service.Services, pool *pgxpool.Pool, redisCache *cache.Cache) *gin.Engine {
	router := gin.New()

	// Order matters: OTel opens the span, Recovery catches panics, Logger
	// logs with the trace context.
	if cfg.OTLPEndpoint != "" {
		router.Use(otelgin.Middleware(serviceName))
	}
	router.Use(middleware.Recovery())
	router.Use(middleware.Logger())

	httprouter.SetupRoutes(router, services, httprouter.RouterConfig{
		Pool:  pool,
		Cache: redisCache,
		Cfg:   cfg,
	})

	return router
}
