package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"vlxd/internal/config"
	"vlxd/internal/handler"
	"vlxd/internal/logger"
	"vlxd/internal/repository"
	"vlxd/internal/service"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	zl, err := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer zl.Sync()

	zl.Info("VLXD material estimator",
		zap.String("version", Version),
		zap.String("build_time", BuildTime),
		zap.String("git_commit", GitCommit),
	)

	gin.SetMode(cfg.Server.GinMode)

	repo, err := repository.NewPostgresRepository(
		cfg.GetPostgreSQLDSN(),
		cfg.PostgreSQL.MaxConnections,
		cfg.PostgreSQL.MaxIdleConnections,
	)
	if err != nil {
		zl.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer repo.Close()
	zl.Info("✅ Connected to PostgreSQL database")

	var catalog repository.Catalog = repo
	if cfg.Redis.Enabled {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		rdb, err := repository.NewRedisClient(ctx, cfg.Redis)
		cancel()
		if err != nil {
			zl.Warn("⚠️  Redis unavailable - catalog cache disabled", zap.Error(err))
		} else {
			defer rdb.Close()
			catalog = repository.NewCachedCatalog(repo, rdb, cfg.Redis.CacheTTL, zl)
			zl.Info("✅ Catalog cache enabled",
				zap.String("address", cfg.Redis.Address),
				zap.Duration("ttl", cfg.Redis.CacheTTL),
			)
		}
	}

	var vision service.VisionClient
	if cfg.AI.Enabled {
		vision = service.NewOpenAIClient(&cfg.AI, zl)
		zl.Info("✅ AI client initialized",
			zap.String("api_base", cfg.AI.APIBase),
			zap.String("model", cfg.AI.Model),
			zap.Float64("temperature", cfg.AI.Temperature),
			zap.Int("max_tokens", cfg.AI.MaxTokens),
		)
	} else {
		zl.Warn("⚠️  AI is disabled - estimator requests will return a configuration error")
		zl.Warn("   Set GEMINI_API_KEY or OPENAI_API_KEY to enable the estimator")
	}

	estimator := service.NewEstimator(vision, catalog, service.RetryPolicyFromConfig(cfg.Estimator), zl)
	chat := service.NewChatService(nil, catalog, zl)
	zl.Info("✅ Services initialized")

	estimatorHandler := handler.NewEstimatorHandler(estimator)
	chatHandler := handler.NewChatHandler(chat)
	productHandler := handler.NewProductHandler(repo)

	router := gin.New()
	router.Use(gin.Recovery(), handler.RequestID(), handler.Observe(zl))

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = splitList(cfg.Server.AllowedOrigins)
	corsConfig.AllowMethods = splitList(cfg.Server.AllowedMethods)
	corsConfig.AllowHeaders = splitList(cfg.Server.AllowedHeaders)
	corsConfig.ExposeHeaders = []string{handler.RequestIDHeader}
	router.Use(cors.New(corsConfig))

	router.GET("/health", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		status, code := "healthy", http.StatusOK
		dbStatus := "up"
		if err := repo.Ping(ctx); err != nil {
			status, code, dbStatus = "degraded", http.StatusServiceUnavailable, "down"
		}
		c.JSON(code, gin.H{
			"status":     status,
			"service":    "vlxd-estimator",
			"database":   dbStatus,
			"ai_enabled": cfg.AI.Enabled,
			"version":    Version,
			"build_time": BuildTime,
			"git_commit": GitCommit,
		})
	})

	router.GET("/version", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"version":    Version,
			"build_time": BuildTime,
			"git_commit": GitCommit,
		})
	})

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	apiV1 := router.Group("/api/v1")
	{
		apiV1.POST("/estimator/image", estimatorHandler.EstimateImage)
		apiV1.POST("/estimator/image/stream", estimatorHandler.EstimateImageStream)
		apiV1.POST("/estimator/text", estimatorHandler.EstimateText)
		apiV1.POST("/estimator/text/stream", estimatorHandler.EstimateTextStream)

		apiV1.GET("/products/:id", productHandler.GetProduct)

		apiV1.POST("/chat/triage", chatHandler.Triage)
		apiV1.GET("/chat/store-info", chatHandler.StoreInfo)
	}

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "API endpoint not found"})
	})

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		zl.Info("🚀 Starting server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zl.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zl.Info("🛑 Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		zl.Error("Forced shutdown", zap.Error(err))
	}
	zl.Info("✅ Server stopped")
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
