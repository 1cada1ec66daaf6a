package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"go.uber.org/zap"
	"go.uber.org/zap/exp/zapslog"

	"github.com/zhengqian8958/Solari/internal/app/port"
	"github.com/zhengqian8958/Solari/internal/app/service"
	"github.com/zhengqian8958/Solari/internal/config"
	"github.com/zhengqian8958/Solari/internal/infrastructure/heliusclient"
	"github.com/zhengqian8958/Solari/internal/infrastructure/kvstore"
	"github.com/zhengqian8958/Solari/internal/infrastructure/restapi"
	"github.com/zhengqian8958/Solari/internal/pkg/logger"
	"github.com/zhengqian8958/Solari/internal/pkg/metrics"
	"github.com/zhengqian8958/Solari/internal/pkg/utils"
)

func main() {
	// Optional .env for local development (HELIUS_API_KEY and friends).
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		logrus.Warnf("Failed to load .env file: %v", err)
	}

	zapLogger, err := zap.NewProduction()
	if err != nil {
		logrus.Fatalf("Failed to initialize zap logger: %v", err)
	}
	defer zapLogger.Sync()

	// Bridge the zap core into slog so the global service logger and the
	// request-scoped zap loggers share one sink.
	slogHandler := zapslog.NewHandler(zapLogger.Core(), &zapslog.HandlerOptions{})
	slog.SetDefault(slog.New(slogHandler))

	cfgPath := utils.GetEnv("CONFIG_PATH", "config/config.yml")
	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		logrus.Fatalf("Failed to load configuration: %v", err)
	}

	logger.InitSlog(cfg.Logging.Level)
	appLogger := logger.NewSlogAdapter()
	zapLogger.Info("Configuration loaded", zap.String("path", cfgPath))

	metrics.MustRegisterMetrics()

	if cfg.Logging.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Storage backend: Redis for durable state, in-process memory otherwise.
	var store port.KeyValueStore
	switch cfg.Storage.Backend {
	case "redis":
		redisStore, err := kvstore.NewRedisStore(cfg.Storage.Redis.Addr, cfg.Storage.Redis.Password, cfg.Storage.Redis.DB)
		if err != nil {
			zapLogger.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		defer redisStore.Close()
		store = redisStore
		zapLogger.Info("Using Redis storage backend", zap.String("addr", cfg.Storage.Redis.Addr))
	default:
		store = kvstore.NewMemoryStore()
		zapLogger.Info("Using in-memory storage backend")
	}

	heliusClient := heliusclient.NewClient(
		cfg.Helius.BaseURL,
		cfg.Helius.APIKey,
		time.Duration(cfg.Helius.RequestTimeoutMillis)*time.Millisecond,
		zapLogger,
		cfg.Helius.MaxIDsPerBatchCall,
		cfg.Helius.RateLimit,
		cfg.Helius.BurstLimit,
	)
	zapLogger.Info("Helius client initialized")

	snapshotStore := service.NewSnapshotStore(store, appLogger)
	walletAssetService := service.NewWalletAssetService(
		heliusClient,
		appLogger,
		time.Duration(cfg.PriceCache.TTLMinutes)*time.Minute,
		time.Duration(cfg.PriceCache.CleanupIntervalMinutes)*time.Minute,
	)
	portfolioService := service.NewPortfolioService(store, snapshotStore, appLogger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	portfolioService.LoadState(ctx)
	if cached, ok := portfolioService.CachedPortfolio(ctx); ok {
		zapLogger.Info("Cached portfolio available for cold start",
			zap.Float64("total_value", cached.TotalValue),
			zap.Int("investment_types", len(cached.InvestmentTypes)))
	}

	worker := service.NewRefreshWorker(
		walletAssetService,
		portfolioService,
		cfg.Wallet.OwnerAddress,
		time.Duration(cfg.Wallet.RefreshIntervalSeconds)*time.Second,
		appLogger,
	)
	go worker.Run(ctx)

	collapsePolicy := service.NewCollapsePolicy(cfg.Presentation.Collapse)
	handler := restapi.NewPortfolioHandler(portfolioService, worker, collapsePolicy)
	router := restapi.SetupRouter(handler, zapLogger)

	srv := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	go func() {
		zapLogger.Info(fmt.Sprintf("Server starting on %s", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLogger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	zapLogger.Info("Shutting down server...")
	cancel()

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()

	if err := srv.Shutdown(ctxShutdown); err != nil {
		zapLogger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	zapLogger.Info("Server exiting")
}
