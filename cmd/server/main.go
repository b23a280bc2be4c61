package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/credisys/credit-approval/config"
	mysqldb "github.com/credisys/credit-approval/infra/mysql"
	redisdb "github.com/credisys/credit-approval/infra/redis"
	"github.com/credisys/credit-approval/internal/model"
	"github.com/credisys/credit-approval/pkg/ratelimiter"
	"github.com/credisys/credit-approval/pkg/telemetry"
	"github.com/credisys/credit-approval/presenter"
	"github.com/credisys/credit-approval/router"
)

func main() {
	slog.Info("Starting application setup...")

	ctx := context.Background()

	if err := godotenv.Load(); err != nil {
		slog.Error("No .env file found, using system environment variables", "error", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		panic(fmt.Sprintf("Failed to load configuration: %v", err))
	}

	tel, err := telemetry.New(ctx, cfg)
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize monitoring: %v", err))
	}

	db, err := mysqldb.InitializeDatabase()
	if err != nil {
		slog.Error("Failed to initialize database", "error", err)
		os.Exit(1)
	}

	redisClient := redisdb.MonitorRedis(cfg)
	if redisClient == nil {
		panic("Failed to connect to Redis (MonitorRedis returned nil)")
	}
	go redisdb.WatchConnectionRedis(&redisClient, cfg)

	defer func() {
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), cfg.SHUTDOWN_TIMEOUT)
		defer cancelShutdown()

		zap.L().Info("Closing MySQL connection...")
		if err := mysqldb.Close(db, shutdownCtx); err != nil {
			zap.L().Error("Error disconnecting from MySQL", zap.Error(err))
		} else {
			zap.L().Info("Disconnected from MySQL.")
		}

		zap.L().Info("Closing Redis connection...")
		if err := redisClient.Close(); err != nil {
			zap.L().Error("Error disconnecting from Redis", zap.Error(err))
		} else {
			zap.L().Info("Disconnected from Redis.")
		}

		zap.L().Info("Shutting down monitoring...")
		if err := tel.Shutdown(shutdownCtx); err != nil {
			zap.L().Error("Error during monitoring shutdown", zap.Error(err))
		} else {
			zap.L().Info("Monitoring shutdown complete.")
		}
	}()

	if err := model.AutoMigrate(db); err != nil {
		slog.Error("Failed to migrate database", "error", err)
		os.Exit(1)
	}
	slog.Info("Database migration completed!")

	if err := mysqldb.Ping(db, ctx); err != nil {
		slog.Error("Database ping failed", "error", err)
		os.Exit(1)
	}
	slog.Info("Database connection successful!")

	stats := mysqldb.GetStats(db)
	slog.Info("Database stats:", "stats", stats)

	rps := 100.0 / (15 * 60)
	limiter := ratelimiter.NewRateLimiter(redisClient, rps, 100, 15*time.Minute)
	if limiter == nil {
		panic("Failed to initialize rate limiter")
	}

	presenter := presenter.NewPresenter(db, cfg, tel)
	router := router.NewRouter(presenter, db, redisClient, tel, cfg, limiter)

	addr := ":" + cfg.SERVER_PORT

	listenErr := make(chan error, 1)

	go func() {
		zap.L().Info("Server starting", zap.String("address", addr))
		if err := router.Listen(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			listenErr <- err
		} else {
			listenErr <- nil
		}
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-shutdown:
		zap.L().Info("Received shutdown signal", zap.String("signal", sig.String()))
	case err := <-listenErr:
		if err != nil {
			zap.L().Error("Server listen error", zap.Error(err))
			os.Exit(1)
		}
	}

	zap.L().Info("Starting graceful shutdown...")
	shutdownTimeout := 10 * time.Second
	if err := router.ShutdownWithTimeout(shutdownTimeout); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			zap.L().Warn("Server shutdown timed out", zap.Duration("timeout", shutdownTimeout))
		} else {
			zap.L().Error("Server shutdown error", zap.Error(err))
		}
	} else {
		zap.L().Info("Server gracefully stopped.")
	}

	zap.L().Info("Application shutdown complete.")
}
