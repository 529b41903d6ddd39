package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"reservation-api/core/cache"
	"reservation-api/core/config"
	"reservation-api/core/constants"
	"reservation-api/core/database"
	"reservation-api/core/logger"
	"reservation-api/core/utils"
	"reservation-api/modules/notification"
	notifworker "reservation-api/modules/notification/worker"
	"reservation-api/modules/reservation"
	resvworker "reservation-api/modules/reservation/worker"

	"github.com/hibiken/asynq"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// Run boots the whole service: config, logging, postgres, redis, the HTTP
// surface, the asynq notification worker and the expiry sweeper. It blocks
// until SIGINT/SIGTERM and then shuts everything down in order.
func Run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger.Init(cfg.LogLevel)

	db, err := database.InitDB(database.DatabaseConfig{
		Host:     cfg.DBHost,
		Port:     cfg.DBPort,
		User:     cfg.DBUser,
		Password: cfg.DBPassword,
		DBName:   cfg.DBName,
	})
	if err != nil {
		return err
	}

	cacheInst, err := cache.InitCache(cache.CacheConfig{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err != nil {
		return err
	}
	defer cacheInst.Close()

	redisOpt := asynq.RedisClientOpt{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	}
	asynqClient := asynq.NewClient(redisOpt)
	defer asynqClient.Close()

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: utils.GenerateID,
	}))
	e.Use(middleware.CORS())

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	api := e.Group("/api/v1")
	notificationService := notification.Init(api, db)
	reservationService := reservation.Init(api, db, cacheInst, asynqClient)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sweeper := resvworker.NewSweeper(reservationService, constants.SweepInterval)
	go sweeper.Run(ctx)

	asynqServer := asynq.NewServer(redisOpt, asynq.Config{Concurrency: 5})
	mux := asynq.NewServeMux()
	notifworker.NewHandler(notificationService).Register(mux)
	go func() {
		if err := asynqServer.Run(mux); err != nil {
			logger.Error("Server:AsynqWorker", "error", err)
		}
	}()

	go func() {
		addr := fmt.Sprintf(":%d", cfg.HTTPPort)
		logger.Info("Server:Listening", "addr", addr)
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Error("Server:Start", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Server:ShuttingDown")

	cancel()
	asynqServer.Shutdown()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown http server: %w", err)
	}

	logger.Info("Server:Stopped")
	return nil
}
