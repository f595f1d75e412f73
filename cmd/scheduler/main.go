package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/segyhp/carloan-engine/internal/cache"
	"github.com/segyhp/carloan-engine/internal/config"
	"github.com/segyhp/carloan-engine/internal/logger"
	"github.com/segyhp/carloan-engine/internal/repository"
	"github.com/segyhp/carloan-engine/internal/scheduler"
	"github.com/segyhp/carloan-engine/internal/service"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	zlog, err := logger.New(cfg.Logging)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() { _ = zlog.Sync() }()
	zap.ReplaceGlobals(zlog)

	zlog.Info("starting loan scheduler")

	db, err := repository.Open(cfg.Database.Driver, cfg.DSN(), repository.PoolOptions{
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	})
	if err != nil {
		zlog.Fatal("failed to initialize database", zap.Error(err))
	}
	defer db.Close()

	if err := repository.Migrate(db); err != nil {
		zlog.Fatal("failed to migrate database", zap.Error(err))
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()

	loanService := service.NewLoanService(
		repository.NewVehicleRepository(db),
		repository.NewLoanRepository(db),
		repository.NewPaymentRepository(db),
		cache.NewLoanCache(redisClient, cfg.Redis.ScheduleTTL, cfg.Redis.LockTTL),
		cfg,
		zlog,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize cron scheduler
	s := scheduler.New(ctx, loanService, cfg, zlog)
	if err := s.Register(); err != nil {
		zlog.Fatal("failed to schedule jobs", zap.Error(err))
	}

	s.Start()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zlog.Info("shutting down scheduler")
	cancel()
	s.Stop()
}
