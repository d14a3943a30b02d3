package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/KAVYA-KOLLAREDDY/Tiny-Vivid-Minds/internal/di"
	"github.com/KAVYA-KOLLAREDDY/Tiny-Vivid-Minds/internal/metrics"
	"github.com/KAVYA-KOLLAREDDY/Tiny-Vivid-Minds/internal/repository"
	"github.com/KAVYA-KOLLAREDDY/Tiny-Vivid-Minds/internal/worker"
	"github.com/KAVYA-KOLLAREDDY/Tiny-Vivid-Minds/pkg/config"
	"github.com/KAVYA-KOLLAREDDY/Tiny-Vivid-Minds/pkg/database"
	"github.com/KAVYA-KOLLAREDDY/Tiny-Vivid-Minds/pkg/logger"
	"go.uber.org/zap"
)

func main() {
	once := flag.Bool("once", false, "run a single sweep and exit")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := logger.Init(&logger.Config{
		Level:       cfg.App.Environment,
		ServiceName: "tvm-token-sweeper",
		Development: cfg.IsDevelopment(),
	}); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()
	appLog := logger.Get()

	if err := metrics.Init(); err != nil {
		appLog.Warn("Metrics disabled", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgres(ctx, di.PostgresConfig(cfg))
	if err != nil {
		appLog.Fatal("Database connection failed", zap.Error(err))
	}
	defer db.Close()

	sweeper := worker.NewTokenSweeper(repository.NewPostgresRefreshTokenRepository(db.Pool()), &worker.TokenSweeperConfig{
		Interval:      cfg.Sweeper.Interval,
		RetainRevoked: cfg.Sweeper.RetainRevoked,
		BatchSize:     cfg.Sweeper.BatchSize,
	})

	if *once {
		expired, revoked, err := sweeper.Sweep(ctx)
		if err != nil {
			appLog.Fatal("Token sweep failed", zap.Error(err))
		}
		appLog.Info("Token sweep completed", zap.Int64("expired", expired), zap.Int64("revoked", revoked))
		return
	}

	if err := sweeper.Start(ctx); err != nil {
		appLog.Fatal("Failed to start token sweeper", zap.Error(err))
	}

	<-ctx.Done()
	sweeper.Stop()
}
