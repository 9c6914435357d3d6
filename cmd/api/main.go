package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/GoSim-25-26J-441/sitegen-backend/config"
	"github.com/GoSim-25-26J-441/sitegen-backend/internal/bootstrap"
	"github.com/GoSim-25-26J-441/sitegen-backend/internal/events"
	"github.com/GoSim-25-26J-441/sitegen-backend/internal/llm"
	"github.com/GoSim-25-26J-441/sitegen-backend/internal/logging"
	"github.com/GoSim-25-26J-441/sitegen-backend/internal/projects/repository"
	"github.com/GoSim-25-26J-441/sitegen-backend/internal/projects/service"
	"github.com/GoSim-25-26J-441/sitegen-backend/internal/storage/postgres"
)

const serviceName = "sitegen-backend"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger, err := logging.New(cfg.App.LogLevel, cfg.IsProduction())
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()
	zap.ReplaceGlobals(logger)

	if err := run(ctx, cfg, logger); err != nil {
		logger.Fatal("api stopped", zap.Error(err))
	}
}

func run(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	pool, err := postgres.Open(ctx, &cfg.Database)
	if err != nil {
		return err
	}
	defer pool.Close()
	logger.Info("connected to database")

	if err := postgres.ApplyMigrations(ctx, pool); err != nil {
		return err
	}

	gen, err := llm.New(ctx, cfg.Generation)
	if err != nil {
		return err
	}

	pub, closePub, err := events.FromConfig(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	defer func() { _ = closePub() }()

	svc := service.NewService(
		repository.NewRepo(pool),
		gen,
		service.WithPublisher(pub),
		service.WithGenerationTimeout(cfg.Generation.Timeout),
	)

	bootstrap.SetGinMode(cfg.IsProduction())
	router := bootstrap.BuildRouter(bootstrap.RouterDeps{
		ServiceName: serviceName,
		Version:     cfg.App.Version,
		CORSOrigins: cfg.Server.CORSOrigins,
		DB:          pool,
		Projects:    svc,
		Events:      pub,
		Logger:      logger,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening",
			zap.String("addr", srv.Addr),
			zap.String("provider", cfg.Generation.Provider),
			zap.Bool("events", cfg.Redis.Addr != ""),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
