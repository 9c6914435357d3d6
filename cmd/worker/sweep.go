package main

import (
	"context"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/GoSim-25-26J-441/sitegen-backend/config"
	"github.com/GoSim-25-26J-441/sitegen-backend/internal/events"
	"github.com/GoSim-25-26J-441/sitegen-backend/internal/llm"
	"github.com/GoSim-25-26J-441/sitegen-backend/internal/logging"
	"github.com/GoSim-25-26J-441/sitegen-backend/internal/projects/repository"
	"github.com/GoSim-25-26J-441/sitegen-backend/internal/projects/service"
	"github.com/GoSim-25-26J-441/sitegen-backend/internal/storage/postgres"
	"github.com/GoSim-25-26J-441/sitegen-backend/internal/worker"
)

func newSweepCmd() *cobra.Command {
	var once bool

	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Retry generation for messages left unprocessed",
		Long: `sweep finds user messages that are the last turn of their project and were
never processed, and runs generation for them again. It runs on
SWEEP_SCHEDULE until interrupted, or a single pass with --once.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSweep(cmd.Context(), once)
		},
	}
	cmd.Flags().BoolVar(&once, "once", false, "run a single pass and exit")
	return cmd
}

func runSweep(ctx context.Context, once bool) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger, err := logging.New(cfg.App.LogLevel, cfg.IsProduction())
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()
	ctx = logging.WithContext(ctx, logger.With(zap.String("component", "sweeper")))

	pool, err := postgres.Open(ctx, &cfg.Database)
	if err != nil {
		return err
	}
	defer pool.Close()

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

	if once {
		_, err := svc.Sweep(ctx, cfg.Worker.SweepBatchSize)
		return err
	}

	sched := worker.NewScheduler(logger)
	err = sched.Add(ctx, cfg.Worker.SweepSchedule, "sweep", func(ctx context.Context) {
		if _, err := svc.Sweep(ctx, cfg.Worker.SweepBatchSize); err != nil && ctx.Err() == nil {
			logging.FromContext(ctx).Error("sweep failed", zap.Error(err))
		}
	})
	if err != nil {
		return err
	}

	sched.Run(ctx)
	return nil
}
