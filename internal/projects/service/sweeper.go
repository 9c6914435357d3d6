package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/GoSim-25-26J-441/sitegen-backend/internal/logging"
)

// SweepResult summarizes one sweep pass.
type SweepResult struct {
	Found     int
	Processed int
	Failed    int
}

// Sweep retries generation for user messages left unprocessed as the last
// turn of their project. Messages younger than the generation timeout may
// still have a request waiting on them and are left alone. Items are handled
// one at a time and a failing item never stops the pass.
func (s *Service) Sweep(ctx context.Context, limit int) (SweepResult, error) {
	log := logging.FromContext(ctx)

	stale, err := s.store.ListStaleUserMessages(ctx, limit, s.timeout)
	if err != nil {
		return SweepResult{}, err
	}

	res := SweepResult{Found: len(stale)}
	started := time.Now()
	for i := range stale {
		if ctx.Err() != nil {
			break
		}
		msg := &stale[i]

		project, err := s.store.GetProject(ctx, msg.ProjectID)
		if err != nil {
			res.Failed++
			log.Warn("sweep: load project", zap.String("message_id", msg.ID), zap.Error(err))
			continue
		}

		if _, _, err := s.ProcessMessage(ctx, project, msg); err != nil {
			res.Failed++
			log.Warn("sweep: process message", zap.String("message_id", msg.ID), zap.Error(err))
			continue
		}
		res.Processed++
	}

	log.Info("sweep finished",
		zap.Int("found", res.Found),
		zap.Int("processed", res.Processed),
		zap.Int("failed", res.Failed),
		zap.Duration("elapsed", time.Since(started)),
	)
	return res, ctx.Err()
}
