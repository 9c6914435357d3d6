package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/GoSim-25-26J-441/sitegen-backend/internal/events"
	"github.com/GoSim-25-26J-441/sitegen-backend/internal/llm"
	"github.com/GoSim-25-26J-441/sitegen-backend/internal/logging"
	"github.com/GoSim-25-26J-441/sitegen-backend/internal/projects/domain"
	"github.com/GoSim-25-26J-441/sitegen-backend/internal/projects/repository"
)

// ProcessMessage runs generation for an unprocessed user message of project.
//
// The whole project history, msg included, is sent to the generator. On
// success the assistant reply is stored, the project's html_content replaced
// and msg marked processed in a single transaction. On failure nothing is
// written and msg stays unprocessed. If msg is marked processed by someone
// else while generation runs, the result is discarded and
// domain.ErrAlreadyProcessed is returned.
func (s *Service) ProcessMessage(ctx context.Context, project *domain.Project, msg *domain.Message) (*domain.Message, *domain.Project, error) {
	if project == nil || msg == nil {
		return nil, nil, fmt.Errorf("process message: project and message are required")
	}
	if msg.ProjectID != project.ID {
		return nil, nil, &domain.ValidationError{Field: "message", Reason: "does not belong to project"}
	}
	if msg.Role != domain.RoleUser {
		return nil, nil, &domain.ValidationError{Field: "message", Reason: fmt.Sprintf("role %q cannot be processed", msg.Role)}
	}
	if msg.Processed {
		return nil, nil, fmt.Errorf("message %q: %w", msg.ID, domain.ErrAlreadyProcessed)
	}

	log := logging.FromContext(ctx).With(
		zap.String("project_id", project.ID),
		zap.String("message_id", msg.ID),
	)

	history, err := s.store.ListMessages(ctx, project.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("load history: %w", err)
	}
	turns := domain.FormatHistory(history)

	started := time.Now()
	text, err := s.generate(ctx, turns)
	if err != nil {
		log.Warn("generation failed",
			zap.Int("turns", len(turns)),
			zap.Duration("elapsed", time.Since(started)),
			zap.Error(err),
		)
		return nil, nil, err
	}

	var (
		assistant *domain.Message
		updated   *domain.Project
	)
	err = s.store.Atomic(ctx, func(tx repository.Store) error {
		var err error
		if assistant, err = tx.CreateMessage(ctx, project.ID, domain.RoleAssistant, text, true); err != nil {
			return fmt.Errorf("store assistant message: %w", err)
		}
		if updated, err = tx.UpdateProjectHTML(ctx, project.ID, text); err != nil {
			return fmt.Errorf("update project html: %w", err)
		}
		if err = tx.MarkProcessed(ctx, msg.ID); err != nil {
			return fmt.Errorf("mark message processed: %w", err)
		}
		return nil
	})
	if errors.Is(err, domain.ErrAlreadyProcessed) {
		log.Warn("message processed concurrently, discarding result")
		return nil, nil, err
	}
	if err != nil {
		log.Error("persist generation result", zap.Error(err))
		return nil, nil, err
	}

	msg.Processed = true
	*project = *updated

	log.Info("message processed",
		zap.String("assistant_message_id", assistant.ID),
		zap.Int("html_length", len(text)),
		zap.Duration("elapsed", time.Since(started)),
	)

	ev := events.ProjectUpdated{
		Type:       events.TypeProjectUpdated,
		ProjectID:  project.ID,
		MessageID:  assistant.ID,
		HTMLLength: len(text),
		At:         s.now().UTC(),
	}
	if err := s.publisher.PublishProjectUpdated(ctx, ev); err != nil {
		log.Warn("publish project event", zap.Error(err))
	}

	return assistant, updated, nil
}

func (s *Service) generate(ctx context.Context, turns []domain.Turn) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	text, err := s.generator.Generate(ctx, llm.SystemPrompt, turns)
	if err != nil {
		var genErr *domain.GenerationError
		if errors.As(err, &genErr) {
			return "", err
		}
		return "", &domain.GenerationError{Provider: "unknown", Message: err.Error(), Err: err}
	}
	return text, nil
}
