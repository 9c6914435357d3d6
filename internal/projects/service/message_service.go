package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/GoSim-25-26J-441/sitegen-backend/internal/projects/domain"
)

// CreateMessage appends a user message to a project and processes it.
// The returned message is the user's, marked processed on success.
func (s *Service) CreateMessage(ctx context.Context, projectID, content string) (*domain.Message, error) {
	if strings.TrimSpace(content) == "" {
		return nil, &domain.ValidationError{Field: "content", Reason: "must not be empty"}
	}

	project, err := s.store.GetProject(ctx, projectID)
	if err != nil {
		return nil, err
	}

	msg, err := s.store.CreateMessage(ctx, project.ID, domain.RoleUser, content, false)
	if err != nil {
		return nil, fmt.Errorf("create message: %w", err)
	}

	if _, _, err := s.ProcessMessage(ctx, project, msg); err != nil {
		return nil, err
	}
	return msg, nil
}

// ListMessages returns a project's conversation in creation order.
func (s *Service) ListMessages(ctx context.Context, projectID string) ([]domain.Message, error) {
	if _, err := s.store.GetProject(ctx, projectID); err != nil {
		return nil, err
	}
	return s.store.ListMessages(ctx, projectID)
}
