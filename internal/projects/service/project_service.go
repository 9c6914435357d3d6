package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/GoSim-25-26J-441/sitegen-backend/internal/logging"
	"github.com/GoSim-25-26J-441/sitegen-backend/internal/projects/domain"
)

// CreateProject stores a project, seeds its conversation and runs the first
// generation. When generation fails the project and seed message are kept.
func (s *Service) CreateProject(ctx context.Context, name, description string) (*domain.Project, error) {
	if strings.TrimSpace(name) == "" {
		return nil, &domain.ValidationError{Field: "name", Reason: "must not be empty"}
	}

	project, err := s.store.CreateProject(ctx, name, &description)
	if err != nil {
		return nil, fmt.Errorf("create project: %w", err)
	}

	log := logging.FromContext(ctx).With(zap.String("project_id", project.ID))
	log.Info("project created", zap.String("name", name))

	seed, err := s.store.CreateMessage(ctx, project.ID, domain.RoleUser, domain.SeedPrompt(name, description), false)
	if err != nil {
		return nil, fmt.Errorf("create seed message: %w", err)
	}

	if _, _, err := s.ProcessMessage(ctx, project, seed); err != nil {
		return nil, err
	}
	return project, nil
}

// GetProject returns a project by id.
func (s *Service) GetProject(ctx context.Context, id string) (*domain.Project, error) {
	return s.store.GetProject(ctx, id)
}

// ListProjects returns projects newest first, optionally only rendered ones.
func (s *Service) ListProjects(ctx context.Context, renderedOnly bool) ([]domain.Project, error) {
	return s.store.ListProjects(ctx, renderedOnly)
}
