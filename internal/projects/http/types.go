package http

import (
	"context"
	"time"

	"github.com/GoSim-25-26J-441/sitegen-backend/internal/events"
	"github.com/GoSim-25-26J-441/sitegen-backend/internal/projects/domain"
)

// ProjectService is the workflow the handlers drive.
type ProjectService interface {
	CreateProject(ctx context.Context, name, description string) (*domain.Project, error)
	GetProject(ctx context.Context, id string) (*domain.Project, error)
	ListProjects(ctx context.Context, renderedOnly bool) ([]domain.Project, error)
	CreateMessage(ctx context.Context, projectID, content string) (*domain.Message, error)
	ListMessages(ctx context.Context, projectID string) ([]domain.Message, error)
}

// EventSource returns the last change event recorded for a project.
type EventSource interface {
	Latest(ctx context.Context, projectID string) (*events.ProjectUpdated, error)
}

// Handler bundles the dependencies for projects HTTP endpoints.
type Handler struct {
	svc    ProjectService
	events EventSource
}

// New builds the handler. A nil ev behaves as if no events were ever
// published.
func New(svc ProjectService, ev EventSource) *Handler {
	if ev == nil {
		ev = events.Noop{}
	}
	return &Handler{svc: svc, events: ev}
}

type createProjectReq struct {
	Name        string  `json:"name"`
	Description *string `json:"description"`
}

type createMessageReq struct {
	Content *string `json:"content"`
}

type projectView struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	HTMLContent   string  `json:"html_content"`
	InitialPrompt *string `json:"initial_prompt"`
}

type messageView struct {
	ID        string      `json:"id"`
	Role      domain.Role `json:"role"`
	Content   string      `json:"content"`
	CreatedAt string      `json:"created_at"`
}

type errorView struct {
	Detail string `json:"detail"`
}

func toProjectView(p *domain.Project) projectView {
	return projectView{
		ID:            p.ID,
		Name:          p.Name,
		HTMLContent:   p.HTMLContent,
		InitialPrompt: p.InitialPrompt,
	}
}

func toMessageView(m *domain.Message) messageView {
	return messageView{
		ID:        m.ID,
		Role:      m.Role,
		Content:   m.Content,
		CreatedAt: m.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
}
