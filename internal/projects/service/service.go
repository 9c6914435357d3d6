package service

import (
	"time"

	"github.com/GoSim-25-26J-441/sitegen-backend/internal/events"
	"github.com/GoSim-25-26J-441/sitegen-backend/internal/llm"
	"github.com/GoSim-25-26J-441/sitegen-backend/internal/projects/repository"
)

const defaultGenerationTimeout = 120 * time.Second

// Service owns the project/message workflow: persisting conversation turns,
// driving generation and keeping each project's rendered document current.
type Service struct {
	store     repository.Store
	generator llm.Generator
	publisher events.Publisher
	timeout   time.Duration
	now       func() time.Time
}

// Option customizes a Service.
type Option func(*Service)

// WithPublisher sets the event publisher. The default discards events.
func WithPublisher(p events.Publisher) Option {
	return func(s *Service) {
		if p != nil {
			s.publisher = p
		}
	}
}

// WithGenerationTimeout bounds each generation call.
func WithGenerationTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// NewService wires the workflow around a store and a generator.
func NewService(store repository.Store, generator llm.Generator, opts ...Option) *Service {
	s := &Service{
		store:     store,
		generator: generator,
		publisher: events.Noop{},
		timeout:   defaultGenerationTimeout,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}
