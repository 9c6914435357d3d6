package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/GoSim-25-26J-441/sitegen-backend/internal/projects/domain"
	"github.com/GoSim-25-26J-441/sitegen-backend/internal/projects/repository"
)

type memState struct {
	projects map[string]domain.Project
	messages []domain.Message
}

func (s *memState) clone() *memState {
	c := &memState{
		projects: make(map[string]domain.Project, len(s.projects)),
		messages: append([]domain.Message(nil), s.messages...),
	}
	for k, v := range s.projects {
		c.projects[k] = v
	}
	return c
}

// memStore is an in-memory repository.Store. Atomic works on a copy of the
// state and swaps it in only when fn succeeds. Atomic scopes are serialized.
type memStore struct {
	mu    *sync.Mutex
	txMu  *sync.Mutex
	state *memState
	clock time.Time
	now   func() time.Time

	// failOn makes the named operation return the given error.
	failOn map[string]error
}

func newMemStore() *memStore {
	return &memStore{
		mu:     &sync.Mutex{},
		txMu:   &sync.Mutex{},
		state:  &memState{projects: map[string]domain.Project{}},
		clock:  time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		now:    time.Now,
		failOn: map[string]error{},
	}
}

var _ repository.Store = (*memStore)(nil)

func (m *memStore) tick() time.Time {
	m.clock = m.clock.Add(time.Millisecond)
	return m.clock
}

func (m *memStore) fail(op string) error {
	if err, ok := m.failOn[op]; ok {
		return &domain.PersistenceError{Op: op, Err: err}
	}
	return nil
}

func (m *memStore) CreateProject(_ context.Context, name string, initialPrompt *string) (*domain.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail("CreateProject"); err != nil {
		return nil, err
	}
	if strings.TrimSpace(name) == "" {
		return nil, &domain.ValidationError{Field: "name", Reason: "must not be empty"}
	}
	p := domain.Project{ID: uuid.NewString(), Name: name, InitialPrompt: initialPrompt, CreatedAt: m.tick()}
	m.state.projects[p.ID] = p
	return &p, nil
}

func (m *memStore) GetProject(_ context.Context, id string) (*domain.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.state.projects[id]
	if !ok {
		return nil, fmt.Errorf("project %q: %w", id, domain.ErrNotFound)
	}
	return &p, nil
}

func (m *memStore) ListProjects(_ context.Context, renderedOnly bool) ([]domain.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.Project, 0, len(m.state.projects))
	for _, p := range m.state.projects {
		if renderedOnly && strings.TrimSpace(p.HTMLContent) == "" {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *memStore) UpdateProjectHTML(_ context.Context, id, html string) (*domain.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail("UpdateProjectHTML"); err != nil {
		return nil, err
	}
	p, ok := m.state.projects[id]
	if !ok {
		return nil, fmt.Errorf("project %q: %w", id, domain.ErrNotFound)
	}
	p.HTMLContent = html
	m.state.projects[id] = p
	return &p, nil
}

func (m *memStore) CreateMessage(_ context.Context, projectID string, role domain.Role, content string, processed bool) (*domain.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail("CreateMessage"); err != nil {
		return nil, err
	}
	if _, ok := m.state.projects[projectID]; !ok {
		return nil, fmt.Errorf("project %q: %w", projectID, domain.ErrNotFound)
	}
	msg := domain.Message{
		ID:        uuid.NewString(),
		ProjectID: projectID,
		Role:      role,
		Content:   content,
		Processed: processed,
		CreatedAt: m.tick(),
	}
	m.state.messages = append(m.state.messages, msg)
	return &msg, nil
}

func (m *memStore) ListMessages(_ context.Context, projectID string) ([]domain.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []domain.Message{}
	for _, msg := range m.state.messages {
		if msg.ProjectID == projectID {
			out = append(out, msg)
		}
	}
	return out, nil
}

func (m *memStore) MarkProcessed(_ context.Context, messageID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail("MarkProcessed"); err != nil {
		return err
	}
	for i := range m.state.messages {
		if m.state.messages[i].ID == messageID {
			if m.state.messages[i].Processed {
				return fmt.Errorf("message %q: %w", messageID, domain.ErrAlreadyProcessed)
			}
			m.state.messages[i].Processed = true
			return nil
		}
	}
	return fmt.Errorf("message %q: %w", messageID, domain.ErrNotFound)
}

func (m *memStore) ListStaleUserMessages(_ context.Context, limit int, minAge time.Duration) ([]domain.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cutoff := m.now().Add(-minAge)
	last := map[string]domain.Message{}
	for _, msg := range m.state.messages {
		last[msg.ProjectID] = msg
	}
	out := []domain.Message{}
	for _, msg := range m.state.messages {
		if len(out) == limit {
			break
		}
		if msg.Role == domain.RoleUser && !msg.Processed && last[msg.ProjectID].ID == msg.ID && msg.CreatedAt.Before(cutoff) {
			out = append(out, msg)
		}
	}
	return out, nil
}

func (m *memStore) Atomic(ctx context.Context, fn func(tx repository.Store) error) error {
	m.txMu.Lock()
	defer m.txMu.Unlock()

	m.mu.Lock()
	tx := &memStore{mu: &sync.Mutex{}, txMu: &sync.Mutex{}, state: m.state.clone(), clock: m.clock, now: m.now, failOn: m.failOn}
	m.mu.Unlock()

	if err := fn(tx); err != nil {
		return err
	}

	m.mu.Lock()
	m.state = tx.state
	m.clock = tx.clock
	m.mu.Unlock()
	return nil
}

func (m *memStore) messages(projectID string) []domain.Message {
	out, _ := m.ListMessages(context.Background(), projectID)
	return out
}

func (m *memStore) project(id string) domain.Project {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.projects[id]
}
