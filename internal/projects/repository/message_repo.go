package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/GoSim-25-26J-441/sitegen-backend/internal/projects/domain"
)

const messageColumns = `id::text, project_id::text, role, content, processed, created_at`

func scanMessage(row pgx.Row) (*domain.Message, error) {
	var (
		m    domain.Message
		role string
	)
	if err := row.Scan(&m.ID, &m.ProjectID, &role, &m.Content, &m.Processed, &m.CreatedAt); err != nil {
		return nil, err
	}
	m.Role = domain.Role(role)
	return &m, nil
}

func collectMessages(rows pgx.Rows, op string) ([]domain.Message, error) {
	defer rows.Close()

	out := make([]domain.Message, 0, 16)
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, &domain.PersistenceError{Op: op, Err: err}
		}
		out = append(out, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, &domain.PersistenceError{Op: op, Err: err}
	}
	return out, nil
}

// CreateMessage appends a message to a project's conversation.
func (r *Repo) CreateMessage(ctx context.Context, projectID string, role domain.Role, content string, processed bool) (*domain.Message, error) {
	if !role.Valid() {
		return nil, &domain.ValidationError{Field: "role", Reason: fmt.Sprintf("unknown role %q", role)}
	}
	pid, err := uuid.Parse(projectID)
	if err != nil {
		return nil, fmt.Errorf("project %q: %w", projectID, domain.ErrNotFound)
	}

	q := `
insert into messages (id, project_id, role, content, processed)
values ($1, $2, $3, $4, $5)
returning ` + messageColumns + `;
`
	m, err := scanMessage(r.db.QueryRow(ctx, q, uuid.New(), pid, string(role), content, processed))
	if err != nil {
		if isForeignKeyViolation(err) {
			return nil, fmt.Errorf("project %q: %w", projectID, domain.ErrNotFound)
		}
		return nil, &domain.PersistenceError{Op: "insert message", Err: err}
	}
	return m, nil
}

// ListMessages returns every message of a project in creation order.
// It does not check that the project exists.
func (r *Repo) ListMessages(ctx context.Context, projectID string) ([]domain.Message, error) {
	pid, err := uuid.Parse(projectID)
	if err != nil {
		return []domain.Message{}, nil
	}

	q := `
select ` + messageColumns + `
from messages
where project_id = $1
order by created_at asc, seq asc;
`
	rows, err := r.db.Query(ctx, q, pid)
	if err != nil {
		return nil, &domain.PersistenceError{Op: "list messages", Err: err}
	}
	return collectMessages(rows, "list messages")
}

// MarkProcessed flags a message as having completed the pipeline. A message
// that is already processed yields domain.ErrAlreadyProcessed so the caller's
// transaction can roll back its duplicate result.
func (r *Repo) MarkProcessed(ctx context.Context, messageID string) error {
	mid, err := uuid.Parse(messageID)
	if err != nil {
		return fmt.Errorf("message %q: %w", messageID, domain.ErrNotFound)
	}

	ct, err := r.db.Exec(ctx, `update messages set processed = true where id = $1 and processed = false;`, mid)
	if err != nil {
		return &domain.PersistenceError{Op: "mark message processed", Err: err}
	}
	if ct.RowsAffected() == 1 {
		return nil
	}

	var exists bool
	if err := r.db.QueryRow(ctx, `select exists (select 1 from messages where id = $1);`, mid).Scan(&exists); err != nil {
		return &domain.PersistenceError{Op: "mark message processed", Err: err}
	}
	if !exists {
		return fmt.Errorf("message %q: %w", messageID, domain.ErrNotFound)
	}
	return fmt.Errorf("message %q: %w", messageID, domain.ErrAlreadyProcessed)
}

// ListStaleUserMessages returns unprocessed user messages that are still the
// latest message of their project and older than minAge, oldest first.
// minAge keeps requests that are still waiting on generation out of the list.
func (r *Repo) ListStaleUserMessages(ctx context.Context, limit int, minAge time.Duration) ([]domain.Message, error) {
	if limit <= 0 {
		limit = 5
	}
	if minAge < 0 {
		minAge = 0
	}

	q := `
select ` + messageColumns + `
from messages m
where m.role = 'user'
  and m.processed = false
  and m.created_at < clock_timestamp() - make_interval(secs => $2)
  and not exists (
    select 1 from messages later
    where later.project_id = m.project_id and later.seq > m.seq
  )
order by m.created_at asc, m.seq asc
limit $1;
`
	rows, err := r.db.Query(ctx, q, limit, minAge.Seconds())
	if err != nil {
		return nil, &domain.PersistenceError{Op: "list stale messages", Err: err}
	}
	return collectMessages(rows, "list stale messages")
}
