package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/GoSim-25-26J-441/sitegen-backend/internal/projects/domain"
)

// Store is the persistence contract the service layer depends on.
type Store interface {
	CreateProject(ctx context.Context, name string, initialPrompt *string) (*domain.Project, error)
	GetProject(ctx context.Context, id string) (*domain.Project, error)
	ListProjects(ctx context.Context, renderedOnly bool) ([]domain.Project, error)
	UpdateProjectHTML(ctx context.Context, id, html string) (*domain.Project, error)

	CreateMessage(ctx context.Context, projectID string, role domain.Role, content string, processed bool) (*domain.Message, error)
	ListMessages(ctx context.Context, projectID string) ([]domain.Message, error)
	MarkProcessed(ctx context.Context, messageID string) error
	ListStaleUserMessages(ctx context.Context, limit int, minAge time.Duration) ([]domain.Message, error)

	// Atomic runs fn inside one transaction. Writes made through the Store
	// passed to fn commit together or not at all.
	Atomic(ctx context.Context, fn func(tx Store) error) error
}

// DBTX is satisfied by both *pgxpool.Pool and pgx.Tx.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Repo provides Postgres persistence for projects and messages.
type Repo struct {
	db   DBTX
	pool *pgxpool.Pool // nil when bound to a transaction
}

// NewRepo creates a repository backed by the given pool.
func NewRepo(pool *pgxpool.Pool) *Repo {
	return &Repo{db: pool, pool: pool}
}

var _ Store = (*Repo)(nil)

// Atomic implements Store. Nested calls reuse the outer transaction.
func (r *Repo) Atomic(ctx context.Context, fn func(tx Store) error) error {
	if r.pool == nil {
		return fn(r)
	}

	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return &domain.PersistenceError{Op: "begin tx", Err: err}
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(&Repo{db: tx}); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return &domain.PersistenceError{Op: "commit tx", Err: err}
	}
	return nil
}

const projectColumns = `id::text, name, html_content, initial_prompt, created_at`

func scanProject(row pgx.Row) (*domain.Project, error) {
	var p domain.Project
	if err := row.Scan(&p.ID, &p.Name, &p.HTMLContent, &p.InitialPrompt, &p.CreatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}

// CreateProject inserts a project with empty html_content.
func (r *Repo) CreateProject(ctx context.Context, name string, initialPrompt *string) (*domain.Project, error) {
	if strings.TrimSpace(name) == "" {
		return nil, &domain.ValidationError{Field: "name", Reason: "must not be empty"}
	}

	q := `
insert into projects (id, name, initial_prompt)
values ($1, $2, $3)
returning ` + projectColumns + `;
`
	p, err := scanProject(r.db.QueryRow(ctx, q, uuid.New(), name, initialPrompt))
	if err != nil {
		return nil, &domain.PersistenceError{Op: "insert project", Err: err}
	}
	return p, nil
}

// GetProject returns the project or a wrapped domain.ErrNotFound.
func (r *Repo) GetProject(ctx context.Context, id string) (*domain.Project, error) {
	pid, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("project %q: %w", id, domain.ErrNotFound)
	}

	q := `select ` + projectColumns + ` from projects where id = $1;`
	p, err := scanProject(r.db.QueryRow(ctx, q, pid))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("project %q: %w", id, domain.ErrNotFound)
		}
		return nil, &domain.PersistenceError{Op: "get project", Err: err}
	}
	return p, nil
}

// ListProjects returns projects newest first.
func (r *Repo) ListProjects(ctx context.Context, renderedOnly bool) ([]domain.Project, error) {
	q := `
select ` + projectColumns + `
from projects
where ($1::boolean = false or btrim(html_content) <> '')
order by created_at desc;
`
	rows, err := r.db.Query(ctx, q, renderedOnly)
	if err != nil {
		return nil, &domain.PersistenceError{Op: "list projects", Err: err}
	}
	defer rows.Close()

	out := make([]domain.Project, 0, 16)
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, &domain.PersistenceError{Op: "scan project", Err: err}
		}
		out = append(out, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, &domain.PersistenceError{Op: "list projects", Err: err}
	}
	return out, nil
}

// UpdateProjectHTML replaces the rendered document of a project.
func (r *Repo) UpdateProjectHTML(ctx context.Context, id, html string) (*domain.Project, error) {
	pid, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("project %q: %w", id, domain.ErrNotFound)
	}

	q := `
update projects
set html_content = $2
where id = $1
returning ` + projectColumns + `;
`
	p, err := scanProject(r.db.QueryRow(ctx, q, pid, html))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("project %q: %w", id, domain.ErrNotFound)
		}
		return nil, &domain.PersistenceError{Op: "update project html", Err: err}
	}
	return p, nil
}
