//go:build integration

package repository

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/GoSim-25-26J-441/sitegen-backend/internal/projects/domain"
	"github.com/GoSim-25-26J-441/sitegen-backend/internal/storage/postgres"
)

func setupRepo(t *testing.T) *Repo {
	t.Helper()
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	pgC, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("sitegen_test"),
		tcpostgres.WithUsername("test"),
		tcpostgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(t, err)
	testcontainers.CleanupContainer(t, pgC)

	dsn, err := pgC.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	require.NoError(t, postgres.ApplyMigrations(ctx, pool))
	// Applying twice is a no-op.
	require.NoError(t, postgres.ApplyMigrations(ctx, pool))

	return NewRepo(pool)
}

func strPtr(s string) *string { return &s }

func TestRepo_Projects(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	p, err := repo.CreateProject(ctx, "Demo", strPtr("a portfolio"))
	require.NoError(t, err)
	assert.NotEmpty(t, p.ID)
	assert.Empty(t, p.HTMLContent)
	assert.False(t, p.CreatedAt.IsZero())

	_, err = repo.CreateProject(ctx, " ", nil)
	var verr *domain.ValidationError
	assert.True(t, errors.As(err, &verr))

	got, err := repo.GetProject(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "a portfolio", *got.InitialPrompt)

	_, err = repo.GetProject(ctx, "999")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = repo.GetProject(ctx, "7d3f6f1e-3b0e-4a3c-9d55-0d1c2f4b9e11")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	updated, err := repo.UpdateProjectHTML(ctx, p.ID, "<html>x</html>")
	require.NoError(t, err)
	assert.Equal(t, "<html>x</html>", updated.HTMLContent)
	assert.True(t, p.CreatedAt.Equal(updated.CreatedAt))

	bare, err := repo.CreateProject(ctx, "Bare", nil)
	require.NoError(t, err)

	all, err := repo.ListProjects(ctx, false)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, bare.ID, all[0].ID)

	rendered, err := repo.ListProjects(ctx, true)
	require.NoError(t, err)
	require.Len(t, rendered, 1)
	assert.Equal(t, p.ID, rendered[0].ID)
}

func TestRepo_Messages(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	p, err := repo.CreateProject(ctx, "Demo", nil)
	require.NoError(t, err)

	_, err = repo.CreateMessage(ctx, "7d3f6f1e-3b0e-4a3c-9d55-0d1c2f4b9e11", domain.RoleUser, "hi", false)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = repo.CreateMessage(ctx, p.ID, domain.Role("system"), "hi", false)
	var verr *domain.ValidationError
	assert.True(t, errors.As(err, &verr))

	ids := make([]string, 0, 5)
	for i, role := range []domain.Role{domain.RoleUser, domain.RoleAssistant, domain.RoleUser, domain.RoleAssistant, domain.RoleUser} {
		m, err := repo.CreateMessage(ctx, p.ID, role, string(rune('a'+i)), false)
		require.NoError(t, err)
		ids = append(ids, m.ID)
	}

	msgs, err := repo.ListMessages(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, msgs, 5)
	for i, m := range msgs {
		assert.Equal(t, ids[i], m.ID)
		if i > 0 {
			assert.False(t, m.CreatedAt.Before(msgs[i-1].CreatedAt))
		}
	}

	require.NoError(t, repo.MarkProcessed(ctx, ids[0]))
	assert.ErrorIs(t, repo.MarkProcessed(ctx, ids[0]), domain.ErrAlreadyProcessed)
	assert.ErrorIs(t, repo.MarkProcessed(ctx, "7d3f6f1e-3b0e-4a3c-9d55-0d1c2f4b9e11"), domain.ErrNotFound)

	stale, err := repo.ListStaleUserMessages(ctx, 5, 0)
	require.NoError(t, err)
	require.Len(t, stale, 1)
	assert.Equal(t, ids[4], stale[0].ID)

	fresh, err := repo.ListStaleUserMessages(ctx, 5, time.Hour)
	require.NoError(t, err)
	assert.Empty(t, fresh)

	empty, err := repo.ListMessages(ctx, "not-a-uuid")
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestRepo_AtomicRollsBack(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	p, err := repo.CreateProject(ctx, "Demo", nil)
	require.NoError(t, err)
	user, err := repo.CreateMessage(ctx, p.ID, domain.RoleUser, "hi", false)
	require.NoError(t, err)

	boom := errors.New("boom")
	err = repo.Atomic(ctx, func(tx Store) error {
		if _, err := tx.CreateMessage(ctx, p.ID, domain.RoleAssistant, "<html/>", true); err != nil {
			return err
		}
		if _, err := tx.UpdateProjectHTML(ctx, p.ID, "<html/>"); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	msgs, err := repo.ListMessages(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.False(t, msgs[0].Processed)

	got, err := repo.GetProject(ctx, p.ID)
	require.NoError(t, err)
	assert.Empty(t, got.HTMLContent)

	err = repo.Atomic(ctx, func(tx Store) error {
		if _, err := tx.CreateMessage(ctx, p.ID, domain.RoleAssistant, "<html/>", true); err != nil {
			return err
		}
		if _, err := tx.UpdateProjectHTML(ctx, p.ID, "<html/>"); err != nil {
			return err
		}
		return tx.MarkProcessed(ctx, user.ID)
	})
	require.NoError(t, err)

	msgs, err = repo.ListMessages(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.True(t, msgs[0].Processed)
	assert.True(t, msgs[1].Processed)

	stale, err := repo.ListStaleUserMessages(ctx, 5, 0)
	require.NoError(t, err)
	assert.Empty(t, stale)
}

func TestRepo_ConcurrentCompletionKeepsOneReply(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	p, err := repo.CreateProject(ctx, "Demo", nil)
	require.NoError(t, err)
	user, err := repo.CreateMessage(ctx, p.ID, domain.RoleUser, "hi", false)
	require.NoError(t, err)

	complete := func(html string) error {
		return repo.Atomic(ctx, func(tx Store) error {
			if _, err := tx.CreateMessage(ctx, p.ID, domain.RoleAssistant, html, true); err != nil {
				return err
			}
			if _, err := tx.UpdateProjectHTML(ctx, p.ID, html); err != nil {
				return err
			}
			return tx.MarkProcessed(ctx, user.ID)
		})
	}

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = complete("<html>" + string(rune('a'+i)) + "</html>")
		}(i)
	}
	wg.Wait()

	var ok, conflicts int
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, domain.ErrAlreadyProcessed):
			conflicts++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, 1, conflicts)

	msgs, err := repo.ListMessages(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, domain.RoleAssistant, msgs[1].Role)

	got, err := repo.GetProject(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, msgs[1].Content, got.HTMLContent)
}
