// Package sqlitedump converts the legacy SQLite "project" table into
// PostgreSQL INSERT statements for the projects table.
package sqlitedump

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/lib/pq"
	_ "modernc.org/sqlite"
)

const selectProjects = `SELECT name, html_content, initial_prompt, created_at FROM project`

const insertPrefix = "INSERT INTO public.projects (name, html_content, initial_prompt, created_at) VALUES ("

// Querier is satisfied by *sql.DB and *sql.Tx.
type Querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// Open opens a SQLite file read-only.
func Open(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", "file:"+path+"?mode=ro")
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	return db, nil
}

// Dump writes one INSERT statement per project row and returns the row count.
// Ids are omitted so the target assigns its own.
func Dump(ctx context.Context, db Querier, w io.Writer) (int, error) {
	rows, err := db.QueryContext(ctx, selectProjects)
	if err != nil {
		return 0, fmt.Errorf("query projects: %w", err)
	}
	defer rows.Close()

	bw := bufio.NewWriter(w)
	n := 0
	vals := make([]any, 4)
	ptrs := make([]any, len(vals))
	for i := range vals {
		ptrs[i] = &vals[i]
	}

	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return n, fmt.Errorf("scan row %d: %w", n+1, err)
		}

		lits := make([]string, len(vals))
		for i, v := range vals {
			lits[i] = Literal(v)
		}
		if _, err := fmt.Fprintf(bw, "%s%s);\n", insertPrefix, strings.Join(lits, ", ")); err != nil {
			return n, fmt.Errorf("write statement: %w", err)
		}
		n++
	}
	if err := rows.Err(); err != nil {
		return n, fmt.Errorf("read rows: %w", err)
	}
	if err := bw.Flush(); err != nil {
		return n, fmt.Errorf("flush output: %w", err)
	}
	return n, nil
}

// Literal renders v as a PostgreSQL literal. Strings and timestamps are
// quoted, nil becomes NULL and numbers are written verbatim.
func Literal(v any) string {
	switch x := v.(type) {
	case nil:
		return "NULL"
	case string:
		return pq.QuoteLiteral(x)
	case []byte:
		return pq.QuoteLiteral(string(x))
	case time.Time:
		return pq.QuoteLiteral(x.Format("2006-01-02 15:04:05.999999999Z07:00"))
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	default:
		return fmt.Sprint(x)
	}
}
