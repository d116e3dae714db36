// Package journal keeps a local SQLite history of finished mutations, so a
// user can see what was added, renamed or deleted and why something failed.
package journal

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure-Go SQLite driver.

	"github.com/papapumpkin/sarf/internal/api"
	"github.com/papapumpkin/sarf/internal/mutation"
)

const schema = `
CREATE TABLE IF NOT EXISTS mutations (
    id          INTEGER PRIMARY KEY AUTOINCREMENT,
    target      TEXT NOT NULL,
    name        TEXT NOT NULL,
    op          TEXT NOT NULL,
    state       TEXT NOT NULL,
    reason_kind TEXT NOT NULL DEFAULT '',
    reason      TEXT NOT NULL DEFAULT '',
    warning     TEXT NOT NULL DEFAULT '',
    at          TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS mutations_at ON mutations (at);
`

// timeLayout is fixed-width so that timestamps sort as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// DefaultLimit is how many entries Recent returns for a non-positive limit.
const DefaultLimit = 20

// Entry is one recorded outcome.
type Entry struct {
	ID int64
	mutation.Outcome
}

// Journal is a mutation.OutcomeSink backed by SQLite.
type Journal struct {
	db *sql.DB
}

// Open opens (or creates) the journal database at path.
func Open(ctx context.Context, path string) (*Journal, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("journal: create dir: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("journal: open database: %w", err)
	}
	// SQLite has a single writer.
	db.SetMaxOpenConns(1)

	for _, pragma := range []string{"PRAGMA journal_mode=WAL", "PRAGMA busy_timeout=5000"} {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("journal: %s: %w", pragma, err)
		}
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("journal: create schema: %w", err)
	}
	return &Journal{db: db}, nil
}

// Record stores a terminal outcome.
func (j *Journal) Record(ctx context.Context, o mutation.Outcome) error {
	var kind, reason string
	if o.Failure != nil {
		kind, reason = string(o.Failure.Kind), o.Failure.Reason
	}
	at := o.At
	if at.IsZero() {
		at = time.Now()
	}
	const q = `
		INSERT INTO mutations (target, name, op, state, reason_kind, reason, warning, at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := j.db.ExecContext(ctx, q,
		string(o.Key.Target), o.Key.Name, string(o.Op), o.State.String(),
		kind, reason, o.Warning, at.UTC().Format(timeLayout))
	if err != nil {
		return fmt.Errorf("journal: record %s: %w", o.Key, err)
	}
	return nil
}

// Recent returns up to limit entries, newest first.
func (j *Journal) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	const q = `
		SELECT id, target, name, op, state, reason_kind, reason, warning, at
		FROM mutations
		ORDER BY at DESC, id DESC
		LIMIT ?`
	rows, err := j.db.QueryContext(ctx, q, limit)
	if err != nil {
		return nil, fmt.Errorf("journal: query recent: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var (
			e                           Entry
			target, op, state, kind, at string
			reason                      string
		)
		if err := rows.Scan(&e.ID, &target, &e.Key.Name, &op, &state, &kind, &reason, &e.Warning, &at); err != nil {
			return nil, fmt.Errorf("journal: scan entry: %w", err)
		}
		e.Key.Target = mutation.Target(target)
		e.Op = mutation.Op(op)
		e.State = parseState(state)
		if kind != "" || reason != "" {
			e.Failure = &mutation.Failure{Kind: api.Kind(kind), Reason: reason}
		}
		if e.At, err = time.Parse(timeLayout, at); err != nil {
			return nil, fmt.Errorf("journal: entry %d: bad timestamp %q: %w", e.ID, at, err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("journal: iterate entries: %w", err)
	}
	return out, nil
}

// Close closes the database.
func (j *Journal) Close() error {
	if err := j.db.Close(); err != nil {
		return fmt.Errorf("journal: close: %w", err)
	}
	return nil
}

func parseState(s string) mutation.State {
	for _, st := range []mutation.State{mutation.Succeeded, mutation.Failed, mutation.Executing, mutation.Confirming} {
		if st.String() == s {
			return st
		}
	}
	return mutation.Idle
}
