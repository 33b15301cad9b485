// Package postgres provides a PostgreSQL implementation of session.Store.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/mriduliimm/Gen-AI-bot-for-Ecommerce-Sales-Support/db/session"
)

// Schema creates the sessions table.
const Schema = `
CREATE TABLE IF NOT EXISTS proposal_sessions (
	id            TEXT PRIMARY KEY,
	created_at    TIMESTAMPTZ NOT NULL,
	company       TEXT NOT NULL,
	currency      TEXT NOT NULL DEFAULT '',
	total         NUMERIC(18, 4) NOT NULL DEFAULT 0,
	catalog_hash  TEXT NOT NULL DEFAULT '',
	citations     TEXT[] NOT NULL DEFAULT '{}',
	payload       JSONB NOT NULL
);
CREATE INDEX IF NOT EXISTS proposal_sessions_created_at_idx ON proposal_sessions (created_at DESC);
`

// Store implements session.Store on database/sql with the lib/pq driver.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open connects with dsn and ensures the schema exists.
func Open(ctx context.Context, dsn string) (*Store, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}
	s := &Store{db: db, now: time.Now}
	if _, err := db.ExecContext(ctx, Schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create proposal_sessions: %w", err)
	}
	return s, nil
}

func (s *Store) Ping(ctx context.Context) error { return s.db.PingContext(ctx) }

func (s *Store) Close() error { return s.db.Close() }

// Save inserts the snapshot, suffixing the id on primary key conflict.
func (s *Store) Save(ctx context.Context, snap *session.Snapshot) (string, error) {
	session.Prepare(snap, s.now())
	base := snap.ID

	for attempt := 0; attempt < 1000; attempt++ {
		if attempt > 0 {
			snap.ID = fmt.Sprintf("%s_%d", base, attempt)
		}
		payload, err := json.Marshal(snap)
		if err != nil {
			return "", fmt.Errorf("failed to encode session: %w", err)
		}
		sum := snap.Summarize()
		citations := snap.Plan.Citations
		if citations == nil {
			citations = []string{}
		}

		_, err = s.db.ExecContext(ctx, `
			INSERT INTO proposal_sessions (id, created_at, company, currency, total, catalog_hash, citations, payload)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			snap.ID, snap.CreatedAt, sum.Company, sum.Currency, sum.Total.String(),
			snap.CatalogHash, pq.Array(citations), payload,
		)
		if isUniqueViolation(err) {
			continue
		}
		if err != nil {
			return "", fmt.Errorf("failed to insert session: %w", err)
		}
		return snap.ID, nil
	}
	return "", fmt.Errorf("failed to allocate session id for %s", base)
}

func (s *Store) Get(ctx context.Context, id string) (*session.Snapshot, error) {
	var payload []byte
	err := s.db.QueryRowContext(ctx, `SELECT payload FROM proposal_sessions WHERE id = $1`, id).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, session.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	var snap session.Snapshot
	if err := json.Unmarshal(payload, &snap); err != nil {
		return nil, fmt.Errorf("failed to decode session %s: %w", id, err)
	}
	return &snap, nil
}

func (s *Store) List(ctx context.Context, limit int) ([]session.Summary, error) {
	if limit <= 0 {
		limit = 1000
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, created_at, company, currency, total::text
		FROM proposal_sessions
		ORDER BY created_at DESC, id DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	out := make([]session.Summary, 0)
	for rows.Next() {
		var sum session.Summary
		var total string
		if err := rows.Scan(&sum.ID, &sum.CreatedAt, &sum.Company, &sum.Currency, &total); err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		if err := sum.Total.Scan(total); err != nil {
			return nil, fmt.Errorf("failed to parse total for %s: %w", sum.ID, err)
		}
		out = append(out, sum)
	}
	return out, rows.Err()
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}
