// Package clickhouse provides a ClickHouse implementation of session.Store.
// Sessions land in a ReplacingMergeTree table for reporting over past quotes.
package clickhouse

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mriduliimm/Gen-AI-bot-for-Ecommerce-Sales-Support/db/session"
)

// Config holds ClickHouse connection configuration
type Config struct {
	Host     string
	Port     int
	Database string
	Username string
	Password string
	Debug    bool
}

// DefaultConfig returns default development configuration
func DefaultConfig() *Config {
	return &Config{
		Host:     "localhost",
		Port:     9000,
		Database: "proposals",
		Username: "default",
	}
}

// Schema creates the sessions table.
const Schema = `
	CREATE TABLE IF NOT EXISTS proposal_sessions (
		row_id        UUID,
		id            String,
		created_at    DateTime64(3, 'UTC'),
		company       String,
		industry      String,
		currency      String,
		total         Decimal(18, 4),
		catalog_hash  String,
		payload       String,
		_version      UInt64,
		_deleted      UInt8 DEFAULT 0
	) ENGINE = ReplacingMergeTree(_version)
	ORDER BY id
`

// Store implements session.Store using ClickHouse
type Store struct {
	conn clickhouse.Conn
	cfg  *Config
	now  func() time.Time
}

// NewStore connects and ensures the schema exists
func NewStore(ctx context.Context, cfg *Config) (*Store, error) {
	conn, err := clickhouse.Open(&clickhouse.Options{
		Addr: []string{fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)},
		Auth: clickhouse.Auth{
			Database: cfg.Database,
			Username: cfg.Username,
			Password: cfg.Password,
		},
		Debug: cfg.Debug,
		Settings: clickhouse.Settings{
			"max_execution_time": 60,
		},
		Compression: &clickhouse.Compression{
			Method: clickhouse.CompressionLZ4,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to ClickHouse: %w", err)
	}

	s := &Store{conn: conn, cfg: cfg, now: time.Now}
	if err := s.conn.Exec(ctx, Schema); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to create proposal_sessions: %w", err)
	}
	return s, nil
}

// Ping checks database connectivity
func (s *Store) Ping(ctx context.Context) error {
	return s.conn.Ping(ctx)
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.conn.Close()
}

// =============================================================================
// SESSION OPERATIONS
// =============================================================================

// row is the flattened form of a snapshot.
type row struct {
	RowID       uuid.UUID
	ID          string
	CreatedAt   time.Time
	Company     string
	Industry    string
	Currency    string
	Total       decimal.Decimal
	CatalogHash string
	Payload     string
}

func toRow(snap *session.Snapshot) (row, error) {
	payload, err := json.Marshal(snap)
	if err != nil {
		return row{}, fmt.Errorf("failed to encode session: %w", err)
	}
	sum := snap.Summarize()
	return row{
		RowID:       uuid.New(),
		ID:          snap.ID,
		CreatedAt:   snap.CreatedAt,
		Company:     snap.Customer.Company,
		Industry:    snap.Customer.Industry,
		Currency:    sum.Currency,
		Total:       sum.Total,
		CatalogHash: snap.CatalogHash,
		Payload:     string(payload),
	}, nil
}

func fromPayload(payload string) (*session.Snapshot, error) {
	var snap session.Snapshot
	if err := json.Unmarshal([]byte(payload), &snap); err != nil {
		return nil, fmt.Errorf("failed to decode session: %w", err)
	}
	return &snap, nil
}

// Save inserts the snapshot, suffixing the id if it is already taken
func (s *Store) Save(ctx context.Context, snap *session.Snapshot) (string, error) {
	session.Prepare(snap, s.now())

	base := snap.ID
	for attempt := 0; ; attempt++ {
		if attempt > 0 {
			snap.ID = fmt.Sprintf("%s_%d", base, attempt)
		}
		var n uint64
		if err := s.conn.QueryRow(ctx, `SELECT count() FROM proposal_sessions FINAL WHERE id = ? AND _deleted = 0`, snap.ID).Scan(&n); err != nil {
			return "", fmt.Errorf("failed to check session id: %w", err)
		}
		if n == 0 {
			break
		}
	}

	r, err := toRow(snap)
	if err != nil {
		return "", err
	}

	query := `
		INSERT INTO proposal_sessions (
			row_id, id, created_at, company, industry, currency, total,
			catalog_hash, payload, _version
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	if err := s.conn.Exec(ctx, query,
		r.RowID,
		r.ID,
		r.CreatedAt,
		r.Company,
		r.Industry,
		r.Currency,
		r.Total,
		r.CatalogHash,
		r.Payload,
		uint64(s.now().UnixNano()),
	); err != nil {
		return "", fmt.Errorf("failed to insert session: %w", err)
	}
	return snap.ID, nil
}

// Get retrieves a session by id
func (s *Store) Get(ctx context.Context, id string) (*session.Snapshot, error) {
	query := `
		SELECT payload
		FROM proposal_sessions FINAL
		WHERE id = ? AND _deleted = 0
	`
	var payload string
	err := s.conn.QueryRow(ctx, query, id).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, session.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	return fromPayload(payload)
}

// List returns the newest sessions first
func (s *Store) List(ctx context.Context, limit int) ([]session.Summary, error) {
	if limit <= 0 {
		limit = 1000
	}
	query := `
		SELECT id, created_at, company, currency, total
		FROM proposal_sessions FINAL
		WHERE _deleted = 0
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`
	rows, err := s.conn.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	out := make([]session.Summary, 0)
	for rows.Next() {
		var sum session.Summary
		if err := rows.Scan(&sum.ID, &sum.CreatedAt, &sum.Company, &sum.Currency, &sum.Total); err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		out = append(out, sum)
	}
	return out, rows.Err()
}

// SaveBatch bulk-loads sessions, e.g. when migrating from the file store
func (s *Store) SaveBatch(ctx context.Context, snaps []*session.Snapshot) error {
	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO proposal_sessions (
			row_id, id, created_at, company, industry, currency, total,
			catalog_hash, payload, _version
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare batch: %w", err)
	}

	version := uint64(s.now().UnixNano())
	for _, snap := range snaps {
		session.Prepare(snap, s.now())
		r, err := toRow(snap)
		if err != nil {
			return err
		}
		if err := batch.Append(
			r.RowID, r.ID, r.CreatedAt, r.Company, r.Industry, r.Currency, r.Total,
			r.CatalogHash, r.Payload, version,
		); err != nil {
			return fmt.Errorf("failed to append session %s: %w", r.ID, err)
		}
	}
	return batch.Send()
}
