// Package session defines the persisted record of a generated proposal and
// the store contract its backends implement.
package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mriduliimm/Gen-AI-bot-for-Ecommerce-Sales-Support/decision/pricing"
	"github.com/mriduliimm/Gen-AI-bot-for-Ecommerce-Sales-Support/pkg/api"
)

// ErrNotFound is returned by Get for an unknown id.
var ErrNotFound = errors.New("session not found")

// Snapshot is a saved proposal: the customer, the plan and the quote, plus
// the hash of the catalog they were built from.
type Snapshot struct {
	ID          string             `json:"id"`
	CreatedAt   time.Time          `json:"created_at"`
	CatalogHash string             `json:"catalog_hash"`
	Customer    api.Customer       `json:"customer"`
	Plan        api.Plan           `json:"plan"`
	Pricing     *pricing.Breakdown `json:"pricing"`
}

// Summary is the listing view of a snapshot.
type Summary struct {
	ID        string          `json:"id"`
	CreatedAt time.Time       `json:"created_at"`
	Company   string          `json:"company"`
	Currency  string          `json:"currency"`
	Total     decimal.Decimal `json:"total"`
}

// Summarize builds the listing view.
func (s *Snapshot) Summarize() Summary {
	sum := Summary{ID: s.ID, CreatedAt: s.CreatedAt, Company: s.Customer.Company}
	if s.Pricing != nil {
		sum.Currency = s.Pricing.Currency
		sum.Total = s.Pricing.Total
	}
	return sum
}

// Store persists snapshots. Save assigns ID and CreatedAt when empty and
// returns the final ID.
type Store interface {
	Save(ctx context.Context, snap *Snapshot) (string, error)
	Get(ctx context.Context, id string) (*Snapshot, error)
	List(ctx context.Context, limit int) ([]Summary, error)
	Close() error
}

// NewID derives a session id from a timestamp.
func NewID(t time.Time) string {
	return fmt.Sprintf("session_%d", t.Unix())
}

// Prepare fills ID and CreatedAt if unset.
func Prepare(snap *Snapshot, now time.Time) {
	if snap.CreatedAt.IsZero() {
		snap.CreatedAt = now.UTC()
	}
	if snap.ID == "" {
		snap.ID = NewID(snap.CreatedAt)
	}
}

// ValidID reports whether id is safe to use as a file or object name.
func ValidID(id string) bool {
	if id == "" || len(id) > 128 {
		return false
	}
	for _, r := range id {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '-':
		default:
			return false
		}
	}
	return true
}

// BatchSaver is implemented by stores that can load many snapshots at once.
type BatchSaver interface {
	SaveBatch(ctx context.Context, snaps []*Snapshot) error
}

// Copy moves every snapshot listed by src into dst, using SaveBatch when dst
// supports it. Ids are kept. Returns the number copied.
func Copy(ctx context.Context, dst, src Store) (int, error) {
	list, err := src.List(ctx, 0)
	if err != nil {
		return 0, fmt.Errorf("failed to list source sessions: %w", err)
	}

	snaps := make([]*Snapshot, 0, len(list))
	for _, sum := range list {
		snap, err := src.Get(ctx, sum.ID)
		if err != nil {
			return 0, fmt.Errorf("failed to read session %s: %w", sum.ID, err)
		}
		snaps = append(snaps, snap)
	}

	if b, ok := dst.(BatchSaver); ok {
		if err := b.SaveBatch(ctx, snaps); err != nil {
			return 0, fmt.Errorf("failed to save batch: %w", err)
		}
		return len(snaps), nil
	}
	for i, snap := range snaps {
		if _, err := dst.Save(ctx, snap); err != nil {
			return i, fmt.Errorf("failed to save session %s: %w", snap.ID, err)
		}
	}
	return len(snaps), nil
}
