// Package filestore keeps session snapshots as indented JSON files.
package filestore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/mriduliimm/Gen-AI-bot-for-Ecommerce-Sales-Support/db/session"
)

// Store writes one <id>.json file per snapshot under dir.
type Store struct {
	dir    string
	logger zerolog.Logger
	now    func() time.Time
	create func(path string) (io.WriteCloser, error)
}

func createExclusive(path string) (io.WriteCloser, error) {
	return os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
}

// New creates the output directory if needed.
func New(dir string, logger zerolog.Logger) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create session directory: %w", err)
	}
	return &Store{dir: dir, logger: logger, now: time.Now, create: createExclusive}, nil
}

func (s *Store) Dir() string { return s.dir }

// Path returns the file a session id maps to.
func (s *Store) Path(id string) string {
	return filepath.Join(s.dir, id+".json")
}

// Save writes the snapshot. Two saves in the same second get "_1", "_2"...
// suffixes instead of overwriting.
func (s *Store) Save(ctx context.Context, snap *session.Snapshot) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	session.Prepare(snap, s.now())
	if !session.ValidID(snap.ID) {
		return "", fmt.Errorf("invalid session id %q", snap.ID)
	}

	base := snap.ID
	for attempt := 0; attempt < 1000; attempt++ {
		if attempt > 0 {
			snap.ID = fmt.Sprintf("%s_%d", base, attempt)
		}
		data, err := json.MarshalIndent(snap, "", "  ")
		if err != nil {
			return "", fmt.Errorf("failed to encode session: %w", err)
		}

		path := s.Path(snap.ID)
		f, err := s.create(path)
		if errors.Is(err, fs.ErrExist) {
			continue
		}
		if err != nil {
			return "", fmt.Errorf("failed to create session file: %w", err)
		}
		_, werr := f.Write(data)
		cerr := f.Close()
		if werr == nil {
			werr = cerr
		}
		if werr != nil {
			if rmErr := os.Remove(path); rmErr != nil && !errors.Is(rmErr, fs.ErrNotExist) {
				s.logger.Warn().Err(rmErr).Str("path", path).Msg("Failed to remove partial session file")
			}
			return "", fmt.Errorf("failed to write session file: %w", werr)
		}

		s.logger.Debug().Str("path", path).Msg("Saved session")
		return snap.ID, nil
	}
	return "", fmt.Errorf("failed to allocate session id for %s", base)
}

func (s *Store) Get(ctx context.Context, id string) (*session.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !session.ValidID(id) {
		return nil, session.ErrNotFound
	}
	data, err := os.ReadFile(s.Path(id))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, session.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read session: %w", err)
	}

	var snap session.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("failed to decode session %s: %w", id, err)
	}
	if snap.ID == "" {
		snap.ID = id
	}
	return &snap, nil
}

// List returns summaries newest first. limit <= 0 means all.
func (s *Store) List(ctx context.Context, limit int) ([]session.Summary, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}

	out := make([]session.Summary, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !strings.HasPrefix(e.Name(), "session_") || filepath.Ext(e.Name()) != ".json" {
			continue
		}
		snap, err := s.Get(ctx, strings.TrimSuffix(e.Name(), ".json"))
		if err != nil {
			s.logger.Warn().Err(err).Str("file", e.Name()).Msg("Skipping unreadable session")
			continue
		}
		out = append(out, snap.Summarize())
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *Store) Close() error { return nil }
