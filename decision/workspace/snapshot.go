// Package workspace loads the catalog, retrieval index and pricing rules as one
// immutable snapshot and swaps it atomically on reload.
package workspace

import (
	"fmt"
	"strconv"
	"sync/atomic"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/rs/zerolog"

	"github.com/mriduliimm/Gen-AI-bot-for-Ecommerce-Sales-Support/decision/catalog"
	"github.com/mriduliimm/Gen-AI-bot-for-Ecommerce-Sales-Support/decision/retrieval"
	"github.com/mriduliimm/Gen-AI-bot-for-Ecommerce-Sales-Support/decision/pricing"
)

// DefaultCacheSize is the number of search results kept per snapshot.
const DefaultCacheSize = 256

// Sources locates the files a snapshot is built from.
type Sources struct {
	Catalog          string
	PricingRules     string
	KnowledgeDir     string
	KnowledgePattern string
	CacheSize        int
}

// Snapshot is a consistent, read-only view of the loaded data.
type Snapshot struct {
	Catalog  *catalog.Catalog
	Index    *retrieval.Index
	Rules    pricing.Rules
	LoadedAt time.Time

	cache *lru.Cache[string, []retrieval.Snippet]
}

// Load builds a snapshot from src.
func Load(src Sources, logger zerolog.Logger) (*Snapshot, error) {
	cat, err := catalog.Load(src.Catalog)
	if err != nil {
		return nil, err
	}
	rules, err := pricing.LoadRules(src.PricingRules)
	if err != nil {
		return nil, err
	}
	docs, err := retrieval.LoadKnowledge(src.KnowledgeDir, src.KnowledgePattern)
	if err != nil {
		return nil, err
	}

	idx, err := retrieval.NewBuilder(logger).
		AddProducts(cat.Products()).
		AddDocuments(docs...).
		Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build retrieval index: %w", err)
	}

	snap, err := NewSnapshot(cat, idx, rules, src.CacheSize)
	if err != nil {
		return nil, err
	}

	logger.Info().
		Int("products", cat.Len()).
		Int("knowledge_docs", len(docs)).
		Str("catalog_hash", cat.Hash()[:12]).
		Msg("Workspace loaded")
	return snap, nil
}

// NewSnapshot assembles a snapshot from already-loaded parts.
func NewSnapshot(cat *catalog.Catalog, idx *retrieval.Index, rules pricing.Rules, cacheSize int) (*Snapshot, error) {
	if cacheSize <= 0 {
		cacheSize = DefaultCacheSize
	}
	cache, err := lru.New[string, []retrieval.Snippet](cacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create search cache: %w", err)
	}
	return &Snapshot{
		Catalog:  cat,
		Index:    idx,
		Rules:    rules,
		LoadedAt: time.Now(),
		cache:    cache,
	}, nil
}

// Search queries the index through the snapshot's result cache.
func (s *Snapshot) Search(query string, k int) []retrieval.Snippet {
	key := strconv.Itoa(k) + "\x00" + query
	if hits, ok := s.cache.Get(key); ok {
		return append([]retrieval.Snippet{}, hits...)
	}
	hits := s.Index.Search(query, k)
	s.cache.Add(key, hits)
	return append([]retrieval.Snippet{}, hits...)
}

// Holder publishes the current snapshot to concurrent readers.
type Holder struct {
	src     Sources
	logger  zerolog.Logger
	current atomic.Pointer[Snapshot]
	reloads atomic.Int64

	// OnReload, if set, is called after every reload attempt.
	OnReload func(err error)
}

// NewHolder loads the initial snapshot.
func NewHolder(src Sources, logger zerolog.Logger) (*Holder, error) {
	h := &Holder{src: src, logger: logger}
	snap, err := Load(src, logger)
	if err != nil {
		return nil, err
	}
	h.current.Store(snap)
	return h, nil
}

// NewStaticHolder wraps a prebuilt snapshot. Reload is a no-op error.
func NewStaticHolder(snap *Snapshot) *Holder {
	h := &Holder{logger: zerolog.Nop()}
	h.current.Store(snap)
	return h
}

// Current returns the published snapshot.
func (h *Holder) Current() *Snapshot {
	return h.current.Load()
}

// Reload builds a new snapshot and publishes it. On failure the previous
// snapshot stays current.
func (h *Holder) Reload() error {
	if h.src.Catalog == "" {
		return fmt.Errorf("workspace has no sources to reload")
	}
	snap, err := Load(h.src, h.logger)
	if h.OnReload != nil {
		defer h.OnReload(err)
	}
	if err != nil {
		h.logger.Warn().Err(err).Msg("Reload failed, keeping previous workspace")
		return err
	}
	h.current.Store(snap)
	h.reloads.Add(1)
	return nil
}

// Reloads counts successful reloads.
func (h *Holder) Reloads() int64 { return h.reloads.Load() }
