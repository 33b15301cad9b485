package workspace

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	perrors "github.com/mriduliimm/Gen-AI-bot-for-Ecommerce-Sales-Support/pkg/errors"
)

const catalogV1 = "sku,name,features,regions,price\nA,Analytics,analytics,IN,100\n"
const catalogV2 = "sku,name,features,regions,price\nA,Analytics,analytics,IN,100\nB,Chat,chat,,50\n"

func writeSources(t *testing.T) Sources {
	t.Helper()
	dir := t.TempDir()
	src := Sources{
		Catalog:      filepath.Join(dir, "data", "products.csv"),
		PricingRules: filepath.Join(dir, "data", "pricing.json"),
		KnowledgeDir: filepath.Join(dir, "kb"),
	}
	require.NoError(t, os.MkdirAll(filepath.Dir(src.Catalog), 0o755))
	require.NoError(t, os.MkdirAll(src.KnowledgeDir, 0o755))
	require.NoError(t, os.WriteFile(src.Catalog, []byte(catalogV1), 0o644))
	require.NoError(t, os.WriteFile(src.PricingRules, []byte(`{"max_discount_pct":20,"tax_pct":18}`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(src.KnowledgeDir, "faq.md"), []byte("analytics onboarding faq"), 0o644))
	return src
}

func TestLoad(t *testing.T) {
	snap, err := Load(writeSources(t), zerolog.Nop())
	require.NoError(t, err)

	assert.Equal(t, 1, snap.Catalog.Len())
	assert.Equal(t, 2, snap.Index.Len())
	assert.Equal(t, "18", snap.Rules.TaxPct.String())

	hits := snap.Search("analytics faq", 5)
	require.NotEmpty(t, hits)
	assert.Equal(t, "kb/faq.md", hits[0].SourceID)

	hits[0].SourceID = "mutated"
	assert.Equal(t, "kb/faq.md", snap.Search("analytics faq", 5)[0].SourceID)
}

func TestLoadMissingRules(t *testing.T) {
	src := writeSources(t)
	require.NoError(t, os.Remove(src.PricingRules))

	_, err := Load(src, zerolog.Nop())
	assert.True(t, errors.Is(err, perrors.ErrConfig))
}

func TestHolderReload(t *testing.T) {
	src := writeSources(t)
	h, err := NewHolder(src, zerolog.Nop())
	require.NoError(t, err)
	first := h.Current()

	var reported []error
	h.OnReload = func(err error) { reported = append(reported, err) }

	require.NoError(t, os.WriteFile(src.Catalog, []byte(catalogV2), 0o644))
	require.NoError(t, h.Reload())
	assert.Equal(t, 2, h.Current().Catalog.Len())
	assert.NotSame(t, first, h.Current())
	assert.Equal(t, 1, first.Catalog.Len())
	assert.EqualValues(t, 1, h.Reloads())

	require.NoError(t, os.WriteFile(src.Catalog, []byte("sku,price\nX,-1\n"), 0o644))
	err = h.Reload()
	assert.True(t, errors.Is(err, perrors.ErrLoad))
	assert.Equal(t, 2, h.Current().Catalog.Len())
	assert.EqualValues(t, 1, h.Reloads())

	require.Len(t, reported, 2)
	assert.NoError(t, reported[0])
	assert.Error(t, reported[1])
}

func TestStaticHolderCannotReload(t *testing.T) {
	snap, err := Load(writeSources(t), zerolog.Nop())
	require.NoError(t, err)

	h := NewStaticHolder(snap)
	assert.Same(t, snap, h.Current())
	assert.Error(t, h.Reload())
}

func TestWatchReloadsOnChange(t *testing.T) {
	src := writeSources(t)
	h, err := NewHolder(src, zerolog.Nop())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- h.Watch(ctx, 20*time.Millisecond) }()

	require.Eventually(t, func() bool {
		_ = os.WriteFile(src.Catalog, []byte(catalogV2), 0o644)
		return h.Current().Catalog.Len() == 2
	}, 5*time.Second, 100*time.Millisecond)

	cancel()
	assert.NoError(t, <-done)
}

func TestWatchDirs(t *testing.T) {
	src := writeSources(t)
	require.NoError(t, os.MkdirAll(filepath.Join(src.KnowledgeDir, "guides"), 0o755))

	h := &Holder{src: src, logger: zerolog.Nop()}
	dirs := h.watchDirs()

	assert.Equal(t, []string{
		filepath.Dir(src.Catalog),
		src.KnowledgeDir,
		filepath.Join(src.KnowledgeDir, "guides"),
	}, dirs)
}
