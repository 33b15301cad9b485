package retrieval

import (
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mriduliimm/Gen-AI-bot-for-Ecommerce-Sales-Support/decision/catalog"
)

func buildIndex(t *testing.T, docs ...Document) *Index {
	t.Helper()
	idx, err := NewBuilder(zerolog.Nop()).AddDocuments(docs...).Build()
	require.NoError(t, err)
	return idx
}

func TestTokenizer(t *testing.T) {
	tok, err := NewTokenizer()
	require.NoError(t, err)

	got := tok.Tokens("The Analytics-Dashboard, for a 24x7 support_desk! I")
	assert.Equal(t, []string{"analytics", "dashboard", "24x7", "support_desk"}, got)
	assert.Empty(t, tok.Tokens("   "))
}

func TestSearchEmptyQueryOrK(t *testing.T) {
	idx := buildIndex(t, Document{ID: "a", Text: "analytics dashboards"})

	assert.Empty(t, idx.Search("", 5))
	assert.Empty(t, idx.Search("   \n", 5))
	assert.Empty(t, idx.Search("analytics", 0))
	assert.Empty(t, idx.Search("analytics", -1))
	assert.NotNil(t, idx.Search("", 5))
}

func TestSearchRanking(t *testing.T) {
	idx := buildIndex(t,
		Document{ID: "chat", Text: "live chat widget for customer support"},
		Document{ID: "analytics", Text: "analytics dashboards and analytics reports"},
		Document{ID: "mixed", Text: "analytics for chat transcripts"},
	)

	hits := idx.Search("analytics dashboards", 3)
	require.Len(t, hits, 3)
	assert.Equal(t, "analytics", hits[0].SourceID)
	assert.Equal(t, "mixed", hits[1].SourceID)
	assert.Equal(t, "chat", hits[2].SourceID)
	assert.Zero(t, hits[2].Score)

	for i := 1; i < len(hits); i++ {
		assert.GreaterOrEqual(t, hits[i-1].Score, hits[i].Score)
	}
	assert.LessOrEqual(t, hits[0].Score, 1.0+1e-9)
}

func TestSearchCountAndTies(t *testing.T) {
	idx := buildIndex(t,
		Document{ID: "one", Text: "alpha"},
		Document{ID: "two", Text: "beta"},
		Document{ID: "three", Text: "gamma"},
	)

	assert.Len(t, idx.Search("alpha", 2), 2)
	assert.Len(t, idx.Search("alpha", 10), 3)

	hits := idx.Search("unrelated words only", 3)
	require.Len(t, hits, 3)
	assert.Equal(t, "one", hits[0].SourceID)
	assert.Equal(t, "two", hits[1].SourceID)
	assert.Equal(t, "three", hits[2].SourceID)
}

func TestSearchIdenticalDocumentScoresOne(t *testing.T) {
	idx := buildIndex(t,
		Document{ID: "a", Text: "invoice automation platform"},
		Document{ID: "b", Text: "mobile checkout"},
	)
	hits := idx.Search("invoice automation platform", 1)
	require.Len(t, hits, 1)
	assert.Equal(t, "a", hits[0].SourceID)
	assert.InDelta(t, 1.0, hits[0].Score, 1e-9)
}

func TestAddProducts(t *testing.T) {
	products := []catalog.Product{
		{SKU: "A", Name: "Analytics Suite", Features: "dashboards", Price: decimal.NewFromInt(1)},
	}
	idx, err := NewBuilder(zerolog.Nop()).AddProducts(products).Build()
	require.NoError(t, err)

	docs := idx.Documents()
	require.Len(t, docs, 1)
	assert.Equal(t, "products#A", docs[0].ID)
	assert.Equal(t, "SKU: A\nName: Analytics Suite\nFeatures: dashboards\nBenefits: \nCategory: \nPrereqs: ", docs[0].Text)
}

func TestLoadKnowledgeFS(t *testing.T) {
	fsys := fstest.MapFS{
		"onboarding.md":      {Data: []byte("onboarding checklist")},
		"guides/security.md": {Data: []byte("security review")},
		"notes.txt":          {Data: []byte("ignored")},
	}

	docs, err := loadKnowledgeFS(fsys, "kb", DefaultKnowledgePattern)
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "kb/guides/security.md", docs[0].ID)
	assert.Equal(t, "kb/onboarding.md", docs[1].ID)
}

func TestLoadKnowledgeDir(t *testing.T) {
	root := filepath.Join(t.TempDir(), "kb")
	require.NoError(t, os.MkdirAll(root, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "faq.md"), []byte("pricing faq"), 0o644))

	docs, err := LoadKnowledge(root, "")
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "kb/faq.md", docs[0].ID)

	missing, err := LoadKnowledge(filepath.Join(t.TempDir(), "absent"), "")
	require.NoError(t, err)
	assert.Empty(t, missing)
}
