package proposal

import (
	"archive/zip"
	"bytes"
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mriduliimm/Gen-AI-bot-for-Ecommerce-Sales-Support/db/filestore"
	"github.com/mriduliimm/Gen-AI-bot-for-Ecommerce-Sales-Support/decision/catalog"
	"github.com/mriduliimm/Gen-AI-bot-for-Ecommerce-Sales-Support/decision/compliance"
	"github.com/mriduliimm/Gen-AI-bot-for-Ecommerce-Sales-Support/decision/policy"
	"github.com/mriduliimm/Gen-AI-bot-for-Ecommerce-Sales-Support/decision/pricing"
	"github.com/mriduliimm/Gen-AI-bot-for-Ecommerce-Sales-Support/decision/retrieval"
	"github.com/mriduliimm/Gen-AI-bot-for-Ecommerce-Sales-Support/decision/workspace"
	perrors "github.com/mriduliimm/Gen-AI-bot-for-Ecommerce-Sales-Support/pkg/errors"
	"github.com/mriduliimm/Gen-AI-bot-for-Ecommerce-Sales-Support/pkg/api"
)

func dp(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func newHolder(t *testing.T) *workspace.Holder {
	t.Helper()
	cat := catalog.New([]catalog.Product{
		{SKU: "A", Name: "Analytics Suite", Features: "analytics dashboards", Regions: "IN;US", Price: decimal.NewFromInt(100000)},
		{SKU: "B", Name: "Chat Widget", Features: "chat", Regions: "US", Price: decimal.NewFromInt(50000)},
	})
	idx, err := retrieval.NewBuilder(zerolog.Nop()).
		AddProducts(cat.Products()).
		AddDocuments(retrieval.Document{ID: "kb/analytics.md", Text: "Customer analytics playbook for churn reduction"}).
		Build()
	require.NoError(t, err)

	snap, err := workspace.NewSnapshot(cat, idx, pricing.Rules{MaxDiscountPct: decimal.NewFromInt(20), TaxPct: decimal.NewFromInt(18)}, 16)
	require.NoError(t, err)
	return workspace.NewStaticHolder(snap)
}

func customer() api.Customer {
	return api.Customer{
		Company:    "Acme Retail",
		Industry:   "Retail",
		Region:     "IN",
		UseCase:    "customer analytics",
		Objectives: []string{"reduce churn"},
	}
}

func TestGenerate(t *testing.T) {
	store, err := filestore.New(t.TempDir(), zerolog.Nop())
	require.NoError(t, err)
	g := NewGenerator(newHolder(t), Options{Store: store})

	res, err := g.Generate(context.Background(), Request{
		Customer:    customer(),
		MustHave:    []string{"analytics"},
		DiscountPct: dp("35"),
		Save:        true,
	})
	require.NoError(t, err)

	require.Len(t, res.Shortlist, 1)
	assert.False(t, res.UsedFallback)
	assert.Equal(t, "customer analytics\nreduce churn\n", res.Query)
	require.NotEmpty(t, res.Snippets)
	assert.Equal(t, "A", res.Plan.SelectedSKUs[0].SKU)

	assert.Equal(t, "INR", res.Pricing.Currency)
	assert.True(t, res.Pricing.DiscountPct.Equal(decimal.NewFromInt(20)))
	assert.Equal(t, "94400.00", res.Pricing.Total.StringFixed(2))

	assert.Contains(t, res.Markdown, "Analytics Suite")
	assert.Equal(t, []string{}, res.Claims)
	assert.Equal(t, policy.DecisionPass, res.Policy.Decision)
	assert.Equal(t, 8, res.Plan.Customer.TimelineWeeks)

	require.NotEmpty(t, res.SessionID)
	saved, err := store.Get(context.Background(), res.SessionID)
	require.NoError(t, err)
	assert.Equal(t, res.CatalogHash, saved.CatalogHash)
	assert.True(t, saved.Pricing.Total.Equal(res.Pricing.Total))
}

func TestGenerateFallsBackToFullCatalog(t *testing.T) {
	g := NewGenerator(newHolder(t), Options{})

	res, err := g.Generate(context.Background(), Request{
		Customer: customer(),
		MustHave: []string{"blockchain"},
	})
	require.NoError(t, err)

	assert.True(t, res.UsedFallback)
	assert.Len(t, res.Shortlist, 2)
	assert.Len(t, res.Plan.SelectedSKUs, 2)
	assert.True(t, res.Pricing.DiscountPct.Equal(decimal.NewFromInt(10)))
	assert.Equal(t, policy.DecisionWarn, res.Policy.Decision)
	assert.Empty(t, res.SessionID)
}

func TestNewGeneratorDefaults(t *testing.T) {
	g := NewGenerator(newHolder(t), Options{})
	assert.Equal(t, "INR", g.Defaults().Currency)
	assert.True(t, g.Defaults().DiscountPct.Equal(decimal.NewFromInt(10)))
	assert.Equal(t, 5, g.Defaults().TopK)

	res, err := g.Generate(context.Background(), Request{Customer: customer(), MustHave: []string{"analytics"}})
	require.NoError(t, err)
	assert.True(t, res.Pricing.DiscountPct.Equal(decimal.NewFromInt(10)))
	assert.Equal(t, "106200.00", res.Pricing.Total.StringFixed(2))

	zero := NewGenerator(newHolder(t), Options{Defaults: &Defaults{}})
	assert.True(t, zero.Defaults().DiscountPct.IsZero())
	assert.Equal(t, "INR", zero.Defaults().Currency)
	assert.Equal(t, 5, zero.Defaults().TopK)

	res, err = zero.Generate(context.Background(), Request{Customer: customer(), MustHave: []string{"analytics"}})
	require.NoError(t, err)
	assert.True(t, res.Pricing.DiscountPct.IsZero())
	assert.Equal(t, "118000.00", res.Pricing.Total.StringFixed(2))
}

func TestGenerateFlagsBannedClaims(t *testing.T) {
	c := customer()
	c.UseCase = "unlimited analytics"
	g := NewGenerator(newHolder(t), Options{Checker: compliance.NewChecker()})

	res, err := g.Generate(context.Background(), Request{Customer: c})
	require.NoError(t, err)

	assert.Equal(t, []string{"unlimited"}, res.Claims)
	assert.Equal(t, policy.DecisionDeny, res.Policy.Decision)
}

func TestGenerateRejectsInvalidCustomer(t *testing.T) {
	g := NewGenerator(newHolder(t), Options{})
	_, err := g.Generate(context.Background(), Request{Customer: api.Customer{Company: "X"}})
	assert.True(t, perrors.IsValidation(err))
}

func TestDocument(t *testing.T) {
	store, err := filestore.New(t.TempDir(), zerolog.Nop())
	require.NoError(t, err)
	g := NewGenerator(newHolder(t), Options{Store: store})

	res, err := g.Generate(context.Background(), Request{Customer: customer(), MustHave: []string{"analytics"}, Save: true})
	require.NoError(t, err)

	md, r, err := g.Document(context.Background(), res.SessionID, "markdown")
	require.NoError(t, err)
	assert.Equal(t, "md", r.Extension())
	assert.Equal(t, res.Markdown, string(md))

	docx, _, err := g.Document(context.Background(), res.SessionID, "docx")
	require.NoError(t, err)
	_, err = zip.NewReader(bytes.NewReader(docx), int64(len(docx)))
	assert.NoError(t, err)

	_, _, err = g.Document(context.Background(), "session_1", "pdf")
	assert.Error(t, err)
}
