package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mriduliimm/Gen-AI-bot-for-Ecommerce-Sales-Support/db/filestore"
	perrors "github.com/mriduliimm/Gen-AI-bot-for-Ecommerce-Sales-Support/pkg/errors"
)

func TestParseItem(t *testing.T) {
	tests := []struct {
		raw     string
		sku     string
		qty     string
		wantErr bool
	}{
		{raw: "AN-100", sku: "AN-100", qty: "1"},
		{raw: " AN-100:3 ", sku: "AN-100", qty: "3"},
		{raw: "AN-100:2.5", sku: "AN-100", qty: "2.5"},
		{raw: "AN-100:0", wantErr: true},
		{raw: "AN-100:x", wantErr: true},
		{raw: ":2", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			item, err := parseItem(tt.raw)
			if tt.wantErr {
				assert.True(t, perrors.IsValidation(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.sku, item.SKU)
			assert.True(t, item.Qty.Equal(decimal.RequireFromString(tt.qty)))
		})
	}
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"chat", "analytics", "crm"}, splitList([]string{"chat, analytics", " crm ", ""}))
	assert.Empty(t, splitList(nil))
}

func TestReadCustomerFile(t *testing.T) {
	dir := t.TempDir()

	yamlPath := filepath.Join(dir, "acme.yaml")
	require.NoError(t, os.WriteFile(yamlPath, []byte(`company: Acme Retail
industry: Retail
use_case: customer analytics
objectives: [reduce churn, lift conversion]
budget_max: 250000
must_have: [analytics]
`), 0o644))

	f, err := readCustomerFile(yamlPath)
	require.NoError(t, err)
	c := f.customer()
	assert.Equal(t, "Acme Retail", c.Company)
	assert.Equal(t, []string{"reduce churn", "lift conversion"}, c.Objectives)
	require.NotNil(t, c.BudgetMax)
	assert.Equal(t, "250000", c.BudgetMax.String())
	assert.Nil(t, c.BudgetMin)
	assert.Equal(t, []string{"analytics"}, f.MustHave)

	jsonPath := filepath.Join(dir, "beta.json")
	require.NoError(t, os.WriteFile(jsonPath, []byte(`{"company": "Beta", "industry": "Media", "use_case": "chat", "budget_min": 1000}`), 0o644))
	f, err = readCustomerFile(jsonPath)
	require.NoError(t, err)
	assert.Equal(t, "Beta", f.Company)
	assert.Equal(t, "1000", f.customer().BudgetMin.String())

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{`), 0o644))
	_, err = readCustomerFile(bad)
	assert.Error(t, err)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcd...", truncate("abcdefghij", 7))
}

func writeWorkspace(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		"data/products.csv": "sku,name,features,regions,price\nAN-100,Analytics Suite,analytics dashboards,IN,100000\n",
		"data/pricing.json": `{"max_discount_pct": 20, "tax_pct": 18}`,
		"kb/playbook.md":    "Analytics playbook for retail churn.",
	}
	for name, body := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	}
	return dir
}

func TestGenerateCommand(t *testing.T) {
	dir := writeWorkspace(t)
	out := filepath.Join(dir, "out")

	err := newApp().Run([]string{
		"proposalgen",
		"--log-level", "error",
		"--catalog", filepath.Join(dir, "data/products.csv"),
		"--pricing-rules", filepath.Join(dir, "data/pricing.json"),
		"--kb-dir", filepath.Join(dir, "kb"),
		"--out-dir", out,
		"generate",
		"--company", "Acme Retail",
		"--industry", "Retail",
		"--use-case", "customer analytics",
		"--objective", "reduce churn",
		"--must-have", "analytics",
		"--format", "json",
		"--docx",
	})
	require.NoError(t, err)

	assert.FileExists(t, filepath.Join(out, "proposal_Acme_Retail.docx"))

	store, err := filestore.New(out, zerolog.Nop())
	require.NoError(t, err)
	list, err := store.List(t.Context(), 0)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Acme Retail", list[0].Company)
	assert.Equal(t, "106200.00", list[0].Total.StringFixed(2))
}
