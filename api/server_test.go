package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mriduliimm/Gen-AI-bot-for-Ecommerce-Sales-Support/db/filestore"
	"github.com/mriduliimm/Gen-AI-bot-for-Ecommerce-Sales-Support/decision/proposal"
	"github.com/mriduliimm/Gen-AI-bot-for-Ecommerce-Sales-Support/decision/workspace"
)

const testCatalog = `sku,name,features,benefits,category,regions,prereqs,price
AN-100,Analytics Suite,analytics dashboards,Insight,Analytics,IN;US,,100000
CH-200,Chat Widget,chat support,Faster replies,Support,US,,50000
`

func newTestServer(t *testing.T) (*Server, string) {
	t.Helper()
	dir := t.TempDir()
	write := func(name, body string) string {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
		return path
	}

	src := workspace.Sources{
		Catalog:      write("products.csv", testCatalog),
		PricingRules: write("pricing.json", `{"max_discount_pct": 20, "tax_pct": 18}`),
		KnowledgeDir: filepath.Join(dir, "kb"),
		CacheSize:    8,
	}
	write("kb/analytics.md", "Customer analytics reduces churn for retail brands.")

	holder, err := workspace.NewHolder(src, zerolog.Nop())
	require.NoError(t, err)

	store, err := filestore.New(filepath.Join(dir, "out"), zerolog.Nop())
	require.NoError(t, err)

	gen := proposal.NewGenerator(holder, proposal.Options{Store: store})
	return NewServer(gen, DefaultConfig(), zerolog.Nop()), src.Catalog
}

func do(t *testing.T, s *Server, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v))
}

func TestHealthAndReady(t *testing.T) {
	s, _ := newTestServer(t)

	rec := do(t, s, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"healthy"`)

	rec = do(t, s, http.MethodGet, "/ready", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCatalogEndpoints(t *testing.T) {
	s, _ := newTestServer(t)

	rec := do(t, s, http.MethodGet, "/api/v1/catalog", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var list struct {
		Products []ProductResponse `json:"products"`
	}
	decodeBody(t, rec, &list)
	require.Len(t, list.Products, 2)
	assert.Equal(t, "100000.00", list.Products[0].Price)

	rec = do(t, s, http.MethodGet, "/api/v1/catalog/CH-200", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var p ProductResponse
	decodeBody(t, rec, &p)
	assert.Equal(t, "Chat Widget", p.Name)

	rec = do(t, s, http.MethodGet, "/api/v1/catalog/NOPE", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestShortlist(t *testing.T) {
	s, _ := newTestServer(t)

	rec := do(t, s, http.MethodPost, "/api/v1/shortlist", `{"must_have": ["chat"], "region": "US"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var out struct {
		Products []ProductResponse `json:"products"`
	}
	decodeBody(t, rec, &out)
	require.Len(t, out.Products, 1)
	assert.Equal(t, "CH-200", out.Products[0].SKU)

	rec = do(t, s, http.MethodPost, "/api/v1/shortlist", `{"must_have": ["chat"]}`)
	decodeBody(t, rec, &out)
	assert.Empty(t, out.Products)

	rec = do(t, s, http.MethodPost, "/api/v1/shortlist", `{not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSearch(t *testing.T) {
	s, _ := newTestServer(t)

	rec := do(t, s, http.MethodGet, "/api/v1/search?q=churn+analytics&k=1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var out struct {
		Snippets []struct {
			SourceID string `json:"source_id"`
		} `json:"snippets"`
	}
	decodeBody(t, rec, &out)
	require.Len(t, out.Snippets, 1)
	assert.Equal(t, "kb/analytics.md", out.Snippets[0].SourceID)

	rec = do(t, s, http.MethodGet, "/api/v1/search?q=x&k=abc", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPricing(t *testing.T) {
	s, _ := newTestServer(t)

	rec := do(t, s, http.MethodPost, "/api/v1/pricing",
		`{"items": [{"sku": "AN-100", "qty": 2}], "discount_pct": 35}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var out PricingResponse
	decodeBody(t, rec, &out)
	assert.Equal(t, "INR", out.Currency)
	assert.Equal(t, "200000.00", out.Subtotal)
	assert.Equal(t, "20", out.DiscountPct)
	assert.Equal(t, "40000.00", out.DiscountAmount)
	assert.Equal(t, "28800.00", out.TaxAmount)
	assert.Equal(t, "188800.00", out.Total)

	rec = do(t, s, http.MethodPost, "/api/v1/pricing", `{"items": []}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCompliance(t *testing.T) {
	s, _ := newTestServer(t)

	rec := do(t, s, http.MethodPost, "/api/v1/compliance/check", `{"text": "Guaranteed results with unlimited seats"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var out struct {
		Claims []string `json:"claims"`
		Clean  bool     `json:"clean"`
	}
	decodeBody(t, rec, &out)
	assert.Equal(t, []string{"guaranteed", "unlimited"}, out.Claims)
	assert.False(t, out.Clean)

	rec = do(t, s, http.MethodGet, "/api/v1/compliance/clauses", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Taxes extra as applicable.")
}

const proposalBody = `{
  "customer": {
    "company": "Acme Retail",
    "industry": "Retail",
    "region": "IN",
    "use_case": "customer analytics",
    "objectives": ["reduce churn"]
  },
  "must_have": ["analytics"]
}`

func TestProposalLifecycle(t *testing.T) {
	s, _ := newTestServer(t)

	rec := do(t, s, http.MethodPost, "/api/v1/proposals", proposalBody)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var created ProposalResponse
	decodeBody(t, rec, &created)
	require.NotEmpty(t, created.SessionID)
	assert.Equal(t, "AN-100", created.Plan.SelectedSKUs[0].SKU)
	assert.Equal(t, "106200.00", created.Pricing.Total)
	assert.Contains(t, created.Markdown, "Analytics Suite")

	rec = do(t, s, http.MethodGet, "/api/v1/sessions", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var list struct {
		Sessions []SessionSummaryResponse `json:"sessions"`
	}
	decodeBody(t, rec, &list)
	require.Len(t, list.Sessions, 1)
	assert.Equal(t, created.SessionID, list.Sessions[0].ID)
	assert.Equal(t, "106200.00", list.Sessions[0].Total)

	rec = do(t, s, http.MethodGet, "/api/v1/sessions/"+created.SessionID, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var sess SessionResponse
	decodeBody(t, rec, &sess)
	assert.Equal(t, "Acme Retail", sess.Customer.Company)

	rec = do(t, s, http.MethodGet, "/api/v1/sessions/"+created.SessionID+"/document?format=pdf", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.True(t, strings.HasPrefix(rec.Body.String(), "%PDF"))

	rec = do(t, s, http.MethodGet, "/api/v1/sessions/"+created.SessionID+"/document?format=odt", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, s, http.MethodGet, "/api/v1/sessions/session_1", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	assert.Equal(t, 1.0, testutil.ToFloat64(s.Metrics().proposals.WithLabelValues("pass")))
}

func TestProposalDryRunAndValidation(t *testing.T) {
	s, _ := newTestServer(t)

	body := strings.Replace(proposalBody, `"must_have"`, `"dry_run": true, "must_have"`, 1)
	rec := do(t, s, http.MethodPost, "/api/v1/proposals", body)
	require.Equal(t, http.StatusOK, rec.Code)
	var out ProposalResponse
	decodeBody(t, rec, &out)
	assert.Empty(t, out.SessionID)

	rec = do(t, s, http.MethodPost, "/api/v1/proposals", `{"customer": {"company": "Acme"}}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestReload(t *testing.T) {
	s, catalogPath := newTestServer(t)

	require.NoError(t, os.WriteFile(catalogPath, []byte(testCatalog+"EX-300,Extra,extra,,,,,10\n"), 0o644))
	rec := do(t, s, http.MethodPost, "/api/v1/admin/reload", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"products":3`)
	assert.Equal(t, 1.0, testutil.ToFloat64(s.Metrics().reloads.WithLabelValues("ok")))

	require.NoError(t, os.WriteFile(catalogPath, []byte("name\nbroken\n"), 0o644))
	rec = do(t, s, http.MethodPost, "/api/v1/admin/reload", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	rec = do(t, s, http.MethodGet, "/api/v1/catalog/EX-300", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	s, _ := newTestServer(t)

	do(t, s, http.MethodGet, "/health", "")
	rec := do(t, s, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `proposalgen_http_requests_total{method="GET",route="/health",status="200"} 1`)
}

func TestCORSPreflight(t *testing.T) {
	s, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/catalog", nil)
	req.Header.Set("Origin", "https://sales.example.com")
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "https://sales.example.com", rec.Header().Get("Access-Control-Allow-Origin"))
}
