package api

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/mriduliimm/Gen-AI-bot-for-Ecommerce-Sales-Support/db/session"
	"github.com/mriduliimm/Gen-AI-bot-for-Ecommerce-Sales-Support/decision/catalog"
	"github.com/mriduliimm/Gen-AI-bot-for-Ecommerce-Sales-Support/decision/policy"
	"github.com/mriduliimm/Gen-AI-bot-for-Ecommerce-Sales-Support/decision/pricing"
	"github.com/mriduliimm/Gen-AI-bot-for-Ecommerce-Sales-Support/decision/proposal"
	"github.com/mriduliimm/Gen-AI-bot-for-Ecommerce-Sales-Support/decision/retrieval"
	"github.com/mriduliimm/Gen-AI-bot-for-Ecommerce-Sales-Support/pkg/api"
	perrors "github.com/mriduliimm/Gen-AI-bot-for-Ecommerce-Sales-Support/pkg/errors"
	"github.com/mriduliimm/Gen-AI-bot-for-Ecommerce-Sales-Support/render"
)

// =============================================================================
// RESPONSE TYPES
// =============================================================================

// ProductResponse is a catalog row with a display price.
type ProductResponse struct {
	SKU      string `json:"sku"`
	Name     string `json:"name"`
	Features string `json:"features"`
	Benefits string `json:"benefits"`
	Category string `json:"category"`
	Regions  string `json:"regions"`
	Prereqs  string `json:"prereqs"`
	Price    string `json:"price"`
}

// LineResponse is one priced line item.
type LineResponse struct {
	SKU       string `json:"sku"`
	Name      string `json:"name"`
	UnitPrice string `json:"unit_price"`
	Qty       string `json:"qty"`
	Subtotal  string `json:"subtotal"`
}

// PricingResponse is a quote with every amount fixed to two places.
type PricingResponse struct {
	Currency       string         `json:"currency"`
	Items          []LineResponse `json:"items"`
	DiscountPct    string         `json:"discount_pct"`
	Subtotal       string         `json:"subtotal"`
	DiscountAmount string         `json:"discount_amount"`
	TaxPct         string         `json:"tax_pct"`
	TaxAmount      string         `json:"tax_amount"`
	Total          string         `json:"total"`
}

// ProposalResponse is the result of POST /api/v1/proposals.
type ProposalResponse struct {
	SessionID    string                   `json:"session_id,omitempty"`
	CatalogHash  string                   `json:"catalog_hash"`
	UsedFallback bool                     `json:"used_fallback"`
	Shortlist    []ProductResponse        `json:"shortlist"`
	Snippets     []retrieval.Snippet      `json:"snippets"`
	Plan         api.Plan                 `json:"plan"`
	Pricing      PricingResponse          `json:"pricing"`
	Markdown     string                   `json:"markdown"`
	Claims       []string                 `json:"claims"`
	Policy       *policy.EvaluationResult `json:"policy"`
}

// SessionSummaryResponse is one row of GET /api/v1/sessions.
type SessionSummaryResponse struct {
	ID        string `json:"id"`
	CreatedAt string `json:"created_at"`
	Company   string `json:"company"`
	Currency  string `json:"currency"`
	Total     string `json:"total"`
}

// SessionResponse is a stored session.
type SessionResponse struct {
	ID          string          `json:"id"`
	CreatedAt   string          `json:"created_at"`
	CatalogHash string          `json:"catalog_hash"`
	Customer    api.Customer    `json:"customer"`
	Plan        api.Plan        `json:"plan"`
	Pricing     PricingResponse `json:"pricing"`
}

func productResponse(p catalog.Product) ProductResponse {
	return ProductResponse{
		SKU:      p.SKU,
		Name:     p.Name,
		Features: p.Features,
		Benefits: p.Benefits,
		Category: p.Category,
		Regions:  p.Regions,
		Prereqs:  p.Prereqs,
		Price:    p.Price.StringFixed(2),
	}
}

func productsResponse(ps []catalog.Product) []ProductResponse {
	out := make([]ProductResponse, 0, len(ps))
	for _, p := range ps {
		out = append(out, productResponse(p))
	}
	return out
}

func pricingResponse(b *pricing.Breakdown) PricingResponse {
	if b == nil {
		return PricingResponse{Items: []LineResponse{}}
	}
	items := make([]LineResponse, 0, len(b.Items))
	for _, it := range b.Items {
		items = append(items, LineResponse{
			SKU:       it.SKU,
			Name:      it.Name,
			UnitPrice: it.UnitPrice.StringFixed(2),
			Qty:       it.Qty.String(),
			Subtotal:  it.Subtotal.StringFixed(2),
		})
	}
	return PricingResponse{
		Currency:       b.Currency,
		Items:          items,
		DiscountPct:    b.DiscountPct.String(),
		Subtotal:       b.Subtotal.StringFixed(2),
		DiscountAmount: b.DiscountAmount.StringFixed(2),
		TaxPct:         b.TaxPct.String(),
		TaxAmount:      b.TaxAmount.StringFixed(2),
		Total:          b.Total.StringFixed(2),
	}
}

// =============================================================================
// CATALOG & RETRIEVAL
// =============================================================================

func (s *Server) handleCatalog(w http.ResponseWriter, r *http.Request) {
	cat := s.generator.Workspace().Current().Catalog
	s.jsonResponse(w, http.StatusOK, map[string]any{
		"hash":     cat.Hash(),
		"products": productsResponse(cat.Products()),
	})
}

func (s *Server) handleProduct(w http.ResponseWriter, r *http.Request) {
	sku := chi.URLParam(r, "sku")
	p, ok := s.generator.Workspace().Current().Catalog.Lookup(sku)
	if !ok {
		s.jsonError(w, http.StatusNotFound, fmt.Sprintf("unknown sku %q", sku))
		return
	}
	s.jsonResponse(w, http.StatusOK, productResponse(p))
}

// ShortlistRequest filters the catalog.
type ShortlistRequest struct {
	MustHave  []string         `json:"must_have"`
	Region    string           `json:"region"`
	BudgetMax *decimal.Decimal `json:"budget_max,omitempty"`
}

func (s *Server) handleShortlist(w http.ResponseWriter, r *http.Request) {
	var req ShortlistRequest
	if !s.decode(w, r, &req) {
		return
	}
	if req.Region == "" {
		req.Region = api.DefaultRegion
	}

	list := s.generator.Workspace().Current().Catalog.Shortlist(catalog.ShortlistRequest{
		MustHave:  req.MustHave,
		Region:    req.Region,
		BudgetMax: req.BudgetMax,
	})
	s.jsonResponse(w, http.StatusOK, map[string]any{
		"products": productsResponse(list),
	})
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	k := s.config.DefaultTopK
	if raw := r.URL.Query().Get("k"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			s.jsonError(w, http.StatusBadRequest, fmt.Sprintf("invalid k %q", raw))
			return
		}
		k = n
	}

	s.jsonResponse(w, http.StatusOK, map[string]any{
		"query":    q,
		"snippets": s.generator.Workspace().Current().Search(q, k),
	})
}

// =============================================================================
// PRICING & COMPLIANCE
// =============================================================================

// PricingRequest quotes explicit line items.
type PricingRequest struct {
	Items       []pricing.LineItem `json:"items"`
	Currency    string             `json:"currency"`
	DiscountPct *decimal.Decimal   `json:"discount_pct,omitempty"`
}

func (s *Server) handlePricing(w http.ResponseWriter, r *http.Request) {
	var req PricingRequest
	if !s.decode(w, r, &req) {
		return
	}
	if len(req.Items) == 0 {
		s.writeError(w, perrors.NewValidationError("items", "at least one line item is required"))
		return
	}

	defaults := s.generator.Defaults()
	if req.Currency == "" {
		req.Currency = defaults.Currency
	}
	discount := defaults.DiscountPct
	if req.DiscountPct != nil {
		discount = *req.DiscountPct
	}

	snap := s.generator.Workspace().Current()
	engine := pricing.NewEngine(snap.Catalog, snap.Rules, s.logger)
	s.jsonResponse(w, http.StatusOK, pricingResponse(engine.Compute(req.Items, req.Currency, discount)))
}

// ComplianceRequest carries text to scan.
type ComplianceRequest struct {
	Text string `json:"text"`
}

func (s *Server) handleComplianceCheck(w http.ResponseWriter, r *http.Request) {
	var req ComplianceRequest
	if !s.decode(w, r, &req) {
		return
	}
	claims := s.generator.Checker().CheckClaims(req.Text)
	s.jsonResponse(w, http.StatusOK, map[string]any{
		"claims": claims,
		"clean":  len(claims) == 0,
	})
}

func (s *Server) handleClauses(w http.ResponseWriter, r *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]any{
		"banned_phrases":    s.generator.Checker().BannedPhrases(),
		"mandatory_clauses": s.generator.Checker().MandatoryClauses(),
	})
}

// =============================================================================
// PROPOSALS & SESSIONS
// =============================================================================

// ProposalRequest generates a proposal. It is saved unless DryRun is set.
type ProposalRequest struct {
	Customer    api.Customer     `json:"customer"`
	MustHave    []string         `json:"must_have"`
	Currency    string           `json:"currency"`
	DiscountPct *decimal.Decimal `json:"discount_pct,omitempty"`
	TopK        int              `json:"top_k"`
	DryRun      bool             `json:"dry_run"`
}

func (s *Server) handleProposal(w http.ResponseWriter, r *http.Request) {
	var req ProposalRequest
	if !s.decode(w, r, &req) {
		return
	}

	res, err := s.generator.Generate(r.Context(), proposal.Request{
		Customer:    req.Customer,
		MustHave:    req.MustHave,
		Currency:    req.Currency,
		DiscountPct: req.DiscountPct,
		TopK:        req.TopK,
		Save:        !req.DryRun,
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.metrics.observeProposal(res)

	status := http.StatusOK
	if res.SessionID != "" {
		status = http.StatusCreated
	}
	s.jsonResponse(w, status, ProposalResponse{
		SessionID:    res.SessionID,
		CatalogHash:  res.CatalogHash,
		UsedFallback: res.UsedFallback,
		Shortlist:    productsResponse(res.Shortlist),
		Snippets:     res.Snippets,
		Plan:         res.Plan,
		Pricing:      pricingResponse(res.Pricing),
		Markdown:     res.Markdown,
		Claims:       res.Claims,
		Policy:       res.Policy,
	})
}

func (s *Server) handleSessions(w http.ResponseWriter, r *http.Request) {
	store := s.generator.Store()
	if store == nil {
		s.jsonResponse(w, http.StatusOK, map[string]any{"sessions": []SessionSummaryResponse{}})
		return
	}

	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			s.jsonError(w, http.StatusBadRequest, fmt.Sprintf("invalid limit %q", raw))
			return
		}
		limit = n
	}

	list, err := store.List(r.Context(), limit)
	if err != nil {
		s.writeError(w, err)
		return
	}
	out := make([]SessionSummaryResponse, 0, len(list))
	for _, sum := range list {
		out = append(out, SessionSummaryResponse{
			ID:        sum.ID,
			CreatedAt: sum.CreatedAt.UTC().Format(time.RFC3339),
			Company:   sum.Company,
			Currency:  sum.Currency,
			Total:     sum.Total.StringFixed(2),
		})
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{"sessions": out})
}

func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	store := s.generator.Store()
	if store == nil {
		s.writeError(w, session.ErrNotFound)
		return
	}
	snap, err := store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, SessionResponse{
		ID:          snap.ID,
		CreatedAt:   snap.CreatedAt.UTC().Format(time.RFC3339),
		CatalogHash: snap.CatalogHash,
		Customer:    snap.Customer,
		Plan:        snap.Plan,
		Pricing:     pricingResponse(snap.Pricing),
	})
}

func (s *Server) handleDocument(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	if format == "" {
		format = render.FormatMarkdown
	}
	if _, err := render.ForFormat(format); err != nil {
		s.jsonError(w, http.StatusBadRequest, err.Error())
		return
	}

	id := chi.URLParam(r, "id")
	data, rnd, err := s.generator.Document(r.Context(), id, format)
	if err != nil {
		s.writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", rnd.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", id+"."+rnd.Extension()))
	w.WriteHeader(http.StatusOK)
	bytes.NewReader(data).WriteTo(w)
}

func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	ws := s.generator.Workspace()
	if err := ws.Reload(); err != nil {
		s.jsonError(w, http.StatusInternalServerError, fmt.Sprintf("reload failed: %v", err))
		return
	}
	snap := ws.Current()
	s.jsonResponse(w, http.StatusOK, map[string]any{
		"status":       "reloaded",
		"reloads":      ws.Reloads(),
		"catalog_hash": snap.Catalog.Hash(),
		"products":     snap.Catalog.Len(),
		"documents":    snap.Index.Len(),
	})
}
