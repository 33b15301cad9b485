// Package proposal runs the end-to-end pipeline: shortlist, retrieve, plan,
// price, render, check and persist.
package proposal

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/mriduliimm/Gen-AI-bot-for-Ecommerce-Sales-Support/db/session"
	"github.com/mriduliimm/Gen-AI-bot-for-Ecommerce-Sales-Support/decision/catalog"
	"github.com/mriduliimm/Gen-AI-bot-for-Ecommerce-Sales-Support/decision/compliance"
	"github.com/mriduliimm/Gen-AI-bot-for-Ecommerce-Sales-Support/decision/planner"
	"github.com/mriduliimm/Gen-AI-bot-for-Ecommerce-Sales-Support/decision/policy"
	"github.com/mriduliimm/Gen-AI-bot-for-Ecommerce-Sales-Support/decision/pricing"
	"github.com/mriduliimm/Gen-AI-bot-for-Ecommerce-Sales-Support/decision/retrieval"
	"github.com/mriduliimm/Gen-AI-bot-for-Ecommerce-Sales-Support/decision/workspace"
	"github.com/mriduliimm/Gen-AI-bot-for-Ecommerce-Sales-Support/pkg/api"
	"github.com/mriduliimm/Gen-AI-bot-for-Ecommerce-Sales-Support/render"
)

// Defaults apply when a request leaves a field unset.
type Defaults struct {
	Currency    string
	DiscountPct decimal.Decimal
	TopK        int
}

// DefaultDefaults mirrors the interactive form's initial values.
func DefaultDefaults() Defaults {
	return Defaults{Currency: "INR", DiscountPct: decimal.NewFromInt(10), TopK: 5}
}

// Options configure a Generator. Zero values select the defaults. A nil
// Defaults means DefaultDefaults(); a non-nil one keeps its DiscountPct as
// given, so zero is a valid default discount.
type Options struct {
	Strategy planner.Strategy
	Checker  *compliance.Checker
	Policies *policy.Engine
	Store    session.Store
	Defaults *Defaults
	Logger   zerolog.Logger
}

// Generator owns the pipeline. Safe for concurrent use.
type Generator struct {
	workspace *workspace.Holder
	strategy  planner.Strategy
	checker   *compliance.Checker
	policies  *policy.Engine
	store     session.Store
	defaults  Defaults
	logger    zerolog.Logger
}

func NewGenerator(ws *workspace.Holder, opts Options) *Generator {
	g := &Generator{
		workspace: ws,
		strategy:  opts.Strategy,
		checker:   opts.Checker,
		policies:  opts.Policies,
		store:     opts.Store,
		defaults:  DefaultDefaults(),
		logger:    opts.Logger,
	}
	if opts.Defaults != nil {
		g.defaults = *opts.Defaults
	}
	if g.strategy == nil {
		g.strategy = planner.NaiveStrategy{}
	}
	if g.checker == nil {
		g.checker = compliance.Default
	}
	if g.policies == nil {
		g.policies = policy.NewEngine()
	}
	if g.defaults.Currency == "" {
		g.defaults.Currency = DefaultDefaults().Currency
	}
	if g.defaults.TopK <= 0 {
		g.defaults.TopK = DefaultDefaults().TopK
	}
	return g
}

func (g *Generator) Workspace() *workspace.Holder { return g.workspace }
func (g *Generator) Checker() *compliance.Checker { return g.checker }
func (g *Generator) Store() session.Store         { return g.store }
func (g *Generator) Defaults() Defaults           { return g.defaults }

// Request is one proposal to generate. A nil DiscountPct uses the default.
type Request struct {
	Customer    api.Customer     `json:"customer"`
	MustHave    []string         `json:"must_have"`
	Currency    string           `json:"currency"`
	DiscountPct *decimal.Decimal `json:"discount_pct,omitempty"`
	TopK        int              `json:"top_k"`
	Save        bool             `json:"save"`
}

// Result carries every intermediate artifact of a run.
type Result struct {
	SessionID    string                   `json:"session_id,omitempty"`
	CatalogHash  string                   `json:"catalog_hash"`
	Shortlist    []catalog.Product        `json:"shortlist"`
	UsedFallback bool                     `json:"used_fallback"`
	Query        string                   `json:"query"`
	Snippets     []retrieval.Snippet      `json:"snippets"`
	Plan         api.Plan                 `json:"plan"`
	Pricing      *pricing.Breakdown       `json:"pricing"`
	Context      render.Context           `json:"-"`
	Markdown     string                   `json:"markdown"`
	Claims       []string                 `json:"claims"`
	Policy       *policy.EvaluationResult `json:"policy"`
}

// Query builds the retrieval query from the customer's stated needs.
func Query(c api.Customer) string {
	return c.UseCase + "\n" + strings.Join(c.Objectives, "; ") + "\n" + c.DiscoveryNotes
}

// Generate runs the pipeline against the current workspace snapshot.
func (g *Generator) Generate(ctx context.Context, req Request) (*Result, error) {
	customer := req.Customer.WithDefaults()
	if err := customer.Validate(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	snap := g.workspace.Current()
	log := g.logger.With().Str("company", customer.Company).Logger()
	res := &Result{CatalogHash: snap.Catalog.Hash()}

	// 1. Shortlist
	log.Info().Strs("must_have", req.MustHave).Str("region", customer.Region).Msg("Shortlisting products")
	res.Shortlist = snap.Catalog.Shortlist(catalog.ShortlistRequest{
		MustHave:  req.MustHave,
		Region:    customer.Region,
		BudgetMax: customer.BudgetMax,
	})
	if len(res.Shortlist) == 0 {
		log.Warn().Msg("No matching SKUs, falling back to the full catalog")
		res.Shortlist = snap.Catalog.Products()
		res.UsedFallback = true
	}

	// 2. Retrieve
	topK := req.TopK
	if topK <= 0 {
		topK = g.defaults.TopK
	}
	res.Query = Query(customer)
	res.Snippets = snap.Search(res.Query, topK)
	log.Debug().Int("snippets", len(res.Snippets)).Msg("Retrieved supporting snippets")

	// 3. Plan
	res.Plan = g.strategy.Plan(planner.Input{
		Customer:   customer,
		Objectives: customer.Objectives,
		Shortlist:  res.Shortlist,
		Snippets:   res.Snippets,
	})

	// 4. Price
	currency := req.Currency
	if currency == "" {
		currency = g.defaults.Currency
	}
	discount := g.defaults.DiscountPct
	if req.DiscountPct != nil {
		discount = *req.DiscountPct
	}
	engine := pricing.NewEngine(snap.Catalog, snap.Rules, log)
	res.Pricing = engine.Compute(lineItems(res.Plan.PricingItems), currency, discount)
	log.Info().
		Str("total", res.Pricing.Total.StringFixed(2)).
		Str("currency", currency).
		Msg("Priced proposal")

	// 5. Render
	res.Context = render.NewContext(res.Plan, res.Pricing, catalogNames(snap.Catalog), g.checker.MandatoryClauses())
	md, err := render.Markdown(res.Context)
	if err != nil {
		return nil, err
	}
	res.Markdown = md

	// 6. Check
	res.Claims = g.checker.CheckClaims(md)
	res.Policy, err = g.policies.Evaluate(ctx, policy.EvaluationRequest{
		Customer:     customer,
		Pricing:      res.Pricing,
		Claims:       res.Claims,
		UsedFallback: res.UsedFallback,
		Citations:    res.Plan.Citations,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to evaluate policies: %w", err)
	}
	log.Info().Str("decision", string(res.Policy.Decision)).Msg("Reviewed proposal")

	// 7. Persist
	if req.Save && g.store != nil {
		id, err := g.store.Save(ctx, &session.Snapshot{
			CatalogHash: res.CatalogHash,
			Customer:    customer,
			Plan:        res.Plan,
			Pricing:     res.Pricing,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to save session: %w", err)
		}
		res.SessionID = id
		log.Info().Str("session", id).Msg("Saved session")
	}

	return res, nil
}

// Document re-renders a stored session in the requested format.
func (g *Generator) Document(ctx context.Context, id, format string) ([]byte, render.Renderer, error) {
	if g.store == nil {
		return nil, nil, session.ErrNotFound
	}
	r, err := render.ForFormat(format)
	if err != nil {
		return nil, nil, err
	}
	snap, err := g.store.Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	var buf bytes.Buffer
	if err := r.Render(g.ContextFor(snap), &buf); err != nil {
		return nil, nil, err
	}
	return buf.Bytes(), r, nil
}

// ContextFor rebuilds a rendering context for a stored session. Names come
// from the saved quote first, then the current catalog.
func (g *Generator) ContextFor(snap *session.Snapshot) render.Context {
	saved := make(map[string]string)
	if snap.Pricing != nil {
		for _, it := range snap.Pricing.Items {
			saved[it.SKU] = it.Name
		}
	}
	current := catalogNames(g.workspace.Current().Catalog)
	names := func(sku string) string {
		if n, ok := saved[sku]; ok {
			return n
		}
		return current(sku)
	}
	return render.NewContext(snap.Plan, snap.Pricing, names, g.checker.MandatoryClauses())
}

func catalogNames(c *catalog.Catalog) render.NameFunc {
	return func(sku string) string {
		if p, ok := c.Lookup(sku); ok {
			return p.Name
		}
		return ""
	}
}

func lineItems(items []api.PricingItem) []pricing.LineItem {
	out := make([]pricing.LineItem, 0, len(items))
	for _, it := range items {
		out = append(out, pricing.LineItem{SKU: it.SKU, Qty: it.Qty})
	}
	return out
}
