// Package pricing computes itemized, discounted and taxed quotes.
package pricing

import (
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/mriduliimm/Gen-AI-bot-for-Ecommerce-Sales-Support/decision/catalog"
)

// PriceLookup resolves a SKU to its catalog entry.
type PriceLookup interface {
	Lookup(sku string) (catalog.Product, bool)
}

// LineItem is a requested SKU and quantity. Zero or negative Qty means 1.
type LineItem struct {
	SKU string          `json:"sku"`
	Qty decimal.Decimal `json:"qty"`
}

// ItemResult is one priced line.
type ItemResult struct {
	SKU       string          `json:"sku"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Qty       decimal.Decimal `json:"qty"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

// Breakdown is the full quote. Amounts are exact; round only for display.
type Breakdown struct {
	Currency       string          `json:"currency"`
	Items          []ItemResult    `json:"items"`
	DiscountPct    decimal.Decimal `json:"discount_pct"`
	Subtotal       decimal.Decimal `json:"subtotal"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	TaxPct         decimal.Decimal `json:"tax_pct"`
	TaxAmount      decimal.Decimal `json:"tax_amount"`
	Total          decimal.Decimal `json:"total"`
}

// Engine prices line items against a catalog and a rule set.
type Engine struct {
	lookup PriceLookup
	rules  Rules
	logger zerolog.Logger
}

// NewEngine creates a pricing engine.
func NewEngine(lookup PriceLookup, rules Rules, logger zerolog.Logger) *Engine {
	return &Engine{lookup: lookup, rules: rules, logger: logger}
}

func (e *Engine) Rules() Rules { return e.rules }

// ClampDiscount bounds pct to [0, max_discount_pct].
func (e *Engine) ClampDiscount(pct decimal.Decimal) decimal.Decimal {
	if pct.IsNegative() {
		return decimal.Zero
	}
	if pct.GreaterThan(e.rules.MaxDiscountPct) {
		return e.rules.MaxDiscountPct
	}
	return pct
}

// Compute prices items in input order. Unknown SKUs are skipped.
func (e *Engine) Compute(items []LineItem, currency string, discountPct decimal.Decimal) *Breakdown {
	out := &Breakdown{
		Currency:    currency,
		Items:       make([]ItemResult, 0, len(items)),
		DiscountPct: e.ClampDiscount(discountPct),
		Subtotal:    decimal.Zero,
		TaxPct:      e.rules.TaxPct,
	}

	for _, it := range items {
		p, ok := e.lookup.Lookup(it.SKU)
		if !ok {
			e.logger.Debug().Str("sku", it.SKU).Msg("Skipping unknown SKU")
			continue
		}
		qty := it.Qty
		if !qty.IsPositive() {
			qty = decimal.NewFromInt(1)
		}
		line := p.Price.Mul(qty)
		out.Items = append(out.Items, ItemResult{
			SKU:       p.SKU,
			Name:      p.Name,
			UnitPrice: p.Price,
			Qty:       qty,
			Subtotal:  line,
		})
		out.Subtotal = out.Subtotal.Add(line)
	}

	out.DiscountAmount = percentOf(out.Subtotal, out.DiscountPct)
	taxable := out.Subtotal.Sub(out.DiscountAmount)
	out.TaxAmount = percentOf(taxable, out.TaxPct)
	out.Total = taxable.Add(out.TaxAmount)
	return out
}

// percentOf returns amount*pct/100 without rounding.
func percentOf(amount, pct decimal.Decimal) decimal.Decimal {
	return amount.Mul(pct).Shift(-2)
}
