package main

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/urfave/cli/v2"

	"github.com/mriduliimm/Gen-AI-bot-for-Ecommerce-Sales-Support/decision/catalog"
	"github.com/mriduliimm/Gen-AI-bot-for-Ecommerce-Sales-Support/decision/pricing"
	"github.com/mriduliimm/Gen-AI-bot-for-Ecommerce-Sales-Support/pkg/api"
	perrors "github.com/mriduliimm/Gen-AI-bot-for-Ecommerce-Sales-Support/pkg/errors"
)

// =============================================================================
// CATALOG COMMAND
// =============================================================================

func catalogCommand() *cli.Command {
	return &cli.Command{
		Name:  "catalog",
		Usage: "Inspect the product catalog",
		Subcommands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List every product",
				Flags: []cli.Flag{jsonFlag()},
				Action: func(c *cli.Context) error {
					a, err := setup(c, false)
					if err != nil {
						return err
					}
					return printProducts(c, a.workspace.Current().Catalog.Products())
				},
			},
			{
				Name:      "show",
				Usage:     "Show one product",
				ArgsUsage: "SKU",
				Flags:     []cli.Flag{jsonFlag()},
				Action: func(c *cli.Context) error {
					if c.NArg() != 1 {
						return cli.Exit("usage: proposalgen catalog show SKU", 1)
					}
					a, err := setup(c, false)
					if err != nil {
						return err
					}
					p, ok := a.workspace.Current().Catalog.Lookup(c.Args().First())
					if !ok {
						return fmt.Errorf("unknown sku %q", c.Args().First())
					}
					if c.Bool("json") {
						return writeJSON(p)
					}
					fmt.Printf("SKU:       %s\n", p.SKU)
					fmt.Printf("Name:      %s\n", p.Name)
					fmt.Printf("Features:  %s\n", p.Features)
					fmt.Printf("Benefits:  %s\n", p.Benefits)
					fmt.Printf("Category:  %s\n", p.Category)
					fmt.Printf("Regions:   %s\n", p.Regions)
					fmt.Printf("Prereqs:   %s\n", p.Prereqs)
					fmt.Printf("Price:     %s\n", p.Price.StringFixed(2))
					return nil
				},
			},
			{
				Name:  "shortlist",
				Usage: "Filter products by features, region and budget",
				Flags: []cli.Flag{
					&cli.StringSliceFlag{Name: "must-have", Aliases: []string{"m"}, Usage: "Required feature keyword"},
					&cli.StringFlag{Name: "region", Value: api.DefaultRegion, Usage: "Region code"},
					&cli.Float64Flag{Name: "budget-max", Usage: "Maximum unit price"},
					jsonFlag(),
				},
				Action: func(c *cli.Context) error {
					a, err := setup(c, false)
					if err != nil {
						return err
					}
					req := catalog.ShortlistRequest{
						MustHave: splitList(c.StringSlice("must-have")),
						Region:   c.String("region"),
					}
					if c.IsSet("budget-max") {
						d := decimal.NewFromFloat(c.Float64("budget-max"))
						req.BudgetMax = &d
					}
					return printProducts(c, a.workspace.Current().Catalog.Shortlist(req))
				},
			},
		},
	}
}

func jsonFlag() cli.Flag {
	return &cli.BoolFlag{Name: "json", Usage: "Print JSON instead of a table"}
}

func printProducts(c *cli.Context, products []catalog.Product) error {
	if c.Bool("json") {
		return writeJSON(products)
	}
	fmt.Printf("%-12s  %-30s  %-14s  %s\n", "SKU", "NAME", "PRICE", "REGIONS")
	for _, p := range products {
		fmt.Printf("%-12s  %-30s  %14s  %s\n", truncate(p.SKU, 12), truncate(p.Name, 30), p.Price.StringFixed(2), p.Regions)
	}
	fmt.Printf("\n%d product(s)\n", len(products))
	return nil
}

// =============================================================================
// SEARCH COMMAND
// =============================================================================

func searchCommand() *cli.Command {
	return &cli.Command{
		Name:      "search",
		Usage:     "Search the catalog and knowledge base",
		ArgsUsage: "QUERY",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "k", Value: 5, Usage: "Number of snippets"},
			jsonFlag(),
		},
		Action: func(c *cli.Context) error {
			a, err := setup(c, false)
			if err != nil {
				return err
			}
			query := strings.Join(c.Args().Slice(), " ")
			hits := a.workspace.Current().Search(query, c.Int("k"))
			if c.Bool("json") {
				return writeJSON(hits)
			}
			for i, h := range hits {
				fmt.Printf("%d. [%.3f] %s\n", i+1, h.Score, h.SourceID)
				fmt.Printf("   %s\n", truncate(strings.Join(strings.Fields(h.Text), " "), 100))
			}
			if len(hits) == 0 {
				fmt.Println("No results")
			}
			return nil
		},
	}
}

// =============================================================================
// QUOTE COMMAND
// =============================================================================

func quoteCommand() *cli.Command {
	return &cli.Command{
		Name:  "quote",
		Usage: "Price explicit line items",
		Flags: []cli.Flag{
			&cli.StringSliceFlag{
				Name:     "item",
				Aliases:  []string{"i"},
				Usage:    "Line item as SKU or SKU:QTY (repeatable)",
				Required: true,
			},
			&cli.StringFlag{Name: "currency", Usage: "Quote currency"},
			&cli.Float64Flag{Name: "discount", Usage: "Requested discount percent"},
			jsonFlag(),
		},
		Action: runQuote,
	}
}

func runQuote(c *cli.Context) error {
	items := make([]pricing.LineItem, 0, len(c.StringSlice("item")))
	for _, raw := range c.StringSlice("item") {
		item, err := parseItem(raw)
		if err != nil {
			return err
		}
		items = append(items, item)
	}

	a, err := setup(c, false)
	if err != nil {
		return err
	}

	defaults := a.generator.Defaults()
	currency := defaults.Currency
	if c.IsSet("currency") {
		currency = c.String("currency")
	}
	discount := defaults.DiscountPct
	if c.IsSet("discount") {
		discount = decimal.NewFromFloat(c.Float64("discount"))
	}

	snap := a.workspace.Current()
	b := pricing.NewEngine(snap.Catalog, snap.Rules, a.logger).Compute(items, currency, discount)
	if c.Bool("json") {
		return writeJSON(toQuoteJSON(b))
	}

	fmt.Printf("%-12s  %-26s  %6s  %14s  %14s\n", "SKU", "NAME", "QTY", "UNIT", "SUBTOTAL")
	for _, it := range b.Items {
		fmt.Printf("%-12s  %-26s  %6s  %14s  %14s\n",
			truncate(it.SKU, 12), truncate(it.Name, 26), it.Qty.String(), it.UnitPrice.StringFixed(2), it.Subtotal.StringFixed(2))
	}
	fmt.Println()
	fmt.Printf("Subtotal:          %s %s\n", b.Currency, b.Subtotal.StringFixed(2))
	fmt.Printf("Discount (%s%%):   -%s %s\n", b.DiscountPct.String(), b.Currency, b.DiscountAmount.StringFixed(2))
	fmt.Printf("Tax (%s%%):        %s %s\n", b.TaxPct.String(), b.Currency, b.TaxAmount.StringFixed(2))
	fmt.Printf("Total:             %s %s\n", b.Currency, b.Total.StringFixed(2))
	return nil
}

// parseItem reads SKU or SKU:QTY. A missing quantity means 1.
func parseItem(raw string) (pricing.LineItem, error) {
	sku, qty, found := strings.Cut(strings.TrimSpace(raw), ":")
	sku = strings.TrimSpace(sku)
	if sku == "" {
		return pricing.LineItem{}, perrors.NewValidationError("item", fmt.Sprintf("missing sku in %q", raw))
	}
	if !found {
		return pricing.LineItem{SKU: sku, Qty: decimal.NewFromInt(1)}, nil
	}

	q, err := decimal.NewFromString(strings.TrimSpace(qty))
	if err != nil || !q.IsPositive() {
		return pricing.LineItem{}, perrors.NewValidationError("item", fmt.Sprintf("invalid quantity in %q", raw))
	}
	return pricing.LineItem{SKU: sku, Qty: q}, nil
}

type quoteLineJSON struct {
	SKU       string `json:"sku"`
	Name      string `json:"name"`
	Qty       string `json:"qty"`
	UnitPrice string `json:"unit_price"`
	Subtotal  string `json:"subtotal"`
}

type quoteJSON struct {
	Currency       string          `json:"currency"`
	Items          []quoteLineJSON `json:"items"`
	DiscountPct    string          `json:"discount_pct"`
	Subtotal       string          `json:"subtotal"`
	DiscountAmount string          `json:"discount_amount"`
	TaxPct         string          `json:"tax_pct"`
	TaxAmount      string          `json:"tax_amount"`
	Total          string          `json:"total"`
}

func toQuoteJSON(b *pricing.Breakdown) quoteJSON {
	out := quoteJSON{Items: []quoteLineJSON{}}
	if b == nil {
		return out
	}
	for _, it := range b.Items {
		out.Items = append(out.Items, quoteLineJSON{
			SKU:       it.SKU,
			Name:      it.Name,
			Qty:       it.Qty.String(),
			UnitPrice: it.UnitPrice.StringFixed(2),
			Subtotal:  it.Subtotal.StringFixed(2),
		})
	}
	out.Currency = b.Currency
	out.DiscountPct = b.DiscountPct.String()
	out.Subtotal = b.Subtotal.StringFixed(2)
	out.DiscountAmount = b.DiscountAmount.StringFixed(2)
	out.TaxPct = b.TaxPct.String()
	out.TaxAmount = b.TaxAmount.StringFixed(2)
	out.Total = b.Total.StringFixed(2)
	return out
}
