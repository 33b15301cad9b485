package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/shopspring/decimal"
	"github.com/urfave/cli/v2"

	"github.com/mriduliimm/Gen-AI-bot-for-Ecommerce-Sales-Support/decision/policy"
	"github.com/mriduliimm/Gen-AI-bot-for-Ecommerce-Sales-Support/decision/proposal"
	"github.com/mriduliimm/Gen-AI-bot-for-Ecommerce-Sales-Support/render"
)

// =============================================================================
// GENERATE COMMAND
// =============================================================================

func generateCommand() *cli.Command {
	return &cli.Command{
		Name:  "generate",
		Usage: "Generate a proposal for a customer",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "customer",
				Aliases: []string{"c"},
				Usage:   "Customer file (YAML or JSON)",
			},
			&cli.StringFlag{Name: "company", Usage: "Company name"},
			&cli.StringFlag{Name: "industry", Usage: "Industry"},
			&cli.StringFlag{Name: "region", Usage: "Region code (default IN)"},
			&cli.StringFlag{Name: "use-case", Usage: "Primary use case"},
			&cli.StringSliceFlag{Name: "objective", Usage: "Business objective (repeatable)"},
			&cli.IntFlag{Name: "timeline-weeks", Usage: "Delivery timeline in weeks (default 8)"},
			&cli.Float64Flag{Name: "budget-min", Usage: "Minimum budget"},
			&cli.Float64Flag{Name: "budget-max", Usage: "Maximum budget"},
			&cli.StringFlag{Name: "notes", Usage: "Discovery notes"},
			&cli.StringSliceFlag{
				Name:    "must-have",
				Aliases: []string{"m"},
				Usage:   "Required feature keyword (repeatable or comma-separated)",
			},
			&cli.StringFlag{Name: "currency", Usage: "Quote currency"},
			&cli.Float64Flag{Name: "discount", Usage: "Requested discount percent"},
			&cli.IntFlag{Name: "top-k", Usage: "Snippets to retrieve"},
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Value:   "table",
				Usage:   "Output format (table, json, markdown)",
			},
			&cli.BoolFlag{Name: "docx", Usage: "Also write a DOCX document to the output directory"},
			&cli.BoolFlag{Name: "pdf", Usage: "Also write a PDF document to the output directory"},
			&cli.BoolFlag{Name: "no-save", Usage: "Do not persist the session"},
		},
		Action: runGenerate,
	}
}

func runGenerate(c *cli.Context) error {
	customer, mustHave, err := customerFromFlags(c)
	if err != nil {
		return err
	}

	a, err := setup(c, !c.Bool("no-save"))
	if err != nil {
		return err
	}
	defer a.Close()

	req := proposal.Request{
		Customer: customer,
		MustHave: mustHave,
		Currency: c.String("currency"),
		TopK:     c.Int("top-k"),
		Save:     !c.Bool("no-save"),
	}
	if c.IsSet("discount") {
		d := decimal.NewFromFloat(c.Float64("discount"))
		req.DiscountPct = &d
	}

	res, err := a.generator.Generate(c.Context, req)
	if err != nil {
		return err
	}

	for _, format := range documentFormats(c) {
		path, err := writeDocument(a.cfg.Data.OutDir, format, res)
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "📄 Wrote %s\n", path)
	}

	switch c.String("format") {
	case "json":
		err = outputProposalJSON(res)
	case "markdown":
		_, err = fmt.Print(res.Markdown)
	default:
		outputProposalTable(res)
	}
	if err != nil {
		return err
	}

	if res.Policy != nil && res.Policy.Decision == policy.DecisionDeny {
		return cli.Exit("", 2)
	}
	return nil
}

func documentFormats(c *cli.Context) []string {
	var out []string
	if c.Bool("docx") {
		out = append(out, render.FormatDOCX)
	}
	if c.Bool("pdf") {
		out = append(out, render.FormatPDF)
	}
	return out
}

// writeDocument renders res into dir and returns the file path.
func writeDocument(dir, format string, res *proposal.Result) (string, error) {
	r, err := render.ForFormat(format)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	path := filepath.Join(dir, render.FileName(res.Plan.Customer.Company, r.Extension()))
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	if err := r.Render(res.Context, f); err != nil {
		return "", fmt.Errorf("failed to render %s: %w", format, err)
	}
	return path, f.Close()
}

// =============================================================================
// OUTPUT FORMATTERS
// =============================================================================

type proposalJSON struct {
	SessionID    string                   `json:"session_id,omitempty"`
	CatalogHash  string                   `json:"catalog_hash"`
	UsedFallback bool                     `json:"used_fallback"`
	Plan         any                      `json:"plan"`
	Pricing      quoteJSON                `json:"pricing"`
	Claims       []string                 `json:"claims"`
	Policy       *policy.EvaluationResult `json:"policy"`
	Markdown     string                   `json:"markdown"`
}

func outputProposalJSON(res *proposal.Result) error {
	return writeJSON(proposalJSON{
		SessionID:    res.SessionID,
		CatalogHash:  res.CatalogHash,
		UsedFallback: res.UsedFallback,
		Plan:         res.Plan,
		Pricing:      toQuoteJSON(res.Pricing),
		Claims:       res.Claims,
		Policy:       res.Policy,
		Markdown:     res.Markdown,
	})
}

func outputProposalTable(res *proposal.Result) {
	b := res.Pricing
	fmt.Println()
	fmt.Println("╔══════════════════════════════════════════════════════════════╗")
	fmt.Println("║                      📝 SALES PROPOSAL                        ║")
	fmt.Println("╠══════════════════════════════════════════════════════════════╣")
	row("Customer:", truncate(res.Plan.Customer.Company, 38))
	row("Region:", res.Plan.Customer.Region)
	row("Timeline:", fmt.Sprintf("%d weeks", res.Plan.TotalWeeks()))
	if res.SessionID != "" {
		row("Session:", res.SessionID)
	}
	fmt.Println("╠══════════════════════════════════════════════════════════════╣")
	fmt.Println("║  SELECTED PRODUCTS                                            ║")
	fmt.Println("╠══════════════════════════════════════════════════════════════╣")
	for _, it := range b.Items {
		fmt.Printf("║  %-35s  %-22s ║\n", truncate(it.SKU+" "+it.Name, 35), it.Subtotal.StringFixed(2))
	}
	fmt.Println("╠══════════════════════════════════════════════════════════════╣")
	row("Subtotal:", b.Currency+" "+b.Subtotal.StringFixed(2))
	row("Discount ("+b.DiscountPct.String()+"%):", "-"+b.Currency+" "+b.DiscountAmount.StringFixed(2))
	row("Tax ("+b.TaxPct.String()+"%):", b.Currency+" "+b.TaxAmount.StringFixed(2))
	row("Total:", b.Currency+" "+b.Total.StringFixed(2))
	fmt.Println("╠══════════════════════════════════════════════════════════════╣")

	if res.Policy != nil {
		row("Policy Result:", decisionLabel(res.Policy.Decision))
		for _, v := range res.Policy.Violations {
			fmt.Printf("║  ❌ %-57s ║\n", truncate(v.Message, 57))
		}
		for _, w := range res.Policy.Warnings {
			fmt.Printf("║  ⚠️  %-56s ║\n", truncate(w.Message, 56))
		}
		for _, n := range res.Policy.Notices {
			fmt.Printf("║  ℹ️  %-56s ║\n", truncate(n.Message, 56))
		}
	}
	fmt.Println("╚══════════════════════════════════════════════════════════════╝")

	if res.UsedFallback {
		fmt.Fprintln(os.Stderr, "⚠️  No product matched every requirement; showing the full catalog")
	}
}

// row prints one label/value line of the boxed table.
func row(label, value string) {
	fmt.Printf("║  %-22s%-38s ║\n", label, value)
}

func decisionLabel(d policy.Decision) string {
	switch d {
	case policy.DecisionPass:
		return "✅ PASS"
	case policy.DecisionWarn:
		return "⚠️  WARN"
	case policy.DecisionDeny:
		return "❌ DENY"
	}
	return string(d)
}

func writeJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen-3]) + "..."
}
