package render

import (
	"bytes"
	"embed"
	"fmt"
	"io"
	"strings"
	"text/template"

	"github.com/shopspring/decimal"
)

// Formats
const (
	FormatMarkdown = "markdown"
	FormatDOCX     = "docx"
	FormatPDF      = "pdf"
)

//go:embed templates/proposal.md.tmpl
var templateFS embed.FS

var proposalTemplate = template.Must(
	template.New("proposal.md.tmpl").
		Funcs(template.FuncMap{"money": money}).
		ParseFS(templateFS, "templates/proposal.md.tmpl"),
)

func money(d decimal.Decimal) string { return d.StringFixed(2) }

// Renderer writes a proposal document in one format.
type Renderer interface {
	Format() string
	Extension() string
	ContentType() string
	Render(ctx Context, w io.Writer) error
}

// ForFormat returns the renderer for a format name or file extension.
func ForFormat(name string) (Renderer, error) {
	switch strings.ToLower(strings.TrimPrefix(strings.TrimSpace(name), ".")) {
	case "", FormatMarkdown, "md":
		return MarkdownRenderer{}, nil
	case FormatDOCX:
		return DOCXRenderer{}, nil
	case FormatPDF:
		return PDFRenderer{}, nil
	default:
		return nil, fmt.Errorf("unsupported document format %q", name)
	}
}

// MarkdownRenderer renders the embedded proposal template.
type MarkdownRenderer struct{}

func (MarkdownRenderer) Format() string      { return FormatMarkdown }
func (MarkdownRenderer) Extension() string   { return "md" }
func (MarkdownRenderer) ContentType() string { return "text/markdown; charset=utf-8" }

func (MarkdownRenderer) Render(ctx Context, w io.Writer) error {
	if err := proposalTemplate.Execute(w, ctx); err != nil {
		return fmt.Errorf("failed to render markdown: %w", err)
	}
	return nil
}

// Markdown renders ctx to a string.
func Markdown(ctx Context) (string, error) {
	var buf bytes.Buffer
	if err := (MarkdownRenderer{}).Render(ctx, &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// section is a heading with plain-text paragraphs, shared by the DOCX and PDF
// renderers.
type section struct {
	Heading    string
	Paragraphs []string
}

func sections(ctx Context) []section {
	var out []section
	add := func(heading string, paras ...string) {
		out = append(out, section{Heading: heading, Paragraphs: paras})
	}

	add("Executive Summary", strings.Split(ctx.SolutionOverview, "\n")...)

	var objectives []string
	for _, o := range ctx.Objectives {
		objectives = append(objectives, "• "+o)
	}
	add("Customer Objectives", objectives...)

	var solution []string
	for _, s := range ctx.SelectedSKUs {
		solution = append(solution, fmt.Sprintf("- %s: %s (%s)", s.SKU, s.Name, s.Reason))
	}
	add("Proposed Solution", solution...)

	var arch []string
	for _, a := range ctx.Architecture {
		arch = append(arch, fmt.Sprintf("- %s: %s", a.Component, a.Role))
	}
	add("Architecture", arch...)

	var phases []string
	for _, p := range ctx.ImplementationPlan {
		phases = append(phases, fmt.Sprintf("- %s: %d weeks", p.Phase, p.Weeks))
	}
	add("Implementation Plan", phases...)

	var commercials []string
	if pr := ctx.Pricing; pr != nil {
		for _, it := range pr.Items {
			commercials = append(commercials, fmt.Sprintf("- %s (SKU %s) x%s: %s %s", it.Name, it.SKU, it.Qty, pr.Currency, money(it.Subtotal)))
		}
		commercials = append(commercials,
			fmt.Sprintf("Subtotal: %s %s", pr.Currency, money(pr.Subtotal)),
			fmt.Sprintf("Discount (%s%%): -%s %s", pr.DiscountPct, pr.Currency, money(pr.DiscountAmount)),
			fmt.Sprintf("Tax (%s%%): %s %s", pr.TaxPct, pr.Currency, money(pr.TaxAmount)),
			fmt.Sprintf("Total: %s %s", pr.Currency, money(pr.Total)),
		)
	}
	add("Commercials", commercials...)

	var risks []string
	for _, rm := range ctx.RisksMitigations {
		risks = append(risks, fmt.Sprintf("- Risk: %s | Mitigation: %s", rm.Risk, rm.Mitigation))
	}
	add("Risks & Mitigations", risks...)

	var terms []string
	for _, a := range ctx.Assumptions {
		terms = append(terms, "- "+a)
	}
	add("Assumptions & Terms", terms...)

	add("Citations", ctx.Citations...)
	return out
}
