package render

import (
	"archive/zip"
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mriduliimm/Gen-AI-bot-for-Ecommerce-Sales-Support/decision/compliance"
	"github.com/mriduliimm/Gen-AI-bot-for-Ecommerce-Sales-Support/decision/pricing"
	"github.com/mriduliimm/Gen-AI-bot-for-Ecommerce-Sales-Support/pkg/api"
)

var sectionHeadings = []string{
	"Executive Summary", "Customer Objectives", "Proposed Solution", "Architecture",
	"Implementation Plan", "Commercials", "Risks & Mitigations", "Assumptions & Terms", "Citations",
}

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func sampleContext() Context {
	plan := api.Plan{
		Customer:         api.Customer{Company: "Acme Retail", Industry: "Retail", Region: "IN", UseCase: "analytics"},
		Objectives:       []string{"reduce churn"},
		SelectedSKUs:     []api.SelectedSKU{{SKU: "A", Reason: "Matches features for analytics", MustHave: true}},
		SolutionOverview: "Line one.\nLine two.",
		Architecture:     []api.ArchitectureItem{{Component: "Backend", Role: "Core APIs & Orchestration"}},
		ImplementationPlan: []api.Phase{
			{Phase: "Discovery", Weeks: 1},
		},
		RisksMitigations: []api.RiskMitigation{{Risk: "Data quality issues", Mitigation: "Pre-launch validation jobs"}},
		ROISummary:       api.ROISummary{PeriodMonths: 12, Benefits: []string{"Faster onboarding"}},
		Citations:        []string{"products#A", "kb/faq.md"},
	}
	breakdown := &pricing.Breakdown{
		Currency: "INR",
		Items: []pricing.ItemResult{
			{SKU: "A", Name: "Analytics Suite", UnitPrice: d("100000"), Qty: d("2"), Subtotal: d("200000")},
		},
		DiscountPct:    d("20"),
		Subtotal:       d("200000"),
		DiscountAmount: d("40000"),
		TaxPct:         d("18"),
		TaxAmount:      d("28800"),
		Total:          d("188800"),
	}
	names := func(sku string) string {
		if sku == "A" {
			return "Analytics Suite"
		}
		return ""
	}
	return NewContext(plan, breakdown, names, compliance.MandatoryClauses())
}

func TestNewContext(t *testing.T) {
	ctx := sampleContext()

	assert.Equal(t, "Proposal for Acme Retail", ctx.Title)
	require.Len(t, ctx.SelectedSKUs, 1)
	assert.Equal(t, "Analytics Suite", ctx.SelectedSKUs[0].Name)
	assert.Len(t, ctx.Assumptions, 3)

	empty := NewContext(api.Plan{}, nil, nil, nil)
	assert.NotNil(t, empty.Pricing)
}

func TestMarkdown(t *testing.T) {
	md, err := Markdown(sampleContext())
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(md, "# Proposal for Acme Retail"))
	for _, h := range sectionHeadings {
		assert.Contains(t, md, "## "+h)
	}
	assert.Contains(t, md, "| Analytics Suite | A | 2 | 100000.00 | 200000.00 |")
	assert.Contains(t, md, "- Discount (20%): -INR 40000.00")
	assert.Contains(t, md, "**Total: INR 188800.00**")
	assert.Contains(t, md, "- Pricing valid for 30 days from date of issue.")
	assert.Contains(t, md, "- kb/faq.md")
	assert.Empty(t, compliance.CheckClaims(md))
}

func TestMarkdownEmptyPlan(t *testing.T) {
	md, err := Markdown(NewContext(api.Plan{Customer: api.Customer{Company: "X"}}, nil, nil, nil))
	require.NoError(t, err)
	assert.Contains(t, md, "- The stated business objectives")
	assert.Contains(t, md, "- None")
}

func TestDOCX(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, DOCXRenderer{}.Render(sampleContext(), &buf))

	zr, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	require.NoError(t, err)

	var document string
	names := make([]string, 0, len(zr.File))
	for _, f := range zr.File {
		names = append(names, f.Name)
		if f.Name == "word/document.xml" {
			rc, err := f.Open()
			require.NoError(t, err)
			data, err := io.ReadAll(rc)
			require.NoError(t, err)
			rc.Close()
			document = string(data)
		}
	}

	assert.Contains(t, names, "[Content_Types].xml")
	assert.Contains(t, names, "_rels/.rels")
	for _, h := range sectionHeadings {
		assert.Contains(t, document, strings.ReplaceAll(h, "&", "&amp;"))
	}
	assert.Contains(t, document, "Total: INR 188800.00")
	assert.Contains(t, document, "• reduce churn")
}

func TestPDF(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, PDFRenderer{}.Render(sampleContext(), &buf))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
}

func TestForFormat(t *testing.T) {
	for _, name := range []string{"", "markdown", "md", ".docx", "PDF"} {
		r, err := ForFormat(name)
		require.NoError(t, err, name)
		assert.NotEmpty(t, r.ContentType())
	}
	_, err := ForFormat("html")
	assert.Error(t, err)
}

func TestFileName(t *testing.T) {
	assert.Equal(t, "proposal_Acme_Retail.docx", FileName(" Acme Retail ", "docx"))
}
