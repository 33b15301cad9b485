package render

import (
	"fmt"
	"io"

	"github.com/jung-kurt/gofpdf"
)

// PDFRenderer lays out the proposal on A4 pages with the core Helvetica font.
type PDFRenderer struct{}

func (PDFRenderer) Format() string      { return FormatPDF }
func (PDFRenderer) Extension() string   { return "pdf" }
func (PDFRenderer) ContentType() string { return "application/pdf" }

func (PDFRenderer) Render(ctx Context, w io.Writer) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	title := ctx.Title
	if title == "" {
		title = "Sales Proposal"
	}
	pdf.SetTitle(title, true)
	pdf.SetAutoPageBreak(true, 15)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, tr(title))
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "", 10)
	pdf.Cell(0, 5, tr(fmt.Sprintf("Industry: %s   Region: %s", ctx.Industry, ctx.Region)))
	pdf.Ln(5)
	pdf.Cell(0, 5, tr("Use case: "+ctx.UseCase))
	pdf.Ln(8)

	for _, s := range sections(ctx) {
		pdf.SetFont("Helvetica", "B", 13)
		pdf.Cell(0, 8, tr(s.Heading))
		pdf.Ln(8)

		if s.Heading == "Commercials" && ctx.Pricing != nil && len(ctx.Pricing.Items) > 0 {
			writePricingTable(pdf, tr, ctx)
			continue
		}

		pdf.SetFont("Helvetica", "", 10)
		for _, p := range s.Paragraphs {
			pdf.MultiCell(0, 5, tr(p), "", "L", false)
		}
		pdf.Ln(3)
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("failed to render pdf: %w", err)
	}
	return nil
}

func writePricingTable(pdf *gofpdf.Fpdf, tr func(string) string, ctx Context) {
	pr := ctx.Pricing

	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(85, 7, "Item", "B", 0, "L", false, 0, "")
	pdf.CellFormat(20, 7, "Qty", "B", 0, "R", false, 0, "")
	pdf.CellFormat(35, 7, "Unit price", "B", 0, "R", false, 0, "")
	pdf.CellFormat(40, 7, "Subtotal", "B", 1, "R", false, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	for _, it := range pr.Items {
		pdf.CellFormat(85, 6, tr(trim(fmt.Sprintf("%s (%s)", it.Name, it.SKU), 48)), "", 0, "L", false, 0, "")
		pdf.CellFormat(20, 6, it.Qty.String(), "", 0, "R", false, 0, "")
		pdf.CellFormat(35, 6, money(it.UnitPrice), "", 0, "R", false, 0, "")
		pdf.CellFormat(40, 6, money(it.Subtotal), "", 1, "R", false, 0, "")
	}
	pdf.Ln(2)

	totals := []struct {
		label, value string
	}{
		{"Subtotal", money(pr.Subtotal)},
		{fmt.Sprintf("Discount (%s%%)", pr.DiscountPct), "-" + money(pr.DiscountAmount)},
		{fmt.Sprintf("Tax (%s%%)", pr.TaxPct), money(pr.TaxAmount)},
	}
	for _, t := range totals {
		pdf.CellFormat(140, 6, tr(t.label), "", 0, "R", false, 0, "")
		pdf.CellFormat(40, 6, t.value, "", 1, "R", false, 0, "")
	}
	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(140, 7, tr("Total ("+pr.Currency+")"), "T", 0, "R", false, 0, "")
	pdf.CellFormat(40, 7, money(pr.Total), "T", 1, "R", false, 0, "")
	pdf.Ln(3)
}

func trim(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-1]) + "…"
}
