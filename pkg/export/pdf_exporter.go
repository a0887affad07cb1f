package export

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"
)

const (
	pageWidth    = 210.0
	marginLeft   = 15.0
	marginTop    = 15.0
	marginRight  = 15.0
	marginBottom = 15.0
	rowHeight    = 7.0
	cellPadding  = 2.0
	ellipsis     = "..."
)

// Document is a printable single-section document: a title, summary lines and one table.
type Document struct {
	Title      string
	Lines      []string
	TableTitle string
	Table      Dataset
}

// PDFExporter renders documents with gofpdf.
type PDFExporter struct{}

// NewPDFExporter constructs a PDF exporter.
func NewPDFExporter() *PDFExporter {
	return &PDFExporter{}
}

// RenderDocument lays the document out on A4 pages. The table header is repeated
// whenever the table continues onto a new page.
func (e *PDFExporter) RenderDocument(doc Document) ([]byte, error) {
	if len(doc.Table.Headers) == 0 {
		return nil, fmt.Errorf("pdf requires at least one table header")
	}
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(marginLeft, marginTop, marginRight)
	pdf.SetAutoPageBreak(false, marginBottom)
	pdf.AddPage()
	// Core fonts are cp1252; text arrives as UTF-8.
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	if doc.Title != "" {
		pdf.SetFont("Arial", "B", 14)
		pdf.CellFormat(0, 10, tr(doc.Title), "", 1, "L", false, 0, "")
		pdf.Ln(2)
	}

	pdf.SetFont("Arial", "", 11)
	for _, line := range doc.Lines {
		ensureSpace(pdf, rowHeight)
		pdf.CellFormat(0, rowHeight, tr(line), "", 1, "L", false, 0, "")
	}

	if doc.TableTitle != "" {
		pdf.Ln(3)
		ensureSpace(pdf, 2*rowHeight)
		pdf.SetFont("Arial", "B", 12)
		pdf.CellFormat(0, 8, tr(doc.TableTitle), "", 1, "L", false, 0, "")
	}

	colWidth := (pageWidth - marginLeft - marginRight) / float64(len(doc.Table.Headers))
	writeHeader(pdf, tr, doc.Table.Headers, colWidth)

	pdf.SetFont("Arial", "", 10)
	for _, row := range doc.Table.Rows {
		if !hasSpace(pdf, rowHeight) {
			pdf.AddPage()
			writeHeader(pdf, tr, doc.Table.Headers, colWidth)
			pdf.SetFont("Arial", "", 10)
		}
		for _, cell := range fitRow(row, len(doc.Table.Headers)) {
			text := fitText(tr(cell), colWidth-cellPadding, pdf.GetStringWidth)
			pdf.CellFormat(colWidth, rowHeight, text, "1", 0, "C", false, 0, "")
		}
		pdf.Ln(-1)
	}

	if err := pdf.Error(); err != nil {
		return nil, fmt.Errorf("layout pdf: %w", err)
	}
	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func writeHeader(pdf *gofpdf.Fpdf, tr func(string) string, headers []string, colWidth float64) {
	pdf.SetFont("Arial", "B", 10)
	pdf.SetFillColor(240, 240, 240)
	for _, header := range headers {
		text := fitText(tr(header), colWidth-cellPadding, pdf.GetStringWidth)
		pdf.CellFormat(colWidth, rowHeight+1, text, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)
}

func hasSpace(pdf *gofpdf.Fpdf, height float64) bool {
	_, pageHeight := pdf.GetPageSize()
	return pdf.GetY()+height <= pageHeight-marginBottom
}

func ensureSpace(pdf *gofpdf.Fpdf, height float64) {
	if !hasSpace(pdf, height) {
		pdf.AddPage()
	}
}

// fitText shortens single-byte encoded text with a trailing ellipsis until
// measure reports it fits within width.
func fitText(text string, width float64, measure func(string) float64) string {
	if measure(text) <= width {
		return text
	}
	for cut := len(text) - 1; cut > 0; cut-- {
		candidate := text[:cut] + ellipsis
		if measure(candidate) <= width {
			return candidate
		}
	}
	return ""
}
