package gofpdf

import (
	"bytes"

	"github.com/jung-kurt/gofpdf"
	"github.com/sirupsen/logrus"

	"github.com/cotizador/quoter/internal/domain/quote"
)

const (
	font       = "Helvetica"
	lineHeight = 7.0
)

var (
	itemWidths   = []float64{100, 22, 34, 34}
	itemAligns   = []string{"L", "R", "R", "R"}
	labelWidth   = 45.0
	totalsOffset = 110.0
)

type Generator struct {
	Money  quote.Money
	Issuer string
	// Compress deflates page streams. Tests switch it off to inspect text.
	Compress bool
	Log      *logrus.Logger
}

func New(money quote.Money, issuer string, log *logrus.Logger) *Generator {
	return &Generator{Money: money, Issuer: issuer, Compress: true, Log: log}
}

// Generate renders the invoice of q into a complete PDF. Nothing is returned
// unless the whole document was written. Dates inside the file come from
// q.CreatedAt, so the same input always yields the same bytes.
func (g *Generator) Generate(q quote.Quote, t quote.Totals) ([]byte, error) {
	doc, err := quote.NewDocument(q, t, g.Money)
	if err != nil {
		return nil, &quote.RenderError{QuoteID: q.ID, Stage: "layout", Err: err}
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetCompression(g.Compress)
	pdf.SetCatalogSort(true)
	pdf.SetCreationDate(q.CreatedAt.UTC())
	pdf.SetModificationDate(q.CreatedAt.UTC())
	pdf.SetTitle(doc.Title, true)
	if g.Issuer != "" {
		pdf.SetAuthor(g.Issuer, true)
	}
	pdf.SetAutoPageBreak(true, 15)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetFont(font, "B", 16)
	pdf.Cell(0, 10, tr(doc.Title))
	pdf.Ln(12)

	g.headerBlock(pdf, tr, doc.Header)
	pdf.Ln(6)
	g.itemsBlock(pdf, tr, doc.Items)
	pdf.Ln(6)
	g.totalsBlock(pdf, tr, doc.Totals)

	if g.Issuer != "" {
		pdf.Ln(10)
		pdf.SetFont(font, "", 9)
		pdf.Cell(0, 5, tr(g.Issuer))
	}

	if err := pdf.Error(); err != nil {
		return nil, &quote.RenderError{QuoteID: q.ID, Stage: "pdf layout", Err: err}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		if g.Log != nil {
			g.Log.WithField("quote_id", q.ID).Errorf("quote pdf: output failed: %v", err)
		}
		return nil, &quote.RenderError{QuoteID: q.ID, Stage: "pdf output", Err: err}
	}
	return buf.Bytes(), nil
}

func (g *Generator) headerBlock(pdf *gofpdf.Fpdf, tr func(string) string, rows []quote.Field) {
	for _, f := range rows {
		pdf.SetFont(font, "B", 10)
		pdf.CellFormat(labelWidth, lineHeight, tr(f.Label), "1", 0, "L", false, 0, "")
		pdf.SetFont(font, "", 10)
		pdf.CellFormat(0, lineHeight, tr(f.Value), "1", 1, "L", false, 0, "")
	}
}

func (g *Generator) itemsBlock(pdf *gofpdf.Fpdf, tr func(string) string, rows [][]string) {
	pdf.SetFont(font, "B", 10)
	pdf.SetFillColor(230, 230, 230)
	for i, col := range quote.ItemColumns {
		pdf.CellFormat(itemWidths[i], lineHeight, tr(col), "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont(font, "", 10)
	for _, row := range rows {
		for i, cell := range row {
			if i == 0 {
				cell = trim(cell, 55)
			}
			pdf.CellFormat(itemWidths[i], lineHeight, tr(cell), "1", 0, itemAligns[i], false, 0, "")
		}
		pdf.Ln(-1)
	}
}

func (g *Generator) totalsBlock(pdf *gofpdf.Fpdf, tr func(string) string, rows []quote.Field) {
	left, _, _, _ := pdf.GetMargins()
	for i, f := range rows {
		style := ""
		if i == len(rows)-1 {
			style = "B"
		}
		pdf.SetX(left + totalsOffset)
		pdf.SetFont(font, "B", 10)
		pdf.CellFormat(40, lineHeight, tr(f.Label), "1", 0, "L", false, 0, "")
		pdf.SetFont(font, style, 10)
		pdf.CellFormat(0, lineHeight, tr(f.Value), "1", 1, "R", false, 0, "")
	}
}

func trim(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-1]) + "…"
}
