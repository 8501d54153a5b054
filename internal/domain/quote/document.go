package quote

import (
	"fmt"
	"strconv"
)

var ItemColumns = []string{"Description", "Quantity", "Unit Price", "Line Total"}

type Field struct {
	Label string
	Value string
}

// Document is the invoice laid out as text, block by block. Renderers draw
// it as is and never format values themselves.
type Document struct {
	Title  string
	Header []Field
	Items  [][]string
	Totals []Field
}

func NewDocument(q Quote, t Totals, m Money) (Document, error) {
	if err := t.check(); err != nil {
		return Document{}, err
	}

	doc := Document{
		Title: fmt.Sprintf("Invoice %d", q.ID),
		Header: []Field{
			{Label: "Invoice No.", Value: strconv.FormatInt(q.ID, 10)},
			{Label: "Date", Value: FormatDate(q.CreatedAt)},
			{Label: "Customer", Value: q.Customer.Name},
			{Label: "Email", Value: q.Customer.Email},
			{Label: "Phone", Value: q.Customer.Phone},
			{Label: "Tax ID", Value: q.Customer.TaxID},
		},
		Items: make([][]string, 0, len(q.Items)),
		Totals: []Field{
			{Label: "Subtotal", Value: m.Format(t.Subtotal)},
			{Label: fmt.Sprintf("Tax (%s)", percent(t.Rate)), Value: m.Format(t.Tax)},
			{Label: "Total", Value: m.Format(t.Total)},
		},
	}

	for i, it := range q.Items {
		if err := it.validate(); err != nil {
			return Document{}, fmt.Errorf("line %d: %w: %v", i+1, ErrInvalidInput, err)
		}
		doc.Items = append(doc.Items, []string{
			it.ProductName,
			strconv.Itoa(it.Quantity),
			m.Format(it.UnitPrice),
			m.Format(it.Total()),
		})
	}
	return doc, nil
}

// RenderError ties a rendering failure to the quote and the stage it
// happened in. It unwraps to the underlying error.
type RenderError struct {
	QuoteID int64
	Stage   string
	Err     error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("quote %d: %s: %v", e.QuoteID, e.Stage, e.Err)
}

func (e *RenderError) Unwrap() error { return e.Err }
