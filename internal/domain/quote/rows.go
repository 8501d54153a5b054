package quote

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Row is one line item flattened together with its quote header, ready for
// a spreadsheet.
type Row struct {
	QuotationID   int64
	Date          time.Time
	CustomerName  string
	CustomerEmail string
	ProductName   string
	Quantity      int
	UnitPrice     decimal.Decimal
	LineTotal     decimal.Decimal
}

// Values returns the cells in column order. Money goes out as float64 at
// two places; spreadsheets have no decimal type.
func (r Row) Values() []any {
	return []any{
		r.QuotationID,
		FormatDate(r.Date),
		r.CustomerName,
		r.CustomerEmail,
		r.ProductName,
		r.Quantity,
		r.UnitPrice.Round(2).InexactFloat64(),
		r.LineTotal.Round(2).InexactFloat64(),
	}
}

// Rows flattens quotes in the given order. A quote without items produces
// no rows.
func Rows(quotes []Quote) ([]Row, error) {
	var rows []Row
	for _, q := range quotes {
		for i, it := range q.Items {
			if err := it.validate(); err != nil {
				return nil, fmt.Errorf("quote %d line %d: %w: %v", q.ID, i+1, ErrInvalidInput, err)
			}
			rows = append(rows, Row{
				QuotationID:   q.ID,
				Date:          q.CreatedAt,
				CustomerName:  q.Customer.Name,
				CustomerEmail: q.Customer.Email,
				ProductName:   it.ProductName,
				Quantity:      it.Quantity,
				UnitPrice:     it.UnitPrice,
				LineTotal:     it.Total(),
			})
		}
	}
	return rows, nil
}

var rowHeaders = map[string][]string{
	"es": {"ID Cotización", "Fecha", "Cliente", "Email", "Producto", "Cantidad", "Precio Unitario", "Precio Total"},
	"en": {"Quotation ID", "Date", "Customer", "Email", "Product", "Quantity", "Unit Price", "Line Total"},
}

// RowHeaders returns column captions for lang, falling back to Spanish.
func RowHeaders(lang string) []string {
	if h, ok := rowHeaders[lang]; ok {
		return h
	}
	return rowHeaders["es"]
}

// MoneyColumns are the zero-based indexes of monetary columns in Values.
var MoneyColumns = []int{6, 7}
