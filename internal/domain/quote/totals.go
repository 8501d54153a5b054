package quote

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// DefaultTaxRate is the rate used when configuration does not set one.
var DefaultTaxRate = decimal.RequireFromString("0.19")

type Totals struct {
	Rate     decimal.Decimal
	Subtotal decimal.Decimal
	Tax      decimal.Decimal
	Total    decimal.Decimal
}

// Calculator derives totals from line items. It holds no state besides the
// rate and may be shared between goroutines.
type Calculator struct {
	TaxRate decimal.Decimal
}

func NewCalculator(rate decimal.Decimal) Calculator {
	return Calculator{TaxRate: rate}
}

// Compute sums the line totals and applies the tax rate. Tax is rounded to
// two places half-up; subtotal is already exact at that scale because unit
// prices carry two decimals.
func (c Calculator) Compute(items []LineItem) (Totals, error) {
	subtotal := decimal.Zero
	for i, it := range items {
		if err := it.validate(); err != nil {
			return Totals{}, fmt.Errorf("line %d: %w: %v", i+1, ErrInvalidInput, err)
		}
		subtotal = subtotal.Add(it.Total())
	}
	tax := subtotal.Mul(c.TaxRate).Round(2)
	return Totals{
		Rate:     c.TaxRate,
		Subtotal: subtotal,
		Tax:      tax,
		Total:    subtotal.Add(tax),
	}, nil
}

func (t Totals) check() error {
	if t.Subtotal.IsNegative() || t.Tax.IsNegative() || t.Total.IsNegative() {
		return fmt.Errorf("%w: negative totals", ErrInvalidInput)
	}
	if !t.Subtotal.Add(t.Tax).Equal(t.Total) {
		return fmt.Errorf("%w: %s + %s != %s", ErrInconsistentTotals, t.Subtotal, t.Tax, t.Total)
	}
	return nil
}
