package quote

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const DateLayout = "02/01/2006"

// FormatDate prints the UTC calendar day of t, the same day the date range
// filters match on.
func FormatDate(t time.Time) string {
	return t.UTC().Format(DateLayout)
}

// Money renders amounts as "$ 1.234,50": dot for thousands, comma for
// decimals, always two fraction digits.
type Money struct {
	Symbol string
}

func (m Money) Format(d decimal.Decimal) string {
	d = d.Round(2)
	neg := d.IsNegative()
	s := d.Abs().StringFixed(2)
	intPart, frac, _ := strings.Cut(s, ".")

	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	if m.Symbol != "" {
		b.WriteString(m.Symbol)
		b.WriteByte(' ')
	}
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(r)
	}
	b.WriteByte(',')
	b.WriteString(frac)
	return b.String()
}

// percent renders a rate such as 0.19 as "19%".
func percent(rate decimal.Decimal) string {
	return rate.Shift(2).String() + "%"
}
