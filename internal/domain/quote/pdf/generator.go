package pdf

import "github.com/cotizador/quoter/internal/domain/quote"

type Generator interface {
	Generate(q quote.Quote, t quote.Totals) ([]byte, error)
}
