// Package pipeline turns stored quotes into totals, invoices and sheets.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/cotizador/quoter/internal/domain/catalog"
	"github.com/cotizador/quoter/internal/domain/export"
	"github.com/cotizador/quoter/internal/domain/quote"
	"github.com/cotizador/quoter/internal/domain/quote/pdf"
	"github.com/cotizador/quoter/internal/infra/cache"
)

// Scope limits which quotes a caller may see. UserID 0 means every quote.
type Scope struct {
	UserID int64
}

func (s Scope) allows(q quote.Quote) bool {
	return s.UserID == 0 || q.UserID == s.UserID
}

type Service struct {
	Quotes   quote.Repository
	Catalog  catalog.Repository
	Calc     quote.Calculator
	PDF      pdf.Generator
	Sheets   export.Writer
	Cache    cache.Cache
	CacheTTL time.Duration
	Log      *logrus.Logger
}

// Detail loads a quote visible to scope together with freshly computed
// totals. Quotes outside the scope are reported as not found.
func (s *Service) Detail(ctx context.Context, id int64, scope Scope) (quote.Quote, quote.Totals, error) {
	q, err := s.Quotes.Get(ctx, id)
	if err != nil {
		return quote.Quote{}, quote.Totals{}, err
	}
	if !scope.allows(q) {
		return quote.Quote{}, quote.Totals{}, quote.ErrNotFound
	}
	t, err := s.Calc.Compute(q.Items)
	if err != nil {
		return quote.Quote{}, quote.Totals{}, fmt.Errorf("quote %d: totals: %w", id, err)
	}
	return q, t, nil
}

// Invoice renders the PDF of one quote. Output is cached under the quote's
// update time, so a changed quote is always rendered again.
func (s *Service) Invoice(ctx context.Context, id int64, scope Scope) (export.File, error) {
	q, t, err := s.Detail(ctx, id, scope)
	if err != nil {
		return export.File{}, err
	}

	file := export.File{
		Name:        fmt.Sprintf("invoice_%d.pdf", q.ID),
		ContentType: export.ContentTypePDF,
	}

	key := s.Cache.GenerateKey("invoice", fmt.Sprintf("%d:%d", q.ID, q.UpdatedAt.UnixNano()))
	if body, ok, err := s.Cache.Get(ctx, key); err != nil {
		s.log().WithFields(logrus.Fields{"quote_id": q.ID, "key": key}).Warnf("invoice cache get: %v", err)
	} else if ok {
		file.Body = body
		return file, nil
	}

	body, err := s.PDF.Generate(q, t)
	if err != nil {
		return export.File{}, err
	}
	if err := s.Cache.Set(ctx, key, body, s.CacheTTL); err != nil {
		s.log().WithFields(logrus.Fields{"quote_id": q.ID, "key": key}).Warnf("invoice cache set: %v", err)
	}
	file.Body = body
	return file, nil
}

// ExportQuotes writes every quote matching f as one sheet row per line item.
func (s *Service) ExportQuotes(ctx context.Context, f quote.Filter, lang string) (export.File, error) {
	quotes, err := s.Quotes.List(ctx, f)
	if err != nil {
		return export.File{}, err
	}
	rows, err := quote.Rows(quotes)
	if err != nil {
		return export.File{}, fmt.Errorf("export quotes: %w", err)
	}

	cells := make([][]any, len(rows))
	for i, r := range rows {
		cells[i] = r.Values()
	}
	body, err := s.Sheets.Write(sheetName(lang, "Cotizaciones", "Quotations"), quote.RowHeaders(lang), cells, quote.MoneyColumns)
	if err != nil {
		return export.File{}, fmt.Errorf("export quotes: %w", err)
	}
	return export.File{Name: "quotations.xlsx", ContentType: export.ContentTypeXLSX, Body: body}, nil
}

func (s *Service) ExportProducts(ctx context.Context, f catalog.ProductFilter, lang string) (export.File, error) {
	products, err := s.Catalog.ListProducts(ctx, f)
	if err != nil {
		return export.File{}, err
	}
	cells := make([][]any, len(products))
	for i, p := range products {
		cells[i] = catalog.ProductValues(p, lang)
	}
	body, err := s.Sheets.Write(sheetName(lang, "Productos", "Products"), catalog.ProductHeaders(lang), cells, catalog.ProductMoneyColumns)
	if err != nil {
		return export.File{}, fmt.Errorf("export products: %w", err)
	}
	return export.File{Name: "products.xlsx", ContentType: export.ContentTypeXLSX, Body: body}, nil
}

func (s *Service) log() *logrus.Logger {
	if s.Log == nil {
		return logrus.StandardLogger()
	}
	return s.Log
}

func sheetName(lang, es, en string) string {
	if lang == "en" {
		return en
	}
	return es
}
