package pipeline

import (
	"bytes"
	"context"
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/cotizador/quoter/internal/domain/catalog"
	xlsx "github.com/cotizador/quoter/internal/domain/export/excelize"
	"github.com/cotizador/quoter/internal/domain/quote"
	"github.com/cotizador/quoter/internal/domain/user"
	"github.com/cotizador/quoter/internal/infra/cache"
	"github.com/cotizador/quoter/internal/infra/db/memory"
)

type countingPDF struct {
	calls int
	fail  error
}

func (c *countingPDF) Generate(q quote.Quote, t quote.Totals) ([]byte, error) {
	c.calls++
	if c.fail != nil {
		return nil, &quote.RenderError{QuoteID: q.ID, Stage: "pdf output", Err: c.fail}
	}
	return []byte("pdf:" + t.Total.StringFixed(2)), nil
}

type mapCache struct{ m map[string][]byte }

func (c *mapCache) Set(_ context.Context, k string, v []byte, _ time.Duration) error {
	c.m[k] = v
	return nil
}

func (c *mapCache) Get(_ context.Context, k string) ([]byte, bool, error) {
	v, ok := c.m[k]
	return v, ok, nil
}

func (c *mapCache) GenerateKey(op, k string) string { return op + ":" + k }

type env struct {
	svc   *Service
	store *memory.Store
	pdf   *countingPDF
	owner user.User
	quote quote.Quote
}

func newEnv(t *testing.T) env {
	t.Helper()
	ctx := context.Background()
	store := memory.New()
	clock := time.Date(2024, time.March, 1, 8, 0, 0, 0, time.UTC)
	store.Now = func() time.Time {
		clock = clock.Add(time.Minute)
		return clock
	}
	owner, _ := store.Users().Create(ctx, user.User{Username: "ana", FirstName: "Ana", LastName: "Soto", Email: "ana@example.com"})
	cat, _ := store.Catalog().CreateCategory(ctx, catalog.Category{Name: "Cables"})
	p, _ := store.Catalog().CreateProduct(ctx, catalog.Product{CategoryID: cat.ID, Name: "Cable", Price: decimal.NewFromInt(10), IsActive: true})
	q, err := store.Quotes().Create(ctx, quote.Draft{UserID: owner.ID, Items: []quote.LineItem{
		{ProductID: p.ID, ProductName: p.Name, Quantity: 3, UnitPrice: decimal.RequireFromString("10.00")},
	}})
	if err != nil {
		t.Fatalf("create quote: %v", err)
	}

	gen := &countingPDF{}
	svc := &Service{
		Quotes:   store.Quotes(),
		Catalog:  store.Catalog(),
		Calc:     quote.NewCalculator(quote.DefaultTaxRate),
		PDF:      gen,
		Sheets:   xlsx.New(),
		Cache:    &mapCache{m: map[string][]byte{}},
		CacheTTL: time.Minute,
	}
	return env{svc: svc, store: store, pdf: gen, owner: owner, quote: q}
}

func TestDetail(t *testing.T) {
	e := newEnv(t)
	q, totals, err := e.svc.Detail(context.Background(), e.quote.ID, Scope{})
	if err != nil {
		t.Fatalf("Detail: %v", err)
	}
	if q.ID != e.quote.ID || totals.Total.StringFixed(2) != "35.70" || totals.Tax.StringFixed(2) != "5.70" {
		t.Fatalf("got %+v %+v", q, totals)
	}
}

func TestDetail_OutOfScope(t *testing.T) {
	e := newEnv(t)
	_, _, err := e.svc.Detail(context.Background(), e.quote.ID, Scope{UserID: e.owner.ID + 100})
	if !errors.Is(err, quote.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestInvoice_CachesByVersion(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	f, err := e.svc.Invoice(ctx, e.quote.ID, Scope{UserID: e.owner.ID})
	if err != nil {
		t.Fatalf("Invoice: %v", err)
	}
	if f.ContentType != "application/pdf" || string(f.Body) != "pdf:35.70" {
		t.Fatalf("file = %+v", f)
	}
	if want := "invoice_" + itoa(e.quote.ID) + ".pdf"; f.Name != want {
		t.Fatalf("name = %q, want %q", f.Name, want)
	}

	if _, err := e.svc.Invoice(ctx, e.quote.ID, Scope{}); err != nil {
		t.Fatalf("Invoice: %v", err)
	}
	if e.pdf.calls != 1 {
		t.Fatalf("expected cached second render, got %d calls", e.pdf.calls)
	}

	q, _ := e.store.Quotes().Get(ctx, e.quote.ID)
	items := append([]quote.LineItem(nil), q.Items...)
	items[0].Quantity = 1
	if _, err := e.store.Quotes().ReplaceItems(ctx, q.ID, items); err != nil {
		t.Fatalf("ReplaceItems: %v", err)
	}
	f, err = e.svc.Invoice(ctx, e.quote.ID, Scope{})
	if err != nil {
		t.Fatalf("Invoice: %v", err)
	}
	if string(f.Body) != "pdf:11.90" || e.pdf.calls != 2 {
		t.Fatalf("stale invoice: body=%q calls=%d", f.Body, e.pdf.calls)
	}
}

func TestInvoice_PropagatesRenderError(t *testing.T) {
	e := newEnv(t)
	cause := errors.New("broken pipe")
	e.pdf.fail = cause
	e.svc.Cache = cache.Nop()

	f, err := e.svc.Invoice(context.Background(), e.quote.ID, Scope{})
	if !errors.Is(err, cause) {
		t.Fatalf("expected cause to propagate, got %v", err)
	}
	if f.Body != nil {
		t.Fatal("partial body returned")
	}
}

func TestExportQuotes(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	if _, err := e.store.Quotes().Create(ctx, quote.Draft{UserID: e.owner.ID}); err != nil {
		t.Fatalf("create empty quote: %v", err)
	}

	f, err := e.svc.ExportQuotes(ctx, quote.Filter{}, "en")
	if err != nil {
		t.Fatalf("ExportQuotes: %v", err)
	}
	if f.Name != "quotations.xlsx" {
		t.Fatalf("name = %q", f.Name)
	}

	book, err := excelize.OpenReader(bytes.NewReader(f.Body))
	if err != nil {
		t.Fatalf("OpenReader: %v", err)
	}
	defer book.Close()
	rows, err := book.GetRows("Quotations")
	if err != nil {
		t.Fatalf("GetRows: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected header + 1 row, got %v", rows)
	}
	if rows[0][0] != "Quotation ID" || rows[1][4] != "Cable" || rows[1][5] != "3" {
		t.Fatalf("rows = %v", rows)
	}
}

func TestExportProducts(t *testing.T) {
	e := newEnv(t)
	f, err := e.svc.ExportProducts(context.Background(), catalog.ProductFilter{}, "es")
	if err != nil {
		t.Fatalf("ExportProducts: %v", err)
	}
	book, err := excelize.OpenReader(bytes.NewReader(f.Body))
	if err != nil {
		t.Fatalf("OpenReader: %v", err)
	}
	defer book.Close()
	rows, _ := book.GetRows("Productos")
	if f.Name != "products.xlsx" || len(rows) != 2 || rows[1][1] != "Cable" {
		t.Fatalf("name=%q rows=%v", f.Name, rows)
	}
}

func itoa(n int64) string {
	return strconv.FormatInt(n, 10)
}
