package quote

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

var money = Money{Symbol: "$"}

func sampleQuote() Quote {
	return Quote{
		ID:        7,
		CreatedAt: time.Date(2024, time.March, 1, 10, 0, 0, 0, time.UTC),
		Customer:  Customer{Name: "Ana Soto", Email: "ana@example.com"},
		Items:     []LineItem{item("Cable", 3, "10.00")},
	}
}

func TestNewDocument(t *testing.T) {
	q := sampleQuote()
	totals, err := NewCalculator(DefaultTaxRate).Compute(q.Items)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}

	doc, err := NewDocument(q, totals, money)
	if err != nil {
		t.Fatalf("NewDocument: %v", err)
	}

	header := []Field{
		{"Invoice No.", "7"},
		{"Date", "01/03/2024"},
		{"Customer", "Ana Soto"},
		{"Email", "ana@example.com"},
		{"Phone", ""},
		{"Tax ID", ""},
	}
	if !reflect.DeepEqual(doc.Header, header) {
		t.Fatalf("header = %+v", doc.Header)
	}
	items := [][]string{{"Cable", "3", "$ 10,00", "$ 30,00"}}
	if !reflect.DeepEqual(doc.Items, items) {
		t.Fatalf("items = %+v", doc.Items)
	}
	tot := []Field{
		{"Subtotal", "$ 30,00"},
		{"Tax (19%)", "$ 5,70"},
		{"Total", "$ 35,70"},
	}
	if !reflect.DeepEqual(doc.Totals, tot) {
		t.Fatalf("totals = %+v", doc.Totals)
	}
}

func TestNewDocument_NoItems(t *testing.T) {
	q := sampleQuote()
	q.Items = nil
	totals, _ := NewCalculator(DefaultTaxRate).Compute(q.Items)

	doc, err := NewDocument(q, totals, money)
	if err != nil {
		t.Fatalf("NewDocument: %v", err)
	}
	if len(doc.Items) != 0 {
		t.Fatalf("expected no item rows, got %d", len(doc.Items))
	}
	for _, f := range doc.Totals {
		if f.Value != "$ 0,00" {
			t.Fatalf("%s = %q, want zero", f.Label, f.Value)
		}
	}
}

func TestNewDocument_DeletedProduct(t *testing.T) {
	q := sampleQuote()
	q.Items = []LineItem{item(DeletedProductName, 1, "5.00")}
	totals, _ := NewCalculator(DefaultTaxRate).Compute(q.Items)

	doc, err := NewDocument(q, totals, money)
	if err != nil {
		t.Fatalf("NewDocument: %v", err)
	}
	if doc.Items[0][0] != DeletedProductName {
		t.Fatalf("description = %q", doc.Items[0][0])
	}
}

func TestNewDocument_PreservesItemOrder(t *testing.T) {
	q := sampleQuote()
	q.Items = []LineItem{item("b", 1, "1.00"), item("a", 2, "1.00"), item("c", 3, "1.00")}
	totals, _ := NewCalculator(DefaultTaxRate).Compute(q.Items)

	doc, err := NewDocument(q, totals, money)
	if err != nil {
		t.Fatalf("NewDocument: %v", err)
	}
	var names []string
	for _, row := range doc.Items {
		names = append(names, row[0])
	}
	if !reflect.DeepEqual(names, []string{"b", "a", "c"}) {
		t.Fatalf("order = %v", names)
	}
}

func TestNewDocument_RejectsBadTotals(t *testing.T) {
	q := sampleQuote()
	neg := Totals{
		Rate:     DefaultTaxRate,
		Subtotal: decimal.NewFromInt(-10),
		Tax:      decimal.RequireFromString("-1.90"),
		Total:    decimal.RequireFromString("-11.90"),
	}
	if _, err := NewDocument(q, neg, money); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}

	off := Totals{
		Rate:     DefaultTaxRate,
		Subtotal: decimal.NewFromInt(30),
		Tax:      decimal.RequireFromString("5.70"),
		Total:    decimal.NewFromInt(40),
	}
	if _, err := NewDocument(q, off, money); !errors.Is(err, ErrInconsistentTotals) {
		t.Fatalf("expected ErrInconsistentTotals, got %v", err)
	}
}

func TestRenderError_Unwraps(t *testing.T) {
	cause := errors.New("disk full")
	err := error(&RenderError{QuoteID: 3, Stage: "pdf output", Err: cause})
	if !errors.Is(err, cause) {
		t.Fatal("RenderError does not unwrap to its cause")
	}
	if err.Error() != "quote 3: pdf output: disk full" {
		t.Fatalf("message = %q", err.Error())
	}
}
