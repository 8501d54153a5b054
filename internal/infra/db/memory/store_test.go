package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cotizador/quoter/internal/domain/catalog"
	"github.com/cotizador/quoter/internal/domain/quote"
	"github.com/cotizador/quoter/internal/domain/user"
)

type fixture struct {
	store *Store
	user  user.User
	cable catalog.Product
	plug  catalog.Product
}

func setup(t *testing.T) fixture {
	t.Helper()
	ctx := context.Background()
	s := New()
	clock := time.Date(2024, time.March, 1, 8, 0, 0, 0, time.UTC)
	s.Now = func() time.Time {
		clock = clock.Add(time.Hour)
		return clock
	}

	u, err := s.Users().Create(ctx, user.User{Username: "ana", FirstName: "Ana", LastName: "Soto", Email: "ana@example.com"})
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	cat, err := s.Catalog().CreateCategory(ctx, catalog.Category{Name: "Eléctrico"})
	if err != nil {
		t.Fatalf("create category: %v", err)
	}
	cable, _ := s.Catalog().CreateProduct(ctx, catalog.Product{CategoryID: cat.ID, Name: "Cable", Price: decimal.NewFromInt(10), IsActive: true})
	plug, _ := s.Catalog().CreateProduct(ctx, catalog.Product{CategoryID: cat.ID, Name: "Enchufe", Price: decimal.NewFromInt(5), IsActive: true})
	return fixture{store: s, user: u, cable: cable, plug: plug}
}

func (f fixture) line(p catalog.Product, qty int) quote.LineItem {
	return quote.LineItem{ProductID: p.ID, ProductName: p.Name, Quantity: qty, UnitPrice: p.Price}
}

func TestQuote_CreateAndGet(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	q, err := f.store.Quotes().Create(ctx, quote.Draft{UserID: f.user.ID, Items: []quote.LineItem{f.line(f.cable, 3), f.line(f.plug, 1)}})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	got, err := f.store.Quotes().Get(ctx, q.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Customer.Name != "Ana Soto" || got.Customer.Email != "ana@example.com" {
		t.Fatalf("customer = %+v", got.Customer)
	}
	if len(got.Items) != 2 || got.Items[0].ProductName != "Cable" || got.Items[1].ProductName != "Enchufe" {
		t.Fatalf("items = %+v", got.Items)
	}
}

func TestQuote_DeletedProductBecomesSentinel(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	q, _ := f.store.Quotes().Create(ctx, quote.Draft{UserID: f.user.ID, Items: []quote.LineItem{f.line(f.cable, 1)}})

	if err := f.store.Catalog().DeleteProduct(ctx, f.cable.ID); err != nil {
		t.Fatalf("DeleteProduct: %v", err)
	}
	got, err := f.store.Quotes().Get(ctx, q.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Items[0].ProductName != quote.DeletedProductName || got.Items[0].ProductID != 0 {
		t.Fatalf("item = %+v", got.Items[0])
	}
}

func TestQuote_ReplaceItems(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	q, _ := f.store.Quotes().Create(ctx, quote.Draft{UserID: f.user.ID, Items: []quote.LineItem{f.line(f.cable, 1)}})

	got, err := f.store.Quotes().ReplaceItems(ctx, q.ID, []quote.LineItem{f.line(f.plug, 2)})
	if err != nil {
		t.Fatalf("ReplaceItems: %v", err)
	}
	if len(got.Items) != 1 || got.Items[0].ProductName != "Enchufe" || got.Items[0].Quantity != 2 {
		t.Fatalf("items = %+v", got.Items)
	}
	if !got.UpdatedAt.After(q.UpdatedAt) {
		t.Fatal("updated_at not bumped")
	}
	if _, err := f.store.Quotes().ReplaceItems(ctx, 999, nil); !errors.Is(err, quote.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestQuote_ListFilters(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	other, _ := f.store.Users().Create(ctx, user.User{Username: "bob", FirstName: "Bob", Email: "bob@example.com"})

	q1, _ := f.store.Quotes().Create(ctx, quote.Draft{UserID: f.user.ID, Items: []quote.LineItem{f.line(f.cable, 1)}})
	q2, _ := f.store.Quotes().Create(ctx, quote.Draft{UserID: other.ID, Items: []quote.LineItem{f.line(f.plug, 1)}})
	q3, _ := f.store.Quotes().Create(ctx, quote.Draft{UserID: f.user.ID})

	ids := func(qs []quote.Quote) []int64 {
		var out []int64
		for _, q := range qs {
			out = append(out, q.ID)
		}
		return out
	}
	equal := func(a, b []int64) bool {
		if len(a) != len(b) {
			return false
		}
		for i := range a {
			if a[i] != b[i] {
				return false
			}
		}
		return true
	}

	cases := []struct {
		name   string
		filter quote.Filter
		want   []int64
	}{
		{"default newest first", quote.Filter{}, []int64{q3.ID, q2.ID, q1.ID}},
		{"by id", quote.Filter{Ordering: "id"}, []int64{q1.ID, q2.ID, q3.ID}},
		{"owner", quote.Filter{UserID: f.user.ID}, []int64{q3.ID, q1.ID}},
		{"email", quote.Filter{Email: "BOB@example.com"}, []int64{q2.ID}},
		{"name", quote.Filter{Name: "soto"}, []int64{q3.ID, q1.ID}},
		{"search", quote.Filter{Search: "cab"}, []int64{q1.ID}},
		{"from", quote.Filter{From: q2.CreatedAt, Ordering: "created_at"}, []int64{q2.ID, q3.ID}},
		{"to", quote.Filter{To: q2.CreatedAt}, []int64{q1.ID}},
	}
	for _, tc := range cases {
		got, err := f.store.Quotes().List(ctx, tc.filter)
		if err != nil {
			t.Fatalf("%s: List: %v", tc.name, err)
		}
		if !equal(ids(got), tc.want) {
			t.Errorf("%s: got %v, want %v", tc.name, ids(got), tc.want)
		}
	}
}

func TestCatalog_DeleteCategoryInUse(t *testing.T) {
	f := setup(t)
	if err := f.store.Catalog().DeleteCategory(context.Background(), f.cable.CategoryID); !errors.Is(err, catalog.ErrInUse) {
		t.Fatalf("expected ErrInUse, got %v", err)
	}
}

func TestUser_Conflict(t *testing.T) {
	f := setup(t)
	_, err := f.store.Users().Create(context.Background(), user.User{Username: "ANA", Email: "x@example.com"})
	if !errors.Is(err, user.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
}
