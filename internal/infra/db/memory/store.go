// Package memory keeps every record in process memory. It backs local runs
// without a database and the handler tests; behaviour mirrors the postgres
// repositories, including the deleted-product substitution.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cotizador/quoter/internal/domain/catalog"
	"github.com/cotizador/quoter/internal/domain/quote"
	"github.com/cotizador/quoter/internal/domain/user"
)

type storedItem struct {
	productID int64
	quantity  int
	unitPrice decimal.Decimal
}

type storedQuote struct {
	id        int64
	userID    int64
	createdAt time.Time
	updatedAt time.Time
	items     []storedItem
}

type Store struct {
	mu         sync.RWMutex
	seq        int64
	users      map[int64]user.User
	categories map[int64]catalog.Category
	products   map[int64]catalog.Product
	quotes     map[int64]storedQuote

	// Now stamps created and updated times.
	Now func() time.Time
}

func New() *Store {
	return &Store{
		users:      map[int64]user.User{},
		categories: map[int64]catalog.Category{},
		products:   map[int64]catalog.Product{},
		quotes:     map[int64]storedQuote{},
		Now:        func() time.Time { return time.Now().UTC() },
	}
}

func (s *Store) next() int64 {
	s.seq++
	return s.seq
}

// Users, Catalog and Quotes expose the store through the domain interfaces.
func (s *Store) Users() *UserRepo      { return &UserRepo{s} }
func (s *Store) Catalog() *CatalogRepo { return &CatalogRepo{s} }
func (s *Store) Quotes() *QuoteRepo    { return &QuoteRepo{s} }

type UserRepo struct{ s *Store }

func (r *UserRepo) conflict(u user.User) bool {
	for _, o := range r.s.users {
		if o.ID == u.ID {
			continue
		}
		if strings.EqualFold(o.Username, u.Username) || (u.Email != "" && strings.EqualFold(o.Email, u.Email)) {
			return true
		}
	}
	return false
}

func (r *UserRepo) Create(_ context.Context, u user.User) (user.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.conflict(u) {
		return user.User{}, user.ErrConflict
	}
	u.ID = r.s.next()
	u.CreatedAt = r.s.Now()
	r.s.users[u.ID] = u
	return u, nil
}

func (r *UserRepo) Get(_ context.Context, id int64) (user.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	u, ok := r.s.users[id]
	if !ok {
		return user.User{}, user.ErrNotFound
	}
	return u, nil
}

func (r *UserRepo) GetByUsername(_ context.Context, username string) (user.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, u := range r.s.users {
		if strings.EqualFold(u.Username, username) {
			return u, nil
		}
	}
	return user.User{}, user.ErrNotFound
}

func (r *UserRepo) List(_ context.Context) ([]user.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]user.User, 0, len(r.s.users))
	for _, u := range r.s.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *UserRepo) Update(_ context.Context, u user.User) (user.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	old, ok := r.s.users[u.ID]
	if !ok {
		return user.User{}, user.ErrNotFound
	}
	if r.conflict(u) {
		return user.User{}, user.ErrConflict
	}
	u.CreatedAt = old.CreatedAt
	r.s.users[u.ID] = u
	return u, nil
}

func (r *UserRepo) Delete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[id]; !ok {
		return user.ErrNotFound
	}
	delete(r.s.users, id)
	for qid, q := range r.s.quotes {
		if q.userID == id {
			delete(r.s.quotes, qid)
		}
	}
	return nil
}

type CatalogRepo struct{ s *Store }

func (r *CatalogRepo) CreateCategory(_ context.Context, c catalog.Category) (catalog.Category, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, o := range r.s.categories {
		if strings.EqualFold(o.Name, c.Name) {
			return catalog.Category{}, catalog.ErrConflict
		}
	}
	c.ID = r.s.next()
	r.s.categories[c.ID] = c
	return c, nil
}

func (r *CatalogRepo) GetCategory(_ context.Context, id int64) (catalog.Category, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	c, ok := r.s.categories[id]
	if !ok {
		return catalog.Category{}, catalog.ErrNotFound
	}
	return c, nil
}

func (r *CatalogRepo) ListCategories(_ context.Context) ([]catalog.Category, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]catalog.Category, 0, len(r.s.categories))
	for _, c := range r.s.categories {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *CatalogRepo) UpdateCategory(_ context.Context, c catalog.Category) (catalog.Category, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.categories[c.ID]; !ok {
		return catalog.Category{}, catalog.ErrNotFound
	}
	for _, o := range r.s.categories {
		if o.ID != c.ID && strings.EqualFold(o.Name, c.Name) {
			return catalog.Category{}, catalog.ErrConflict
		}
	}
	r.s.categories[c.ID] = c
	return c, nil
}

func (r *CatalogRepo) DeleteCategory(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.categories[id]; !ok {
		return catalog.ErrNotFound
	}
	for _, p := range r.s.products {
		if p.CategoryID == id {
			return catalog.ErrInUse
		}
	}
	delete(r.s.categories, id)
	return nil
}

func (r *CatalogRepo) withCategory(p catalog.Product) catalog.Product {
	p.Category = r.s.categories[p.CategoryID].Name
	return p
}

func (r *CatalogRepo) CreateProduct(_ context.Context, p catalog.Product) (catalog.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.categories[p.CategoryID]; !ok {
		return catalog.Product{}, catalog.ErrNotFound
	}
	p.ID = r.s.next()
	r.s.products[p.ID] = p
	return r.withCategory(p), nil
}

func (r *CatalogRepo) GetProduct(_ context.Context, id int64) (catalog.Product, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	p, ok := r.s.products[id]
	if !ok {
		return catalog.Product{}, catalog.ErrNotFound
	}
	return r.withCategory(p), nil
}

func (r *CatalogRepo) GetProducts(_ context.Context, ids []int64) (map[int64]catalog.Product, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make(map[int64]catalog.Product, len(ids))
	for _, id := range ids {
		if p, ok := r.s.products[id]; ok {
			out[id] = r.withCategory(p)
		}
	}
	return out, nil
}

func (r *CatalogRepo) ListProducts(_ context.Context, f catalog.ProductFilter) ([]catalog.Product, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	search := strings.ToLower(f.Search)
	var out []catalog.Product
	for _, p := range r.s.products {
		if f.CategoryID != 0 && p.CategoryID != f.CategoryID {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(p.Name+" "+p.Description), search) {
			continue
		}
		out = append(out, r.withCategory(p))
	}

	desc := strings.HasPrefix(f.Ordering, "-")
	less := func(a, b catalog.Product) bool {
		switch strings.TrimPrefix(f.Ordering, "-") {
		case "price":
			if !a.Price.Equal(b.Price) {
				return a.Price.LessThan(b.Price)
			}
		case "id":
		default:
			if a.Name != b.Name {
				return a.Name < b.Name
			}
		}
		return a.ID < b.ID
	}
	sort.Slice(out, func(i, j int) bool {
		if desc {
			return less(out[j], out[i])
		}
		return less(out[i], out[j])
	})
	return out, nil
}

func (r *CatalogRepo) UpdateProduct(_ context.Context, p catalog.Product) (catalog.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.products[p.ID]; !ok {
		return catalog.Product{}, catalog.ErrNotFound
	}
	if _, ok := r.s.categories[p.CategoryID]; !ok {
		return catalog.Product{}, catalog.ErrNotFound
	}
	r.s.products[p.ID] = p
	return r.withCategory(p), nil
}

// DeleteProduct detaches the product from quote lines the way the database
// foreign key does (ON DELETE SET NULL).
func (r *CatalogRepo) DeleteProduct(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.products[id]; !ok {
		return catalog.ErrNotFound
	}
	delete(r.s.products, id)
	for qid, q := range r.s.quotes {
		for i := range q.items {
			if q.items[i].productID == id {
				q.items[i].productID = 0
			}
		}
		r.s.quotes[qid] = q
	}
	return nil
}

type QuoteRepo struct{ s *Store }

func (r *QuoteRepo) toItems(items []quote.LineItem) []storedItem {
	out := make([]storedItem, len(items))
	for i, it := range items {
		out[i] = storedItem{productID: it.ProductID, quantity: it.Quantity, unitPrice: it.UnitPrice}
	}
	return out
}

func (r *QuoteRepo) assemble(sq storedQuote) quote.Quote {
	u := r.s.users[sq.userID]
	q := quote.Quote{
		ID:        sq.id,
		UserID:    sq.userID,
		CreatedAt: sq.createdAt,
		UpdatedAt: sq.updatedAt,
		Customer: quote.Customer{
			Name:  u.FullName(),
			Email: u.Email,
			Phone: u.Phone,
			TaxID: u.TaxID,
		},
		Items: make([]quote.LineItem, 0, len(sq.items)),
	}
	for _, it := range sq.items {
		li := quote.LineItem{ProductID: it.productID, Quantity: it.quantity, UnitPrice: it.unitPrice}
		if p, ok := r.s.products[it.productID]; ok && it.productID != 0 {
			li.ProductName = p.Name
		} else {
			li.ProductID = 0
			li.ProductName = quote.DeletedProductName
		}
		q.Items = append(q.Items, li)
	}
	return q
}

func (r *QuoteRepo) Create(_ context.Context, d quote.Draft) (quote.Quote, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[d.UserID]; !ok {
		return quote.Quote{}, user.ErrNotFound
	}
	now := r.s.Now()
	sq := storedQuote{id: r.s.next(), userID: d.UserID, createdAt: now, updatedAt: now, items: r.toItems(d.Items)}
	r.s.quotes[sq.id] = sq
	return r.assemble(sq), nil
}

func (r *QuoteRepo) Get(_ context.Context, id int64) (quote.Quote, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	sq, ok := r.s.quotes[id]
	if !ok {
		return quote.Quote{}, quote.ErrNotFound
	}
	return r.assemble(sq), nil
}

func (r *QuoteRepo) List(_ context.Context, f quote.Filter) ([]quote.Quote, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	name, search := strings.ToLower(f.Name), strings.ToLower(f.Search)
	var out []quote.Quote
	for _, sq := range r.s.quotes {
		if f.UserID != 0 && sq.userID != f.UserID {
			continue
		}
		if !f.From.IsZero() && sq.createdAt.Before(f.From) {
			continue
		}
		if !f.To.IsZero() && !sq.createdAt.Before(f.To) {
			continue
		}
		q := r.assemble(sq)
		if f.Email != "" && !strings.EqualFold(q.Customer.Email, f.Email) {
			continue
		}
		if name != "" && !strings.Contains(strings.ToLower(q.Customer.Name), name) {
			continue
		}
		if search != "" && !anyItemMatches(q.Items, search) {
			continue
		}
		out = append(out, q)
	}

	ordering := f.Ordering
	if ordering == "" {
		ordering = "-created_at"
	}
	desc := strings.HasPrefix(ordering, "-")
	byCreated := strings.TrimPrefix(ordering, "-") == "created_at"
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if desc {
			a, b = b, a
		}
		if byCreated && !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID < b.ID
	})
	return out, nil
}

func anyItemMatches(items []quote.LineItem, search string) bool {
	for _, it := range items {
		if strings.Contains(strings.ToLower(it.ProductName), search) {
			return true
		}
	}
	return false
}

func (r *QuoteRepo) ReplaceItems(_ context.Context, id int64, items []quote.LineItem) (quote.Quote, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	sq, ok := r.s.quotes[id]
	if !ok {
		return quote.Quote{}, quote.ErrNotFound
	}
	sq.items = r.toItems(items)
	sq.updatedAt = r.s.Now()
	r.s.quotes[id] = sq
	return r.assemble(sq), nil
}

func (r *QuoteRepo) Delete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.quotes[id]; !ok {
		return quote.ErrNotFound
	}
	delete(r.s.quotes, id)
	return nil
}

var (
	_ user.Repository    = (*UserRepo)(nil)
	_ catalog.Repository = (*CatalogRepo)(nil)
	_ quote.Repository   = (*QuoteRepo)(nil)
)
