package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/cotizador/quoter/internal/domain/quote"
	"github.com/cotizador/quoter/internal/domain/user"
)

type QuoteRepo struct {
	pool *pgxpool.Pool
}

func quoteErr(op string, err error) error {
	if isNoRows(err) {
		return quote.ErrNotFound
	}
	return fmt.Errorf("postgres: quotes %s: %w", op, err)
}

const quoteSelect = `
	SELECT q.id, q.user_id, q.created_at, q.updated_at,
	       trim(u.first_name || ' ' || u.last_name), COALESCE(u.email, ''), u.phone, u.tax_id
	FROM quotes q
	JOIN users u ON u.id = q.user_id`

func scanQuote(row rowScanner) (quote.Quote, error) {
	var q quote.Quote
	err := row.Scan(&q.ID, &q.UserID, &q.CreatedAt, &q.UpdatedAt,
		&q.Customer.Name, &q.Customer.Email, &q.Customer.Phone, &q.Customer.TaxID)
	q.CreatedAt, q.UpdatedAt = q.CreatedAt.UTC(), q.UpdatedAt.UTC()
	return q, err
}

func insertItems(ctx context.Context, tx pgx.Tx, quoteID int64, items []quote.LineItem) error {
	if len(items) == 0 {
		return nil
	}
	b := &pgx.Batch{}
	for i, it := range items {
		b.Queue(`
			INSERT INTO quote_items (quote_id, position, product_id, quantity, unit_price)
			VALUES ($1, $2, NULLIF($3::bigint, 0), $4, $5::text::numeric)`,
			quoteID, i, it.ProductID, it.Quantity, it.UnitPrice.String())
	}
	return tx.SendBatch(ctx, b).Close()
}

func (r *QuoteRepo) Create(ctx context.Context, d quote.Draft) (quote.Quote, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return quote.Quote{}, quoteErr("create", err)
	}
	defer tx.Rollback(ctx)

	var id int64
	if err := tx.QueryRow(ctx, `INSERT INTO quotes (user_id) VALUES ($1) RETURNING id`, d.UserID).Scan(&id); err != nil {
		if pgCode(err) == codeForeignKeyViolation {
			return quote.Quote{}, user.ErrNotFound
		}
		return quote.Quote{}, quoteErr("create", err)
	}
	if err := insertItems(ctx, tx, id, d.Items); err != nil {
		return quote.Quote{}, quoteErr("create items", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return quote.Quote{}, quoteErr("create", err)
	}
	return r.Get(ctx, id)
}

func (r *QuoteRepo) Get(ctx context.Context, id int64) (quote.Quote, error) {
	q, err := scanQuote(r.pool.QueryRow(ctx, quoteSelect+` WHERE q.id = $1`, id))
	if err != nil {
		return quote.Quote{}, quoteErr("get", err)
	}
	out := []quote.Quote{q}
	if err := r.loadItems(ctx, out); err != nil {
		return quote.Quote{}, err
	}
	return out[0], nil
}

var quoteOrder = map[string]string{
	"":            "q.created_at DESC, q.id DESC",
	"-created_at": "q.created_at DESC, q.id DESC",
	"created_at":  "q.created_at, q.id",
	"id":          "q.id",
	"-id":         "q.id DESC",
}

func (r *QuoteRepo) List(ctx context.Context, f quote.Filter) ([]quote.Quote, error) {
	var w where
	if f.UserID != 0 {
		w.add("q.user_id = $%d", f.UserID)
	}
	if f.Email != "" {
		w.add("lower(u.email) = lower($%d)", f.Email)
	}
	if f.Name != "" {
		w.add("(u.first_name || ' ' || u.last_name) ILIKE $%d", "%"+f.Name+"%")
	}
	if f.Search != "" {
		w.add(`EXISTS (
			SELECT 1 FROM quote_items qi
			JOIN products p ON p.id = qi.product_id
			WHERE qi.quote_id = q.id AND p.name ILIKE $%d)`, "%"+f.Search+"%")
	}
	if !f.From.IsZero() {
		w.add("q.created_at >= $%d", f.From)
	}
	if !f.To.IsZero() {
		w.add("q.created_at < $%d", f.To)
	}
	order, ok := quoteOrder[f.Ordering]
	if !ok {
		order = quoteOrder[""]
	}

	rows, err := r.pool.Query(ctx, quoteSelect+w.String()+` ORDER BY `+order, w.args...)
	if err != nil {
		return nil, quoteErr("list", err)
	}
	defer rows.Close()

	var out []quote.Quote
	for rows.Next() {
		q, err := scanQuote(rows)
		if err != nil {
			return nil, quoteErr("list", err)
		}
		out = append(out, q)
	}
	if err := rows.Err(); err != nil {
		return nil, quoteErr("list", err)
	}
	if err := r.loadItems(ctx, out); err != nil {
		return nil, err
	}
	return out, nil
}

// loadItems fills the items of every quote in qs with one query, in
// position order. Lines whose product is gone get the placeholder name.
func (r *QuoteRepo) loadItems(ctx context.Context, qs []quote.Quote) error {
	if len(qs) == 0 {
		return nil
	}
	ids := make([]int64, len(qs))
	index := make(map[int64]int, len(qs))
	for i, q := range qs {
		ids[i] = q.ID
		index[q.ID] = i
		qs[i].Items = []quote.LineItem{}
	}

	rows, err := r.pool.Query(ctx, `
		SELECT qi.quote_id, COALESCE(qi.product_id, 0), COALESCE(p.name, ''), qi.quantity, qi.unit_price::text
		FROM quote_items qi
		LEFT JOIN products p ON p.id = qi.product_id
		WHERE qi.quote_id = ANY($1)
		ORDER BY qi.quote_id, qi.position`, ids)
	if err != nil {
		return quoteErr("load items", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			quoteID int64
			it      quote.LineItem
			price   string
		)
		if err := rows.Scan(&quoteID, &it.ProductID, &it.ProductName, &it.Quantity, &price); err != nil {
			return quoteErr("load items", err)
		}
		if it.UnitPrice, err = decimal.NewFromString(price); err != nil {
			return quoteErr("load items", fmt.Errorf("unit price %q: %w", price, err))
		}
		if it.ProductID == 0 {
			it.ProductName = quote.DeletedProductName
		}
		i := index[quoteID]
		qs[i].Items = append(qs[i].Items, it)
	}
	if err := rows.Err(); err != nil {
		return quoteErr("load items", err)
	}
	return nil
}

// ReplaceItems swaps every line of the quote and bumps updated_at, all in
// one transaction.
func (r *QuoteRepo) ReplaceItems(ctx context.Context, id int64, items []quote.LineItem) (quote.Quote, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return quote.Quote{}, quoteErr("replace items", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `UPDATE quotes SET updated_at = clock_timestamp() WHERE id = $1`, id)
	if err != nil {
		return quote.Quote{}, quoteErr("replace items", err)
	}
	if tag.RowsAffected() == 0 {
		return quote.Quote{}, quote.ErrNotFound
	}
	if _, err := tx.Exec(ctx, `DELETE FROM quote_items WHERE quote_id = $1`, id); err != nil {
		return quote.Quote{}, quoteErr("replace items", err)
	}
	if err := insertItems(ctx, tx, id, items); err != nil {
		return quote.Quote{}, quoteErr("replace items", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return quote.Quote{}, quoteErr("replace items", err)
	}
	return r.Get(ctx, id)
}

func (r *QuoteRepo) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM quotes WHERE id = $1`, id)
	if err != nil {
		return quoteErr("delete", err)
	}
	if tag.RowsAffected() == 0 {
		return quote.ErrNotFound
	}
	return nil
}

var _ quote.Repository = (*QuoteRepo)(nil)
