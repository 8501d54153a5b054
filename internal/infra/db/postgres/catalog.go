package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/cotizador/quoter/internal/domain/catalog"
)

type CatalogRepo struct {
	pool *pgxpool.Pool
}

func catalogErr(op string, err error) error {
	switch {
	case isNoRows(err):
		return catalog.ErrNotFound
	case pgCode(err) == codeUniqueViolation:
		return catalog.ErrConflict
	case pgCode(err) == codeForeignKeyViolation:
		// Either a product points at a missing category, or a category
		// still has products.
		if strings.HasPrefix(op, "delete") {
			return catalog.ErrInUse
		}
		return catalog.ErrNotFound
	}
	return fmt.Errorf("postgres: catalog %s: %w", op, err)
}

func (r *CatalogRepo) CreateCategory(ctx context.Context, c catalog.Category) (catalog.Category, error) {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO categories (name, description) VALUES ($1, $2) RETURNING id`,
		c.Name, c.Description).Scan(&c.ID)
	if err != nil {
		return catalog.Category{}, catalogErr("create category", err)
	}
	return c, nil
}

func (r *CatalogRepo) GetCategory(ctx context.Context, id int64) (catalog.Category, error) {
	c := catalog.Category{ID: id}
	err := r.pool.QueryRow(ctx, `SELECT name, description FROM categories WHERE id = $1`, id).Scan(&c.Name, &c.Description)
	if err != nil {
		return catalog.Category{}, catalogErr("get category", err)
	}
	return c, nil
}

func (r *CatalogRepo) ListCategories(ctx context.Context) ([]catalog.Category, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name, description FROM categories ORDER BY name, id`)
	if err != nil {
		return nil, catalogErr("list categories", err)
	}
	defer rows.Close()

	var out []catalog.Category
	for rows.Next() {
		var c catalog.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Description); err != nil {
			return nil, catalogErr("list categories", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, catalogErr("list categories", err)
	}
	return out, nil
}

func (r *CatalogRepo) UpdateCategory(ctx context.Context, c catalog.Category) (catalog.Category, error) {
	tag, err := r.pool.Exec(ctx, `UPDATE categories SET name = $2, description = $3 WHERE id = $1`, c.ID, c.Name, c.Description)
	if err != nil {
		return catalog.Category{}, catalogErr("update category", err)
	}
	if tag.RowsAffected() == 0 {
		return catalog.Category{}, catalog.ErrNotFound
	}
	return c, nil
}

func (r *CatalogRepo) DeleteCategory(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		return catalogErr("delete category", err)
	}
	if tag.RowsAffected() == 0 {
		return catalog.ErrNotFound
	}
	return nil
}

const productSelect = `
	SELECT p.id, p.category_id, c.name, p.name, p.description, p.price::text, p.is_active
	FROM products p
	JOIN categories c ON c.id = p.category_id`

func scanProduct(row rowScanner) (catalog.Product, error) {
	var (
		p     catalog.Product
		price string
	)
	if err := row.Scan(&p.ID, &p.CategoryID, &p.Category, &p.Name, &p.Description, &price, &p.IsActive); err != nil {
		return catalog.Product{}, err
	}
	d, err := decimal.NewFromString(price)
	if err != nil {
		return catalog.Product{}, fmt.Errorf("price %q: %w", price, err)
	}
	p.Price = d
	return p, nil
}

func (r *CatalogRepo) CreateProduct(ctx context.Context, p catalog.Product) (catalog.Product, error) {
	var id int64
	err := r.pool.QueryRow(ctx, `
		INSERT INTO products (category_id, name, description, price, is_active)
		VALUES ($1, $2, $3, $4::text::numeric, $5)
		RETURNING id`,
		p.CategoryID, p.Name, p.Description, p.Price.String(), p.IsActive).Scan(&id)
	if err != nil {
		return catalog.Product{}, catalogErr("create product", err)
	}
	return r.GetProduct(ctx, id)
}

func (r *CatalogRepo) GetProduct(ctx context.Context, id int64) (catalog.Product, error) {
	p, err := scanProduct(r.pool.QueryRow(ctx, productSelect+` WHERE p.id = $1`, id))
	if err != nil {
		return catalog.Product{}, catalogErr("get product", err)
	}
	return p, nil
}

func (r *CatalogRepo) GetProducts(ctx context.Context, ids []int64) (map[int64]catalog.Product, error) {
	out := make(map[int64]catalog.Product, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	rows, err := r.pool.Query(ctx, productSelect+` WHERE p.id = ANY($1)`, ids)
	if err != nil {
		return nil, catalogErr("get products", err)
	}
	defer rows.Close()
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, catalogErr("get products", err)
		}
		out[p.ID] = p
	}
	if err := rows.Err(); err != nil {
		return nil, catalogErr("get products", err)
	}
	return out, nil
}

var productOrder = map[string]string{
	"":       "p.name, p.id",
	"name":   "p.name, p.id",
	"-name":  "p.name DESC, p.id DESC",
	"price":  "p.price, p.id",
	"-price": "p.price DESC, p.id DESC",
	"id":     "p.id",
	"-id":    "p.id DESC",
}

func (r *CatalogRepo) ListProducts(ctx context.Context, f catalog.ProductFilter) ([]catalog.Product, error) {
	var w where
	if f.CategoryID != 0 {
		w.add("p.category_id = $%d", f.CategoryID)
	}
	if f.Search != "" {
		w.add("(p.name || ' ' || p.description) ILIKE $%d", "%"+f.Search+"%")
	}
	order, ok := productOrder[f.Ordering]
	if !ok {
		order = productOrder[""]
	}

	rows, err := r.pool.Query(ctx, productSelect+w.String()+` ORDER BY `+order, w.args...)
	if err != nil {
		return nil, catalogErr("list products", err)
	}
	defer rows.Close()

	var out []catalog.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, catalogErr("list products", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, catalogErr("list products", err)
	}
	return out, nil
}

func (r *CatalogRepo) UpdateProduct(ctx context.Context, p catalog.Product) (catalog.Product, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE products
		SET category_id = $2, name = $3, description = $4, price = $5::text::numeric, is_active = $6
		WHERE id = $1`,
		p.ID, p.CategoryID, p.Name, p.Description, p.Price.String(), p.IsActive)
	if err != nil {
		return catalog.Product{}, catalogErr("update product", err)
	}
	if tag.RowsAffected() == 0 {
		return catalog.Product{}, catalog.ErrNotFound
	}
	return r.GetProduct(ctx, p.ID)
}

// DeleteProduct removes the product. Quote lines referencing it keep their
// quantity and price; the foreign key nulls their product_id.
func (r *CatalogRepo) DeleteProduct(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return catalogErr("delete product", err)
	}
	if tag.RowsAffected() == 0 {
		return catalog.ErrNotFound
	}
	return nil
}

var _ catalog.Repository = (*CatalogRepo)(nil)
