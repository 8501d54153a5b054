package catalog

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
)

var (
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("already exists")
	// ErrInUse is returned when deleting a category that still has products.
	ErrInUse = errors.New("still referenced")
)

type Category struct {
	ID          int64
	Name        string
	Description string
}

type Product struct {
	ID          int64
	CategoryID  int64
	Category    string
	Name        string
	Description string
	Price       decimal.Decimal
	IsActive    bool
}

type ProductFilter struct {
	CategoryID int64
	Search     string
	Ordering   string
}

type Repository interface {
	CreateCategory(ctx context.Context, c Category) (Category, error)
	GetCategory(ctx context.Context, id int64) (Category, error)
	ListCategories(ctx context.Context) ([]Category, error)
	UpdateCategory(ctx context.Context, c Category) (Category, error)
	DeleteCategory(ctx context.Context, id int64) error

	CreateProduct(ctx context.Context, p Product) (Product, error)
	GetProduct(ctx context.Context, id int64) (Product, error)
	GetProducts(ctx context.Context, ids []int64) (map[int64]Product, error)
	ListProducts(ctx context.Context, f ProductFilter) ([]Product, error)
	UpdateProduct(ctx context.Context, p Product) (Product, error)
	DeleteProduct(ctx context.Context, id int64) error
}

func ProductHeaders(lang string) []string {
	if lang == "en" {
		return []string{"ID", "Name", "Category", "Description", "Price", "Active"}
	}
	return []string{"ID", "Nombre", "Categoría", "Descripción", "Precio", "Activo"}
}

// ProductMoneyColumns are the zero-based money columns of ProductValues.
var ProductMoneyColumns = []int{4}

func ProductValues(p Product, lang string) []any {
	active := "no"
	if p.IsActive {
		active = "sí"
		if lang == "en" {
			active = "yes"
		}
	}
	return []any{p.ID, p.Name, p.Category, p.Description, p.Price.Round(2).InexactFloat64(), active}
}
