package quote

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// DeletedProductName stands in for the product name of a line whose product
// record no longer exists.
const DeletedProductName = "Product removed"

var (
	ErrNotFound           = errors.New("quote not found")
	ErrInvalidInput       = errors.New("invalid input")
	ErrInconsistentTotals = errors.New("inconsistent totals")
)

type Quote struct {
	ID        int64
	UserID    int64
	CreatedAt time.Time
	UpdatedAt time.Time
	Customer  Customer
	Items     []LineItem
}

type Customer struct {
	Name  string
	Email string
	Phone string
	TaxID string
}

type LineItem struct {
	ProductID   int64
	ProductName string
	Quantity    int
	UnitPrice   decimal.Decimal
}

// Total is quantity times unit price, without rounding.
func (it LineItem) Total() decimal.Decimal {
	return it.UnitPrice.Mul(decimal.NewFromInt(int64(it.Quantity)))
}

func (it LineItem) validate() error {
	if it.Quantity < 0 {
		return errors.New("negative quantity")
	}
	if it.UnitPrice.IsNegative() {
		return errors.New("negative unit price")
	}
	return nil
}

// Draft is a quote as submitted by a caller, before it gets an id and a
// creation time from storage.
type Draft struct {
	UserID int64
	Items  []LineItem
}

// Filter narrows List results. Zero values mean "no constraint". From is
// inclusive and To exclusive. Ordering is "id" or "created_at", optionally
// prefixed with "-"; the default is "-created_at".
type Filter struct {
	UserID   int64
	Email    string
	Name     string
	Search   string
	From     time.Time
	To       time.Time
	Ordering string
}

// Repository persists quotes. ReplaceItems swaps the whole item list in one
// transaction; there is no partial item update.
type Repository interface {
	Create(ctx context.Context, d Draft) (Quote, error)
	Get(ctx context.Context, id int64) (Quote, error)
	List(ctx context.Context, f Filter) ([]Quote, error)
	ReplaceItems(ctx context.Context, id int64, items []LineItem) (Quote, error)
	Delete(ctx context.Context, id int64) error
}
