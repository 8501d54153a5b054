package handlers

import (
	"time"

	"github.com/cotizador/quoter/internal/domain/catalog"
	"github.com/cotizador/quoter/internal/domain/quote"
	"github.com/cotizador/quoter/internal/domain/user"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

type RegisterRequest struct {
	Username  string `json:"username" validate:"required,min=3,max=150"`
	Password  string `json:"password" validate:"required,min=8,max=72"`
	FirstName string `json:"first_name" validate:"max=150"`
	LastName  string `json:"last_name" validate:"max=150"`
	Email     string `json:"email" validate:"omitempty,email"`
	Phone     string `json:"phone"`
	TaxID     string `json:"tax_id" validate:"max=32"`
}

type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type TokenResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      UserResponse `json:"user"`
}

// ProfileRequest updates the caller's own profile. An empty password keeps
// the current one.
type ProfileRequest struct {
	FirstName string `json:"first_name" validate:"max=150"`
	LastName  string `json:"last_name" validate:"max=150"`
	Email     string `json:"email" validate:"omitempty,email"`
	Phone     string `json:"phone"`
	TaxID     string `json:"tax_id" validate:"max=32"`
	Password  string `json:"password" validate:"omitempty,min=8,max=72"`
}

type UserRequest struct {
	Username  string `json:"username" validate:"required,min=3,max=150"`
	Password  string `json:"password" validate:"omitempty,min=8,max=72"`
	FirstName string `json:"first_name" validate:"max=150"`
	LastName  string `json:"last_name" validate:"max=150"`
	Email     string `json:"email" validate:"omitempty,email"`
	Phone     string `json:"phone"`
	TaxID     string `json:"tax_id" validate:"max=32"`
	IsStaff   bool   `json:"is_staff"`
}

type UserResponse struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	TaxID     string    `json:"tax_id"`
	IsStaff   bool      `json:"is_staff"`
	CreatedAt time.Time `json:"created_at"`
}

func userResponse(u user.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Username:  u.Username,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Email:     u.Email,
		Phone:     u.Phone,
		TaxID:     u.TaxID,
		IsStaff:   u.IsStaff,
		CreatedAt: u.CreatedAt,
	}
}

type CategoryRequest struct {
	Name        string `json:"name" validate:"required,max=100"`
	Description string `json:"description" validate:"max=1000"`
}

type CategoryResponse struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

func categoryResponse(c catalog.Category) CategoryResponse {
	return CategoryResponse{ID: c.ID, Name: c.Name, Description: c.Description}
}

// ProductRequest carries the price as a decimal string, e.g. "1250.00".
type ProductRequest struct {
	CategoryID  int64  `json:"category_id" validate:"required,gt=0"`
	Name        string `json:"name" validate:"required,max=200"`
	Description string `json:"description" validate:"max=2000"`
	Price       string `json:"price" validate:"required,numeric"`
	IsActive    *bool  `json:"is_active"`
}

type ProductResponse struct {
	ID          int64  `json:"id"`
	CategoryID  int64  `json:"category_id"`
	Category    string `json:"category"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Price       string `json:"price"`
	IsActive    bool   `json:"is_active"`
}

func productResponse(p catalog.Product) ProductResponse {
	return ProductResponse{
		ID:          p.ID,
		CategoryID:  p.CategoryID,
		Category:    p.Category,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price.StringFixed(2),
		IsActive:    p.IsActive,
	}
}

// QuoteRequest creates a quote or replaces all of its items. UserID lets
// staff quote on behalf of a customer.
type QuoteRequest struct {
	UserID int64              `json:"user_id" validate:"gte=0"`
	Items  []QuoteItemRequest `json:"items" validate:"dive"`
}

// QuoteItemRequest takes the product's current price unless staff set
// UnitPrice explicitly.
type QuoteItemRequest struct {
	ProductID int64   `json:"product_id" validate:"required,gt=0"`
	Quantity  int     `json:"quantity" validate:"required,gt=0"`
	UnitPrice *string `json:"unit_price" validate:"omitempty,numeric"`
}

type CustomerResponse struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
	TaxID string `json:"tax_id"`
}

type QuoteItemResponse struct {
	ProductID   int64  `json:"product_id,omitempty"`
	ProductName string `json:"product_name"`
	Quantity    int    `json:"quantity"`
	UnitPrice   string `json:"unit_price"`
	LineTotal   string `json:"line_total"`
}

type QuoteResponse struct {
	ID        int64               `json:"id"`
	UserID    int64               `json:"user_id"`
	CreatedAt time.Time           `json:"created_at"`
	UpdatedAt time.Time           `json:"updated_at"`
	Customer  CustomerResponse    `json:"customer"`
	Items     []QuoteItemResponse `json:"items"`
	Subtotal  string              `json:"subtotal"`
	TaxRate   string              `json:"tax_rate"`
	Tax       string              `json:"tax"`
	Total     string              `json:"total"`
}

func quoteResponse(q quote.Quote, t quote.Totals) QuoteResponse {
	items := make([]QuoteItemResponse, len(q.Items))
	for i, it := range q.Items {
		items[i] = QuoteItemResponse{
			ProductID:   it.ProductID,
			ProductName: it.ProductName,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice.StringFixed(2),
			LineTotal:   it.Total().StringFixed(2),
		}
	}
	return QuoteResponse{
		ID:        q.ID,
		UserID:    q.UserID,
		CreatedAt: q.CreatedAt,
		UpdatedAt: q.UpdatedAt,
		Customer: CustomerResponse{
			Name:  q.Customer.Name,
			Email: q.Customer.Email,
			Phone: q.Customer.Phone,
			TaxID: q.Customer.TaxID,
		},
		Items:    items,
		Subtotal: t.Subtotal.StringFixed(2),
		TaxRate:  t.Rate.String(),
		Tax:      t.Tax.StringFixed(2),
		Total:    t.Total.StringFixed(2),
	}
}
