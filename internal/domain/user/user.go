package user

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ttacon/libphonenumber"
)

var (
	ErrNotFound     = errors.New("user not found")
	ErrConflict     = errors.New("username or email already taken")
	ErrInvalidPhone = errors.New("invalid phone number")
)

type User struct {
	ID           int64
	Username     string
	FirstName    string
	LastName     string
	Email        string
	Phone        string
	TaxID        string
	PasswordHash string
	IsStaff      bool
	CreatedAt    time.Time
}

func (u User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

type Repository interface {
	Create(ctx context.Context, u User) (User, error)
	Get(ctx context.Context, id int64) (User, error)
	GetByUsername(ctx context.Context, username string) (User, error)
	List(ctx context.Context) ([]User, error)
	Update(ctx context.Context, u User) (User, error)
	Delete(ctx context.Context, id int64) error
}

// NormalizePhone parses raw in the context of region (ISO 3166 code, e.g.
// "CL") and returns it in E.164. An empty input stays empty.
func NormalizePhone(raw, region string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", nil
	}
	num, err := libphonenumber.Parse(raw, region)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidPhone, err)
	}
	if !libphonenumber.IsValidNumber(num) {
		return "", ErrInvalidPhone
	}
	return libphonenumber.Format(num, libphonenumber.E164), nil
}
