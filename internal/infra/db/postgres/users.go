package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cotizador/quoter/internal/domain/user"
)

type UserRepo struct {
	pool *pgxpool.Pool
}

const userColumns = `id, username, first_name, last_name, COALESCE(email, ''), phone, tax_id, password_hash, is_staff, created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (user.User, error) {
	var u user.User
	err := row.Scan(&u.ID, &u.Username, &u.FirstName, &u.LastName, &u.Email, &u.Phone, &u.TaxID, &u.PasswordHash, &u.IsStaff, &u.CreatedAt)
	return u, err
}

func userErr(op string, err error) error {
	switch {
	case isNoRows(err):
		return user.ErrNotFound
	case pgCode(err) == codeUniqueViolation:
		return user.ErrConflict
	}
	return fmt.Errorf("postgres: users %s: %w", op, err)
}

func (r *UserRepo) Create(ctx context.Context, u user.User) (user.User, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO users (username, first_name, last_name, email, phone, tax_id, password_hash, is_staff)
		VALUES ($1, $2, $3, NULLIF($4, ''), $5, $6, $7, $8)
		RETURNING `+userColumns,
		u.Username, u.FirstName, u.LastName, u.Email, u.Phone, u.TaxID, u.PasswordHash, u.IsStaff)
	out, err := scanUser(row)
	if err != nil {
		return user.User{}, userErr("create", err)
	}
	return out, nil
}

func (r *UserRepo) Get(ctx context.Context, id int64) (user.User, error) {
	u, err := scanUser(r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if err != nil {
		return user.User{}, userErr("get", err)
	}
	return u, nil
}

func (r *UserRepo) GetByUsername(ctx context.Context, username string) (user.User, error) {
	u, err := scanUser(r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE lower(username) = lower($1)`, username))
	if err != nil {
		return user.User{}, userErr("get by username", err)
	}
	return u, nil
}

func (r *UserRepo) List(ctx context.Context) ([]user.User, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+userColumns+` FROM users ORDER BY id`)
	if err != nil {
		return nil, userErr("list", err)
	}
	defer rows.Close()

	var out []user.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, userErr("list", err)
		}
		out = append(out, u)
	}
	if err := rows.Err(); err != nil {
		return nil, userErr("list", err)
	}
	return out, nil
}

func (r *UserRepo) Update(ctx context.Context, u user.User) (user.User, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE users
		SET username = $2, first_name = $3, last_name = $4, email = NULLIF($5, ''),
		    phone = $6, tax_id = $7, password_hash = $8, is_staff = $9
		WHERE id = $1
		RETURNING `+userColumns,
		u.ID, u.Username, u.FirstName, u.LastName, u.Email, u.Phone, u.TaxID, u.PasswordHash, u.IsStaff)
	out, err := scanUser(row)
	if err != nil {
		return user.User{}, userErr("update", err)
	}
	return out, nil
}

func (r *UserRepo) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return userErr("delete", err)
	}
	if tag.RowsAffected() == 0 {
		return user.ErrNotFound
	}
	return nil
}

var _ user.Repository = (*UserRepo)(nil)
