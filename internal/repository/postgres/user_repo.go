package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/ticketon/ticketon/internal/domain/user"
)

var _ user.Repo = (*UserRepo)(nil)

type UserRepo struct {
	db *DB
}

func NewUserRepo(db *DB) *UserRepo { return &UserRepo{db: db} }

const (
	qUserInsert = `
INSERT INTO users (login, password, first_name, middle_name, last_name, role)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING id;`

	qUserByID = `
SELECT id, login, password, first_name, middle_name, last_name, role
FROM users
WHERE id = $1;`

	qUserByLogin = `
SELECT id, login, password, first_name, middle_name, last_name, role
FROM users
WHERE login = $1;`

	qUserExistsByLogin = `SELECT EXISTS(SELECT 1 FROM users WHERE login = $1);`
)

func (r *UserRepo) Create(ctx context.Context, u *user.User) error {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	if err := r.db.Pool.QueryRow(ctx, qUserInsert,
		u.Login, u.Password, u.FirstName, u.MiddleName, u.LastName, u.Role,
	).Scan(&u.ID); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("user %q: %w", u.Login, ErrConflict)
		}
		return fmt.Errorf("user insert: %w", err)
	}
	return nil
}

func (r *UserRepo) GetByID(ctx context.Context, id int64) (*user.User, error) {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	var u user.User
	if err := scanUser(r.db.Pool.QueryRow(ctx, qUserByID, id), &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepo) GetByLogin(ctx context.Context, login string) (*user.User, error) {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	var u user.User
	if err := scanUser(r.db.Pool.QueryRow(ctx, qUserByLogin, login), &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepo) ExistsByLogin(ctx context.Context, login string) (bool, error) {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	var exists bool
	if err := r.db.Pool.QueryRow(ctx, qUserExistsByLogin, login).Scan(&exists); err != nil {
		return false, fmt.Errorf("user exists by login: %w", err)
	}
	return exists, nil
}

func scanUser(row pgx.Row, out *user.User) error {
	if err := row.Scan(
		&out.ID, &out.Login, &out.Password,
		&out.FirstName, &out.MiddleName, &out.LastName, &out.Role,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("scan user: %w", err)
	}
	return nil
}
