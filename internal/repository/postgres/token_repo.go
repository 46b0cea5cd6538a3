package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/ticketon/ticketon/internal/domain/token"
)

var _ token.Repo = (*TokenRepo)(nil)

// TokenRepo persists the single active token pair per user. The table is
// keyed by user_id, so inserts and updates address exactly one row.
type TokenRepo struct {
	db *DB
}

func NewTokenRepo(db *DB) *TokenRepo { return &TokenRepo{db: db} }

const (
	qTokenInsert = `
INSERT INTO tokens (user_id, access_token, refresh_token, issued_at, expires_at_access, expires_at_refresh)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING user_id;`

	qTokenUpdate = `
UPDATE tokens
SET access_token       = $2,
    refresh_token      = $3,
    issued_at          = $4,
    expires_at_access  = $5,
    expires_at_refresh = $6
WHERE user_id = $1
RETURNING user_id;`

	qTokenByUserID = `
SELECT user_id, access_token, refresh_token, issued_at, expires_at_access, expires_at_refresh
FROM tokens
WHERE user_id = $1;`

	qTokenExistsByUserID = `SELECT EXISTS(SELECT 1 FROM tokens WHERE user_id = $1);`

	qTokensByExpiresAtAccess = `
SELECT user_id, access_token, refresh_token, issued_at, expires_at_access, expires_at_refresh
FROM tokens
WHERE expires_at_access = $1
ORDER BY user_id ASC;`

	qTokensByExpiresAtRefresh = `
SELECT user_id, access_token, refresh_token, issued_at, expires_at_access, expires_at_refresh
FROM tokens
WHERE expires_at_refresh = $1
ORDER BY user_id ASC;`

	qTokenExistsByExpiresAtAccess  = `SELECT EXISTS(SELECT 1 FROM tokens WHERE expires_at_access = $1);`
	qTokenExistsByExpiresAtRefresh = `SELECT EXISTS(SELECT 1 FROM tokens WHERE expires_at_refresh = $1);`
)

func (r *TokenRepo) Save(ctx context.Context, rec *token.Record) error {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	var id int64
	if err := r.db.Pool.QueryRow(ctx, qTokenInsert,
		rec.UserID, rec.AccessToken, rec.RefreshToken,
		rec.IssuedAt, rec.ExpiresAtAccess, rec.ExpiresAtRefresh,
	).Scan(&id); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("token record for user %d: %w", rec.UserID, ErrConflict)
		}
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("insert token record for user %d returned no row: %w", rec.UserID, ErrPersistence)
		}
		return fmt.Errorf("insert token record for user %d: %w", rec.UserID, err)
	}
	return nil
}

func (r *TokenRepo) Update(ctx context.Context, rec *token.Record) error {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	var id int64
	if err := r.db.Pool.QueryRow(ctx, qTokenUpdate,
		rec.UserID, rec.AccessToken, rec.RefreshToken,
		rec.IssuedAt, rec.ExpiresAtAccess, rec.ExpiresAtRefresh,
	).Scan(&id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("update token record for user %d returned no row: %w", rec.UserID, ErrPersistence)
		}
		return fmt.Errorf("update token record for user %d: %w", rec.UserID, err)
	}
	return nil
}

func (r *TokenRepo) FindByUserID(ctx context.Context, userID int64) (*token.Record, error) {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	var rec token.Record
	if err := scanToken(r.db.Pool.QueryRow(ctx, qTokenByUserID, userID), &rec); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, fmt.Errorf("token record for user %d: %w", userID, ErrNotFound)
		}
		return nil, err
	}
	return &rec, nil
}

func (r *TokenRepo) ExistsByUserID(ctx context.Context, userID int64) (bool, error) {
	return r.exists(ctx, qTokenExistsByUserID, userID)
}

func (r *TokenRepo) FindByExpiresAtAccess(ctx context.Context, at time.Time) ([]*token.Record, error) {
	return r.listByExpiry(ctx, qTokensByExpiresAtAccess, at)
}

func (r *TokenRepo) FindByExpiresAtRefresh(ctx context.Context, at time.Time) ([]*token.Record, error) {
	return r.listByExpiry(ctx, qTokensByExpiresAtRefresh, at)
}

func (r *TokenRepo) ExistsByExpiresAtAccess(ctx context.Context, at time.Time) (bool, error) {
	return r.exists(ctx, qTokenExistsByExpiresAtAccess, at)
}

func (r *TokenRepo) ExistsByExpiresAtRefresh(ctx context.Context, at time.Time) (bool, error) {
	return r.exists(ctx, qTokenExistsByExpiresAtRefresh, at)
}

func (r *TokenRepo) exists(ctx context.Context, q string, arg any) (bool, error) {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	var exists bool
	if err := r.db.Pool.QueryRow(ctx, q, arg).Scan(&exists); err != nil {
		return false, fmt.Errorf("token exists probe: %w", err)
	}
	return exists, nil
}

func (r *TokenRepo) listByExpiry(ctx context.Context, q string, at time.Time) ([]*token.Record, error) {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	rows, err := r.db.Pool.Query(ctx, q, at)
	if err != nil {
		return nil, fmt.Errorf("tokens by expiry %s: %w", at, err)
	}
	defer rows.Close()

	var out []*token.Record
	for rows.Next() {
		var rec token.Record
		if err := scanToken(rows, &rec); err != nil {
			return nil, err
		}
		out = append(out, &rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("tokens by expiry %s: %w", at, err)
	}
	return out, nil
}

func scanToken(row pgx.Row, out *token.Record) error {
	if err := row.Scan(
		&out.UserID, &out.AccessToken, &out.RefreshToken,
		&out.IssuedAt, &out.ExpiresAtAccess, &out.ExpiresAtRefresh,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("scan token record: %w", err)
	}
	return nil
}
