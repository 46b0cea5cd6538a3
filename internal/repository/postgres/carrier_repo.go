package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/ticketon/ticketon/internal/domain/transit"
)

var _ transit.CarrierRepo = (*CarrierRepo)(nil)

type CarrierRepo struct {
	db *DB
}

func NewCarrierRepo(db *DB) *CarrierRepo { return &CarrierRepo{db: db} }

const (
	qCarrierInsert = `
INSERT INTO carriers (company_name, phone_number)
VALUES ($1, $2)
RETURNING id;`

	qCarrierUpdate = `
UPDATE carriers
SET company_name = $2, phone_number = $3
WHERE id = $1
RETURNING id;`

	qCarrierDelete = `DELETE FROM carriers WHERE id = $1;`

	qCarrierByID = `
SELECT id, company_name, phone_number
FROM carriers
WHERE id = $1;`

	qCarrierByCompanyName = `
SELECT id, company_name, phone_number
FROM carriers
WHERE company_name = $1;`
)

func (r *CarrierRepo) Create(ctx context.Context, c *transit.Carrier) error {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	if err := r.db.Pool.QueryRow(ctx, qCarrierInsert, c.CompanyName, c.PhoneNumber).Scan(&c.ID); err != nil {
		return fmt.Errorf("carrier insert: %w", err)
	}
	return nil
}

func (r *CarrierRepo) Update(ctx context.Context, c *transit.Carrier) error {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	var id int64
	if err := r.db.Pool.QueryRow(ctx, qCarrierUpdate, c.ID, c.CompanyName, c.PhoneNumber).Scan(&id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("carrier %d: %w", c.ID, ErrNotFound)
		}
		return fmt.Errorf("carrier update: %w", err)
	}
	return nil
}

func (r *CarrierRepo) Delete(ctx context.Context, id int64) error {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	tag, err := r.db.Pool.Exec(ctx, qCarrierDelete, id)
	if err != nil {
		return fmt.Errorf("carrier delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("carrier %d: %w", id, ErrNotFound)
	}
	return nil
}

func (r *CarrierRepo) GetByID(ctx context.Context, id int64) (*transit.Carrier, error) {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	var c transit.Carrier
	if err := scanCarrier(r.db.Pool.QueryRow(ctx, qCarrierByID, id), &c); err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *CarrierRepo) GetByCompanyName(ctx context.Context, name string) (*transit.Carrier, error) {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	var c transit.Carrier
	if err := scanCarrier(r.db.Pool.QueryRow(ctx, qCarrierByCompanyName, name), &c); err != nil {
		return nil, err
	}
	return &c, nil
}

func scanCarrier(row pgx.Row, out *transit.Carrier) error {
	if err := row.Scan(&out.ID, &out.CompanyName, &out.PhoneNumber); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("scan carrier: %w", err)
	}
	return nil
}
