package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/ticketon/ticketon/internal/domain/transit"
)

var _ transit.RouteRepo = (*RouteRepo)(nil)

type RouteRepo struct {
	db *DB
}

func NewRouteRepo(db *DB) *RouteRepo { return &RouteRepo{db: db} }

const (
	qRouteInsert = `
INSERT INTO routes (departure_point, destination, carrier_id, duration_minutes)
VALUES ($1, $2, $3, $4)
RETURNING id;`

	qRouteUpdate = `
UPDATE routes
SET departure_point = $2, destination = $3, carrier_id = $4, duration_minutes = $5
WHERE id = $1
RETURNING id;`

	qRouteDelete = `DELETE FROM routes WHERE id = $1;`

	qRouteByID = `
SELECT id, departure_point, destination, carrier_id, duration_minutes
FROM routes
WHERE id = $1;`

	qRoutesByDeparturePoint = `
SELECT id, departure_point, destination, carrier_id, duration_minutes
FROM routes
WHERE departure_point = $1
ORDER BY id ASC
LIMIT $2 OFFSET $3;`

	qRoutesByDestination = `
SELECT id, departure_point, destination, carrier_id, duration_minutes
FROM routes
WHERE destination = $1
ORDER BY id ASC
LIMIT $2 OFFSET $3;`

	qRoutesByCarrier = `
SELECT id, departure_point, destination, carrier_id, duration_minutes
FROM routes
WHERE carrier_id = $1
ORDER BY id ASC
LIMIT $2 OFFSET $3;`
)

func (r *RouteRepo) Create(ctx context.Context, rt *transit.Route) error {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	if err := r.db.Pool.QueryRow(ctx, qRouteInsert,
		rt.DeparturePoint, rt.Destination, rt.CarrierID, rt.DurationMinutes,
	).Scan(&rt.ID); err != nil {
		return fmt.Errorf("route insert: %w", err)
	}
	return nil
}

func (r *RouteRepo) Update(ctx context.Context, rt *transit.Route) error {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	var id int64
	if err := r.db.Pool.QueryRow(ctx, qRouteUpdate,
		rt.ID, rt.DeparturePoint, rt.Destination, rt.CarrierID, rt.DurationMinutes,
	).Scan(&id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("route %d: %w", rt.ID, ErrNotFound)
		}
		return fmt.Errorf("route update: %w", err)
	}
	return nil
}

func (r *RouteRepo) Delete(ctx context.Context, id int64) error {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	tag, err := r.db.Pool.Exec(ctx, qRouteDelete, id)
	if err != nil {
		return fmt.Errorf("route delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("route %d: %w", id, ErrNotFound)
	}
	return nil
}

func (r *RouteRepo) GetByID(ctx context.Context, id int64) (*transit.Route, error) {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	var rt transit.Route
	if err := scanRoute(r.db.Pool.QueryRow(ctx, qRouteByID, id), &rt); err != nil {
		return nil, err
	}
	return &rt, nil
}

func (r *RouteRepo) ListByDeparturePoint(ctx context.Context, point string, page, size int) ([]*transit.Route, error) {
	return r.list(ctx, qRoutesByDeparturePoint, point, page, size)
}

func (r *RouteRepo) ListByDestination(ctx context.Context, dest string, page, size int) ([]*transit.Route, error) {
	return r.list(ctx, qRoutesByDestination, dest, page, size)
}

func (r *RouteRepo) ListByCarrier(ctx context.Context, carrierID int64, page, size int) ([]*transit.Route, error) {
	return r.list(ctx, qRoutesByCarrier, carrierID, page, size)
}

func (r *RouteRepo) list(ctx context.Context, q string, arg any, page, size int) ([]*transit.Route, error) {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	rows, err := r.db.Pool.Query(ctx, q, arg, size, pageOffset(page, size))
	if err != nil {
		return nil, fmt.Errorf("list routes: %w", err)
	}
	defer rows.Close()

	var out []*transit.Route
	for rows.Next() {
		var rt transit.Route
		if err := scanRoute(rows, &rt); err != nil {
			return nil, err
		}
		out = append(out, &rt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list routes: %w", err)
	}
	return out, nil
}

func scanRoute(row pgx.Row, out *transit.Route) error {
	if err := row.Scan(
		&out.ID, &out.DeparturePoint, &out.Destination, &out.CarrierID, &out.DurationMinutes,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("scan route: %w", err)
	}
	return nil
}

// pageOffset converts 1-based page numbers to a SQL offset.
func pageOffset(page, size int) int {
	if page < 1 {
		page = 1
	}
	return (page - 1) * size
}
