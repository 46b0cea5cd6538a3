package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/ticketon/ticketon/internal/domain/transit"
)

var _ transit.TicketRepo = (*TicketRepo)(nil)

type TicketRepo struct {
	db *DB
}

func NewTicketRepo(db *DB) *TicketRepo { return &TicketRepo{db: db} }

const (
	qTicketInsert = `
INSERT INTO tickets (route_id, departure_at, seat_number, price, issued_at, status)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING id;`

	qTicketUpdate = `
UPDATE tickets
SET route_id = $2, departure_at = $3, seat_number = $4, price = $5, issued_at = $6
WHERE id = $1
RETURNING id;`

	qTicketUpdateStatus = `
UPDATE tickets
SET user_id = $2, status = $3
WHERE id = $1
RETURNING id;`

	qTicketDelete = `DELETE FROM tickets WHERE id = $1;`

	qTicketByID = `
SELECT id, route_id, departure_at, seat_number, price, issued_at, user_id, status
FROM tickets
WHERE id = $1;`

	qTicketsByRoute = `
SELECT id, route_id, departure_at, seat_number, price, issued_at, user_id, status
FROM tickets
WHERE route_id = $1
ORDER BY id ASC
LIMIT $2 OFFSET $3;`

	qTicketsByDeparture = `
SELECT id, route_id, departure_at, seat_number, price, issued_at, user_id, status
FROM tickets
WHERE departure_at = $1
ORDER BY id ASC
LIMIT $2 OFFSET $3;`

	qTicketsByUser = `
SELECT id, route_id, departure_at, seat_number, price, issued_at, user_id, status
FROM tickets
WHERE user_id = $1
ORDER BY id ASC
LIMIT $2 OFFSET $3;`
)

func (r *TicketRepo) Create(ctx context.Context, t *transit.Ticket) error {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	if err := r.db.Pool.QueryRow(ctx, qTicketInsert,
		t.RouteID, t.DepartureAt, t.SeatNumber, t.Price, t.IssuedAt, t.Status,
	).Scan(&t.ID); err != nil {
		return fmt.Errorf("ticket insert: %w", err)
	}
	return nil
}

func (r *TicketRepo) Update(ctx context.Context, t *transit.Ticket) error {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	var id int64
	if err := r.db.Pool.QueryRow(ctx, qTicketUpdate,
		t.ID, t.RouteID, t.DepartureAt, t.SeatNumber, t.Price, t.IssuedAt,
	).Scan(&id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("ticket %d: %w", t.ID, ErrNotFound)
		}
		return fmt.Errorf("ticket update: %w", err)
	}
	return nil
}

// UpdateStatus writes only ownership and sale status, the fields the buy flow
// changes.
func (r *TicketRepo) UpdateStatus(ctx context.Context, t *transit.Ticket) error {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	var id int64
	if err := r.db.Pool.QueryRow(ctx, qTicketUpdateStatus, t.ID, t.UserID, t.Status).Scan(&id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("ticket %d: %w", t.ID, ErrNotFound)
		}
		return fmt.Errorf("ticket status update: %w", err)
	}
	return nil
}

func (r *TicketRepo) Delete(ctx context.Context, id int64) error {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	tag, err := r.db.Pool.Exec(ctx, qTicketDelete, id)
	if err != nil {
		return fmt.Errorf("ticket delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("ticket %d: %w", id, ErrNotFound)
	}
	return nil
}

func (r *TicketRepo) GetByID(ctx context.Context, id int64) (*transit.Ticket, error) {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	var t transit.Ticket
	if err := scanTicket(r.db.Pool.QueryRow(ctx, qTicketByID, id), &t); err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *TicketRepo) ListByRoute(ctx context.Context, routeID int64, page, size int) ([]*transit.Ticket, error) {
	return r.list(ctx, qTicketsByRoute, routeID, page, size)
}

func (r *TicketRepo) ListByDeparture(ctx context.Context, at time.Time, page, size int) ([]*transit.Ticket, error) {
	return r.list(ctx, qTicketsByDeparture, at, page, size)
}

func (r *TicketRepo) ListByUser(ctx context.Context, userID int64, page, size int) ([]*transit.Ticket, error) {
	return r.list(ctx, qTicketsByUser, userID, page, size)
}

func (r *TicketRepo) list(ctx context.Context, q string, arg any, page, size int) ([]*transit.Ticket, error) {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	rows, err := r.db.Pool.Query(ctx, q, arg, size, pageOffset(page, size))
	if err != nil {
		return nil, fmt.Errorf("list tickets: %w", err)
	}
	defer rows.Close()

	var out []*transit.Ticket
	for rows.Next() {
		var t transit.Ticket
		if err := scanTicket(rows, &t); err != nil {
			return nil, err
		}
		out = append(out, &t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list tickets: %w", err)
	}
	return out, nil
}

func scanTicket(row pgx.Row, out *transit.Ticket) error {
	var userID sql.NullInt64
	if err := row.Scan(
		&out.ID, &out.RouteID, &out.DepartureAt, &out.SeatNumber,
		&out.Price, &out.IssuedAt, &userID, &out.Status,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("scan ticket: %w", err)
	}
	if userID.Valid {
		out.UserID = userID.Int64
	}
	return nil
}
