package transit

import (
	"context"
	"time"
)

type CarrierRepo interface {
	Create(ctx context.Context, c *Carrier) error
	Update(ctx context.Context, c *Carrier) error
	Delete(ctx context.Context, id int64) error
	GetByID(ctx context.Context, id int64) (*Carrier, error)
	GetByCompanyName(ctx context.Context, name string) (*Carrier, error)
}

type RouteRepo interface {
	Create(ctx context.Context, r *Route) error
	Update(ctx context.Context, r *Route) error
	Delete(ctx context.Context, id int64) error
	GetByID(ctx context.Context, id int64) (*Route, error)
	ListByDeparturePoint(ctx context.Context, point string, page, size int) ([]*Route, error)
	ListByDestination(ctx context.Context, dest string, page, size int) ([]*Route, error)
	ListByCarrier(ctx context.Context, carrierID int64, page, size int) ([]*Route, error)
}

type TicketRepo interface {
	Create(ctx context.Context, t *Ticket) error
	Update(ctx context.Context, t *Ticket) error
	UpdateStatus(ctx context.Context, t *Ticket) error
	Delete(ctx context.Context, id int64) error
	GetByID(ctx context.Context, id int64) (*Ticket, error)
	ListByRoute(ctx context.Context, routeID int64, page, size int) ([]*Ticket, error)
	ListByDeparture(ctx context.Context, at time.Time, page, size int) ([]*Ticket, error)
	ListByUser(ctx context.Context, userID int64, page, size int) ([]*Ticket, error)
}
