package transit

import (
	"context"
	"time"
)

// PurchaseEvent is emitted once per sold ticket.
type PurchaseEvent struct {
	TicketID       int64     `json:"ticket_id"`
	RouteID        int64     `json:"route_id"`
	DeparturePoint string    `json:"departure_point"`
	Destination    string    `json:"destination"`
	CompanyName    string    `json:"company_name"`
	DepartureAt    time.Time `json:"departure_at"`
	SeatNumber     int       `json:"seat_number"`
	Price          int       `json:"price"`
	BuyerID        int64     `json:"buyer_id"`
	BuyerLogin     string    `json:"buyer_login"`
	PurchasedAt    time.Time `json:"purchased_at"`
}

// PurchaseEvents is the durable event stream (Kafka).
type PurchaseEvents interface {
	PublishPurchase(ctx context.Context, ev PurchaseEvent) error
}

// PurchaseNotifier is the fire-and-forget notification fan-out (NATS).
type PurchaseNotifier interface {
	NotifyPurchase(ctx context.Context, ev PurchaseEvent) error
}
