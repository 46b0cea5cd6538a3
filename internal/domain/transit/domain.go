package transit

import "time"

type TicketStatus string

const (
	StatusAvailableForSale TicketStatus = "AVAILABLE_FOR_SALE"
	StatusNotOnSale        TicketStatus = "NOT_ON_SALE"
)

type Carrier struct {
	ID          int64  `json:"id"`
	CompanyName string `json:"company_name"`
	PhoneNumber string `json:"phone_number"`
}

type Route struct {
	ID              int64  `json:"id"`
	DeparturePoint  string `json:"departure_point"`
	Destination     string `json:"destination"`
	CarrierID       int64  `json:"carrier_id"`
	DurationMinutes int    `json:"duration_minutes"`
}

type Ticket struct {
	ID          int64        `json:"id"`
	RouteID     int64        `json:"route_id"`
	DepartureAt time.Time    `json:"departure_at"`
	SeatNumber  int          `json:"seat_number"`
	Price       int          `json:"price"`
	IssuedAt    time.Time    `json:"issued_at"`
	UserID      int64        `json:"user_id,omitempty"` // buyer, zero until sold
	Status      TicketStatus `json:"status"`
}
