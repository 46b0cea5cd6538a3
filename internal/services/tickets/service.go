package tickets

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/ticketon/ticketon/internal/domain/transit"
)

var (
	// ErrTicketNotFound covers both a missing ticket and one already sold:
	// a buyer cannot distinguish the two.
	ErrTicketNotFound  = errors.New("ticket not found or not on sale")
	ErrRouteNotFound   = errors.New("route not found")
	ErrCarrierNotFound = errors.New("carrier not found")
)

// Buyer identifies the authenticated purchaser.
type Buyer struct {
	UserID int64
	Login  string
}

// Service manages carriers, routes and tickets and runs the purchase flow.
type Service struct {
	carriers transit.CarrierRepo
	routes   transit.RouteRepo
	tickets  transit.TicketRepo
	events   transit.PurchaseEvents
	notifier transit.PurchaseNotifier
	now      func() time.Time
	log      *zap.Logger
}

func NewService(
	carriers transit.CarrierRepo,
	routes transit.RouteRepo,
	tickets transit.TicketRepo,
	events transit.PurchaseEvents,
	notifier transit.PurchaseNotifier,
	log *zap.Logger,
) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		carriers: carriers,
		routes:   routes,
		tickets:  tickets,
		events:   events,
		notifier: notifier,
		now:      func() time.Time { return time.Now().UTC() },
		log:      log.With(zap.String("component", "tickets.service")),
	}
}

// WithNow returns a copy with an injected clock, for tests.
func (s *Service) WithNow(now func() time.Time) *Service {
	c := *s
	c.now = now
	return &c
}

func (s *Service) AddCarrier(ctx context.Context, c *transit.Carrier) error {
	return s.carriers.Create(ctx, c)
}

func (s *Service) UpdateCarrier(ctx context.Context, c *transit.Carrier) error {
	return s.carriers.Update(ctx, c)
}

func (s *Service) DeleteCarrier(ctx context.Context, id int64) error {
	return s.carriers.Delete(ctx, id)
}

func (s *Service) GetCarrier(ctx context.Context, id int64) (*transit.Carrier, error) {
	return s.carriers.GetByID(ctx, id)
}

// AddRoute rejects routes referencing an unknown carrier.
func (s *Service) AddRoute(ctx context.Context, r *transit.Route) error {
	if _, err := s.carriers.GetByID(ctx, r.CarrierID); err != nil {
		return ErrCarrierNotFound
	}
	return s.routes.Create(ctx, r)
}

func (s *Service) UpdateRoute(ctx context.Context, r *transit.Route) error {
	if _, err := s.carriers.GetByID(ctx, r.CarrierID); err != nil {
		return ErrCarrierNotFound
	}
	return s.routes.Update(ctx, r)
}

func (s *Service) DeleteRoute(ctx context.Context, id int64) error {
	return s.routes.Delete(ctx, id)
}

func (s *Service) GetRoute(ctx context.Context, id int64) (*transit.Route, error) {
	return s.routes.GetByID(ctx, id)
}

// AddTicket rejects tickets referencing an unknown route. New tickets go on
// sale immediately unless a status is set explicitly.
func (s *Service) AddTicket(ctx context.Context, t *transit.Ticket) error {
	if _, err := s.routes.GetByID(ctx, t.RouteID); err != nil {
		return ErrRouteNotFound
	}
	if t.Status == "" {
		t.Status = transit.StatusAvailableForSale
	}
	if t.IssuedAt.IsZero() {
		t.IssuedAt = s.now()
	}
	return s.tickets.Create(ctx, t)
}

func (s *Service) UpdateTicket(ctx context.Context, t *transit.Ticket) error {
	if _, err := s.routes.GetByID(ctx, t.RouteID); err != nil {
		return ErrRouteNotFound
	}
	return s.tickets.Update(ctx, t)
}

func (s *Service) DeleteTicket(ctx context.Context, id int64) error {
	return s.tickets.Delete(ctx, id)
}

// OnSaleByRoute lists tickets still available on a route.
func (s *Service) OnSaleByRoute(ctx context.Context, routeID int64, page, size int) ([]*transit.Ticket, error) {
	list, err := s.tickets.ListByRoute(ctx, routeID, page, size)
	if err != nil {
		return nil, err
	}
	return onSale(list), nil
}

// OnSaleByDeparture lists available tickets departing at the given time.
func (s *Service) OnSaleByDeparture(ctx context.Context, at time.Time, page, size int) ([]*transit.Ticket, error) {
	list, err := s.tickets.ListByDeparture(ctx, at, page, size)
	if err != nil {
		return nil, err
	}
	return onSale(list), nil
}

// OnSaleByDeparturePoint resolves routes starting at the point, then gathers
// their available tickets. Paging applies to the route lookup.
func (s *Service) OnSaleByDeparturePoint(ctx context.Context, point string, page, size int) ([]*transit.Ticket, error) {
	routes, err := s.routes.ListByDeparturePoint(ctx, point, page, size)
	if err != nil {
		return nil, err
	}
	return s.collect(ctx, routes, size)
}

// OnSaleByDestination mirrors OnSaleByDeparturePoint for the arrival side.
func (s *Service) OnSaleByDestination(ctx context.Context, dest string, page, size int) ([]*transit.Ticket, error) {
	routes, err := s.routes.ListByDestination(ctx, dest, page, size)
	if err != nil {
		return nil, err
	}
	return s.collect(ctx, routes, size)
}

// OnSaleByCarrierName looks the carrier up by company name first.
func (s *Service) OnSaleByCarrierName(ctx context.Context, name string, page, size int) ([]*transit.Ticket, error) {
	carrier, err := s.carriers.GetByCompanyName(ctx, name)
	if err != nil {
		return nil, ErrCarrierNotFound
	}
	routes, err := s.routes.ListByCarrier(ctx, carrier.ID, page, size)
	if err != nil {
		return nil, err
	}
	return s.collect(ctx, routes, size)
}

// Purchased lists the buyer's own tickets regardless of status.
func (s *Service) Purchased(ctx context.Context, userID int64, page, size int) ([]*transit.Ticket, error) {
	return s.tickets.ListByUser(ctx, userID, page, size)
}

// Buy sells the ticket to the buyer: marks it NOT_ON_SALE with the buyer as
// owner, then emits the purchase event. The durable stream publish must
// succeed; notification fan-out is best effort.
func (s *Service) Buy(ctx context.Context, ticketID int64, buyer Buyer) (*transit.Ticket, error) {
	t, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, ErrTicketNotFound
	}
	if t.Status != transit.StatusAvailableForSale {
		return nil, ErrTicketNotFound
	}

	t.UserID = buyer.UserID
	t.Status = transit.StatusNotOnSale
	if err := s.tickets.UpdateStatus(ctx, t); err != nil {
		return nil, fmt.Errorf("mark ticket sold: %w", err)
	}

	ev := transit.PurchaseEvent{
		TicketID:    t.ID,
		RouteID:     t.RouteID,
		DepartureAt: t.DepartureAt,
		SeatNumber:  t.SeatNumber,
		Price:       t.Price,
		BuyerID:     buyer.UserID,
		BuyerLogin:  buyer.Login,
		PurchasedAt: s.now(),
	}
	if route, err := s.routes.GetByID(ctx, t.RouteID); err == nil {
		ev.DeparturePoint = route.DeparturePoint
		ev.Destination = route.Destination
		if carrier, err := s.carriers.GetByID(ctx, route.CarrierID); err == nil {
			ev.CompanyName = carrier.CompanyName
		}
	}

	if err := s.events.PublishPurchase(ctx, ev); err != nil {
		return nil, fmt.Errorf("publish purchase event: %w", err)
	}
	if s.notifier != nil {
		if err := s.notifier.NotifyPurchase(ctx, ev); err != nil {
			s.log.Warn("purchase notification failed", zap.Int64("ticket_id", t.ID), zap.Error(err))
		}
	}

	s.log.Info("ticket sold",
		zap.Int64("ticket_id", t.ID),
		zap.Int64("buyer_id", buyer.UserID))
	return t, nil
}

func (s *Service) collect(ctx context.Context, routes []*transit.Route, size int) ([]*transit.Ticket, error) {
	var out []*transit.Ticket
	for _, r := range routes {
		list, err := s.tickets.ListByRoute(ctx, r.ID, 1, size)
		if err != nil {
			return nil, err
		}
		out = append(out, onSale(list)...)
	}
	return out, nil
}

func onSale(in []*transit.Ticket) []*transit.Ticket {
	out := make([]*transit.Ticket, 0, len(in))
	for _, t := range in {
		if t.Status == transit.StatusAvailableForSale {
			out = append(out, t)
		}
	}
	return out
}
