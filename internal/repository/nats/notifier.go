package nats

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"github.com/ticketon/ticketon/internal/domain/transit"
)

var _ transit.PurchaseNotifier = (*Notifier)(nil)

// Notifier fans purchase notices out over a NATS subject. Delivery is
// best-effort: subscribers that are offline simply miss the notice.
type Notifier struct {
	nc      *nats.Conn
	subject string
	log     *zap.Logger
}

func NewNotifier(url, subject string, l *zap.Logger) (*Notifier, error) {
	nc, err := nats.Connect(url, nats.Name("ticketon-notifier"))
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}
	return &Notifier{
		nc:      nc,
		subject: subject,
		log:     l.With(zap.String("component", "nats.notifier"), zap.String("subject", subject)),
	}, nil
}

func (n *Notifier) NotifyPurchase(_ context.Context, ev transit.PurchaseEvent) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal purchase notice: %w", err)
	}
	if err := n.nc.Publish(n.subject, data); err != nil {
		n.log.Error("publish failed", zap.Error(err))
		return fmt.Errorf("publish purchase notice: %w", err)
	}
	n.log.Debug("purchase notice published", zap.Int64("ticket_id", ev.TicketID))
	return nil
}

func (n *Notifier) Close() {
	if n.nc != nil {
		_ = n.nc.Drain()
	}
}
