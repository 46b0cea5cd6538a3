package kafka

import (
	"context"

	"github.com/ticketon/ticketon/internal/domain/transit"
)

var _ transit.PurchaseEvents = (*PurchaseEventsKafka)(nil)

type PurchaseEventsKafka struct {
	p *Producer
}

func NewPurchaseEventsKafka(p *Producer) *PurchaseEventsKafka {
	return &PurchaseEventsKafka{p: p}
}

func (e *PurchaseEventsKafka) PublishPurchase(ctx context.Context, ev transit.PurchaseEvent) error {
	return e.p.PublishJSON(ctx, KeyFromInt64(ev.TicketID), ev)
}
