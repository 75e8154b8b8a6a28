// Package poller consumes checkout completion events and clears the matching
// customer cart.
package poller

import (
	"context"
	"encoding/json"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/nabilnabti/tapeat-cart/internal/domain"
)

// Carts is the slice of the cart service the poller needs.
type Carts interface {
	Clear(ctx context.Context, customerID string) *domain.Cart
}

type checkoutEvent struct {
	CustomerID string `json:"customer_id"`
}

type Poller struct {
	carts  Carts
	reader *kafka.Reader
	logger *zap.Logger
}

func NewPoller(carts Carts, logger *zap.Logger, brokers ...string) *Poller {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		Topic:    "checkout-completed",
		GroupID:  "cart-service",
		MaxBytes: 10e6, // 10MB
	})
	return &Poller{carts: carts, reader: reader, logger: logger}
}

// Run consumes until the context is canceled. A bad message is logged and
// skipped; consumption never stops because of one event.
func (p *Poller) Run(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}

		m, err := p.reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			p.logger.Warn("read message failed", zap.Error(err))
			continue
		}
		p.process(ctx, m.Value)
	}
}

func (p *Poller) Close() {
	if err := p.reader.Close(); err != nil {
		p.logger.Warn("closing kafka reader failed", zap.Error(err))
	}
}

func (p *Poller) process(ctx context.Context, payload []byte) {
	var event checkoutEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		p.logger.Warn("malformed checkout event", zap.Error(err))
		return
	}
	if event.CustomerID == "" {
		p.logger.Warn("checkout event without customer_id")
		return
	}

	p.carts.Clear(ctx, event.CustomerID)
	p.logger.Info("cart cleared after checkout", zap.String("customer_id", event.CustomerID))
}
