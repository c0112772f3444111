package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/sirupsen/logrus"
)

const (
	streamName     = "STOCK"
	publishTimeout = 5 * time.Second
)

// Event subjects published by the catalog service
const (
	SubjectStockCommitted = "stock.committed"
	SubjectStockDepleted  = "stock.depleted"
	SubjectCartCreated    = "cart.created"
)

// StockMovement describes one (variant, size) decrement in a stock event
type StockMovement struct {
	CartItemID uint  `json:"cartItemId"`
	VariantID  uint  `json:"variantId"`
	SizeID     *uint `json:"sizeId,omitempty"`
	Quantity   int   `json:"quantity"`
}

// StockEvent is the audit payload for stock.committed / stock.depleted
type StockEvent struct {
	EventID   string          `json:"eventId"`
	CartID    string          `json:"cartId"`
	Movements []StockMovement `json:"movements"`
	Timestamp time.Time       `json:"timestamp"`
}

// CartEvent is the audit payload for cart lifecycle events
type CartEvent struct {
	EventID   string    `json:"eventId"`
	CartID    string    `json:"cartId"`
	Timestamp time.Time `json:"timestamp"`
}

// Publisher publishes audit events to NATS JetStream
type Publisher struct {
	nc     *nats.Conn
	js     nats.JetStreamContext
	logger *logrus.Entry
}

// NewPublisher connects to NATS and ensures the stock stream exists
func NewPublisher(natsURL string, logger *logrus.Logger) (*Publisher, error) {
	nc, err := nats.Connect(natsURL,
		nats.Name("catalog-service"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	js, err := nc.JetStream()
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("failed to create JetStream context: %w", err)
	}

	if _, err := js.AddStream(&nats.StreamConfig{
		Name:     streamName,
		Subjects: []string{"stock.>", "cart.>"},
		Storage:  nats.FileStorage,
		MaxAge:   30 * 24 * time.Hour,
	}); err != nil && err != nats.ErrStreamNameAlreadyInUse {
		logger.WithError(err).Warn("Failed to ensure stock stream (may already exist)")
	}

	return &Publisher{
		nc:     nc,
		js:     js,
		logger: logger.WithField("component", "catalog-events"),
	}, nil
}

// Close drains the NATS connection
func (p *Publisher) Close() {
	if p.nc != nil {
		p.nc.Close()
	}
}

// PublishStockCommitted publishes a stock.committed event after a cart's
// deductions have been applied
func (p *Publisher) PublishStockCommitted(ctx context.Context, cartID string, movements []StockMovement) error {
	return p.publish(ctx, SubjectStockCommitted, &StockEvent{
		EventID:   uuid.New().String(),
		CartID:    cartID,
		Movements: movements,
		Timestamp: time.Now().UTC(),
	})
}

// PublishStockDepleted publishes a stock.depleted event for pairs that
// reached zero stock during a commit
func (p *Publisher) PublishStockDepleted(ctx context.Context, cartID string, movements []StockMovement) error {
	return p.publish(ctx, SubjectStockDepleted, &StockEvent{
		EventID:   uuid.New().String(),
		CartID:    cartID,
		Movements: movements,
		Timestamp: time.Now().UTC(),
	})
}

// PublishCartCreated publishes a cart.created event
func (p *Publisher) PublishCartCreated(ctx context.Context, cartID string) error {
	return p.publish(ctx, SubjectCartCreated, &CartEvent{
		EventID:   uuid.New().String(),
		CartID:    cartID,
		Timestamp: time.Now().UTC(),
	})
}

func (p *Publisher) publish(ctx context.Context, subject string, event interface{}) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal %s event: %w", subject, err)
	}

	pubCtx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	if _, err := p.js.Publish(subject, data, nats.Context(pubCtx)); err != nil {
		p.logger.WithFields(logrus.Fields{
			"subject": subject,
			"error":   err.Error(),
		}).Error("Failed to publish event")
		return fmt.Errorf("failed to publish %s: %w", subject, err)
	}

	p.logger.WithField("subject", subject).Debug("Published event")
	return nil
}
