package events

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	EventBookingCreated   = "booking.created"
	EventBookingStatus    = "booking.status_changed"
	EventBookingPayment   = "booking.payment_changed"
	EventCarApproval      = "car.approval_changed"
	EventUserBlockChanged = "user.block_changed"
)

// BookingPayload is the booking snapshot sent to consumers.
type BookingPayload struct {
	BookingID     uuid.UUID `json:"booking_id"`
	BookingCode   string    `json:"booking_code"`
	CarID         uuid.UUID `json:"car_id"`
	UserID        uuid.UUID `json:"user_id"`
	OwnerID       uuid.UUID `json:"owner_id"`
	Status        string    `json:"status"`
	PreviousState string    `json:"previous_status,omitempty"`
	PaymentStatus string    `json:"payment_status"`
	StartDate     time.Time `json:"start_date"`
	EndDate       time.Time `json:"end_date"`
	TotalAmount   float64   `json:"total_amount"`
	ChangedBy     uuid.UUID `json:"changed_by"`
}

type CarPayload struct {
	CarID    uuid.UUID `json:"car_id"`
	OwnerID  uuid.UUID `json:"owner_id"`
	Approved bool      `json:"approved"`
	Reason   string    `json:"reason,omitempty"`
}

type UserPayload struct {
	UserID    uuid.UUID `json:"user_id"`
	Blocked   bool      `json:"blocked"`
	Cancelled int       `json:"cancelled_bookings"`
}

type Event struct {
	Type      string
	Key       string
	Payload   []byte
	CreatedAt time.Time
}

type EventHandler func(ctx context.Context, event *Event) error

// EventBus is an in-process pub/sub. Handlers run synchronously in
// subscription order; their errors are logged, never returned to publishers.
type EventBus struct {
	subscribers map[string][]EventHandler
	wildcard    []EventHandler
	mu          sync.RWMutex
	log         *zap.Logger
}

func NewEventBus(log *zap.Logger) *EventBus {
	return &EventBus{
		subscribers: make(map[string][]EventHandler),
		log:         log.With(zap.String("component", "events")),
	}
}

func (b *EventBus) Subscribe(eventType string, handler EventHandler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscribers[eventType] = append(b.subscribers[eventType], handler)
}

// SubscribeAll registers a handler for every event type.
func (b *EventBus) SubscribeAll(handler EventHandler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.wildcard = append(b.wildcard, handler)
}

func (b *EventBus) Publish(ctx context.Context, event *Event) {
	b.mu.RLock()
	handlers := append([]EventHandler(nil), b.subscribers[event.Type]...)
	handlers = append(handlers, b.wildcard...)
	b.mu.RUnlock()

	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}

	for _, handler := range handlers {
		if err := handler(ctx, event); err != nil {
			b.log.Warn("Event handler failed",
				zap.String("type", event.Type),
				zap.String("key", event.Key),
				zap.Error(err),
			)
		}
	}
}

// PublishJSON serializes payload and publishes it. A nil bus is a no-op.
func (b *EventBus) PublishJSON(ctx context.Context, eventType, key string, payload any) error {
	if b == nil {
		return nil
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	b.Publish(ctx, &Event{Type: eventType, Key: key, Payload: raw, CreatedAt: time.Now()})
	return nil
}
