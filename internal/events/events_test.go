package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestEventBus(t *testing.T) {
	bus := NewEventBus(zap.NewNop())

	var received *Event
	calls := 0
	bus.Subscribe(EventBookingCreated, func(_ context.Context, e *Event) error {
		received = e
		calls++
		return nil
	})

	id := uuid.New()
	require.NoError(t, bus.PublishJSON(context.Background(), EventBookingCreated, id.String(), BookingPayload{BookingID: id}))

	require.Equal(t, 1, calls)
	assert.Equal(t, EventBookingCreated, received.Type)
	assert.Equal(t, id.String(), received.Key)
	assert.False(t, received.CreatedAt.IsZero())

	var decoded BookingPayload
	require.NoError(t, json.Unmarshal(received.Payload, &decoded))
	assert.Equal(t, id, decoded.BookingID)
}

func TestEventBusWildcardAndErrors(t *testing.T) {
	bus := NewEventBus(zap.NewNop())
	var typed, all int

	bus.Subscribe(EventCarApproval, func(context.Context, *Event) error {
		typed++
		return errors.New("handler failed")
	})
	bus.SubscribeAll(func(context.Context, *Event) error { all++; return nil })

	bus.Publish(context.Background(), &Event{Type: EventCarApproval})
	bus.Publish(context.Background(), &Event{Type: EventUserBlockChanged})

	assert.Equal(t, 1, typed)
	assert.Equal(t, 2, all)
}

func TestNilBusIsNoop(t *testing.T) {
	var bus *EventBus
	assert.NoError(t, bus.PublishJSON(context.Background(), EventBookingStatus, "k", nil))
}

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) Publish(ctx context.Context, key string, value []byte, headers map[string]string) error {
	args := m.Called(ctx, key, value, headers)
	return args.Error(0)
}

func TestKafkaSink(t *testing.T) {
	pub := &mockPublisher{}
	pub.On("Publish", mock.Anything, "booking-1", []byte(`{"a":1}`),
		mock.MatchedBy(func(h map[string]string) bool { return h["event-type"] == EventBookingStatus }),
	).Return(nil).Once()

	bus := NewEventBus(zap.NewNop())
	bus.SubscribeAll(KafkaSink(pub))
	bus.Publish(context.Background(), &Event{Type: EventBookingStatus, Key: "booking-1", Payload: []byte(`{"a":1}`)})

	pub.AssertExpectations(t)
}
