package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBookingStatusTransitions(t *testing.T) {
	all := []BookingStatus{
		BookingStatusPending,
		BookingStatusConfirmed,
		BookingStatusActive,
		BookingStatusCompleted,
		BookingStatusCancelled,
	}

	allowed := map[BookingStatus]map[BookingStatus]bool{
		BookingStatusPending:   {BookingStatusConfirmed: true, BookingStatusCancelled: true},
		BookingStatusConfirmed: {BookingStatusActive: true, BookingStatusCompleted: true, BookingStatusCancelled: true},
		BookingStatusActive:    {BookingStatusCompleted: true, BookingStatusCancelled: true},
	}

	for _, from := range all {
		for _, to := range all {
			t.Run(string(from)+"->"+string(to), func(t *testing.T) {
				assert.Equal(t, allowed[from][to], from.CanTransitionTo(to))
			})
		}
	}
}

func TestBookingStatusTerminal(t *testing.T) {
	assert.True(t, BookingStatusCompleted.IsTerminal())
	assert.True(t, BookingStatusCancelled.IsTerminal())
	assert.False(t, BookingStatusPending.IsTerminal())
	assert.False(t, BookingStatusActive.IsTerminal())
}

func TestParseBookingStatus(t *testing.T) {
	s, err := ParseBookingStatus("active")
	require.NoError(t, err)
	assert.Equal(t, BookingStatusActive, s)

	_, err = ParseBookingStatus("expired")
	assert.Error(t, err)

	_, err = ParsePaymentStatus("refunded")
	assert.Error(t, err)
}

func TestCancellableByRenter(t *testing.T) {
	assert.True(t, BookingStatusPending.CancellableByRenter())
	assert.True(t, BookingStatusConfirmed.CancellableByRenter())
	assert.False(t, BookingStatusActive.CancellableByRenter())
	assert.False(t, BookingStatusCompleted.CancellableByRenter())
}

func TestRentalDays(t *testing.T) {
	day := func(d int) time.Time { return time.Date(2025, 6, d, 0, 0, 0, 0, time.UTC) }

	assert.Equal(t, 2, RentalDays(day(10), day(12)))
	assert.Equal(t, 1, RentalDays(day(10), day(10).Add(3*time.Hour)))
	assert.Equal(t, 3, RentalDays(day(10), day(12).Add(time.Minute)))
}

func TestRangesOverlap(t *testing.T) {
	day := func(d int) time.Time { return time.Date(2025, 6, d, 0, 0, 0, 0, time.UTC) }

	tests := []struct {
		name       string
		aStart     int
		aEnd       int
		bStart     int
		bEnd       int
		wantResult bool
	}{
		{"disjoint before", 1, 3, 5, 7, false},
		{"disjoint after", 8, 9, 5, 7, false},
		{"shared boundary day", 1, 5, 5, 7, true},
		{"contained", 4, 6, 1, 10, true},
		{"partial", 3, 6, 5, 9, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RangesOverlap(day(tt.aStart), day(tt.aEnd), day(tt.bStart), day(tt.bEnd))
			assert.Equal(t, tt.wantResult, got)
			assert.Equal(t, got, RangesOverlap(day(tt.bStart), day(tt.bEnd), day(tt.aStart), day(tt.aEnd)))
		})
	}
}

func TestCarCanBeBooked(t *testing.T) {
	car := &Car{IsApproved: true, IsAvailable: true}
	assert.True(t, car.CanBeBooked())

	car.IsAvailable = false
	assert.False(t, car.CanBeBooked())

	car.IsAvailable, car.IsApproved = true, false
	assert.False(t, car.CanBeBooked())
}
