package entity

import (
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
)

type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusActive    BookingStatus = "active"
	BookingStatusCompleted BookingStatus = "completed"
	BookingStatusCancelled BookingStatus = "cancelled"
)

// bookingTransitions is the only source of allowed status changes.
var bookingTransitions = map[BookingStatus][]BookingStatus{
	BookingStatusPending:   {BookingStatusConfirmed, BookingStatusCancelled},
	BookingStatusConfirmed: {BookingStatusActive, BookingStatusCompleted, BookingStatusCancelled},
	BookingStatusActive:    {BookingStatusCompleted, BookingStatusCancelled},
	BookingStatusCompleted: {},
	BookingStatusCancelled: {},
}

// BlockingStatuses occupy a car's calendar.
var BlockingStatuses = []BookingStatus{BookingStatusConfirmed, BookingStatusActive}

// HoldingStatuses keep a car marked unavailable.
var HoldingStatuses = []BookingStatus{BookingStatusPending, BookingStatusConfirmed, BookingStatusActive}

func (s BookingStatus) IsValid() bool {
	_, ok := bookingTransitions[s]
	return ok
}

func (s BookingStatus) CanTransitionTo(target BookingStatus) bool {
	for _, t := range bookingTransitions[s] {
		if t == target {
			return true
		}
	}
	return false
}

func (s BookingStatus) IsTerminal() bool {
	return len(bookingTransitions[s]) == 0
}

// IsBlocking reports whether a booking in this status reserves its date range.
func (s BookingStatus) IsBlocking() bool {
	return s == BookingStatusConfirmed || s == BookingStatusActive
}

// ReleasesCar reports whether entering this status may free the car.
func (s BookingStatus) ReleasesCar() bool {
	return s == BookingStatusCompleted || s == BookingStatusCancelled
}

// CancellableByRenter is narrower than the transition table: a renter may
// only back out before the rental has started.
func (s BookingStatus) CancellableByRenter() bool {
	return s == BookingStatusPending || s == BookingStatusConfirmed
}

func ParseBookingStatus(s string) (BookingStatus, error) {
	status := BookingStatus(s)
	if !status.IsValid() {
		return "", fmt.Errorf("invalid booking status: %s", s)
	}
	return status, nil
}

type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "pending"
	PaymentStatusPaid    PaymentStatus = "paid"
)

func ParsePaymentStatus(s string) (PaymentStatus, error) {
	switch PaymentStatus(s) {
	case PaymentStatusPending, PaymentStatusPaid:
		return PaymentStatus(s), nil
	}
	return "", fmt.Errorf("invalid payment status: %s", s)
}

const DefaultPaymentMethod = "cash"

type Booking struct {
	Base
	BookingCode     string        `db:"booking_code"`
	UserID          uuid.UUID     `db:"user_id"`
	CarID           uuid.UUID     `db:"car_id"`
	OwnerID         uuid.UUID     `db:"owner_id"`
	StartDate       time.Time     `db:"start_date"`
	EndDate         time.Time     `db:"end_date"`
	TotalDays       int           `db:"total_days"`
	PricePerDay     float64       `db:"price_per_day"`
	TotalAmount     float64       `db:"total_amount"`
	Status          BookingStatus `db:"status"`
	PaymentStatus   PaymentStatus `db:"payment_status"`
	PaymentMethod   string        `db:"payment_method"`
	PickupLocation  string        `db:"pickup_location"`
	DropoffLocation string        `db:"dropoff_location"`
	SpecialRequests *string       `db:"special_requests"`
}

// Overlaps uses inclusive bounds, so a booking ending on a day conflicts with
// one starting that same day.
func (b *Booking) Overlaps(start, end time.Time) bool {
	return RangesOverlap(b.StartDate, b.EndDate, start, end)
}

func RangesOverlap(startA, endA, startB, endB time.Time) bool {
	return !startA.After(endB) && !endA.Before(startB)
}

// RentalDays rounds partial days up.
func RentalDays(start, end time.Time) int {
	return int(math.Ceil(end.Sub(start).Hours() / 24))
}

// BookingFilter narrows admin and owner listings.
type BookingFilter struct {
	Status        *BookingStatus
	PaymentStatus *PaymentStatus
	UserID        *uuid.UUID
	OwnerID       *uuid.UUID
	CarID         *uuid.UUID
}

type BookingStats struct {
	Total    int64                   `json:"total"`
	ByStatus map[BookingStatus]int64 `json:"by_status"`
	// Revenue sums total_amount of completed bookings.
	Revenue float64 `json:"revenue"`
}
