package response

import (
	"time"

	"car-rental/internal/data/entity"
)

type BookingResponse struct {
	ID              string               `json:"id"`
	BookingCode     string               `json:"bookingCode"`
	UserID          string               `json:"user"`
	CarID           string               `json:"car"`
	OwnerID         string               `json:"owner"`
	StartDate       time.Time            `json:"startDate"`
	EndDate         time.Time            `json:"endDate"`
	TotalDays       int                  `json:"totalDays"`
	PricePerDay     float64              `json:"pricePerDay"`
	TotalAmount     float64              `json:"totalAmount"`
	Status          entity.BookingStatus `json:"status"`
	PaymentStatus   entity.PaymentStatus `json:"paymentStatus"`
	PaymentMethod   string               `json:"paymentMethod"`
	PickupLocation  string               `json:"pickupLocation"`
	DropoffLocation string               `json:"dropoffLocation"`
	SpecialRequests *string              `json:"specialRequests,omitempty"`
	Car             *CarResponse         `json:"carDetails,omitempty"`
	CreatedAt       time.Time            `json:"created_at"`
	UpdatedAt       time.Time            `json:"updated_at"`
}

func BookingToResponse(b *entity.Booking) BookingResponse {
	return BookingResponse{
		ID:              b.ID.String(),
		BookingCode:     b.BookingCode,
		UserID:          b.UserID.String(),
		CarID:           b.CarID.String(),
		OwnerID:         b.OwnerID.String(),
		StartDate:       b.StartDate,
		EndDate:         b.EndDate,
		TotalDays:       b.TotalDays,
		PricePerDay:     b.PricePerDay,
		TotalAmount:     b.TotalAmount,
		Status:          b.Status,
		PaymentStatus:   b.PaymentStatus,
		PaymentMethod:   b.PaymentMethod,
		PickupLocation:  b.PickupLocation,
		DropoffLocation: b.DropoffLocation,
		SpecialRequests: b.SpecialRequests,
		CreatedAt:       b.CreatedAt,
		UpdatedAt:       b.UpdatedAt,
	}
}

// BookingsToResponse attaches car details when the car is in cars.
func BookingsToResponse(bookings []*entity.Booking, cars map[string]*entity.Car) []BookingResponse {
	out := make([]BookingResponse, len(bookings))
	for i, b := range bookings {
		out[i] = BookingToResponse(b)
		if car, ok := cars[b.CarID.String()]; ok {
			c := CarToResponse(car)
			out[i].Car = &c
		}
	}
	return out
}
