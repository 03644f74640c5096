package request

// Dates accept YYYY-MM-DD or RFC3339.
type CreateBookingRequest struct {
	CarID           string  `json:"carId" validate:"required,uuid"`
	StartDate       string  `json:"startDate" validate:"required"`
	EndDate         string  `json:"endDate" validate:"required"`
	PickupLocation  *string `json:"pickupLocation,omitempty" validate:"omitempty,max=255"`
	DropoffLocation *string `json:"dropoffLocation,omitempty" validate:"omitempty,max=255"`
	SpecialRequests *string `json:"specialRequests,omitempty" validate:"omitempty,max=1000"`
	PaymentMethod   *string `json:"paymentMethod,omitempty" validate:"omitempty,oneof=cash card transfer"`
}

// Status values are checked by the lifecycle after authorization.
type UpdateBookingStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

type UpdatePaymentStatusRequest struct {
	PaymentStatus string `json:"paymentStatus" validate:"required,oneof=pending paid"`
}

type AdminUpdateBookingRequest struct {
	Status        *string `json:"status,omitempty" validate:"omitempty,oneof=pending confirmed active completed cancelled"`
	PaymentStatus *string `json:"paymentStatus,omitempty" validate:"omitempty,oneof=pending paid"`
}

type AvailabilityRequest struct {
	CarID     string `validate:"required,uuid"`
	StartDate string `validate:"required"`
	EndDate   string `validate:"required"`
}

type FindAvailableRequest struct {
	Location  string `validate:"required"`
	StartDate string `validate:"required"`
	EndDate   string `validate:"required"`
}
