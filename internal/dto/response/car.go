package response

import (
	"time"

	"car-rental/internal/data/entity"
)

type CarResponse struct {
	ID              string    `json:"id"`
	OwnerID         string    `json:"owner"`
	Brand           string    `json:"brand"`
	Model           string    `json:"model"`
	Year            int       `json:"year"`
	Category        string    `json:"category"`
	FuelType        string    `json:"fuel_type"`
	Transmission    string    `json:"transmission"`
	SeatingCapacity int       `json:"seating_capacity"`
	Location        string    `json:"location"`
	PricePerDay     float64   `json:"pricePerDay"`
	Description     string    `json:"description"`
	Features        []string  `json:"features"`
	Image           *string   `json:"image,omitempty"`
	IsAvailable     bool      `json:"isAvailable"`
	IsApproved      bool      `json:"isApproved"`
	RejectionReason *string   `json:"rejectionReason,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}

func CarToResponse(car *entity.Car) CarResponse {
	features := car.Features
	if features == nil {
		features = []string{}
	}
	return CarResponse{
		ID:              car.ID.String(),
		OwnerID:         car.OwnerID.String(),
		Brand:           car.Brand,
		Model:           car.Model,
		Year:            car.Year,
		Category:        car.Category,
		FuelType:        car.FuelType,
		Transmission:    car.Transmission,
		SeatingCapacity: car.SeatingCapacity,
		Location:        car.Location,
		PricePerDay:     car.PricePerDay,
		Description:     car.Description,
		Features:        features,
		Image:           car.Image,
		IsAvailable:     car.IsAvailable,
		IsApproved:      car.IsApproved,
		RejectionReason: car.RejectionReason,
		CreatedAt:       car.CreatedAt,
	}
}

func CarsToResponse(cars []*entity.Car) []CarResponse {
	out := make([]CarResponse, len(cars))
	for i, c := range cars {
		out[i] = CarToResponse(c)
	}
	return out
}

type AvailabilityResponse struct {
	CarID     string    `json:"carId"`
	StartDate time.Time `json:"startDate"`
	EndDate   time.Time `json:"endDate"`
	Available bool      `json:"available"`
}

type FindAvailableResponse struct {
	Location  string        `json:"location"`
	StartDate time.Time     `json:"startDate"`
	EndDate   time.Time     `json:"endDate"`
	Cars      []CarResponse `json:"cars"`
}
