package entity

import "github.com/google/uuid"

type Car struct {
	Base
	OwnerID         uuid.UUID `db:"owner_id"`
	Brand           string    `db:"brand"`
	Model           string    `db:"model"`
	Year            int       `db:"year"`
	Category        string    `db:"category"`
	FuelType        string    `db:"fuel_type"`
	Transmission    string    `db:"transmission"`
	SeatingCapacity int       `db:"seating_capacity"`
	Location        string    `db:"location"`
	PricePerDay     float64   `db:"price_per_day"`
	Description     string    `db:"description"`
	Features        []string  `db:"features"`
	Image           *string   `db:"image"`
	IsAvailable     bool      `db:"is_available"`
	IsApproved      bool      `db:"is_approved"`
	RejectionReason *string   `db:"rejection_reason"`
}

// CanBeBooked is true only when the car is approved and not held.
func (c *Car) CanBeBooked() bool {
	return c.IsApproved && c.IsAvailable
}

func (c *Car) IsOwnedBy(userID uuid.UUID) bool {
	return c.OwnerID == userID
}

// CarFilter narrows public and admin car listings. Nil fields are ignored.
type CarFilter struct {
	Category     string
	Transmission string
	FuelType     string
	Location     string
	MinPrice     *float64
	MaxPrice     *float64
	IsApproved   *bool
	IsAvailable  *bool
	OwnerID      *uuid.UUID
	Query        string
}

type CarStats struct {
	Total           int64 `json:"total"`
	Approved        int64 `json:"approved"`
	PendingApproval int64 `json:"pending_approval"`
	Available       int64 `json:"available"`
}
