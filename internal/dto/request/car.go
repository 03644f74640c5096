package request

type CreateCarRequest struct {
	Brand           string   `json:"brand" validate:"required,max=100"`
	Model           string   `json:"model" validate:"required,max=100"`
	Year            int      `json:"year" validate:"required,gte=1950,lte=2100"`
	Category        string   `json:"category" validate:"required,max=50"`
	FuelType        string   `json:"fuel_type" validate:"required,oneof=Petrol Diesel Electric Hybrid Gas"`
	Transmission    string   `json:"transmission" validate:"required,oneof=Automatic Manual Semi-Automatic"`
	SeatingCapacity int      `json:"seating_capacity" validate:"required,gte=1,lte=50"`
	Location        string   `json:"location" validate:"required,max=255"`
	PricePerDay     float64  `json:"pricePerDay" validate:"required,gt=0"`
	Description     string   `json:"description" validate:"max=2000"`
	Features        []string `json:"features" validate:"omitempty,dive,max=100"`
	Image           *string  `json:"image,omitempty" validate:"omitempty,url"`
}

// UpdateCarRequest only touches fields that are present.
type UpdateCarRequest struct {
	Brand           *string   `json:"brand,omitempty" validate:"omitempty,max=100"`
	Model           *string   `json:"model,omitempty" validate:"omitempty,max=100"`
	Year            *int      `json:"year,omitempty" validate:"omitempty,gte=1950,lte=2100"`
	Category        *string   `json:"category,omitempty" validate:"omitempty,max=50"`
	FuelType        *string   `json:"fuel_type,omitempty" validate:"omitempty,oneof=Petrol Diesel Electric Hybrid Gas"`
	Transmission    *string   `json:"transmission,omitempty" validate:"omitempty,oneof=Automatic Manual Semi-Automatic"`
	SeatingCapacity *int      `json:"seating_capacity,omitempty" validate:"omitempty,gte=1,lte=50"`
	Location        *string   `json:"location,omitempty" validate:"omitempty,max=255"`
	PricePerDay     *float64  `json:"pricePerDay,omitempty" validate:"omitempty,gt=0"`
	Description     *string   `json:"description,omitempty" validate:"omitempty,max=2000"`
	Features        *[]string `json:"features,omitempty"`
	Image           *string   `json:"image,omitempty" validate:"omitempty,url"`
	IsAvailable     *bool     `json:"isAvailable,omitempty"`
}

type ApproveCarRequest struct {
	IsApproved *bool   `json:"isApproved" validate:"required"`
	Reason     *string `json:"reason,omitempty" validate:"omitempty,max=500"`
}
