package request

type UpdateUserStatusRequest struct {
	IsBlocked *bool `json:"isBlocked" validate:"required"`
}
