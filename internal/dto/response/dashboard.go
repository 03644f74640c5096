package response

import "car-rental/internal/data/entity"

type AdminDashboardResponse struct {
	Users    UserCounts          `json:"users"`
	Cars     entity.CarStats     `json:"cars"`
	Bookings entity.BookingStats `json:"bookings"`
}

type UserCounts struct {
	Total  int64 `json:"total"`
	Users  int64 `json:"users"`
	Owners int64 `json:"owners"`
	Admins int64 `json:"admins"`
}

type OwnerDashboardResponse struct {
	Cars           entity.CarStats     `json:"cars"`
	Bookings       entity.BookingStats `json:"bookings"`
	RecentBookings []BookingResponse   `json:"recentBookings"`
}

type BlockUserResponse struct {
	User              UserResponse `json:"user"`
	CancelledBookings int          `json:"cancelledBookings"`
}
