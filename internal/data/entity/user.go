package entity

type UserRole string

const (
	RoleUser  UserRole = "user"
	RoleOwner UserRole = "owner"
	RoleAdmin UserRole = "admin"
)

func (r UserRole) IsValid() bool {
	switch r {
	case RoleUser, RoleOwner, RoleAdmin:
		return true
	}
	return false
}

type User struct {
	Base
	Name         string   `db:"name"`
	Email        string   `db:"email"`
	PasswordHash string   `db:"password"`
	Role         UserRole `db:"role"`
	Phone        *string  `db:"phone"`
	Address      *string  `db:"address"`
	Image        *string  `db:"image"`
	IsBlocked    bool     `db:"is_blocked"`
	IsVerified   bool     `db:"is_verified"`
}

// CanListCars reports whether the user may register vehicles.
func (u *User) CanListCars() bool {
	return u.Role == RoleOwner || u.Role == RoleAdmin
}

type UserFilter struct {
	Role      *UserRole
	IsBlocked *bool
	Search    string
}
