package entity

import "time"

type UserRole string

const (
	RoleAdmin    UserRole = "admin"
	RoleUser     UserRole = "user"
	RoleRealtor  UserRole = "realtor"
	RoleLandlord UserRole = "landlord"
)

func (r UserRole) Valid() bool {
	switch r {
	case RoleAdmin, RoleUser, RoleRealtor, RoleLandlord:
		return true
	}
	return false
}

type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
)

// Default avatars used when a user registers without one.
const (
	DefaultMaleAvatar   = "https://res.cloudinary.com/demo/image/upload/avatars/male.png"
	DefaultFemaleAvatar = "https://res.cloudinary.com/demo/image/upload/avatars/female.png"
)

// DefaultAvatar picks the placeholder image for gender.
func DefaultAvatar(g Gender) string {
	if g == GenderFemale {
		return DefaultFemaleAvatar
	}
	return DefaultMaleAvatar
}

type User struct {
	Base
	FullName     string     `db:"full_name"`
	Email        string     `db:"email"`
	Phone        string     `db:"phone"`
	Gender       Gender     `db:"gender"`
	Role         UserRole   `db:"role"`
	PasswordHash string     `db:"password"`
	Avatar       string     `db:"avatar"`
	LastLogin    *time.Time `db:"last_login"`

	// Verified mirrors auth_states.status = 'verified'; it is computed on
	// every read and never written.
	Verified bool `db:"-"`
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
