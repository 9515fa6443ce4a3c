package response

import (
	"time"

	"estate-api/internal/data/entity"
)

// UserResponse is the public projection of a user; it never carries the
// password hash or any verification proof.
type UserResponse struct {
	ID        string          `json:"id"`
	FullName  string          `json:"fullname"`
	Email     string          `json:"email"`
	Phone     string          `json:"phone"`
	Gender    entity.Gender   `json:"gender"`
	Role      entity.UserRole `json:"role"`
	Avatar    string          `json:"avatar"`
	Verified  bool            `json:"verified"`
	LastLogin *time.Time      `json:"lastLogin,omitempty"`
	CreatedAt time.Time       `json:"createdAt"`
}

type RegisterResponse struct {
	User             UserResponse `json:"user"`
	NotificationSent bool         `json:"notificationSent"`
}

type LoginResponse struct {
	User      UserResponse `json:"user"`
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expiresAt"`
}

// VerificationResponse reports where the account stands after a proof was accepted.
type VerificationResponse struct {
	EmailVerified       bool                      `json:"emailVerified"`
	PhoneNumberVerified bool                      `json:"phoneNumberVerified"`
	Status              entity.VerificationStatus `json:"status"`
	Verified            bool                      `json:"verified"`
}

func UserToResponse(user *entity.User) UserResponse {
	return UserResponse{
		ID:        user.ID.String(),
		FullName:  user.FullName,
		Email:     user.Email,
		Phone:     user.Phone,
		Gender:    user.Gender,
		Role:      user.Role,
		Avatar:    user.Avatar,
		Verified:  user.Verified,
		LastLogin: user.LastLogin,
		CreatedAt: user.CreatedAt,
	}
}

func StateToResponse(state *entity.AuthState) VerificationResponse {
	return VerificationResponse{
		EmailVerified:       state.EmailVerified,
		PhoneNumberVerified: state.PhoneNumberVerified,
		Status:              state.Status,
		Verified:            state.Status == entity.StatusVerified,
	}
}
