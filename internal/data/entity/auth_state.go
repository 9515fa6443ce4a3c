package entity

import (
	"time"

	"github.com/google/uuid"
)

type VerificationStatus string

const (
	StatusPending  VerificationStatus = "pending"
	StatusVerified VerificationStatus = "verified"
	StatusExpired  VerificationStatus = "expired"
)

// AuthState tracks how far a user got through email and phone verification
// and holds the outstanding single-use proofs.
type AuthState struct {
	UserID               uuid.UUID          `db:"user_id"`
	OTP                  string             `db:"otp"`
	OTPExpiration        *time.Time         `db:"otp_expiration"`
	VerificationToken    string             `db:"verification_token"`
	TokenExpiration      *time.Time         `db:"token_expiration"`
	ResetPasswordToken   string             `db:"reset_password_token"`
	ResetTokenExpiration *time.Time         `db:"reset_token_expiration"`
	EmailVerified        bool               `db:"email_verified"`
	PhoneNumberVerified  bool               `db:"phone_number_verified"`
	Status               VerificationStatus `db:"status"`
	Version              int64              `db:"version"`
	CreatedAt            time.Time          `db:"created_at"`
	UpdatedAt            time.Time          `db:"updated_at"`
}

// FullyVerified reports whether both channels are confirmed.
func (a *AuthState) FullyVerified() bool {
	return a.EmailVerified && a.PhoneNumberVerified
}

// SettledStatus is the status implied by the verification flags alone.
func (a *AuthState) SettledStatus() VerificationStatus {
	if a.FullyVerified() {
		return StatusVerified
	}
	return StatusPending
}
