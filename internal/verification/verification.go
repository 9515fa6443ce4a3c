// Package verification decides how an AuthState moves when a proof is
// presented. Functions here never touch storage or the clock; callers pass
// now and persist whatever state comes back.
package verification

import (
	"crypto/subtle"
	"time"

	"estate-api/internal/data/entity"
)

type Outcome int

const (
	// Accepted means the proof matched and the next state must be persisted.
	Accepted Outcome = iota
	// AlreadyVerified means the channel is confirmed; the state is unchanged.
	AlreadyVerified
	// Invalid means there is no pending proof or it does not match; the state is unchanged.
	Invalid
	// Expired means the pending proof has elapsed; the next state carries
	// status expired and must be persisted.
	Expired
)

func (o Outcome) String() string {
	switch o {
	case Accepted:
		return "accepted"
	case AlreadyVerified:
		return "already_verified"
	case Invalid:
		return "invalid"
	case Expired:
		return "expired"
	}
	return "unknown"
}

// Changed reports whether the outcome produced a state that must be saved.
func (o Outcome) Changed() bool {
	return o == Accepted || o == Expired
}

// EvaluateEmailToken checks token against the pending email verification token.
func EvaluateEmailToken(state entity.AuthState, token string, now time.Time) (entity.AuthState, Outcome) {
	if state.Status == entity.StatusVerified || state.EmailVerified {
		return state, AlreadyVerified
	}
	if elapsed(state.TokenExpiration, now) {
		state.Status = entity.StatusExpired
		return state, Expired
	}
	if !matches(state.VerificationToken, token) {
		return state, Invalid
	}

	state.EmailVerified = true
	state.VerificationToken = ""
	state.TokenExpiration = nil
	if state.FullyVerified() {
		state.Status = entity.StatusVerified
	}
	return state, Accepted
}

// EvaluatePhoneOTP checks otp against the pending phone OTP.
func EvaluatePhoneOTP(state entity.AuthState, otp string, now time.Time) (entity.AuthState, Outcome) {
	if state.PhoneNumberVerified {
		return state, AlreadyVerified
	}
	if elapsed(state.OTPExpiration, now) {
		state.Status = entity.StatusExpired
		return state, Expired
	}
	if !matches(state.OTP, otp) {
		return state, Invalid
	}

	state.PhoneNumberVerified = true
	state.OTP = ""
	state.OTPExpiration = nil
	if state.FullyVerified() {
		state.Status = entity.StatusVerified
	}
	return state, Accepted
}

// EvaluateResetToken checks token against the pending password reset token.
// Unlike the verification channels an elapsed reset token is simply cleared;
// it has no bearing on the verification status.
func EvaluateResetToken(state entity.AuthState, token string, now time.Time) (entity.AuthState, Outcome) {
	if state.ResetPasswordToken == "" {
		return state, Invalid
	}
	if elapsed(state.ResetTokenExpiration, now) {
		state.ResetPasswordToken = ""
		state.ResetTokenExpiration = nil
		return state, Expired
	}
	if !matches(state.ResetPasswordToken, token) {
		return state, Invalid
	}

	state.ResetPasswordToken = ""
	state.ResetTokenExpiration = nil
	return state, Accepted
}

// ReissueEmailToken replaces the pending email token and returns the record
// to pending unless it is already verified.
func ReissueEmailToken(state entity.AuthState, token string, expiresAt time.Time) entity.AuthState {
	state.VerificationToken = token
	state.TokenExpiration = &expiresAt
	state.Status = state.SettledStatus()
	return state
}

// ReissueOTP replaces the pending phone OTP the same way.
func ReissueOTP(state entity.AuthState, otp string, expiresAt time.Time) entity.AuthState {
	state.OTP = otp
	state.OTPExpiration = &expiresAt
	state.Status = state.SettledStatus()
	return state
}

// IssueResetToken sets a fresh reset token; the verification fields are untouched.
func IssueResetToken(state entity.AuthState, token string, expiresAt time.Time) entity.AuthState {
	state.ResetPasswordToken = token
	state.ResetTokenExpiration = &expiresAt
	return state
}

func elapsed(expiration *time.Time, now time.Time) bool {
	return expiration != nil && expiration.Before(now)
}

func matches(stored, presented string) bool {
	if stored == "" || presented == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(stored), []byte(presented)) == 1
}
