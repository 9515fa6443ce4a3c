package utils

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"math/big"

	"github.com/google/uuid"
)

// VerificationTokenBytes is the entropy of email and reset-password tokens (224 bits).
const VerificationTokenBytes = 28

// DefaultOTPLength is used when a non-positive length is requested.
const DefaultOTPLength = 6

// maxOTPLength keeps the drawn value inside int64.
const maxOTPLength = 18

// ==================== UUID & TOKEN ====================

func GenerateUUID() uuid.UUID {
	return uuid.New()
}

func ParseUUID(uuidStr string) (uuid.UUID, error) {
	return uuid.Parse(uuidStr)
}

// GenerateVerificationToken returns 28 random bytes hex-encoded (56 chars).
func GenerateVerificationToken() (string, error) {
	buf := make([]byte, VerificationTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("read random bytes: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

// ==================== OTP ====================

// GenerateOTP draws a uniform number in [0, 10^length) and zero-pads it to
// exactly length digits.
func GenerateOTP(length int) (string, error) {
	if length <= 0 {
		length = DefaultOTPLength
	}
	if length > maxOTPLength {
		length = maxOTPLength
	}

	limit := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(length)), nil)
	n, err := rand.Int(rand.Reader, limit)
	if err != nil {
		return "", fmt.Errorf("draw otp: %w", err)
	}

	return fmt.Sprintf("%0*d", length, n.Int64()), nil
}
