package usecase

import (
	"fmt"

	"estate-api/pkg/utils"
)

type Kind int

const (
	KindInternal Kind = iota
	KindNotFound
	KindConflict
	KindBadRequest
	KindUnauthorized
	KindForbidden
	KindTooManyRequests
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindBadRequest:
		return "bad_request"
	case KindUnauthorized:
		return "unauthorized"
	case KindForbidden:
		return "forbidden"
	case KindTooManyRequests:
		return "too_many_requests"
	}
	return "internal"
}

// AppError is the error every service method returns to handlers. Message is
// safe to show to the caller; Err is kept for logs only.
type AppError struct {
	Kind    Kind
	Message string
	Fields  map[string]string
	Err     error
}

func (e *AppError) Error() string {
	if len(e.Fields) > 0 {
		return fmt.Sprintf("%s: %s: %s", e.Kind, e.Message, utils.FormatValidationErrors(e.Fields))
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NotFound(msg string) *AppError {
	return &AppError{Kind: KindNotFound, Message: msg}
}

func Conflict(msg string) *AppError {
	return &AppError{Kind: KindConflict, Message: msg}
}

func BadRequest(msg string) *AppError {
	return &AppError{Kind: KindBadRequest, Message: msg}
}

func Unauthorized(msg string) *AppError {
	return &AppError{Kind: KindUnauthorized, Message: msg}
}

func Forbidden(msg string) *AppError {
	return &AppError{Kind: KindForbidden, Message: msg}
}

func TooManyRequests(msg string) *AppError {
	return &AppError{Kind: KindTooManyRequests, Message: msg}
}

// Invalid reports request validation failures field by field.
func Invalid(fields map[string]string) *AppError {
	return &AppError{Kind: KindBadRequest, Message: "validation failed", Fields: fields}
}

func Internal(msg string, err error) *AppError {
	return &AppError{Kind: KindInternal, Message: msg, Err: err}
}

// user-facing messages shared by several operations
const (
	msgUserNotFound         = "user not found"
	msgEmailRegistered      = "email already registered"
	msgPhoneRegistered      = "phone number already registered"
	msgEmailVerified        = "email already verified"
	msgPhoneVerified        = "phone number already verified"
	msgTokenExpired         = "token expired"
	msgOTPExpired           = "otp expired"
	msgInvalidToken         = "invalid token"
	msgInvalidOTP           = "invalid otp"
	msgInvalidPhone         = "invalid phone number format"
	msgInvalidCredentials   = "invalid credentials"
	msgNotVerified          = "account not verified"
	msgAccountLocked        = "account temporarily locked"
	msgTooManyRequests      = "too many requests, try again later"
	msgAlreadyProcessed     = "verification already processed"
	msgPasswordsDoNotMatch  = "passwords do not match"
	msgSamePassword         = "new password cannot be the same as the old password"
	msgOldPasswordIncorrect = "old password is incorrect"
	msgSomethingWentWrong   = "something went wrong, please try again"
)
