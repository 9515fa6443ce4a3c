package request

type RegisterRequest struct {
	FullName        string `json:"fullname" validate:"required,min=2,max=80"`
	Email           string `json:"email" validate:"required,email"`
	Phone           string `json:"phone" validate:"required,min=4,max=15"`
	Code            string `json:"code" validate:"required,country_code"`
	Gender          string `json:"gender" validate:"required,oneof=male female"`
	Password        string `json:"password" validate:"required,min=8"`
	ConfirmPassword string `json:"confirmPassword" validate:"required"`
	Avatar          string `json:"avatar,omitempty" validate:"omitempty,url"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// VerifyEmailRequest is read from the query string.
type VerifyEmailRequest struct {
	Token string `json:"token" validate:"required"`
	Email string `json:"email" validate:"required,email"`
}

// VerifyPhoneRequest takes the phone from the path and the otp from the body.
type VerifyPhoneRequest struct {
	Phone string `json:"-"`
	OTP   string `json:"otp" validate:"required,numeric"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// ResetPasswordRequest takes token and email from the path.
type ResetPasswordRequest struct {
	Token           string `json:"-" validate:"required"`
	Email           string `json:"-" validate:"required,email"`
	NewPassword     string `json:"newPassword" validate:"required,min=8"`
	ConfirmPassword string `json:"confirmPassword" validate:"required"`
}

type ChangePasswordRequest struct {
	OldPassword     string `json:"oldPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=8"`
	ConfirmPassword string `json:"confirmPassword" validate:"required"`
}

type ResendVerificationRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type ResendOTPRequest struct {
	Phone string `json:"phone" validate:"required,phone"`
}
