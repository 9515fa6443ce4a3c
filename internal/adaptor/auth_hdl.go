package adaptor

import (
	"net/http"
	"net/url"

	"estate-api/internal/dto/request"
	"estate-api/internal/usecase"
	"estate-api/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type AuthHandler struct {
	service usecase.AuthService
	log     *zap.Logger
}

func NewAuthHandler(service usecase.AuthService, log *zap.Logger) *AuthHandler {
	return &AuthHandler{
		service: service,
		log:     log.With(zap.String("handler", "auth")),
	}
}

// Register handles POST /user/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req request.RegisterRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	resp, err := h.service.Register(r.Context(), &req)
	if err != nil {
		writeServiceError(w, h.log, err, "register")
		return
	}

	message := "Registration successful. Check your email and phone to verify your account."
	if !resp.NotificationSent {
		message = "Registration successful, but we could not deliver your verification codes. Request a new one to continue."
	}
	utils.ResponseCreated(w, message, resp)
}

// VerifyEmail handles GET /user/verify-email?token=&email=
func (h *AuthHandler) VerifyEmail(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	req := request.VerifyEmailRequest{
		Token: query.Get("token"),
		Email: query.Get("email"),
	}

	resp, err := h.service.VerifyEmail(r.Context(), &req)
	if err != nil {
		writeServiceError(w, h.log, err, "verify email")
		return
	}

	utils.ResponseSuccess(w, "Email verified successfully", resp)
}

// VerifyPhone handles POST /user/verify-phone/{phone}
func (h *AuthHandler) VerifyPhone(w http.ResponseWriter, r *http.Request) {
	var req request.VerifyPhoneRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	phone, err := url.PathUnescape(chi.URLParam(r, "phone"))
	if err != nil {
		utils.ResponseBadRequest(w, "Invalid phone number", nil)
		return
	}
	req.Phone = phone

	resp, err := h.service.VerifyPhone(r.Context(), &req)
	if err != nil {
		writeServiceError(w, h.log, err, "verify phone")
		return
	}

	utils.ResponseSuccess(w, "Phone number verified successfully", resp)
}

// Login handles POST /user/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req request.LoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	resp, err := h.service.Login(r.Context(), &req)
	if err != nil {
		writeServiceError(w, h.log, err, "login")
		return
	}

	utils.ResponseSuccess(w, "Login successful", resp)
}

// Logout handles POST /user/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	token, ok := utils.GetTokenFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	if err := h.service.Logout(r.Context(), token); err != nil {
		writeServiceError(w, h.log, err, "logout")
		return
	}

	utils.ResponseSuccess(w, "Logout successful", nil)
}

// ForgotPassword handles POST /user/forgot-password
func (h *AuthHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req request.ForgotPasswordRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.service.ForgotPassword(r.Context(), &req); err != nil {
		writeServiceError(w, h.log, err, "forgot password")
		return
	}

	utils.ResponseSuccess(w, "Password reset link sent to your email", nil)
}

// ResetPassword handles POST /user/reset-password/{token}/{email}
func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req request.ResetPasswordRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	token, err := url.PathUnescape(chi.URLParam(r, "token"))
	if err != nil {
		utils.ResponseBadRequest(w, "Invalid reset link", nil)
		return
	}
	email, err := url.PathUnescape(chi.URLParam(r, "email"))
	if err != nil {
		utils.ResponseBadRequest(w, "Invalid reset link", nil)
		return
	}
	req.Token, req.Email = token, email

	if err := h.service.ResetPassword(r.Context(), &req); err != nil {
		writeServiceError(w, h.log, err, "reset password")
		return
	}

	utils.ResponseSuccess(w, "Password reset successful", nil)
}

// ChangePassword handles POST /user/change-password
func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	var req request.ChangePasswordRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.service.ChangePassword(r.Context(), userID, &req); err != nil {
		writeServiceError(w, h.log, err, "change password")
		return
	}

	utils.ResponseSuccess(w, "Password changed successfully", nil)
}

// ResendVerificationToken handles POST /user/resend-verification-token
func (h *AuthHandler) ResendVerificationToken(w http.ResponseWriter, r *http.Request) {
	var req request.ResendVerificationRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.service.ResendVerificationToken(r.Context(), &req); err != nil {
		writeServiceError(w, h.log, err, "resend verification token")
		return
	}

	utils.ResponseSuccess(w, "A new verification link has been sent to your email", nil)
}

// ResendOTP handles POST /user/resend-otp
func (h *AuthHandler) ResendOTP(w http.ResponseWriter, r *http.Request) {
	var req request.ResendOTPRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.service.ResendOTP(r.Context(), &req); err != nil {
		writeServiceError(w, h.log, err, "resend otp")
		return
	}

	utils.ResponseSuccess(w, "A new OTP has been sent to your phone", nil)
}
