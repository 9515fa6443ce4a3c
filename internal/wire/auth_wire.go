package wire

import (
	"net/http"

	"estate-api/internal/adaptor"

	"github.com/go-chi/chi/v5"
)

func wireAuth(r chi.Router, authHandler *adaptor.AuthHandler, authenticate func(http.Handler) http.Handler) {
	// ==================== PUBLIC ROUTES ====================
	r.Post("/register", authHandler.Register)
	r.Get("/verify-email", authHandler.VerifyEmail)
	r.Post("/verify-phone/{phone}", authHandler.VerifyPhone)
	r.Post("/login", authHandler.Login)
	r.Post("/forgot-password", authHandler.ForgotPassword)
	r.Post("/reset-password/{token}/{email}", authHandler.ResetPassword)
	r.Post("/resend-verification-token", authHandler.ResendVerificationToken)
	r.Post("/resend-otp", authHandler.ResendOTP)

	// ==================== PROTECTED ROUTES ====================
	r.Group(func(r chi.Router) {
		r.Use(authenticate)

		r.Post("/change-password", authHandler.ChangePassword)
		r.Post("/logout", authHandler.Logout)
	})
}
