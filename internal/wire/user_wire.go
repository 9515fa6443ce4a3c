package wire

import (
	"net/http"

	"estate-api/internal/adaptor"

	"github.com/go-chi/chi/v5"
)

// wireUser configures profile and admin user management routes
func wireUser(
	r chi.Router,
	userHandler *adaptor.UserHandler,
	authenticate func(http.Handler) http.Handler,
	requireAdmin func(http.Handler) http.Handler,
) {
	// ==================== PROTECTED USER ROUTES ====================
	r.Group(func(r chi.Router) {
		r.Use(authenticate)

		r.Get("/profile", userHandler.GetProfile)
		r.Put("/profile", userHandler.UpdateProfile)
	})

	// ==================== ADMIN ROUTES ====================
	r.Group(func(r chi.Router) {
		r.Use(authenticate, requireAdmin)

		r.Get("/all", userHandler.GetAllUsers)                // GET /user/all?page=1&per_page=10
		r.Get("/{id}", userHandler.GetUser)                   // GET /user/{id}
		r.Put("/{id}/make-admin", userHandler.MakeAdmin)      // PUT /user/{id}/make-admin
		r.Delete("/profile/{userId}", userHandler.DeleteUser) // DELETE /user/profile/{userId}
	})
}
