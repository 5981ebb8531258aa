package routes

import (
	"github.com/AnshRaj112/videotube-backend/internal/handlers"
	"github.com/AnshRaj112/videotube-backend/internal/middleware"
	"github.com/go-chi/chi/v5"
)

// SetupRoutes mounts the user account API under /api/v1/users.
func SetupRoutes(r chi.Router, h *handlers.UserHandler, auth middleware.Authenticator) {
	r.Get("/health", handlers.Health)

	r.Route("/api/v1/users", func(r chi.Router) {
		r.Post("/register", h.Register)
		r.Post("/login", h.Login)
		r.Post("/refresh-token", h.RefreshToken)

		// Secured routes
		r.Group(func(r chi.Router) {
			r.Use(middleware.VerifyJWT(auth))
			r.Post("/logout", h.Logout)
			r.Post("/change-password", h.ChangePassword)
			r.Get("/current-user", h.CurrentUser)
			r.Patch("/update-account", h.UpdateAccount)
			r.Patch("/update-avatar", h.UpdateAvatar)
			r.Patch("/update-cover-image", h.UpdateCoverImage)
		})
	})
}
