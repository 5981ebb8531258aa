package middleware

import (
	"net/http"

	"github.com/go-chi/cors"
)

// CORS allows credentialed requests from allowedOrigins and answers preflight with 200
// so browsers never see a 403 on OPTIONS.
func CORS(allowedOrigins []string) func(http.Handler) http.Handler {
	return cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token", "X-Requested-With"},
		AllowCredentials: true,
		MaxAge:           300,
	})
}
