package middleware

import (
	"net/http"
	"strings"

	"github.com/go-chi/cors"
)

// CORS allows browser clients from allowOrigin, a comma separated list or
// "*". Content-Disposition is exposed so downloads keep their file name.
func CORS(allowOrigin string) func(http.Handler) http.Handler {
	origins := strings.Split(allowOrigin, ",")
	for i := range origins {
		origins[i] = strings.TrimSpace(origins[i])
	}
	return cors.Handler(cors.Options{
		AllowedOrigins:       origins,
		AllowedMethods:       []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:       []string{"Authorization", "Content-Type", "X-Internal-Token", "X-Request-Id"},
		ExposedHeaders:       []string{"Content-Disposition"},
		MaxAge:               300,
		OptionsSuccessStatus: http.StatusNoContent,
	})
}
