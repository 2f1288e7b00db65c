package middleware

import (
	"net/http"

	"github.com/go-chi/cors"
)

const anyOrigin = "*"

// CORS lets the storefront client on origins call the API with its session cookie. A "*" entry
// opens the API to every origin and, since browsers refuse credentialed wildcards, drops cookies.
func CORS(origins []string) func(http.Handler) http.Handler {
	credentials := true
	for _, origin := range origins {
		if origin == anyOrigin {
			origins = []string{anyOrigin}
			credentials = false
			break
		}
	}
	return cors.New(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Content-Type", idempotencyHeader, requestIDHeader, "X-Requested-With"},
		ExposedHeaders:   []string{requestIDHeader, "Idempotent-Replayed"},
		AllowCredentials: credentials,
		MaxAge:           300,
	}).Handler
}
