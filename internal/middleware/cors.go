package middleware

import (
	"net/http"

	"github.com/rs/cors"
)

func CORS(origins []string) func(http.Handler) http.Handler {
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	handler := cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{
			http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions,
		},
		AllowedHeaders: []string{HeaderAuthorization, "Content-Type", requestIDHeader, HeaderKeepAlive},
		// Browsers hide response headers unless exposed; the client reads renewals from these.
		ExposedHeaders: []string{
			HeaderAuthorization,
			HeaderSessionWarning,
			HeaderTimeRemaining,
			HeaderWarningType,
			HeaderSessionExtended,
			requestIDHeader,
		},
		MaxAge:           3600,
		AllowCredentials: false,
	})

	return handler.Handler
}
