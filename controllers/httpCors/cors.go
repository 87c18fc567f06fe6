package httpCors

import (
	"net/http"

	"github.com/rs/cors"
)

// CorsSettings allows the web client's origins. A single "*" allows any
// origin without credentials.
func CorsSettings(allowedOrigins []string) *cors.Cors {
	wildcard := len(allowedOrigins) == 0 || (len(allowedOrigins) == 1 && allowedOrigins[0] == "*")
	if wildcard {
		allowedOrigins = []string{"*"}
	}
	return cors.New(cors.Options{
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedOrigins:   allowedOrigins,
		AllowCredentials: !wildcard,
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		ExposedHeaders:   []string{"Authorization"},
		MaxAge:           600,
	})
}
