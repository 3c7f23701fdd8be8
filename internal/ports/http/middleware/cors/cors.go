package cors

import (
	"net/http"

	"github.com/rs/cors"
)

// AddCorsPolicy lets the wizard frontend call the API. No origins means any origin.
func AddCorsPolicy(handler http.Handler, allowedOrigins ...string) http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete},
		AllowCredentials: true,
		Debug:            false,
		AllowedHeaders:   []string{"Origin", "Content-Type", "Accept", "Authorization"},
	})

	return c.Handler(handler)
}
