package handlers

import (
	"encoding/json"
	"net/http"
)

// HealthHandler reports liveness. The gateway holds no state, so being
// able to answer at all is the health signal.
func HealthHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{
			"status": "ok",
		})
	})
}
