package web

import "net/http"

// HealthCheck reports service liveness.
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"service": "talehopper",
	})
}
