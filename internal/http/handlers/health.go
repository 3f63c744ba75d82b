package handlers

import "net/http"

// Health reports liveness for load balancers.
func Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"service": "ares-whatsapp-router",
	})
}
