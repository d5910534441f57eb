package middleware

import (
	"encoding/json"
	"net/http"
	"time"
)

// LivenessPayload is the /health response body. Liveness never depends on
// downstream collaborators: the process being up is the contract.
type LivenessPayload struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Version   string `json:"version"`
	Message   string `json:"message,omitempty"`
}

// HealthHandler serves GET /health.
func HealthHandler(version string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeLiveness(w, LivenessPayload{
			Status:    "healthy",
			Timestamp: time.Now().UTC().Format(time.RFC3339),
			Version:   version,
		})
	}
}

// StatusHandler serves GET /api/status for deploy validation.
func StatusHandler(version string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeLiveness(w, LivenessPayload{
			Status:    "ok",
			Timestamp: time.Now().UTC().Format(time.RFC3339),
			Version:   version,
			Message:   "API is running",
		})
	}
}

func writeLiveness(w http.ResponseWriter, payload LivenessPayload) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(payload)
}
