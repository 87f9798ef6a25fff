package response

import (
	"time"

	"github.com/lumina-events/invitation-api/internal/service"
)

type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// SessionResponse is returned when a guest opens a session. Token must be
// sent as a bearer token on every later guest call.
type SessionResponse struct {
	Token string `json:"token"`
	service.AdmissionView
}

type ResetResponse struct {
	Code      string    `json:"code"`
	ExpiresAt time.Time `json:"expires_at"`
}

type HealthResponse struct {
	Status string `json:"status"`
}
