package api

import "time"

// ListenerAuthRequest represents the enrollment payload from a
// listener device.
type ListenerAuthRequest struct {
	Host   string `json:"host" validate:"required"`
	Room   string `json:"room,omitempty"`
	Secret string `json:"secret" validate:"required"`
}

// ListenerAuthResponse carries the issued management token.
type ListenerAuthResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	Host      string    `json:"host"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
