package dto

import "time"

// StaffLoginRequest carries the shared dashboard password.
type StaffLoginRequest struct {
	Password string `json:"password"`
}

// StaffLoginResponse returns the staff session token.
type StaffLoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}
