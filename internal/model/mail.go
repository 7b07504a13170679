package model

import "time"

// ConfirmationEmail is queued for delivery after signup or /auth/request-email.
// The confirmation token travels only inside VerifyURL.
type ConfirmationEmail struct {
	UserID    int64     `json:"user_id"`
	Email     string    `json:"email"`
	FirstName string    `json:"first_name"`
	VerifyURL string    `json:"verify_url"`
	ExpiresAt time.Time `json:"expires_at"`
}
