package models

import "time"

// Profile is the locally stored identity record. Authentication state lives
// here; organization binding lives on the Membership.
type Profile struct {
	ID            string    `json:"id"`
	Email         string    `json:"email"`
	FullName      string    `json:"full_name"`
	PasswordHash  string    `json:"-"`
	EmailVerified bool      `json:"email_verified"`
	IsActive      bool      `json:"is_active"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}
