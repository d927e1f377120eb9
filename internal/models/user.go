package models

import "time"

// User represents a registered account. The password is stored only as a
// bcrypt hash; the raw password never leaves the registration request.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}
