package domain

import "time"

// User is a registered account. The password is stored only as a salted
// bcrypt hash.
type User struct {
	ID           string    `json:"user_id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}
