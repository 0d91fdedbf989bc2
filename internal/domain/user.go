package domain

import "time"

// User represents a registered account holder. Email is the login key and is
// unique across users (case-sensitive exact match).
type User struct {
	ID           string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}
