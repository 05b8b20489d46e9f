package models

import "time"

type User struct {
	ID           string    `json:"userId" db:"id"`
	Username     string    `json:"name" db:"name"`
	Email        string    `json:"email" db:"email"`
	Salt         string    `json:"-" db:"salt"`
	PasswordHash string    `json:"-" db:"password_hash"`
	Verified     bool      `json:"verified" db:"verified"`
	CreatedAt    time.Time `json:"created" db:"created_at"`
	UpdatedAt    time.Time `json:"lastUpdated" db:"updated_at"`
}
