package models

import "time"

// Token is the server-side record of an issued session token. A signed token
// is only honoured while its record exists.
type Token struct {
	JwtID   string    `json:"jwtId" db:"jwt_id"`
	UserID  string    `json:"-" db:"user_id"`
	Issued  time.Time `json:"issued" db:"issued"`
	Subject string    `json:"subject" db:"subject"`
}
