package models

import (
	"time"
)

type Ledger struct {
	ID              string    `json:"id" db:"id"`
	Name            string    `json:"name" db:"name"`
	DefaultCurrency string    `json:"defaultCurrency" db:"default_currency"`
	CreatedAt       time.Time `json:"created" db:"created_at"`
	UpdatedAt       time.Time `json:"lastUpdated" db:"updated_at"`
}

// LedgerPermission grants a user access to a ledger.
type LedgerPermission struct {
	ID        string    `json:"id" db:"id"`
	LedgerID  string    `json:"ledgerId" db:"ledger_id"`
	UserID    string    `json:"userId" db:"user_id"`
	CreatedAt time.Time `json:"created" db:"created_at"`
}
