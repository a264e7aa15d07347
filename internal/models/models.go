package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// User represents a chat user in the system
type User struct {
	ID        int64     `json:"id"`
	UserName  string    `json:"user_name"`
	ChatID    string    `json:"chat_id"` // External chat/session identifier from the transport
	CreatedAt time.Time `json:"created_at"`
}

// Expense represents a single recorded spending entry
type Expense struct {
	ID       int64           `json:"id"`
	UserID   int64           `json:"user_id"`
	Amount   decimal.Decimal `json:"amount"`
	Category Category        `json:"category"`
	Date     time.Time       `json:"date"` // Calendar date, time component is always midnight UTC
}

// Pending holds an amount waiting for the user to pick a category
type Pending struct {
	Amount decimal.Decimal
	SetAt  time.Time
}

// DateOnly truncates t to its calendar date in t's location and returns it as midnight UTC.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
