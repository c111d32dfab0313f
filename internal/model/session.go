package model

import "time"

// Session is the record denoting an authenticated user. Name, Email,
// Picture, and Provider are copied from the account at login time. Sessions
// do not expire; they live until an explicit logout.
type Session struct {
	ID        int64     `json:"id"`
	Token     string    `json:"-"`
	AccountID string    `json:"account_id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Picture   string    `json:"picture,omitempty"`
	Provider  string    `json:"provider"`
	LoginAt   time.Time `json:"login_at"`
}
