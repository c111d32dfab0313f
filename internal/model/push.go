package model

import "time"

// PushSubscription is a browser Web Push endpoint registered by an account.
// Having at least one subscription is what "notification permission granted"
// means server-side.
type PushSubscription struct {
	ID        int64     `json:"id"`
	AccountID string    `json:"account_id"`
	Endpoint  string    `json:"endpoint"`
	P256dhKey string    `json:"-"`
	AuthKey   string    `json:"-"`
	CreatedAt time.Time `json:"created_at"`
}
