package model

import "time"

// Account providers.
const (
	ProviderEmail  = "email"
	ProviderGoogle = "google"
)

// Account is a user of the system. Email is unique case-insensitively.
// PasswordHash is empty for accounts created through federated sign-in;
// SubjectID is empty until a federated identity is linked.
type Account struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Provider     string    `json:"provider"`
	SubjectID    string    `json:"-"`
	Picture      string    `json:"picture,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}
