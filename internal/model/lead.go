package model

import "time"

// Lead statuses. Unknown values are stored and returned verbatim.
const (
	StatusNew       = "new"
	StatusContacted = "contacted"
	StatusFollowup  = "followup"
	StatusQualified = "qualified"
	StatusProposal  = "proposal"
	StatusWon       = "won"
	StatusLost      = "lost"
)

// Lead sources.
const (
	SourceWebsite    = "website"
	SourceReferral   = "referral"
	SourceSocial     = "social"
	SourceEmail      = "email"
	SourceColdCall   = "cold-call"
	SourceExhibition = "exhibition"
	SourceOther      = "other"
)

type Lead struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Company   string    `json:"company"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone,omitempty"`
	Status    string    `json:"status"`
	Source    string    `json:"source"`
	Value     float64   `json:"value"`
	Notes     []Note    `json:"notes"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Note is a free-text annotation owned by a single lead. Notes are deleted
// with their lead.
type Note struct {
	ID        string    `json:"id"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}

// LeadUpdate is a partial update: nil fields leave the stored value
// untouched, non-nil fields overwrite it.
type LeadUpdate struct {
	Name    *string  `json:"name"`
	Company *string  `json:"company"`
	Email   *string  `json:"email"`
	Phone   *string  `json:"phone"`
	Status  *string  `json:"status"`
	Source  *string  `json:"source"`
	Value   *float64 `json:"value"`
}

// LeadStats summarizes the pipeline. Total counts every lead regardless of
// status; qualified leads have no named counter of their own.
type LeadStats struct {
	Total     int `json:"total"`
	New       int `json:"new"`
	Contacted int `json:"contacted"`
	Followup  int `json:"followup"`
	Proposal  int `json:"proposal"`
	Won       int `json:"won"`
	Lost      int `json:"lost"`
}
