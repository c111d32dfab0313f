package model

import "time"

// Followup is a scheduled reminder tied to a lead. LeadName and Company are
// snapshots taken when the follow-up is scheduled; renaming the lead later
// does not update them. Deleting a lead leaves its follow-ups in place with
// a dangling LeadID.
type Followup struct {
	ID          string    `json:"id"`
	LeadID      string    `json:"lead_id"`
	LeadName    string    `json:"lead_name"`
	Company     string    `json:"company"`
	ScheduledAt time.Time `json:"scheduled_at"`
	Note        string    `json:"note,omitempty"`
	Completed   bool      `json:"completed"`
	CreatedAt   time.Time `json:"created_at"`
}
