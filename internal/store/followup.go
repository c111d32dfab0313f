package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/paragonmech/leadbook/internal/model"
)

// upcomingLimit caps the upcoming list shown on the dashboard.
const upcomingLimit = 10

type FollowupStore struct {
	db *sql.DB
}

func NewFollowupStore(db *sql.DB) *FollowupStore {
	return &FollowupStore{db: db}
}

const followupCols = `id, lead_id, lead_name, company, scheduled_at, note, completed, created_at`

func scanFollowup(scanner interface{ Scan(...any) error }) (*model.Followup, error) {
	var f model.Followup
	var completed int
	err := scanner.Scan(
		&f.ID, &f.LeadID, &f.LeadName, &f.Company,
		&f.ScheduledAt, &f.Note, &completed, &f.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	f.Completed = completed != 0
	return &f, nil
}

// Schedule creates a follow-up for the lead, snapshotting its current name
// and company. Returns (nil, nil) when the lead does not exist. Reads come
// back ascending by scheduled time, so there is no re-sort step.
func (s *FollowupStore) Schedule(leadID string, at time.Time, note string) (*model.Followup, error) {
	var leadName, company string
	err := s.db.QueryRow(`SELECT name, company FROM leads WHERE id = ?`, leadID).Scan(&leadName, &company)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("lookup lead: %w", err)
	}

	f := model.Followup{
		ID:          uuid.NewString(),
		LeadID:      leadID,
		LeadName:    leadName,
		Company:     company,
		ScheduledAt: at.UTC(),
		Note:        note,
		CreatedAt:   time.Now().UTC(),
	}
	_, err = s.db.Exec(
		`INSERT INTO followups (id, lead_id, lead_name, company, scheduled_at, note, completed, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, 0, ?)`,
		f.ID, f.LeadID, f.LeadName, f.Company, f.ScheduledAt, f.Note, f.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert followup: %w", err)
	}
	return &f, nil
}

func (s *FollowupStore) GetByID(id string) (*model.Followup, error) {
	row := s.db.QueryRow(`SELECT `+followupCols+` FROM followups WHERE id = ?`, id)
	f, err := scanFollowup(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get followup: %w", err)
	}
	return f, nil
}

// ListForLead returns the lead's non-completed follow-ups, soonest first.
func (s *FollowupStore) ListForLead(leadID string) ([]model.Followup, error) {
	return s.list(`WHERE lead_id = ? AND completed = 0`, leadID)
}

// ListPending returns every non-completed follow-up, soonest first.
func (s *FollowupStore) ListPending() ([]model.Followup, error) {
	return s.list(`WHERE completed = 0`)
}

func (s *FollowupStore) list(where string, args ...any) ([]model.Followup, error) {
	rows, err := s.db.Query(
		`SELECT `+followupCols+` FROM followups `+where+` ORDER BY scheduled_at ASC, rowid ASC`, args...,
	)
	if err != nil {
		return nil, fmt.Errorf("list followups: %w", err)
	}
	defer rows.Close()

	var followups []model.Followup
	for rows.Next() {
		f, err := scanFollowup(rows)
		if err != nil {
			// Lenient-read policy: skip corrupt rows, keep the rest.
			continue
		}
		followups = append(followups, *f)
	}
	return followups, rows.Err()
}

// ListUpcoming returns up to ten non-completed follow-ups, soonest first.
// Every pending follow-up qualifies for the dashboard: it is either in the
// future, scheduled for today, or overdue.
func (s *FollowupStore) ListUpcoming() ([]model.Followup, error) {
	pending, err := s.ListPending()
	if err != nil {
		return nil, err
	}
	if len(pending) > upcomingLimit {
		pending = pending[:upcomingLimit]
	}
	return pending, nil
}

// Complete marks a follow-up done without removing it. Repeat calls are
// harmless. Reports whether a matching row existed.
func (s *FollowupStore) Complete(id string) (bool, error) {
	result, err := s.db.Exec(`UPDATE followups SET completed = 1 WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("complete followup: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return n > 0, nil
}

// Delete hard-removes a follow-up. Deleting an unknown id is not an error.
func (s *FollowupStore) Delete(id string) error {
	_, err := s.db.Exec(`DELETE FROM followups WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete followup: %w", err)
	}
	return nil
}
