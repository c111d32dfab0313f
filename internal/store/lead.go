package store

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/paragonmech/leadbook/internal/model"
)

type LeadStore struct {
	db *sql.DB
}

func NewLeadStore(db *sql.DB) *LeadStore {
	return &LeadStore{db: db}
}

const leadCols = `id, name, company, email, phone, status, source, value, created_at, updated_at`

func scanLead(scanner interface{ Scan(...any) error }) (*model.Lead, error) {
	var l model.Lead
	err := scanner.Scan(
		&l.ID, &l.Name, &l.Company, &l.Email, &l.Phone,
		&l.Status, &l.Source, &l.Value, &l.CreatedAt, &l.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	l.Notes = []model.Note{}
	return &l, nil
}

func (s *LeadStore) Create(name, company, email, phone, status, source string, value float64) (*model.Lead, error) {
	id := uuid.NewString()
	now := time.Now().UTC()
	_, err := s.db.Exec(
		`INSERT INTO leads (id, name, company, email, phone, status, source, value, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, name, company, email, phone, status, source, value, now, now,
	)
	if err != nil {
		return nil, fmt.Errorf("insert lead: %w", err)
	}
	return s.GetByID(id)
}

func (s *LeadStore) GetByID(id string) (*model.Lead, error) {
	row := s.db.QueryRow(`SELECT `+leadCols+` FROM leads WHERE id = ?`, id)
	l, err := scanLead(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get lead: %w", err)
	}
	notes, err := s.notesForLead(id)
	if err != nil {
		return nil, err
	}
	l.Notes = notes
	return l, nil
}

// List returns every lead, most recently added first, with notes attached
// newest first.
func (s *LeadStore) List() ([]model.Lead, error) {
	return s.listWhere("", nil)
}

// Search filters by exact status when status is neither empty nor "all",
// then by a text query matched case-insensitively against name, company,
// and email, or literally against phone. Both filters combine.
func (s *LeadStore) Search(query, status string) ([]model.Lead, error) {
	var conds []string
	var args []any

	if status != "" && status != "all" {
		conds = append(conds, `status = ?`)
		args = append(args, status)
	}
	if query != "" {
		lowered := strings.ToLower(query)
		conds = append(conds,
			`(instr(lower(name), ?) > 0 OR instr(lower(company), ?) > 0 OR instr(lower(email), ?) > 0
			  OR (phone != '' AND instr(phone, ?) > 0))`)
		args = append(args, lowered, lowered, lowered, query)
	}

	where := ""
	if len(conds) > 0 {
		where = ` WHERE ` + strings.Join(conds, " AND ")
	}
	return s.listWhere(where, args)
}

func (s *LeadStore) listWhere(where string, args []any) ([]model.Lead, error) {
	rows, err := s.db.Query(
		`SELECT `+leadCols+` FROM leads`+where+` ORDER BY created_at DESC, rowid DESC`, args...,
	)
	if err != nil {
		return nil, fmt.Errorf("list leads: %w", err)
	}
	defer rows.Close()

	var leads []model.Lead
	for rows.Next() {
		l, err := scanLead(rows)
		if err != nil {
			// Lenient-read policy: a corrupt row never takes down the list.
			continue
		}
		leads = append(leads, *l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list leads: %w", err)
	}
	if err := s.attachNotes(leads); err != nil {
		return nil, err
	}
	return leads, nil
}

func (s *LeadStore) notesForLead(leadID string) ([]model.Note, error) {
	rows, err := s.db.Query(
		`SELECT id, body, created_at FROM lead_notes WHERE lead_id = ? ORDER BY created_at DESC, rowid DESC`,
		leadID,
	)
	if err != nil {
		return nil, fmt.Errorf("list notes: %w", err)
	}
	defer rows.Close()

	notes := []model.Note{}
	for rows.Next() {
		var n model.Note
		if err := rows.Scan(&n.ID, &n.Body, &n.CreatedAt); err != nil {
			continue
		}
		notes = append(notes, n)
	}
	return notes, rows.Err()
}

func (s *LeadStore) attachNotes(leads []model.Lead) error {
	if len(leads) == 0 {
		return nil
	}
	rows, err := s.db.Query(
		`SELECT lead_id, id, body, created_at FROM lead_notes ORDER BY created_at DESC, rowid DESC`,
	)
	if err != nil {
		return fmt.Errorf("list notes: %w", err)
	}
	defer rows.Close()

	byLead := make(map[string][]model.Note)
	for rows.Next() {
		var leadID string
		var n model.Note
		if err := rows.Scan(&leadID, &n.ID, &n.Body, &n.CreatedAt); err != nil {
			continue
		}
		byLead[leadID] = append(byLead[leadID], n)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("list notes: %w", err)
	}
	for i := range leads {
		if notes, ok := byLead[leads[i].ID]; ok {
			leads[i].Notes = notes
		}
	}
	return nil
}

// Update merges the non-nil fields of upd into the stored lead and bumps
// updated_at. Returns (nil, nil) when the id is unknown.
func (s *LeadStore) Update(id string, upd model.LeadUpdate) (*model.Lead, error) {
	existing, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, nil
	}

	if upd.Name != nil {
		existing.Name = *upd.Name
	}
	if upd.Company != nil {
		existing.Company = *upd.Company
	}
	if upd.Email != nil {
		existing.Email = *upd.Email
	}
	if upd.Phone != nil {
		existing.Phone = *upd.Phone
	}
	if upd.Status != nil {
		existing.Status = *upd.Status
	}
	if upd.Source != nil {
		existing.Source = *upd.Source
	}
	if upd.Value != nil {
		existing.Value = *upd.Value
	}

	_, err = s.db.Exec(
		`UPDATE leads SET name = ?, company = ?, email = ?, phone = ?, status = ?, source = ?, value = ?, updated_at = ?
		 WHERE id = ?`,
		existing.Name, existing.Company, existing.Email, existing.Phone,
		existing.Status, existing.Source, existing.Value, time.Now().UTC(), id,
	)
	if err != nil {
		return nil, fmt.Errorf("update lead: %w", err)
	}
	return s.GetByID(id)
}

// Delete removes a lead and, via the schema cascade, its notes. Deleting an
// unknown id is not an error.
func (s *LeadStore) Delete(id string) error {
	_, err := s.db.Exec(`DELETE FROM leads WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete lead: %w", err)
	}
	return nil
}

// AddNote prepends a note to the lead and bumps updated_at. Returns
// (nil, nil) when the lead is unknown.
func (s *LeadStore) AddNote(leadID, body string) (*model.Note, error) {
	lead, err := s.GetByID(leadID)
	if err != nil {
		return nil, err
	}
	if lead == nil {
		return nil, nil
	}

	n := model.Note{ID: uuid.NewString(), Body: body, CreatedAt: time.Now().UTC()}
	_, err = s.db.Exec(
		`INSERT INTO lead_notes (id, lead_id, body, created_at) VALUES (?, ?, ?, ?)`,
		n.ID, leadID, n.Body, n.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert note: %w", err)
	}
	if _, err := s.db.Exec(`UPDATE leads SET updated_at = ? WHERE id = ?`, n.CreatedAt, leadID); err != nil {
		return nil, fmt.Errorf("touch lead: %w", err)
	}
	return &n, nil
}

// DeleteNote removes a note by id and reports whether one was removed.
// A missing lead or note is benign.
func (s *LeadStore) DeleteNote(leadID, noteID string) (bool, error) {
	result, err := s.db.Exec(`DELETE FROM lead_notes WHERE id = ? AND lead_id = ?`, noteID, leadID)
	if err != nil {
		return false, fmt.Errorf("delete note: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return false, nil
	}
	if _, err := s.db.Exec(`UPDATE leads SET updated_at = ? WHERE id = ?`, time.Now().UTC(), leadID); err != nil {
		return false, fmt.Errorf("touch lead: %w", err)
	}
	return true, nil
}

// Stats counts the pipeline. Total covers every lead; qualified leads are
// included in total but have no counter of their own.
func (s *LeadStore) Stats() (*model.LeadStats, error) {
	rows, err := s.db.Query(`SELECT status, COUNT(*) FROM leads GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("lead stats: %w", err)
	}
	defer rows.Close()

	var stats model.LeadStats
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("scan stats: %w", err)
		}
		stats.Total += count
		switch status {
		case model.StatusNew:
			stats.New = count
		case model.StatusContacted:
			stats.Contacted = count
		case model.StatusFollowup:
			stats.Followup = count
		case model.StatusProposal:
			stats.Proposal = count
		case model.StatusWon:
			stats.Won = count
		case model.StatusLost:
			stats.Lost = count
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("lead stats: %w", err)
	}
	return &stats, nil
}
