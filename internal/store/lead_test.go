package store

import (
	"testing"

	"github.com/paragonmech/leadbook/internal/database"
	"github.com/paragonmech/leadbook/internal/model"
)

func setupLeadTestDB(t *testing.T) *LeadStore {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewLeadStore(db)
}

func strPtr(s string) *string   { return &s }
func f64Ptr(f float64) *float64 { return &f }

func TestLeadCRUD(t *testing.T) {
	ls := setupLeadTestDB(t)

	// Create
	lead, err := ls.Create("Ada Lovelace", "Analytical Engines", "ada@engines.example", "555-0100", model.StatusNew, model.SourceReferral, 12500)
	if err != nil {
		t.Fatalf("create lead: %v", err)
	}
	if lead.ID == "" {
		t.Fatal("expected generated id")
	}
	if lead.Name != "Ada Lovelace" {
		t.Errorf("name = %q, want %q", lead.Name, "Ada Lovelace")
	}
	if lead.Status != model.StatusNew {
		t.Errorf("status = %q, want %q", lead.Status, model.StatusNew)
	}
	if lead.Value != 12500 {
		t.Errorf("value = %v, want 12500", lead.Value)
	}
	if lead.Notes == nil || len(lead.Notes) != 0 {
		t.Errorf("notes = %v, want empty slice", lead.Notes)
	}

	// Get by ID
	got, err := ls.GetByID(lead.ID)
	if err != nil {
		t.Fatalf("get lead: %v", err)
	}
	if got == nil {
		t.Fatal("expected lead, got nil")
	}
	if got.Company != "Analytical Engines" {
		t.Errorf("company = %q, want %q", got.Company, "Analytical Engines")
	}

	// Delete
	if err := ls.Delete(lead.ID); err != nil {
		t.Fatalf("delete lead: %v", err)
	}
	got, err = ls.GetByID(lead.ID)
	if err != nil {
		t.Fatalf("get deleted lead: %v", err)
	}
	if got != nil {
		t.Error("expected nil after delete")
	}

	// Deleting again is a no-op
	if err := ls.Delete(lead.ID); err != nil {
		t.Fatalf("repeat delete: %v", err)
	}
}

func TestLeadGetUnknown(t *testing.T) {
	ls := setupLeadTestDB(t)

	got, err := ls.GetByID("no-such-id")
	if err != nil {
		t.Fatalf("get lead: %v", err)
	}
	if got != nil {
		t.Errorf("got %v, want nil", got)
	}
}

func TestLeadPartialUpdate(t *testing.T) {
	ls := setupLeadTestDB(t)

	lead, err := ls.Create("Grace Hopper", "Compilers Inc", "grace@compilers.example", "", model.StatusNew, model.SourceWebsite, 0)
	if err != nil {
		t.Fatalf("create lead: %v", err)
	}

	updated, err := ls.Update(lead.ID, model.LeadUpdate{
		Status: strPtr(model.StatusContacted),
		Value:  f64Ptr(4000),
	})
	if err != nil {
		t.Fatalf("update lead: %v", err)
	}
	if updated.Status != model.StatusContacted {
		t.Errorf("status = %q, want %q", updated.Status, model.StatusContacted)
	}
	if updated.Value != 4000 {
		t.Errorf("value = %v, want 4000", updated.Value)
	}
	// Untouched fields survive
	if updated.Name != "Grace Hopper" {
		t.Errorf("name = %q, want unchanged", updated.Name)
	}
	if updated.Email != "grace@compilers.example" {
		t.Errorf("email = %q, want unchanged", updated.Email)
	}
	if !updated.UpdatedAt.After(lead.UpdatedAt) && !updated.UpdatedAt.Equal(lead.UpdatedAt) {
		t.Errorf("updated_at went backwards: %v -> %v", lead.UpdatedAt, updated.UpdatedAt)
	}
}

func TestLeadUpdateUnknown(t *testing.T) {
	ls := setupLeadTestDB(t)

	got, err := ls.Update("no-such-id", model.LeadUpdate{Name: strPtr("Nobody")})
	if err != nil {
		t.Fatalf("update lead: %v", err)
	}
	if got != nil {
		t.Errorf("got %v, want nil", got)
	}
}

func TestLeadListNewestFirst(t *testing.T) {
	ls := setupLeadTestDB(t)

	first, _ := ls.Create("First", "A Co", "first@a.example", "", model.StatusNew, model.SourceOther, 0)
	second, _ := ls.Create("Second", "B Co", "second@b.example", "", model.StatusNew, model.SourceOther, 0)
	third, _ := ls.Create("Third", "C Co", "third@c.example", "", model.StatusNew, model.SourceOther, 0)

	leads, err := ls.List()
	if err != nil {
		t.Fatalf("list leads: %v", err)
	}
	if len(leads) != 3 {
		t.Fatalf("len = %d, want 3", len(leads))
	}
	if leads[0].ID != third.ID || leads[1].ID != second.ID || leads[2].ID != first.ID {
		t.Errorf("order = %s, %s, %s; want newest first", leads[0].Name, leads[1].Name, leads[2].Name)
	}
}

func TestLeadNotes(t *testing.T) {
	ls := setupLeadTestDB(t)

	lead, _ := ls.Create("Alan Turing", "Enigma Ltd", "alan@enigma.example", "", model.StatusContacted, model.SourceReferral, 0)

	older, err := ls.AddNote(lead.ID, "Intro call went well")
	if err != nil {
		t.Fatalf("add note: %v", err)
	}
	newer, err := ls.AddNote(lead.ID, "Sent pricing deck")
	if err != nil {
		t.Fatalf("add note: %v", err)
	}

	got, _ := ls.GetByID(lead.ID)
	if len(got.Notes) != 2 {
		t.Fatalf("notes len = %d, want 2", len(got.Notes))
	}
	// Newest note first
	if got.Notes[0].ID != newer.ID || got.Notes[1].ID != older.ID {
		t.Errorf("note order = %q, %q; want newest first", got.Notes[0].Body, got.Notes[1].Body)
	}

	// Adding a note bumps the lead's updated_at
	if got.UpdatedAt.Before(lead.UpdatedAt) {
		t.Errorf("updated_at not bumped: %v -> %v", lead.UpdatedAt, got.UpdatedAt)
	}

	// Delete one note
	removed, err := ls.DeleteNote(lead.ID, older.ID)
	if err != nil {
		t.Fatalf("delete note: %v", err)
	}
	if !removed {
		t.Error("expected removed = true")
	}
	removed, err = ls.DeleteNote(lead.ID, older.ID)
	if err != nil {
		t.Fatalf("repeat delete note: %v", err)
	}
	if removed {
		t.Error("expected removed = false on repeat delete")
	}

	got, _ = ls.GetByID(lead.ID)
	if len(got.Notes) != 1 {
		t.Fatalf("notes len = %d, want 1", len(got.Notes))
	}
}

func TestLeadNoteForUnknownLead(t *testing.T) {
	ls := setupLeadTestDB(t)

	note, err := ls.AddNote("no-such-id", "orphan note")
	if err != nil {
		t.Fatalf("add note: %v", err)
	}
	if note != nil {
		t.Errorf("got %v, want nil", note)
	}
}

func TestLeadNotesDeletedWithLead(t *testing.T) {
	ls := setupLeadTestDB(t)

	lead, _ := ls.Create("Edsger Dijkstra", "Shortest Path BV", "edsger@paths.example", "", model.StatusNew, model.SourceOther, 0)
	if _, err := ls.AddNote(lead.ID, "prefers email"); err != nil {
		t.Fatalf("add note: %v", err)
	}

	if err := ls.Delete(lead.ID); err != nil {
		t.Fatalf("delete lead: %v", err)
	}

	var count int
	if err := ls.db.QueryRow(`SELECT COUNT(*) FROM lead_notes WHERE lead_id = ?`, lead.ID).Scan(&count); err != nil {
		t.Fatalf("count notes: %v", err)
	}
	if count != 0 {
		t.Errorf("orphaned notes = %d, want 0", count)
	}
}

func searchFixture(t *testing.T, ls *LeadStore) {
	t.Helper()
	fixtures := []struct {
		name, company, email, phone, status string
	}{
		{"Ratan Naval", "Tata Consultancy", "ratan@tata.example", "+91 98765", model.StatusWon},
		{"Mary Shelley", "Frankenstein Press", "mary@press.example", "", model.StatusWon},
		{"Nikola Tesla", "Wardenclyffe", "nikola@tower.example", "212-555-0188", model.StatusContacted},
		{"Marie Curie", "Radium Institute", "marie@radium.example", "", model.StatusNew},
		{"TATA Steel Buyer", "Heavy Industries", "buyer@steel.example", "", model.StatusLost},
	}
	for _, f := range fixtures {
		if _, err := ls.Create(f.name, f.company, f.email, f.phone, f.status, model.SourceOther, 0); err != nil {
			t.Fatalf("create fixture %s: %v", f.name, err)
		}
	}
}

func TestLeadSearchByStatus(t *testing.T) {
	ls := setupLeadTestDB(t)
	searchFixture(t, ls)

	leads, err := ls.Search("", model.StatusWon)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(leads) != 2 {
		t.Fatalf("len = %d, want 2", len(leads))
	}
	for _, l := range leads {
		if l.Status != model.StatusWon {
			t.Errorf("status = %q, want %q", l.Status, model.StatusWon)
		}
	}

	// "all" means no status filter
	leads, err = ls.Search("", "all")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(leads) != 5 {
		t.Errorf("len = %d, want 5", len(leads))
	}
}

func TestLeadSearchByText(t *testing.T) {
	ls := setupLeadTestDB(t)
	searchFixture(t, ls)

	// Case-insensitive across name, company, and email
	leads, err := ls.Search("tata", "")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(leads) != 2 {
		t.Fatalf("len = %d, want 2 (company + name match)", len(leads))
	}

	// Phone matches are literal
	leads, err = ls.Search("212-555", "")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(leads) != 1 || leads[0].Name != "Nikola Tesla" {
		t.Fatalf("phone search = %v, want Nikola Tesla", leads)
	}

	// No hits
	leads, err = ls.Search("zzz-no-match", "")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(leads) != 0 {
		t.Errorf("len = %d, want 0", len(leads))
	}
}

func TestLeadSearchCombined(t *testing.T) {
	ls := setupLeadTestDB(t)
	searchFixture(t, ls)

	leads, err := ls.Search("tata", model.StatusWon)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(leads) != 1 || leads[0].Company != "Tata Consultancy" {
		t.Fatalf("combined search = %v, want only the won Tata lead", leads)
	}
}

func TestLeadStats(t *testing.T) {
	ls := setupLeadTestDB(t)

	statuses := []string{
		model.StatusNew, model.StatusNew,
		model.StatusContacted,
		model.StatusQualified, model.StatusQualified, model.StatusQualified,
		model.StatusProposal,
		model.StatusWon,
		model.StatusLost,
	}
	for i, status := range statuses {
		if _, err := ls.Create("Lead", "Co", "lead@co.example", "", status, model.SourceOther, float64(i)); err != nil {
			t.Fatalf("create lead: %v", err)
		}
	}

	stats, err := ls.Stats()
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.Total != 9 {
		t.Errorf("total = %d, want 9", stats.Total)
	}
	if stats.New != 2 {
		t.Errorf("new = %d, want 2", stats.New)
	}
	if stats.Contacted != 1 {
		t.Errorf("contacted = %d, want 1", stats.Contacted)
	}
	if stats.Proposal != 1 {
		t.Errorf("proposal = %d, want 1", stats.Proposal)
	}
	if stats.Won != 1 {
		t.Errorf("won = %d, want 1", stats.Won)
	}
	if stats.Lost != 1 {
		t.Errorf("lost = %d, want 1", stats.Lost)
	}
	// Qualified leads count toward total only
	counted := stats.New + stats.Contacted + stats.Followup + stats.Proposal + stats.Won + stats.Lost
	if counted != 6 {
		t.Errorf("named counters sum = %d, want 6", counted)
	}
}

func TestLeadListSkipsCorruptRow(t *testing.T) {
	ls := setupLeadTestDB(t)

	good, err := ls.Create("Good Lead", "Fine Co", "good@fine.example", "", model.StatusNew, model.SourceOther, 0)
	if err != nil {
		t.Fatalf("create lead: %v", err)
	}

	// Plant a row whose timestamps cannot scan into time.Time
	_, err = ls.db.Exec(
		`INSERT INTO leads (id, name, company, email, phone, status, source, value, created_at, updated_at)
		 VALUES ('corrupt', 'Broken', 'Broken Co', 'broken@co.example', '', 'new', 'other', 0, 'not-a-time', 'not-a-time')`,
	)
	if err != nil {
		t.Fatalf("insert corrupt row: %v", err)
	}

	leads, err := ls.List()
	if err != nil {
		t.Fatalf("list leads: %v", err)
	}
	if len(leads) != 1 {
		t.Fatalf("len = %d, want the corrupt row skipped", len(leads))
	}
	if leads[0].ID != good.ID {
		t.Errorf("id = %q, want the valid lead", leads[0].ID)
	}
}
