package store

import (
	"fmt"
	"testing"
	"time"

	"github.com/paragonmech/leadbook/internal/database"
	"github.com/paragonmech/leadbook/internal/model"
)

func setupFollowupTestDB(t *testing.T) (*FollowupStore, *LeadStore) {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewFollowupStore(db), NewLeadStore(db)
}

func TestFollowupSchedule(t *testing.T) {
	fs, ls := setupFollowupTestDB(t)

	lead, _ := ls.Create("Ada Lovelace", "Analytical Engines", "ada@engines.example", "", model.StatusFollowup, model.SourceReferral, 0)

	at := time.Now().UTC().Add(48 * time.Hour).Truncate(time.Second)
	f, err := fs.Schedule(lead.ID, at, "Discuss renewal")
	if err != nil {
		t.Fatalf("schedule followup: %v", err)
	}
	if f.LeadID != lead.ID {
		t.Errorf("lead_id = %q, want %q", f.LeadID, lead.ID)
	}
	if f.LeadName != "Ada Lovelace" || f.Company != "Analytical Engines" {
		t.Errorf("snapshot = %q / %q, want lead's name and company", f.LeadName, f.Company)
	}
	if !f.ScheduledAt.Equal(at) {
		t.Errorf("scheduled_at = %v, want %v", f.ScheduledAt, at)
	}
	if f.Completed {
		t.Error("new followup should not be completed")
	}

	got, err := fs.GetByID(f.ID)
	if err != nil {
		t.Fatalf("get followup: %v", err)
	}
	if got == nil {
		t.Fatal("expected followup, got nil")
	}
	if got.Note != "Discuss renewal" {
		t.Errorf("note = %q, want %q", got.Note, "Discuss renewal")
	}
}

func TestFollowupScheduleUnknownLead(t *testing.T) {
	fs, _ := setupFollowupTestDB(t)

	f, err := fs.Schedule("no-such-lead", time.Now().Add(time.Hour), "")
	if err != nil {
		t.Fatalf("schedule followup: %v", err)
	}
	if f != nil {
		t.Errorf("got %v, want nil", f)
	}
}

func TestFollowupSnapshotSurvivesRename(t *testing.T) {
	fs, ls := setupFollowupTestDB(t)

	lead, _ := ls.Create("Old Name", "Old Co", "old@co.example", "", model.StatusFollowup, model.SourceOther, 0)
	f, _ := fs.Schedule(lead.ID, time.Now().Add(24*time.Hour), "")

	if _, err := ls.Update(lead.ID, model.LeadUpdate{Name: strPtr("New Name"), Company: strPtr("New Co")}); err != nil {
		t.Fatalf("rename lead: %v", err)
	}

	got, _ := fs.GetByID(f.ID)
	if got.LeadName != "Old Name" || got.Company != "Old Co" {
		t.Errorf("snapshot = %q / %q, want the values at scheduling time", got.LeadName, got.Company)
	}
}

func TestFollowupOrderedBySchedule(t *testing.T) {
	fs, ls := setupFollowupTestDB(t)

	lead, _ := ls.Create("Lead", "Co", "lead@co.example", "", model.StatusFollowup, model.SourceOther, 0)
	base := time.Now().UTC()

	// Insert out of order
	third, _ := fs.Schedule(lead.ID, base.Add(72*time.Hour), "third")
	first, _ := fs.Schedule(lead.ID, base.Add(24*time.Hour), "first")
	second, _ := fs.Schedule(lead.ID, base.Add(48*time.Hour), "second")

	list, err := fs.ListForLead(lead.ID)
	if err != nil {
		t.Fatalf("list followups: %v", err)
	}
	if len(list) != 3 {
		t.Fatalf("len = %d, want 3", len(list))
	}
	if list[0].ID != first.ID || list[1].ID != second.ID || list[2].ID != third.ID {
		t.Errorf("order = %q, %q, %q; want soonest first", list[0].Note, list[1].Note, list[2].Note)
	}
}

func TestFollowupCompleteHidesFromLists(t *testing.T) {
	fs, ls := setupFollowupTestDB(t)

	lead, _ := ls.Create("Lead", "Co", "lead@co.example", "", model.StatusFollowup, model.SourceOther, 0)
	f, _ := fs.Schedule(lead.ID, time.Now().Add(time.Hour), "")

	found, err := fs.Complete(f.ID)
	if err != nil {
		t.Fatalf("complete followup: %v", err)
	}
	if !found {
		t.Error("expected found = true")
	}

	// The row survives but is filtered out of pending views
	got, _ := fs.GetByID(f.ID)
	if got == nil || !got.Completed {
		t.Fatalf("got %v, want completed followup", got)
	}
	pending, _ := fs.ListPending()
	if len(pending) != 0 {
		t.Errorf("pending len = %d, want 0", len(pending))
	}
	forLead, _ := fs.ListForLead(lead.ID)
	if len(forLead) != 0 {
		t.Errorf("for-lead len = %d, want 0", len(forLead))
	}
}

func TestFollowupCompleteUnknown(t *testing.T) {
	fs, _ := setupFollowupTestDB(t)

	found, err := fs.Complete("no-such-id")
	if err != nil {
		t.Fatalf("complete followup: %v", err)
	}
	if found {
		t.Error("expected found = false")
	}
}

func TestFollowupDeleteIdempotent(t *testing.T) {
	fs, ls := setupFollowupTestDB(t)

	lead, _ := ls.Create("Lead", "Co", "lead@co.example", "", model.StatusFollowup, model.SourceOther, 0)
	f, _ := fs.Schedule(lead.ID, time.Now().Add(time.Hour), "")

	if err := fs.Delete(f.ID); err != nil {
		t.Fatalf("delete followup: %v", err)
	}
	if err := fs.Delete(f.ID); err != nil {
		t.Fatalf("repeat delete: %v", err)
	}
	got, _ := fs.GetByID(f.ID)
	if got != nil {
		t.Errorf("got %v, want nil after delete", got)
	}
}

func TestFollowupSurvivesLeadDelete(t *testing.T) {
	fs, ls := setupFollowupTestDB(t)

	lead, _ := ls.Create("Doomed", "Gone Co", "doomed@gone.example", "", model.StatusFollowup, model.SourceOther, 0)
	f, _ := fs.Schedule(lead.ID, time.Now().Add(time.Hour), "still here")

	if err := ls.Delete(lead.ID); err != nil {
		t.Fatalf("delete lead: %v", err)
	}

	// The snapshot keeps the reminder meaningful after the lead is gone
	got, err := fs.GetByID(f.ID)
	if err != nil {
		t.Fatalf("get followup: %v", err)
	}
	if got == nil {
		t.Fatal("followup should survive lead deletion")
	}
	if got.LeadName != "Doomed" || got.Company != "Gone Co" {
		t.Errorf("snapshot = %q / %q, want original values", got.LeadName, got.Company)
	}
}

func TestFollowupUpcomingCap(t *testing.T) {
	fs, ls := setupFollowupTestDB(t)

	lead, _ := ls.Create("Busy", "Meetings Co", "busy@meetings.example", "", model.StatusFollowup, model.SourceOther, 0)
	now := time.Now().UTC()

	// One overdue plus eleven future items
	if _, err := fs.Schedule(lead.ID, now.Add(-2*time.Hour), "overdue"); err != nil {
		t.Fatalf("schedule: %v", err)
	}
	for i := 1; i <= 11; i++ {
		if _, err := fs.Schedule(lead.ID, now.Add(time.Duration(i)*time.Hour), fmt.Sprintf("slot %d", i)); err != nil {
			t.Fatalf("schedule: %v", err)
		}
	}

	upcoming, err := fs.ListUpcoming()
	if err != nil {
		t.Fatalf("list upcoming: %v", err)
	}
	if len(upcoming) != 10 {
		t.Fatalf("len = %d, want 10", len(upcoming))
	}
	// Overdue items are shown, soonest first
	if upcoming[0].Note != "overdue" {
		t.Errorf("first = %q, want the overdue item", upcoming[0].Note)
	}
}

func TestFollowupListSkipsCorruptRow(t *testing.T) {
	fs, ls := setupFollowupTestDB(t)

	lead, _ := ls.Create("Lead", "Co", "lead@co.example", "", model.StatusFollowup, model.SourceOther, 0)
	good, err := fs.Schedule(lead.ID, time.Now().Add(time.Hour), "")
	if err != nil {
		t.Fatalf("schedule followup: %v", err)
	}

	// Plant a row whose timestamps cannot scan into time.Time
	_, err = fs.db.Exec(
		`INSERT INTO followups (id, lead_id, lead_name, company, scheduled_at, note, completed, created_at)
		 VALUES ('corrupt', ?, 'Broken', 'Broken Co', 'not-a-time', '', 0, 'not-a-time')`,
		lead.ID,
	)
	if err != nil {
		t.Fatalf("insert corrupt row: %v", err)
	}

	pending, err := fs.ListPending()
	if err != nil {
		t.Fatalf("list pending: %v", err)
	}
	if len(pending) != 1 {
		t.Fatalf("len = %d, want the corrupt row skipped", len(pending))
	}
	if pending[0].ID != good.ID {
		t.Errorf("id = %q, want the valid followup", pending[0].ID)
	}
}
