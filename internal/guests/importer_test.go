package guests

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/gatherly/backend/internal/models"
)

func TestParseImport(t *testing.T) {
	csv := strings.Join([]string{
		"first_name,last_name,email,phone,category,priority",
		"Ada,Lovelace,ada@example.com,,family,high",
		",Smith,no-first@example.com,,,",
		"Bob,,not-an-email,,work,",
		"Carol,Jones,carol@example.com,555-0101,work,urgent",
		"Dan,,,,friends,low",
	}, "\n")

	rows, failed, err := ParseImport(strings.NewReader(csv))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 valid rows, got %d", len(rows))
	}
	if len(failed) != 3 {
		t.Fatalf("expected 3 failed rows, got %d", len(failed))
	}

	ada := rows[0].Guest
	if ada.FirstName != "Ada" || ada.LastName != "Lovelace" || ada.Priority != models.PriorityHigh {
		t.Errorf("unexpected first row: %+v", ada)
	}
	if ada.Status != models.GuestStatusPending {
		t.Errorf("expected pending status, got %s", ada.Status)
	}

	dan := rows[1].Guest
	if dan.FirstName != "Dan" || dan.Email != "" || dan.Priority != models.PriorityLow {
		t.Errorf("unexpected second row: %+v", dan)
	}

	wantLines := map[int]string{3: "first_name", 4: "email", 5: "priority"}
	for _, f := range failed {
		want, ok := wantLines[f.Line]
		if !ok {
			t.Errorf("unexpected failed line %d: %s", f.Line, f.Error)
			continue
		}
		if !strings.Contains(f.Error, want) {
			t.Errorf("line %d: error %q should mention %q", f.Line, f.Error, want)
		}
	}
}

func TestParseImportHeaderOrderIndependent(t *testing.T) {
	csv := "email,first_name\neve@example.com,Eve\n"
	rows, failed, err := ParseImport(strings.NewReader(csv))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(failed) != 0 {
		t.Fatalf("expected no failures, got %v", failed)
	}
	if len(rows) != 1 || rows[0].Guest.FirstName != "Eve" || rows[0].Guest.Email != "eve@example.com" {
		t.Fatalf("unexpected rows: %+v", rows)
	}
}

func TestParseImportMissingFirstNameColumn(t *testing.T) {
	if _, _, err := ParseImport(strings.NewReader("name,email\nEve,eve@example.com\n")); err == nil {
		t.Fatal("expected error for header without first_name")
	}
}

func TestWriteExportRoundTrip(t *testing.T) {
	invited := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	list := []models.Guest{
		{FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com", Category: "family",
			Priority: models.PriorityHigh, RSVPStatus: models.RSVPAccepted, InvitedAt: &invited},
		{FirstName: "Dan", Priority: models.PriorityLow, RSVPStatus: models.RSVPPending},
	}

	var buf bytes.Buffer
	if err := WriteExport(&buf, list); err != nil {
		t.Fatalf("export: %v", err)
	}

	out := buf.String()
	if !strings.HasPrefix(out, "first_name,last_name,email,phone,category,priority,rsvp_status,invited_at") {
		t.Fatalf("unexpected header: %q", out)
	}
	if !strings.Contains(out, "Ada,Lovelace,ada@example.com,,family,high,accepted,2026-08-01T12:00:00Z") {
		t.Errorf("missing Ada row in %q", out)
	}

	// The exported columns must be accepted back by the importer.
	rows, failed, err := ParseImport(strings.NewReader(out))
	if err != nil {
		t.Fatalf("re-import: %v", err)
	}
	if len(failed) != 0 || len(rows) != 2 {
		t.Fatalf("re-import: rows=%d failed=%v", len(rows), failed)
	}
}
