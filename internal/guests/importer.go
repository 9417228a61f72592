package guests

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/gatherly/backend/internal/models"
)

// ImportRow is one parsed guest from a CSV upload.
type ImportRow struct {
	Line  int
	Guest models.Guest
}

// ImportRowError reports a rejected CSV line.
type ImportRowError struct {
	Line  int    `json:"line"`
	Error string `json:"error"`
}

// expected CSV header columns; order in the file may vary.
var importColumns = []string{"first_name", "last_name", "email", "phone", "category", "priority"}

// ParseImport reads a guest CSV in a single pass. The first record must be a
// header row naming at least first_name. Invalid rows are collected per line
// and never abort the rest of the file.
func ParseImport(r io.Reader) ([]ImportRow, []ImportRowError, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, nil, fmt.Errorf("read header: %w", err)
	}
	idx := make(map[string]int, len(header))
	for i, col := range header {
		idx[strings.ToLower(strings.TrimSpace(col))] = i
	}
	if _, ok := idx["first_name"]; !ok {
		return nil, nil, fmt.Errorf("header must include first_name (got: %s)", strings.Join(header, ","))
	}

	field := func(record []string, name string) string {
		i, ok := idx[name]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	var rows []ImportRow
	var failed []ImportRowError
	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			failed = append(failed, ImportRowError{Line: line, Error: "malformed row"})
			continue
		}

		first := field(record, "first_name")
		if first == "" {
			failed = append(failed, ImportRowError{Line: line, Error: "first_name is required"})
			continue
		}
		email := field(record, "email")
		if email != "" && !strings.Contains(email, "@") {
			failed = append(failed, ImportRowError{Line: line, Error: "invalid email: " + email})
			continue
		}
		priority, err := parsePriority(field(record, "priority"))
		if err != nil {
			failed = append(failed, ImportRowError{Line: line, Error: err.Error()})
			continue
		}

		rows = append(rows, ImportRow{
			Line: line,
			Guest: models.Guest{
				FirstName: first,
				LastName:  field(record, "last_name"),
				Email:     email,
				Phone:     field(record, "phone"),
				Category:  field(record, "category"),
				Priority:  priority,
				Status:    models.GuestStatusPending,
			},
		})
	}
	return rows, failed, nil
}

func parsePriority(s string) (models.Priority, error) {
	switch strings.ToLower(s) {
	case "", "medium":
		return models.PriorityMedium, nil
	case "low":
		return models.PriorityLow, nil
	case "high":
		return models.PriorityHigh, nil
	default:
		return "", fmt.Errorf("invalid priority: %s", s)
	}
}

// WriteExport writes guests as CSV with the same columns the importer accepts,
// plus RSVP state, so an export can be re-imported.
func WriteExport(w io.Writer, list []models.Guest) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(append(importColumns, "rsvp_status", "invited_at")); err != nil {
		return err
	}
	for _, g := range list {
		invitedAt := ""
		if g.InvitedAt != nil {
			invitedAt = g.InvitedAt.UTC().Format("2006-01-02T15:04:05Z")
		}
		record := []string{g.FirstName, g.LastName, g.Email, g.Phone, g.Category, string(g.Priority), string(g.RSVPStatus), invitedAt}
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}
