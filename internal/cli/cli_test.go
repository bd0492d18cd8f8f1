package cli

import (
	"absence-bot/internal/amqp"
	"absence-bot/internal/calendar"
	"absence-bot/internal/entry"
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"
)

const calendarJSON = `{
  "year": 2024,
  "months": [
    {"month": 4, "days": "6,7,13,14,20,21,27+,28"}
  ]
}`

func run(t *testing.T, args ...string) string {
	t.Helper()
	color.NoColor = true

	var out bytes.Buffer
	cmd := New()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	if err := cmd.Execute(); err != nil {
		t.Fatalf("%v: %v\n%s", args, err, out.String())
	}
	return out.String()
}

func seed(t *testing.T, dbPath string) {
	t.Helper()
	s, err := (&Options{DBPath: dbPath}).open()
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer s.Close()

	anna, err := s.users.CreateUser(100, "anna", "Anna", "Petrova")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	if _, err := s.users.CreateUser(200, "", "Oleg", ""); err != nil {
		t.Fatalf("create user: %v", err)
	}

	// апрель 2024: индекс ячейки = день - 1
	form := entry.New(time.Date(2024, 4, 10, 0, 0, 0, 0, time.UTC))
	form.PressCategory(calendar.CategoryVacation)
	form.Selector().Tap(1)
	form.Selector().Tap(2)
	form.ToggleCallable()
	if _, err := s.absences.Submit(context.Background(), anna, form); err != nil {
		t.Fatalf("submit: %v", err)
	}
}

func TestCommands(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "absences.db")
	seed(t, dbPath)

	calPath := filepath.Join(dir, "calendar.json")
	if err := os.WriteFile(calPath, []byte(calendarJSON), 0o644); err != nil {
		t.Fatalf("write calendar: %v", err)
	}

	if out := run(t, "--db", dbPath, "holidays", "load", calPath); !strings.Contains(out, "Loaded 8 non-working days") {
		t.Fatalf("unexpected load output: %q", out)
	}

	if out := run(t, "--db", dbPath, "holidays", "count"); !strings.Contains(out, "8 non-working days stored") {
		t.Fatalf("unexpected count output: %q", out)
	}

	out := run(t, "--db", dbPath, "holidays", "month", "2024-04")
	if !strings.Contains(out, "April 2024 - 8") || !strings.Contains(out, "2024-04-27") || !strings.Contains(out, "transferred") {
		t.Fatalf("unexpected month output:\n%s", out)
	}

	out = run(t, "--db", dbPath, "day", "2024-04-02")
	if !strings.Contains(out, "Anna Petrova") || !strings.Contains(out, "yes") {
		t.Fatalf("unexpected day output:\n%s", out)
	}

	out = run(t, "--db", dbPath, "day", "2024-04-05")
	if !strings.Contains(out, "Nobody is absent.") {
		t.Fatalf("expected empty day, got:\n%s", out)
	}

	out = run(t, "--db", dbPath, "users")
	if !strings.Contains(out, "Users - 2") || !strings.Contains(out, "@anna") || !strings.Contains(out, "Oleg") {
		t.Fatalf("unexpected users output:\n%s", out)
	}

	out = run(t, "--db", dbPath, "stats", "100")
	vacation, _ := calendar.LookupCategory(calendar.CategoryVacation)
	if !strings.Contains(out, "Anna Petrova") || !strings.Contains(out, vacation.Label) {
		t.Fatalf("unexpected stats output:\n%s", out)
	}
}

func TestBadArguments(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "absences.db")
	cases := [][]string{
		{"--db", dbPath, "day", "02.04.2024"},
		{"--db", dbPath, "holidays", "month", "april"},
		{"--db", dbPath, "stats", "anna"},
		{"--db", dbPath, "stats", "999"},
	}
	for _, args := range cases {
		cmd := New()
		cmd.SetOut(&bytes.Buffer{})
		cmd.SetErr(&bytes.Buffer{})
		cmd.SetArgs(args)
		if err := cmd.Execute(); err == nil {
			t.Fatalf("%v: expected error", args)
		}
	}
}

func TestEventRow(t *testing.T) {
	msg := &amqp.AbsenceSubmittedMessage{
		BatchID:    "batch-1",
		UserName:   "Anna Petrova",
		Dates:      []string{"2024-04-01", "2024-04-02", "2024-04-05"},
		Categories: []string{"other", "vacation"},
		Callable:   true,
		Timestamp:  time.Date(2024, 3, 30, 12, 0, 0, 0, time.UTC),
	}
	row := eventRow(msg)
	if len(row) != 6 {
		t.Fatalf("expected 6 cells, got %d", len(row))
	}
	if row[0] != "2024-03-30 12:00:00" || row[1] != "Anna Petrova" || row[5] != "batch-1" {
		t.Fatalf("unexpected row: %v", row)
	}
	if row[2] != "2024-04-01..2024-04-05 (3)" || row[3] != "other,vacation" || row[4] != "callable" {
		t.Fatalf("unexpected row: %v", row)
	}

	msg.Dates = msg.Dates[:1]
	msg.Callable = false
	if row := eventRow(msg); row[2] != "2024-04-01" || row[4] != "" {
		t.Fatalf("unexpected single-date row: %v", row)
	}
}

func TestEventsTailRequiresURL(t *testing.T) {
	t.Setenv("AMQP_URL", "")
	cmd := New()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"events", "tail"})
	err := cmd.Execute()
	if err == nil || !strings.Contains(err.Error(), "AMQP URL") {
		t.Fatalf("expected missing URL error, got %v", err)
	}
}
