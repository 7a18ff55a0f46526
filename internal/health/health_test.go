package health

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

type staticKeys []string

func (k staticKeys) Keys() []string { return k }

func TestCollectCountsSessionsByChannel(t *testing.T) {
	now := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)
	s := Collect(Options{
		Sessions: staticKeys{"cli", "web:a", "web:b"},
		Channels: []string{"cli", "web"},
		Now:      func() time.Time { return now },
	})

	if s.Status != "healthy" || s.Goroutines == 0 {
		t.Fatalf("unexpected snapshot: %+v", s)
	}
	if s.Sessions.Total != 3 || s.Sessions.ByChannel["web"] != 2 || s.Sessions.ByChannel["cli"] != 1 {
		t.Fatalf("sessions = %+v", s.Sessions)
	}
	if s.Timestamp != "2024-06-01T09:00:00Z" {
		t.Fatalf("timestamp = %q", s.Timestamp)
	}
	if s.Exports != nil {
		t.Fatalf("exports should be omitted without a directory")
	}
}

func TestCollectInspectsExportDir(t *testing.T) {
	dir := t.TempDir()
	for name, body := range map[string]string{
		"itinerary-cli.ics": "BEGIN:VCALENDAR\r\nEND:VCALENDAR\r\n",
		"notes.txt":         "ignored",
	} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	s := Collect(Options{ExportDir: dir})
	if s.Exports == nil || !s.Exports.Exists {
		t.Fatalf("exports = %+v", s.Exports)
	}
	if len(s.Exports.Files) != 1 || s.Exports.Files[0] != "itinerary-cli.ics" {
		t.Fatalf("files = %v", s.Exports.Files)
	}
	if s.Exports.TotalBytes != int64(len("BEGIN:VCALENDAR\r\nEND:VCALENDAR\r\n")) {
		t.Fatalf("total bytes = %d", s.Exports.TotalBytes)
	}

	missing := Collect(Options{ExportDir: filepath.Join(dir, "nope")})
	if missing.Exports.Exists || missing.Exports.ParseError != "" {
		t.Fatalf("missing dir = %+v", missing.Exports)
	}
}
