package replay

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeRecordFile(t *testing.T, dir, name string) string {
	t.Helper()
	data, err := json.Marshal(testRecord())
	if err != nil {
		t.Fatalf("marshal record: %v", err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write record: %v", err)
	}
	return path
}

func TestLister_ListDir(t *testing.T) {
	dir := t.TempDir()
	writeRecordFile(t, dir, "replay_20240101_120000.json")
	writeRecordFile(t, dir, "replay_20240102_190000.json")
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("skip me"), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	var buf bytes.Buffer
	if err := NewLister(&buf).ListDir(dir); err != nil {
		t.Fatalf("ListDir failed: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "(2)") {
		t.Errorf("expected 2 records in listing:\n%s", out)
	}
	// Labels drop the replay_ prefix and extension.
	if !strings.Contains(out, "20240101_120000") || strings.Contains(out, ".json") {
		t.Errorf("labels not derived from filenames:\n%s", out)
	}
	if !strings.Contains(out, "good") {
		t.Errorf("winner missing from listing:\n%s", out)
	}
}

func TestLister_BrokenFileReportedInline(t *testing.T) {
	dir := t.TempDir()
	writeRecordFile(t, dir, "replay_ok.json")
	if err := os.WriteFile(filepath.Join(dir, "broken.json"), []byte("{not json"), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	var buf bytes.Buffer
	if err := NewLister(&buf).ListDir(dir); err != nil {
		t.Fatalf("ListDir failed: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "(1)") {
		t.Errorf("broken file counted as a record:\n%s", out)
	}
	if !strings.Contains(out, "broken.json") {
		t.Errorf("broken file not reported:\n%s", out)
	}
}

func TestLister_EmptyDir(t *testing.T) {
	dir := t.TempDir()
	var buf bytes.Buffer
	if err := NewLister(&buf).ListDir(dir); err == nil {
		t.Error("expected an error for a directory with no replays")
	}
}

func TestRecordLabel(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"/tmp/replay_20240101_120000.json", "20240101_120000"},
		{"game.json", "game"},
		{"/var/replays/replay_final.json", "final"},
	}
	for _, tt := range tests {
		if got := recordLabel(tt.path); got != tt.want {
			t.Errorf("recordLabel(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}
