package logging

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewWritesJSONToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "tb.log")
	log, closer, err := New("debug", path)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	log.Debug().Str("page", "tables").Msg("page created")
	if err := closer.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	var entry map[string]any
	if err := json.Unmarshal([]byte(strings.TrimSpace(string(data))), &entry); err != nil {
		t.Fatalf("log line is not JSON: %v (%q)", err, data)
	}
	if entry["message"] != "page created" || entry["page"] != "tables" || entry["level"] != "debug" {
		t.Errorf("unexpected entry: %v", entry)
	}
}

func TestNewUnknownLevelIsInfo(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tb.log")
	log, closer, err := New("chatty", path)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer closer.Close()
	log.Debug().Msg("hidden")
	log.Info().Msg("shown")

	data, _ := os.ReadFile(path)
	if strings.Contains(string(data), "hidden") {
		t.Error("debug line written at info level")
	}
	if !strings.Contains(string(data), "shown") {
		t.Error("info line missing")
	}
}
