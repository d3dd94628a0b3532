package infra

import (
	"bytes"
	"encoding/json"
	"testing"
)

func TestNewLoggerProductionEmitsJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger("production", &buf)
	logger.Debug().Msg("hidden")
	logger.Info().Str("run_id", "r1").Msg("run started")

	var entry map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry); err != nil {
		t.Fatalf("expected a single JSON line, got %q: %v", buf.String(), err)
	}
	if entry["message"] != "run started" || entry["run_id"] != "r1" || entry["service"] != "cut-generation" {
		t.Fatalf("unexpected entry %#v", entry)
	}
}

func TestNopLogger(t *testing.T) {
	l := LoggerOrNop(nil)
	l.Error().Msg("dropped")
	if NopLogger() == nil {
		t.Fatal("NopLogger returned nil")
	}
}
