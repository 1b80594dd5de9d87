package events

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestEmitWritesNDJSON(t *testing.T) {
	var buf bytes.Buffer
	emitter := NewEmitter(&buf)

	if err := emitter.Emit(Event{Type: "scan-start", Message: "starting", Fields: map[string]interface{}{"targets": 2}}); err != nil {
		t.Fatalf("emit failed: %v", err)
	}
	if err := emitter.Warn("detector-failed", "whatweb timed out", nil); err != nil {
		t.Fatalf("emit failed: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 NDJSON lines, got %d", len(lines))
	}

	var first Event
	if err := json.Unmarshal([]byte(lines[0]), &first); err != nil {
		t.Fatalf("first line is not JSON: %v", err)
	}
	if first.Type != "scan-start" || first.Level != "info" {
		t.Errorf("unexpected first event: %+v", first)
	}
	if first.Timestamp.IsZero() {
		t.Error("timestamp should be defaulted")
	}

	var second Event
	if err := json.Unmarshal([]byte(lines[1]), &second); err != nil {
		t.Fatalf("second line is not JSON: %v", err)
	}
	if second.Level != "warn" {
		t.Errorf("expected warn level, got %q", second.Level)
	}
}
