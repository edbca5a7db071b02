package logger

import "testing"

func TestSanitizeKVsRedactsContactValues(t *testing.T) {
	in := []interface{}{
		"report_id", "abc",
		"contact_value", "+90 555 000 0000",
		"db_password", "hunter2",
		"dangling",
	}
	out := sanitizeKVs(in)
	if len(out) != len(in) {
		t.Fatalf("unexpected length: got=%d want=%d", len(out), len(in))
	}
	if out[1] != "abc" {
		t.Fatalf("report_id should pass through, got %v", out[1])
	}
	if out[3] != "[REDACTED]" || out[5] != "[REDACTED]" {
		t.Fatalf("expected redaction, got %v / %v", out[3], out[5])
	}
	if out[6] != "dangling" {
		t.Fatalf("odd trailing key should be kept, got %v", out[6])
	}
}

func TestNopLoggerIsUsable(t *testing.T) {
	l := Nop().With("component", "test")
	l.Info("hello", "k", "v")
	l.Sync()
}
