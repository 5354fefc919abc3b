package out

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestRawJSONPreservesKeyOrder(t *testing.T) {
	raw := json.RawMessage(`{"zebra":1,"alpha":{"b":2,"a":3}}`)
	var buf bytes.Buffer
	if err := RawJSON(&buf, raw); err != nil {
		t.Fatalf("RawJSON: %v", err)
	}
	got := buf.String()
	if strings.Index(got, "zebra") > strings.Index(got, "alpha") {
		t.Fatalf("key order not preserved:\n%s", got)
	}
	if !strings.Contains(got, "  \"zebra\"") {
		t.Fatalf("expected two-space indent:\n%s", got)
	}
}

func TestJSONIndentsStructs(t *testing.T) {
	var buf bytes.Buffer
	if err := JSON(&buf, map[string]int{"a": 1}); err != nil {
		t.Fatalf("JSON: %v", err)
	}
	if !strings.Contains(buf.String(), "  \"a\": 1") {
		t.Fatalf("unexpected output: %q", buf.String())
	}
}

func TestRawJSONInvalidPayloadPassesThrough(t *testing.T) {
	var buf bytes.Buffer
	if err := RawJSON(&buf, json.RawMessage("not-json")); err != nil {
		t.Fatalf("RawJSON: %v", err)
	}
	if strings.TrimSpace(buf.String()) != "not-json" {
		t.Fatalf("unexpected output: %q", buf.String())
	}
}
