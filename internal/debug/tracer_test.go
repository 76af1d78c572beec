package debug

import (
	"bufio"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func readEvents(t *testing.T, dir, prefix string) []map[string]any {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join(dir, prefix+"_*.jsonl"))
	if err != nil || len(matches) != 1 {
		t.Fatalf("expected one %s file, got %v (%v)", prefix, matches, err)
	}
	f, err := os.Open(matches[0])
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	var events []map[string]any
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		var ev map[string]any
		if err := json.Unmarshal(sc.Bytes(), &ev); err != nil {
			t.Fatalf("bad line %q: %v", sc.Text(), err)
		}
		events = append(events, ev)
	}
	return events
}

func TestInitAndClose(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("PPLXCHAT_DEBUG_DIR", dir)

	if err := Init(); err != nil {
		t.Fatalf("Init() error: %v", err)
	}
	if !IsEnabled() {
		t.Error("expected IsEnabled() after Init")
	}
	// second Init is a no-op
	if err := Init(); err != nil {
		t.Fatalf("second Init() error: %v", err)
	}
	Close()
	if IsEnabled() {
		t.Error("expected IsEnabled() to be false after Close")
	}

	events := readEvents(t, dir, "session")
	if len(events) != 2 || events[0]["event"] != EventSessionStart || events[1]["event"] != EventSessionEnd {
		t.Errorf("events = %v", events)
	}
}

func TestNilSafety(t *testing.T) {
	Close()

	// none of these may panic without a tracer
	id := Ask("sonar", "chat", "hello")
	if !strings.HasPrefix(id, "req_") {
		t.Errorf("request id = %q", id)
	}
	Completion(id, time.Second, "text", "")
	Action(id, "explicit", "a.go")
	Materialized(id, "/w/a.go", "created")
	Error("test", errors.New("boom"), nil)
}

func TestAskTrace(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("PPLXCHAT_DEBUG_DIR", dir)
	t.Setenv("PPLXCHAT_DEBUG_LLM", "1")

	if err := Init(); err != nil {
		t.Fatal(err)
	}
	id := Ask("sonar-pro", "agentic", strings.Repeat("x", 150))
	Completion(id, 1500*time.Millisecond, "answer", "")
	Action(id, "agentic", "run.sh")
	Materialized(id, "/w/run.sh", "created")
	Error("materialize", errors.New("disk full"), map[string]any{"path": "/w/run.sh"})
	Close()

	events := readEvents(t, dir, "session")
	var names []string
	for _, ev := range events {
		names = append(names, ev["event"].(string))
	}
	want := []string{EventSessionStart, EventAsk, EventCompletion, EventAction, EventMaterialized, EventError, EventSessionEnd}
	if strings.Join(names, ",") != strings.Join(want, ",") {
		t.Fatalf("events = %v, want %v", names, want)
	}

	ask := events[1]["data"].(map[string]any)
	if ask["request_id"] != id || len(ask["prompt"].(string)) != 103 {
		t.Errorf("ask data = %v", ask)
	}
	completion := events[2]["data"].(map[string]any)
	if completion["duration_ms"] != float64(1500) {
		t.Errorf("completion data = %v", completion)
	}
	if _, ok := completion["failure"]; ok {
		t.Error("successful completion should have no failure")
	}

	payloads := readEvents(t, dir, "llm")
	if len(payloads) != 2 || payloads[0]["type"] != "prompt" || payloads[1]["text"] != "answer" {
		t.Errorf("payloads = %v", payloads)
	}
}

func TestRequestIDsAreUnique(t *testing.T) {
	seen := make(map[string]bool)
	for range 100 {
		id := NewRequestID()
		if seen[id] {
			t.Fatalf("duplicate id %s", id)
		}
		seen[id] = true
	}
}
