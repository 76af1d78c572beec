// Package debug writes a JSONL trace of chat activity when PPLXCHAT_DEBUG=1.
package debug

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Event types
const (
	EventSessionStart = "session.start"
	EventSessionEnd   = "session.end"
	EventAsk          = "chat.ask"
	EventCompletion   = "llm.completion"
	EventAction       = "action.resolved"
	EventMaterialized = "action.materialized"
	EventError        = "error"
)

// defaultDebugDir returns the default debug directory using os.UserCacheDir.
func defaultDebugDir() string {
	if dir, err := os.UserCacheDir(); err == nil {
		return filepath.Join(dir, "pplxchat", "debug")
	}
	return filepath.Join(os.TempDir(), "pplxchat-debug")
}

// global tracer instance
var (
	globalTracer *Tracer
	globalMu     sync.RWMutex
)

// Event represents a debug event
type Event struct {
	Timestamp string         `json:"ts"`
	Event     string         `json:"event"`
	Session   string         `json:"session"`
	Data      map[string]any `json:"data,omitempty"`
}

// Payload is a full prompt or completion, written only with PPLXCHAT_DEBUG_LLM=1
type Payload struct {
	Timestamp string `json:"ts"`
	Type      string `json:"type"` // "prompt" or "completion"
	Session   string `json:"session"`
	RequestID string `json:"request_id"`
	Text      string `json:"text"`
}

// Tracer handles debug event logging
type Tracer struct {
	sessionID   string
	sessionFile *os.File
	llmFile     *os.File
	llmEnabled  bool
	debugDir    string
	mu          sync.Mutex
}

// Enabled reports whether PPLXCHAT_DEBUG asks for a trace
func Enabled() bool {
	return os.Getenv("PPLXCHAT_DEBUG") == "1"
}

// Init opens the trace files. Calling it again is a no-op.
func Init() error {
	globalMu.Lock()
	defer globalMu.Unlock()

	if globalTracer != nil {
		return nil
	}

	debugDir := os.Getenv("PPLXCHAT_DEBUG_DIR")
	if debugDir == "" {
		debugDir = defaultDebugDir()
	}
	if err := os.MkdirAll(debugDir, 0755); err != nil {
		return fmt.Errorf("failed to create debug directory: %w", err)
	}

	sessionID := "sess_" + uuid.NewString()[:8]
	timestamp := time.Now().Format("2006-01-02_15-04-05")

	sessionPath := filepath.Join(debugDir, fmt.Sprintf("session_%s.jsonl", timestamp))
	sessionFile, err := os.OpenFile(sessionPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to create session file: %w", err)
	}

	llmEnabled := os.Getenv("PPLXCHAT_DEBUG_LLM") == "1"
	var llmFile *os.File
	if llmEnabled {
		llmPath := filepath.Join(debugDir, fmt.Sprintf("llm_%s.jsonl", timestamp))
		llmFile, err = os.OpenFile(llmPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			_ = sessionFile.Close()
			return fmt.Errorf("failed to create LLM file: %w", err)
		}
	}

	latestPath := filepath.Join(debugDir, "latest.jsonl")
	_ = os.Remove(latestPath)
	_ = os.Symlink(sessionPath, latestPath)

	tracer := &Tracer{
		sessionID:   sessionID,
		sessionFile: sessionFile,
		llmFile:     llmFile,
		llmEnabled:  llmEnabled,
		debugDir:    debugDir,
	}
	tracer.logEvent(EventSessionStart, map[string]any{
		"debug_dir": debugDir,
		"llm_trace": llmEnabled,
	})

	globalTracer = tracer
	return nil
}

// IsEnabled returns whether tracing is active
func IsEnabled() bool {
	globalMu.RLock()
	defer globalMu.RUnlock()
	return globalTracer != nil
}

func current() *Tracer {
	globalMu.RLock()
	defer globalMu.RUnlock()
	return globalTracer
}

// Record logs a structured event
func Record(eventType string, data map[string]any) {
	if t := current(); t != nil {
		t.logEvent(eventType, data)
	}
}

// Ask logs a prompt being sent and returns the id that ties its events together
func Ask(model, mode, prompt string) string {
	requestID := NewRequestID()
	t := current()
	if t == nil {
		return requestID
	}
	t.logEvent(EventAsk, map[string]any{
		"request_id": requestID,
		"model":      model,
		"mode":       mode,
		"prompt":     truncate(prompt, 100),
	})
	t.logPayload("prompt", requestID, prompt)
	return requestID
}

// Completion logs the outcome of a completion call. failure is "" on success.
func Completion(requestID string, duration time.Duration, text, failure string) {
	t := current()
	if t == nil {
		return
	}
	data := map[string]any{
		"request_id":  requestID,
		"duration_ms": duration.Milliseconds(),
		"length":      len(text),
	}
	if failure != "" {
		data["failure"] = failure
	}
	t.logEvent(EventCompletion, data)
	t.logPayload("completion", requestID, text)
}

// Action logs the file intent found in a prompt or completion
func Action(requestID, origin, filename string) {
	Record(EventAction, map[string]any{
		"request_id": requestID,
		"origin":     origin,
		"filename":   filename,
	})
}

// Materialized logs what happened on disk
func Materialized(requestID, path, result string) {
	Record(EventMaterialized, map[string]any{
		"request_id": requestID,
		"path":       path,
		"result":     result,
	})
}

// Error logs an error event
func Error(errType string, err error, ctx map[string]any) {
	data := map[string]any{
		"type":  errType,
		"error": err.Error(),
	}
	for k, v := range ctx {
		data[k] = v
	}
	Record(EventError, data)
}

// Close closes the trace files and logs session end
func Close() {
	globalMu.Lock()
	defer globalMu.Unlock()

	if globalTracer == nil {
		return
	}
	globalTracer.logEvent(EventSessionEnd, nil)

	if globalTracer.sessionFile != nil {
		_ = globalTracer.sessionFile.Close()
	}
	if globalTracer.llmFile != nil {
		_ = globalTracer.llmFile.Close()
	}
	globalTracer = nil
}

func (t *Tracer) logEvent(eventType string, data map[string]any) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.sessionFile == nil {
		return
	}
	event := Event{
		Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
		Event:     eventType,
		Session:   t.sessionID,
		Data:      data,
	}
	line, err := json.Marshal(event)
	if err != nil {
		return
	}
	_, _ = t.sessionFile.Write(append(line, '\n'))
}

func (t *Tracer) logPayload(payloadType, requestID, text string) {
	if !t.llmEnabled {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.llmFile == nil {
		return
	}
	line, err := json.Marshal(Payload{
		Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
		Type:      payloadType,
		Session:   t.sessionID,
		RequestID: requestID,
		Text:      text,
	})
	if err != nil {
		return
	}
	_, _ = t.llmFile.Write(append(line, '\n'))
}

// NewRequestID creates an identifier for one ask
func NewRequestID() string {
	return "req_" + uuid.NewString()[:8]
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
