package server

import (
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/google/go-cmp/cmp"
	"go.uber.org/goleak"

	"github.com/abdul-hamid-achik/pplxchat/internal/chat"
	"github.com/abdul-hamid-achik/pplxchat/internal/config"
	"github.com/abdul-hamid-achik/pplxchat/internal/llm"
	"github.com/abdul-hamid-achik/pplxchat/internal/logger"
	"github.com/abdul-hamid-achik/pplxchat/internal/secrets"
	"github.com/abdul-hamid-achik/pplxchat/internal/session"
)

func TestMain(m *testing.M) {
	logger.DisableFileLog()
	goleak.VerifyTestMain(m)
}

type frame struct {
	Command string             `json:"command"`
	Text    string             `json:"text"`
	ID      string             `json:"id"`
	Path    string             `json:"path"`
	History []session.ChatTurn `json:"history"`
}

type harness struct {
	root string
	kv   secrets.Store
	srv  *Server
	ts   *httptest.Server
}

func newHarness(t *testing.T, completer llm.Completer) *harness {
	t.Helper()
	root, err := filepath.EvalSymlinks(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	cfg := config.DefaultConfig()
	cfg.Store = config.StoreConfig{Backend: config.BackendMemory}
	cfg.Workspace.Roots = []string{root}

	h := &harness{root: root, kv: secrets.NewMemoryStore()}
	h.srv = New(cfg, h.kv, completer)
	h.ts = httptest.NewServer(h.srv.Handler())
	t.Cleanup(h.ts.Close)
	return h
}

func (h *harness) dial(t *testing.T) *websocket.Conn {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	url := "ws" + strings.TrimPrefix(h.ts.URL, "http") + "/ws"
	c, _, err := websocket.Dial(ctx, url, &websocket.DialOptions{HTTPClient: h.ts.Client()})
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { _ = c.CloseNow() })
	return c
}

// readUntil returns the first frame with the given command and every frame read before it
func readUntil(t *testing.T, c *websocket.Conn, command string) (frame, []frame) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var seen []frame
	for {
		var f frame
		if err := wsjson.Read(ctx, c, &f); err != nil {
			t.Fatalf("waiting for %s: %v (seen %+v)", command, err, seen)
		}
		if f.Command == command {
			return f, seen
		}
		seen = append(seen, f)
	}
}

func send(t *testing.T, c *websocket.Conn, in chat.Inbound) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := wsjson.Write(ctx, c, in); err != nil {
		t.Fatalf("send %s: %v", in.Command, err)
	}
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestHTTPRoutes(t *testing.T) {
	h := newHarness(t, llm.NewMockCompleter("ok"))
	client := h.ts.Client()

	tests := []struct {
		path        string
		contentType string
		contains    string
	}{
		{"/healthz", "text/plain", "ok"},
		{"/", "text/html", "<title>pplxchat</title>"},
		{"/api/config", "application/json", `"defaultModel":"sonar-pro"`},
		{"/api/history", "application/json", "[]"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			resp, err := client.Get(h.ts.URL + tt.path)
			if err != nil {
				t.Fatal(err)
			}
			defer resp.Body.Close()
			body, _ := io.ReadAll(resp.Body)

			if resp.StatusCode != http.StatusOK {
				t.Fatalf("status = %d", resp.StatusCode)
			}
			if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, tt.contentType) {
				t.Errorf("content type = %q, want %q", ct, tt.contentType)
			}
			if !strings.Contains(string(body), tt.contains) {
				t.Errorf("body = %q, want it to contain %q", body, tt.contains)
			}
		})
	}
}

func TestHistoryEndpoint(t *testing.T) {
	h := newHarness(t, llm.NewMockCompleter("ok"))
	_ = h.kv.Put(context.Background(), config.KeyChatHistory, `[{"role":"user","content":"q"},{"role":"ai","content":"a"}]`)

	resp, err := h.ts.Client().Get(h.ts.URL + "/api/history")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	var got []session.ChatTurn
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatal(err)
	}
	want := []session.ChatTurn{session.UserTurn("q"), session.AssistantTurn("a")}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("history (-want +got):\n%s", diff)
	}
}

func TestWebSocketAsk(t *testing.T) {
	h := newHarness(t, llm.NewMockCompleter("Paris."))
	c := h.dial(t)

	first, _ := readUntil(t, c, chat.CommandLoadHistory)
	if len(first.History) != 0 {
		t.Errorf("initial history = %+v", first.History)
	}

	send(t, c, chat.Inbound{Command: chat.CommandAsk, Text: "capital of France?", Model: "sonar"})

	resp, before := readUntil(t, c, chat.CommandResponse)
	if resp.Text != "Paris." {
		t.Errorf("response = %q", resp.Text)
	}
	if len(before) == 0 || before[0].Command != chat.CommandBusy || before[0].Text == "" {
		t.Errorf("expected busy before response, got %+v", before)
	}
	idle, _ := readUntil(t, c, chat.CommandBusy)
	if idle.Text != "" {
		t.Errorf("expected idle busy after response, got %q", idle.Text)
	}
}

func TestWebSocketConfirmOverwrite(t *testing.T) {
	h := newHarness(t, llm.NewMockCompleter("```\nnew\n```"))
	path := filepath.Join(h.root, "a.txt")
	if err := os.WriteFile(path, []byte("old"), 0644); err != nil {
		t.Fatal(err)
	}
	c := h.dial(t)
	readUntil(t, c, chat.CommandLoadHistory)

	send(t, c, chat.Inbound{Command: chat.CommandAsk, Text: "Create a file named a.txt"})

	q, _ := readUntil(t, c, chat.CommandConfirm)
	if q.ID == "" || !strings.Contains(q.Text, path) {
		t.Fatalf("confirm = %+v", q)
	}
	send(t, c, chat.Inbound{Command: chat.CommandConfirmResponse, ID: "unknown", Answer: "yes"})
	send(t, c, chat.Inbound{Command: chat.CommandConfirmResponse, ID: q.ID, Answer: "Yes"})

	open, _ := readUntil(t, c, chat.CommandOpenFile)
	if open.Path != path || open.Text != "new" {
		t.Errorf("openFile = %+v", open)
	}
	info, _ := readUntil(t, c, chat.CommandAgenticInfo)
	if info.Text != "Updated file: a.txt" {
		t.Errorf("agenticInfo = %q", info.Text)
	}
	if data, _ := os.ReadFile(path); string(data) != "new" {
		t.Errorf("content = %q", data)
	}
}

func TestWebSocketDeclineOverwrite(t *testing.T) {
	h := newHarness(t, llm.NewMockCompleter("```\nnew\n```"))
	path := filepath.Join(h.root, "a.txt")
	if err := os.WriteFile(path, []byte("old"), 0644); err != nil {
		t.Fatal(err)
	}
	c := h.dial(t)
	readUntil(t, c, chat.CommandLoadHistory)

	send(t, c, chat.Inbound{Command: chat.CommandAsk, Text: "Create a file named a.txt"})
	q, _ := readUntil(t, c, chat.CommandConfirm)
	send(t, c, chat.Inbound{Command: chat.CommandConfirmResponse, ID: q.ID, Answer: "no"})

	resp, _ := readUntil(t, c, chat.CommandResponse)
	if resp.Text != "```\nnew\n```" {
		t.Errorf("response = %q", resp.Text)
	}
	info, _ := readUntil(t, c, chat.CommandAgenticInfo)
	if info.Text != "Kept existing file: "+path {
		t.Errorf("agenticInfo = %q", info.Text)
	}
	if data, _ := os.ReadFile(path); string(data) != "old" {
		t.Errorf("content = %q, want unchanged", data)
	}
}

func TestWebSocketDisconnectDismissesConfirm(t *testing.T) {
	h := newHarness(t, llm.NewMockCompleter("```\nnew\n```"))
	path := filepath.Join(h.root, "a.txt")
	if err := os.WriteFile(path, []byte("old"), 0644); err != nil {
		t.Fatal(err)
	}
	c := h.dial(t)
	readUntil(t, c, chat.CommandLoadHistory)
	waitFor(t, "connection registered", func() bool { return h.srv.Connections() == 1 })

	send(t, c, chat.Inbound{Command: chat.CommandAsk, Text: "Create a file named a.txt"})
	readUntil(t, c, chat.CommandConfirm)
	_ = c.CloseNow()

	waitFor(t, "connection closed", func() bool { return h.srv.Connections() == 0 })
	if data, _ := os.ReadFile(path); string(data) != "old" {
		t.Errorf("content = %q, want unchanged", data)
	}
}

func TestWebSocketClearHistory(t *testing.T) {
	h := newHarness(t, llm.NewMockCompleter("ok"))
	ctx := context.Background()
	_ = h.kv.Put(ctx, config.KeyChatHistory, `[{"role":"user","content":"q"}]`)

	c := h.dial(t)
	first, _ := readUntil(t, c, chat.CommandLoadHistory)
	if len(first.History) != 1 {
		t.Fatalf("initial history = %+v", first.History)
	}

	send(t, c, chat.Inbound{Command: chat.CommandClearHistory})
	cleared, _ := readUntil(t, c, chat.CommandLoadHistory)
	if cleared.History == nil || len(cleared.History) != 0 {
		t.Errorf("cleared history = %#v, want empty list", cleared.History)
	}
	if v, _, _ := h.kv.Get(ctx, config.KeyChatHistory); v != "[]" {
		t.Errorf("stored history = %q", v)
	}
}

func TestServeBroadcastsExternalHistoryChanges(t *testing.T) {
	dir := t.TempDir()
	storePath := filepath.Join(dir, "secrets.json")
	kv, err := secrets.NewFileStore(storePath)
	if err != nil {
		t.Fatal(err)
	}

	cfg := config.DefaultConfig()
	cfg.Workspace.Roots = []string{dir}
	srv := New(cfg, kv, llm.NewMockCompleter("ok"))

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	served := make(chan error, 1)
	go func() { served <- srv.Serve(ctx, ln) }()

	dialCtx, dialCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer dialCancel()
	c, _, err := websocket.Dial(dialCtx, "ws://"+ln.Addr().String()+"/ws", nil)
	if err != nil {
		cancel()
		t.Fatalf("dial: %v", err)
	}
	defer c.CloseNow()
	readUntil(t, c, chat.CommandLoadHistory)

	// let the watcher settle before writing from "another process"
	time.Sleep(200 * time.Millisecond)
	other, err := secrets.NewFileStore(storePath)
	if err != nil {
		t.Fatal(err)
	}
	if err := other.Put(context.Background(), config.KeyChatHistory, `[{"role":"user","content":"from elsewhere"}]`); err != nil {
		t.Fatal(err)
	}

	got, _ := readUntil(t, c, chat.CommandLoadHistory)
	if diff := cmp.Diff([]session.ChatTurn{session.UserTurn("from elsewhere")}, got.History); diff != "" {
		t.Errorf("broadcast history (-want +got):\n%s", diff)
	}

	cancel()
	select {
	case err := <-served:
		if err != nil {
			t.Errorf("Serve() = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}
}
