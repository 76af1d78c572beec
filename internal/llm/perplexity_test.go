package llm

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/abdul-hamid-achik/pplxchat/internal/config"
	"github.com/abdul-hamid-achik/pplxchat/internal/secrets"
)

type requestInfo struct {
	Path   string
	Auth   string
	Model  string
	Stream bool
	Msgs   []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	}
}

type capturedRequest struct {
	mu sync.Mutex
	requestInfo
}

func perplexityServer(t *testing.T, status int, body string) (*httptest.Server, *capturedRequest) {
	t.Helper()
	got := &capturedRequest{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got.mu.Lock()
		defer got.mu.Unlock()
		got.Path = r.URL.Path
		got.Auth = r.Header.Get("Authorization")

		data, _ := io.ReadAll(r.Body)
		var req struct {
			Model    string `json:"model"`
			Stream   bool   `json:"stream"`
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		_ = json.Unmarshal(data, &req)
		got.Model = req.Model
		got.Stream = req.Stream
		got.Msgs = req.Messages

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv, got
}

// snapshot returns the fields recorded by the handler
func (c *capturedRequest) snapshot() requestInfo {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.requestInfo
}

func perplexityConfig(url string) *config.Config {
	cfg := config.DefaultConfig()
	cfg.BaseURL = url
	cfg.Timeout = 5 * time.Second
	return cfg
}

const okBody = `{"id":"1","object":"chat.completion","created":1,"model":"sonar-pro",
"choices":[{"index":0,"message":{"role":"assistant","content":"Paris."},"finish_reason":"stop"}]}`

func TestPerplexity_Success(t *testing.T) {
	srv, rec := perplexityServer(t, http.StatusOK, okBody)
	c := NewPerplexityClient(perplexityConfig(srv.URL), KeySource{Override: "pplx-test"})

	r := c.Complete(context.Background(), "capital of France?", "")
	if !r.OK() || r.Text != "Paris." {
		t.Fatalf("Complete() = %+v", r)
	}
	got := rec.snapshot()
	if got.Path != "/chat/completions" {
		t.Errorf("path = %q", got.Path)
	}
	if got.Auth != "Bearer pplx-test" {
		t.Errorf("auth = %q", got.Auth)
	}
	if got.Model != "sonar-pro" {
		t.Errorf("model = %q, want default sonar-pro", got.Model)
	}
	if got.Stream {
		t.Error("request should not stream")
	}
	if len(got.Msgs) != 1 || got.Msgs[0].Role != "user" || got.Msgs[0].Content != "capital of France?" {
		t.Errorf("messages = %+v", got.Msgs)
	}
}

func TestPerplexity_ModelOverride(t *testing.T) {
	srv, rec := perplexityServer(t, http.StatusOK, okBody)
	c := NewPerplexityClient(perplexityConfig(srv.URL), KeySource{Override: "k"})

	c.Complete(context.Background(), "hi", "sonar-reasoning")
	if got := rec.snapshot(); got.Model != "sonar-reasoning" {
		t.Errorf("model = %q", got.Model)
	}
}

func TestPerplexity_KeyFromStore(t *testing.T) {
	srv, rec := perplexityServer(t, http.StatusOK, okBody)
	store := secrets.NewMemoryStore()
	c := NewPerplexityClient(perplexityConfig(srv.URL), KeySource{Store: store})

	r := c.Complete(context.Background(), "hi", "")
	if r.OK() || r.Failure.Kind != KindMissingCredential {
		t.Fatalf("expected missing credential, got %+v", r)
	}
	if rec.snapshot().Path != "" {
		t.Error("no request should be sent without a key")
	}

	// key set later is picked up on the next call
	_ = store.Put(context.Background(), config.KeyAPIKey, "pplx-later")
	r = c.Complete(context.Background(), "hi", "")
	if !r.OK() {
		t.Fatalf("Complete() = %+v", r)
	}
	if got := rec.snapshot(); got.Auth != "Bearer pplx-later" {
		t.Errorf("auth = %q", got.Auth)
	}
}

func TestPerplexity_Failures(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		kind    Kind
		display string
	}{
		{
			name:    "unauthorized json",
			status:  http.StatusUnauthorized,
			body:    `{"error":{"message":"Invalid API key","type":"invalid_request_error","code":401}}`,
			kind:    KindHTTPStatus,
			display: "Error: 401 Unauthorized\n" + `{"error":{"message":"Invalid API key","type":"invalid_request_error","code":401}}`,
		},
		{
			name:    "server error html",
			status:  http.StatusBadGateway,
			body:    "<html>bad gateway</html>",
			kind:    KindHTTPStatus,
			display: "Error: 502 Bad Gateway\n<html>bad gateway</html>",
		},
		{
			name:    "no choices",
			status:  http.StatusOK,
			body:    `{"id":"1","object":"chat.completion","created":1,"model":"sonar-pro","choices":[]}`,
			kind:    KindEmptyResponse,
			display: "No response from Perplexity Pro AI.",
		},
		{
			name:    "empty content",
			status:  http.StatusOK,
			body:    `{"id":"1","choices":[{"index":0,"message":{"role":"assistant","content":""}}]}`,
			kind:    KindEmptyResponse,
			display: "No response from Perplexity Pro AI.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, _ := perplexityServer(t, tt.status, tt.body)
			c := NewPerplexityClient(perplexityConfig(srv.URL), KeySource{Override: "k"})

			r := c.Complete(context.Background(), "hi", "")
			if r.OK() {
				t.Fatalf("expected failure, got text %q", r.Text)
			}
			if r.Failure.Kind != tt.kind {
				t.Errorf("kind = %s, want %s", r.Failure.Kind, tt.kind)
			}
			if got := r.Display(); got != tt.display {
				t.Errorf("Display() = %q, want %q", got, tt.display)
			}
		})
	}
}

func TestPerplexity_TransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := NewPerplexityClient(perplexityConfig(url), KeySource{Override: "k"})
	r := c.Complete(context.Background(), "hi", "")
	if r.OK() || r.Failure.Kind != KindTransport {
		t.Fatalf("expected transport failure, got %+v", r)
	}
	if !strings.HasPrefix(r.Display(), "Error: ") {
		t.Errorf("Display() = %q", r.Display())
	}
}

func TestPerplexity_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	cfg := perplexityConfig(srv.URL)
	cfg.Timeout = 50 * time.Millisecond
	c := NewPerplexityClient(cfg, KeySource{Override: "k"})

	r := c.Complete(context.Background(), "hi", "")
	if r.OK() || r.Failure.Kind != KindTransport {
		t.Fatalf("expected transport failure on timeout, got %+v", r)
	}
}
