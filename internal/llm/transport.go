package llm

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"sync"
)

// responseCapture remembers the last non-2xx response seen for one request,
// so failures can show the raw body whatever the SDK does with it.
type responseCapture struct {
	mu     sync.Mutex
	status int
	body   string
}

func (c *responseCapture) get() (int, string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status, c.body
}

type captureKey struct{}

func withCapture(ctx context.Context) (context.Context, *responseCapture) {
	c := &responseCapture{}
	return context.WithValue(ctx, captureKey{}, c), c
}

// captureTransport is an http.RoundTripper that records error bodies into the
// responseCapture carried by the request context.
type captureTransport struct {
	base http.RoundTripper
}

func newHTTPClient() *http.Client {
	return &http.Client{Transport: &captureTransport{base: http.DefaultTransport}}
}

func (t *captureTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := t.base.RoundTrip(req)
	if err != nil || resp.StatusCode < 300 {
		return resp, err
	}

	c, ok := req.Context().Value(captureKey{}).(*responseCapture)
	if !ok {
		return resp, nil
	}

	data, readErr := io.ReadAll(resp.Body)
	resp.Body.Close()
	resp.Body = io.NopCloser(bytes.NewReader(data))
	if readErr != nil {
		log.Debug("reading error body: %v", readErr)
	}

	c.mu.Lock()
	c.status = resp.StatusCode
	c.body = string(data)
	c.mu.Unlock()
	return resp, nil
}

// failureFor classifies a failed SDK call
func failureFor(ctx context.Context, capture *responseCapture, provider string, err error) *Failure {
	if status, body := capture.get(); status != 0 {
		return &Failure{Kind: KindHTTPStatus, Provider: provider, Status: status, Detail: body}
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return &Failure{Kind: KindTransport, Provider: provider, Detail: ctxErr.Error()}
	}
	return &Failure{Kind: KindTransport, Provider: provider, Detail: err.Error()}
}
