// Package llm sends a single prompt to a remote completion API and returns a
// tagged Result instead of mixing failure text into the response text.
package llm

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/abdul-hamid-achik/pplxchat/internal/config"
	chaterr "github.com/abdul-hamid-achik/pplxchat/internal/errors"
	"github.com/abdul-hamid-achik/pplxchat/internal/logger"
	"github.com/abdul-hamid-achik/pplxchat/internal/secrets"
)

var log = logger.WithPrefix("llm")

// Completer turns one user prompt into one Result. Implementations never
// return Go errors: every failure is carried in the Result.
type Completer interface {
	Complete(ctx context.Context, prompt, model string) Result
}

// Kind classifies a failed completion
type Kind string

const (
	KindMissingCredential Kind = "missing_credential"
	KindHTTPStatus        Kind = "http_status"
	KindTransport         Kind = "transport"
	KindEmptyResponse     Kind = "empty_response"
)

// Failure describes why no completion text is available
type Failure struct {
	Kind     Kind
	Provider string // display name, e.g. "Perplexity Pro AI"
	Status   int    // HTTP status for KindHTTPStatus
	Detail   string // response body or transport error message
}

// Err maps the failure onto the project error taxonomy
func (f *Failure) Err() error {
	switch f.Kind {
	case KindMissingCredential:
		return chaterr.MissingCredential(f.Provider)
	case KindHTTPStatus:
		return chaterr.TransportStatus(f.Status, f.Detail)
	default:
		return chaterr.TransportFailed(fmt.Errorf("%s", f.Detail))
	}
}

// Result is either completion Text or a Failure
type Result struct {
	Text    string
	Failure *Failure
}

// Success wraps completion text
func Success(text string) Result {
	return Result{Text: text}
}

// Fail wraps a failure
func Fail(f *Failure) Result {
	return Result{Failure: f}
}

// OK reports whether the result carries completion text
func (r Result) OK() bool {
	return r.Failure == nil
}

// Display renders the text shown to the user and recorded in history.
func (r Result) Display() string {
	f := r.Failure
	if f == nil {
		return r.Text
	}
	switch f.Kind {
	case KindMissingCredential:
		return fmt.Sprintf("Error: No %s API key set. Please use the \"pplxchat set-key\" command to set your API key.", f.Provider)
	case KindHTTPStatus:
		return fmt.Sprintf("Error: %d %s\n%s", f.Status, http.StatusText(f.Status), f.Detail)
	case KindEmptyResponse:
		return fmt.Sprintf("No response from %s.", f.Provider)
	default:
		return "Error: " + f.Detail
	}
}

// KeySource yields the API key for a call. Override (environment or --token)
// wins; otherwise the key is read from Store on every call so a key set from
// another process is picked up.
type KeySource struct {
	Override string
	Store    secrets.Store
	Key      string // defaults to config.KeyAPIKey
}

// APIKey returns the key, or "" when none is configured
func (k KeySource) APIKey(ctx context.Context) (string, error) {
	if k.Override != "" {
		return k.Override, nil
	}
	if k.Store == nil {
		return "", nil
	}
	key := k.Key
	if key == "" {
		key = config.KeyAPIKey
	}
	v, _, err := k.Store.Get(ctx, key)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(v), nil
}

// New builds the completer for cfg.Provider, rate limited when configured.
func New(cfg *config.Config, keys KeySource) Completer {
	var c Completer
	switch cfg.Provider {
	case config.ProviderAnthropic:
		c = NewAnthropicClient(cfg, keys)
	default:
		c = NewPerplexityClient(cfg, keys)
	}
	if cfg.RateLimit.Enabled {
		c = NewRateLimitedCompleter(c, cfg.RateLimit.RequestsPerMinute)
	}
	return c
}

// resolveKey fetches the key and builds the missing-credential result when absent
func resolveKey(ctx context.Context, keys KeySource, provider string) (string, *Result) {
	key, err := keys.APIKey(ctx)
	if err != nil {
		log.Warn("reading API key: %s", chaterr.GetUserMessage(err))
	}
	if key == "" {
		r := Fail(&Failure{Kind: KindMissingCredential, Provider: provider})
		return "", &r
	}
	return key, nil
}
