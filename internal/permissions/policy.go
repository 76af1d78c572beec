// Package permissions decides whether an existing file may be overwritten.
package permissions

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// Mode defines how overwrite requests are answered
type Mode int

const (
	ModeAsk    Mode = iota // Prompt for every existing file
	ModeAlways             // Overwrite without asking
	ModeNever              // Keep every existing file
)

func (m Mode) String() string {
	switch m {
	case ModeAsk:
		return "ask"
	case ModeAlways:
		return "always"
	case ModeNever:
		return "never"
	default:
		return "unknown"
	}
}

// ParseMode maps a config value to a Mode
func ParseMode(s string) (Mode, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "ask", "":
		return ModeAsk, true
	case "always":
		return ModeAlways, true
	case "never":
		return ModeNever, true
	}
	return ModeAsk, false
}

// Decision represents a permission decision
type Decision int

const (
	DecisionAllow       Decision = iota // Overwrite this time
	DecisionAlwaysAllow                 // Overwrite this file for the rest of the session
	DecisionDeny                        // Keep the file this time
	DecisionNeverAllow                  // Keep this file for the rest of the session
)

// Allowed reports whether the decision permits the write
func (d Decision) Allowed() bool {
	return d == DecisionAllow || d == DecisionAlwaysAllow
}

// ParseAnswer maps a typed answer to a Decision
func ParseAnswer(s string) (Decision, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "y", "yes":
		return DecisionAllow, true
	case "n", "no":
		return DecisionDeny, true
	case "a", "always":
		return DecisionAlwaysAllow, true
	case "v", "never":
		return DecisionNeverAllow, true
	}
	return DecisionDeny, false
}

// Question is the text shown when asking about path
func Question(path string) string {
	return fmt.Sprintf("File %s already exists. Do you want to overwrite it?", path)
}

// Prompter asks the user about one overwrite
type Prompter interface {
	Prompt(ctx context.Context, path, question string) (Decision, error)
}

// PrompterFunc adapts a function to Prompter
type PrompterFunc func(ctx context.Context, path, question string) (Decision, error)

func (f PrompterFunc) Prompt(ctx context.Context, path, question string) (Decision, error) {
	return f(ctx, path, question)
}

// Policy manages overwrite confirmation and remembers always/never answers
type Policy struct {
	mode     Mode
	prompter Prompter
	cache    map[string]Decision
	cacheMu  sync.RWMutex
}

// NewPolicy creates a new overwrite policy
func NewPolicy(mode Mode, prompter Prompter) *Policy {
	return &Policy{
		mode:     mode,
		prompter: prompter,
		cache:    make(map[string]Decision),
	}
}

// Confirm reports whether the existing file at path may be replaced
func (p *Policy) Confirm(ctx context.Context, path string) (bool, error) {
	switch p.GetMode() {
	case ModeAlways:
		return true, nil
	case ModeNever:
		return false, nil
	}

	if decision, ok := p.GetCachedDecision(path); ok {
		return decision.Allowed(), nil
	}

	if p.prompter == nil {
		return false, nil
	}

	decision, err := p.prompter.Prompt(ctx, path, Question(path))
	if err != nil {
		return false, err
	}

	if decision == DecisionAlwaysAllow || decision == DecisionNeverAllow {
		p.cacheMu.Lock()
		p.cache[path] = decision
		p.cacheMu.Unlock()
	}
	return decision.Allowed(), nil
}

// GetMode returns the current mode
func (p *Policy) GetMode() Mode {
	p.cacheMu.RLock()
	defer p.cacheMu.RUnlock()
	return p.mode
}

// SetMode changes the mode
func (p *Policy) SetMode(mode Mode) {
	p.cacheMu.Lock()
	defer p.cacheMu.Unlock()
	p.mode = mode
}

// ClearCache forgets all always/never answers
func (p *Policy) ClearCache() {
	p.cacheMu.Lock()
	defer p.cacheMu.Unlock()
	p.cache = make(map[string]Decision)
}

// GetCachedDecision returns a remembered decision for path
func (p *Policy) GetCachedDecision(path string) (Decision, bool) {
	p.cacheMu.RLock()
	defer p.cacheMu.RUnlock()
	decision, ok := p.cache[path]
	return decision, ok
}
