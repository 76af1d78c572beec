// Package action decides whether a (prompt, response) pair should produce a file.
package action

import "github.com/abdul-hamid-achik/pplxchat/internal/pattern"

// Origin records which path produced an Intent
type Origin int

const (
	OriginExplicit Origin = iota // the user asked for a file in the prompt
	OriginAgentic                // the model announced a file in its answer
)

func (o Origin) String() string {
	switch o {
	case OriginExplicit:
		return "explicit-user-request"
	case OriginAgentic:
		return "agentic-inference"
	default:
		return "unknown"
	}
}

// Intent is a resolved request to write Code to Filename. It is never persisted.
type Intent struct {
	Filename string
	Code     string
	Origin   Origin
}

// Resolver turns text into at most one Intent
type Resolver struct {
	matcher *pattern.Matcher
}

// NewResolver creates a resolver over the given matcher; nil uses pattern.Default().
func NewResolver(m *pattern.Matcher) *Resolver {
	if m == nil {
		m = pattern.Default()
	}
	return &Resolver{matcher: m}
}

// Resolve returns the file action implied by prompt and response.
//
// A filename in the prompt takes priority and needs a fenced block in the
// response; if the block is missing nothing is resolved, even in agentic mode.
// Otherwise, when agentic is set, the earliest announced file in the response
// is used.
func (r *Resolver) Resolve(prompt, response string, agentic bool) (Intent, bool) {
	if name, ok := r.matcher.PromptFilename(prompt); ok {
		code, ok := pattern.FirstCodeBlock(response)
		if !ok {
			return Intent{}, false
		}
		return Intent{Filename: name, Code: code, Origin: OriginExplicit}, true
	}

	if !agentic {
		return Intent{}, false
	}

	cands := r.matcher.AgenticCandidates(response)
	if len(cands) == 0 {
		return Intent{}, false
	}
	first := cands[0]
	return Intent{Filename: first.Filename, Code: first.Code, Origin: OriginAgentic}, true
}
