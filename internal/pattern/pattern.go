// Package pattern extracts file-creation hints from free-form text.
//
// Two ordered rule tables drive extraction: prompt rules pull a filename out of
// what the user typed, agentic rules pull (filename, code) pairs out of what the
// model answered. Everything here is pure and safe for concurrent use.
package pattern

import (
	"regexp"
	"sort"
	"strings"
)

// Rule is one named regular expression. Capture group 1 is always the filename;
// for agentic rules capture group 2 is the fenced code.
type Rule struct {
	Name string
	Re   *regexp.Regexp
}

// Candidate is one (filename, code) pair found in a model response.
type Candidate struct {
	Filename string
	Code     string
	Rule     string
	Offset   int // byte offset of the match in the response
}

// fence is the body of a fenced block: optional language tag, newline, lazy content, closing fence.
const fence = "```(?:\\w+)?\\n([\\s\\S]*?)```"

// PromptRules are tried in order against the user prompt; the first match wins.
var PromptRules = []Rule{
	{
		Name: "create-file",
		Re:   regexp.MustCompile(`(?i)(?:create|write|make)(?: a)? (?:new )?(?:file|program)(?: named| called)? ['"]?([^'"}\s]+)['"]?`),
	},
	{
		Name: "save-code-to-file",
		Re:   regexp.MustCompile(`(?i)(?:save|write)(?: the)?(?: following)? (?:code|program) (?:to|in)(?: a)? file(?: named| called)? ['"]?([^'"}\s]+)['"]?`),
	},
	{
		Name: "implement-python",
		Re:   regexp.MustCompile(`(?i)(?:implement|create) (?:a )?['"]?([^'"}\s]+\.py)['"]?`),
	},
}

// AgenticRules are scanned across the whole response; every occurrence counts.
var AgenticRules = []Rule{
	{
		Name: "file-with-content",
		Re:   regexp.MustCompile(`(?i)(?:create|add|make)(?: a)? file(?: named)? ([^\s]+)[^\n]*?with(?: the)? following content:?\n?` + fence),
	},
	{
		Name: "created-file",
		Re:   regexp.MustCompile("(?i)(?:Here's the|I've created|Creating) (?:a )?(?:new )?file `?([^`\\s]+)`?:?\\n?" + fence),
	},
}

var codeBlockRe = regexp.MustCompile(fence)

// Matcher applies a pair of rule tables.
type Matcher struct {
	prompt  []Rule
	agentic []Rule
}

// New creates a Matcher over custom rule tables.
func New(prompt, agentic []Rule) *Matcher {
	return &Matcher{prompt: prompt, agentic: agentic}
}

// Default returns a Matcher over PromptRules and AgenticRules.
func Default() *Matcher {
	return New(PromptRules, AgenticRules)
}

// PromptFilename returns the filename named by the first prompt rule that matches.
func (m *Matcher) PromptFilename(prompt string) (string, bool) {
	for _, r := range m.prompt {
		if sub := r.Re.FindStringSubmatch(prompt); len(sub) > 1 && sub[1] != "" {
			return sub[1], true
		}
	}
	return "", false
}

// FirstCodeBlock returns the trimmed content of the first fenced block.
// A block that is empty after trimming does not count.
func FirstCodeBlock(response string) (string, bool) {
	sub := codeBlockRe.FindStringSubmatch(response)
	if len(sub) < 2 {
		return "", false
	}
	code := strings.TrimSpace(sub[1])
	return code, code != ""
}

// AgenticCandidates returns every agentic match in the response, ordered by
// position in the text. Matches whose code is blank are dropped.
func (m *Matcher) AgenticCandidates(response string) []Candidate {
	var out []Candidate
	for _, r := range m.agentic {
		for _, idx := range r.Re.FindAllStringSubmatchIndex(response, -1) {
			if len(idx) < 6 || idx[2] < 0 || idx[4] < 0 {
				continue
			}
			code := strings.TrimSpace(response[idx[4]:idx[5]])
			if code == "" {
				continue
			}
			out = append(out, Candidate{
				Filename: response[idx[2]:idx[3]],
				Code:     code,
				Rule:     r.Name,
				Offset:   idx[0],
			})
		}
	}
	// stable: equal offsets keep rule-table order
	sort.SliceStable(out, func(i, j int) bool { return out[i].Offset < out[j].Offset })
	return out
}
