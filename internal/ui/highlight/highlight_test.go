package highlight

import (
	"strings"
	"testing"
)

func TestDisabledIsIdentity(t *testing.T) {
	h := New(false)
	code := "package main\n\nfunc main() {}"

	if got := h.HighlightFile("main.go", code); got != code {
		t.Errorf("HighlightFile() = %q, want unchanged", got)
	}
	text := "see:\n```go\nx := 1\n```"
	if got := h.HighlightMarkdownCodeBlocks(text); got != text {
		t.Errorf("HighlightMarkdownCodeBlocks() = %q, want unchanged", got)
	}
}

func TestHighlightFileColors(t *testing.T) {
	h := New(true)
	got := h.HighlightFile("/tmp/main.go", "package main")

	if !strings.Contains(got, "\x1b[") {
		t.Errorf("expected ANSI escapes, got %q", got)
	}
	if !strings.Contains(got, "main") {
		t.Errorf("expected source text preserved, got %q", got)
	}
}

func TestMarkdownFencesRemoved(t *testing.T) {
	h := New(true)
	got := h.HighlightMarkdownCodeBlocks("before\n```python\nprint(1)\n```\nafter")

	if strings.Contains(got, "```") {
		t.Errorf("fences should be replaced, got %q", got)
	}
	if !strings.HasPrefix(got, "before\n") || !strings.HasSuffix(got, "\nafter") {
		t.Errorf("surrounding text changed: %q", got)
	}
}

func TestLanguage(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"main.go", "Go"},
		{"/a/b/solve.py", "Python"},
		{"no-extension-here", ""},
	}
	for _, tt := range tests {
		if got := Language(tt.path); got != tt.want {
			t.Errorf("Language(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}
