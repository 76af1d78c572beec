package action

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestResolve(t *testing.T) {
	r := NewResolver(nil)

	tests := []struct {
		name     string
		prompt   string
		response string
		agentic  bool
		want     Intent
		ok       bool
	}{
		{
			name:     "explicit create file",
			prompt:   "Create a file named foo.txt",
			response: "```\nhello\n```",
			want:     Intent{Filename: "foo.txt", Code: "hello", Origin: OriginExplicit},
			ok:       true,
		},
		{
			name:     "save code rule",
			prompt:   "save the code to a file named app.js",
			response: "Sure:\n```js\nconsole.log('hi')\n```",
			want:     Intent{Filename: "app.js", Code: "console.log('hi')", Origin: OriginExplicit},
			ok:       true,
		},
		{
			name:     "python convenience mixed case",
			prompt:   `ImPlEmEnT "solve.py"`,
			response: "```python\nprint(42)\n```",
			want:     Intent{Filename: "solve.py", Code: "print(42)", Origin: OriginExplicit},
			ok:       true,
		},
		{
			name:     "explicit works without agentic",
			prompt:   "make a file called notes.md",
			response: "```\n# notes\n```",
			agentic:  false,
			want:     Intent{Filename: "notes.md", Code: "# notes", Origin: OriginExplicit},
			ok:       true,
		},
		{
			name:     "filename without usable block does not fall through",
			prompt:   "Create a file named foo.txt",
			response: "```\n\n```\nI've created a file `bar.txt`:\n```\nbar\n```",
			agentic:  true,
			ok:       false,
		},
		{
			name:     "filename and no fence at all",
			prompt:   "Create a file named foo.txt",
			response: "Sorry, I can't help with that file.",
			agentic:  true,
			ok:       false,
		},
		{
			name:     "filename and empty block",
			prompt:   "Create a file named foo.txt",
			response: "```\n\n```",
			agentic:  true,
			ok:       false,
		},
		{
			name:     "agentic first of two",
			prompt:   "write me some helpers",
			response: "I've created a file `util.js`:\n```\nconsole.log(1)\n```\nand also created a file `other.js`:\n```\nx\n```",
			agentic:  true,
			want:     Intent{Filename: "util.js", Code: "console.log(1)", Origin: OriginAgentic},
			ok:       true,
		},
		{
			name:     "agentic disabled ignores announcements",
			prompt:   "write me some helpers",
			response: "I've created a file `util.js`:\n```\nconsole.log(1)\n```",
			agentic:  false,
			ok:       false,
		},
		{
			name:     "agentic earliest in text wins over rule order",
			prompt:   "set things up",
			response: "Creating file `a.go`:\n```go\npackage a\n```\nThen add a file b.txt with the following content:\n```\nbee\n```",
			agentic:  true,
			want:     Intent{Filename: "a.go", Code: "package a", Origin: OriginAgentic},
			ok:       true,
		},
		{
			name:     "plain chat",
			prompt:   "what is the capital of France?",
			response: "Paris.",
			agentic:  true,
			ok:       false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := r.Resolve(tt.prompt, tt.response, tt.agentic)
			if ok != tt.ok {
				t.Fatalf("Resolve() ok = %v, want %v (intent %+v)", ok, tt.ok, got)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Resolve() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestOriginString(t *testing.T) {
	tests := []struct {
		origin Origin
		want   string
	}{
		{OriginExplicit, "explicit-user-request"},
		{OriginAgentic, "agentic-inference"},
		{Origin(7), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.origin.String(); got != tt.want {
			t.Errorf("Origin(%d).String() = %q, want %q", tt.origin, got, tt.want)
		}
	}
}
