package ui

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/abdul-hamid-achik/pplxchat/internal/session"
)

func TestFilePreviewPlain(t *testing.T) {
	var out bytes.Buffer
	o := NewOutputHandlerTo(&out, io.Discard, false)

	if err := (PreviewOpener{Output: o}).Open(context.Background(), "/w/main.go", "package main\n\nfunc main() {}"); err != nil {
		t.Fatal(err)
	}

	want := "── /w/main.go (Go)\n  │ package main\n  │ \n  │ func main() {}\n"
	if out.String() != want {
		t.Errorf("preview = %q, want %q", out.String(), want)
	}
}

func TestFilePreviewTruncates(t *testing.T) {
	var out bytes.Buffer
	o := NewOutputHandlerTo(&out, io.Discard, false)

	content := strings.Repeat("x\n", previewLines+4) + "x"
	o.FilePreview("notes.txt", content)

	if !strings.HasSuffix(out.String(), "  … 5 more lines\n") {
		t.Errorf("expected truncation footer, got %q", out.String())
	}
}

func TestOverwritePrompt(t *testing.T) {
	var out bytes.Buffer
	o := NewOutputHandlerTo(&out, io.Discard, false)
	o.OverwritePrompt("/w/a.txt", "File /w/a.txt already exists. Do you want to overwrite it?")

	got := out.String()
	if !strings.Contains(got, "Overwrite: /w/a.txt") || !strings.Contains(got, "already exists") {
		t.Errorf("prompt = %q", got)
	}
}

func TestHistory(t *testing.T) {
	var out bytes.Buffer
	o := NewOutputHandlerTo(&out, io.Discard, false)

	o.History(nil)
	if out.String() != "(no history)\n" {
		t.Errorf("empty history = %q", out.String())
	}

	out.Reset()
	o.History([]session.ChatTurn{session.UserTurn("hi"), session.AssistantTurn("hello\nthere")})
	want := "you   hi\npplx  hello there\n"
	if out.String() != want {
		t.Errorf("history = %q, want %q", out.String(), want)
	}
}

func TestErrorsGoToErrOut(t *testing.T) {
	var out, errOut bytes.Buffer
	o := NewOutputHandlerTo(&out, &errOut, false)
	o.Warning("careful")

	if out.Len() != 0 || errOut.String() != "Warning: careful\n" {
		t.Errorf("out = %q, errOut = %q", out.String(), errOut.String())
	}
}
