package ui

import (
	"io"
	"strings"
	"testing"
)

func TestReadLine(t *testing.T) {
	h := NewInputHandlerFrom(strings.NewReader("  first  \nlast"), io.Discard)

	got, err := h.ReadLine("> ")
	if err != nil || got != "first" {
		t.Fatalf("ReadLine() = %q, %v", got, err)
	}
	got, err = h.ReadLine("> ")
	if err != nil || got != "last" {
		t.Fatalf("ReadLine() without newline = %q, %v", got, err)
	}
	if _, err := h.ReadLine("> "); err != io.EOF {
		t.Errorf("ReadLine() at end = %v, want io.EOF", err)
	}
}

func TestConfirm(t *testing.T) {
	tests := []struct {
		input      string
		defaultYes bool
		want       bool
	}{
		{"y\n", false, true},
		{"YES\n", false, true},
		{"n\n", true, false},
		{"\n", false, false},
		{"\n", true, true},
		{"maybe\n", true, false},
	}
	for _, tt := range tests {
		h := NewInputHandlerFrom(strings.NewReader(tt.input), io.Discard)
		got, err := h.Confirm("Overwrite?", tt.defaultYes)
		if err != nil || got != tt.want {
			t.Errorf("Confirm(%q, %v) = %v, %v; want %v", tt.input, tt.defaultYes, got, err, tt.want)
		}
	}
}

func TestReadPasswordWithoutTerminal(t *testing.T) {
	h := NewInputHandlerFrom(strings.NewReader("pplx-abc\n"), io.Discard)
	got, err := h.ReadPassword("key: ")
	if err != nil || got != "pplx-abc" {
		t.Errorf("ReadPassword() = %q, %v", got, err)
	}
}

func TestReadAll(t *testing.T) {
	h := NewInputHandlerFrom(strings.NewReader("line one\nline two\n"), io.Discard)
	got, err := h.ReadAll()
	if err != nil || got != "line one\nline two" {
		t.Errorf("ReadAll() = %q, %v", got, err)
	}
}
