package ui

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/abdul-hamid-achik/pplxchat/internal/session"
	"github.com/abdul-hamid-achik/pplxchat/internal/ui/highlight"
)

// ANSI color codes
const (
	Reset     = "\033[0m"
	Bold      = "\033[1m"
	Dim       = "\033[2m"
	Italic    = "\033[3m"
	Underline = "\033[4m"

	Red     = "\033[31m"
	Green   = "\033[32m"
	Yellow  = "\033[33m"
	Blue    = "\033[34m"
	Magenta = "\033[35m"
	Cyan    = "\033[36m"
)

// ANSI cursor control codes
const (
	CursorStart = "\r"      // Move cursor to start of line
	ClearLine   = "\033[2K" // Clear entire line
)

// previewLines caps how much of a written file is echoed
const previewLines = 40

// OutputHandler handles console output with colors
type OutputHandler struct {
	out         io.Writer
	errOut      io.Writer
	useColors   bool
	highlighter *highlight.Highlighter
}

// NewOutputHandler creates an output handler on stdout/stderr
func NewOutputHandler() *OutputHandler {
	useColors := true
	if fileInfo, _ := os.Stdout.Stat(); fileInfo == nil || (fileInfo.Mode()&os.ModeCharDevice) == 0 {
		useColors = false
	}
	if os.Getenv("NO_COLOR") != "" {
		useColors = false
	}
	return NewOutputHandlerTo(os.Stdout, os.Stderr, useColors)
}

// NewOutputHandlerTo creates an output handler on the given writers
func NewOutputHandlerTo(out, errOut io.Writer, useColors bool) *OutputHandler {
	return &OutputHandler{
		out:         out,
		errOut:      errOut,
		useColors:   useColors,
		highlighter: highlight.New(useColors),
	}
}

func (o *OutputHandler) color(color, text string) string {
	if !o.useColors {
		return text
	}
	return color + text + Reset
}

// IsTTY returns true if the output is a terminal (not piped/redirected)
func (o *OutputHandler) IsTTY() bool {
	return o.useColors
}

// UseColors returns true if colors are enabled
func (o *OutputHandler) UseColors() bool {
	return o.useColors
}

// TextLn outputs regular text with newline
func (o *OutputHandler) TextLn(text string) {
	fmt.Fprintln(o.out, text)
}

// Response prints a model answer with its code blocks highlighted
func (o *OutputHandler) Response(text string) {
	fmt.Fprintln(o.out, o.highlighter.HighlightMarkdownCodeBlocks(text))
}

// AgenticInfo prints a file action notice
func (o *OutputHandler) AgenticInfo(text string) {
	prefix := o.color(Magenta+Bold, "⚡ ")
	fmt.Fprintln(o.out, prefix+o.color(Magenta, text))
}

// Error outputs an error message
func (o *OutputHandler) Error(err error) {
	prefix := o.color(Red+Bold, "Error: ")
	fmt.Fprintln(o.errOut, prefix+err.Error())
}

// Warning outputs a warning message
func (o *OutputHandler) Warning(msg string) {
	prefix := o.color(Yellow+Bold, "Warning: ")
	fmt.Fprintln(o.errOut, prefix+msg)
}

// Success outputs a success message
func (o *OutputHandler) Success(msg string) {
	prefix := o.color(Green+Bold, "✓ ")
	fmt.Fprintln(o.out, prefix+msg)
}

// Info outputs an info message
func (o *OutputHandler) Info(msg string) {
	prefix := o.color(Blue, "ℹ ")
	fmt.Fprintln(o.out, prefix+msg)
}

// Prompt outputs a prompt
func (o *OutputHandler) Prompt(prompt string) {
	fmt.Fprint(o.out, o.color(Bold+Green, prompt))
}

// OverwritePrompt shows the overwrite question for an existing file
func (o *OutputHandler) OverwritePrompt(path, question string) {
	fmt.Fprintln(o.out)
	fmt.Fprintln(o.out, o.color(Yellow+Bold, "✏️  Overwrite: ")+o.color(Cyan, path))
	fmt.Fprintln(o.out, o.color(Dim, "   ")+question)
}

// FilePreview prints a highlighted excerpt of a written file
func (o *OutputHandler) FilePreview(path, content string) {
	lang := highlight.Language(path)
	header := path
	if lang != "" {
		header += " (" + lang + ")"
	}
	fmt.Fprintln(o.out, o.color(Dim, "── ")+o.color(Cyan, header))

	lines := strings.Split(o.highlighter.HighlightFile(path, content), "\n")
	truncated := 0
	if len(lines) > previewLines {
		truncated = len(lines) - previewLines
		lines = lines[:previewLines]
	}
	for _, line := range lines {
		fmt.Fprintln(o.out, o.color(Dim, "  │ ")+line)
	}
	if truncated > 0 {
		fmt.Fprintln(o.out, o.color(Dim, fmt.Sprintf("  … %d more lines", truncated)))
	}
}

// History prints stored turns, truncating long entries
func (o *OutputHandler) History(turns []session.ChatTurn) {
	if len(turns) == 0 {
		fmt.Fprintln(o.out, o.color(Dim, "(no history)"))
		return
	}
	for _, turn := range turns {
		label := o.color(Green+Bold, "you ")
		if turn.Role == session.RoleAssistant {
			label = o.color(Cyan+Bold, "pplx")
		}
		fmt.Fprintf(o.out, "%s  %s\n", label, session.Preview(turn.Content, 120))
	}
}

// Header outputs a header
func (o *OutputHandler) Header(text string) {
	fmt.Fprintln(o.out)
	fmt.Fprintln(o.out, o.color(Bold+Underline, text))
	fmt.Fprintln(o.out)
}

// ModelInfo outputs the current model and mode
func (o *OutputHandler) ModelInfo(model, mode string) {
	fmt.Fprintln(o.out, o.color(Dim, "Using model: ")+o.color(Cyan, model)+o.color(Dim, " · mode: ")+o.color(Cyan, mode))
}
