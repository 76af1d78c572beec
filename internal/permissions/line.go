package permissions

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/abdul-hamid-achik/pplxchat/internal/workspace"
)

// InputHandler reads a line of user input
type InputHandler interface {
	ReadLine(prompt string) (string, error)
}

// OutputHandler displays the overwrite question
type OutputHandler interface {
	OverwritePrompt(path, question string)
	Warning(msg string)
}

// LinePrompter asks on a line-oriented terminal
type LinePrompter struct {
	input  InputHandler
	output OutputHandler
}

// NewLinePrompter creates a prompter over the given handlers
func NewLinePrompter(input InputHandler, output OutputHandler) *LinePrompter {
	return &LinePrompter{input: input, output: output}
}

// Prompt shows the question and reads y/n/a/v. Anything else keeps the file.
func (l *LinePrompter) Prompt(ctx context.Context, path, question string) (Decision, error) {
	if err := ctx.Err(); err != nil {
		return DecisionDeny, err
	}
	l.output.OverwritePrompt(path, question)

	response, err := l.input.ReadLine("[y]es / [n]o / [a]lways / ne[v]er: ")
	if errors.Is(err, io.EOF) {
		// input closed before an answer
		return DecisionDeny, workspace.ErrDismissed
	}
	if err != nil {
		return DecisionDeny, fmt.Errorf("failed to read response: %w", err)
	}

	decision, ok := ParseAnswer(response)
	if !ok {
		l.output.Warning("Unrecognized response, keeping the existing file.")
	}
	return decision, nil
}
