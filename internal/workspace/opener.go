package workspace

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// NopOpener leaves written files alone
type NopOpener struct{}

func (NopOpener) Open(context.Context, string, string) error { return nil }

// OpenerFunc adapts a function to Opener
type OpenerFunc func(ctx context.Context, path, content string) error

func (f OpenerFunc) Open(ctx context.Context, path, content string) error {
	return f(ctx, path, content)
}

// EditorOpener runs the user's editor on the file and waits for it to exit.
type EditorOpener struct {
	// Command overrides $VISUAL / $EDITOR. It may carry arguments ("code -w").
	Command string
}

// Open runs the editor attached to the current terminal
func (e EditorOpener) Open(ctx context.Context, path, _ string) error {
	cmd, err := e.Prepare(ctx, path)
	if err != nil {
		return err
	}
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

// Prepare builds the editor command for path without starting it
func (e EditorOpener) Prepare(ctx context.Context, path string) (*exec.Cmd, error) {
	cmdline := e.editor()
	if cmdline == "" {
		return nil, fmt.Errorf("no editor configured (set $VISUAL or $EDITOR)")
	}
	fields := strings.Fields(cmdline)
	args := append(fields[1:], path)
	return exec.CommandContext(ctx, fields[0], args...), nil
}

func (e EditorOpener) editor() string {
	if e.Command != "" {
		return e.Command
	}
	if v := os.Getenv("VISUAL"); v != "" {
		return v
	}
	return os.Getenv("EDITOR")
}
