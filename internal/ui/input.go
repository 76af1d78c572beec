package ui

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// InputHandler handles user input
type InputHandler struct {
	reader *bufio.Reader
	fd     int // terminal descriptor for hidden input, -1 when not a terminal
	echo   io.Writer
}

// NewInputHandler creates a new input handler on stdin
func NewInputHandler() *InputHandler {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		fd = -1
	}
	return &InputHandler{
		reader: bufio.NewReader(os.Stdin),
		fd:     fd,
		echo:   os.Stdout,
	}
}

// NewInputHandlerFrom reads lines from r; hidden input falls back to plain reads
func NewInputHandlerFrom(r io.Reader, echo io.Writer) *InputHandler {
	return &InputHandler{reader: bufio.NewReader(r), fd: -1, echo: echo}
}

// ReadLine reads a single line of input. A final line without newline is returned as-is.
func (h *InputHandler) ReadLine(prompt string) (string, error) {
	fmt.Fprint(h.echo, prompt)
	line, err := h.reader.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// ReadAll reads the rest of the input, used for piped prompts
func (h *InputHandler) ReadAll() (string, error) {
	data, err := io.ReadAll(h.reader)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

// Confirm asks for a yes/no confirmation
func (h *InputHandler) Confirm(prompt string, defaultYes bool) (bool, error) {
	suffix := " [y/N]: "
	if defaultYes {
		suffix = " [Y/n]: "
	}

	response, err := h.ReadLine(prompt + suffix)
	if err != nil {
		return false, err
	}

	response = strings.ToLower(strings.TrimSpace(response))
	if response == "" {
		return defaultYes, nil
	}
	return response == "y" || response == "yes", nil
}

// ReadPassword reads a secret without echoing it when stdin is a terminal
func (h *InputHandler) ReadPassword(prompt string) (string, error) {
	if h.fd < 0 {
		return h.ReadLine(prompt)
	}
	fmt.Fprint(h.echo, prompt)
	data, err := term.ReadPassword(h.fd)
	fmt.Fprintln(h.echo)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}
