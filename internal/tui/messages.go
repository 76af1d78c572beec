package tui

import (
	"os/exec"

	"github.com/abdul-hamid-achik/pplxchat/internal/chat"
	"github.com/abdul-hamid-achik/pplxchat/internal/permissions"
)

// PostMsg carries one conversation message into the program
type PostMsg struct {
	Message chat.Message
}

// ConfirmRequestMsg asks the user about an overwrite. Exactly one decision is
// sent on Reply.
type ConfirmRequestMsg struct {
	Path     string
	Question string
	Reply    chan<- permissions.Decision
}

// PreviewMsg shows a written file inline
type PreviewMsg struct {
	Path    string
	Content string
}

// EditMsg suspends the program and runs an editor on a written file
type EditMsg struct {
	Cmd  *exec.Cmd
	Done chan<- error
}

// editorExitedMsg is sent when the editor process returns
type editorExitedMsg struct {
	prev AppState
}

// TickMsg is sent for spinner animation
type TickMsg struct{}

// QuitMsg signals the TUI to quit
type QuitMsg struct{}
