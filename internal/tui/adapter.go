package tui

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/abdul-hamid-achik/pplxchat/internal/chat"
	"github.com/abdul-hamid-achik/pplxchat/internal/llm"
	"github.com/abdul-hamid-achik/pplxchat/internal/permissions"
	"github.com/abdul-hamid-achik/pplxchat/internal/workspace"
)

// Adapter lets a Conversation talk to the running program. It is a chat.Sink,
// a permissions.Prompter and a source of workspace.Openers.
type Adapter struct {
	send func(tea.Msg)
}

// NewAdapter creates an adapter that delivers messages with send, usually tea.Program.Send
func NewAdapter(send func(tea.Msg)) *Adapter {
	return &Adapter{send: send}
}

// Post forwards a conversation message
func (a *Adapter) Post(msg chat.Message) {
	a.send(PostMsg{Message: msg})
}

// Prompt shows the overwrite question and waits for y/n/a/v
func (a *Adapter) Prompt(ctx context.Context, path, question string) (permissions.Decision, error) {
	reply := make(chan permissions.Decision, 1)
	a.send(ConfirmRequestMsg{Path: path, Question: question, Reply: reply})

	select {
	case d := <-reply:
		return d, nil
	case <-ctx.Done():
		return permissions.DecisionDeny, workspace.ErrDismissed
	}
}

// PreviewOpener shows each written file inline
func (a *Adapter) PreviewOpener() workspace.Opener {
	return workspace.OpenerFunc(func(_ context.Context, path, content string) error {
		a.send(PreviewMsg{Path: path, Content: content})
		return nil
	})
}

// EditorOpener hands the terminal to the editor and waits for it to exit
func (a *Adapter) EditorOpener(editor workspace.EditorOpener) workspace.Opener {
	return workspace.OpenerFunc(func(ctx context.Context, path, _ string) error {
		cmd, err := editor.Prepare(ctx, path)
		if err != nil {
			return err
		}
		done := make(chan error, 1)
		a.send(EditMsg{Cmd: cmd, Done: done})

		select {
		case err := <-done:
			return err
		case <-ctx.Done():
			return ctx.Err()
		}
	})
}

// RateLimitNotice reports a rate limiter wait in the status bar
func (a *Adapter) RateLimitNotice(info llm.WaitInfo) {
	a.Post(chat.Busy(fmt.Sprintf("Rate limited, waiting %s", info.Duration.Round(time.Second))))
}
