package tui

import (
	"context"
	"errors"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/abdul-hamid-achik/pplxchat/internal/chat"
)

// RunConfig contains configuration for running the TUI
type RunConfig struct {
	ModelName string
	Mode      string
	Models    []string

	// Setup builds the conversation once the adapter exists
	Setup func(a *Adapter) (*chat.Conversation, error)
}

// Run starts the TUI and blocks until it exits or ctx is cancelled
func Run(ctx context.Context, cfg RunConfig) error {
	if !IsTTYAvailable() {
		return fmt.Errorf("TUI mode requires a terminal")
	}

	model := NewModel(cfg.ModelName, cfg.Mode, cfg.Models)
	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	adapter := NewAdapter(program.Send)

	conv, err := cfg.Setup(adapter)
	if err != nil {
		return err
	}

	askCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	// callbacks are shared by pointer, so setting them after NewProgram is fine
	model.SetAskCallback(func(req chat.AskRequest) {
		conv.Ask(askCtx, req)
	})
	model.SetClearCallback(func() {
		if err := conv.ClearHistory(askCtx); err != nil {
			tuiLog.Error("clear history: %v", err)
			adapter.Post(chat.AgenticInfo("Could not clear history: " + err.Error()))
		}
	})
	model.SetOnReady(func() {
		conv.LoadHistory(askCtx)
	})

	if _, err := program.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("error running TUI: %w", err)
	}
	return nil
}

// IsTTYAvailable checks if stdout is a terminal
func IsTTYAvailable() bool {
	fileInfo, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return (fileInfo.Mode() & os.ModeCharDevice) != 0
}
