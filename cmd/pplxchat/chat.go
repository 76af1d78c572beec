package main

import (
	"context"
	"errors"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abdul-hamid-achik/pplxchat/internal/chat"
	"github.com/abdul-hamid-achik/pplxchat/internal/config"
	"github.com/abdul-hamid-achik/pplxchat/internal/llm"
	"github.com/abdul-hamid-achik/pplxchat/internal/logger"
	"github.com/abdul-hamid-achik/pplxchat/internal/tui"
	"github.com/abdul-hamid-achik/pplxchat/internal/ui"
	"github.com/abdul-hamid-achik/pplxchat/internal/workspace"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start the interactive chat (default)",
	Long: `Start the interactive chat. In a terminal this opens the full-screen UI;
otherwise prompts are read line by line from standard input.

Tab (or /mode) switches between chat and agentic mode.`,
	RunE: runChat,
}

var (
	chatModel   string
	chatAgentic bool
	chatLine    bool
)

func init() {
	for _, c := range []*cobra.Command{rootCmd, chatCmd} {
		c.Flags().StringVarP(&chatModel, "model", "m", "", "Model name (default from config)")
		c.Flags().BoolVarP(&chatAgentic, "agentic", "a", false, "Start in agentic mode")
		c.Flags().BoolVar(&chatLine, "line", false, "Use the line-oriented prompt instead of the full-screen UI")
	}
	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, args []string) error {
	a, err := loadApp()
	if err != nil {
		return err
	}
	defer a.Close()

	model := a.resolveModel(chatModel)
	mode := a.resolveMode(chatAgentic)

	if chatLine || !tui.IsTTYAvailable() {
		logger.Debug("entering line mode")
		return runLineChat(cmd.Context(), a, model, mode)
	}

	// stderr logging would draw over the alt screen; the session log file still gets everything
	logger.SetOutput(io.Discard)

	logger.Debug("entering TUI mode")
	return tui.Run(cmd.Context(), tui.RunConfig{
		ModelName: model,
		Mode:      mode,
		Models:    a.cfg.Models(),
		Setup: func(adapter *tui.Adapter) (*chat.Conversation, error) {
			completer := a.completer()
			if rl, ok := completer.(*llm.RateLimitedCompleter); ok {
				rl.SetWaitCallback(llm.SleepWait(adapter.RateLimitNotice))
			}

			var opener workspace.Opener
			switch a.cfg.Workspace.OpenWith {
			case config.OpenEditor:
				opener = adapter.EditorOpener(workspace.EditorOpener{Command: a.cfg.Workspace.Editor})
			case config.OpenNone:
				opener = workspace.NopOpener{}
			default:
				opener = adapter.PreviewOpener()
			}

			m, err := a.materializer(a.policy(adapter), opener)
			if err != nil {
				return nil, err
			}
			return chat.New(a.history(), completer, nil, m, adapter, chat.Options{
				SuppressResponseOnAction: a.cfg.Chat.SuppressResponseOnAction,
			}), nil
		},
	})
}

// runLineChat is the fallback when no terminal UI is available
func runLineChat(ctx context.Context, a *app, model, mode string) error {
	output := ui.NewOutputHandler()
	input := ui.NewInputHandler()

	conv, err := newLineConversation(a, output, input)
	if err != nil {
		return err
	}

	output.Header("pplxchat")
	output.ModelInfo(model, mode)
	conv.LoadHistory(ctx)

	for {
		if ctx.Err() != nil {
			return nil
		}
		line, err := input.ReadLine("> ")
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, "/") {
			fields := strings.Fields(line)
			switch fields[0] {
			case "/exit", "/quit":
				return nil
			case "/clear":
				if err := conv.ClearHistory(ctx); err != nil {
					output.Error(err)
				}
			case "/mode":
				if mode == config.ModeAgentic {
					mode = config.ModeChat
				} else {
					mode = config.ModeAgentic
				}
				output.ModelInfo(model, mode)
			case "/model":
				if len(fields) > 1 {
					model = a.resolveModel(fields[1])
				}
				output.ModelInfo(model, mode)
			default:
				output.Warning("Unknown command: " + fields[0] + " (try /exit, /clear, /mode, /model)")
			}
			continue
		}

		conv.Ask(ctx, chat.AskRequest{Text: line, Model: model, Mode: mode})
	}
}
