package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abdul-hamid-achik/pplxchat/internal/chat"
	"github.com/abdul-hamid-achik/pplxchat/internal/config"
	"github.com/abdul-hamid-achik/pplxchat/internal/llm"
	"github.com/abdul-hamid-achik/pplxchat/internal/logger"
	"github.com/abdul-hamid-achik/pplxchat/internal/permissions"
	"github.com/abdul-hamid-achik/pplxchat/internal/ui"
	"github.com/abdul-hamid-achik/pplxchat/internal/workspace"
)

// errAskFailed marks a completion failure that was already shown to the user
var errAskFailed = errors.New("completion failed")

var askCmd = &cobra.Command{
	Use:   "ask [prompt...]",
	Short: "Send one prompt and print the answer",
	Long: `Send one prompt and print the answer. With no arguments the prompt is read
from standard input.

When the prompt asks for a named file ("create a file named run.sh"), the first
code block of the answer is written to the workspace under that name. With
--agentic, a file the answer itself announces is written as well.`,
	Example: `  pplxchat ask "what is a goroutine"
  pplxchat ask --agentic "write a bash script to list large files"
  echo "create config.yaml for a redis sidecar" | pplxchat ask -a`,
	RunE: runAsk,
}

var (
	askModel   string
	askAgentic bool
)

func init() {
	askCmd.Flags().StringVarP(&askModel, "model", "m", "", "Model name (default from config)")
	askCmd.Flags().BoolVarP(&askAgentic, "agentic", "a", false, "Write files the answer describes")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	a, err := loadApp()
	if err != nil {
		return err
	}
	defer a.Close()

	output := ui.NewOutputHandler()
	input := ui.NewInputHandler()

	prompt := strings.Join(args, " ")
	if strings.TrimSpace(prompt) == "" {
		prompt, err = input.ReadAll()
		if err != nil {
			return fmt.Errorf("reading prompt: %w", err)
		}
	}
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return fmt.Errorf("ask requires a prompt")
	}

	conv, err := newLineConversation(a, output, input)
	if err != nil {
		return err
	}

	logger.Debug("one-shot ask, model=%s agentic=%v", askModel, askAgentic)
	reply := conv.Ask(cmd.Context(), chat.AskRequest{
		Text:  prompt,
		Model: a.resolveModel(askModel),
		Mode:  a.resolveMode(askAgentic),
	})
	if !reply.Result.OK() {
		return errAskFailed
	}
	return nil
}

// newLineConversation wires a conversation to plain terminal output
func newLineConversation(a *app, output *ui.OutputHandler, input *ui.InputHandler) (*chat.Conversation, error) {
	completer := a.completer()
	if rl, ok := completer.(*llm.RateLimitedCompleter); ok {
		rl.SetWaitCallback(ui.NewSpinner(output).Wait)
	}

	policy := a.policy(permissions.NewLinePrompter(input, output))
	m, err := a.materializer(policy, lineOpener(a.cfg, output))
	if err != nil {
		return nil, err
	}

	return chat.New(a.history(), completer, nil, m, lineSink(output), chat.Options{
		SuppressResponseOnAction: a.cfg.Chat.SuppressResponseOnAction,
	}), nil
}

func lineOpener(cfg *config.Config, output *ui.OutputHandler) workspace.Opener {
	switch cfg.Workspace.OpenWith {
	case config.OpenEditor:
		return workspace.EditorOpener{Command: cfg.Workspace.Editor}
	case config.OpenNone:
		return workspace.NopOpener{}
	default:
		return ui.PreviewOpener{Output: output}
	}
}

// lineSink prints conversation messages. Busy notices only go to the log.
func lineSink(output *ui.OutputHandler) chat.Sink {
	return chat.SinkFunc(func(msg chat.Message) {
		switch m := msg.(type) {
		case chat.TextMessage:
			switch m.Command {
			case chat.CommandResponse:
				output.Response(m.Text)
			case chat.CommandAgenticInfo:
				output.AgenticInfo(m.Text)
			case chat.CommandBusy:
				if m.Text != "" {
					logger.Debug("busy: %s", m.Text)
				}
			}
		case chat.HistoryMessage:
			output.History(m.History)
		case chat.OpenFileMessage:
			output.FilePreview(m.Path, m.Text)
		default:
			logger.Debug("ignoring %s message", msg.Name())
		}
	})
}
