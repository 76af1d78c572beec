package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/abdul-hamid-achik/pplxchat/internal/config"
	"github.com/abdul-hamid-achik/pplxchat/internal/llm"
	"github.com/abdul-hamid-achik/pplxchat/internal/logger"
	"github.com/abdul-hamid-achik/pplxchat/internal/permissions"
	"github.com/abdul-hamid-achik/pplxchat/internal/secrets"
	"github.com/abdul-hamid-achik/pplxchat/internal/session"
	"github.com/abdul-hamid-achik/pplxchat/internal/workspace"
)

var rootCmd = &cobra.Command{
	Use:   "pplxchat",
	Short: "Chat with Perplexity and turn answers into files",
	Long: `pplxchat sends prompts to the Perplexity chat completions API, keeps a
persistent conversation history, and in agentic mode writes the code an answer
contains into your workspace.

Run without a subcommand to start the interactive chat.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runChat,
}

var (
	flagConfig    string
	flagWorkspace []string
	flagLogLevel  string
	flagToken     string
)

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flagConfig, "config", "", "Config file (default: pplxchat.yaml, .pplxchat/config.yaml, ~/.config/pplxchat/config.yaml)")
	pf.StringArrayVarP(&flagWorkspace, "workspace", "w", nil, "Workspace root; repeatable, the first receives bare filenames (default: current directory)")
	pf.StringVar(&flagLogLevel, "log-level", "", "Log level: debug, info, warn, error")
	pf.StringVar(&flagToken, "token", "", "API key for this run (overrides the stored key)")
}

// app holds what every command needs after startup
type app struct {
	cfg *config.Config
	kv  secrets.Store
}

// loadApp reads the configuration and opens the key/value store
func loadApp() (*app, error) {
	cfg, err := config.LoadWithOptions(config.LoadOptions{
		Path:          flagConfig,
		TokenOverride: flagToken,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	level := cfg.LogLevel
	if flagLogLevel != "" {
		level = flagLogLevel
	}
	logger.SetLevelFromString(level)

	roots := flagWorkspace
	if len(roots) == 0 {
		roots = cfg.Workspace.Roots
	}
	if len(roots) == 0 {
		roots = []string{"."}
	}
	abs := make([]string, 0, len(roots))
	for _, r := range roots {
		p, err := filepath.Abs(r)
		if err != nil {
			return nil, fmt.Errorf("workspace %s: %w", r, err)
		}
		abs = append(abs, p)
	}
	cfg.Workspace.Roots = abs

	kv, err := secrets.Open(cfg.Store)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s store: %w", cfg.Store.Backend, err)
	}
	logger.Debug("config=%q store=%s roots=%v", cfg.ConfigPath(), cfg.Store.Backend, cfg.Workspace.Roots)
	return &app{cfg: cfg, kv: kv}, nil
}

func (a *app) Close() {
	if err := a.kv.Close(); err != nil {
		logger.Warn("closing store: %v", err)
	}
}

func (a *app) completer() llm.Completer {
	return llm.New(a.cfg, llm.KeySource{Override: a.cfg.APIKey, Store: a.kv})
}

func (a *app) history() *session.Store {
	return session.New(a.kv, config.KeyChatHistory)
}

// policy answers overwrite questions with prompter according to workspace.overwrite
func (a *app) policy(prompter permissions.Prompter) *permissions.Policy {
	mode, ok := permissions.ParseMode(a.cfg.Workspace.Overwrite)
	if !ok {
		logger.Warn("unknown overwrite mode %q, asking", a.cfg.Workspace.Overwrite)
	}
	return permissions.NewPolicy(mode, prompter)
}

func (a *app) materializer(confirm workspace.Confirmer, opener workspace.Opener) (*workspace.Materializer, error) {
	return workspace.New(workspace.Options{
		Roots:          a.cfg.Workspace.Roots,
		RestrictToRoot: a.cfg.Workspace.RestrictToRoot,
	}, confirm, opener)
}

// resolveMode returns the chat mode for a command, honouring --agentic
func (a *app) resolveMode(agentic bool) string {
	if agentic {
		return config.ModeAgentic
	}
	return a.cfg.Chat.DefaultMode
}

func (a *app) resolveModel(model string) string {
	if model == "" {
		return a.cfg.DefaultModel
	}
	if !a.cfg.IsKnownModel(model) {
		logger.Warn("model %s is not in the known list for %s", model, a.cfg.Provider)
	}
	return model
}
