package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/abdul-hamid-achik/pplxchat/internal/chat"
	"github.com/abdul-hamid-achik/pplxchat/internal/config"
	"github.com/abdul-hamid-achik/pplxchat/internal/logger"
	"github.com/abdul-hamid-achik/pplxchat/internal/session"
	"github.com/abdul-hamid-achik/pplxchat/internal/ui"
	"github.com/abdul-hamid-achik/pplxchat/internal/workspace"
)

func TestMain(m *testing.M) {
	logger.DisableFileLog()
	os.Exit(m.Run())
}

func TestLineSink(t *testing.T) {
	var out, errOut bytes.Buffer
	sink := lineSink(ui.NewOutputHandlerTo(&out, &errOut, false))

	sink.Post(chat.Busy("Waiting for response..."))
	sink.Post(chat.AgenticInfo("Created file: run.sh"))
	sink.Post(chat.Response("All done"))
	sink.Post(chat.LoadHistory([]session.ChatTurn{session.UserTurn("earlier question")}))

	got := out.String()
	for _, want := range []string{"Created file: run.sh", "All done", "earlier question"} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q:\n%s", want, got)
		}
	}
	if strings.Contains(got, "Waiting") {
		t.Errorf("busy notice should not be printed:\n%s", got)
	}
}

func TestLineOpener(t *testing.T) {
	output := ui.NewOutputHandlerTo(&bytes.Buffer{}, &bytes.Buffer{}, false)

	tests := []struct {
		openWith string
		check    func(workspace.Opener) bool
	}{
		{config.OpenPreview, func(o workspace.Opener) bool { _, ok := o.(ui.PreviewOpener); return ok }},
		{config.OpenEditor, func(o workspace.Opener) bool { _, ok := o.(workspace.EditorOpener); return ok }},
		{config.OpenNone, func(o workspace.Opener) bool { _, ok := o.(workspace.NopOpener); return ok }},
	}

	for _, tt := range tests {
		t.Run(tt.openWith, func(t *testing.T) {
			cfg := config.DefaultConfig()
			cfg.Workspace.OpenWith = tt.openWith
			if o := lineOpener(cfg, output); !tt.check(o) {
				t.Errorf("lineOpener(%s) = %T", tt.openWith, o)
			}
		})
	}
}

func TestLoadAppRootsAndStore(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "pplxchat.yaml")
	data := "default_model: sonar\nstore:\n  backend: memory\nchat:\n  default_mode: agentic\n"
	if err := os.WriteFile(cfgPath, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	flagConfig, flagWorkspace, flagToken = cfgPath, []string{dir, "rel"}, "tok"
	t.Cleanup(func() { flagConfig, flagWorkspace, flagToken = "", nil, "" })

	a, err := loadApp()
	if err != nil {
		t.Fatalf("loadApp() error = %v", err)
	}
	defer a.Close()

	if a.cfg.WorkspaceRoot() != dir {
		t.Errorf("first root = %q, want %q", a.cfg.WorkspaceRoot(), dir)
	}
	if second := a.cfg.Workspace.Roots[1]; !filepath.IsAbs(second) {
		t.Errorf("relative root not made absolute: %q", second)
	}
	if a.cfg.APIKey != "tok" {
		t.Errorf("token override not applied: %q", a.cfg.APIKey)
	}
	if got := a.resolveMode(false); got != config.ModeAgentic {
		t.Errorf("resolveMode(false) = %q, want the configured default", got)
	}
	if got := a.resolveModel(""); got != "sonar" {
		t.Errorf("resolveModel(\"\") = %q", got)
	}

	if err := a.kv.Put(context.Background(), config.KeyChatHistory, `[{"role":"user","content":"hi"}]`); err != nil {
		t.Fatal(err)
	}
	if turns := a.history().Load(context.Background()); len(turns) != 1 {
		t.Errorf("history turns = %v", turns)
	}
}

func TestAskHelpDescribesBothWritePaths(t *testing.T) {
	for _, want := range []string{"named file", "--agentic"} {
		if !strings.Contains(askCmd.Long, want) {
			t.Errorf("ask help missing %q:\n%s", want, askCmd.Long)
		}
	}
}
