package main

import (
	"github.com/spf13/cobra"

	"github.com/abdul-hamid-achik/pplxchat/internal/server"
	"github.com/abdul-hamid-achik/pplxchat/internal/ui"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the browser chat view",
	Long: `Serve the browser chat view over HTTP and a WebSocket. Every open page
shares the stored history; overwrite questions are asked in the page.`,
	RunE: runServe,
}

var serveAddr string

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (default from config, 127.0.0.1:8765)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	a, err := loadApp()
	if err != nil {
		return err
	}
	defer a.Close()

	addr := a.cfg.Server.Addr
	if serveAddr != "" {
		addr = serveAddr
	}

	output := ui.NewOutputHandler()
	output.Info("Serving pplxchat on http://" + addr + " (Ctrl+C to stop)")

	return server.New(a.cfg, a.kv, a.completer()).Run(cmd.Context(), addr)
}
