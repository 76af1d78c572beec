package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abdul-hamid-achik/pplxchat/internal/config"
	"github.com/abdul-hamid-achik/pplxchat/internal/ui"
)

var setKeyCmd = &cobra.Command{
	Use:   "set-key [key]",
	Short: "Store the API key",
	Long: `Store the API key in the configured store. Without an argument the key is
read from the terminal without echo.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSetKey,
}

func init() {
	rootCmd.AddCommand(setKeyCmd)
}

func runSetKey(cmd *cobra.Command, args []string) error {
	a, err := loadApp()
	if err != nil {
		return err
	}
	defer a.Close()

	output := ui.NewOutputHandler()

	var key string
	if len(args) == 1 {
		key = args[0]
	} else {
		key, err = ui.NewInputHandler().ReadPassword("API key: ")
		if err != nil {
			return fmt.Errorf("reading key: %w", err)
		}
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return fmt.Errorf("the API key cannot be empty")
	}

	if err := a.kv.Put(cmd.Context(), config.KeyAPIKey, key); err != nil {
		return err
	}
	output.Success("API key saved")
	return nil
}
