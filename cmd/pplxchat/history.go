package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abdul-hamid-achik/pplxchat/internal/session"
	"github.com/abdul-hamid-achik/pplxchat/internal/ui"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show or clear the stored conversation",
	Args:  cobra.NoArgs,
	RunE:  runHistory,
}

var (
	historyClear bool
	historyJSON  bool
)

func init() {
	historyCmd.Flags().BoolVar(&historyClear, "clear", false, "Delete every stored turn")
	historyCmd.Flags().BoolVar(&historyJSON, "json", false, "Print the turns as JSON")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	a, err := loadApp()
	if err != nil {
		return err
	}
	defer a.Close()

	output := ui.NewOutputHandler()
	store := a.history()

	if historyClear {
		if err := store.Clear(cmd.Context()); err != nil {
			return err
		}
		output.Success("History cleared")
		return nil
	}

	turns := store.Load(cmd.Context())
	if historyJSON {
		if turns == nil {
			turns = []session.ChatTurn{}
		}
		data, err := json.MarshalIndent(turns, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	}

	output.History(turns)
	return nil
}
