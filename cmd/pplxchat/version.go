package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abdul-hamid-achik/pplxchat/internal/logger"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Args:  cobra.NoArgs,
	// no session log for a version check
	PersistentPreRun: func(*cobra.Command, []string) {
		logger.DisableFileLog()
	},
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "pplxchat version %s\n", Version)
	},
}

func init() {
	rootCmd.Version = Version
	rootCmd.SetVersionTemplate("pplxchat version {{.Version}}\n")
	rootCmd.AddCommand(versionCmd)
}
