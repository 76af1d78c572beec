package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/abdul-hamid-achik/pplxchat/internal/debug"
	"github.com/abdul-hamid-achik/pplxchat/internal/logger"
)

var Version = "dev"

func main() {
	// Ensure log file is closed on exit
	defer logger.CloseLogFile()

	// PPLXCHAT_DEBUG=1 writes a JSONL trace of every ask
	if debug.Enabled() {
		if err := debug.Init(); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: debug trace disabled: %v\n", err)
		}
	}
	defer debug.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()

	if err != nil {
		// a failed completion has already been printed
		if !errors.Is(err, errAskFailed) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		debug.Close()
		logger.CloseLogFile()
		os.Exit(1)
	}
}
