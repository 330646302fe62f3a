package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"mod-loader/core/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var configDir string

// RootCmd is the mod-loader command; it does nothing by itself.
var RootCmd = &cobra.Command{
	Use:   "mod-loader",
	Short: "Load game archives and mods into one resource namespace",
	Long: `mod-loader discovers game archives and mods, orders the mods by their declared
dependencies, serves their files from a memory-bounded resource store and applies
their patches batch by batch.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the command line. SIGINT and SIGTERM cancel the command context, which stops
// a load cycle between mods and shuts the server down.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := RootCmd.ExecuteContext(ctx)
	stop()
	if err == nil {
		return
	}

	// The development config prints readable timestamps on the console.
	l, logErr := logger.New(&logger.Config{Level: "debug", Format: "console"})
	if logErr != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	l.Error("Command failed", zap.Error(err))
	_ = l.Sync()
	os.Exit(1)
}

func init() {
	RootCmd.PersistentFlags().StringVar(&configDir, "config-dir", ".", "directory holding config.toml and .env")
}
