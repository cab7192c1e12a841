package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/histoast/internal/config"
	"github.com/jmylchreest/histoast/internal/daemon"
)

var daemonOpts struct {
	backend string
	noBus   bool
}

var daemonCmd = &cobra.Command{
	Use:   "daemon",
	Short: "Run the toast daemon",
	Long: `Run the toast daemon in the foreground.

The daemon claims org.freedesktop.Notifications on the session bus and shows
every incoming notification as a toast. The configuration file is watched and
most sections apply without a restart.

Use --backend memory to run without a display, for example in CI.`,
	Args: cobra.NoArgs,
	RunE: runDaemon,
}

func init() {
	rootCmd.AddCommand(daemonCmd)

	daemonCmd.Flags().StringVar(&daemonOpts.backend, "backend", "",
		"Surface backend (x11, memory; default from config)")
	daemonCmd.Flags().BoolVar(&daemonOpts.noBus, "no-bus", false,
		"Do not claim any D-Bus name")
}

func runDaemon(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadDaemonConfig(globalOpts.configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	d, err := daemon.New(cfg, daemon.Options{
		ConfigPath: globalOpts.configPath,
		Backend:    daemonOpts.backend,
		Version:    version,
		NoBus:      daemonOpts.noBus,
	}, logger)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("starting histoast daemon", "version", version)
	return d.Run(ctx)
}
