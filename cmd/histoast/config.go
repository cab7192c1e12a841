package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"

	"github.com/jmylchreest/histoast/internal/config"
)

var configOpts struct {
	init  bool
	force bool
	path  bool
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print or initialise the daemon configuration",
	Long: `Print the effective daemon configuration as TOML.

Use --init to write the defaults to the config file, and --path to print
where the file lives.`,
	Args: cobra.NoArgs,
	RunE: runConfig,
}

func init() {
	rootCmd.AddCommand(configCmd)

	configCmd.Flags().BoolVar(&configOpts.init, "init", false,
		"Write the default configuration")
	configCmd.Flags().BoolVar(&configOpts.force, "force", false,
		"Overwrite an existing file with --init")
	configCmd.Flags().BoolVar(&configOpts.path, "path", false,
		"Print the config file path")
	configCmd.MarkFlagsMutuallyExclusive("init", "path")
}

func runConfig(cmd *cobra.Command, args []string) error {
	path := globalOpts.configPath
	if path == "" {
		path = config.DaemonConfigPath()
	}
	out := cmd.OutOrStdout()

	switch {
	case configOpts.path:
		_, err := fmt.Fprintln(out, path)
		return err
	case configOpts.init:
		if _, err := os.Stat(path); err == nil && !configOpts.force {
			return fmt.Errorf("%s already exists (use --force to overwrite)", path)
		} else if err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("failed to stat config file: %w", err)
		}
		if err := config.SaveDaemonConfig(config.DefaultDaemonConfig(), path); err != nil {
			return err
		}
		_, err := fmt.Fprintln(out, "wrote", path)
		return err
	}

	cfg, err := config.LoadDaemonConfig(path)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	data, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	_, err = out.Write(data)
	return err
}
