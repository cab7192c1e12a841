package main

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/histoast/internal/dbus"
)

var closeOpts struct {
	all bool
}

var closeCmd = &cobra.Command{
	Use:   "close [ID]",
	Short: "Close a toast, or all of them",
	Long: `Close the toast with the given id, as printed by 'histoast send', or
every toast including the queued ones with --all.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runClose,
}

func init() {
	rootCmd.AddCommand(closeCmd)

	closeCmd.Flags().BoolVarP(&closeOpts.all, "all", "a", false,
		"Close every toast")
}

func runClose(cmd *cobra.Command, args []string) error {
	if closeOpts.all == (len(args) == 1) {
		return errors.New("specify either an id or --all")
	}

	client, err := dbus.NewClient()
	if err != nil {
		return err
	}

	if closeOpts.all {
		return client.CloseAll()
	}

	id, err := strconv.ParseUint(args[0], 10, 32)
	if err != nil || id == 0 {
		return fmt.Errorf("invalid notification id %q", args[0])
	}
	return client.Close(uint32(id))
}
