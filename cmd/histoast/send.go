package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/histoast/internal/dbus"
	"github.com/jmylchreest/histoast/internal/model"
)

var sendOpts struct {
	kind    string
	timeout time.Duration
	icon    string
	appName string
	quiet   bool
}

var sendCmd = &cobra.Command{
	Use:   "send TEXT...",
	Short: "Show a toast through the running daemon",
	Long: `Show a toast through the running daemon.

The first line of TEXT becomes the summary and the rest the body. The id
printed on success can be passed to 'histoast close'.

A timeout of 0 keeps the toast until it is clicked or closed. Leave the flag
unset to use the daemon's per-kind default.`,
	Example: `  histoast send --kind success "Build finished"
  histoast send --kind error --timeout 0 "Disk full" "/home has 0 bytes free"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSend,
}

func init() {
	rootCmd.AddCommand(sendCmd)

	sendCmd.Flags().StringVarP(&sendOpts.kind, "kind", "k", "info",
		"Toast kind (log, info, warning, error, success)")
	sendCmd.Flags().DurationVarP(&sendOpts.timeout, "timeout", "t", -1,
		"Auto-close delay (0 = never; default from daemon config)")
	sendCmd.Flags().StringVar(&sendOpts.icon, "icon", "",
		"Icon name or path")
	sendCmd.Flags().StringVar(&sendOpts.appName, "app-name", "histoast",
		"Application name reported to the daemon")
	sendCmd.Flags().BoolVarP(&sendOpts.quiet, "quiet", "q", false,
		"Do not print the notification id")
}

func runSend(cmd *cobra.Command, args []string) error {
	req, err := buildSendRequest(args)
	if err != nil {
		return err
	}

	client, err := dbus.NewClient()
	if err != nil {
		return err
	}

	id, err := client.Send(req)
	if err != nil {
		return err
	}
	if !sendOpts.quiet {
		fmt.Fprintln(cmd.OutOrStdout(), id)
	}
	return nil
}

// buildSendRequest turns the send flags and arguments into a request.
func buildSendRequest(args []string) (dbus.SendRequest, error) {
	kind, err := model.ParseKind(sendOpts.kind)
	if err != nil {
		return dbus.SendRequest{}, fmt.Errorf("invalid --kind: %w", err)
	}

	text := strings.Join(args, " ")
	summary, body, _ := strings.Cut(text, "\n")
	if len(args) > 1 && !strings.Contains(text, "\n") {
		summary, body = args[0], strings.Join(args[1:], " ")
	}

	return dbus.SendRequest{
		AppName: sendOpts.appName,
		Kind:    kind,
		Summary: summary,
		Body:    body,
		Icon:    sendOpts.icon,
		Timeout: sendOpts.timeout,
	}, nil
}
