package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/jmylchreest/histoast/internal/dbus"
)

// statusLabelWidth is the column the text status values start at.
const statusLabelWidth = 10

var statusOpts struct {
	waybar bool
	json   bool
}

// WaybarStatus represents the Waybar custom module JSON format.
type WaybarStatus struct {
	Text       string `json:"text"`
	Alt        string `json:"alt,omitempty"`
	Tooltip    string `json:"tooltip,omitempty"`
	Class      string `json:"class,omitempty"`
	Percentage int    `json:"percentage,omitempty"`
}

// jsonStatus is the --json output.
type jsonStatus struct {
	Active       uint32     `json:"active"`
	Removing     uint32     `json:"removing"`
	Queued       uint32     `json:"queued"`
	Theme        string     `json:"theme"`
	Backend      string     `json:"backend"`
	StartedAt    time.Time  `json:"started_at"`
	OldestQueued *time.Time `json:"oldest_queued,omitempty"`
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the daemon status",
	Long: `Show how many toasts are on screen, leaving and queued.

Use --waybar to print a Waybar custom module object:

  "custom/toasts": {
    "exec": "histoast status --waybar",
    "interval": 2,
    "return-type": "json",
    "on-click": "histoast close --all"
  }`,
	Args: cobra.NoArgs,
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)

	statusCmd.Flags().BoolVar(&statusOpts.waybar, "waybar", false,
		"Output Waybar-compatible JSON")
	statusCmd.Flags().BoolVar(&statusOpts.json, "json", false,
		"Output JSON")
	statusCmd.MarkFlagsMutuallyExclusive("waybar", "json")
}

func runStatus(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	client, err := dbus.NewClient()
	if err != nil {
		if statusOpts.waybar {
			return outputJSON(out, WaybarStatus{Alt: "error", Class: "error", Tooltip: err.Error()})
		}
		return err
	}

	status, err := client.Status()
	if err != nil {
		if statusOpts.waybar {
			return outputJSON(out, WaybarStatus{Alt: "offline", Class: "offline", Tooltip: "histoast daemon is not running"})
		}
		return err
	}

	switch {
	case statusOpts.waybar:
		return outputJSON(out, generateWaybarStatus(status, time.Now()))
	case statusOpts.json:
		js := jsonStatus{
			Active:    status.Active,
			Removing:  status.Removing,
			Queued:    status.Queued,
			Theme:     status.Theme,
			Backend:   status.Backend,
			StartedAt: status.StartedAt,
		}
		if !status.OldestQueued.IsZero() {
			js.OldestQueued = &status.OldestQueued
		}
		return outputJSON(out, js)
	default:
		_, err := io.WriteString(out, formatStatus(lipgloss.NewRenderer(out), status, time.Now()))
		return err
	}
}

// formatStatus renders the text status.
func formatStatus(r *lipgloss.Renderer, s dbus.Status, now time.Time) string {
	labelStyle := r.NewStyle().Foreground(lipgloss.Color("8"))
	valueStyle := r.NewStyle().Bold(true)
	queuedStyle := valueStyle.Foreground(lipgloss.Color("11"))
	faintStyle := r.NewStyle().Foreground(lipgloss.Color("8"))

	var b strings.Builder
	line := func(label, value string) {
		b.WriteString(labelStyle.Render(label + ":"))
		b.WriteString(strings.Repeat(" ", max(statusLabelWidth-len(label)-1, 1)))
		b.WriteString(value)
		b.WriteString("\n")
	}

	line("Active", valueStyle.Render(fmt.Sprint(s.Active)))
	line("Removing", valueStyle.Render(fmt.Sprint(s.Removing)))
	if s.Queued > 0 {
		queued := queuedStyle.Render(fmt.Sprint(s.Queued))
		if !s.OldestQueued.IsZero() {
			queued += " " + faintStyle.Render(fmt.Sprintf("(oldest %s)", humanize.RelTime(s.OldestQueued, now, "ago", "from now")))
		}
		line("Queued", queued)
	} else {
		line("Queued", valueStyle.Render("0"))
	}
	line("Theme", s.Theme)
	line("Backend", s.Backend)
	if !s.StartedAt.IsZero() {
		line("Started", humanize.RelTime(s.StartedAt, now, "ago", "from now"))
	}
	return b.String()
}

// generateWaybarStatus creates a WaybarStatus from the daemon status.
func generateWaybarStatus(s dbus.Status, now time.Time) WaybarStatus {
	shown := int(s.Active)
	total := shown + int(s.Queued)

	if total == 0 {
		return WaybarStatus{
			Text:    "",
			Alt:     "empty",
			Tooltip: "No toasts",
			Class:   "empty",
		}
	}

	// Anything waiting for room is more urgent than a settled stack
	class := "normal"
	if s.Queued > 0 {
		class = "critical"
	}

	lines := []string{fmt.Sprintf("Shown: %d", shown)}
	if s.Queued > 0 {
		line := fmt.Sprintf("Queued: %d", s.Queued)
		if !s.OldestQueued.IsZero() {
			line += fmt.Sprintf(" (oldest %s)", humanize.RelTime(s.OldestQueued, now, "ago", "from now"))
		}
		lines = append(lines, line)
	}
	if s.Theme != "" {
		lines = append(lines, "Theme: "+s.Theme)
	}

	return WaybarStatus{
		Text:       fmt.Sprintf("%d", total),
		Alt:        class,
		Tooltip:    strings.Join(lines, "\n"),
		Class:      class,
		Percentage: min(total, 100),
	}
}

// outputJSON writes v as a single JSON line.
func outputJSON(w io.Writer, v any) error {
	return json.NewEncoder(w).Encode(v)
}
