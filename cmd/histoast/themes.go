package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/jmylchreest/histoast/internal/config"
	"github.com/jmylchreest/histoast/internal/dbus"
	"github.com/jmylchreest/histoast/internal/theme"
)

var themesOpts struct {
	set string
}

// themeRow is one line of the themes listing.
type themeRow struct {
	info  theme.ThemeInfo
	theme *theme.Theme
}

var themesCmd = &cobra.Command{
	Use:   "themes",
	Short: "List themes or switch the running daemon's theme",
	Long: `List the bundled themes and any user themes found in
~/.config/histoast/themes, with a color swatch for every kind. A user theme
with the same name as a bundled one replaces it.

Use --set NAME to switch the running daemon. Only toasts shown afterwards use
the new colors.`,
	Args: cobra.NoArgs,
	RunE: runThemes,
}

func init() {
	rootCmd.AddCommand(themesCmd)

	themesCmd.Flags().StringVar(&themesOpts.set, "set", "",
		"Switch the running daemon to this theme")
}

func runThemes(cmd *cobra.Command, args []string) error {
	if themesOpts.set != "" {
		client, err := dbus.NewClient()
		if err != nil {
			return err
		}
		return client.SetTheme(themesOpts.set)
	}

	loader := theme.NewLoader(config.ThemesDir(), logger)
	var rows []themeRow
	for _, info := range loader.ListThemes() {
		rows = append(rows, themeRow{info: info, theme: loader.LoadTheme(info.Name)})
	}

	out := cmd.OutOrStdout()
	return writeThemes(out, lipgloss.NewRenderer(out), rows)
}

func writeThemes(w io.Writer, r *lipgloss.Renderer, rows []themeRow) error {
	nameStyle := r.NewStyle().Width(16)
	defaultStyle := nameStyle.Bold(true).Foreground(lipgloss.Color("12"))
	sourceStyle := r.NewStyle().Foreground(lipgloss.Color("8"))

	for _, row := range rows {
		marker, name := " ", nameStyle.Render(row.info.Name)
		if row.info.IsDefault {
			marker, name = "*", defaultStyle.Render(row.info.Name)
		}
		source := "bundled"
		if !row.info.IsBundled {
			source = row.info.Path
		}

		line := fmt.Sprintf("%s %s %s  %s\n", marker, name, swatches(r, row.theme), sourceStyle.Render(source))
		if _, err := io.WriteString(w, line); err != nil {
			return err
		}
	}
	return nil
}

// swatches renders every kind of t in its own colors.
func swatches(r *lipgloss.Renderer, t *theme.Theme) string {
	if t == nil {
		return ""
	}
	var parts []string
	for _, kind := range t.Kinds() {
		pair, _ := t.Lookup(kind)
		style := r.NewStyle().
			Background(lipgloss.Color(pair.Background.Hex())).
			Foreground(lipgloss.Color(pair.Foreground.Hex())).
			Padding(0, 1)
		parts = append(parts, style.Render(kind.String()))
	}
	return strings.Join(parts, " ")
}
