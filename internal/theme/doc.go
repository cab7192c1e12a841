// Package theme maps toast kinds to color pairs.
// Themes are TOML files loaded from ~/.config/histoast/themes/, falling back
// to the bundled themes embedded in the binary. A loaded user theme can be
// watched for changes and hot-reloaded.
package theme
