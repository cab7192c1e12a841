package model

import "time"

// Builder assembles a Config. The zero configuration is a Log toast that never
// closes automatically.
type Builder struct {
	cfg Config
}

// NewBuilder returns a builder with default values.
func NewBuilder() *Builder {
	return &Builder{cfg: Config{Kind: KindLog}}
}

// Kind sets the toast kind.
func (b *Builder) Kind(kind Kind) *Builder {
	b.cfg.Kind = kind
	return b
}

// Text sets the toast text.
func (b *Builder) Text(text string) *Builder {
	b.cfg.Content.Text = text
	return b
}

// Icon sets the toast icon.
func (b *Builder) Icon(icon string) *Builder {
	b.cfg.Content.Icon = icon
	return b
}

// Content replaces text and icon at once.
func (b *Builder) Content(content Content) *Builder {
	b.cfg.Content = content
	return b
}

// AutoClose sets the delay after which the toast hides itself.
// Zero disables auto close.
func (b *Builder) AutoClose(delay time.Duration) *Builder {
	b.cfg.AutoClose = delay
	return b
}

// OnClick sets the click callback.
func (b *Builder) OnClick(fn ClickFunc) *Builder {
	b.cfg.OnClick = fn
	return b
}

// Build returns the assembled config.
func (b *Builder) Build() Config {
	return b.cfg
}
