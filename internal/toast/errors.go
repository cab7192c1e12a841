package toast

import (
	"errors"

	"github.com/jmylchreest/histoast/internal/model"
)

var (
	// ErrUnsupportedKind is returned when the theme has colors for neither
	// the requested kind nor the log fallback.
	ErrUnsupportedKind = errors.New("unsupported kind")
	// ErrStopped is returned by Show after Stop.
	ErrStopped = errors.New("manager stopped")
)

// ConfigError reports a toast configuration that cannot be shown.
type ConfigError struct {
	Kind  model.Kind
	Cause error
}

func (e *ConfigError) Error() string {
	return "invalid toast config (kind " + e.Kind.String() + "): " + e.Cause.Error()
}

func (e *ConfigError) Unwrap() error {
	return e.Cause
}
