// Package model defines the core data structures for histoast.
package model

import (
	"fmt"
	"strings"
)

// Kind is the category of a toast. It selects the color pair from the theme.
type Kind int

// Toast kinds. Log is the fallback kind used when a theme has no colors for
// the requested one.
const (
	KindLog Kind = iota
	KindInfo
	KindWarning
	KindError
	KindSuccess
)

// KindNames maps kinds to their configuration names.
var KindNames = map[Kind]string{
	KindLog:     "log",
	KindInfo:    "info",
	KindWarning: "warning",
	KindError:   "error",
	KindSuccess: "success",
}

// AllKinds returns every kind in declaration order.
func AllKinds() []Kind {
	return []Kind{KindLog, KindInfo, KindWarning, KindError, KindSuccess}
}

// String returns the configuration name of the kind.
func (k Kind) String() string {
	if name, ok := KindNames[k]; ok {
		return name
	}
	return "unknown"
}

// Valid reports whether k is one of the declared kinds.
func (k Kind) Valid() bool {
	_, ok := KindNames[k]
	return ok
}

// ParseKind parses a kind name, case-insensitively.
func ParseKind(s string) (Kind, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for k, n := range KindNames {
		if n == name {
			return k, nil
		}
	}
	return KindLog, fmt.Errorf("unknown kind %q, must be one of: log, info, warning, error, success", s)
}

// MarshalText implements encoding.TextMarshaler so kinds can key TOML tables.
func (k Kind) MarshalText() ([]byte, error) {
	if !k.Valid() {
		return nil, fmt.Errorf("invalid kind %d", int(k))
	}
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Kind) UnmarshalText(text []byte) error {
	parsed, err := ParseKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}
