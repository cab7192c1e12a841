package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindString(t *testing.T) {
	tests := []struct {
		kind     Kind
		expected string
	}{
		{KindLog, "log"},
		{KindInfo, "info"},
		{KindWarning, "warning"},
		{KindError, "error"},
		{KindSuccess, "success"},
		{Kind(-1), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.kind.String())
		})
	}
}

func TestParseKind(t *testing.T) {
	for _, k := range AllKinds() {
		parsed, err := ParseKind(k.String())
		require.NoError(t, err)
		assert.Equal(t, k, parsed)
	}

	parsed, err := ParseKind("  WARNING ")
	require.NoError(t, err)
	assert.Equal(t, KindWarning, parsed)

	_, err = ParseKind("critical")
	assert.Error(t, err)
}

func TestKind_TextMarshaling(t *testing.T) {
	var k Kind
	require.NoError(t, k.UnmarshalText([]byte("success")))
	assert.Equal(t, KindSuccess, k)

	text, err := KindError.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "error", string(text))

	_, err = Kind(17).MarshalText()
	assert.Error(t, err)

	assert.Error(t, k.UnmarshalText([]byte("bogus")))
}
