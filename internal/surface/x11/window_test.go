package x11

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLatin1(t *testing.T) {
	assert.Equal(t, "plain", latin1("plain"))
	assert.Equal(t, "caf\xe9", latin1("café"))
	assert.Equal(t, "?? ok", latin1("日本 ok"))
	assert.Len(t, latin1(strings.Repeat("x", 300)), 255)
	assert.Empty(t, latin1(""))
}
