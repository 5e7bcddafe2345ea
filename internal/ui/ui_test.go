package ui

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStylesPassThroughWithoutColor(t *testing.T) {
	SetColorEnabled(false)
	assert.Equal(t, "ok", Green("ok"))
	assert.Equal(t, "err", Red("err"))
}

func TestStylesWrapWithColor(t *testing.T) {
	SetColorEnabled(true)
	t.Cleanup(func() { SetColorEnabled(false) })

	assert.Equal(t, "\033[31merr\033[0m", Red("err"))
	assert.Equal(t, "\033[32mok\033[0m", Green("ok"))
}

func TestWarnfAndErrorf(t *testing.T) {
	SetColorEnabled(false)
	var buf strings.Builder
	SetWriter(&buf)

	Warnf("took %dms", 12)
	Errorf("no such key %q", "foo")

	out := buf.String()
	assert.Contains(t, out, "Warning: took 12ms")
	assert.Contains(t, out, `Error: no such key "foo"`)
}
