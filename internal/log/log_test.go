package log

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitStderrLevels(t *testing.T) {
	var buf strings.Builder
	require.NoError(t, Init(Options{Stderr: &buf}))
	t.Cleanup(Close)

	Debug("quiet")
	Warn("loud")

	out := buf.String()
	assert.NotContains(t, out, "quiet")
	assert.Contains(t, out, "loud")
}

func TestInitVerbose(t *testing.T) {
	var buf strings.Builder
	require.NoError(t, Init(Options{Verbose: true, Stderr: &buf}))
	t.Cleanup(Close)

	Debug("chatty")
	assert.Contains(t, buf.String(), "chatty")
}

func TestInvocationIDAttr(t *testing.T) {
	var buf strings.Builder
	require.NoError(t, Init(Options{Stderr: &buf, InvocationID: "abc-123"}))
	t.Cleanup(Close)

	Error("boom")
	assert.Contains(t, buf.String(), "invocation_id=abc-123")
}
