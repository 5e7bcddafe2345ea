package flags

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseVerbosity(t *testing.T) {
	tests := []struct {
		in      string
		want    Verbosity
		wantErr bool
	}{
		{in: "short", want: VerbosityShort},
		{in: "medium", want: VerbosityMedium},
		{in: "long", want: VerbosityLong},
		{in: "loud", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseVerbosity(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDescribeShort(t *testing.T) {
	var b strings.Builder
	Describe(&b, testFlagSet(), VerbosityShort, 80)

	out := b.String()
	assert.Contains(t, out, "  --jobs\n")
	assert.Contains(t, out, "  --[no]keep_going\n")
	assert.NotContains(t, out, "default")
	assert.NotContains(t, out, "internal_thing")
}

func TestDescribeMedium(t *testing.T) {
	var b strings.Builder
	Describe(&b, testFlagSet(), VerbosityMedium, 80)

	out := b.String()
	assert.Contains(t, out, `--jobs (an int; default: "8")`)
	assert.Contains(t, out, `--[no]keep_going (a bool; default: "false")`)
	assert.NotContains(t, out, "concurrent jobs")
}

func TestDescribeLong(t *testing.T) {
	var b strings.Builder
	Describe(&b, testFlagSet(), VerbosityLong, 80)

	out := b.String()
	assert.Contains(t, out, "The number of concurrent jobs to run.")
	assert.Contains(t, out, "Tags: execution, host_machine_resource_optimizations")
}

func TestWrap(t *testing.T) {
	text := "one two three four five six seven"
	wrapped := wrap(text, 16, "  ")

	for _, line := range strings.Split(strings.TrimRight(wrapped, "\n"), "\n") {
		assert.LessOrEqual(t, len(line), 16, "line %q", line)
		assert.True(t, strings.HasPrefix(line, "  "))
	}
	assert.Equal(t, strings.Fields(text), strings.Fields(wrapped))
}

func TestWrapEmpty(t *testing.T) {
	assert.Equal(t, "", wrap("", 80, "  "))
	assert.Equal(t, "", wrap("   ", 80, "  "))
}

func TestWrapLongWord(t *testing.T) {
	// A word longer than the width still lands on its own line.
	wrapped := wrap("short reallyreallylongword short", 10, "")
	assert.Equal(t, "short\nreallyreallylongword\nshort\n", wrapped)
}
