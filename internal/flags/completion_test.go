package flags

import (
	"strings"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
)

func TestWriteCompletion(t *testing.T) {
	startup := pflag.NewFlagSet("startup", pflag.ContinueOnError)
	startup.String("output_base", "", "")
	startup.Bool("block_for_lock", true, "")

	helpFlags := pflag.NewFlagSet("help", pflag.ContinueOnError)
	helpFlags.Bool("long", false, "")

	var b strings.Builder
	WriteCompletion(&b, "anvil", startup, []string{"release", "workspace"}, []CommandSet{
		{Name: "help", ArgumentHint: "command|{startup_options}", Flags: helpFlags},
		{Name: "mobile-install", Flags: pflag.NewFlagSet("mi", pflag.ContinueOnError)},
	})
	out := b.String()

	assert.Contains(t, out, `ANVIL_COMMAND_LIST="help mobile-install"`)
	assert.Contains(t, out, "ANVIL_INFO_KEYS=\"\nrelease\nworkspace\n\"")
	assert.Contains(t, out, "--output_base=\n")
	assert.Contains(t, out, "--block_for_lock\n")
	assert.Contains(t, out, "--noblock_for_lock\n")
	assert.Contains(t, out, `ANVIL_COMMAND_HELP_ARGUMENT="command|{startup_options}"`)
	assert.Contains(t, out, "ANVIL_COMMAND_HELP_FLAGS=\"\n--long\n--nolong\n\"")
	assert.Contains(t, out, "ANVIL_COMMAND_MOBILE_INSTALL_FLAGS=\"\n\"")
	assert.NotContains(t, out, "ANVIL_COMMAND_MOBILE_INSTALL_ARGUMENT")
}

func TestCompletionSpellings(t *testing.T) {
	fs := pflag.NewFlagSet("t", pflag.ContinueOnError)
	fs.Bool("verbose", false, "")
	fs.Int("limit", 0, "")

	var all []string
	Visit(fs, func(o Option) {
		all = append(all, completionSpellings(o)...)
	})
	assert.Equal(t, []string{"--limit=", "--verbose", "--noverbose"}, all)
}
