package flags

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/pflag"
)

// CommandSet is one command's contribution to the completion dump.
type CommandSet struct {
	// Name is the command name as typed, e.g. "mobile-install".
	Name string
	// ArgumentHint is the argument-completion hint, empty when the command
	// takes no completable arguments.
	ArgumentHint string
	// Flags holds every option the command accepts, common options included.
	Flags *pflag.FlagSet
}

// WriteCompletion emits the shell-variable dump consumed by the completion
// script: the command list, info keys, startup options, and per-command flag
// spellings.
func WriteCompletion(w io.Writer, product string, startup *pflag.FlagSet, infoKeys []string, commands []CommandSet) {
	prefix := strings.ToUpper(product)

	names := make([]string, len(commands))
	for i, c := range commands {
		names[i] = c.Name
	}
	fmt.Fprintf(w, "%s_COMMAND_LIST=%q\n", prefix, strings.Join(names, " "))

	fmt.Fprintf(w, "%s_INFO_KEYS=\"\n", prefix)
	for _, k := range infoKeys {
		fmt.Fprintln(w, k)
	}
	fmt.Fprintln(w, "\"")

	fmt.Fprintf(w, "%s_STARTUP_OPTIONS=\"\n", prefix)
	writeSpellings(w, startup)
	fmt.Fprintln(w, "\"")

	for _, c := range commands {
		varName := EnvVarName(c.Name)
		if c.ArgumentHint != "" {
			fmt.Fprintf(w, "%s_COMMAND_%s_ARGUMENT=%q\n", prefix, varName, c.ArgumentHint)
		}
		fmt.Fprintf(w, "%s_COMMAND_%s_FLAGS=\"\n", prefix, varName)
		writeSpellings(w, c.Flags)
		fmt.Fprintln(w, "\"")
	}
}

func writeSpellings(w io.Writer, fs *pflag.FlagSet) {
	if fs == nil {
		return
	}
	for _, o := range DocumentedOptions(fs) {
		for _, s := range completionSpellings(o) {
			fmt.Fprintln(w, s)
		}
	}
}

// completionSpellings returns the spellings the completion script offers for
// an option: "--name" plus "--noname" for booleans, "--name=" for value
// options.
func completionSpellings(o Option) []string {
	if o.IsBool() {
		return []string{"--" + o.Flag.Name, "--no" + o.Flag.Name}
	}
	return []string{"--" + o.Flag.Name + "="}
}
