package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/anvil-build/anvil/internal/flags"
	"github.com/anvil-build/anvil/internal/runtime"
	"github.com/anvil-build/anvil/internal/workspace"
)

var (
	helpVerbosityFlag string
	helpLongFlag      bool
	helpShortFlag     bool
)

var helpCmd = &cobra.Command{
	Use:   "help [command|topic]",
	Short: "Prints help for commands, or the index",
	Long: `Prints the command index, help for one command, or one of the help topics:
startup_options, target-syntax, info-keys, completion, flags-as-json,
everything-as-html.`,
	RunE: runHelp,
}

func runHelp(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	verbosity, err := helpVerbosity()
	if err != nil {
		return runtime.WithCode(runtime.CommandLineError, err)
	}
	width := flags.TerminalWidth(os.Stdout)

	if len(args) == 0 {
		printVersionBanner(out)
		printCommandIndex(out)
		return nil
	}
	if len(args) != 1 {
		return runtime.Errorf(runtime.CommandLineError, "you must specify exactly one command")
	}
	subject := args[0]

	// Help topics take precedence over command names.
	switch subject {
	case "startup_options":
		printVersionBanner(out)
		fmt.Fprint(out, startupOptionsTopic)
		flags.Describe(out, startupFlags, verbosity, width)
		return nil
	case "target-syntax":
		printVersionBanner(out)
		fmt.Fprint(out, targetSyntaxTopic)
		return nil
	case "info-keys":
		for _, item := range infoItems() {
			fmt.Fprintf(out, "%-23s %s\n", item.name, item.description)
		}
		return nil
	case "completion":
		flags.WriteCompletion(out, product, startupFlags, infoKeyNames(), commandSets())
		return nil
	case "flags-as-json":
		sets := append([]flags.CommandSet{{Name: "startup", Flags: startupFlags}}, commandSets()...)
		return flags.WriteJSON(out, sets)
	case "everything-as-html":
		return flags.WriteHTML(out, product, startupFlags, commonFlags, htmlCommands())
	}

	target := runtime.Find(rootCmd, subject)
	if target == nil {
		return runtime.Errorf(runtime.CommandLineError,
			"%q is not a known command or help topic", subject)
	}
	printVersionBanner(out)
	printCommandHelp(out, target, verbosity, width)
	return nil
}

func helpVerbosity() (flags.Verbosity, error) {
	if helpLongFlag {
		return flags.VerbosityLong, nil
	}
	if helpShortFlag {
		return flags.VerbosityShort, nil
	}
	return flags.ParseVerbosity(helpVerbosityFlag)
}

// printVersionBanner writes the right-aligned "[anvil release x.y.z]" line
// that precedes most help output.
func printVersionBanner(w io.Writer) {
	fmt.Fprintf(w, "%80s\n", fmt.Sprintf("[%s %s]", product, releaseName()))
}

func printCommandIndex(w io.Writer) {
	fmt.Fprintf(w, "Usage: %s <command> <options> ...\n\n", product)
	fmt.Fprint(w, "Available commands:\n")
	for _, c := range runtime.VisibleCommands(rootCmd) {
		fmt.Fprintf(w, "  %-19s %s\n", c.Name(), c.Short)
	}
	fmt.Fprint(w, "\nGetting more help:\n")
	fmt.Fprintf(w, "  %s help <command>\n", product)
	fmt.Fprint(w, "                   Prints help and options for <command>.\n")
	fmt.Fprintf(w, "  %s help startup_options\n", product)
	fmt.Fprintf(w, "                   Options that control how %s itself starts up.\n", product)
	fmt.Fprintf(w, "  %s help target-syntax\n", product)
	fmt.Fprint(w, "                   Explains the syntax for specifying targets.\n")
	fmt.Fprintf(w, "  %s help info-keys\n", product)
	fmt.Fprint(w, "                   Displays a list of keys used by the info command.\n")
}

func printCommandHelp(w io.Writer, cmd *cobra.Command, v flags.Verbosity, width int) {
	fmt.Fprintf(w, "Usage: %s %s\n\n", product, cmd.Use)
	long := cmd.Long
	if long == "" {
		long = cmd.Short + "."
	}
	fmt.Fprintf(w, "%s\n", long)

	if meta := runtime.MetadataFor(cmd); len(meta.Inherits) > 0 {
		fmt.Fprint(w, "\nInherits all options from:")
		for _, name := range meta.Inherits {
			fmt.Fprintf(w, " %s", name)
		}
		fmt.Fprintln(w)
	}

	own := cmd.LocalNonPersistentFlags()
	if len(flags.DocumentedOptions(own)) > 0 {
		fmt.Fprintf(w, "\nOptions for %q:\n", cmd.Name())
		flags.Describe(w, own, v, width)
	}
	if len(flags.DocumentedOptions(commonFlags)) > 0 {
		fmt.Fprint(w, "\nOptions common to all commands:\n")
		flags.Describe(w, commonFlags, v, width)
	}
}

// commandSets builds the per-command flag sets the completion and JSON dumps
// enumerate: each command's own options plus the common options.
func commandSets() []flags.CommandSet {
	var sets []flags.CommandSet
	for _, c := range runtime.Commands(rootCmd) {
		sets = append(sets, flags.CommandSet{
			Name:         c.Name(),
			ArgumentHint: runtime.MetadataFor(c).Completion,
			Flags:        flags.Merged(c.Name(), c.LocalNonPersistentFlags(), commonFlags),
		})
	}
	return sets
}

func htmlCommands() []flags.HTMLCommand {
	var cmds []flags.HTMLCommand
	for _, c := range runtime.Commands(rootCmd) {
		meta := runtime.MetadataFor(c)
		cmds = append(cmds, flags.HTMLCommand{
			Name:     c.Name(),
			Short:    c.Short,
			Hidden:   c.Hidden,
			Inherits: meta.Inherits,
			Flags:    c.LocalNonPersistentFlags(),
		})
	}
	return cmds
}

const startupOptionsTopic = `Startup options

These options change how ` + product + ` itself starts up: where it keeps
per-workspace state and how it reads rc files. They may appear before the
command name or in the "startup" scope of an anvilrc file.

`

const targetSyntaxTopic = `Target syntax

Targets name things in the workspace. A target label has the form

    //path/to/package:name

where the path is relative to the workspace root (the directory containing
` + workspace.MarkerFile + `). The package part may be omitted inside a package, and
":all" selects every target in a package. "..." recurses: //foo/... selects
every target under foo.
`

func init() {
	helpCmd.Flags().StringVar(&helpVerbosityFlag, "help_verbosity", "medium",
		"Select the verbosity of the help command: short, medium, or long.")
	helpCmd.Flags().BoolVarP(&helpLongFlag, "long", "l", false,
		"Show full description of each option, instead of just its name.")
	helpCmd.Flags().BoolVar(&helpShortFlag, "short", false,
		"Show only the names of the options, not their types or meanings.")
	flags.Annotate(helpCmd.Flags(), "help_verbosity", flags.Doc{Category: flags.CategoryLogging, Effects: []flags.EffectTag{flags.EffectAffectsOutputs, flags.EffectTerminalOutput}})
	flags.Annotate(helpCmd.Flags(), "long", flags.Doc{Category: flags.CategoryLogging, Effects: []flags.EffectTag{flags.EffectTerminalOutput}})
	flags.Annotate(helpCmd.Flags(), "short", flags.Doc{Category: flags.CategoryLogging, Effects: []flags.EffectTag{flags.EffectTerminalOutput}})

	runtime.Register(helpCmd, runtime.Metadata{
		Completion: "command|{startup_options,target-syntax,info-keys}",
	})
	rootCmd.SetHelpCommand(helpCmd)
	rootCmd.AddCommand(helpCmd)
}
