// Package cli implements the anvil command-line client: the command
// registry, startup-option handling, rc-file injection, and the commands
// themselves. One file per command; root.go owns dispatch.
package cli

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/anvil-build/anvil/internal/config"
	"github.com/anvil-build/anvil/internal/flags"
	"github.com/anvil-build/anvil/internal/history"
	"github.com/anvil-build/anvil/internal/log"
	"github.com/anvil-build/anvil/internal/rcfile"
	"github.com/anvil-build/anvil/internal/runtime"
	"github.com/anvil-build/anvil/internal/ui"
	"github.com/anvil-build/anvil/internal/workspace"
)

// product is the binary name, used in usage text and shell variables.
const product = "anvil"

// Startup options parse before the command name and shape the invocation
// itself; common options apply to every command. Both live on the root
// command's persistent flag set, but help documents them separately, so they
// are declared on separate sets and merged in.
var (
	startupFlags = pflag.NewFlagSet("startup", pflag.ContinueOnError)
	commonFlags  = pflag.NewFlagSet("common", pflag.ContinueOnError)

	outputBaseFlag   string
	anvilrcFlag      string
	ignoreAllRcFiles bool
	blockForLock     bool
	maxIdleSecs      int
	recordHistory    bool
	verbose          bool
)

// Per-invocation state resolved in Execute / PersistentPreRunE.
var (
	currentWorkspace *workspace.Workspace
	outputBase       string
	globalCfg        *config.Global
	invocationID     string
	commandName      string
)

var rootCmd = &cobra.Command{
	Use:   product + " [startup options] <command> [command options]",
	Short: "Anvil - a workspace-oriented build tool",
	Long: `Anvil is a workspace-oriented build tool client. It locates the enclosing
workspace, applies options from anvilrc files, and dispatches to a command.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		globalCfg, _ = config.Load()

		meta := runtime.MetadataFor(cmd)
		if meta.MustRunInWorkspace && currentWorkspace == nil {
			return runtime.Errorf(runtime.CommandLineError,
				"the %q command is only supported from within a workspace (no %s file found)",
				cmd.Name(), workspace.MarkerFile)
		}

		if currentWorkspace != nil {
			base, err := currentWorkspace.OutputBase(product, outputBaseFlag)
			if err != nil {
				return runtime.WithCode(runtime.LocalEnvironmentError, err)
			}
			outputBase = base
		}

		invocationID = history.NewID()
		debugDir := ""
		if outputBase != "" {
			debugDir = filepath.Join(outputBase, "logs")
		}
		if err := log.Init(log.Options{
			Verbose:       verbose,
			DebugDir:      debugDir,
			RetentionDays: globalCfg.Debug.RetentionDays,
			InvocationID:  invocationID,
		}); err != nil {
			// Debug logging is best effort; the invocation proceeds.
			ui.Warnf("failed to initialize debug logging: %v", err)
		}
		return nil
	},
}

// Execute runs one invocation: rc-file injection, dispatch, history
// recording. It returns the process exit code.
func Execute() runtime.ExitCode {
	code := execute(os.Args[1:])
	log.Close()
	return code
}

func execute(args []string) runtime.ExitCode {
	currentWorkspace, _ = workspace.Find(".")

	finalArgs, err := injectRcArgs(args)
	if err != nil {
		ui.Errorf("%v", err)
		return runtime.Code(err)
	}

	commandName = findCommand(finalArgs)
	if cmd := runtime.Find(rootCmd, commandName); cmd != nil {
		finalArgs = expandNegativeBoolArgs(finalArgs,
			flags.Merged("all", rootCmd.PersistentFlags(), cmd.Flags()))
	} else if commandName != "" {
		err := runtime.Errorf(runtime.CommandLineError,
			"command %q not found; try '%s help'", commandName, product)
		ui.Errorf("%v", err)
		return runtime.Code(err)
	} else {
		finalArgs = expandNegativeBoolArgs(finalArgs, rootCmd.PersistentFlags())
	}

	start := time.Now()
	rootCmd.SetArgs(finalArgs)
	err = rootCmd.Execute()
	code := runtime.Code(err)
	if err != nil {
		ui.Errorf("%v", err)
	}

	recordInvocation(commandName, args, code, time.Since(start))
	return code
}

// injectRcArgs loads the rc chain and splices its contributions into args:
// startup-scope args up front, command-scope args right after the command
// name so explicit flags parse later and win.
func injectRcArgs(args []string) ([]string, error) {
	if boolFlag(args, "ignore_all_rc_files") {
		return args, nil
	}

	wsRoot := ""
	if currentWorkspace != nil {
		wsRoot = currentWorkspace.Root
	}
	paths := rcfile.DefaultPaths(product, wsRoot)
	if rc := flagValue(args, "anvilrc"); rc != "" {
		paths = append(paths, rc)
	}

	directives, err := rcfile.LoadAll(paths)
	if err != nil {
		return nil, runtime.WithCode(runtime.LocalEnvironmentError, err)
	}
	if len(directives) == 0 {
		return args, nil
	}

	out := append([]string{}, rcfile.StartupArgs(directives)...)
	cmdName := findCommand(args)
	if cmdName == "" {
		return append(out, args...), nil
	}
	cmdArgs := rcfile.ArgsFor(directives, cmdName)
	for _, a := range args {
		out = append(out, a)
		if a == cmdName && len(cmdArgs) > 0 {
			out = append(out, cmdArgs...)
			cmdArgs = nil
		}
	}
	return out, nil
}

// findCommand returns the first token that is a command name rather than a
// flag or a flag value.
func findCommand(args []string) string {
	persistent := rootCmd.PersistentFlags()
	skipNext := false
	for _, a := range args {
		if skipNext {
			skipNext = false
			continue
		}
		if strings.HasPrefix(a, "-") {
			name := strings.TrimLeft(a, "-")
			name, hasValue := splitName(name)
			if f := persistent.Lookup(name); f != nil && !hasValue && f.Value.Type() != "bool" {
				skipNext = true
			}
			continue
		}
		return a
	}
	return ""
}

func splitName(s string) (name string, hasValue bool) {
	if i := strings.Index(s, "="); i >= 0 {
		return s[:i], true
	}
	return s, false
}

// expandNegativeBoolArgs rewrites --noname to --name=false for boolean flags
// known to fs, matching the documented negative spellings.
func expandNegativeBoolArgs(args []string, fs *pflag.FlagSet) []string {
	out := make([]string, 0, len(args))
	for _, a := range args {
		if strings.HasPrefix(a, "--no") && !strings.Contains(a, "=") {
			name := strings.TrimPrefix(a, "--no")
			if f := fs.Lookup(name); f != nil && f.Value.Type() == "bool" {
				out = append(out, "--"+name+"=false")
				continue
			}
		}
		out = append(out, a)
	}
	return out
}

// boolFlag reports the effective value of a boolean flag spelled on the
// command line: "--name", "--name=<bool>", or "--noname". Later spellings
// win; an absent flag is false.
func boolFlag(args []string, name string) bool {
	enabled := false
	for _, a := range args {
		switch {
		case a == "--"+name:
			enabled = true
		case a == "--no"+name:
			enabled = false
		default:
			if v, ok := strings.CutPrefix(a, "--"+name+"="); ok {
				if b, err := strconv.ParseBool(v); err == nil {
					enabled = b
				}
			}
		}
	}
	return enabled
}

func flagValue(args []string, name string) string {
	for i, a := range args {
		if v, ok := strings.CutPrefix(a, "--"+name+"="); ok {
			return v
		}
		if a == "--"+name && i+1 < len(args) {
			return args[i+1]
		}
	}
	return ""
}

// recordInvocation appends to the history store under the output base.
// Best effort only: history must never fail an invocation.
func recordInvocation(command string, args []string, code runtime.ExitCode, elapsed time.Duration) {
	if command == "" || outputBase == "" {
		return
	}
	if !recordHistory || (globalCfg != nil && !globalCfg.History.Enabled) {
		return
	}
	store, err := history.Open(filepath.Join(outputBase, "history.db"))
	if err != nil {
		log.Warn("opening history store", "error", err)
		return
	}
	defer store.Close()
	if err := store.Record(history.Invocation{
		ID:       invocationID,
		Command:  command,
		Args:     args,
		ExitCode: int(code),
		Duration: elapsed,
	}); err != nil {
		log.Warn("recording invocation", "error", err)
	}
	if globalCfg != nil && globalCfg.History.RetentionDays > 0 {
		cutoff := time.Now().AddDate(0, 0, -globalCfg.History.RetentionDays)
		if _, err := store.Prune(cutoff); err != nil {
			log.Warn("pruning invocation history", "error", err)
		}
	}
}

func init() {
	startupFlags.StringVar(&outputBaseFlag, "output_base", "",
		"Override the directory where anvil keeps per-workspace state. "+
			"Defaults to a hash-keyed directory under the user cache dir.")
	startupFlags.StringVar(&anvilrcFlag, "anvilrc", "",
		"Load an additional anvilrc file after the standard chain.")
	startupFlags.BoolVar(&ignoreAllRcFiles, "ignore_all_rc_files", false,
		"Skip every anvilrc file, including the one named by --anvilrc.")
	startupFlags.BoolVar(&blockForLock, "block_for_lock", true,
		"Wait for other anvil invocations holding the output base lock instead of failing.")
	startupFlags.IntVar(&maxIdleSecs, "max_idle_secs", 10800,
		"How long a background server may sit idle before shutting down.")
	startupFlags.BoolVar(&recordHistory, "history", true,
		"Record this invocation in the history store.")
	flags.Annotate(startupFlags, "output_base", flags.Doc{Category: flags.CategoryStartup, Effects: []flags.EffectTag{flags.EffectAffectsOutputs}})
	flags.Annotate(startupFlags, "anvilrc", flags.Doc{Category: flags.CategoryStartup})
	flags.Annotate(startupFlags, "ignore_all_rc_files", flags.Doc{Category: flags.CategoryStartup})
	flags.Annotate(startupFlags, "block_for_lock", flags.Doc{Category: flags.CategoryStartup, Effects: []flags.EffectTag{flags.EffectEagernessToExit}})
	flags.Annotate(startupFlags, "max_idle_secs", flags.Doc{Category: flags.CategoryStartup, Effects: []flags.EffectTag{flags.EffectHostResources}})
	flags.Annotate(startupFlags, "history", flags.Doc{Category: flags.CategoryStartup, Effects: []flags.EffectTag{flags.EffectHostResources}})

	commonFlags.BoolVarP(&verbose, "verbose", "v", false,
		"Show debug output on stderr in addition to the debug log file.")
	flags.Annotate(commonFlags, "verbose", flags.Doc{Category: flags.CategoryLogging, Effects: []flags.EffectTag{flags.EffectTerminalOutput}})

	rootCmd.PersistentFlags().AddFlagSet(startupFlags)
	rootCmd.PersistentFlags().AddFlagSet(commonFlags)
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	rootCmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return runtime.WithCode(runtime.CommandLineError, err)
	})
}
