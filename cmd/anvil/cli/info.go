package cli

import (
	"errors"
	"fmt"
	"path/filepath"
	gort "runtime"
	"strings"

	"github.com/spf13/cobra"

	"github.com/anvil-build/anvil/internal/log"
	"github.com/anvil-build/anvil/internal/runtime"
	"github.com/anvil-build/anvil/internal/workspace"
)

// infoItem is one key the info command can report. Keys and their one-line
// descriptions also feed "help info-keys" and the completion dump.
type infoItem struct {
	name        string
	description string
	value       func() (string, error)
}

func infoItems() []infoItem {
	return []infoItem{
		{
			name:        "release",
			description: "The version of this " + product + " binary.",
			value:       func() (string, error) { return releaseName(), nil },
		},
		{
			name:        "workspace",
			description: "The working directory of the current workspace.",
			value: func() (string, error) {
				return currentWorkspace.Root, nil
			},
		},
		{
			name:        "workspace-name",
			description: "The name declared in the workspace marker file.",
			value: func() (string, error) {
				return currentWorkspace.Name, nil
			},
		},
		{
			name:        "output_base",
			description: "The directory holding per-workspace state and logs.",
			value:       func() (string, error) { return outputBase, nil },
		},
		{
			name:        "server_log",
			description: "The debug log file for the current invocation.",
			value: func() (string, error) {
				if p := log.CurrentPath(); p != "" {
					return p, nil
				}
				return filepath.Join(outputBase, "logs", "latest"), nil
			},
		},
		{
			name:        "command_log",
			description: "The file holding the most recent command's output.",
			value: func() (string, error) {
				return filepath.Join(outputBase, "logs", "latest"), nil
			},
		},
		{
			name:        "committed-heads",
			description: "The git commit hash of HEAD in the workspace, if any.",
			value: func() (string, error) {
				head, err := currentWorkspace.GitHead()
				if errors.Is(err, workspace.ErrNoGit) {
					return "(not a git repository)", nil
				}
				return head, err
			},
		},
		{
			name:        "gc-count",
			description: "The number of garbage collections in this process.",
			value: func() (string, error) {
				var stats gort.MemStats
				gort.ReadMemStats(&stats)
				return fmt.Sprintf("%d", stats.NumGC), nil
			},
		},
		{
			name:        "go-version",
			description: "The Go runtime version this binary was built with.",
			value:       func() (string, error) { return gort.Version(), nil },
		},
	}
}

func infoKeyNames() []string {
	items := infoItems()
	names := make([]string, len(items))
	for i, item := range items {
		names[i] = item.name
	}
	return names
}

var infoCmd = &cobra.Command{
	Use:   "info [keys...]",
	Short: "Display runtime info about the " + product + " workspace",
	Long: `Displays information about the current workspace: paths, version, and
source-control state. With no arguments every key is printed as "key: value";
with arguments only the selected values are printed.`,
	RunE: runInfo,
}

func runInfo(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	items := infoItems()

	if len(args) == 0 {
		for _, item := range items {
			v, err := item.value()
			if err != nil {
				return fmt.Errorf("computing %s: %w", item.name, err)
			}
			fmt.Fprintf(out, "%s: %s\n", item.name, v)
		}
		return nil
	}

	byName := make(map[string]infoItem, len(items))
	for _, item := range items {
		byName[item.name] = item
	}
	var unknown []string
	for _, key := range args {
		if _, ok := byName[key]; !ok {
			unknown = append(unknown, key)
		}
	}
	if len(unknown) > 0 {
		return runtime.Errorf(runtime.CommandLineError,
			"unknown key(s): %s", strings.Join(unknown, ", "))
	}

	for _, key := range args {
		item := byName[key]
		v, err := item.value()
		if err != nil {
			return fmt.Errorf("computing %s: %w", key, err)
		}
		if len(args) == 1 {
			fmt.Fprintln(out, v)
		} else {
			fmt.Fprintf(out, "%s: %s\n", key, v)
		}
	}
	return nil
}

func init() {
	rootCmd.AddCommand(infoCmd)
	runtime.Register(infoCmd, runtime.Metadata{
		Completion:         "info-key",
		MustRunInWorkspace: true,
	})
}
