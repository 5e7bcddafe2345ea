package cli

import (
	"fmt"
	"path/filepath"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/anvil-build/anvil/internal/flags"
	"github.com/anvil-build/anvil/internal/history"
	"github.com/anvil-build/anvil/internal/runtime"
	"github.com/anvil-build/anvil/internal/ui"
)

var (
	historyLimit  int
	historyFailed bool
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent invocations in this workspace",
	Long: `Shows recent invocations recorded in this workspace's history store:
when they ran, the command, the exit code, and how long they took.`,
	RunE: runHistory,
}

func runHistory(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	limit := historyLimit
	if limit == 0 && globalCfg != nil {
		limit = globalCfg.History.Limit
	}

	store, err := history.Open(filepath.Join(outputBase, "history.db"))
	if err != nil {
		return runtime.WithCode(runtime.LocalEnvironmentError, err)
	}
	defer store.Close()

	invocations, err := store.List(history.ListOptions{
		Limit:      limit,
		FailedOnly: historyFailed,
	})
	if err != nil {
		return runtime.WithCode(runtime.LocalEnvironmentError, err)
	}
	if len(invocations) == 0 {
		fmt.Fprintln(out, "No invocations recorded.")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "STARTED\tCOMMAND\tEXIT\tDURATION\tID")
	for _, inv := range invocations {
		exit := ui.Green(fmt.Sprintf("%d", inv.ExitCode))
		if inv.ExitCode != 0 {
			exit = ui.Red(fmt.Sprintf("%d", inv.ExitCode))
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			inv.Started.Local().Format("2006-01-02 15:04:05"),
			inv.Command, exit, inv.Duration, inv.ID)
	}
	return w.Flush()
}

func init() {
	historyCmd.Flags().IntVar(&historyLimit, "limit", 0,
		"Maximum number of invocations to show (0 uses the configured default).")
	historyCmd.Flags().BoolVar(&historyFailed, "failed", false,
		"Show only invocations that exited non-zero.")
	flags.Annotate(historyCmd.Flags(), "limit", flags.Doc{Category: flags.CategoryOutputSelection, Effects: []flags.EffectTag{flags.EffectTerminalOutput}})
	flags.Annotate(historyCmd.Flags(), "failed", flags.Doc{Category: flags.CategoryOutputSelection, Effects: []flags.EffectTag{flags.EffectTerminalOutput}})

	rootCmd.AddCommand(historyCmd)
	runtime.Register(historyCmd, runtime.Metadata{MustRunInWorkspace: true})
}
