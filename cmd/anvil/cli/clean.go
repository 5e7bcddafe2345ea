package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/anvil-build/anvil/internal/flags"
	"github.com/anvil-build/anvil/internal/runtime"
)

var cleanExpunge bool

// Entries under the output base that clean keeps unless --expunge is given:
// debug logs and the invocation history.
var cleanKeep = map[string]bool{
	"logs":       true,
	"history.db": true,
}

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Remove the output trees under the output base",
	Long: `Removes per-command output trees under the output base, keeping debug logs
and the invocation history. With --expunge the entire output base is removed,
logs and history included.`,
	RunE: runClean,
}

func runClean(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	if cleanExpunge {
		if err := os.RemoveAll(outputBase); err != nil {
			return runtime.WithCode(runtime.LocalEnvironmentError,
				fmt.Errorf("expunging output base: %w", err))
		}
		fmt.Fprintf(out, "Expunged %s\n", outputBase)
		return nil
	}

	entries, err := os.ReadDir(outputBase)
	if err != nil {
		if os.IsNotExist(err) {
			fmt.Fprintln(out, "Nothing to clean.")
			return nil
		}
		return runtime.WithCode(runtime.LocalEnvironmentError,
			fmt.Errorf("reading output base: %w", err))
	}

	var g errgroup.Group
	removed := 0
	for _, entry := range entries {
		if cleanKeep[entry.Name()] {
			continue
		}
		path := filepath.Join(outputBase, entry.Name())
		removed++
		g.Go(func() error {
			if err := os.RemoveAll(path); err != nil {
				return fmt.Errorf("removing %s: %w", path, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return runtime.WithCode(runtime.LocalEnvironmentError, err)
	}

	if removed == 0 {
		fmt.Fprintln(out, "Nothing to clean.")
		return nil
	}
	fmt.Fprintf(out, "Cleaned %d output tree(s) under %s\n", removed, outputBase)
	return nil
}

func init() {
	cleanCmd.Flags().BoolVar(&cleanExpunge, "expunge", false,
		"Remove the entire output base, including logs and invocation history.")
	flags.Annotate(cleanCmd.Flags(), "expunge", flags.Doc{
		Category: flags.CategoryMisc,
		Effects:  []flags.EffectTag{flags.EffectHostResources},
	})

	rootCmd.AddCommand(cleanCmd)
	runtime.Register(cleanCmd, runtime.Metadata{MustRunInWorkspace: true})
}
