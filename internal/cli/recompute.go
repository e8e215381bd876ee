package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	// Recompute command flags
	recomputeOutput string
	recomputeDryRun bool
	recomputeStrict bool
)

// recomputeCmd represents the recompute command
var recomputeCmd = &cobra.Command{
	Use:   "recompute <scene.yaml>",
	Short: "Compute renderer parameters for every light in a scene file",
	Long: `Load a scene file, resolve every light's colour and brightness and write
the computed attributes back. Running it again on its own output changes
nothing.

A light whose inputs fail to resolve keeps its previous computed values and is
marked unresolved.

Examples:
  # Update the scene in place
  lumen recompute scene.yaml

  # Write to a new file
  lumen recompute scene.yaml -o scene.resolved.yaml

  # Show what would be computed
  lumen recompute --dry-run -f json scene.yaml`,
	Args: cobra.ExactArgs(1),
	RunE: runRecompute,
}

func init() {
	recomputeCmd.Flags().StringVarP(&recomputeOutput, "output", "o", "", "output file (default: overwrite the input)")
	recomputeCmd.Flags().BoolVarP(&recomputeDryRun, "dry-run", "n", false, "print results without writing")
	recomputeCmd.Flags().BoolVar(&recomputeStrict, "strict", false, "exit with an error if any light fails to resolve")
}

// runRecompute executes the recompute command.
func runRecompute(cmd *cobra.Command, args []string) error {
	e, err := loadEngine(args[0])
	if err != nil {
		return err
	}
	defer e.detach()

	results, err := e.recomputeAll(cmd.Context())
	if err != nil {
		return err
	}
	if err := e.printResults(cmd.OutOrStdout(), results); err != nil {
		return err
	}

	if !recomputeDryRun {
		if err := e.save(recomputeOutput); err != nil {
			return err
		}
	}

	if n := failed(results); n > 0 {
		logger.Warn("some lights did not resolve", "failed", n, "total", len(results))
		if recomputeStrict {
			return fmt.Errorf("%d of %d lights failed to resolve", n, len(results))
		}
	}
	return nil
}
