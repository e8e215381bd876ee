package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/lumen/internal/swatch"
)

var (
	// Swatch command flags
	swatchOutput  string
	swatchCell    int
	swatchColumns int
)

// swatchCmd represents the swatch command
var swatchCmd = &cobra.Command{
	Use:   "swatch <scene.yaml>",
	Short: "Render a PNG of every light's computed colour",
	Long: `Resolve every light in a scene file and render the colours as a labelled
PNG grid. The scene file is not modified. Lights left to the host's native
colour are skipped.

Examples:
  lumen swatch scene.yaml -o swatch.png
  lumen swatch --cell 64 --columns 10 scene.yaml -o swatch.png`,
	Args: cobra.ExactArgs(1),
	RunE: runSwatch,
}

func init() {
	swatchCmd.Flags().StringVarP(&swatchOutput, "output", "o", "swatch.png", "output PNG file")
	swatchCmd.Flags().IntVar(&swatchCell, "cell", swatch.DefaultCellSize, "swatch size in pixels")
	swatchCmd.Flags().IntVar(&swatchColumns, "columns", swatch.DefaultColumns, "swatches per row")
}

// runSwatch executes the swatch command.
func runSwatch(cmd *cobra.Command, args []string) error {
	e, err := loadEngine(args[0])
	if err != nil {
		return err
	}
	defer e.detach()

	results, err := e.recomputeAll(cmd.Context())
	if err != nil {
		return err
	}
	if n := failed(results); n > 0 {
		logger.Warn("some lights did not resolve", "failed", n)
	}

	swatches := swatch.FromDocument(e.store.Document())
	opts := swatch.Options{CellSize: swatchCell, Columns: swatchColumns}
	if err := swatch.SaveFile(swatchOutput, swatches, opts); err != nil {
		return fmt.Errorf("failed to write swatch: %w", err)
	}

	if quiet, _ := cmd.Flags().GetBool("quiet"); !quiet {
		fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %d swatches to %s\n", len(swatches), swatchOutput)
	}
	return nil
}
