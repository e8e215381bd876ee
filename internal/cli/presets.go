package cli

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/lumen/internal/photometric"
	"github.com/jmylchreest/lumen/internal/preset"
	"github.com/jmylchreest/lumen/internal/spectral"
)

// presetsSort is the presets --sort flag.
var presetsSort = newEnum("name", "name", "peak", "nits")

// presetsCmd represents the presets command
var presetsCmd = &cobra.Command{
	Use:   "presets",
	Short: "List LED presets",
	Long: `List the built-in LED presets with their spectral peak, bandwidth and the
renderer brightness they resolve to at rated current.

Presets can be used with 'lumen spectral --preset' and
'lumen photometric --preset', or applied to a scene entity over the API.`,
	Args: cobra.NoArgs,
	RunE: runPresets,
}

// presetsPackagesCmd lists emitter package size estimates.
var presetsPackagesCmd = &cobra.Command{
	Use:   "packages",
	Short: "List LED package emitter size estimates",
	Args:  cobra.NoArgs,
	RunE:  runPresetsPackages,
}

func init() {
	presetsCmd.Flags().Var(presetsSort, "sort", "sort order ("+presetsSort.Type()+")")
	presetsCmd.AddCommand(presetsPackagesCmd)
}

// presetRow is one preset with its resolved output.
type presetRow struct {
	preset.LED
	Result     photometric.Result `json:"result"`
	BeamFactor float64            `json:"beamFactor"`
	Efficacy   float64            `json:"efficacyLmPerW"`
}

func presetRows() ([]presetRow, error) {
	leds := preset.All()
	rows := make([]presetRow, 0, len(leds))
	for _, p := range leds {
		res, err := photometric.Resolve(p.Photometric())
		if err != nil {
			return nil, fmt.Errorf("preset %s: %w", p.Name, err)
		}
		rows = append(rows, presetRow{LED: p, Result: res, BeamFactor: p.BeamFactor(), Efficacy: p.Efficacy()})
	}

	switch presetsSort.value {
	case "peak":
		sort.SliceStable(rows, func(i, j int) bool { return rows[i].PeakNm < rows[j].PeakNm })
	case "nits":
		sort.SliceStable(rows, func(i, j int) bool { return rows[i].Result.Nits > rows[j].Result.Nits })
	}
	return rows, nil
}

// runPresets executes the presets command.
func runPresets(cmd *cobra.Command, _ []string) error {
	rows, err := presetRows()
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	if outputFormat.value == formatJSON {
		return writeJSON(w, rows)
	}

	profile := profileFor(w)
	headers := []string{"NAME", "LED", "PACKAGE", "PEAK", "FWHM", "MCD", "NITS", "EXPOSURE"}
	withSwatch := isTerminal(w)
	if withSwatch {
		headers = append([]string{""}, headers...)
	}
	table := NewTable(headers...)
	if withSwatch {
		table.AlignRight(4, 5, 6, 7, 8)
	} else {
		table.AlignRight(3, 4, 5, 6, 7)
	}

	for _, r := range rows {
		cells := []string{
			r.Name,
			r.Label(),
			r.Package,
			fmt.Sprintf("%.0fnm", r.PeakNm),
			fmt.Sprintf("%.0fnm", r.FwhmNm),
			fmt.Sprintf("%g", r.IntensityMcd),
			fmt.Sprintf("%.4g", r.Result.Nits),
			fmt.Sprintf("%.2f", r.Result.Exposure),
		}
		if withSwatch {
			c, err := spectral.NewResolver(appConfig.White()).Resolve(r.Spectral(0))
			if err != nil {
				return err
			}
			cells = append([]string{preview(profile, c)}, cells...)
		}
		table.AddRow(cells...)
	}
	fmt.Fprint(w, table.Render())
	return nil
}

// runPresetsPackages executes the presets packages command.
func runPresetsPackages(cmd *cobra.Command, _ []string) error {
	pkgs := photometric.Packages()
	w := cmd.OutOrStdout()
	if outputFormat.value == formatJSON {
		return writeJSON(w, pkgs)
	}

	table := NewTable("PACKAGE", "KIND", "WIDTH", "HEIGHT", "AREA")
	table.AlignRight(2, 3, 4)
	for _, p := range pkgs {
		table.AddRow(p.Name, p.Kind,
			fmt.Sprintf("%gmm", p.WidthMm),
			fmt.Sprintf("%gmm", p.HeightMm),
			fmt.Sprintf("%.3gmm²", p.WidthMm*p.HeightMm))
	}
	fmt.Fprint(w, table.Render())
	return nil
}
