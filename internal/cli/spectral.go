package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/lumen/internal/colour"
	"github.com/jmylchreest/lumen/internal/preset"
	"github.com/jmylchreest/lumen/internal/spectral"
)

var (
	// Spectral command flags
	spectralPeak        float64
	spectralFwhm        float64
	spectralWhiteMix    float64
	spectralCurve       string
	spectralRefresh     bool
	spectralPreset      string
	spectralWavelengths []float64
	spectralIntensities []float64
)

// spectralCmd represents the spectral command
var spectralCmd = &cobra.Command{
	Use:   "spectral",
	Short: "Resolve a spectral power distribution to linear RGB",
	Long: `Resolve a spectral power distribution to the linear RGB colour a renderer
consumes. The SPD is integrated against the CIE 1931 2° observer, converted to
linear sRGB and normalised so the brightest channel is 1.

The SPD is a Gaussian by default. Use --curve to read a measured curve from a
CSV/TSV/JSON file (optionally .gz or .xz compressed), --wavelengths and
--intensities for an inline curve, or --preset for a datasheet LED.

Examples:
  # Green Gaussian LED
  lumen spectral --peak 525 --fwhm 33

  # Blend 20% towards white
  lumen spectral --peak 450 --white-mix 0.2

  # Measured curve
  lumen spectral --curve spd/qh9g.csv.xz

  # Published curve, downloaded once and cached
  lumen spectral --curve https://example.com/spd/qh9g.csv.xz

  # Inline curve as JSON
  lumen spectral --wavelengths 600,620,640 --intensities 0.5,1,0.5 -f json`,
	Args: cobra.NoArgs,
	RunE: runSpectral,
}

func init() {
	spectralCmd.Flags().Float64Var(&spectralPeak, "peak", spectral.DefaultPeakWavelengthNm, "Gaussian peak wavelength (nm)")
	spectralCmd.Flags().Float64Var(&spectralFwhm, "fwhm", spectral.DefaultBandwidthFwhmNm, "Gaussian bandwidth, full width at half maximum (nm)")
	spectralCmd.Flags().Float64VarP(&spectralWhiteMix, "white-mix", "w", 0, "fraction blended towards white (0-1)")
	spectralCmd.Flags().StringVar(&spectralCurve, "curve", "", "SPD curve file or http(s) URL")
	spectralCmd.Flags().BoolVar(&spectralRefresh, "refresh", false, "download a remote curve again even if cached")
	spectralCmd.Flags().StringVarP(&spectralPreset, "preset", "p", "", "LED preset (see 'lumen presets')")
	spectralCmd.Flags().Float64SliceVar(&spectralWavelengths, "wavelengths", nil, "inline curve wavelengths (nm)")
	spectralCmd.Flags().Float64SliceVar(&spectralIntensities, "intensities", nil, "inline curve intensities")
	spectralCmd.MarkFlagsMutuallyExclusive("curve", "preset", "wavelengths")
}

// spectralResult is the spectral command's output.
type spectralResult struct {
	Source  string        `json:"source"`
	Spec    spectral.Spec `json:"spec"`
	Color   colour.Linear `json:"color"`
	Hex     string        `json:"hex"`
	SpdInfo string        `json:"spdInfo,omitempty"`
}

// runSpectral executes the spectral command.
func runSpectral(cmd *cobra.Command, _ []string) error {
	spec := spectral.Spec{
		SourceMode:       spectral.SourceGaussian,
		PeakWavelengthNm: spectralPeak,
		BandwidthFwhmNm:  spectralFwhm,
		WhiteMixFraction: spectralWhiteMix,
	}
	source := fmt.Sprintf("gaussian %gnm, FWHM %gnm", spectralPeak, spectralFwhm)

	switch {
	case spectralPreset != "":
		p, err := preset.Lookup(spectralPreset)
		if err != nil {
			return err
		}
		spec = p.Spectral(spectralWhiteMix)
		source = fmt.Sprintf("preset %s (%s)", p.Name, p.Label())
	case spectralCurve != "":
		logger.Debug("loading curve", "path", spectralCurve)
		c, err := loadCurve(cmd.Context(), spectralCurve, spectralRefresh)
		if err != nil {
			return fmt.Errorf("failed to load curve: %w", err)
		}
		spec = c.Spec(spectralWhiteMix)
		source = "curve " + c.Name
	case len(spectralWavelengths) > 0 || len(spectralIntensities) > 0:
		spec = spectral.Spec{
			SourceMode:         spectral.SourceManual,
			CurveWavelengthsNm: spectralWavelengths,
			CurveIntensities:   spectralIntensities,
			WhiteMixFraction:   spectralWhiteMix,
		}
		source = "manual"
	}

	rgb, err := spectral.NewResolver(appConfig.White()).Resolve(spec)
	if err != nil {
		return fmt.Errorf("failed to resolve spectrum: %w", err)
	}

	res := spectralResult{Source: source, Spec: spec, Color: rgb, Hex: rgb.Display().Hex()}
	if spec.SourceMode != spectral.SourceGaussian {
		res.SpdInfo = spectral.Summarize(spec.CurveWavelengthsNm, spec.CurveIntensities).String()
	}

	out := cmd.OutOrStdout()
	if outputFormat.value == formatJSON {
		return writeJSON(out, res)
	}
	profile := profileFor(out)
	fmt.Fprintf(out, "Source:  %s\n", res.Source)
	if res.SpdInfo != "" {
		fmt.Fprintf(out, "SPD:     %s\n", res.SpdInfo)
	}
	fmt.Fprintf(out, "Colour:  %s\n", colourLine(profile, rgb))
	return nil
}
