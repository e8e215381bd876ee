package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/lumen/internal/photometric"
	"github.com/jmylchreest/lumen/internal/preset"
)

var (
	// Photometric command flags
	photoMcd        float64
	photoMlm        float64
	photoWidth      float64
	photoHeight     float64
	photoCurrent    float64
	photoPackage    string
	photoPreset     string
	photoHalfAngleH float64
	photoHalfAngleV float64

	// Nits subcommand flags
	nitsIntensity float64
	nitsExposure  float64
)

// photometricCmd represents the photometric command
var photometricCmd = &cobra.Command{
	Use:   "photometric",
	Short: "Convert datasheet brightness to renderer intensity and exposure",
	Long: `Convert an LED's datasheet luminous intensity (mcd) or luminous flux (mlm)
and its emitting area into luminance (nits), then split that into a renderer
intensity in [0.01, 100] and a log2 exposure.

Intensity is used when both are given. Flux assumes a Lambertian emitter.

Examples:
  # OSRAM LT QH9G: 90 mcd from a 0.5 x 0.3 mm die
  lumen photometric --mcd 90 --width 0.5 --height 0.3

  # Use an estimated die size for a package
  lumen photometric --mcd 1200 --package 5050

  # A preset at half drive current
  lumen photometric --preset red_625 --current 0.5`,
	Args: cobra.NoArgs,
	RunE: runPhotometric,
}

func init() {
	def := photometric.DefaultSpec()
	photometricCmd.Flags().Float64Var(&photoMcd, "mcd", 0, "luminous intensity (millicandela)")
	photometricCmd.Flags().Float64Var(&photoMlm, "mlm", 0, "luminous flux (millilumen), used when --mcd is 0")
	photometricCmd.Flags().Float64Var(&photoWidth, "width", def.EmitterWidthMm, "emitter width (mm)")
	photometricCmd.Flags().Float64Var(&photoHeight, "height", def.EmitterHeightMm, "emitter height (mm)")
	photometricCmd.Flags().Float64Var(&photoCurrent, "current", def.CurrentRatio, "drive current as a fraction of rated (0-1)")
	photometricCmd.Flags().StringVar(&photoPackage, "package", "", "estimate emitter size from an LED package (e.g. 0402, 5050, cob_small)")
	photometricCmd.Flags().StringVarP(&photoPreset, "preset", "p", "", "LED preset (see 'lumen presets')")
	photometricCmd.Flags().Float64Var(&photoHalfAngleH, "half-angle-h", 0, "horizontal viewing half-angle (degrees), reports the beam factor")
	photometricCmd.Flags().Float64Var(&photoHalfAngleV, "half-angle-v", 0, "vertical viewing half-angle (degrees)")
	photometricCmd.MarkFlagsMutuallyExclusive("preset", "package")

	photometricNitsCmd.Flags().Float64Var(&nitsIntensity, "intensity", 1, "renderer intensity")
	photometricNitsCmd.Flags().Float64Var(&nitsExposure, "exposure", 0, "renderer exposure (log2)")
	photometricCmd.AddCommand(photometricNitsCmd)
}

// photometricNitsCmd converts a renderer pair back to luminance.
var photometricNitsCmd = &cobra.Command{
	Use:   "nits",
	Short: "Convert renderer intensity and exposure back to luminance",
	Long: `Convert a renderer intensity and exposure pair back to the luminance it
represents (intensity x 2^exposure).

Examples:
  lumen photometric nits --intensity 100 --exposure 12.5507`,
	Args: cobra.NoArgs,
	RunE: runPhotometricNits,
}

func runPhotometricNits(cmd *cobra.Command, _ []string) error {
	if nitsIntensity < 0 {
		return fmt.Errorf("intensity must not be negative (got %v)", nitsIntensity)
	}
	nits := photometric.IntensityToNits(nitsIntensity, nitsExposure)

	w := cmd.OutOrStdout()
	if outputFormat.value == formatJSON {
		return writeJSON(w, photometric.Result{Intensity: nitsIntensity, Exposure: nitsExposure, Nits: nits})
	}
	fmt.Fprintf(w, "Luminance:  %.6g nits\n", nits)
	return nil
}

// photometricResult is the photometric command's output.
type photometricResult struct {
	Spec       photometric.Spec   `json:"spec"`
	AreaMm2    float64            `json:"areaMm2"`
	Result     photometric.Result `json:"result"`
	BeamFactor float64            `json:"beamFactor,omitempty"`
}

// runPhotometric executes the photometric command.
func runPhotometric(cmd *cobra.Command, _ []string) error {
	spec := photometric.Spec{
		LuminousIntensityMcd: photoMcd,
		LuminousFluxMlm:      photoMlm,
		EmitterWidthMm:       photoWidth,
		EmitterHeightMm:      photoHeight,
		CurrentRatio:         photoCurrent,
	}

	halfH, halfV := photoHalfAngleH, photoHalfAngleV
	switch {
	case photoPreset != "":
		p, err := preset.Lookup(photoPreset)
		if err != nil {
			return err
		}
		spec = p.Photometric()
		spec.CurrentRatio = photoCurrent
		if halfH == 0 && halfV == 0 {
			halfH, halfV = p.HalfAngleHDeg, p.HalfAngleVDeg
		}
	case photoPackage != "":
		pkg, err := photometric.LookupPackage(photoPackage)
		if err != nil {
			return err
		}
		spec = pkg.Apply(spec)
		logger.Debug("using package size", "package", pkg.Name, "width", pkg.WidthMm, "height", pkg.HeightMm)
	}

	if applied := photometric.ClampCurrentRatio(spec.CurrentRatio); applied != spec.CurrentRatio {
		logger.Debug("input clamped", "attribute", "current", "requested", spec.CurrentRatio, "applied", applied)
	}

	res, err := photometric.Resolve(spec)
	if err != nil {
		return err
	}

	out := photometricResult{Spec: spec, AreaMm2: spec.AreaMm2(), Result: res}
	if halfH > 0 || halfV > 0 {
		if halfV == 0 {
			halfV = halfH
		}
		if halfH == 0 {
			halfH = halfV
		}
		out.BeamFactor = photometric.BeamFactorFor(halfH, halfV)
	}

	w := cmd.OutOrStdout()
	if outputFormat.value == formatJSON {
		return writeJSON(w, out)
	}
	fmt.Fprintf(w, "Area:       %.4g mm²\n", out.AreaMm2)
	fmt.Fprintf(w, "Luminance:  %.6g nits\n", res.Nits)
	fmt.Fprintf(w, "Intensity:  %.4g\n", res.Intensity)
	fmt.Fprintf(w, "Exposure:   %.4f\n", res.Exposure)
	if out.BeamFactor > 0 {
		fmt.Fprintf(w, "Beam:       %.3gx on-axis (%.0f° x %.0f°)\n", out.BeamFactor, halfH, halfV)
	}
	return nil
}
