package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/lumen/internal/colour"
	"github.com/jmylchreest/lumen/internal/temperature"
)

var (
	// Temperature command flags
	tempOverall   float64
	tempRed       float64
	tempGreen     float64
	tempBlue      float64
	tempBlackbody bool
)

// temperatureCmd represents the temperature command
var temperatureCmd = &cobra.Command{
	Use:     "temperature",
	Aliases: []string{"cct"},
	Short:   "Resolve colour temperatures to linear RGB",
	Long: `Resolve an overall colour temperature, optionally with per-channel
temperatures, to linear RGB. Each channel takes its own temperature's
component, tinted by the overall temperature. Temperatures are clamped to
1000-40000 K.

Examples:
  # Warm white
  lumen temperature --kelvin 2700

  # Cool the blue channel only
  lumen temperature --kelvin 5000 --blue 9000

  # Compare with a Planck integration
  lumen temperature --kelvin 3200 --blackbody`,
	Args: cobra.NoArgs,
	RunE: runTemperature,
}

func init() {
	temperatureCmd.Flags().Float64VarP(&tempOverall, "kelvin", "k", temperature.DefaultKelvin, "overall colour temperature (K)")
	temperatureCmd.Flags().Float64Var(&tempRed, "red", temperature.DefaultKelvin, "red channel temperature (K)")
	temperatureCmd.Flags().Float64Var(&tempGreen, "green", temperature.DefaultKelvin, "green channel temperature (K)")
	temperatureCmd.Flags().Float64Var(&tempBlue, "blue", temperature.DefaultKelvin, "blue channel temperature (K)")
	temperatureCmd.Flags().BoolVar(&tempBlackbody, "blackbody", false, "also show the black-body colour of --kelvin")
}

// temperatureResult is the temperature command's output.
type temperatureResult struct {
	Spec      temperature.Spec `json:"spec"`
	Color     colour.Linear    `json:"color"`
	Hex       string           `json:"hex"`
	Blackbody *colour.Linear   `json:"blackbody,omitempty"`
}

// runTemperature executes the temperature command.
func runTemperature(cmd *cobra.Command, _ []string) error {
	requested := temperature.Spec{
		OverallKelvin: tempOverall,
		RedKelvin:     tempRed,
		GreenKelvin:   tempGreen,
		BlueKelvin:    tempBlue,
	}
	spec := requested.Clamped()
	if spec != requested {
		logger.Debug("temperatures clamped", "requested", requested, "applied", spec)
	}

	rgb := temperature.Resolve(spec)
	res := temperatureResult{Spec: spec, Color: rgb, Hex: rgb.Display().Hex()}
	if tempBlackbody {
		bb := temperature.BlackbodyToRGB(spec.OverallKelvin)
		res.Blackbody = &bb
	}

	w := cmd.OutOrStdout()
	if outputFormat.value == formatJSON {
		return writeJSON(w, res)
	}
	profile := profileFor(w)
	fmt.Fprintf(w, "Kelvin:     %g (R %g, G %g, B %g)\n", spec.OverallKelvin, spec.RedKelvin, spec.GreenKelvin, spec.BlueKelvin)
	fmt.Fprintf(w, "Colour:     %s\n", colourLine(profile, rgb))
	if res.Blackbody != nil {
		fmt.Fprintf(w, "Blackbody:  %s\n", colourLine(profile, *res.Blackbody))
	}
	return nil
}
