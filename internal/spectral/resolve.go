package spectral

import (
	"math"
	"sort"

	"github.com/jmylchreest/lumen/internal/colorimetry"
	"github.com/jmylchreest/lumen/internal/colour"
)

// fwhmToExponent converts the FWHM-parameterised Gaussian into exp(k·x²) form.
var fwhmToExponent = -4 * math.Ln2

// Gaussian returns the normalised Gaussian profile with the given peak and
// full width at half maximum.
func Gaussian(peakNm, fwhmNm float64) func(nm float64) float64 {
	return func(nm float64) float64 {
		d := (nm - peakNm) / fwhmNm
		return math.Exp(fwhmToExponent * d * d)
	}
}

// Interpolate returns a piecewise-linear function through the samples,
// zero outside [wavelengths[0], wavelengths[n-1]]. Wavelengths must be
// strictly increasing.
func Interpolate(wavelengths, intensities []float64) func(nm float64) float64 {
	n := len(wavelengths)
	return func(nm float64) float64 {
		if n == 0 || nm < wavelengths[0] || nm > wavelengths[n-1] {
			return 0
		}
		i := sort.SearchFloat64s(wavelengths, nm)
		if wavelengths[i] == nm {
			return intensities[i]
		}
		t := (nm - wavelengths[i-1]) / (wavelengths[i] - wavelengths[i-1])
		return intensities[i-1] + t*(intensities[i]-intensities[i-1])
	}
}

// Sample materialises the SPD described by spec on the reference grid.
func Sample(spec Spec) (colorimetry.Spectrum, error) {
	if err := spec.Validate(); err != nil {
		return colorimetry.Spectrum{}, err
	}
	if spec.SourceMode == SourceGaussian {
		return colorimetry.Sample(Gaussian(spec.PeakWavelengthNm, spec.BandwidthFwhmNm)), nil
	}
	return colorimetry.Sample(Interpolate(spec.CurveWavelengthsNm, spec.CurveIntensities)), nil
}

// Resolver converts spectral specs to linear RGB against a white reference.
type Resolver struct {
	White colour.Linear
}

// NewResolver returns a Resolver blending towards white.
func NewResolver(white colour.Linear) *Resolver {
	return &Resolver{White: white}
}

// Resolve converts spec into a linear RGB colour.
//
// The spectral colour is scaled so its brightest channel is 1; intensity is
// controlled separately by the photometric resolver. Negative channels from
// out-of-gamut spectra are clamped to 0. An SPD with no visible energy
// resolves to black before white mixing.
func (r *Resolver) Resolve(spec Spec) (colour.Linear, error) {
	spd, err := Sample(spec)
	if err != nil {
		return colour.Linear{}, err
	}

	xyz := spd.Normalized().ToXYZ()
	rgb := colorimetry.XYZToLinear(xyz).ClampNegative().NormalizePeak()

	mix := colour.Clamp01(spec.WhiteMixFraction)
	if math.IsNaN(spec.WhiteMixFraction) {
		mix = 0
	}
	return rgb.Mix(r.White, mix), nil
}

var defaultResolver = NewResolver(colour.White)

// Resolve converts spec using the standard white reference.
func Resolve(spec Spec) (colour.Linear, error) {
	return defaultResolver.Resolve(spec)
}
