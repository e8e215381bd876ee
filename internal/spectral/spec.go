// Package spectral resolves LED spectral power distributions into linear RGB.
//
// A distribution is described either by a Gaussian (peak wavelength plus
// FWHM bandwidth) or by sampled (wavelength, intensity) pairs. Resolution
// samples the distribution on the colorimetry grid, integrates it against the
// CIE 1931 observer and blends the result with a white reference.
package spectral

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// ErrInvalidSpectralInput is returned for malformed or inconsistent SPD input.
var ErrInvalidSpectralInput = errors.New("invalid spectral input")

// SourceMode selects how the SPD is described.
type SourceMode string

const (
	// SourceGaussian uses PeakWavelengthNm and BandwidthFwhmNm.
	SourceGaussian SourceMode = "gaussian"

	// SourceCurve uses a curve loaded from a file or document.
	SourceCurve SourceMode = "curve"

	// SourceManual uses explicitly entered samples.
	SourceManual SourceMode = "manual"
)

// SourceModes returns the valid source modes.
func SourceModes() []SourceMode {
	return []SourceMode{SourceGaussian, SourceCurve, SourceManual}
}

// ParseSourceMode parses a source mode name. "csv" is accepted as an alias
// for curve.
func ParseSourceMode(s string) (SourceMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "gaussian":
		return SourceGaussian, nil
	case "curve", "csv":
		return SourceCurve, nil
	case "manual":
		return SourceManual, nil
	default:
		valid := make([]string, 0, 3)
		for _, m := range SourceModes() {
			valid = append(valid, string(m))
		}
		return "", fmt.Errorf("unknown spectral source mode %q (valid: %s)", s, strings.Join(valid, ", "))
	}
}

// Spec describes an SPD and how much of the white reference to mix in.
type Spec struct {
	SourceMode SourceMode `json:"sourceMode" yaml:"sourceMode"`

	PeakWavelengthNm float64 `json:"peakWavelengthNm,omitempty" yaml:"peakWavelengthNm,omitempty"`
	BandwidthFwhmNm  float64 `json:"bandwidthFwhmNm,omitempty" yaml:"bandwidthFwhmNm,omitempty"`

	CurveWavelengthsNm []float64 `json:"curveWavelengthsNm,omitempty" yaml:"curveWavelengthsNm,omitempty"`
	CurveIntensities   []float64 `json:"curveIntensities,omitempty" yaml:"curveIntensities,omitempty"`

	// WhiteMixFraction is 0 for the pure spectral colour, 1 for pure white.
	WhiteMixFraction float64 `json:"whiteMixFraction" yaml:"whiteMixFraction"`
}

// Default spectral parameters for a newly observed light.
const (
	DefaultPeakWavelengthNm = 550.0
	DefaultBandwidthFwhmNm  = 30.0
)

// DefaultSpec returns the spec a light starts with.
func DefaultSpec() Spec {
	return Spec{
		SourceMode:       SourceGaussian,
		PeakWavelengthNm: DefaultPeakWavelengthNm,
		BandwidthFwhmNm:  DefaultBandwidthFwhmNm,
	}
}

// Validate checks the fields required by the spec's source mode.
func (s Spec) Validate() error {
	switch s.SourceMode {
	case SourceGaussian:
		if !(s.BandwidthFwhmNm > 0) || math.IsInf(s.BandwidthFwhmNm, 0) {
			return fmt.Errorf("%w: bandwidth must be > 0 (got %v)", ErrInvalidSpectralInput, s.BandwidthFwhmNm)
		}
		if math.IsNaN(s.PeakWavelengthNm) || math.IsInf(s.PeakWavelengthNm, 0) {
			return fmt.Errorf("%w: peak wavelength must be finite", ErrInvalidSpectralInput)
		}
		return nil
	case SourceCurve, SourceManual:
		return validateSamples(s.CurveWavelengthsNm, s.CurveIntensities)
	default:
		return fmt.Errorf("%w: unknown source mode %q", ErrInvalidSpectralInput, s.SourceMode)
	}
}

func validateSamples(wavelengths, intensities []float64) error {
	if len(wavelengths) == 0 || len(intensities) == 0 {
		return fmt.Errorf("%w: curve has no samples", ErrInvalidSpectralInput)
	}
	if len(wavelengths) != len(intensities) {
		return fmt.Errorf("%w: %d wavelengths vs %d intensities",
			ErrInvalidSpectralInput, len(wavelengths), len(intensities))
	}
	if len(wavelengths) < 2 {
		return fmt.Errorf("%w: curve needs at least 2 samples", ErrInvalidSpectralInput)
	}
	for i, wl := range wavelengths {
		if math.IsNaN(wl) || math.IsInf(wl, 0) {
			return fmt.Errorf("%w: wavelength %d is not finite", ErrInvalidSpectralInput, i)
		}
		if i > 0 && wl <= wavelengths[i-1] {
			return fmt.Errorf("%w: wavelengths must be strictly increasing (%v after %v)",
				ErrInvalidSpectralInput, wl, wavelengths[i-1])
		}
	}
	for i, v := range intensities {
		if !(v >= 0) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: intensity %d must be a finite value >= 0 (got %v)", ErrInvalidSpectralInput, i, v)
		}
	}
	return nil
}
