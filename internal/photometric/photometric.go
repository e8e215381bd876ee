// Package photometric converts LED datasheet brightness (mcd or mlm) and
// emitter geometry into the renderer's intensity and exposure pair.
//
// The renderer computes effective luminance as intensity × 2^exposure, so
// intensity is kept within [MinIntensity, MaxIntensity] and any remaining
// dynamic range is carried by the log2 exposure.
package photometric

import (
	"errors"
	"fmt"
	"math"

	"github.com/jmylchreest/lumen/internal/colour"
)

// ErrInvalidGeometry is returned when the emitter has no positive area.
var ErrInvalidGeometry = errors.New("invalid emitter geometry")

// ErrLuminanceOverflow is returned when the rating and area produce a
// luminance too large to represent.
var ErrLuminanceOverflow = errors.New("luminance overflow")

// Renderer intensity range.
const (
	MinIntensity = 0.01
	MaxIntensity = 100.0
)

// LambertianBeamFactor is the emission pattern constant used for flux
// conversion: an ideal Lambertian emitter.
const LambertianBeamFactor = 1.0

// Defaults for a newly observed light (0402 package die).
const (
	DefaultEmitterWidthMm  = 0.5
	DefaultEmitterHeightMm = 0.3
	DefaultCurrentRatio    = 1.0
)

// Spec holds datasheet brightness and emitter geometry.
type Spec struct {
	LuminousIntensityMcd float64 `json:"luminousIntensityMcd" yaml:"luminousIntensityMcd"`
	LuminousFluxMlm      float64 `json:"luminousFluxMlm" yaml:"luminousFluxMlm"`
	EmitterWidthMm       float64 `json:"emitterWidthMm" yaml:"emitterWidthMm"`
	EmitterHeightMm      float64 `json:"emitterHeightMm" yaml:"emitterHeightMm"`
	CurrentRatio         float64 `json:"currentRatio" yaml:"currentRatio"`
}

// DefaultSpec returns the spec a light starts with.
func DefaultSpec() Spec {
	return Spec{
		EmitterWidthMm:  DefaultEmitterWidthMm,
		EmitterHeightMm: DefaultEmitterHeightMm,
		CurrentRatio:    DefaultCurrentRatio,
	}
}

// HasData reports whether the spec carries any brightness rating.
func (s Spec) HasData() bool {
	return s.LuminousIntensityMcd > 0 || s.LuminousFluxMlm > 0
}

// AreaMm2 returns the emitter area in mm².
func (s Spec) AreaMm2() float64 {
	return s.EmitterWidthMm * s.EmitterHeightMm
}

// Result is the renderer brightness for a spec.
type Result struct {
	Intensity float64 `json:"intensity"`
	Exposure  float64 `json:"exposure"`
	Nits      float64 `json:"nits"`
}

// String formats the result for logs and CLI output.
func (r Result) String() string {
	return fmt.Sprintf("intensity=%.4g exposure=%.4f nits=%.0f", r.Intensity, r.Exposure, r.Nits)
}

// ClampCurrentRatio restricts a drive current ratio to [0, 1]. NaN is
// treated as full current.
func ClampCurrentRatio(r float64) float64 {
	if math.IsNaN(r) {
		return DefaultCurrentRatio
	}
	return colour.Clamp01(r)
}

// Resolve converts spec to renderer intensity, exposure and luminance.
//
// Luminous intensity takes precedence; flux is only used when no intensity
// is given. A spec with neither is the valid "off" state: zero nits at the
// minimum renderer intensity.
func Resolve(spec Spec) (Result, error) {
	if !(spec.EmitterWidthMm > 0) || !(spec.EmitterHeightMm > 0) {
		return Result{}, fmt.Errorf("%w: emitter must be larger than 0x0 mm (got %vx%v)",
			ErrInvalidGeometry, spec.EmitterWidthMm, spec.EmitterHeightMm)
	}

	area := spec.AreaMm2()
	var nits float64
	switch {
	case spec.LuminousIntensityMcd > 0:
		nits = MillicandelasToNits(spec.LuminousIntensityMcd, area)
	case spec.LuminousFluxMlm > 0:
		nits = MillilumensToNits(spec.LuminousFluxMlm, area, LambertianBeamFactor)
	}
	nits *= ClampCurrentRatio(spec.CurrentRatio)
	if math.IsInf(nits, 0) {
		return Result{}, fmt.Errorf("%w: %v mcd / %v mlm over %v mm²",
			ErrLuminanceOverflow, spec.LuminousIntensityMcd, spec.LuminousFluxMlm, area)
	}

	return FromNits(nits), nil
}

// FromNits splits a luminance into renderer intensity and exposure. Zero,
// negative and NaN luminance is off; +Inf saturates at the largest finite
// luminance.
func FromNits(nits float64) Result {
	if !(nits > 0) {
		return Result{Intensity: MinIntensity}
	}
	if math.IsInf(nits, 1) {
		nits = math.MaxFloat64
	}
	intensity := colour.Clamp(nits, MinIntensity, MaxIntensity)
	return Result{
		Intensity: intensity,
		Exposure:  math.Log2(nits / intensity),
		Nits:      nits,
	}
}

// MillicandelasToNits returns the luminance of an emitter of areaMm2 with
// the given on-axis luminous intensity: cd / m².
func MillicandelasToNits(mcd, areaMm2 float64) float64 {
	if mcd <= 0 || areaMm2 <= 0 {
		return 0
	}
	return (mcd / 1000) / (areaMm2 * 1e-6)
}

// MillilumensToNits returns the luminance of an emitter of areaMm2 radiating
// the given flux: lm / (π · m² · beamFactor).
func MillilumensToNits(mlm, areaMm2, beamFactor float64) float64 {
	if mlm <= 0 || areaMm2 <= 0 || beamFactor <= 0 {
		return 0
	}
	return (mlm / 1000) / (math.Pi * areaMm2 * 1e-6 * beamFactor)
}

// IntensityToNits is the inverse of FromNits: intensity × 2^exposure.
func IntensityToNits(intensity, exposure float64) float64 {
	return intensity * math.Exp2(exposure)
}
