// Package light is the typed view of a light entity's input attributes.
package light

import (
	"fmt"
	"math"
	"strings"

	"github.com/jmylchreest/lumen/internal/colour"
	"github.com/jmylchreest/lumen/internal/photometric"
	"github.com/jmylchreest/lumen/internal/scene"
	"github.com/jmylchreest/lumen/internal/spectral"
	"github.com/jmylchreest/lumen/internal/temperature"
)

// ColorMode selects which resolver owns the light's colour.
type ColorMode string

const (
	ColorSpectral    ColorMode = "spectral"
	ColorTemperature ColorMode = "temperature"
)

// ParseColorMode parses a colour mode; an empty string is the default.
func ParseColorMode(s string) (ColorMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "spectral":
		return ColorSpectral, nil
	case "", "temperature":
		return ColorTemperature, nil
	}
	return "", fmt.Errorf("unknown color mode %q (valid: spectral, temperature)", s)
}

// BrightnessMode selects which resolver owns intensity and exposure.
type BrightnessMode string

const (
	BrightnessNative      BrightnessMode = "native"
	BrightnessPhotometric BrightnessMode = "photometric"
)

// ParseBrightnessMode parses a brightness mode; an empty string is the default.
func ParseBrightnessMode(s string) (BrightnessMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "photometric":
		return BrightnessPhotometric, nil
	case "", "native":
		return BrightnessNative, nil
	}
	return "", fmt.Errorf("unknown brightness mode %q (valid: native, photometric)", s)
}

// Entity is a light's complete input state.
type Entity struct {
	ID             string           `json:"id"`
	ColorMode      ColorMode        `json:"colorMode"`
	BrightnessMode BrightnessMode   `json:"brightnessMode"`
	Spectral       spectral.Spec    `json:"spectral"`
	CurvePath      string           `json:"curvePath,omitempty"`
	Photometric    photometric.Spec `json:"photometric"`
	Temperature    temperature.Spec `json:"temperature"`
}

// Default returns the state of a light with no input attributes.
func Default(id string) Entity {
	return Entity{
		ID:             id,
		ColorMode:      ColorTemperature,
		BrightnessMode: BrightnessNative,
		Spectral:       spectral.DefaultSpec(),
		Photometric:    photometric.DefaultSpec(),
		Temperature:    temperature.DefaultSpec(),
	}
}

// FromAttributes reads the entity's inputs. Missing attributes take their
// defaults; malformed mode strings are reported as errors so a typo is never
// silently treated as a mode switch.
func FromAttributes(id string, attrs scene.Attributes) (Entity, error) {
	e := Default(id)

	if s, ok := attrs.String(scene.AttrColorMode); ok {
		m, err := ParseColorMode(s)
		if err != nil {
			return e, err
		}
		e.ColorMode = m
	}
	if s, ok := attrs.String(scene.AttrBrightnessMode); ok {
		m, err := ParseBrightnessMode(s)
		if err != nil {
			return e, err
		}
		e.BrightnessMode = m
	}
	if s, ok := attrs.String(scene.AttrSpectralSourceMode); ok {
		m, err := spectral.ParseSourceMode(s)
		if err != nil {
			return e, err
		}
		e.Spectral.SourceMode = m
	}

	readFloat(attrs, scene.AttrSpectralPeakWavelength, &e.Spectral.PeakWavelengthNm)
	readFloat(attrs, scene.AttrSpectralBandwidthFwhm, &e.Spectral.BandwidthFwhmNm)
	readFloat(attrs, scene.AttrSpectralWhiteMix, &e.Spectral.WhiteMixFraction)
	if v, ok := attrs.Floats(scene.AttrSpectralCurveWavelengths); ok {
		e.Spectral.CurveWavelengthsNm = v
	}
	if v, ok := attrs.Floats(scene.AttrSpectralCurveIntensities); ok {
		e.Spectral.CurveIntensities = v
	}
	if s, ok := attrs.String(scene.AttrSpectralCurvePath); ok {
		e.CurvePath = strings.TrimSpace(s)
	}

	readFloat(attrs, scene.AttrPhotometricIntensityMcd, &e.Photometric.LuminousIntensityMcd)
	readFloat(attrs, scene.AttrPhotometricFluxMlm, &e.Photometric.LuminousFluxMlm)
	readFloat(attrs, scene.AttrPhotometricEmitterWidthMm, &e.Photometric.EmitterWidthMm)
	readFloat(attrs, scene.AttrPhotometricEmitterHeightMm, &e.Photometric.EmitterHeightMm)
	readFloat(attrs, scene.AttrPhotometricCurrentRatio, &e.Photometric.CurrentRatio)

	readFloat(attrs, scene.AttrTemperatureOverall, &e.Temperature.OverallKelvin)
	readFloat(attrs, scene.AttrTemperatureRed, &e.Temperature.RedKelvin)
	readFloat(attrs, scene.AttrTemperatureGreen, &e.Temperature.GreenKelvin)
	readFloat(attrs, scene.AttrTemperatureBlue, &e.Temperature.BlueKelvin)

	return e, nil
}

func readFloat(attrs scene.Attributes, name string, dst *float64) {
	if v, ok := attrs.Float(name); ok {
		*dst = v
	}
}

// Attributes renders the entity's inputs as scene attributes.
func (e Entity) Attributes() scene.Attributes {
	attrs := scene.Attributes{
		scene.AttrColorMode:                  string(e.ColorMode),
		scene.AttrBrightnessMode:             string(e.BrightnessMode),
		scene.AttrSpectralSourceMode:         string(e.Spectral.SourceMode),
		scene.AttrSpectralPeakWavelength:     e.Spectral.PeakWavelengthNm,
		scene.AttrSpectralBandwidthFwhm:      e.Spectral.BandwidthFwhmNm,
		scene.AttrSpectralWhiteMix:           e.Spectral.WhiteMixFraction,
		scene.AttrPhotometricIntensityMcd:    e.Photometric.LuminousIntensityMcd,
		scene.AttrPhotometricFluxMlm:         e.Photometric.LuminousFluxMlm,
		scene.AttrPhotometricEmitterWidthMm:  e.Photometric.EmitterWidthMm,
		scene.AttrPhotometricEmitterHeightMm: e.Photometric.EmitterHeightMm,
		scene.AttrPhotometricCurrentRatio:    e.Photometric.CurrentRatio,
		scene.AttrTemperatureOverall:         e.Temperature.OverallKelvin,
		scene.AttrTemperatureRed:             e.Temperature.RedKelvin,
		scene.AttrTemperatureGreen:           e.Temperature.GreenKelvin,
		scene.AttrTemperatureBlue:            e.Temperature.BlueKelvin,
	}
	if len(e.Spectral.CurveWavelengthsNm) > 0 {
		attrs[scene.AttrSpectralCurveWavelengths] = append([]float64(nil), e.Spectral.CurveWavelengthsNm...)
		attrs[scene.AttrSpectralCurveIntensities] = append([]float64(nil), e.Spectral.CurveIntensities...)
	}
	if e.CurvePath != "" {
		attrs[scene.AttrSpectralCurvePath] = e.CurvePath
	}
	return attrs
}

// Clamp records an input that was outside its valid range.
type Clamp struct {
	Attribute string  `json:"attribute"`
	Requested float64 `json:"requested"`
	Applied   float64 `json:"applied"`
}

func (c Clamp) String() string {
	return fmt.Sprintf("%s: %g -> %g", c.Attribute, c.Requested, c.Applied)
}

// Clamps reports the inputs the resolvers will clamp.
func (e Entity) Clamps() []Clamp {
	var out []Clamp
	check := func(name string, requested, applied float64) {
		if requested != applied && !(math.IsNaN(requested) && math.IsNaN(applied)) {
			out = append(out, Clamp{Attribute: name, Requested: requested, Applied: applied})
		}
	}

	if e.ColorMode == ColorSpectral {
		wm := e.Spectral.WhiteMixFraction
		applied := colour.Clamp01(wm)
		if math.IsNaN(wm) {
			applied = 0
		}
		check(scene.AttrSpectralWhiteMix, wm, applied)
	} else {
		t := e.Temperature
		check(scene.AttrTemperatureOverall, t.OverallKelvin, temperature.Clamp(t.OverallKelvin))
		check(scene.AttrTemperatureRed, t.RedKelvin, temperature.Clamp(t.RedKelvin))
		check(scene.AttrTemperatureGreen, t.GreenKelvin, temperature.Clamp(t.GreenKelvin))
		check(scene.AttrTemperatureBlue, t.BlueKelvin, temperature.Clamp(t.BlueKelvin))
	}
	if e.BrightnessMode == BrightnessPhotometric {
		r := e.Photometric.CurrentRatio
		check(scene.AttrPhotometricCurrentRatio, r, photometric.ClampCurrentRatio(r))
	}
	return out
}
