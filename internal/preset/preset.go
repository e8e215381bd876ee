// Package preset provides datasheet presets for common LEDs.
package preset

import (
	_ "embed"
	"fmt"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/jmylchreest/lumen/internal/colorimetry"
	"github.com/jmylchreest/lumen/internal/light"
	"github.com/jmylchreest/lumen/internal/photometric"
	"github.com/jmylchreest/lumen/internal/spectral"
)

//go:embed presets.yaml
var presetsYAML []byte

// LED is a datasheet preset.
type LED struct {
	Name            string  `yaml:"-" json:"name"`
	Manufacturer    string  `yaml:"manufacturer" json:"manufacturer"`
	Model           string  `yaml:"model" json:"model"`
	Package         string  `yaml:"package" json:"package"`
	PeakNm          float64 `yaml:"peakNm" json:"peakNm"`
	DominantNm      float64 `yaml:"dominantNm" json:"dominantNm"`
	FwhmNm          float64 `yaml:"fwhmNm" json:"fwhmNm"`
	IntensityMcd    float64 `yaml:"intensityMcd" json:"intensityMcd"`
	FluxMlm         float64 `yaml:"fluxMlm" json:"fluxMlm"`
	EmitterWidthMm  float64 `yaml:"emitterWidthMm" json:"emitterWidthMm"`
	EmitterHeightMm float64 `yaml:"emitterHeightMm" json:"emitterHeightMm"`
	HalfAngleHDeg   float64 `yaml:"halfAngleHDeg" json:"halfAngleHDeg"`
	HalfAngleVDeg   float64 `yaml:"halfAngleVDeg" json:"halfAngleVDeg"`
	CurrentMa       float64 `yaml:"currentMa" json:"currentMa"`
	VoltageV        float64 `yaml:"voltageV" json:"voltageV"`
}

var registry map[string]LED

func init() {
	var err error
	registry, err = parse(presetsYAML)
	if err != nil {
		panic(fmt.Sprintf("preset: embedded presets are invalid: %v", err))
	}
}

func parse(data []byte) (map[string]LED, error) {
	raw := map[string]LED{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	out := make(map[string]LED, len(raw))
	for name, p := range raw {
		p.Name = name
		if p.FwhmNm <= 0 || p.EmitterWidthMm <= 0 || p.EmitterHeightMm <= 0 {
			return nil, fmt.Errorf("preset %s: bandwidth and emitter size must be > 0", name)
		}
		out[name] = p
	}
	return out, nil
}

// All returns every preset sorted by name.
func All() []LED {
	out := make([]LED, 0, len(registry))
	for _, p := range registry {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Names returns the preset names in sorted order.
func Names() []string {
	all := All()
	names := make([]string, len(all))
	for i, p := range all {
		names[i] = p.Name
	}
	return names
}

// Lookup returns the named preset (case insensitive).
func Lookup(name string) (LED, error) {
	p, ok := registry[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return LED{}, fmt.Errorf("unknown LED preset %q (available: %s)", name, strings.Join(Names(), ", "))
	}
	return p, nil
}

// Label is the manufacturer and model.
func (p LED) Label() string {
	return strings.TrimSpace(p.Manufacturer + " " + p.Model)
}

// Spectral returns the preset's Gaussian SPD.
func (p LED) Spectral(whiteMix float64) spectral.Spec {
	return spectral.Spec{
		SourceMode:       spectral.SourceGaussian,
		PeakWavelengthNm: p.PeakNm,
		BandwidthFwhmNm:  p.FwhmNm,
		WhiteMixFraction: whiteMix,
	}
}

// Photometric returns the preset's datasheet brightness at rated current.
func (p LED) Photometric() photometric.Spec {
	return photometric.Spec{
		LuminousIntensityMcd: p.IntensityMcd,
		LuminousFluxMlm:      p.FluxMlm,
		EmitterWidthMm:       p.EmitterWidthMm,
		EmitterHeightMm:      p.EmitterHeightMm,
		CurrentRatio:         photometric.DefaultCurrentRatio,
	}
}

// BeamFactor estimates on-axis concentration from the viewing angles.
func (p LED) BeamFactor() float64 {
	return photometric.BeamFactorFor(p.HalfAngleHDeg, p.HalfAngleVDeg)
}

// Efficacy is the photopic luminous efficacy at the dominant wavelength.
func (p LED) Efficacy() float64 {
	return colorimetry.LuminousEfficacy(p.DominantNm)
}

// Apply configures e as this LED: spectral colour and photometric
// brightness. The current white mix and drive current are kept.
func (p LED) Apply(e light.Entity) light.Entity {
	ratio := e.Photometric.CurrentRatio

	e.ColorMode = light.ColorSpectral
	e.BrightnessMode = light.BrightnessPhotometric
	e.Spectral = p.Spectral(e.Spectral.WhiteMixFraction)
	e.CurvePath = ""
	e.Photometric = p.Photometric()
	e.Photometric.CurrentRatio = ratio
	return e
}
