package scene

import (
	"sort"
	"strings"
)

// Attribute namespaces.
const (
	Namespace     = "lumen:"
	HostNamespace = "host:"
)

// Mode selectors.
const (
	AttrColorMode      = "lumen:colorMode"
	AttrBrightnessMode = "lumen:brightnessMode"
)

// Spectral inputs.
const (
	AttrSpectralSourceMode       = "lumen:spectral:sourceMode"
	AttrSpectralPeakWavelength   = "lumen:spectral:peakWavelength"
	AttrSpectralBandwidthFwhm    = "lumen:spectral:bandwidthFwhm"
	AttrSpectralCurveWavelengths = "lumen:spectral:curveWavelengths"
	AttrSpectralCurveIntensities = "lumen:spectral:curveIntensities"
	AttrSpectralCurvePath        = "lumen:spectral:curvePath"
	AttrSpectralWhiteMix         = "lumen:spectral:whiteMix"
)

// Photometric inputs.
const (
	AttrPhotometricIntensityMcd    = "lumen:photometric:intensityMcd"
	AttrPhotometricFluxMlm         = "lumen:photometric:fluxMlm"
	AttrPhotometricEmitterWidthMm  = "lumen:photometric:emitterWidthMm"
	AttrPhotometricEmitterHeightMm = "lumen:photometric:emitterHeightMm"
	AttrPhotometricCurrentRatio    = "lumen:photometric:currentRatio"
)

// Temperature inputs.
const (
	AttrTemperatureOverall = "lumen:temperature:overall"
	AttrTemperatureRed     = "lumen:temperature:red"
	AttrTemperatureGreen   = "lumen:temperature:green"
	AttrTemperatureBlue    = "lumen:temperature:blue"
)

// Computed outputs written by the engine.
const (
	AttrComputedColor              = "lumen:computed:color"
	AttrComputedIntensity          = "lumen:computed:intensity"
	AttrComputedExposure           = "lumen:computed:exposure"
	AttrComputedNits               = "lumen:computed:nits"
	AttrComputedSpdInfo            = "lumen:computed:spdInfo"
	AttrComputedColorResolved      = "lumen:computed:colorResolved"
	AttrComputedBrightnessResolved = "lumen:computed:brightnessResolved"
)

// Renderer inputs owned by the host.
const (
	AttrHostColor                  = "host:color"
	AttrHostIntensity              = "host:intensity"
	AttrHostExposure               = "host:exposure"
	AttrHostEnableColorTemperature = "host:enableColorTemperature"
)

// Class groups attribute names by how a change to them is handled.
type Class int

const (
	// Ignored attributes never cause a recompute.
	Ignored Class = iota

	// Trigger attributes are inputs; changing one schedules a recompute.
	Trigger

	// Derived attributes are written by the engine itself.
	Derived
)

func (c Class) String() string {
	switch c {
	case Trigger:
		return "trigger"
	case Derived:
		return "derived"
	default:
		return "ignored"
	}
}

var triggers = map[string]struct{}{
	AttrColorMode:                  {},
	AttrBrightnessMode:             {},
	AttrSpectralSourceMode:         {},
	AttrSpectralPeakWavelength:     {},
	AttrSpectralBandwidthFwhm:      {},
	AttrSpectralCurveWavelengths:   {},
	AttrSpectralCurveIntensities:   {},
	AttrSpectralCurvePath:          {},
	AttrSpectralWhiteMix:           {},
	AttrPhotometricIntensityMcd:    {},
	AttrPhotometricFluxMlm:         {},
	AttrPhotometricEmitterWidthMm:  {},
	AttrPhotometricEmitterHeightMm: {},
	AttrPhotometricCurrentRatio:    {},
	AttrTemperatureOverall:         {},
	AttrTemperatureRed:             {},
	AttrTemperatureGreen:           {},
	AttrTemperatureBlue:            {},
}

var derived = map[string]struct{}{
	AttrComputedColor:              {},
	AttrComputedIntensity:          {},
	AttrComputedExposure:           {},
	AttrComputedNits:               {},
	AttrComputedSpdInfo:            {},
	AttrComputedColorResolved:      {},
	AttrComputedBrightnessResolved: {},
	AttrHostColor:                  {},
	AttrHostIntensity:              {},
	AttrHostExposure:               {},
	AttrHostEnableColorTemperature: {},
}

// Classify returns the class of an attribute name.
func Classify(name string) Class {
	if _, ok := triggers[name]; ok {
		return Trigger
	}
	if _, ok := derived[name]; ok {
		return Derived
	}
	return Ignored
}

// IsTrigger reports whether name is an input attribute.
func IsTrigger(name string) bool { return Classify(name) == Trigger }

// IsDerived reports whether name is written by the engine.
func IsDerived(name string) bool { return Classify(name) == Derived }

// HasLumenAttributes reports whether any attribute lives in the lumen
// namespace. Entities without any are left entirely to the host.
func HasLumenAttributes(attrs Attributes) bool {
	for k := range attrs {
		if strings.HasPrefix(k, Namespace) {
			return true
		}
	}
	return false
}

// TriggerNames returns every input attribute name.
func TriggerNames() []string {
	return keys(triggers)
}

// DerivedNames returns every attribute the engine may write.
func DerivedNames() []string {
	return keys(derived)
}

func keys(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
