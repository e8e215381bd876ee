package light

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/lumen/internal/scene"
	"github.com/jmylchreest/lumen/internal/spectral"
)

func TestFromAttributesDefaults(t *testing.T) {
	e, err := FromAttributes("led1", nil)
	require.NoError(t, err)
	assert.Equal(t, Default("led1"), e)
	assert.Equal(t, ColorTemperature, e.ColorMode)
	assert.Equal(t, BrightnessNative, e.BrightnessMode)
	assert.Equal(t, 550.0, e.Spectral.PeakWavelengthNm)
	assert.Equal(t, 0.5, e.Photometric.EmitterWidthMm)
	assert.Equal(t, 6500.0, e.Temperature.BlueKelvin)
	assert.Empty(t, e.Clamps())
}

func TestFromAttributes(t *testing.T) {
	attrs := scene.Attributes{
		scene.AttrColorMode:                "Spectral",
		scene.AttrBrightnessMode:           "photometric",
		scene.AttrSpectralSourceMode:       "manual",
		scene.AttrSpectralCurveWavelengths: []float64{500, 520},
		scene.AttrSpectralCurveIntensities: []float64{1, 0.5},
		scene.AttrSpectralWhiteMix:         0.2,
		scene.AttrPhotometricIntensityMcd:  90.0,
		scene.AttrSpectralCurvePath:        " curves/green.csv ",
		"xformOp:translate":                []float64{0, 0, 1},
	}
	e, err := FromAttributes("led1", attrs)
	require.NoError(t, err)
	assert.Equal(t, ColorSpectral, e.ColorMode)
	assert.Equal(t, BrightnessPhotometric, e.BrightnessMode)
	assert.Equal(t, spectral.SourceManual, e.Spectral.SourceMode)
	assert.Equal(t, []float64{500, 520}, e.Spectral.CurveWavelengthsNm)
	assert.Equal(t, 0.2, e.Spectral.WhiteMixFraction)
	assert.Equal(t, 90.0, e.Photometric.LuminousIntensityMcd)
	assert.Equal(t, "curves/green.csv", e.CurvePath)
}

func TestFromAttributesBadMode(t *testing.T) {
	_, err := FromAttributes("led1", scene.Attributes{scene.AttrColorMode: "rainbow"})
	assert.Error(t, err)
	_, err = FromAttributes("led1", scene.Attributes{scene.AttrBrightnessMode: "loud"})
	assert.Error(t, err)
	_, err = FromAttributes("led1", scene.Attributes{scene.AttrSpectralSourceMode: "laser"})
	assert.Error(t, err)
}

func TestAttributesRoundTrip(t *testing.T) {
	e := Default("led1")
	e.ColorMode = ColorSpectral
	e.Spectral.SourceMode = spectral.SourceCurve
	e.Spectral.CurveWavelengthsNm = []float64{500, 525, 550}
	e.Spectral.CurveIntensities = []float64{0.1, 1, 0.1}
	e.CurvePath = "green.csv"
	e.Temperature.RedKelvin = 2700

	back, err := FromAttributes("led1", e.Attributes())
	require.NoError(t, err)
	assert.Equal(t, e, back)

	for _, name := range e.Attributes().Names() {
		assert.True(t, scene.IsTrigger(name), "%s should be an input attribute", name)
	}
}

func TestClamps(t *testing.T) {
	e := Default("led1")
	e.Temperature.OverallKelvin = 500
	e.Temperature.RedKelvin = 0
	e.Photometric.CurrentRatio = 2
	assert.Equal(t, []Clamp{
		{Attribute: scene.AttrTemperatureOverall, Requested: 500, Applied: 1000},
		{Attribute: scene.AttrTemperatureRed, Requested: 0, Applied: 6500},
	}, e.Clamps(), "current ratio only matters in photometric mode")

	e.ColorMode = ColorSpectral
	e.BrightnessMode = BrightnessPhotometric
	e.Spectral.WhiteMixFraction = -1
	assert.Equal(t, []Clamp{
		{Attribute: scene.AttrSpectralWhiteMix, Requested: -1, Applied: 0},
		{Attribute: scene.AttrPhotometricCurrentRatio, Requested: 2, Applied: 1},
	}, e.Clamps())
}
