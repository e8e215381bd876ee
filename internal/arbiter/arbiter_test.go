package arbiter

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/lumen/internal/colour"
	"github.com/jmylchreest/lumen/internal/light"
	"github.com/jmylchreest/lumen/internal/photometric"
	"github.com/jmylchreest/lumen/internal/scene"
	"github.com/jmylchreest/lumen/internal/spectral"
	"github.com/jmylchreest/lumen/internal/temperature"
)

func spectralLight() light.Entity {
	e := light.Default("led1")
	e.ColorMode = light.ColorSpectral
	return e
}

func TestEvaluateSpectralNativeBrightness(t *testing.T) {
	p := New().Evaluate(spectralLight())

	assert.Equal(t, ManagedSpectral, p.Color)
	assert.Equal(t, NativeBrightness, p.Brightness)
	assert.False(t, p.Failed())
	require.NotNil(t, p.Output.Color)
	assert.Nil(t, p.Output.Brightness)

	assert.ElementsMatch(t, []string{
		scene.AttrComputedColor,
		scene.AttrHostColor,
		scene.AttrHostEnableColorTemperature,
		scene.AttrComputedColorResolved,
	}, p.Writes.Names())
	assert.Equal(t, false, p.Writes[scene.AttrHostEnableColorTemperature])
	assert.Equal(t, p.Output.Color.Slice(), p.Writes[scene.AttrHostColor])
}

func TestEvaluateTemperature(t *testing.T) {
	p := New().Evaluate(light.Default("led1"))
	assert.Equal(t, ManagedTemperature, p.Color)
	require.NotNil(t, p.Output.Color)
	assert.True(t, p.Output.Color.IsNeutral(0.1))
	assert.Equal(t, false, p.Writes[scene.AttrHostEnableColorTemperature])
}

func TestEvaluatePhotometric(t *testing.T) {
	e := spectralLight()
	e.BrightnessMode = light.BrightnessPhotometric
	e.Photometric.LuminousIntensityMcd = 90

	p := New().Evaluate(e)
	assert.Equal(t, ManagedPhotometric, p.Brightness)
	require.NotNil(t, p.Output.Brightness)
	assert.InDelta(t, 600000, p.Output.Brightness.Nits, 1e-6)
	assert.Equal(t, 100.0, p.Writes[scene.AttrHostIntensity])
	assert.InDelta(t, 12.5507, p.Writes[scene.AttrHostExposure].(float64), 1e-3)
	assert.Equal(t, true, p.Writes[scene.AttrComputedBrightnessResolved])
}

func TestEvaluatePhotometricNeedsData(t *testing.T) {
	e := spectralLight()
	e.BrightnessMode = light.BrightnessPhotometric

	p := New().Evaluate(e)
	assert.Equal(t, NativeBrightness, p.Brightness)
	for _, name := range []string{
		scene.AttrHostIntensity, scene.AttrHostExposure,
		scene.AttrComputedIntensity, scene.AttrComputedBrightnessResolved,
	} {
		assert.NotContains(t, p.Writes, name)
	}
}

func TestEvaluateWritesOnlyDerived(t *testing.T) {
	e := spectralLight()
	e.BrightnessMode = light.BrightnessPhotometric
	e.Photometric.LuminousFluxMlm = 300
	e.Spectral.SourceMode = spectral.SourceManual
	e.Spectral.CurveWavelengthsNm = []float64{500, 525, 550}
	e.Spectral.CurveIntensities = []float64{0.1, 1, 0.1}

	p := New().Evaluate(e)
	require.False(t, p.Failed())
	for name := range p.Writes {
		assert.True(t, scene.IsDerived(name), "%s is not a derived attribute", name)
	}
	assert.Equal(t, "3 pts, 500-550nm, peak 525nm, FWHM ~30nm", p.Writes[scene.AttrComputedSpdInfo])
}

func TestEvaluateFailureIsolation(t *testing.T) {
	e := spectralLight()
	e.Spectral.BandwidthFwhmNm = 0
	e.BrightnessMode = light.BrightnessPhotometric
	e.Photometric.LuminousIntensityMcd = 90

	p := New().Evaluate(e)
	require.Len(t, p.Failures, 1)
	f := p.Failures[0]
	assert.Equal(t, AxisColor, f.Axis)
	assert.Equal(t, ResolverSpectral, f.Resolver)
	assert.True(t, errors.Is(p.Err(), spectral.ErrInvalidSpectralInput))

	assert.NotContains(t, p.Writes, scene.AttrHostColor)
	assert.Equal(t, false, p.Writes[scene.AttrComputedColorResolved])
	assert.Equal(t, true, p.Writes[scene.AttrComputedBrightnessResolved], "brightness resolves independently")

	e = spectralLight()
	e.BrightnessMode = light.BrightnessPhotometric
	e.Photometric.LuminousIntensityMcd = 90
	e.Photometric.EmitterWidthMm = 0
	p = New().Evaluate(e)
	require.Len(t, p.Failures, 1)
	assert.True(t, errors.Is(p.Failures[0], photometric.ErrInvalidGeometry))
	assert.Equal(t, true, p.Writes[scene.AttrComputedColorResolved])
	assert.NotContains(t, p.Writes, scene.AttrHostIntensity)
}

func TestEvaluateCustomResolvers(t *testing.T) {
	calls := 0
	a := New(WithResolvers(Resolvers{
		Temperature: func(temperature.Spec) colour.Linear {
			calls++
			return colour.Black
		},
	}))

	p := a.Evaluate(light.Default("led1"))
	assert.Equal(t, 1, calls)
	assert.Equal(t, colour.Black.Slice(), p.Writes[scene.AttrHostColor])

	// Unset resolvers keep their defaults.
	p = a.Evaluate(spectralLight())
	assert.Equal(t, 1, calls)
	require.NotNil(t, p.Output.Color)
	assert.Equal(t, 1.0, p.Output.Color.G)
}

func TestEvaluateCurvePath(t *testing.T) {
	e := spectralLight()
	e.Spectral.SourceMode = spectral.SourceCurve
	e.CurvePath = "green.csv"

	loaded := ""
	a := New(WithCurveLoader(func(path string) (*spectral.Curve, error) {
		loaded = path
		return spectral.NewCurve([]float64{500, 525, 550}, []float64{0.1, 1, 0.1})
	}))
	p := a.Evaluate(e)
	require.False(t, p.Failed(), "%v", p.Err())
	assert.Equal(t, "green.csv", loaded)
	assert.Contains(t, p.Output.SpdInfo, "peak 525nm")

	p = New().Evaluate(e)
	require.Len(t, p.Failures, 1)
	assert.Equal(t, ResolverCurve, p.Failures[0].Resolver)
	assert.True(t, errors.Is(p.Failures[0], ErrNoCurveLoader))
}

func TestFileCurveLoader(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "green.csv"), []byte("500,0.1\n525,1\n550,0.1\n"), 0o600))

	load := FileCurveLoader(dir, 0)
	c, err := load("green.csv")
	require.NoError(t, err)
	assert.Equal(t, 525.0, c.Info().PeakNm)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "led..v2.csv"), []byte("600,0.1\n625,1\n650,0.1\n"), 0o600))
	c, err = load("led..v2.csv")
	require.NoError(t, err)
	assert.Equal(t, 625.0, c.Info().PeakNm)

	_, err = load("../etc/passwd")
	assert.Error(t, err)
	_, err = load("/etc/passwd")
	assert.Error(t, err)
}

func TestApply(t *testing.T) {
	s := scene.NewStore()
	require.NoError(t, s.Add("led1", "", scene.Attributes{
		scene.AttrColorMode:              "spectral",
		scene.AttrSpectralPeakWavelength: 630.0,
	}))
	a := New()

	p, err := a.Apply(s, "led1")
	require.NoError(t, err)
	require.NotNil(t, p.Output.Color)
	attrs, _ := s.Read("led1")
	first := attrs[scene.AttrHostColor]
	assert.Equal(t, p.Output.Color.Slice(), first)

	// A failing colour keeps the previous output and marks it unresolved.
	require.NoError(t, s.Write("led1", scene.Attributes{scene.AttrSpectralBandwidthFwhm: -1.0}))
	p, err = a.Apply(s, "led1")
	require.NoError(t, err)
	assert.True(t, p.Failed())
	attrs, _ = s.Read("led1")
	assert.Equal(t, first, attrs[scene.AttrHostColor])
	assert.Equal(t, false, attrs[scene.AttrComputedColorResolved])

	// Inputs are never modified.
	v, _ := attrs.Float(scene.AttrSpectralBandwidthFwhm)
	assert.Equal(t, -1.0, v)
}

func TestApplyUnknownAndForeign(t *testing.T) {
	s := scene.NewStore()
	require.NoError(t, s.Add("host-light", "", scene.Attributes{"intensity": 5.0}))
	a := New()

	p, err := a.Apply(s, "host-light")
	require.NoError(t, err)
	assert.Equal(t, NativeTemperature, p.Color)
	assert.Empty(t, p.Writes)
	attrs, _ := s.Read("host-light")
	assert.Len(t, attrs, 1)

	p, err = a.Apply(s, "ghost")
	assert.True(t, errors.Is(err, scene.ErrEntityNotFound))
	assert.Equal(t, ManagedTemperature, p.Color, "unknown ids evaluate with defaults")
}

func TestApplyBadInput(t *testing.T) {
	s := scene.NewStore()
	require.NoError(t, s.Add("led1", "", scene.Attributes{scene.AttrColorMode: "rainbow"}))

	p, err := New().Apply(s, "led1")
	require.NoError(t, err)
	require.Len(t, p.Failures, 1)
	assert.Equal(t, ResolverInput, p.Failures[0].Resolver)
	attrs, _ := s.Read("led1")
	assert.Equal(t, false, attrs[scene.AttrComputedColorResolved])
	assert.NotContains(t, attrs, scene.AttrHostColor)
}
