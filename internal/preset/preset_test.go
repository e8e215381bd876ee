package preset

import (
	"math"
	"testing"

	"github.com/jmylchreest/lumen/internal/light"
	"github.com/jmylchreest/lumen/internal/photometric"
	"github.com/jmylchreest/lumen/internal/spectral"
)

func TestRegistry(t *testing.T) {
	if got := len(All()); got != 18 {
		t.Errorf("len(All()) = %d, want 18", got)
	}
	names := Names()
	for i := 1; i < len(names); i++ {
		if names[i-1] >= names[i] {
			t.Errorf("names not sorted: %q >= %q", names[i-1], names[i])
		}
	}
}

func TestLookupQH9G(t *testing.T) {
	p, err := Lookup("OSRAM_LT_QH9G")
	if err != nil {
		t.Fatalf("Lookup() error = %v", err)
	}
	if p.Label() != "OSRAM LT QH9G" {
		t.Errorf("Label() = %q", p.Label())
	}

	res, err := photometric.Resolve(p.Photometric())
	if err != nil {
		t.Fatalf("photometric.Resolve() error = %v", err)
	}
	if math.Abs(res.Nits-600000) > 1e-6 || res.Intensity != 100 {
		t.Errorf("photometric = %v, want 600000 nits at intensity 100", res)
	}

	c, err := spectral.Resolve(p.Spectral(0))
	if err != nil {
		t.Fatalf("spectral.Resolve() error = %v", err)
	}
	if c.G != 1 || c.R >= c.G || c.B >= c.G {
		t.Errorf("QH9G colour = %s, want green", c)
	}

	if bf := p.BeamFactor(); bf < 1 || bf > 2 {
		t.Errorf("BeamFactor() = %v, want a mild concentration", bf)
	}
	if eff := p.Efficacy(); math.Abs(eff-683*0.8620) > 1 {
		t.Errorf("Efficacy() = %v", eff)
	}
}

func TestLookupUnknown(t *testing.T) {
	if _, err := Lookup("laser_1064"); err == nil {
		t.Error("Lookup() succeeded for unknown preset")
	}
}

func TestApply(t *testing.T) {
	p, _ := Lookup("amber_590")

	e := light.Default("led1")
	e.Spectral.WhiteMixFraction = 0.3
	e.Photometric.CurrentRatio = 0.5
	e.CurvePath = "old.csv"

	got := p.Apply(e)
	if got.ColorMode != light.ColorSpectral || got.BrightnessMode != light.BrightnessPhotometric {
		t.Errorf("modes = %s/%s", got.ColorMode, got.BrightnessMode)
	}
	if got.Spectral.PeakWavelengthNm != 590 || got.Spectral.BandwidthFwhmNm != 15 {
		t.Errorf("spectral = %+v", got.Spectral)
	}
	if got.Spectral.WhiteMixFraction != 0.3 || got.Photometric.CurrentRatio != 0.5 {
		t.Error("Apply() did not keep white mix and current ratio")
	}
	if got.CurvePath != "" {
		t.Errorf("CurvePath = %q, want cleared", got.CurvePath)
	}
	if got.Photometric.LuminousIntensityMcd != 800 {
		t.Errorf("intensity = %v, want 800", got.Photometric.LuminousIntensityMcd)
	}
}

func TestParseRejectsInvalid(t *testing.T) {
	if _, err := parse([]byte("bad:\n  fwhmNm: 0\n  emitterWidthMm: 1\n  emitterHeightMm: 1\n")); err == nil {
		t.Error("parse() accepted zero bandwidth")
	}
	if _, err := parse([]byte("[")); err == nil {
		t.Error("parse() accepted malformed YAML")
	}
}
