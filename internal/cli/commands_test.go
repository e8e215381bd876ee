package cli

import (
	"bytes"
	"encoding/json"
	"image/png"
	"io"
	"math"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/jmylchreest/lumen/internal/scene"
)

// resetFlags restores every flag to its default so commands can be run
// repeatedly in one process.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

// execute runs the CLI with args and returns stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	resetFlags(rootCmd)

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(io.Discard)
	rootCmd.SetArgs(append(args, "--quiet"))
	err := rootCmd.Execute()
	return out.String(), err
}

func executeJSON(t *testing.T, v any, args ...string) {
	t.Helper()
	out, err := execute(t, append(args, "-f", "json")...)
	if err != nil {
		t.Fatalf("%v: %v", args, err)
	}
	if err := json.Unmarshal([]byte(out), v); err != nil {
		t.Fatalf("%v: invalid JSON %q: %v", args, out, err)
	}
}

type colourJSON struct {
	R, G, B float64
}

func TestSpectralCommand(t *testing.T) {
	var res struct {
		Source  string     `json:"source"`
		Color   colourJSON `json:"color"`
		Hex     string     `json:"hex"`
		SpdInfo string     `json:"spdInfo"`
	}

	executeJSON(t, &res, "spectral")
	if res.Color.G != 1 || res.Color.R >= 1 || res.Color.B >= 1 {
		t.Errorf("default Gaussian should be green-dominant, got %+v", res.Color)
	}
	if res.SpdInfo != "" {
		t.Errorf("Gaussian source should have no SPD info, got %q", res.SpdInfo)
	}

	res = struct {
		Source  string     `json:"source"`
		Color   colourJSON `json:"color"`
		Hex     string     `json:"hex"`
		SpdInfo string     `json:"spdInfo"`
	}{}
	executeJSON(t, &res, "spectral", "--preset", "red_625")
	if res.Color.R != 1 || !strings.Contains(res.Source, "red_625") {
		t.Errorf("red preset = %+v", res)
	}

	executeJSON(t, &res, "spectral", "--wavelengths", "440,450,460", "--intensities", "0.5,1,0.5")
	if res.Color.B != 1 || !strings.HasPrefix(res.SpdInfo, "3 pts") {
		t.Errorf("inline curve = %+v", res)
	}

	executeJSON(t, &res, "spectral", "--white-mix", "1")
	if res.Color.R != 1 || res.Color.G != 1 || res.Color.B != 1 {
		t.Errorf("white mix 1 = %+v, want white", res.Color)
	}
}

func TestSpectralCommandCurveFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "red.csv")
	data := "wavelength,intensity\n600,0.2\n620,1\n640,0.2\n"
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatal(err)
	}

	out, err := execute(t, "spectral", "--curve", path)
	if err != nil {
		t.Fatalf("spectral --curve: %v", err)
	}
	for _, want := range []string{"Source:  curve red", "SPD:     3 pts", "Colour:  (1.0000,"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestSpectralCommandCurveURL(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Write([]byte("wavelength,intensity\n440,0.2\n450,1\n460,0.2\n"))
	}))
	defer srv.Close()

	for i := 0; i < 2; i++ {
		out, err := execute(t, "spectral", "--curve", srv.URL+"/spd/blue.csv")
		if err != nil {
			t.Fatalf("spectral --curve URL: %v", err)
		}
		if !strings.Contains(out, "Source:  curve blue") {
			t.Errorf("output missing curve name:\n%s", out)
		}
	}
	if n := hits.Load(); n != 1 {
		t.Errorf("server hits = %d, want 1 (second run cached)", n)
	}

	if _, err := execute(t, "spectral", "--curve", srv.URL+"/spd/blue.csv", "--refresh"); err != nil {
		t.Fatalf("spectral --refresh: %v", err)
	}
	if n := hits.Load(); n != 2 {
		t.Errorf("server hits = %d, want 2 after --refresh", n)
	}
}

func TestSpectralCommandErrors(t *testing.T) {
	tests := [][]string{
		{"spectral", "--wavelengths", "500", "--intensities", "1"},
		{"spectral", "--preset", "nope"},
		{"spectral", "--curve", "/does/not/exist.csv"},
		{"spectral", "--fwhm", "0"},
		{"spectral", "--preset", "red_625", "--curve", "x.csv"},
	}
	for _, args := range tests {
		if _, err := execute(t, args...); err == nil {
			t.Errorf("%v: expected an error", args)
		}
	}
}

func TestPhotometricCommand(t *testing.T) {
	var res struct {
		AreaMm2 float64 `json:"areaMm2"`
		Result  struct {
			Intensity float64 `json:"intensity"`
			Exposure  float64 `json:"exposure"`
			Nits      float64 `json:"nits"`
		} `json:"result"`
		BeamFactor float64 `json:"beamFactor"`
	}

	executeJSON(t, &res, "photometric", "--mcd", "90")
	if res.Result.Intensity != 100 || res.Result.Nits < 599999 || res.Result.Nits > 600001 {
		t.Errorf("QH9G = %+v", res.Result)
	}
	if res.Result.Exposure < 12.5497 || res.Result.Exposure > 12.5517 {
		t.Errorf("exposure = %v, want ~12.5507", res.Result.Exposure)
	}

	executeJSON(t, &res, "photometric", "--mcd", "90", "--package", "5050")
	if res.AreaMm2 != 16 {
		t.Errorf("5050 area = %v, want 16", res.AreaMm2)
	}

	executeJSON(t, &res, "photometric", "--preset", "osram_lt_qh9g", "--current", "0.5")
	if res.BeamFactor < 1 || res.Result.Nits < 299999 || res.Result.Nits > 300001 {
		t.Errorf("preset at half current = %+v", res)
	}

	executeJSON(t, &res, "photometric")
	if res.Result.Intensity != 0.01 || res.Result.Exposure != 0 || res.Result.Nits != 0 {
		t.Errorf("no data = %+v, want {0.01 0 0}", res.Result)
	}

	if _, err := execute(t, "photometric", "--mcd", "90", "--width", "0"); err == nil {
		t.Error("zero width should fail")
	}
}

func TestPhotometricNitsCommand(t *testing.T) {
	var res struct {
		Nits float64 `json:"nits"`
	}
	executeJSON(t, &res, "photometric", "nits", "--intensity", "100", "--exposure", "12.5507")
	if math.Abs(res.Nits-600000) > 100 {
		t.Errorf("nits = %v, want ~600000", res.Nits)
	}

	out, err := execute(t, "photometric", "nits", "--intensity", "2", "--exposure", "3")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "Luminance:  16 nits") {
		t.Errorf("output = %q", out)
	}

	if _, err := execute(t, "photometric", "nits", "--intensity", "-1"); err == nil {
		t.Error("negative intensity should fail")
	}
}

func TestTemperatureCommand(t *testing.T) {
	var res struct {
		Spec struct {
			OverallKelvin float64 `json:"overallKelvin"`
		} `json:"spec"`
		Color     colourJSON  `json:"color"`
		Blackbody *colourJSON `json:"blackbody"`
	}

	executeJSON(t, &res, "temperature", "--kelvin", "2700", "--blackbody")
	if res.Color.R <= res.Color.B {
		t.Errorf("2700 K should be warm, got %+v", res.Color)
	}
	if res.Blackbody == nil || res.Blackbody.R != 1 {
		t.Errorf("blackbody = %+v", res.Blackbody)
	}

	executeJSON(t, &res, "temperature", "--kelvin", "500")
	if res.Spec.OverallKelvin != 1000 {
		t.Errorf("clamped kelvin = %v, want 1000", res.Spec.OverallKelvin)
	}
}

func TestPresetsCommand(t *testing.T) {
	var rows []struct {
		Name   string  `json:"name"`
		PeakNm float64 `json:"peakNm"`
	}
	executeJSON(t, &rows, "presets", "--sort", "peak")
	if len(rows) != 18 {
		t.Fatalf("got %d presets, want 18", len(rows))
	}
	for i := 1; i < len(rows); i++ {
		if rows[i].PeakNm < rows[i-1].PeakNm {
			t.Fatalf("not sorted by peak at %d: %v", i, rows)
		}
	}

	out, err := execute(t, "presets")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(out, "NAME") || !strings.Contains(out, "osram_lt_qh9g") {
		t.Errorf("unexpected table:\n%s", out)
	}

	if _, err := execute(t, "presets", "--sort", "colour"); err == nil {
		t.Error("invalid --sort should fail")
	}

	out, err = execute(t, "presets", "packages")
	if err != nil || !strings.Contains(out, "cob_large") {
		t.Errorf("packages: %v\n%s", err, out)
	}
}

const testScene = `lights:
  - id: key
    name: Key light
    attributes:
      lumen:colorMode: spectral
      lumen:spectral:peakWavelength: 525
      lumen:brightnessMode: photometric
      lumen:photometric:intensityMcd: 90
  - id: fill
    attributes:
      lumen:temperature:overall: 3200
  - id: host-only
    attributes:
      intensity: 5
`

func writeScene(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scene.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRecomputeCommand(t *testing.T) {
	path := writeScene(t, testScene)

	out, err := execute(t, "recompute", path)
	if err != nil {
		t.Fatalf("recompute: %v", err)
	}
	if !strings.Contains(out, "Key light (key)") || !strings.Contains(out, "managed-photometric") {
		t.Errorf("unexpected output:\n%s", out)
	}

	doc, err := scene.LoadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	key := doc.Lights[0].Attributes
	if v, _ := key.Float(scene.AttrHostIntensity); v != 100 {
		t.Errorf("host intensity = %v, want 100", v)
	}
	if _, ok := doc.Lights[1].Attributes.Floats(scene.AttrComputedColor); !ok {
		t.Error("fill light has no computed colour")
	}
	if len(doc.Lights[2].Attributes) != 1 {
		t.Errorf("host-only light was modified: %v", doc.Lights[2].Attributes)
	}

	first, _ := os.ReadFile(path)
	if _, err := execute(t, "recompute", path); err != nil {
		t.Fatal(err)
	}
	second, _ := os.ReadFile(path)
	if !bytes.Equal(first, second) {
		t.Errorf("recompute is not idempotent:\n%s\n---\n%s", first, second)
	}
}

func TestRecomputeCommandDryRunAndOutput(t *testing.T) {
	path := writeScene(t, testScene)
	outPath := filepath.Join(filepath.Dir(path), "resolved.yaml")

	var views []resultView
	executeJSON(t, &views, "recompute", "--dry-run", path)
	if len(views) != 3 {
		t.Fatalf("got %d results, want 3", len(views))
	}
	if data, _ := os.ReadFile(path); string(data) != testScene {
		t.Error("dry run modified the scene")
	}

	if _, err := execute(t, "recompute", path, "-o", outPath); err != nil {
		t.Fatal(err)
	}
	if data, _ := os.ReadFile(path); string(data) != testScene {
		t.Error("-o modified the input")
	}
	if _, err := scene.LoadFile(outPath); err != nil {
		t.Errorf("output not written: %v", err)
	}
}

func TestRecomputeCommandStrict(t *testing.T) {
	path := writeScene(t, `lights:
  - id: bad
    attributes:
      lumen:colorMode: spectral
      lumen:spectral:sourceMode: manual
      lumen:spectral:curveWavelengths: [500]
      lumen:spectral:curveIntensities: [1]
`)
	if _, err := execute(t, "recompute", path); err != nil {
		t.Errorf("without --strict failures are only logged: %v", err)
	}
	if _, err := execute(t, "recompute", "--strict", path); err == nil {
		t.Error("--strict should fail")
	}
}

func TestSwatchCommand(t *testing.T) {
	path := writeScene(t, testScene)
	outPath := filepath.Join(t.TempDir(), "out.png")

	if _, err := execute(t, "swatch", path, "-o", outPath, "--cell", "16"); err != nil {
		t.Fatalf("swatch: %v", err)
	}
	f, err := os.Open(outPath)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatal(err)
	}
	// Two resolved lights side by side.
	if img.Bounds().Dx() != 2*16+3*8 {
		t.Errorf("width = %d", img.Bounds().Dx())
	}
}

func TestConfigCommand(t *testing.T) {
	var cfg struct {
		LogLevel     string `json:"log_level"`
		TickInterval string `json:"tick_interval"`
	}
	t.Setenv("LUMEN_TICK_INTERVAL", "40ms")
	executeJSON(t, &cfg, "config")
	if cfg.LogLevel != "info" || cfg.TickInterval != "40ms" {
		t.Errorf("config = %+v", cfg)
	}

	if _, err := execute(t, "config", "--config", "/does/not/exist.toml"); err == nil {
		t.Error("missing explicit config file should fail")
	}

	bad := filepath.Join(t.TempDir(), "bad.toml")
	if err := os.WriteFile(bad, []byte(`tick_interval = "never"`), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := execute(t, "config", "--config", bad); err == nil {
		t.Error("invalid config file should fail")
	}
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	if err != nil || !strings.HasPrefix(out, "lumen version") {
		t.Errorf("version = %q, %v", out, err)
	}
}
