package spectral

import (
	"bytes"
	"compress/gzip"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ulikunitz/xz"
)

const greenCSV = `# OSRAM LT QH9G, relative intensity
wavelength_nm,relative
500,0.10
515,0.60
525,1.00
535,0.60
550,0.10
`

func TestParseCSV(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		points int
		peak   float64
	}{
		{name: "comma with header", input: greenCSV, points: 5, peak: 525},
		{name: "tab", input: "500\t0.2\n510\t1\n520\t0.2\n", points: 3, peak: 510},
		{name: "semicolon", input: "nm;v\n600;0.5\n610;1\n", points: 2, peak: 610},
		{name: "whitespace", input: "  620   0.3\n630 1.0\n640  0.3\n", points: 3, peak: 630},
		{name: "unsorted", input: "530,0.5\n510,0.5\n520,1\n", points: 3, peak: 520},
		{name: "skips junk rows", input: "500,1\nn/a,2\n510,0.5\n", points: 2, peak: 500},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := ParseCSV(strings.NewReader(tt.input))
			if err != nil {
				t.Fatalf("ParseCSV() error = %v", err)
			}
			info := c.Info()
			if info.Points != tt.points {
				t.Errorf("points = %d, want %d", info.Points, tt.points)
			}
			if info.PeakNm != tt.peak {
				t.Errorf("peak = %v, want %v", info.PeakNm, tt.peak)
			}
		})
	}
}

func TestParseCSVInvalid(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{name: "empty", input: ""},
		{name: "header only", input: "wavelength,intensity\n"},
		{name: "single row", input: "500,1\n"},
		{name: "duplicate wavelength", input: "500,1\n500,0.5\n"},
		{name: "negative intensity", input: "500,1\n510,-0.5\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseCSV(strings.NewReader(tt.input)); !errors.Is(err, ErrInvalidSpectralInput) {
				t.Errorf("ParseCSV() error = %v, want ErrInvalidSpectralInput", err)
			}
		})
	}
}

func TestParseJSON(t *testing.T) {
	doc := `{"name":"amber","manufacturer":"Acme","wavelengths":[600,590,580],"intensities":[0.2,1,0.2]}`
	c, err := ParseJSON([]byte(doc))
	if err != nil {
		t.Fatalf("ParseJSON() error = %v", err)
	}
	if c.Name != "amber" || c.Manufacturer != "Acme" {
		t.Errorf("metadata = %q/%q", c.Name, c.Manufacturer)
	}
	if c.Wavelengths[0] != 580 {
		t.Errorf("wavelengths not sorted: %v", c.Wavelengths)
	}
	if _, err := ParseJSON([]byte("{")); err == nil {
		t.Error("ParseJSON() accepted malformed JSON")
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()

	var xzBuf bytes.Buffer
	w, err := xz.NewWriter(&xzBuf)
	if err != nil {
		t.Fatalf("xz.NewWriter: %v", err)
	}
	if _, err := w.Write([]byte(greenCSV)); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	var gzBuf bytes.Buffer
	gw := gzip.NewWriter(&gzBuf)
	if _, err := gw.Write([]byte(`{"wavelengths":[500,525,550],"intensities":[0.1,1,0.1]}`)); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := gw.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	files := map[string][]byte{
		"green.csv":     []byte(greenCSV),
		"green.csv.xz":  xzBuf.Bytes(),
		"green.json.gz": gzBuf.Bytes(),
	}
	for name, data := range files {
		if err := os.WriteFile(filepath.Join(dir, name), data, 0o600); err != nil {
			t.Fatalf("WriteFile: %v", err)
		}
	}

	for name := range files {
		t.Run(name, func(t *testing.T) {
			c, err := LoadFile(filepath.Join(dir, name), 0)
			if err != nil {
				t.Fatalf("LoadFile() error = %v", err)
			}
			if c.Name != "green" {
				t.Errorf("Name = %q, want green", c.Name)
			}
			if c.Info().PeakNm != 525 {
				t.Errorf("peak = %v, want 525", c.Info().PeakNm)
			}
			if _, err := Resolve(c.Spec(0)); err != nil {
				t.Errorf("Resolve(curve) error = %v", err)
			}
		})
	}

	if _, err := LoadFile(filepath.Join(dir, "green.csv"), 16); err == nil {
		t.Error("LoadFile() ignored size limit")
	}
	if _, err := LoadFile(filepath.Join(dir, "missing.csv"), 0); err == nil {
		t.Error("LoadFile() on missing file succeeded")
	}
}

func TestSummarize(t *testing.T) {
	info := Summarize([]float64{500, 515, 525, 535, 550}, []float64{0.1, 0.6, 1, 0.6, 0.1})
	if info.FWHMNm != 20 {
		t.Errorf("FWHM = %v, want 20", info.FWHMNm)
	}
	if info.MinNm != 500 || info.MaxNm != 550 {
		t.Errorf("range = %v-%v", info.MinNm, info.MaxNm)
	}
	if got := info.String(); got != "5 pts, 500-550nm, peak 525nm, FWHM ~20nm" {
		t.Errorf("String() = %q", got)
	}

	narrow := Summarize([]float64{500, 510}, []float64{1, 0})
	if narrow.FWHMNm != fallbackFWHM {
		t.Errorf("narrow FWHM = %v, want fallback %v", narrow.FWHMNm, fallbackFWHM)
	}
	if (Info{}).String() != "no data" {
		t.Errorf("empty String() = %q", Info{}.String())
	}
}
