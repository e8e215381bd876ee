package spectral

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/jmylchreest/lumen/internal/compression"
)

// DefaultMaxCurveBytes bounds the decoded size of a curve file.
const DefaultMaxCurveBytes = 4 << 20

// Curve is a measured SPD as (wavelength, relative intensity) pairs sorted by
// wavelength.
type Curve struct {
	Name         string    `json:"name,omitempty"`
	Manufacturer string    `json:"manufacturer,omitempty"`
	Model        string    `json:"model,omitempty"`
	Wavelengths  []float64 `json:"wavelengths"`
	Intensities  []float64 `json:"intensities"`
}

type point struct{ nm, v float64 }

// NewCurve builds a curve from unsorted samples and validates it.
func NewCurve(wavelengths, intensities []float64) (*Curve, error) {
	if len(wavelengths) != len(intensities) {
		return nil, fmt.Errorf("%w: %d wavelengths vs %d intensities",
			ErrInvalidSpectralInput, len(wavelengths), len(intensities))
	}
	pts := make([]point, len(wavelengths))
	for i := range wavelengths {
		pts[i] = point{wavelengths[i], intensities[i]}
	}
	sort.SliceStable(pts, func(i, j int) bool { return pts[i].nm < pts[j].nm })

	c := &Curve{
		Wavelengths: make([]float64, len(pts)),
		Intensities: make([]float64, len(pts)),
	}
	for i, p := range pts {
		c.Wavelengths[i] = p.nm
		c.Intensities[i] = p.v
	}
	if err := validateSamples(c.Wavelengths, c.Intensities); err != nil {
		return nil, err
	}
	return c, nil
}

// Spec returns a curve-mode spec for c.
func (c *Curve) Spec(whiteMix float64) Spec {
	return Spec{
		SourceMode:         SourceCurve,
		CurveWavelengthsNm: append([]float64(nil), c.Wavelengths...),
		CurveIntensities:   append([]float64(nil), c.Intensities...),
		WhiteMixFraction:   whiteMix,
	}
}

// Info summarises the curve.
func (c *Curve) Info() Info {
	return Summarize(c.Wavelengths, c.Intensities)
}

// ParseCSV reads delimited (wavelength, intensity) rows. Commas, tabs,
// semicolons and runs of whitespace are all accepted as delimiters. Lines
// starting with '#' are comments, a leading non-numeric line is treated as a
// header and rows that do not parse as two numbers are skipped.
func ParseCSV(r io.Reader) (*Curve, error) {
	var wl, in []float64
	sc := bufio.NewScanner(r)
	first := true
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if first {
			first = false
			if c := line[0]; !(c >= '0' && c <= '9') && c != '.' && c != '-' && c != '+' {
				continue
			}
		}
		fields := splitRow(line)
		if len(fields) < 2 {
			continue
		}
		nm, err1 := strconv.ParseFloat(strings.TrimSpace(fields[0]), 64)
		v, err2 := strconv.ParseFloat(strings.TrimSpace(fields[1]), 64)
		if err1 != nil || err2 != nil {
			continue
		}
		wl = append(wl, nm)
		in = append(in, v)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("failed to read curve: %w", err)
	}
	if len(wl) == 0 {
		return nil, fmt.Errorf("%w: no data rows found", ErrInvalidSpectralInput)
	}
	return NewCurve(wl, in)
}

func splitRow(line string) []string {
	for _, sep := range []string{",", "\t", ";"} {
		if strings.Contains(line, sep) {
			return strings.Split(line, sep)
		}
	}
	return strings.Fields(line)
}

// ParseJSON reads a JSON SPD document:
//
//	{"name": "...", "wavelengths": [...], "intensities": [...]}
func ParseJSON(data []byte) (*Curve, error) {
	var doc Curve
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse curve JSON: %w", err)
	}
	c, err := NewCurve(doc.Wavelengths, doc.Intensities)
	if err != nil {
		return nil, err
	}
	c.Name, c.Manufacturer, c.Model = doc.Name, doc.Manufacturer, doc.Model
	return c, nil
}

// Parse decodes a curve, picking the format from name. Compressed input
// (.xz, .gz, .bz2) is decoded first and never grows beyond maxBytes.
func Parse(name string, data []byte, maxBytes int64) (*Curve, error) {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxCurveBytes
	}
	raw, err := compression.Decompress(name, data, maxBytes)
	if err != nil {
		return nil, err
	}

	base := compression.TrimExt(name)
	var c *Curve
	if strings.EqualFold(filepath.Ext(base), ".json") {
		c, err = ParseJSON(raw)
	} else {
		c, err = ParseCSV(bytes.NewReader(raw))
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(name), err)
	}
	if c.Name == "" {
		c.Name = strings.TrimSuffix(filepath.Base(base), filepath.Ext(base))
	}
	return c, nil
}

// LoadFile reads and parses a curve file.
func LoadFile(path string, maxBytes int64) (*Curve, error) {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxCurveBytes
	}
	st, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat curve file: %w", err)
	}
	// Compressed files are bounded after decoding; the raw size can't
	// usefully exceed the decoded limit either.
	if st.Size() > maxBytes {
		return nil, fmt.Errorf("curve file %s is %d bytes (limit %d)", path, st.Size(), maxBytes)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read curve file: %w", err)
	}
	return Parse(path, data, maxBytes)
}
