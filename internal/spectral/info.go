package spectral

import (
	"fmt"
	"math"
)

// Info summarises an SPD.
type Info struct {
	Points int     `json:"points"`
	MinNm  float64 `json:"minNm"`
	MaxNm  float64 `json:"maxNm"`
	PeakNm float64 `json:"peakNm"`
	FWHMNm float64 `json:"fwhmNm"`
}

// fallbackFWHM is reported when fewer than two samples reach half maximum.
const fallbackFWHM = 30.0

// Summarize computes Info for sorted samples. The FWHM estimate is the span
// of wavelengths whose intensity is at least half of the peak.
func Summarize(wavelengths, intensities []float64) Info {
	n := min(len(wavelengths), len(intensities))
	if n == 0 {
		return Info{}
	}

	info := Info{
		Points: n,
		MinNm:  wavelengths[0],
		MaxNm:  wavelengths[n-1],
	}

	peak := math.Inf(-1)
	for i := 0; i < n; i++ {
		if intensities[i] > peak {
			peak = intensities[i]
			info.PeakNm = wavelengths[i]
		}
	}

	lo, hi, count := math.Inf(1), math.Inf(-1), 0
	for i := 0; i < n; i++ {
		if intensities[i] >= peak/2 {
			lo = math.Min(lo, wavelengths[i])
			hi = math.Max(hi, wavelengths[i])
			count++
		}
	}
	if count >= 2 && peak > 0 {
		info.FWHMNm = hi - lo
	} else {
		info.FWHMNm = fallbackFWHM
	}
	return info
}

// String formats the summary for the spdInfo attribute.
func (i Info) String() string {
	if i.Points == 0 {
		return "no data"
	}
	return fmt.Sprintf("%d pts, %.0f-%.0fnm, peak %.0fnm, FWHM ~%.0fnm",
		i.Points, i.MinNm, i.MaxNm, i.PeakNm, i.FWHMNm)
}
