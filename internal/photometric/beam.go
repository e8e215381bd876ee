package photometric

import "math"

// BeamFactorFor estimates how much brighter on-axis luminance is for an
// emitter with the given horizontal and vertical viewing half-angles than for
// a Lambertian emitter of the same flux, from the ratio of solid angles.
// The result is within [1, 100]; Resolve does not use it.
func BeamFactorFor(halfAngleHDeg, halfAngleVDeg float64) float64 {
	h := clampAngle(halfAngleHDeg) * math.Pi / 180
	v := clampAngle(halfAngleVDeg) * math.Pi / 180

	actual := math.Pi * math.Sin(h) * math.Sin(v)
	if actual <= 1e-12 {
		return LambertianBeamFactor
	}
	hemisphere := 2 * math.Pi
	return math.Max(1, math.Min(hemisphere/(2*actual), 100))
}

func clampAngle(deg float64) float64 {
	if math.IsNaN(deg) {
		return 180
	}
	return math.Max(1, math.Min(180, deg))
}
