package arbiter

import "fmt"

// Resolver names used in diagnostics.
const (
	ResolverSpectral    = "spectral"
	ResolverCurve       = "curve"
	ResolverPhotometric = "photometric"
	ResolverTemperature = "temperature"
	ResolverInput       = "input"
)

// Failure records a resolver error for one axis of one entity. The axis
// keeps its previous output.
type Failure struct {
	EntityID string
	Axis     Axis
	Resolver string
	Err      error
}

func (f *Failure) Error() string {
	return fmt.Sprintf("%s: %s %s resolver: %v", f.EntityID, f.Axis, f.Resolver, f.Err)
}

func (f *Failure) Unwrap() error {
	return f.Err
}
