package photometric

import (
	"fmt"
	"strings"
)

// Package is a typical LED package and the estimated size of its die.
type Package struct {
	Name     string  `json:"name"`
	Kind     string  `json:"kind"`
	WidthMm  float64 `json:"widthMm"`
	HeightMm float64 `json:"heightMm"`
}

// Die sizes vary by manufacturer; these are estimates for when the datasheet
// does not state an emitting area.
var packages = []Package{
	{Name: "0201", Kind: "chip", WidthMm: 0.2, HeightMm: 0.1},
	{Name: "0402", Kind: "chip", WidthMm: 0.5, HeightMm: 0.3},
	{Name: "0603", Kind: "chip", WidthMm: 0.8, HeightMm: 0.5},
	{Name: "0805", Kind: "chip", WidthMm: 1.2, HeightMm: 0.8},
	{Name: "1206", Kind: "chip", WidthMm: 2.0, HeightMm: 1.2},
	{Name: "2835", Kind: "smd", WidthMm: 2.0, HeightMm: 2.0},
	{Name: "3528", Kind: "smd", WidthMm: 2.5, HeightMm: 2.5},
	{Name: "5050", Kind: "smd", WidthMm: 4.0, HeightMm: 4.0},
	{Name: "5730", Kind: "smd", WidthMm: 4.5, HeightMm: 2.5},
	{Name: "3mm", Kind: "through-hole", WidthMm: 0.5, HeightMm: 0.5},
	{Name: "5mm", Kind: "through-hole", WidthMm: 1.0, HeightMm: 1.0},
	{Name: "10mm", Kind: "through-hole", WidthMm: 2.0, HeightMm: 2.0},
	{Name: "cob_small", Kind: "cob", WidthMm: 5.0, HeightMm: 5.0},
	{Name: "cob_medium", Kind: "cob", WidthMm: 10.0, HeightMm: 10.0},
	{Name: "cob_large", Kind: "cob", WidthMm: 20.0, HeightMm: 20.0},
}

// Packages returns the known packages.
func Packages() []Package {
	out := make([]Package, len(packages))
	copy(out, packages)
	return out
}

// LookupPackage returns the package with the given designator.
func LookupPackage(name string) (Package, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	for _, p := range packages {
		if p.Name == key {
			return p, nil
		}
	}
	names := make([]string, len(packages))
	for i, p := range packages {
		names[i] = p.Name
	}
	return Package{}, fmt.Errorf("unknown LED package %q (known: %s)", name, strings.Join(names, ", "))
}

// Apply sets the emitter geometry of spec to the package die size.
func (p Package) Apply(spec Spec) Spec {
	spec.EmitterWidthMm = p.WidthMm
	spec.EmitterHeightMm = p.HeightMm
	return spec
}
