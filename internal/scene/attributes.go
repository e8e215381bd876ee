package scene

import (
	"fmt"
	"reflect"
	"sort"
)

// Attributes holds an entity's attribute values keyed by attribute name.
//
// Values are normalised on write to one of: float64, string, bool or
// []float64.
type Attributes map[string]any

// Clone returns a deep copy of a.
func (a Attributes) Clone() Attributes {
	if a == nil {
		return nil
	}
	out := make(Attributes, len(a))
	for k, v := range a {
		if fs, ok := v.([]float64); ok {
			v = append([]float64(nil), fs...)
		}
		out[k] = v
	}
	return out
}

// Names returns the attribute names in sorted order.
func (a Attributes) Names() []string {
	names := make([]string, 0, len(a))
	for k := range a {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Float returns a numeric attribute.
func (a Attributes) Float(name string) (float64, bool) {
	v, ok := a[name]
	if !ok {
		return 0, false
	}
	return toFloat(v)
}

// String returns a string attribute.
func (a Attributes) String(name string) (string, bool) {
	s, ok := a[name].(string)
	return s, ok
}

// Bool returns a boolean attribute.
func (a Attributes) Bool(name string) (bool, bool) {
	b, ok := a[name].(bool)
	return b, ok
}

// Floats returns a numeric array attribute.
func (a Attributes) Floats(name string) ([]float64, bool) {
	v, ok := a[name]
	if !ok {
		return nil, false
	}
	fs, err := toFloats(v)
	if err != nil {
		return nil, false
	}
	return fs, true
}

// Equal reports whether the value of name is the same in a and b.
func (a Attributes) Equal(b Attributes, name string) bool {
	av, aok := a[name]
	bv, bok := b[name]
	if aok != bok {
		return false
	}
	return reflect.DeepEqual(av, bv)
}

// Normalize converts a decoded value (from YAML, JSON or Go code) into the
// canonical attribute representation.
func Normalize(v any) (any, error) {
	switch x := v.(type) {
	case string, bool, float64:
		return x, nil
	case []float64:
		return append([]float64(nil), x...), nil
	case []any, []int, []float32:
		return toFloats(x)
	}
	if f, ok := toFloat(v); ok {
		return f, nil
	}
	return nil, fmt.Errorf("unsupported attribute value of type %T", v)
}

// NormalizeAll normalises every value of attrs into a new map.
func NormalizeAll(attrs Attributes) (Attributes, error) {
	out := make(Attributes, len(attrs))
	for k, v := range attrs {
		nv, err := Normalize(v)
		if err != nil {
			return nil, fmt.Errorf("attribute %s: %w", k, err)
		}
		out[k] = nv
	}
	return out, nil
}

func toFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case int:
		return float64(x), true
	case int32:
		return float64(x), true
	case int64:
		return float64(x), true
	case uint:
		return float64(x), true
	case uint32:
		return float64(x), true
	case uint64:
		return float64(x), true
	}
	return 0, false
}

func toFloats(v any) ([]float64, error) {
	switch x := v.(type) {
	case []float64:
		return append([]float64(nil), x...), nil
	case []float32:
		out := make([]float64, len(x))
		for i, f := range x {
			out[i] = float64(f)
		}
		return out, nil
	case []int:
		out := make([]float64, len(x))
		for i, n := range x {
			out[i] = float64(n)
		}
		return out, nil
	case []any:
		out := make([]float64, len(x))
		for i, e := range x {
			f, ok := toFloat(e)
			if !ok {
				return nil, fmt.Errorf("element %d is %T, not a number", i, e)
			}
			out[i] = f
		}
		return out, nil
	}
	return nil, fmt.Errorf("%T is not a numeric array", v)
}
