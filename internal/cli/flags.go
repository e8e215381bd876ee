package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
)

const (
	formatText = "text"
	formatJSON = "json"
)

// outputFormat is the global --format flag.
var outputFormat = newEnum(formatText, formatText, formatJSON)

func init() {
	rootCmd.PersistentFlags().VarP(outputFormat, "format", "f", "output format ("+outputFormat.Type()+")")
}

// enumValue is a string flag restricted to a fixed set of values.
type enumValue struct {
	value   string
	allowed []string
}

var _ pflag.Value = (*enumValue)(nil)

func newEnum(def string, allowed ...string) *enumValue {
	return &enumValue{value: def, allowed: allowed}
}

func (e *enumValue) String() string { return e.value }

func (e *enumValue) Set(s string) error {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, a := range e.allowed {
		if s == a {
			e.value = s
			return nil
		}
	}
	return fmt.Errorf("must be one of: %s", strings.Join(e.allowed, ", "))
}

func (e *enumValue) Type() string { return strings.Join(e.allowed, "|") }
