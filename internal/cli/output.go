package cli

import (
	"encoding/json"
	"io"
	"os"

	"github.com/muesli/termenv"
	"golang.org/x/term"

	"github.com/jmylchreest/lumen/internal/colour"
)

const previewWidth = 4

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// isTerminal reports whether w is an interactive terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// profileFor returns the colour profile for w. Anything that is not a
// terminal gets termenv.Ascii, which disables swatches.
func profileFor(w io.Writer) termenv.Profile {
	if !isTerminal(w) {
		return termenv.Ascii
	}
	return termenv.NewOutput(w).EnvColorProfile()
}

// preview renders a small colour block, or "" when colour is unavailable.
func preview(p termenv.Profile, c colour.Linear) string {
	if p == termenv.Ascii {
		return ""
	}
	return colour.ColourPreview(p, c.Display(), previewWidth)
}

// colourLine formats a linear colour with its hex value. On a terminal the
// hex value is printed inside a swatch instead.
func colourLine(p termenv.Profile, c colour.Linear) string {
	rgb := c.Display()
	if p == termenv.Ascii {
		return c.String() + "  " + rgb.Hex()
	}
	return colour.ColourPreviewWithText(p, rgb, rgb.Hex(), 9) + " " + c.String()
}
