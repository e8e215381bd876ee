package colour

import (
	"strings"

	"github.com/muesli/termenv"
)

const defaultWidth = 8

// ColourPreview returns a solid block of the colour rendered for profile.
// With termenv.Ascii the block is plain spaces.
func ColourPreview(profile termenv.Profile, c RGB, width int) string {
	if width <= 0 {
		width = defaultWidth
	}
	block := strings.Repeat(" ", width)
	return profile.String(block).Background(profile.Color(c.Hex())).String()
}

// ColourPreviewWithText returns a colour block with a centred label.
// The text colour is chosen to have good contrast with the background.
func ColourPreviewWithText(profile termenv.Profile, c RGB, text string, width int) string {
	if width <= 0 {
		width = defaultWidth
	}

	fg := "#ffffff"
	if ContrastRatio(c.Linear(), Black) > ContrastRatio(c.Linear(), White) {
		fg = "#000000"
	}

	// Pad or truncate text to fit width.
	displayText := text
	if len(text) > width {
		displayText = text[:width]
	} else if len(text) < width {
		padding := (width - len(text)) / 2
		displayText = strings.Repeat(" ", padding) + text + strings.Repeat(" ", width-len(text)-padding)
	}

	return profile.String(displayText).
		Foreground(profile.Color(fg)).
		Background(profile.Color(c.Hex())).
		String()
}
