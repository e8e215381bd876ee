// Package colour provides the colour value types shared by the light resolvers.
package colour

import (
	"fmt"
	"image/color"
)

// RGB represents a display colour in 8-bit sRGB.
type RGB struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
}

// String returns the RGB colour as a string in the format "rgb(r, g, b)".
func (rgb RGB) String() string {
	return fmt.Sprintf("rgb(%d, %d, %d)", rgb.R, rgb.G, rgb.B)
}

// Hex returns the RGB colour as a hex string (e.g., "#1a2b3c").
func (rgb RGB) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", rgb.R, rgb.G, rgb.B)
}

// RGBA implements color.Color so display colours can be drawn directly.
func (rgb RGB) RGBA() (r, g, b, a uint32) {
	return color.RGBA{R: rgb.R, G: rgb.G, B: rgb.B, A: 255}.RGBA()
}

// Linear returns the linear-light value of the display colour.
func (rgb RGB) Linear() Linear {
	return Linear{
		R: Decode(float64(rgb.R) / 255.0),
		G: Decode(float64(rgb.G) / 255.0),
		B: Decode(float64(rgb.B) / 255.0),
	}
}
