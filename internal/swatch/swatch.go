// Package swatch renders resolved light colours to a labelled PNG grid.
package swatch

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"os"
	"path/filepath"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/jmylchreest/lumen/internal/colour"
	"github.com/jmylchreest/lumen/internal/scene"
)

// ErrNoSwatches is returned when there is nothing to render.
var ErrNoSwatches = errors.New("no resolved colours to render")

const (
	// DefaultCellSize is the swatch edge length in pixels.
	DefaultCellSize = 112

	// DefaultColumns is the grid width.
	DefaultColumns = 6

	gap        = 8
	lineHeight = 13
	labelLines = 2
	labelPad   = 4
)

var background = color.RGBA{R: 0x18, G: 0x18, B: 0x18, A: 0xff}

// Swatch is one cell of the grid.
type Swatch struct {
	Label  string
	Detail string
	Color  colour.Linear
}

// Options controls the layout.
type Options struct {
	CellSize int
	Columns  int
}

func (o Options) withDefaults(n int) Options {
	if o.CellSize <= 0 {
		o.CellSize = DefaultCellSize
	}
	if o.Columns <= 0 {
		o.Columns = DefaultColumns
	}
	if o.Columns > n {
		o.Columns = n
	}
	return o
}

// FromDocument collects every light that has a computed colour. The label is
// the light's name (or id when unnamed); the detail is its hex value.
func FromDocument(doc *scene.Document) []Swatch {
	var out []Swatch
	for _, l := range doc.Lights {
		v, ok := l.Attributes.Floats(scene.AttrComputedColor)
		if !ok {
			continue
		}
		c, ok := colour.FromSlice(v)
		if !ok {
			continue
		}
		label := l.Name
		if label == "" {
			label = l.ID
		}
		out = append(out, Swatch{Label: label, Detail: c.Display().Hex(), Color: c})
	}
	return out
}

// Render draws swatches into a new image.
func Render(swatches []Swatch, opts Options) (*image.RGBA, error) {
	if len(swatches) == 0 {
		return nil, ErrNoSwatches
	}
	opts = opts.withDefaults(len(swatches))

	cellH := opts.CellSize + labelPad + labelLines*lineHeight
	rows := (len(swatches) + opts.Columns - 1) / opts.Columns
	width := opts.Columns*opts.CellSize + (opts.Columns+1)*gap
	height := rows*cellH + (rows+1)*gap

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), image.NewUniform(background), image.Point{}, draw.Src)

	for i, s := range swatches {
		x := gap + (i%opts.Columns)*(opts.CellSize+gap)
		y := gap + (i/opts.Columns)*(cellH+gap)

		cell := image.Rect(x, y, x+opts.CellSize, y+opts.CellSize)
		draw.Draw(img, cell, image.NewUniform(s.Color.Display()), image.Point{}, draw.Src)

		maxChars := opts.CellSize / basicfont.Face7x13.Advance
		baseline := y + opts.CellSize + labelPad + lineHeight - 2
		drawText(img, x, baseline, truncate(s.Label, maxChars))
		drawText(img, x, baseline+lineHeight, truncate(s.Detail, maxChars))
	}
	return img, nil
}

func drawText(dst draw.Image, x, y int, text string) {
	d := font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(color.White),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(text)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if n <= 0 {
		return ""
	}
	if len(r) <= n {
		return s
	}
	if n == 1 {
		return string(r[:1])
	}
	return string(r[:n-1]) + "~"
}

// Encode writes img as PNG.
func Encode(w io.Writer, img image.Image) error {
	enc := png.Encoder{CompressionLevel: png.BestCompression}
	return enc.Encode(w, img)
}

// SaveFile renders swatches and writes the PNG to path.
func SaveFile(path string, swatches []Swatch, opts Options) error {
	img, err := Render(swatches, opts)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".swatch-*.png")
	if err != nil {
		return fmt.Errorf("failed to create swatch file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := Encode(tmp, img); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to encode swatch: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
