package render

import (
	"math"
	"strings"

	"github.com/matzehuels/trackgrid/pkg/document"
)

// TextOptions sizes the character canvas of RenderText.
type TextOptions struct {
	// Width and Height are the canvas size in characters. A zero Width
	// defaults to 80; a zero Height keeps the layout's aspect ratio assuming
	// characters twice as tall as wide.
	Width  int
	Height int
	// NoLabels draws boxes only.
	NoLabels bool
}

// RenderText draws the item frames of l on a character canvas with
// box-drawing characters. Coordinates are scaled so the canvas covers the
// whole layout. Items too small for a box are filled with a shade block.
func RenderText(l document.Layout, opts TextOptions) string {
	cw, ch := l.CanvasSize()
	cols := opts.Width
	if cols <= 0 {
		cols = 80
	}
	rows := opts.Height
	if rows <= 0 {
		rows = 1
		if cw > 0 {
			rows = max(1, int(math.Round(float64(cols)*ch/cw/2)))
		}
	}

	c := newCanvas(cols, rows)
	if cw <= 0 || ch <= 0 {
		return c.String()
	}
	sx, sy := float64(cols)/cw, float64(rows)/ch

	for _, it := range l.Items {
		f := it.Frame
		x0 := int(math.Round(f.X * sx))
		y0 := int(math.Round(f.Y * sy))
		x1 := max(x0, int(math.Round(f.Right()*sx))-1)
		y1 := max(y0, int(math.Round(f.Bottom()*sy))-1)
		c.box(x0, y0, x1, y1)
		if !opts.NoLabels {
			c.label(x0, y0, x1, y1, it.DisplayLabel())
		}
	}
	return c.String()
}

type canvas struct {
	w, h  int
	cells [][]rune
}

func newCanvas(w, h int) *canvas {
	cells := make([][]rune, h)
	for i := range cells {
		cells[i] = []rune(strings.Repeat(" ", w))
	}
	return &canvas{w: w, h: h, cells: cells}
}

func (c *canvas) set(x, y int, r rune) {
	if x >= 0 && y >= 0 && x < c.w && y < c.h {
		c.cells[y][x] = r
	}
}

func (c *canvas) box(x0, y0, x1, y1 int) {
	if x1-x0 < 1 || y1-y0 < 1 {
		for y := y0; y <= y1; y++ {
			for x := x0; x <= x1; x++ {
				c.set(x, y, '▒')
			}
		}
		return
	}
	for x := x0 + 1; x < x1; x++ {
		c.set(x, y0, '─')
		c.set(x, y1, '─')
	}
	for y := y0 + 1; y < y1; y++ {
		c.set(x0, y, '│')
		c.set(x1, y, '│')
	}
	c.set(x0, y0, '┌')
	c.set(x1, y0, '┐')
	c.set(x0, y1, '└')
	c.set(x1, y1, '┘')
}

// label writes text centered on the middle row inside the box border.
func (c *canvas) label(x0, y0, x1, y1 int, text string) {
	inner := x1 - x0 - 1
	if inner < 1 || y1-y0 < 2 {
		return
	}
	r := []rune(text)
	if len(r) > inner {
		if inner > 2 {
			r = append(r[:inner-2:inner-2], '.', '.')
		} else {
			r = r[:inner]
		}
	}
	y := (y0 + y1) / 2
	x := x0 + 1 + (inner-len(r))/2
	for i, ch := range r {
		c.set(x+i, y, ch)
	}
}

func (c *canvas) String() string {
	lines := make([]string, c.h)
	for i, row := range c.cells {
		lines[i] = strings.TrimRight(string(row), " ")
	}
	return strings.Join(lines, "\n")
}
