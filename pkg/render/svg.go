package render

import (
	"bytes"
	"fmt"

	"github.com/matzehuels/trackgrid/pkg/document"
)

const svgStyle = `
    .frame { fill: #ffffff; stroke: #9ca3af; stroke-width: 1; }
    .cell { fill: none; stroke: #d1d5db; stroke-width: 1; stroke-dasharray: 4 3; }
    .guide { stroke: #f97316; stroke-width: 0.5; stroke-dasharray: 2 2; }
    .item { stroke: #374151; stroke-width: 1.5; }
    .item-text { fill: #111827; font-family: ui-sans-serif, system-ui, sans-serif; }`

// SVGOption configures SVG rendering.
type SVGOption func(*svgRenderer)

type svgRenderer struct {
	cells  bool
	guides bool
}

// WithCells outlines the full cell of every item behind its frame.
func WithCells() SVGOption { return func(r *svgRenderer) { r.cells = true } }

// WithGuides draws the track boundaries of both axes.
func WithGuides() SVGOption { return func(r *svgRenderer) { r.guides = true } }

// RenderSVG renders the layout as a standalone SVG document.
func RenderSVG(l document.Layout, opts ...SVGOption) []byte {
	var r svgRenderer
	for _, opt := range opts {
		opt(&r)
	}

	w, h := l.CanvasSize()
	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.1f %.1f" width="%.0f" height="%.0f">`+"\n",
		w, h, w, h)
	fmt.Fprintf(&buf, "  <style>%s\n  </style>\n", svgStyle)
	fmt.Fprintf(&buf, `  <rect class="frame" x="0" y="0" width="%.2f" height="%.2f"/>`+"\n", l.Width, l.Height)

	if r.guides {
		renderGuides(&buf, l, w, h)
	}
	if r.cells {
		for _, it := range l.Items {
			fmt.Fprintf(&buf, `  <rect class="cell" x="%.2f" y="%.2f" width="%.2f" height="%.2f"/>`+"\n",
				it.Cell.X, it.Cell.Y, it.Cell.Width, it.Cell.Height)
		}
	}
	for i, it := range l.Items {
		renderItem(&buf, i, it)
	}

	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

func renderItem(buf *bytes.Buffer, i int, it document.LayoutItem) {
	f := it.Frame
	fmt.Fprintf(buf, `  <rect id="item-%s" class="item" x="%.2f" y="%.2f" width="%.2f" height="%.2f" rx="3" fill="%s"/>`+"\n",
		escapeXML(it.ID), f.X, f.Y, f.Width, f.Height, fillColor(i))
	if f.Width <= 0 || f.Height <= 0 {
		return
	}

	label := it.DisplayLabel()
	size := fontSize(f.Width, f.Height, len([]rune(label)))
	label = truncateLabel(label, f.Width, size)
	fmt.Fprintf(buf, `  <text class="item-text" x="%.2f" y="%.2f" font-size="%.1f" text-anchor="middle" dominant-baseline="central">%s</text>`+"\n",
		f.X+f.Width/2, f.Y+f.Height/2, size, escapeXML(label))
}

// renderGuides draws a line at every track boundary.
func renderGuides(buf *bytes.Buffer, l document.Layout, w, h float64) {
	for _, x := range boundaries(l.Columns, l.Spacing.Horizontal) {
		fmt.Fprintf(buf, `  <line class="guide" x1="%.2f" y1="0" x2="%.2f" y2="%.2f"/>`+"\n", x, x, h)
	}
	for _, y := range boundaries(l.Rows, l.Spacing.Vertical) {
		fmt.Fprintf(buf, `  <line class="guide" x1="0" y1="%.2f" x2="%.2f" y2="%.2f"/>`+"\n", y, w, y)
	}
}

// boundaries returns the start and end coordinate of every track.
func boundaries(sizes []float64, spacing float64) []float64 {
	out := make([]float64, 0, 2*len(sizes))
	pos := 0.0
	for i, s := range sizes {
		if i > 0 {
			pos += spacing
		}
		out = append(out, pos, pos+s)
		pos += s
	}
	return out
}
