package render

import (
	"bytes"
	"context"
	"fmt"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/trackgrid/pkg/document"
)

// pointsPerInch converts pixel coordinates to Graphviz inches.
const pointsPerInch = 72.0

// ToDOT converts a layout to Graphviz DOT. Every item becomes a fixed-size
// box pinned at the center of its frame, so neato reproduces the arrangement
// instead of computing its own. Graphviz puts the origin at the bottom left,
// so y coordinates are flipped. Two invisible corner points keep the canvas
// at the layout's full size.
func ToDOT(l document.Layout) string {
	return toDOT(l)
}

func toDOT(l document.Layout, graphAttrs ...string) string {
	w, h := l.CanvasSize()

	var buf bytes.Buffer
	buf.WriteString("graph G {\n")
	buf.WriteString("  layout=neato;\n")
	buf.WriteString("  inputscale=72;\n")
	buf.WriteString("  notranslate=true;\n")
	buf.WriteString("  bgcolor=\"white\";\n")
	buf.WriteString("  pad=0;\n")
	for _, a := range graphAttrs {
		fmt.Fprintf(&buf, "  %s;\n", a)
	}
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fixedsize=true, fontname=\"Helvetica\", color=\"#374151\"];\n")
	buf.WriteString("\n")
	fmt.Fprintf(&buf, "  \"__origin\" [shape=point, style=invis, width=0, pos=\"0,%.2f!\"];\n", h)
	fmt.Fprintf(&buf, "  \"__extent\" [shape=point, style=invis, width=0, pos=\"%.2f,0!\"];\n", w)

	for i, it := range l.Items {
		f := it.Frame
		label := it.DisplayLabel()
		size := fontSize(f.Width, f.Height, len([]rune(label)))
		fmt.Fprintf(&buf, "  %q [label=%q, pos=\"%.2f,%.2f!\", width=%.4f, height=%.4f, fontsize=%.1f, fillcolor=%q];\n",
			it.ID, truncateLabel(label, f.Width, size),
			f.X+f.Width/2, h-(f.Y+f.Height/2),
			f.Width/pointsPerInch, f.Height/pointsPerInch,
			size, fillColor(i))
	}

	buf.WriteString("}\n")
	return buf.String()
}

// RenderGraphvizSVG lays out the DOT form of l with neato and returns SVG.
func RenderGraphvizSVG(ctx context.Context, l document.Layout) ([]byte, error) {
	return renderGraphviz(ctx, ToDOT(l), graphviz.SVG)
}

// RenderPNG renders the layout as PNG through Graphviz. A scale of 2.0
// produces a 2x resolution image.
func RenderPNG(ctx context.Context, l document.Layout, scale float64) ([]byte, error) {
	if scale <= 0 {
		scale = 1
	}
	dot := toDOT(l, fmt.Sprintf("dpi=%.0f", pointsPerInch*scale))
	return renderGraphviz(ctx, dot, graphviz.PNG)
}

func renderGraphviz(ctx context.Context, dot string, format graphviz.Format) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()
	gv.SetLayout(graphviz.NEATO)

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, format, &buf); err != nil {
		return nil, fmt.Errorf("render %s: %w", format, err)
	}
	return buf.Bytes(), nil
}
