package pipeline

import (
	"context"
	"fmt"

	"github.com/matzehuels/trackgrid/pkg/document"
	"github.com/matzehuels/trackgrid/pkg/render"
)

// Render generates artifacts in the requested formats from a layout.
// opts must have been validated.
func Render(ctx context.Context, l document.Layout, opts Options) (map[string][]byte, error) {
	artifacts := make(map[string][]byte, len(opts.Formats))
	for _, format := range opts.Formats {
		data, err := renderFormat(ctx, l, format, opts)
		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data
	}
	return artifacts, nil
}

func renderFormat(ctx context.Context, l document.Layout, format string, opts Options) ([]byte, error) {
	switch format {
	case FormatJSON:
		return document.MarshalLayout(l)
	case FormatSVG:
		return render.RenderSVG(l, svgOptions(opts)...), nil
	case FormatDOT:
		return []byte(render.ToDOT(l)), nil
	case FormatPNG:
		return render.RenderPNG(ctx, l, opts.Scale)
	case FormatTXT:
		return []byte(render.RenderText(l, render.TextOptions{Width: opts.TextWidth})), nil
	}
	return nil, ValidateFormat(format)
}

func svgOptions(opts Options) []render.SVGOption {
	var out []render.SVGOption
	if opts.Cells {
		out = append(out, render.WithCells())
	}
	if opts.Guides {
		out = append(out, render.WithGuides())
	}
	return out
}
