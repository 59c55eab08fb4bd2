package grid

// PositionInput is everything Position needs to turn cells into pixels.
type PositionInput struct {
	Placement   Placement
	ColumnSizes []float64
	RowSizes    []float64
	ColumnSpecs []TrackSpec // alignment fallback per column, may be shorter than ColumnSizes
	RowSpecs    []TrackSpec // alignment fallback per row, may be shorter than RowSizes
	Spacing     Spacing

	// Alignment returns the item's own alignment, if it declares one.
	Alignment func(ItemID) (ItemAlignment, bool)
	// Natural returns the item's natural size, if known.
	Natural func(ItemID) (Size, bool)
}

// Position computes the cell rectangle and the final frame of every item.
//
// A cell starts after the preceding tracks and their gaps and covers its
// spanned tracks plus the gaps between them. The frame equals the cell
// unless the item has a known natural size smaller than the cell and a
// start, center or end alignment on that axis, in which case the frame takes
// the natural size and is shifted inside the cell.
func Position(in PositionInput) (frames, cells map[ItemID]Rect) {
	frames = make(map[ItemID]Rect, len(in.Placement.Areas))
	cells = make(map[ItemID]Rect, len(in.Placement.Areas))

	for _, id := range in.Placement.Order {
		area, ok := in.Placement.Areas[id]
		if !ok {
			continue
		}

		x, w := span(in.ColumnSizes, area.Column, area.ColumnSpan, in.Spacing.Horizontal)
		y, h := span(in.RowSizes, area.Row, area.RowSpan, in.Spacing.Vertical)
		cell := Rect{X: x, Y: y, Width: w, Height: h}
		cells[id] = cell

		hAlign := trackAlignment(in.ColumnSpecs, area.Column)
		vAlign := trackAlignment(in.RowSpecs, area.Row)
		if in.Alignment != nil {
			if a, ok := in.Alignment(id); ok {
				hAlign, vAlign = a.Horizontal, a.Vertical
			}
		}

		frame := cell
		if hAlign != AlignStretch || vAlign != AlignStretch {
			if in.Natural != nil {
				if nat, ok := in.Natural(id); ok {
					frame.X, frame.Width = align(cell.X, cell.Width, nat.Width, hAlign)
					frame.Y, frame.Height = align(cell.Y, cell.Height, nat.Height, vAlign)
				}
			}
		}
		frames[id] = frame
	}
	return frames, cells
}

// span returns the origin and extent of tracks [start, start+n).
func span(sizes []float64, start, n int, spacing float64) (origin, extent float64) {
	start = min(start, len(sizes))
	end := min(start+n, len(sizes))
	origin = sum(sizes, 0, start, spacing)
	if start > 0 {
		origin += spacing
	}
	return origin, sum(sizes, start, end, spacing)
}

func trackAlignment(specs []TrackSpec, i int) Alignment {
	if i < len(specs) {
		return specs[i].Align
	}
	return AlignStretch
}

// align places an item of natural extent size inside [origin, origin+avail).
func align(origin, avail, size float64, a Alignment) (float64, float64) {
	if a == AlignStretch || size < 0 || size >= avail {
		return origin, avail
	}
	switch a {
	case AlignCenter:
		return origin + (avail-size)/2, size
	case AlignEnd:
		return origin + avail - size, size
	default:
		return origin, size
	}
}
