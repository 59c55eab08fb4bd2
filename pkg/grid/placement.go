package grid

import (
	errs "github.com/matzehuels/trackgrid/pkg/errors"
)

// ItemID is the stable identity of an item across arrangement passes.
type ItemID string

// MaxRows is the largest number of tracks the growing axis of a grid may
// reach: rows under FlowColumns, columns under FlowRows. Placements that
// would need more fail with INVALID_INPUT.
const MaxRows = 1 << 16

// Span is the number of columns and rows an item covers. Zero means one, so
// the zero Span is a single cell. Negative spans are rejected by Place.
type Span struct {
	Columns int `json:"columns" toml:"columns"`
	Rows    int `json:"rows" toml:"rows"`
}

func (s Span) normalized() Span {
	return Span{Columns: max(s.Columns, 1), Rows: max(s.Rows, 1)}
}

// Start is an explicit cell position that overrides auto-placement.
type Start struct {
	Column int `json:"column" toml:"column"`
	Row    int `json:"row" toml:"row"`
}

// Item is the metadata the engine needs about one grid child. The engine
// never looks at item content, only at its identity and these fields.
type Item struct {
	ID        ItemID
	Span      Span
	Start     *Start     // nil for auto-placement
	Alignment *ItemAlignment // nil to inherit the alignment of the occupied tracks
}

// Area is the block of cells an item occupies.
type Area struct {
	Row        int `json:"row"`
	Column     int `json:"column"`
	RowSpan    int `json:"row_span"`
	ColumnSpan int `json:"column_span"`
}

// Start returns the first track index of the area on axis a.
func (a Area) Start(ax Axis) int {
	if ax == Horizontal {
		return a.Column
	}
	return a.Row
}

// Span returns the number of tracks the area covers on axis a.
func (a Area) Span(ax Axis) int {
	if ax == Horizontal {
		return a.ColumnSpan
	}
	return a.RowSpan
}

// Overlaps reports whether a and b share at least one cell.
func (a Area) Overlaps(b Area) bool {
	return a.Row < b.Row+b.RowSpan && b.Row < a.Row+a.RowSpan &&
		a.Column < b.Column+b.ColumnSpan && b.Column < a.Column+a.ColumnSpan
}

func (a Area) transposed() Area {
	return Area{Row: a.Column, Column: a.Row, RowSpan: a.ColumnSpan, ColumnSpan: a.RowSpan}
}

// Placement maps every item to the cells it occupies.
type Placement struct {
	Areas   map[ItemID]Area
	Order   []ItemID // declaration order
	Columns int
	Rows    int
}

// Area returns the area assigned to id.
func (p Placement) Area(id ItemID) (Area, bool) {
	a, ok := p.Areas[id]
	return a, ok
}

// TrackCount returns the number of tracks on axis a.
func (p Placement) TrackCount(a Axis) int {
	if a == Horizontal {
		return p.Columns
	}
	return p.Rows
}

func (p Placement) transposed() Placement {
	t := Placement{
		Areas:   make(map[ItemID]Area, len(p.Areas)),
		Order:   p.Order,
		Columns: p.Rows,
		Rows:    p.Columns,
	}
	for id, a := range p.Areas {
		t.Areas[id] = a.transposed()
	}
	return t
}

// occupancy holds the areas claimed so far. It stores areas rather than
// cells, so its size depends on the item count alone.
type occupancy struct {
	ids   []ItemID
	areas []Area
}

// blocker returns the first claimed area overlapping a.
func (o *occupancy) blocker(a Area) (ItemID, Area, bool) {
	for i, b := range o.areas {
		if a.Overlaps(b) {
			return o.ids[i], b, true
		}
	}
	return "", Area{}, false
}

func (o *occupancy) claim(id ItemID, a Area) {
	o.ids = append(o.ids, id)
	o.areas = append(o.areas, a)
}

// Place assigns a starting row and column to every item.
//
// Spans and starts are validated up front. Every area ends up inside
// [0, columns) and [0, MaxRows).
//
// Items with an explicit start are placed first, in declaration order, and
// fail with OVERLAPPING_EXPLICIT_PLACEMENT if they collide. The remaining
// items are placed in declaration order by scanning column-first for the
// first free block of cells. Under Sparse packing the scan resumes where the
// previous auto-placed item ended; under Dense it restarts at the origin so
// earlier gaps are back-filled.
func Place(items []Item, columns int, packing Packing) (Placement, error) {
	if columns < 1 {
		return Placement{}, errs.New(errs.ErrCodeInvalidColumnCount, "column count must be >= 1, got %d", columns)
	}

	p := Placement{
		Areas:   make(map[ItemID]Area, len(items)),
		Order:   make([]ItemID, 0, len(items)),
		Columns: columns,
	}

	seen := make(map[ItemID]bool, len(items))
	for _, it := range items {
		if it.ID == "" {
			return Placement{}, errs.New(errs.ErrCodeInvalidInput, "item id cannot be empty")
		}
		if seen[it.ID] {
			return Placement{}, errs.New(errs.ErrCodeInvalidInput, "duplicate item id %q", it.ID)
		}
		seen[it.ID] = true

		if it.Span.Columns < 0 || it.Span.Rows < 0 {
			return Placement{}, errs.New(errs.ErrCodeInvalidInput,
				"item %q has negative span %dx%d", it.ID, it.Span.Columns, it.Span.Rows)
		}
		span := it.Span.normalized()
		if span.Columns > columns {
			return Placement{}, errs.New(errs.ErrCodeSpanExceedsGridWidth,
				"item %q spans %d columns but the grid has %d", it.ID, span.Columns, columns)
		}
		if span.Rows > MaxRows {
			return Placement{}, errs.New(errs.ErrCodeInvalidInput,
				"item %q spans %d rows, more than the limit of %d", it.ID, span.Rows, MaxRows)
		}
		if it.Start != nil {
			if it.Start.Column < 0 || it.Start.Row < 0 {
				return Placement{}, errs.New(errs.ErrCodeInvalidInput,
					"item %q has negative start (%d, %d)", it.ID, it.Start.Row, it.Start.Column)
			}
			if it.Start.Column > columns-span.Columns {
				return Placement{}, errs.New(errs.ErrCodeSpanExceedsGridWidth,
					"item %q starting at column %d with span %d exceeds %d columns",
					it.ID, it.Start.Column, span.Columns, columns)
			}
			if it.Start.Row > MaxRows-span.Rows {
				return Placement{}, errs.New(errs.ErrCodeInvalidInput,
					"item %q starting at row %d with span %d exceeds the limit of %d rows",
					it.ID, it.Start.Row, span.Rows, MaxRows)
			}
		}
		p.Order = append(p.Order, it.ID)
	}

	var occ occupancy

	for _, it := range items {
		if it.Start == nil {
			continue
		}
		span := it.Span.normalized()
		a := Area{Row: it.Start.Row, Column: it.Start.Column, RowSpan: span.Rows, ColumnSpan: span.Columns}
		if other, _, ok := occ.blocker(a); ok {
			return Placement{}, errs.New(errs.ErrCodeOverlappingExplicitPlacement,
				"item %q at (%d, %d) overlaps item %q", it.ID, a.Row, a.Column, other)
		}
		occ.claim(it.ID, a)
		p.Areas[it.ID] = a
	}

	var curRow, curCol int
	for _, it := range items {
		if it.Start != nil {
			continue
		}
		span := it.Span.normalized()

		row, col := curRow, curCol
		if packing == Dense {
			row, col = 0, 0
		}

		for {
			if col > columns-span.Columns {
				row, col = row+1, 0
				continue
			}
			if row > MaxRows-span.Rows {
				return Placement{}, errs.New(errs.ErrCodeInvalidInput,
					"item %q does not fit within the limit of %d rows", it.ID, MaxRows)
			}
			a := Area{Row: row, Column: col, RowSpan: span.Rows, ColumnSpan: span.Columns}
			_, b, blocked := occ.blocker(a)
			if !blocked {
				occ.claim(it.ID, a)
				p.Areas[it.ID] = a
				break
			}
			// Every start before the blocker's right edge overlaps it too.
			col = b.Column + b.ColumnSpan
		}

		if packing == Sparse {
			curRow, curCol = row, col+span.Columns
		}
	}

	for _, a := range p.Areas {
		p.Rows = max(p.Rows, a.Row+a.RowSpan)
	}
	return p, nil
}
