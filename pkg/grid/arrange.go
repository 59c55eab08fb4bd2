package grid

import (
	"fmt"

	errs "github.com/matzehuels/trackgrid/pkg/errors"
)

// MeasureFunc reports the unconstrained natural size of an item. It must be
// free of side effects: the engine may call it in any order and skips items
// it does not need. Returning false marks the size as unknown. A reported
// size that is negative or not finite fails the pass with INVALID_INPUT.
type MeasureFunc func(ItemID) (Size, bool)

// Input is the complete description of one arrangement pass.
type Input struct {
	Items []Item

	// Tracks are the specs of the primary axis: columns under FlowColumns,
	// rows under FlowRows. Their count fixes the grid width along that axis.
	Tracks []TrackSpec

	// CrossTracks optionally declares the first tracks of the axis that grows
	// with content. Tracks without a declaration are fit-content.
	CrossTracks []TrackSpec

	Flow        Flow
	Packing     Packing
	ContentMode ContentMode
	Bounds      Size
	Spacing     Spacing
	Measure     MeasureFunc
}

// Result is the output of a successful arrangement pass. It must be treated
// as read-only; arrangers may share its placement between passes.
type Result struct {
	Placement   Placement
	ColumnSizes []float64
	RowSizes    []float64

	// Frames are the final item bounds after alignment.
	Frames map[ItemID]Rect
	// Cells are the full rectangles of the cells each item spans.
	Cells map[ItemID]Rect

	// ContentSize is the extent of all tracks plus spacing. It equals the
	// bounds on fill axes that contain a fraction track and may exceed the
	// bounds on the scroll axis.
	ContentSize Size
}

// Bounds returns the final pixel bounds of id.
func (r *Result) Bounds(id ItemID) (Rect, bool) {
	b, ok := r.Frames[id]
	return b, ok
}

// Arrange runs a complete pass: placement, track sizing and positioning.
// Any failure aborts the pass; no partial result is returned.
func Arrange(in Input) (*Result, error) {
	p := newPass(in)
	if err := p.validate(); err != nil {
		return nil, err
	}
	if err := p.place(); err != nil {
		return nil, err
	}
	if err := p.size(); err != nil {
		return nil, err
	}
	p.position()
	if p.err != nil {
		return nil, p.err
	}
	return p.result(), nil
}

type measurement struct {
	size Size
	ok   bool
}

// pass holds the transient state of one arrangement.
type pass struct {
	in       Input
	items    map[ItemID]Item
	measured map[ItemID]measurement

	placement   Placement
	columnSpecs []TrackSpec
	rowSpecs    []TrackSpec
	columnSizes []float64
	rowSizes    []float64
	frames      map[ItemID]Rect
	cells       map[ItemID]Rect

	// err is the first invalid measurement of the pass.
	err error
}

func newPass(in Input) *pass {
	items := make(map[ItemID]Item, len(in.Items))
	for _, it := range in.Items {
		items[it.ID] = it
	}
	return &pass{
		in:       in,
		items:    items,
		measured: make(map[ItemID]measurement),
	}
}

func (p *pass) validate() error {
	if err := validateTracks(p.in.Tracks); err != nil {
		return err
	}
	for i, t := range p.in.CrossTracks {
		if err := t.Validate(); err != nil {
			return fmt.Errorf("cross track %d: %w", i, err)
		}
	}
	if len(p.in.Tracks) < 1 {
		return errs.New(errs.ErrCodeInvalidColumnCount, "grid needs at least one %s track", p.primaryAxisName())
	}
	if !p.in.Bounds.valid() {
		return errs.New(errs.ErrCodeInvalidInput, "bounding size must be finite and >= 0, got %vx%v",
			p.in.Bounds.Width, p.in.Bounds.Height)
	}
	for _, it := range p.in.Items {
		if a := it.Alignment; a != nil && (!a.Horizontal.valid() || !a.Vertical.valid()) {
			return errs.New(errs.ErrCodeInvalidInput, "item %q has unknown alignment %d/%d",
				it.ID, int(a.Horizontal), int(a.Vertical))
		}
	}
	if !nonNegative(p.in.Spacing.Horizontal) || !nonNegative(p.in.Spacing.Vertical) {
		return errs.New(errs.ErrCodeInvalidInput, "spacing must be finite and >= 0, got %v/%v",
			p.in.Spacing.Horizontal, p.in.Spacing.Vertical)
	}
	return nil
}

func (p *pass) primaryAxisName() string {
	if p.in.Flow == FlowRows {
		return "row"
	}
	return "column"
}

func (p *pass) place() error {
	pl, err := placeFlow(p.in.Items, len(p.in.Tracks), p.in.Flow, p.in.Packing)
	if err != nil {
		return err
	}
	p.placement = pl
	return nil
}

// placeFlow runs Place along the primary axis of flow. FlowRows transposes
// items before placement and the placement back afterwards.
func placeFlow(items []Item, tracks int, flow Flow, packing Packing) (Placement, error) {
	if flow == FlowColumns {
		return Place(items, tracks, packing)
	}
	t := make([]Item, len(items))
	for i, it := range items {
		t[i] = it
		t[i].Span = Span{Columns: it.Span.Rows, Rows: it.Span.Columns}
		if it.Start != nil {
			t[i].Start = &Start{Column: it.Start.Row, Row: it.Start.Column}
		}
	}
	pl, err := Place(t, tracks, packing)
	if err != nil {
		return Placement{}, err
	}
	return pl.transposed(), nil
}

func (p *pass) size() error {
	cross := crossSpecs(p.in.CrossTracks, p.placement.TrackCount(p.in.Flow.ScrollAxis()))
	if p.in.Flow == FlowRows {
		p.columnSpecs, p.rowSpecs = cross, p.in.Tracks
	} else {
		p.columnSpecs, p.rowSpecs = p.in.Tracks, cross
	}

	var err error
	if p.columnSizes, err = p.resolve(Horizontal, p.columnSpecs); err != nil {
		return err
	}
	if p.rowSizes, err = p.resolve(Vertical, p.rowSpecs); err != nil {
		return err
	}
	return p.err
}

func (p *pass) resolve(a Axis, specs []TrackSpec) ([]float64, error) {
	sizes, err := ResolveTracks(AxisSizing{
		Specs:     specs,
		Available: p.in.Bounds.along(a),
		Spacing:   p.in.Spacing.along(a),
		Overflow:  p.in.ContentMode == Scroll && a == p.in.Flow.ScrollAxis(),
		Intrinsic: IntrinsicSizes(p.placement, a, specs, p.natural),
	})
	if err != nil {
		return nil, fmt.Errorf("%s tracks: %w", a, err)
	}
	return sizes, nil
}

// crossSpecs returns count specs for the growing axis: declared specs first,
// fit-content for the rest.
func crossSpecs(declared []TrackSpec, count int) []TrackSpec {
	specs := make([]TrackSpec, count)
	for i := range specs {
		if i < len(declared) {
			specs[i] = declared[i]
		} else {
			specs[i] = FitContent()
		}
	}
	return specs
}

func (p *pass) position() {
	p.frames, p.cells = Position(PositionInput{
		Placement:   p.placement,
		ColumnSizes: p.columnSizes,
		RowSizes:    p.rowSizes,
		ColumnSpecs: p.columnSpecs,
		RowSpecs:    p.rowSpecs,
		Spacing:     p.in.Spacing,
		Alignment:   p.alignment,
		Natural:     p.natural,
	})
}

func (p *pass) result() *Result {
	return &Result{
		Placement:   p.placement,
		ColumnSizes: p.columnSizes,
		RowSizes:    p.rowSizes,
		Frames:      p.frames,
		Cells:       p.cells,
		ContentSize: Size{
			Width:  sum(p.columnSizes, 0, len(p.columnSizes), p.in.Spacing.Horizontal),
			Height: sum(p.rowSizes, 0, len(p.rowSizes), p.in.Spacing.Vertical),
		},
	}
}

func (p *pass) alignment(id ItemID) (ItemAlignment, bool) {
	it, ok := p.items[id]
	if !ok || it.Alignment == nil {
		return ItemAlignment{}, false
	}
	return *it.Alignment, true
}

// natural measures id at most once per pass.
func (p *pass) natural(id ItemID) (Size, bool) {
	if m, ok := p.measured[id]; ok {
		return m.size, m.ok
	}
	if p.in.Measure == nil {
		return Size{}, false
	}
	s, ok := p.in.Measure(id)
	if ok && !s.valid() {
		if p.err == nil {
			p.err = errs.New(errs.ErrCodeInvalidInput,
				"item %q measured an invalid natural size %vx%v", id, s.Width, s.Height)
		}
		s, ok = Size{}, false
	}
	p.measured[id] = measurement{size: s, ok: ok}
	return s, ok
}
