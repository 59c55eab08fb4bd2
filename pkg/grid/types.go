package grid

import (
	"fmt"
	"strings"

	errs "github.com/matzehuels/trackgrid/pkg/errors"
)

// Size is a width/height pair in pixel space.
type Size struct {
	Width  float64 `json:"width" toml:"width"`
	Height float64 `json:"height" toml:"height"`
}

// along returns the extent of s on axis a.
func (s Size) along(a Axis) float64 {
	if a == Horizontal {
		return s.Width
	}
	return s.Height
}

// valid reports whether both dimensions are finite and >= 0.
func (s Size) valid() bool {
	return nonNegative(s.Width) && nonNegative(s.Height)
}

// Rect is an axis-aligned rectangle with its origin at the top-left corner.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Right returns the x coordinate of the right edge.
func (r Rect) Right() float64 { return r.X + r.Width }

// Bottom returns the y coordinate of the bottom edge.
func (r Rect) Bottom() float64 { return r.Y + r.Height }

// Contains reports whether o lies entirely inside r, within eps.
func (r Rect) Contains(o Rect) bool {
	return o.X >= r.X-eps && o.Y >= r.Y-eps &&
		o.Right() <= r.Right()+eps && o.Bottom() <= r.Bottom()+eps
}

// Axis selects the horizontal (columns) or vertical (rows) dimension.
type Axis int

const (
	Horizontal Axis = iota
	Vertical
)

func (a Axis) String() string {
	if a == Horizontal {
		return "horizontal"
	}
	return "vertical"
}

// Flow selects the primary axis along which items are auto-placed.
type Flow int

const (
	// FlowColumns fixes the column count; rows grow as items are placed.
	FlowColumns Flow = iota
	// FlowRows fixes the row count; columns grow as items are placed.
	FlowRows
)

// ScrollAxis returns the axis that grows with content under this flow.
func (f Flow) ScrollAxis() Axis {
	if f == FlowRows {
		return Horizontal
	}
	return Vertical
}

func (f Flow) String() string {
	if f == FlowRows {
		return "rows"
	}
	return "columns"
}

// ParseFlow parses "columns" or "rows". An empty string selects FlowColumns.
func ParseFlow(s string) (Flow, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "columns", "column":
		return FlowColumns, nil
	case "rows", "row":
		return FlowRows, nil
	}
	return FlowColumns, errs.New(errs.ErrCodeInvalidInput, "invalid flow: %q (must be columns or rows)", s)
}

// Packing selects how auto-placement treats gaps left behind the cursor.
type Packing int

const (
	// Sparse never moves the placement cursor backward.
	Sparse Packing = iota
	// Dense restarts every scan at the grid origin to back-fill gaps.
	Dense
)

func (p Packing) String() string {
	if p == Dense {
		return "dense"
	}
	return "sparse"
}

// ParsePacking parses "sparse" or "dense". An empty string selects Sparse.
func ParsePacking(s string) (Packing, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "sparse":
		return Sparse, nil
	case "dense":
		return Dense, nil
	}
	return Sparse, errs.New(errs.ErrCodeInvalidInput, "invalid packing: %q (must be sparse or dense)", s)
}

// ContentMode selects whether the grid must fit its bounds or may scroll.
type ContentMode int

const (
	// Fill makes the grid exactly fill the bounding size; nothing overflows.
	Fill ContentMode = iota
	// Scroll sizes the scroll axis to content; overflow is allowed there.
	Scroll
)

func (m ContentMode) String() string {
	if m == Scroll {
		return "scroll"
	}
	return "fill"
}

// ParseContentMode parses "fill" or "scroll". An empty string selects Fill.
func ParseContentMode(s string) (ContentMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "fill":
		return Fill, nil
	case "scroll":
		return Scroll, nil
	}
	return Fill, errs.New(errs.ErrCodeInvalidInput, "invalid content mode: %q (must be fill or scroll)", s)
}

// Alignment positions an item inside its cell along one axis.
type Alignment int

const (
	// AlignStretch uses the full cell as the item frame.
	AlignStretch Alignment = iota
	AlignStart
	AlignCenter
	AlignEnd
)

var alignmentNames = [...]string{"stretch", "start", "center", "end"}

func (a Alignment) String() string {
	if a < 0 || int(a) >= len(alignmentNames) {
		return fmt.Sprintf("Alignment(%d)", int(a))
	}
	return alignmentNames[a]
}

func (a Alignment) valid() bool { return a >= AlignStretch && a <= AlignEnd }

// ParseAlignment parses an alignment name. "leading"/"top" are accepted for
// start and "trailing"/"bottom" for end.
func ParseAlignment(s string) (Alignment, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "stretch", "fill":
		return AlignStretch, nil
	case "start", "leading", "top":
		return AlignStart, nil
	case "center", "middle":
		return AlignCenter, nil
	case "end", "trailing", "bottom":
		return AlignEnd, nil
	}
	return AlignStretch, errs.New(errs.ErrCodeInvalidInput, "invalid alignment: %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (a Alignment) MarshalText() ([]byte, error) { return []byte(a.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (a *Alignment) UnmarshalText(b []byte) error {
	v, err := ParseAlignment(string(b))
	if err != nil {
		return err
	}
	*a = v
	return nil
}

// ItemAlignment is an item's own alignment, set per axis.
type ItemAlignment struct {
	Horizontal Alignment `json:"horizontal"`
	Vertical   Alignment `json:"vertical"`
}

// AlignBoth returns an ItemAlignment that uses a on both axes.
func AlignBoth(a Alignment) ItemAlignment {
	return ItemAlignment{Horizontal: a, Vertical: a}
}

func (a ItemAlignment) String() string {
	if a.Horizontal == a.Vertical {
		return a.Horizontal.String()
	}
	return a.Horizontal.String() + " " + a.Vertical.String()
}

// ParseItemAlignment parses one alignment for both axes ("center") or a
// horizontal alignment followed by a vertical one ("leading center").
func ParseItemAlignment(s string) (ItemAlignment, error) {
	fields := strings.Fields(s)
	switch len(fields) {
	case 0, 1:
		a, err := ParseAlignment(s)
		return AlignBoth(a), err
	case 2:
		h, err := ParseAlignment(fields[0])
		if err != nil {
			return ItemAlignment{}, err
		}
		v, err := ParseAlignment(fields[1])
		if err != nil {
			return ItemAlignment{}, err
		}
		return ItemAlignment{Horizontal: h, Vertical: v}, nil
	}
	return ItemAlignment{}, errs.New(errs.ErrCodeInvalidInput, "invalid alignment: %q", s)
}

// Spacing is the gap between adjacent tracks on each axis.
type Spacing struct {
	Horizontal float64 `json:"horizontal" toml:"horizontal"`
	Vertical   float64 `json:"vertical" toml:"vertical"`
}

// UniformSpacing returns a Spacing with the same gap on both axes.
func UniformSpacing(v float64) Spacing { return Spacing{Horizontal: v, Vertical: v} }

func (s Spacing) along(a Axis) float64 {
	if a == Horizontal {
		return s.Horizontal
	}
	return s.Vertical
}
