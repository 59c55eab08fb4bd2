package grid

import (
	"math"
	"reflect"
	"testing"

	errs "github.com/matzehuels/trackgrid/pkg/errors"
)

func fixedMeasure(sizes map[ItemID]Size) MeasureFunc {
	return func(id ItemID) (Size, bool) {
		s, ok := sizes[id]
		return s, ok
	}
}

func TestArrangeMixedTracks(t *testing.T) {
	res, err := Arrange(Input{
		Items:  []Item{at(item("fit", 1, 1), 0, 3)},
		Tracks: []TrackSpec{Fraction(1), Fraction(2), Fixed(50), FitContent()},
		Bounds: Size{Width: 450, Height: 300},
		Measure: fixedMeasure(map[ItemID]Size{
			"fit": {Width: 80, Height: 24},
		}),
	})
	if err != nil {
		t.Fatalf("Arrange() error = %v", err)
	}

	if want := []float64{106.666667, 213.333333, 50, 80}; !approxCols(res.ColumnSizes, want) {
		t.Errorf("ColumnSizes = %v, want %v", res.ColumnSizes, want)
	}
	if want := []float64{24}; !approxSizes(res.RowSizes, want) {
		t.Errorf("RowSizes = %v, want %v", res.RowSizes, want)
	}
	b, ok := res.Bounds("fit")
	if !ok {
		t.Fatal("Bounds(fit) missing")
	}
	if want := (Rect{X: 370, Y: 0, Width: 80, Height: 24}); !approxRect(b, want) {
		t.Errorf("Bounds(fit) = %+v, want %+v", b, want)
	}
	if !approx(res.ContentSize.Width, 450) {
		t.Errorf("ContentSize.Width = %v, want 450", res.ContentSize.Width)
	}
}

// approxCols compares at two-decimal precision.
func approxCols(got, want []float64) bool {
	if len(got) != len(want) {
		return false
	}
	for i := range got {
		if d := got[i] - want[i]; d > 1e-4 || d < -1e-4 {
			return false
		}
	}
	return true
}

func TestArrangeErrors(t *testing.T) {
	tests := []struct {
		name string
		in   Input
		code errs.Code
	}{
		{
			name: "no tracks",
			in:   Input{Items: []Item{item("a", 1, 1)}, Bounds: Size{Width: 10, Height: 10}},
			code: errs.ErrCodeInvalidColumnCount,
		},
		{
			name: "invalid track",
			in:   Input{Tracks: []TrackSpec{Fixed(-1)}},
			code: errs.ErrCodeInvalidTrackSpec,
		},
		{
			name: "invalid cross track",
			in:   Input{Tracks: Tracks(1), CrossTracks: []TrackSpec{Fraction(-2)}},
			code: errs.ErrCodeInvalidTrackSpec,
		},
		{
			name: "span exceeds width",
			in:   Input{Items: []Item{item("a", 4, 1)}, Tracks: Tracks(3), Bounds: Size{Width: 300}},
			code: errs.ErrCodeSpanExceedsGridWidth,
		},
		{
			name: "explicit overlap",
			in: Input{
				Items:  []Item{at(item("a", 2, 1), 0, 0), at(item("b", 1, 1), 0, 0)},
				Tracks: Tracks(3),
				Bounds: Size{Width: 300},
			},
			code: errs.ErrCodeOverlappingExplicitPlacement,
		},
		{
			name: "insufficient width",
			in: Input{
				Items:  []Item{item("a", 1, 1)},
				Tracks: []TrackSpec{Fixed(200), Fixed(200)},
				Bounds: Size{Width: 300, Height: 100},
			},
			code: errs.ErrCodeInsufficientSpace,
		},
		{
			name: "negative bounds",
			in:   Input{Tracks: Tracks(1), Bounds: Size{Width: -5}},
			code: errs.ErrCodeInvalidInput,
		},
		{
			name: "negative spacing",
			in:   Input{Tracks: Tracks(1), Spacing: UniformSpacing(-1)},
			code: errs.ErrCodeInvalidInput,
		},
		{
			name: "nan width",
			in:   Input{Tracks: Tracks(2), Bounds: Size{Width: math.NaN(), Height: 100}},
			code: errs.ErrCodeInvalidInput,
		},
		{
			name: "infinite height",
			in:   Input{Tracks: Tracks(2), Bounds: Size{Width: 100, Height: math.Inf(1)}},
			code: errs.ErrCodeInvalidInput,
		},
		{
			name: "nan spacing",
			in: Input{
				Tracks:  Tracks(2),
				Bounds:  Size{Width: 100, Height: 100},
				Spacing: Spacing{Horizontal: 0, Vertical: math.NaN()},
			},
			code: errs.ErrCodeInvalidInput,
		},
		{
			name: "nan measurement",
			in: Input{
				Items:  []Item{item("a", 1, 1)},
				Tracks: []TrackSpec{FitContent(), Fraction(1)},
				Bounds: Size{Width: 100, Height: 100},
				Measure: func(ItemID) (Size, bool) {
					return Size{Width: math.NaN(), Height: 10}, true
				},
			},
			code: errs.ErrCodeInvalidInput,
		},
		{
			name: "negative measurement under alignment",
			in: Input{
				Items:  []Item{{ID: "a", Alignment: &ItemAlignment{Horizontal: AlignCenter}}},
				Tracks: Tracks(2),
				Bounds: Size{Width: 100, Height: 100},
				Measure: func(ItemID) (Size, bool) {
					return Size{Width: -10, Height: 10}, true
				},
			},
			code: errs.ErrCodeInvalidInput,
		},
		{
			name: "unknown item alignment",
			in: Input{
				Items:  []Item{{ID: "a", Alignment: &ItemAlignment{Vertical: Alignment(9)}}},
				Tracks: Tracks(1),
				Bounds: Size{Width: 100, Height: 100},
			},
			code: errs.ErrCodeInvalidInput,
		},
		{
			name: "explicit start far beyond the row limit",
			in: Input{
				Items:  []Item{at(item("a", 1, 1), math.MaxInt, 0)},
				Tracks: Tracks(2),
				Bounds: Size{Width: 100, Height: 100},
			},
			code: errs.ErrCodeInvalidInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := Arrange(tt.in)
			if err == nil {
				t.Fatal("Arrange() expected error")
			}
			if res != nil {
				t.Errorf("Arrange() returned a partial result")
			}
			if got := errs.GetCode(err); got != tt.code {
				t.Errorf("Arrange() code = %v, want %v (err %v)", got, tt.code, err)
			}
		})
	}
}

func TestArrangeScrollMode(t *testing.T) {
	items := []Item{item("a", 1, 1), item("b", 1, 1), item("c", 1, 1)}
	in := Input{
		Items:       items,
		Tracks:      Tracks(1),
		CrossTracks: []TrackSpec{Fixed(80), Fixed(80), Fixed(80)},
		Bounds:      Size{Width: 100, Height: 100},
		Spacing:     UniformSpacing(10),
	}

	if _, err := Arrange(in); !errs.Is(err, errs.ErrCodeInsufficientSpace) {
		t.Fatalf("Arrange(fill) error = %v, want INSUFFICIENT_SPACE", err)
	}

	in.ContentMode = Scroll
	res, err := Arrange(in)
	if err != nil {
		t.Fatalf("Arrange(scroll) error = %v", err)
	}
	if !approx(res.ContentSize.Height, 260) {
		t.Errorf("ContentSize.Height = %v, want 260", res.ContentSize.Height)
	}
	if !approx(res.ContentSize.Width, 100) {
		t.Errorf("ContentSize.Width = %v, want 100", res.ContentSize.Width)
	}
	if b := res.Frames["c"]; !approx(b.Y, 180) {
		t.Errorf("Frames[c].Y = %v, want 180", b.Y)
	}

	// The cross axis still has to fit.
	in.Tracks = []TrackSpec{Fixed(150)}
	if _, err := Arrange(in); !errs.Is(err, errs.ErrCodeInsufficientSpace) {
		t.Errorf("Arrange(scroll, wide) error = %v, want INSUFFICIENT_SPACE", err)
	}
}

func TestArrangeScrollFractionCollapses(t *testing.T) {
	res, err := Arrange(Input{
		Items:       []Item{item("a", 1, 1), item("b", 1, 1)},
		Tracks:      Tracks(1),
		CrossTracks: []TrackSpec{Fixed(150), Fraction(1)},
		ContentMode: Scroll,
		Bounds:      Size{Width: 100, Height: 100},
	})
	if err != nil {
		t.Fatalf("Arrange() error = %v", err)
	}
	if want := []float64{150, 0}; !approxSizes(res.RowSizes, want) {
		t.Errorf("RowSizes = %v, want %v", res.RowSizes, want)
	}
}

func TestArrangeFlowRows(t *testing.T) {
	res, err := Arrange(Input{
		Items:  []Item{item("a", 1, 1), item("b", 1, 1), item("c", 2, 1)},
		Tracks: Tracks(2),
		Flow:   FlowRows,
		Bounds: Size{Width: 300, Height: 200},
		Measure: fixedMeasure(map[ItemID]Size{
			"a": {Width: 40, Height: 10},
			"b": {Width: 60, Height: 10},
			"c": {Width: 500, Height: 10},
		}),
	})
	if err != nil {
		t.Fatalf("Arrange() error = %v", err)
	}

	want := map[ItemID]Area{
		"a": {Row: 0, Column: 0, RowSpan: 1, ColumnSpan: 1},
		"b": {Row: 1, Column: 0, RowSpan: 1, ColumnSpan: 1},
		"c": {Row: 0, Column: 1, RowSpan: 1, ColumnSpan: 2},
	}
	for id, w := range want {
		if got := res.Placement.Areas[id]; got != w {
			t.Errorf("Areas[%s] = %+v, want %+v", id, got, w)
		}
	}
	if want := []float64{100, 100}; !approxSizes(res.RowSizes, want) {
		t.Errorf("RowSizes = %v, want %v", res.RowSizes, want)
	}
	// Column 0 fits a and b; c spans two columns and constrains neither.
	if want := []float64{60, 0, 0}; !approxSizes(res.ColumnSizes, want) {
		t.Errorf("ColumnSizes = %v, want %v", res.ColumnSizes, want)
	}
}

func TestArrangeMeasuresOncePerItem(t *testing.T) {
	calls := make(map[ItemID]int)
	center := AlignBoth(AlignCenter)
	items := []Item{item("a", 1, 1), item("b", 1, 1), item("wide", 2, 1), {ID: "c", Alignment: &center}}
	_, err := Arrange(Input{
		Items:       items,
		Tracks:      []TrackSpec{FitContent(), FitContent()},
		CrossTracks: []TrackSpec{Fixed(10), Fixed(10), Fixed(10)},
		Bounds:      Size{Width: 500, Height: 500},
		Measure: func(id ItemID) (Size, bool) {
			calls[id]++
			return Size{Width: 20, Height: 10}, true
		},
	})
	if err != nil {
		t.Fatalf("Arrange() error = %v", err)
	}
	for id, n := range calls {
		if n != 1 {
			t.Errorf("measure(%s) called %d times, want 1", id, n)
		}
	}
	if calls["wide"] != 0 {
		t.Errorf("measure(wide) called, want skipped for spanning stretch item")
	}
}

func TestArrangeWithoutMeasure(t *testing.T) {
	res, err := Arrange(Input{
		Items:  []Item{item("a", 1, 1)},
		Tracks: []TrackSpec{FitContent(), Fraction(1)},
		Bounds: Size{Width: 100, Height: 100},
	})
	if err != nil {
		t.Fatalf("Arrange() error = %v", err)
	}
	if want := []float64{0, 100}; !approxSizes(res.ColumnSizes, want) {
		t.Errorf("ColumnSizes = %v, want %v", res.ColumnSizes, want)
	}
}

func TestArrangeIdempotent(t *testing.T) {
	center := AlignBoth(AlignCenter)
	in := Input{
		Items: []Item{
			item("a", 2, 1), item("b", 1, 2), at(item("c", 1, 1), 2, 2),
			{ID: "d", Alignment: &center}, item("e", 1, 1),
		},
		Tracks:      []TrackSpec{Fraction(1), FitContent(), Fixed(40)},
		CrossTracks: []TrackSpec{Fixed(30)},
		Packing:     Dense,
		Bounds:      Size{Width: 320, Height: 400},
		Spacing:     Spacing{Horizontal: 4, Vertical: 8},
		Measure: fixedMeasure(map[ItemID]Size{
			"a": {Width: 10, Height: 10}, "b": {Width: 25, Height: 40},
			"c": {Width: 5, Height: 5}, "d": {Width: 12, Height: 12},
			"e": {Width: 33, Height: 18},
		}),
	}
	first, err := Arrange(in)
	if err != nil {
		t.Fatalf("Arrange() error = %v", err)
	}
	for i := 0; i < 5; i++ {
		again, err := Arrange(in)
		if err != nil {
			t.Fatalf("Arrange() error = %v", err)
		}
		if !reflect.DeepEqual(first, again) {
			t.Fatalf("Arrange() run %d differs:\n%+v\n%+v", i, first, again)
		}
	}
}

func TestArrangeFramesInsideCells(t *testing.T) {
	start, end := AlignBoth(AlignStart), ItemAlignment{Horizontal: AlignEnd, Vertical: AlignCenter}
	res, err := Arrange(Input{
		Items: []Item{
			{ID: "a", Alignment: &start}, {ID: "b", Alignment: &end}, item("c", 2, 2), item("d", 1, 1),
		},
		Tracks:  Tracks(3),
		Bounds:  Size{Width: 600, Height: 400},
		Spacing: UniformSpacing(6),
		Measure: fixedMeasure(map[ItemID]Size{
			"a": {Width: 50, Height: 20}, "b": {Width: 1000, Height: 15},
		}),
	})
	if err != nil {
		t.Fatalf("Arrange() error = %v", err)
	}
	for id, frame := range res.Frames {
		if !res.Cells[id].Contains(frame) {
			t.Errorf("frame %s %+v not inside cell %+v", id, frame, res.Cells[id])
		}
	}
}
