package grid

import (
	"math"

	errs "github.com/matzehuels/trackgrid/pkg/errors"
)

const eps = 1e-9

// AxisSizing is the input of ResolveTracks for one axis.
type AxisSizing struct {
	Specs     []TrackSpec
	Available float64 // bounding size along the axis
	Spacing   float64 // gap between adjacent tracks

	// Overflow marks the scroll axis under Scroll content mode: content may
	// exceed Available and fraction tracks collapse to zero instead of failing.
	Overflow bool

	// Intrinsic holds, per track, the largest natural size among items
	// confined to that single track. Only read for fit-content tracks;
	// missing entries count as zero. Negative or non-finite entries fail.
	Intrinsic []float64
}

// ResolveTracks converts track specs into pixel sizes.
//
// Fixed tracks take their declared size and fit-content tracks their
// intrinsic size. Whatever remains after spacing is split across fraction
// tracks by weight. Without Overflow a negative remainder fails with
// INSUFFICIENT_SPACE; with Overflow fraction tracks simply get nothing.
// Sizes are not rounded.
func ResolveTracks(in AxisSizing) ([]float64, error) {
	if err := validateTracks(in.Specs); err != nil {
		return nil, err
	}
	if !nonNegative(in.Available) || !nonNegative(in.Spacing) {
		return nil, errs.New(errs.ErrCodeInvalidInput,
			"bounding size and spacing must be finite and >= 0, got %v and %v", in.Available, in.Spacing)
	}

	sizes := make([]float64, len(in.Specs))
	if len(sizes) == 0 {
		return sizes, nil
	}

	var used, weights float64
	for i, t := range in.Specs {
		switch t.Kind {
		case KindFixed:
			sizes[i] = t.Value
			used += t.Value
		case KindFitContent:
			if i < len(in.Intrinsic) {
				if !nonNegative(in.Intrinsic[i]) {
					return nil, errs.New(errs.ErrCodeInvalidInput,
						"intrinsic size of track %d must be finite and >= 0, got %v", i, in.Intrinsic[i])
				}
				sizes[i] = in.Intrinsic[i]
			}
			used += sizes[i]
		case KindFraction:
			weights += t.Value
		}
	}

	remaining := in.Available - in.Spacing*float64(len(sizes)-1) - used
	if remaining < -eps && !in.Overflow {
		return nil, errs.New(errs.ErrCodeInsufficientSpace,
			"tracks need %.2f more pixels than the %.2f available", -remaining, in.Available)
	}
	if remaining <= 0 || weights == 0 {
		return sizes, nil
	}

	for i, t := range in.Specs {
		if t.Kind == KindFraction {
			sizes[i] = remaining * t.Value / weights
		}
	}
	return sizes, nil
}

// IntrinsicSizes returns, for each fit-content track in specs on axis a, the
// largest natural size along a among items whose area covers exactly that
// one track. Items spanning several tracks do not constrain any single track,
// and items in other kinds of tracks are never measured. natural reports
// false for items whose size is unknown; those are skipped.
func IntrinsicSizes(p Placement, a Axis, specs []TrackSpec, natural func(ItemID) (Size, bool)) []float64 {
	sizes := make([]float64, len(specs))
	if natural == nil {
		return sizes
	}
	for _, id := range p.Order {
		area := p.Areas[id]
		if area.Span(a) != 1 {
			continue
		}
		i := area.Start(a)
		if i >= len(specs) || !specs[i].IsIntrinsic() {
			continue
		}
		if s, ok := natural(id); ok {
			sizes[i] = max(sizes[i], s.along(a))
		}
	}
	return sizes
}

// nonNegative reports whether v is a finite number >= 0.
func nonNegative(v float64) bool {
	return v >= 0 && !math.IsInf(v, 1)
}

// sum returns the total extent of sizes[from:to] including the gaps between them.
func sum(sizes []float64, from, to int, spacing float64) float64 {
	if to <= from {
		return 0
	}
	var total float64
	for _, s := range sizes[from:to] {
		total += s
	}
	return total + spacing*float64(to-from-1)
}
