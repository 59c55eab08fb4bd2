// Package grid arranges items inside a two-dimensional grid of tracks.
//
// # Overview
//
// An arrangement pass turns declarative item metadata into pixel bounds in
// three steps:
//
//  1. [Place] assigns every item a block of cells. Explicit starts are placed
//     first; the rest are auto-placed column-first in declaration order,
//     either [Sparse] (the cursor only moves forward) or [Dense] (every scan
//     restarts at the origin to back-fill gaps).
//  2. [ResolveTracks] converts [TrackSpec] values into pixel sizes per axis.
//     Fixed tracks take their size, fit-content tracks the largest natural
//     size among the single-track items they host, and fraction tracks split
//     what remains by weight.
//  3. [Position] lays the cells out with spacing and applies the item's own
//     [ItemAlignment] or, per axis, the [Alignment] of its tracks.
//
// [Arrange] runs all three as a pure function of its [Input]. [Arranger]
// wraps it in a small state machine (idle, placing, sizing, positioning,
// ready) that keeps the last good result visible when a pass fails and
// reuses the placement when only the bounds change. A [Registry] holds one
// arranger per [GridID], so any number of independent grids can coexist.
//
// # Flow and Content Mode
//
// Under [FlowColumns] the track list fixes the column count and rows grow
// with content, up to [MaxRows]; [FlowRows] is the same algorithm with the
// axes swapped.
// [Fill] requires the tracks to fit their bounds and fails with
// INSUFFICIENT_SPACE otherwise. [Scroll] lets the growing axis overflow.
//
// # Measurement
//
// The caller supplies a [MeasureFunc] reporting an item's natural size. It is
// only consulted for items confined to a single fit-content track and for
// items with a non-stretch alignment, at most once per item per pass. A
// negative or non-finite size fails the pass.
//
// # Errors
//
// Every failure is a *errors.Error carrying one of INVALID_TRACK_SPEC,
// INVALID_COLUMN_COUNT, SPAN_EXCEEDS_GRID_WIDTH,
// OVERLAPPING_EXPLICIT_PLACEMENT or INSUFFICIENT_SPACE, or INVALID_INPUT for
// malformed items, negative spans, rows past [MaxRows] and non-finite sizes.
// Nothing is clamped silently.
package grid
