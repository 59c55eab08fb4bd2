// Package render draws arranged grids.
//
// Every renderer takes a [document.Layout], so a layout can be rendered
// straight from the cache or a .layout.json file without re-arranging.
//
//   - [RenderSVG] writes a standalone SVG with item frames and labels, and
//     optionally the cell outlines ([WithCells]) and track guides ([WithGuides]).
//   - [ToDOT] emits Graphviz DOT with every item pinned at its frame.
//     [RenderGraphvizSVG] and [RenderPNG] lay that out with neato through
//     go-graphviz, so no external binaries are needed.
//   - [RenderText] draws the grid on a character canvas with box-drawing
//     characters; the terminal preview uses it.
//
// Labels are fitted to their frames with the same font heuristics in every
// format: the size follows the frame height and width, and long labels are
// truncated with "..".
package render
