// Package pkg provides the libraries behind Trackgrid, a track-based grid
// arrangement engine.
//
// # Overview
//
// Trackgrid places items with column and row spans onto a grid whose tracks
// are fixed, fractional or sized to content, then computes the pixel frame
// of every item. The pkg directory is organized into these areas:
//
//  1. [grid] - The engine (placement, track sizing, positioning, arrangers)
//  2. [document] - Grid documents (TOML/JSON) and the serialized layout
//  3. [render] - Layout renderers (SVG, Graphviz DOT/PNG, text)
//  4. [pipeline] - Orchestration (parse → arrange → render) with caching
//  5. [cache] - Cache backends (file, Redis, MongoDB) and key scoping
//  6. [server] - HTTP API over the pipeline and a registry of grids
//
// # Architecture
//
// The typical data flow through Trackgrid:
//
//	Grid document (.toml / .json)
//	         ↓
//	    [document] package (decode, validate, build engine input)
//	         ↓
//	    [grid] package (place → size → position)
//	         ↓
//	    [document.Layout] (serializable arrangement)
//	         ↓
//	    [render] package → SVG/PNG/DOT/TXT output
//
// # Quick Start
//
// Arrange a document and render it:
//
//	import (
//	    "github.com/matzehuels/trackgrid/pkg/document"
//	    "github.com/matzehuels/trackgrid/pkg/grid"
//	    "github.com/matzehuels/trackgrid/pkg/render"
//	)
//
//	// 1. Load the document
//	doc, _ := document.ReadFile("board.toml")
//
//	// 2. Arrange
//	in, _ := doc.Input()
//	res, _ := grid.Arrange(in)
//
//	// 3. Render to SVG
//	l, _ := document.NewLayout(doc, res)
//	svg := render.RenderSVG(l, render.WithGuides())
//
// Or run the cached pipeline:
//
//	runner := pipeline.NewRunner(c, nil, logger)
//	result, _ := runner.Execute(ctx, doc, pipeline.Options{Formats: []string{"svg", "png"}})
//
// # Main Packages
//
// [grid] - The arrangement engine. [grid.Arrange] runs a stateless pass;
// [grid.Arranger] keeps the last successful result of one grid and reuses
// its placement across resize-only passes; [grid.Registry] owns the
// arrangers of independent grids.
//
// [errors] - Error codes shared by every package, with HTTP status mapping.
//
// [observability] - Hook interfaces for arrangement phases, the pipeline,
// the cache and HTTP requests. No-ops unless a caller installs hooks.
//
// [buildinfo] - Version information injected at build time.
//
// # Testing
//
// Run tests:
//
//	go test ./...                  # All tests
//	go test ./pkg/grid/...         # Specific package
//	go test -run Example ./pkg/... # Examples only
//
// [grid]: https://pkg.go.dev/github.com/matzehuels/trackgrid/pkg/grid
// [document]: https://pkg.go.dev/github.com/matzehuels/trackgrid/pkg/document
// [document.Layout]: https://pkg.go.dev/github.com/matzehuels/trackgrid/pkg/document#Layout
// [render]: https://pkg.go.dev/github.com/matzehuels/trackgrid/pkg/render
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/trackgrid/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/matzehuels/trackgrid/pkg/cache
// [server]: https://pkg.go.dev/github.com/matzehuels/trackgrid/pkg/server
// [errors]: https://pkg.go.dev/github.com/matzehuels/trackgrid/pkg/errors
// [observability]: https://pkg.go.dev/github.com/matzehuels/trackgrid/pkg/observability
// [buildinfo]: https://pkg.go.dev/github.com/matzehuels/trackgrid/pkg/buildinfo
package pkg
