// Package document defines the on-disk formats around the grid engine.
//
// A [Document] is a declarative grid definition in TOML or JSON:
//
//	width = 450
//	height = 300
//	spacing = 8
//	packing = "dense"
//	tracks = ["1fr", "2fr", "50", "fit"]
//
//	[[items]]
//	id = "logo"
//	start = { column = 3, row = 0 }
//	natural = { width = 80, height = 24 }
//
//	[[items]]
//	id = "banner"
//	span = { columns = 3 }
//
// [Document.Input] turns it into a [grid.Input]; declared natural sizes act
// as the measure function. A [Layout] is the serialized arrangement result
// consumed by the renderers and cached by the pipeline.
package document
