// Package pipeline runs the load → arrange → render flow shared by the CLI
// and the HTTP server.
//
// Centralizing the flow keeps both entry points consistent: the same
// defaults, the same cache keys and the same error codes.
//
// # Stages
//
//  1. Load: decode a grid document (TOML or JSON) and apply overrides
//  2. Arrange: run the engine and convert the result to a [document.Layout]
//  3. Render: produce artifacts (JSON, SVG, DOT, PNG, text) from a layout
//
// Arrange and Render results are cached by content hash, so unchanged
// documents skip the engine and unchanged layouts skip rendering.
//
// # Usage
//
//	runner := pipeline.NewRunner(c, nil, logger)
//	doc, err := pipeline.Load("dashboard.toml", pipeline.Overrides{})
//	if err != nil {
//	    return err
//	}
//	result, err := runner.Execute(ctx, doc, pipeline.Options{Formats: []string{"svg"}})
//	if err != nil {
//	    return err
//	}
//	svg := result.Artifacts["svg"]
package pipeline

import (
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/trackgrid/pkg/cache"
	"github.com/matzehuels/trackgrid/pkg/document"
	errs "github.com/matzehuels/trackgrid/pkg/errors"
)

// =============================================================================
// Default Values
// =============================================================================

const (
	// DefaultScale is the PNG scale factor.
	DefaultScale = 2.0

	// MaxScale bounds PNG output size.
	MaxScale = 8.0

	// layoutVersion is part of every layout cache key.
	layoutVersion = 1
)

// Output formats.
const (
	FormatJSON = "json"
	FormatSVG  = "svg"
	FormatDOT  = "dot"
	FormatPNG  = "png"
	FormatTXT  = "txt"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatJSON: true,
	FormatSVG:  true,
	FormatDOT:  true,
	FormatPNG:  true,
	FormatTXT:  true,
}

// ContentTypes maps output formats to MIME types.
var ContentTypes = map[string]string{
	FormatJSON: "application/json",
	FormatSVG:  "image/svg+xml",
	FormatDOT:  "text/vnd.graphviz",
	FormatPNG:  "image/png",
	FormatTXT:  "text/plain; charset=utf-8",
}

// =============================================================================
// Options
// =============================================================================

// Options configures arranging and rendering.
type Options struct {
	Formats []string `json:"formats,omitempty"`

	// Refresh bypasses cache reads. Results are still written.
	Refresh bool `json:"refresh,omitempty"`

	// Scale is the PNG scale factor.
	Scale float64 `json:"scale,omitempty"`

	// Cells and Guides add cell outlines and track guides to SVG output.
	Cells  bool `json:"cells,omitempty"`
	Guides bool `json:"guides,omitempty"`

	// TextWidth is the canvas width of txt output in characters.
	TextWidth int `json:"text_width,omitempty"`

	Logger *log.Logger `json:"-"`

	validated bool
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// DocHash is the content hash of the arranged document.
	DocHash string

	Layout document.Layout

	// LayoutHash is the content hash of the encoded layout.
	LayoutHash string

	// Artifacts are the rendered outputs keyed by format.
	Artifacts map[string][]byte

	Stats     Stats
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	Items       int
	Columns     int
	Rows        int
	ArrangeTime time.Duration
	RenderTime  time.Duration
}

// CacheInfo tracks cache hits per stage.
type CacheInfo struct {
	LayoutHit bool // layout came from cache
	RenderHit bool // every artifact came from cache
}

// =============================================================================
// Validation
// =============================================================================

// ValidateFormat checks that format is supported.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errs.New(errs.ErrCodeInvalidFormat, "invalid format: %q (must be one of: json, svg, dot, png, txt)", format)
	}
	return nil
}

// ValidateFormats checks every format.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ParseFormats splits a comma separated list, trimming blanks and dropping
// duplicates.
func ParseFormats(s string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, f := range strings.Split(s, ",") {
		f = strings.ToLower(strings.TrimSpace(f))
		if f == "" || seen[f] {
			continue
		}
		seen[f] = true
		out = append(out, f)
	}
	return out
}

// ValidateAndSetDefaults checks the options and fills in defaults.
// It is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatSVG}
	}
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	if o.Scale == 0 {
		o.Scale = DefaultScale
	}
	if o.Scale < 0 || o.Scale > MaxScale {
		return errs.New(errs.ErrCodeInvalidInput, "scale must be in (0, %v], got %v", MaxScale, o.Scale)
	}
	if o.TextWidth < 0 {
		return errs.New(errs.ErrCodeInvalidInput, "text width must be >= 0, got %d", o.TextWidth)
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	o.validated = true
	return nil
}

// LayoutKeyOpts returns the cache key options for arranging.
func (o *Options) LayoutKeyOpts() cache.LayoutKeyOpts {
	return cache.LayoutKeyOpts{Version: layoutVersion}
}

// ArtifactKeyOpts returns the cache key options for one format. Options that
// do not affect a format are left out so they do not split its cache entries.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	k := cache.ArtifactKeyOpts{Format: format}
	switch format {
	case FormatSVG:
		k.Cells, k.Guides = o.Cells, o.Guides
	case FormatPNG:
		k.Scale = o.Scale
	case FormatTXT:
		k.Scale = float64(o.TextWidth)
	}
	return k
}
