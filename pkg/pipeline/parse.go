package pipeline

import (
	"bytes"

	"github.com/matzehuels/trackgrid/pkg/document"
	errs "github.com/matzehuels/trackgrid/pkg/errors"
	"github.com/matzehuels/trackgrid/pkg/grid"
)

// Overrides replace document fields, typically from command line flags.
// Zero values leave the document unchanged.
type Overrides struct {
	Width       float64
	Height      float64
	Flow        string
	Packing     string
	ContentMode string
}

// IsZero reports whether no override is set.
func (o Overrides) IsZero() bool {
	return o == Overrides{}
}

// Apply returns a copy of d with the overrides applied. Override values are
// validated the same way document values are.
func (o Overrides) Apply(d *document.Document) (*document.Document, error) {
	if o.IsZero() {
		return d, nil
	}
	if o.Width < 0 || o.Height < 0 {
		return nil, errs.New(errs.ErrCodeInvalidInput, "bounds override must be >= 0, got %vx%v", o.Width, o.Height)
	}
	if _, err := grid.ParseFlow(o.Flow); err != nil {
		return nil, err
	}
	if _, err := grid.ParsePacking(o.Packing); err != nil {
		return nil, err
	}
	if _, err := grid.ParseContentMode(o.ContentMode); err != nil {
		return nil, err
	}

	c := d.Clone()
	if o.Width > 0 {
		c.Width = o.Width
	}
	if o.Height > 0 {
		c.Height = o.Height
	}
	if o.Flow != "" {
		c.Flow = o.Flow
	}
	if o.Packing != "" {
		c.Packing = o.Packing
	}
	if o.ContentMode != "" {
		c.ContentMode = o.ContentMode
	}
	return c, nil
}

// Load reads a document file and applies overrides.
func Load(path string, o Overrides) (*document.Document, error) {
	d, err := document.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return o.Apply(d)
}

// Parse decodes a document in the given format and applies overrides.
func Parse(data []byte, format document.Format, o Overrides) (*document.Document, error) {
	d, err := document.Decode(bytes.NewReader(data), format)
	if err != nil {
		return nil, err
	}
	return o.Apply(d)
}
