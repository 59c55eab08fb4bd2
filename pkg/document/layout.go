package document

import (
	"encoding/json"
	"fmt"
	"os"

	errs "github.com/matzehuels/trackgrid/pkg/errors"
	"github.com/matzehuels/trackgrid/pkg/grid"
)

// =============================================================================
// Layout - Arrangement Output Format
// =============================================================================

// Layout is the serialized result of arranging a document. It carries
// everything renderers need, so it can be stored, cached and rendered
// without re-running the engine.
type Layout struct {
	GridID      string  `json:"grid_id,omitempty"`
	Flow        string  `json:"flow"`
	Packing     string  `json:"packing"`
	ContentMode string  `json:"content_mode"`
	Width       float64 `json:"width"`
	Height      float64 `json:"height"`
	Spacing     Spacing `json:"spacing"`

	// ContentWidth/ContentHeight are the extent of all tracks plus spacing.
	ContentWidth  float64 `json:"content_width"`
	ContentHeight float64 `json:"content_height"`

	Columns []float64    `json:"columns"`
	Rows    []float64    `json:"rows"`
	Items   []LayoutItem `json:"items"`
}

// LayoutItem is one positioned item.
type LayoutItem struct {
	ID    string    `json:"id"`
	Label string    `json:"label,omitempty"`
	Area  grid.Area `json:"area"`
	Frame grid.Rect `json:"frame"`
	Cell  grid.Rect `json:"cell"`
}

// DisplayLabel returns the label if set, otherwise the ID.
func (it LayoutItem) DisplayLabel() string {
	if it.Label != "" {
		return it.Label
	}
	return it.ID
}

// NewLayout builds the output format from a document and its arrangement.
// Items appear in declaration order. It fails if the document no longer
// converts to an engine input.
func NewLayout(d *Document, res *grid.Result) (Layout, error) {
	in, err := d.Input()
	if err != nil {
		return Layout{}, err
	}
	l := Layout{
		GridID:        d.ID,
		Flow:          in.Flow.String(),
		Packing:       in.Packing.String(),
		ContentMode:   in.ContentMode.String(),
		Width:         in.Bounds.Width,
		Height:        in.Bounds.Height,
		Spacing:       d.Spacing,
		ContentWidth:  res.ContentSize.Width,
		ContentHeight: res.ContentSize.Height,
		Columns:       res.ColumnSizes,
		Rows:          res.RowSizes,
		Items:         make([]LayoutItem, 0, len(res.Placement.Order)),
	}

	labels := make(map[grid.ItemID]string, len(d.Items))
	for i := range d.Items {
		if d.Items[i].Label != "" {
			labels[d.ItemID(i)] = d.Items[i].Label
		}
	}
	for _, id := range res.Placement.Order {
		l.Items = append(l.Items, LayoutItem{
			ID:    string(id),
			Label: labels[id],
			Area:  res.Placement.Areas[id],
			Frame: res.Frames[id],
			Cell:  res.Cells[id],
		})
	}
	return l, nil
}

// CanvasSize returns the area a renderer needs: the bounds, grown to the
// content size when the grid overflows.
func (l Layout) CanvasSize() (width, height float64) {
	return max(l.Width, l.ContentWidth), max(l.Height, l.ContentHeight)
}

// Item returns the positioned item with the given id.
func (l Layout) Item(id string) (LayoutItem, bool) {
	for _, it := range l.Items {
		if it.ID == id {
			return it, true
		}
	}
	return LayoutItem{}, false
}

// MarshalLayout serializes a Layout to pretty-printed JSON bytes.
func MarshalLayout(l Layout) ([]byte, error) {
	return json.MarshalIndent(l, "", "  ")
}

// UnmarshalLayout deserializes JSON bytes into a Layout.
func UnmarshalLayout(data []byte) (Layout, error) {
	var l Layout
	if err := json.Unmarshal(data, &l); err != nil {
		return Layout{}, errs.Wrap(errs.ErrCodeInvalidFormat, err, "unmarshal layout")
	}
	if len(l.Columns) == 0 {
		return Layout{}, errs.New(errs.ErrCodeInvalidFormat, "layout must contain column sizes")
	}
	for _, it := range l.Items {
		if it.Area.Column+it.Area.ColumnSpan > len(l.Columns) {
			return Layout{}, errs.New(errs.ErrCodeInvalidFormat,
				"layout item %q lies outside its %d columns", it.ID, len(l.Columns))
		}
	}
	return l, nil
}

// WriteLayoutFile writes a Layout to a JSON file.
func WriteLayoutFile(l Layout, path string) error {
	data, err := MarshalLayout(l)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ReadLayoutFile reads a Layout from a JSON file.
func ReadLayoutFile(path string) (Layout, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Layout{}, fmt.Errorf("read %s: %w", path, err)
	}
	return UnmarshalLayout(data)
}
