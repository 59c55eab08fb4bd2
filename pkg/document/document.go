package document

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	errs "github.com/matzehuels/trackgrid/pkg/errors"
	"github.com/matzehuels/trackgrid/pkg/grid"
)

// Format is the encoding of a grid document.
type Format string

const (
	FormatTOML Format = "toml"
	FormatJSON Format = "json"
)

// Default bounds used when a document leaves width or height unset.
const (
	DefaultWidth  = 800
	DefaultHeight = 600
)

// FormatFromPath infers the document format from a file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return FormatTOML, nil
	case ".json":
		return FormatJSON, nil
	}
	return "", errs.New(errs.ErrCodeInvalidFormat, "cannot infer document format from %q (use .toml or .json)", path)
}

// ParseFormat parses a format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatTOML, FormatJSON:
		return f, nil
	}
	return "", errs.New(errs.ErrCodeInvalidFormat, "unknown document format: %q", s)
}

// Document is the declarative description of one grid.
type Document struct {
	ID          string    `json:"id,omitempty" toml:"id"`
	Flow        string    `json:"flow,omitempty" toml:"flow"`
	Packing     string    `json:"packing,omitempty" toml:"packing"`
	ContentMode string    `json:"content_mode,omitempty" toml:"content_mode"`
	Width       float64   `json:"width,omitempty" toml:"width"`
	Height      float64   `json:"height,omitempty" toml:"height"`
	Spacing     Spacing   `json:"spacing" toml:"spacing"`
	Tracks      []string  `json:"tracks" toml:"tracks"`
	CrossTracks []string  `json:"cross_tracks,omitempty" toml:"cross_tracks"`
	Items       []ItemDoc `json:"items" toml:"items"`
}

// ItemDoc describes one grid item.
type ItemDoc struct {
	ID      string      `json:"id,omitempty" toml:"id"`
	Label   string      `json:"label,omitempty" toml:"label"`
	Span    grid.Span   `json:"span" toml:"span"`
	Start   *grid.Start `json:"start,omitempty" toml:"start"`
	Align   string      `json:"align,omitempty" toml:"align"` // "center", or horizontal then vertical: "start center"
	Natural *grid.Size  `json:"natural,omitempty" toml:"natural"`
}

// Spacing is the gap between tracks. In documents it is either a single
// number for both axes or a table with horizontal and vertical keys.
type Spacing grid.Spacing

// UnmarshalTOML implements toml.Unmarshaler.
func (s *Spacing) UnmarshalTOML(v any) error {
	switch x := v.(type) {
	case map[string]any:
		h, err := tomlNumber(x["horizontal"])
		if err != nil {
			return fmt.Errorf("spacing.horizontal: %w", err)
		}
		vert, err := tomlNumber(x["vertical"])
		if err != nil {
			return fmt.Errorf("spacing.vertical: %w", err)
		}
		*s = Spacing{Horizontal: h, Vertical: vert}
		return nil
	default:
		n, err := tomlNumber(v)
		if err != nil {
			return fmt.Errorf("spacing: %w", err)
		}
		*s = Spacing(grid.UniformSpacing(n))
		return nil
	}
}

func tomlNumber(v any) (float64, error) {
	switch n := v.(type) {
	case nil:
		return 0, nil
	case int64:
		return float64(n), nil
	case float64:
		return n, nil
	}
	return 0, fmt.Errorf("expected a number, got %T", v)
}

// UnmarshalJSON implements json.Unmarshaler.
func (s *Spacing) UnmarshalJSON(b []byte) error {
	var n float64
	if err := json.Unmarshal(b, &n); err == nil {
		*s = Spacing(grid.UniformSpacing(n))
		return nil
	}
	var obj grid.Spacing
	if err := json.Unmarshal(b, &obj); err != nil {
		return fmt.Errorf("spacing: expected a number or {horizontal, vertical}: %w", err)
	}
	*s = Spacing(obj)
	return nil
}

// MarshalJSON writes uniform spacing as a plain number.
func (s Spacing) MarshalJSON() ([]byte, error) {
	if s.Horizontal == s.Vertical {
		return json.Marshal(s.Horizontal)
	}
	return json.Marshal(grid.Spacing(s))
}

// Decode reads a document in the given format.
func Decode(r io.Reader, format Format) (*Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read document: %w", err)
	}
	return Unmarshal(data, format)
}

// Unmarshal parses document bytes in the given format.
func Unmarshal(data []byte, format Format) (*Document, error) {
	var d Document
	switch format {
	case FormatTOML:
		if err := toml.Unmarshal(data, &d); err != nil {
			return nil, errs.Wrap(errs.ErrCodeInvalidDocument, err, "parse toml document")
		}
	case FormatJSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&d); err != nil {
			return nil, errs.Wrap(errs.ErrCodeInvalidDocument, err, "parse json document")
		}
	default:
		return nil, errs.New(errs.ErrCodeInvalidFormat, "unknown document format: %q", format)
	}
	return &d, nil
}

// ReadFile reads a document, choosing the format from the file extension.
func ReadFile(path string) (*Document, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errs.Wrap(errs.ErrCodeFileNotFound, err, "document %s", path)
		}
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return Unmarshal(data, format)
}

// Bounds returns the bounding size, applying defaults for unset dimensions.
func (d *Document) Bounds() grid.Size {
	s := grid.Size{Width: d.Width, Height: d.Height}
	if s.Width == 0 {
		s.Width = DefaultWidth
	}
	if s.Height == 0 {
		s.Height = DefaultHeight
	}
	return s
}

// ItemID returns the identity of the i-th item, defaulting to item-<i>.
func (d *Document) ItemID(i int) grid.ItemID {
	if id := d.Items[i].ID; id != "" {
		return grid.ItemID(id)
	}
	return grid.ItemID(fmt.Sprintf("item-%d", i))
}

// Label returns the display label of the i-th item.
func (d *Document) Label(i int) string {
	if l := d.Items[i].Label; l != "" {
		return l
	}
	return string(d.ItemID(i))
}

// Input converts the document into an engine input. Item natural sizes
// become the measure function; items without one report an unknown size.
func (d *Document) Input() (grid.Input, error) {
	flow, err := grid.ParseFlow(d.Flow)
	if err != nil {
		return grid.Input{}, err
	}
	packing, err := grid.ParsePacking(d.Packing)
	if err != nil {
		return grid.Input{}, err
	}
	mode, err := grid.ParseContentMode(d.ContentMode)
	if err != nil {
		return grid.Input{}, err
	}
	tracks, err := grid.ParseTracks(d.Tracks)
	if err != nil {
		return grid.Input{}, fmt.Errorf("tracks: %w", err)
	}
	cross, err := grid.ParseTracks(d.CrossTracks)
	if err != nil {
		return grid.Input{}, fmt.Errorf("cross_tracks: %w", err)
	}

	if err := d.checkNumbers(); err != nil {
		return grid.Input{}, err
	}

	items := make([]grid.Item, len(d.Items))
	natural := make(map[grid.ItemID]grid.Size)
	for i, it := range d.Items {
		id := d.ItemID(i)
		if err := errs.ValidateItemID(string(id)); err != nil {
			return grid.Input{}, fmt.Errorf("item %d: %w", i, err)
		}
		items[i] = grid.Item{ID: id, Span: it.Span, Start: it.Start}
		if it.Align != "" {
			a, err := grid.ParseItemAlignment(it.Align)
			if err != nil {
				return grid.Input{}, fmt.Errorf("item %s: %w", id, err)
			}
			items[i].Alignment = &a
		}
		if it.Natural != nil {
			natural[id] = *it.Natural
		}
	}

	return grid.Input{
		Items:       items,
		Tracks:      tracks,
		CrossTracks: cross,
		Flow:        flow,
		Packing:     packing,
		ContentMode: mode,
		Bounds:      d.Bounds(),
		Spacing:     grid.Spacing(d.Spacing),
		Measure: func(id grid.ItemID) (grid.Size, bool) {
			s, ok := natural[id]
			return s, ok
		},
	}, nil
}

// checkNumbers rejects sizes that are negative or not finite. TOML can
// spell nan and inf, and neither has a JSON encoding.
func (d *Document) checkNumbers() error {
	check := func(name string, v float64) error {
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
			return errs.New(errs.ErrCodeInvalidInput, "%s must be finite and >= 0, got %v", name, v)
		}
		return nil
	}
	if err := check("width", d.Width); err != nil {
		return err
	}
	if err := check("height", d.Height); err != nil {
		return err
	}
	if err := check("spacing.horizontal", d.Spacing.Horizontal); err != nil {
		return err
	}
	if err := check("spacing.vertical", d.Spacing.Vertical); err != nil {
		return err
	}
	for i, it := range d.Items {
		if it.Natural == nil {
			continue
		}
		if err := check(fmt.Sprintf("item %s natural width", d.ItemID(i)), it.Natural.Width); err != nil {
			return err
		}
		if err := check(fmt.Sprintf("item %s natural height", d.ItemID(i)), it.Natural.Height); err != nil {
			return err
		}
	}
	return nil
}

// Marshal encodes the document in the given format.
func (d *Document) Marshal(format Format) ([]byte, error) {
	switch format {
	case FormatJSON:
		return json.MarshalIndent(d, "", "  ")
	case FormatTOML:
		var buf bytes.Buffer
		if err := toml.NewEncoder(&buf).Encode(d); err != nil {
			return nil, fmt.Errorf("encode toml: %w", err)
		}
		return buf.Bytes(), nil
	}
	return nil, errs.New(errs.ErrCodeInvalidFormat, "unknown document format: %q", format)
}

// Hash returns a content hash of the document. Documents that decode to the
// same values hash the same regardless of their source format.
func (d *Document) Hash() (string, error) {
	data, err := json.Marshal(d)
	if err != nil {
		return "", errs.Wrap(errs.ErrCodeInvalidInput, err, "hash document")
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

// Clone returns a deep copy of the document.
func (d *Document) Clone() *Document {
	c := *d
	c.Tracks = append([]string(nil), d.Tracks...)
	c.CrossTracks = append([]string(nil), d.CrossTracks...)
	c.Items = make([]ItemDoc, len(d.Items))
	for i, it := range d.Items {
		if it.Start != nil {
			s := *it.Start
			it.Start = &s
		}
		if it.Natural != nil {
			n := *it.Natural
			it.Natural = &n
		}
		c.Items[i] = it
	}
	return &c
}
