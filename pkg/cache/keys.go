package cache

import "strings"

// Key kinds produced by the DefaultKeyer.
const (
	KindLayout   = "layout"
	KindArtifact = "artifact"
)

// Keyer generates cache keys.
type Keyer interface {
	// LayoutKey identifies the layout computed from a document.
	LayoutKey(docHash string, opts LayoutKeyOpts) string

	// ArtifactKey identifies one rendered output of a layout.
	ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string
}

// LayoutKeyOpts are the inputs besides the document that affect a layout.
type LayoutKeyOpts struct {
	// Version is bumped whenever the layout encoding changes.
	Version int `json:"version"`
}

// ArtifactKeyOpts are the render options that affect an artifact.
type ArtifactKeyOpts struct {
	Format string  `json:"format"`
	Scale  float64 `json:"scale,omitempty"`
	Cells  bool    `json:"cells,omitempty"`
	Guides bool    `json:"guides,omitempty"`
}

// DefaultKeyer hashes its inputs into "kind:sha256" keys.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the default keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// LayoutKey implements Keyer.
func (DefaultKeyer) LayoutKey(docHash string, opts LayoutKeyOpts) string {
	return hashKey(KindLayout, docHash, opts)
}

// ArtifactKey implements Keyer.
func (DefaultKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return hashKey(KindArtifact, layoutHash, opts)
}

// KeyKind extracts the kind from a key produced by a Keyer, ignoring any
// scope prefix. Keys of unknown shape report "other".
func KeyKind(key string) string {
	i := strings.LastIndexByte(key, ':')
	if i <= 0 {
		return "other"
	}
	head := key[:i]
	return head[strings.LastIndexByte(head, ':')+1:]
}

var _ Keyer = DefaultKeyer{}
