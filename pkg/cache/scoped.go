package cache

// ScopedKeyer wraps a Keyer with a prefix so entries of different grids live
// in separate namespaces.
//
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "grid:"+string(id)+":")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer that prepends prefix to every key.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// GridKeyer scopes keys to one grid.
func GridKeyer(inner Keyer, gridID string) Keyer {
	return NewScopedKeyer(inner, "grid:"+gridID+":")
}

// LayoutKey generates a prefixed layout key.
func (k *ScopedKeyer) LayoutKey(docHash string, opts LayoutKeyOpts) string {
	return k.prefix + k.inner.LayoutKey(docHash, opts)
}

// ArtifactKey generates a prefixed artifact key.
func (k *ScopedKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(layoutHash, opts)
}
