package grid

import (
	"slices"
	"sync"

	"github.com/google/uuid"
)

// GridID identifies one grid instance. Items of different grids never mix,
// and any number of grids can be arranged side by side.
type GridID string

// NewGridID returns a fresh random grid identity.
func NewGridID() GridID {
	return GridID(uuid.NewString())
}

// Registry owns the arrangers of independent grids.
// It is safe for concurrent use.
type Registry struct {
	mu    sync.RWMutex
	grids map[GridID]*Arranger
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{grids: make(map[GridID]*Arranger)}
}

// Get returns the arranger for id, creating it on first use.
func (r *Registry) Get(id GridID) *Arranger {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.grids[id]
	if !ok {
		a = NewArranger(id)
		r.grids[id] = a
	}
	return a
}

// Create registers a new grid with a random identity.
func (r *Registry) Create() *Arranger {
	return r.Get(NewGridID())
}

// Lookup returns the arranger for id without creating one.
func (r *Registry) Lookup(id GridID) (*Arranger, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.grids[id]
	return a, ok
}

// Remove forgets the grid and reports whether it existed.
func (r *Registry) Remove(id GridID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.grids[id]
	delete(r.grids, id)
	return ok
}

// IDs returns the registered grid identities in sorted order.
func (r *Registry) IDs() []GridID {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]GridID, 0, len(r.grids))
	for id := range r.grids {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Len returns the number of registered grids.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.grids)
}
