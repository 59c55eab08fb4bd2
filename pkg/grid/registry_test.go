package grid

import (
	"context"
	"fmt"
	"sync"
	"testing"

	errs "github.com/matzehuels/trackgrid/pkg/errors"
)

func TestRegistry(t *testing.T) {
	r := NewRegistry()

	a := r.Get("one")
	if a.ID() != "one" {
		t.Errorf("ID() = %q, want one", a.ID())
	}
	if r.Get("one") != a {
		t.Error("Get() should return the same arranger for the same id")
	}
	if _, ok := r.Lookup("two"); ok {
		t.Error("Lookup() should not create grids")
	}

	created := r.Create()
	if err := errs.ValidateGridID(string(created.ID())); err != nil {
		t.Errorf("Create() id %q is not a valid grid id: %v", created.ID(), err)
	}
	if r.Len() != 2 {
		t.Errorf("Len() = %d, want 2", r.Len())
	}

	if !r.Remove("one") {
		t.Error("Remove(one) = false, want true")
	}
	if r.Remove("one") {
		t.Error("second Remove(one) = true, want false")
	}
	if ids := r.IDs(); len(ids) != 1 || ids[0] != created.ID() {
		t.Errorf("IDs() = %v, want [%s]", ids, created.ID())
	}
}

func TestRegistryIDsSorted(t *testing.T) {
	r := NewRegistry()
	for _, id := range []GridID{"c", "a", "b"} {
		r.Get(id)
	}
	if got := fmt.Sprint(r.IDs()); got != "[a b c]" {
		t.Errorf("IDs() = %s, want [a b c]", got)
	}
}

func TestRegistryIndependentGrids(t *testing.T) {
	r := NewRegistry()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := GridID(fmt.Sprintf("grid-%d", i%4))
			in := simpleInput(float64(100 + i))
			if _, err := r.Get(id).Arrange(ctx, in); err != nil {
				t.Errorf("Arrange(%s) error = %v", id, err)
			}
		}(i)
	}
	wg.Wait()

	if r.Len() != 4 {
		t.Errorf("Len() = %d, want 4", r.Len())
	}
	for _, id := range r.IDs() {
		a, _ := r.Lookup(id)
		if a.State() != StateReady {
			t.Errorf("%s State() = %v, want ready", id, a.State())
		}
	}
}

func TestNewGridIDUnique(t *testing.T) {
	seen := make(map[GridID]bool)
	for i := 0; i < 100; i++ {
		id := NewGridID()
		if seen[id] {
			t.Fatalf("NewGridID() returned duplicate %s", id)
		}
		seen[id] = true
	}
}
