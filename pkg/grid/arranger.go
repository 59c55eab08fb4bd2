package grid

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/matzehuels/trackgrid/pkg/observability"
)

// State is the phase an Arranger is in.
type State int

const (
	StateIdle State = iota
	StatePlacing
	StateSizing
	StatePositioning
	StateReady
)

var stateNames = [...]string{"idle", "placing", "sizing", "positioning", "ready"}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return fmt.Sprintf("State(%d)", int(s))
	}
	return stateNames[s]
}

// Arranger is the stateful facade around Arrange for one grid.
//
// Every call runs a fresh pass through Placing, Sizing and Positioning. A
// failing pass drops back to Idle and leaves the previous Ready result in
// place, so callers never observe a half-computed arrangement. The placement
// of the last pass is reused whenever items, spans, starts, track count, flow
// and packing are unchanged, which makes resize-only passes skip placement.
//
// An Arranger serializes its passes and is safe for concurrent use.
type Arranger struct {
	id GridID

	mu           sync.Mutex
	state        State
	last         *Result
	lastErr      error
	placementKey string
	placement    *Placement
}

// NewArranger creates an idle arranger for the grid id.
func NewArranger(id GridID) *Arranger {
	return &Arranger{id: id}
}

// ID returns the grid identity.
func (a *Arranger) ID() GridID { return a.id }

// State returns the current phase. Outside a pass it is Idle or Ready.
func (a *Arranger) State() State {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}

// Last returns the most recent successful result, or nil.
func (a *Arranger) Last() *Result {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.last
}

// Err returns the error of the most recent pass, or nil if it succeeded.
func (a *Arranger) Err() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.lastErr
}

// Arrange runs a pass over in and publishes the result on success.
// ctx only carries observability metadata; passes are not cancellable.
func (a *Arranger) Arrange(ctx context.Context, in Input) (*Result, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	hooks := observability.Arrange()
	gridID := string(a.id)
	start := time.Now()
	hooks.OnArrangeStart(ctx, gridID, len(in.Items))

	res, err := a.run(ctx, in, hooks)
	a.lastErr = err
	if err != nil {
		a.state = StateIdle
	} else {
		a.state = StateReady
		a.last = res
	}

	hooks.OnArrangeComplete(ctx, gridID, time.Since(start), err)
	return res, err
}

func (a *Arranger) run(ctx context.Context, in Input, hooks observability.ArrangeHooks) (*Result, error) {
	gridID := string(a.id)
	p := newPass(in)

	a.state = StatePlacing
	t := time.Now()
	key := placementKey(in)
	cached := a.placement != nil && key == a.placementKey
	err := p.validate()
	if err == nil {
		if cached {
			p.placement = *a.placement
		} else {
			err = p.place()
		}
	}
	hooks.OnPhase(ctx, gridID, StatePlacing.String(), time.Since(t), cached, err)
	if err != nil {
		return nil, err
	}
	if !cached {
		pl := p.placement
		a.placement, a.placementKey = &pl, key
	}

	a.state = StateSizing
	t = time.Now()
	err = p.size()
	hooks.OnPhase(ctx, gridID, StateSizing.String(), time.Since(t), false, err)
	if err != nil {
		return nil, err
	}

	a.state = StatePositioning
	t = time.Now()
	p.position()
	hooks.OnPhase(ctx, gridID, StatePositioning.String(), time.Since(t), false, p.err)
	if p.err != nil {
		return nil, p.err
	}

	return p.result(), nil
}

// placementKey fingerprints the inputs placement depends on.
func placementKey(in Input) string {
	var b strings.Builder
	b.WriteString(strconv.Itoa(len(in.Tracks)))
	b.WriteByte('|')
	b.WriteString(in.Flow.String())
	b.WriteByte('|')
	b.WriteString(in.Packing.String())
	for _, it := range in.Items {
		span := it.Span
		b.WriteByte('|')
		b.WriteString(strconv.Quote(string(it.ID)))
		b.WriteByte(':')
		b.WriteString(strconv.Itoa(span.Columns))
		b.WriteByte('x')
		b.WriteString(strconv.Itoa(span.Rows))
		if it.Start != nil {
			b.WriteByte('@')
			b.WriteString(strconv.Itoa(it.Start.Column))
			b.WriteByte(',')
			b.WriteString(strconv.Itoa(it.Start.Row))
		}
	}
	return b.String()
}
