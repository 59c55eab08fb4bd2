package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/trackgrid/pkg/cache"
	"github.com/matzehuels/trackgrid/pkg/document"
	"github.com/matzehuels/trackgrid/pkg/grid"
	"github.com/matzehuels/trackgrid/pkg/observability"
)

// Runner executes the pipeline with caching.
//
// The Runner holds no per-run state; one Runner can serve concurrent calls
// with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner. A nil keyer selects the DefaultKeyer, a nil
// cache disables caching and a nil logger selects log.Default().
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute arranges doc and renders the requested formats.
func (r *Runner) Execute(ctx context.Context, doc *document.Document, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	arrangeStart := time.Now()
	l, hit, err := r.ArrangeWithCacheInfo(ctx, doc, opts)
	if err != nil {
		return nil, fmt.Errorf("arrange: %w", err)
	}
	docHash, err := doc.Hash()
	if err != nil {
		return nil, err
	}
	result := &Result{DocHash: docHash, Layout: l}
	result.Stats.ArrangeTime = time.Since(arrangeStart)
	result.Stats.Items = len(l.Items)
	result.Stats.Columns = len(l.Columns)
	result.Stats.Rows = len(l.Rows)
	result.CacheInfo.LayoutHit = hit
	if data, err := document.MarshalLayout(l); err == nil {
		result.LayoutHash = cache.Hash(data)
	}

	r.Logger.Info("arranged grid",
		"items", len(l.Items),
		"columns", len(l.Columns),
		"rows", len(l.Rows),
		"cached", hit,
		"duration", result.Stats.ArrangeTime)

	renderStart := time.Now()
	artifacts, renderHit, err := r.RenderWithCacheInfo(ctx, l, opts)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = renderHit

	r.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"cached", renderHit,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// ArrangeWithCacheInfo arranges doc, using the cache unless opts.Refresh is
// set, and reports whether the layout came from the cache. Failed passes are
// never cached.
func (r *Runner) ArrangeWithCacheInfo(ctx context.Context, doc *document.Document, opts Options) (document.Layout, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return document.Layout{}, false, err
	}

	in, err := doc.Input()
	if err != nil {
		return document.Layout{}, false, err
	}
	docHash, err := doc.Hash()
	if err != nil {
		return document.Layout{}, false, err
	}
	key := r.keyer(doc.ID).LayoutKey(docHash, opts.LayoutKeyOpts())

	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
			if l, err := document.UnmarshalLayout(data); err == nil {
				return l, true, nil
			}
			opts.Logger.Debug("discarding unreadable cached layout", "key", key)
		} else if err != nil {
			opts.Logger.Warn("cache read failed", "key", key, "error", err)
		}
	}

	l, err := r.arrange(ctx, doc, in, func() (*grid.Result, error) { return grid.Arrange(in) })
	if err != nil {
		return document.Layout{}, false, err
	}

	if data, err := document.MarshalLayout(l); err == nil {
		if err := r.Cache.Set(ctx, key, data, cache.TTLLayout); err != nil {
			opts.Logger.Warn("cache write failed", "key", key, "error", err)
		}
	}
	return l, false, nil
}

// Arrange is ArrangeWithCacheInfo without the cache hit info.
func (r *Runner) Arrange(ctx context.Context, doc *document.Document, opts Options) (document.Layout, error) {
	l, _, err := r.ArrangeWithCacheInfo(ctx, doc, opts)
	return l, err
}

// ArrangeGrid arranges doc through a stateful arranger. The layout cache is
// bypassed so the arranger always observes the pass; on failure the
// arranger keeps its previous result.
func (r *Runner) ArrangeGrid(ctx context.Context, a *grid.Arranger, doc *document.Document) (document.Layout, error) {
	in, err := doc.Input()
	if err != nil {
		return document.Layout{}, err
	}
	if doc.ID == "" {
		doc = doc.Clone()
		doc.ID = string(a.ID())
	}
	return r.arrange(ctx, doc, in, func() (*grid.Result, error) { return a.Arrange(ctx, in) })
}

func (r *Runner) arrange(ctx context.Context, doc *document.Document, in grid.Input, run func() (*grid.Result, error)) (document.Layout, error) {
	hooks := observability.Pipeline()
	start := time.Now()
	hooks.OnArrangeStart(ctx, doc.ID, len(in.Items))
	res, err := run()
	hooks.OnArrangeComplete(ctx, doc.ID, time.Since(start), err)
	if err != nil {
		return document.Layout{}, err
	}
	return document.NewLayout(doc, res)
}

// RenderWithCacheInfo renders l and reports whether every artifact came
// from the cache. Formats are cached individually, so a partial hit only
// renders the missing formats.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, l document.Layout, opts Options) (map[string][]byte, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, false, err
	}

	data, err := document.MarshalLayout(l)
	if err != nil {
		return nil, false, fmt.Errorf("serialize layout for cache key: %w", err)
	}
	layoutHash := cache.Hash(data)
	keyer := r.keyer(l.GridID)

	artifacts := make(map[string][]byte, len(opts.Formats))
	var missing []string
	for _, format := range opts.Formats {
		if !opts.Refresh {
			key := keyer.ArtifactKey(layoutHash, opts.ArtifactKeyOpts(format))
			if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
				artifacts[format] = data
				continue
			}
		}
		missing = append(missing, format)
	}
	if len(missing) == 0 {
		return artifacts, true, nil
	}

	hooks := observability.Pipeline()
	start := time.Now()
	hooks.OnRenderStart(ctx, missing)
	renderOpts := opts
	renderOpts.Formats = missing
	rendered, err := Render(ctx, l, renderOpts)
	hooks.OnRenderComplete(ctx, missing, time.Since(start), err)
	if err != nil {
		return nil, false, err
	}

	for format, data := range rendered {
		key := keyer.ArtifactKey(layoutHash, opts.ArtifactKeyOpts(format))
		if err := r.Cache.Set(ctx, key, data, cache.TTLArtifact); err != nil {
			opts.Logger.Warn("cache write failed", "key", key, "error", err)
		}
		artifacts[format] = data
	}
	return artifacts, false, nil
}

// RenderLayout is RenderWithCacheInfo without the cache hit info.
func (r *Runner) RenderLayout(ctx context.Context, l document.Layout, opts Options) (map[string][]byte, error) {
	artifacts, _, err := r.RenderWithCacheInfo(ctx, l, opts)
	return artifacts, err
}

// Close releases the cache.
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// keyer scopes keys to the grid when the document names one.
func (r *Runner) keyer(gridID string) cache.Keyer {
	if gridID == "" {
		return r.Keyer
	}
	return cache.GridKeyer(r.Keyer, gridID)
}

func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
