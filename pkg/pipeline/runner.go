package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/utxoscope/pkg/cache"
	"github.com/matzehuels/utxoscope/pkg/entity"
	"github.com/matzehuels/utxoscope/pkg/layout"
	"github.com/matzehuels/utxoscope/pkg/observability"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and API can use this to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
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

// Execute runs the complete fetch → aggregate → layout → render pipeline
// with caching.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	r.applyLogger(&opts)

	result := &Result{
		Artifacts: make(map[string][]byte),
	}

	// Stage 1: Fetch
	fetchStart := time.Now()
	records, err := r.Fetch(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}
	result.Records = records
	result.Stats.FetchTime = time.Since(fetchStart)
	result.Stats.RecordCount = len(records)

	r.Logger.Info("fetched records",
		"count", len(records),
		"duration", result.Stats.FetchTime)

	// Stage 2: Aggregate
	g, graphHit, err := r.AggregateWithCacheInfo(ctx, records, opts)
	if err != nil {
		return nil, fmt.Errorf("aggregate: %w", err)
	}
	result.Graph = g
	result.Stats.NodeCount = len(g.Nodes)
	result.Stats.LinkCount = len(g.Links)
	result.CacheInfo.GraphHit = graphHit

	// Compute graph hash for cache keys and API responses
	if graphData, err := entity.MarshalGraph(g); err == nil {
		result.GraphHash = cache.Hash(graphData)
	}

	r.Logger.Info("aggregated entities",
		"nodes", len(g.Nodes),
		"links", len(g.Links))

	// Stage 3: Layout
	layoutStart := time.Now()
	l, layoutHit, err := r.GenerateLayoutWithCacheInfo(ctx, g, records, opts)
	if err != nil {
		return nil, fmt.Errorf("layout: %w", err)
	}
	result.Layout = l
	result.Stats.LayoutTime = time.Since(layoutStart)
	result.CacheInfo.LayoutHit = layoutHit

	r.Logger.Info("computed layout",
		"viz", opts.VizType,
		"duration", result.Stats.LayoutTime)

	// Stage 4: Render
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
		"duration", result.Stats.RenderTime)

	return result, nil
}

// Fetch loads records through the runner's cache backend.
func (r *Runner) Fetch(ctx context.Context, opts Options) ([]entity.Record, error) {
	r.applyLogger(&opts)
	return Fetch(ctx, r.Cache, opts)
}

// AggregateWithCacheInfo aggregates records into an entity graph with
// caching and returns cache hit info. The cache key covers the record
// content, so re-fetched identical records reuse the cached graph.
func (r *Runner) AggregateWithCacheInfo(ctx context.Context, records []entity.Record, opts Options) (entity.Graph, bool, error) {
	if err := opts.ValidateForFetch(); err != nil {
		return entity.Graph{}, false, err
	}
	r.applyLogger(&opts)

	cacheKey, keyed := r.graphKey(records, opts)

	// Try cache first (unless refresh requested)
	if keyed && !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			if g, err := entity.UnmarshalGraph(data); err == nil {
				observability.Cache().OnCacheHit(ctx, "graph")
				return g, true, nil
			}
		}
		observability.Cache().OnCacheMiss(ctx, "graph")
	}

	g, err := entity.Aggregate(records, entity.AggregateOptions{
		MaxNodes:     opts.MaxNodes,
		IncludeUTXOs: opts.IncludeUTXOs,
	})
	if err != nil {
		return entity.Graph{}, false, err
	}

	if keyed {
		if data, err := entity.MarshalGraph(g); err == nil {
			_ = r.Cache.Set(ctx, cacheKey, data, cache.TTLGraph)
			observability.Cache().OnCacheSet(ctx, "graph", len(data))
		}
	}

	return g, false, nil
}

// Aggregate is a convenience wrapper that discards the cache hit info.
func (r *Runner) Aggregate(ctx context.Context, records []entity.Record, opts Options) (entity.Graph, error) {
	g, _, err := r.AggregateWithCacheInfo(ctx, records, opts)
	return g, err
}

// GenerateLayoutWithCacheInfo generates a layout with caching and returns
// cache hit info. Records are only consulted by the flow layout; the other
// engines work from the graph alone.
func (r *Runner) GenerateLayoutWithCacheInfo(ctx context.Context, g entity.Graph, records []entity.Record, opts Options) (layout.Layout, bool, error) {
	if err := opts.ValidateForLayout(); err != nil {
		return layout.Layout{}, false, err
	}
	r.applyLogger(&opts)

	// The flow layout derives from the records, not the graph, so its cache
	// key must hash the record content instead.
	var inputHash string
	if opts.VizType == layout.VizTypeFlow {
		if data, err := json.Marshal(records); err == nil {
			inputHash = cache.Hash(data)
		}
	} else {
		if data, err := entity.MarshalGraph(g); err == nil {
			inputHash = cache.Hash(data)
		}
	}
	cacheKey := r.Keyer.LayoutKey(inputHash, opts.LayoutKeyOpts())

	observability.Pipeline().OnLayoutStart(ctx, opts.VizType, len(g.Nodes))

	// Try cache first
	if inputHash != "" {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			if cached, err := layout.UnmarshalLayout(data); err == nil {
				observability.Cache().OnCacheHit(ctx, "layout")
				observability.Pipeline().OnLayoutComplete(ctx, opts.VizType, 0, nil)
				return cached, true, nil
			}
			// If deserialization fails, fall through to recompute
		}
		observability.Cache().OnCacheMiss(ctx, "layout")
	}

	start := time.Now()
	l, err := GenerateLayout(g, records, opts)
	observability.Pipeline().OnLayoutComplete(ctx, opts.VizType, time.Since(start), err)
	if err != nil {
		return layout.Layout{}, false, err
	}

	if inputHash != "" {
		if data, err := layout.MarshalLayout(l); err == nil {
			_ = r.Cache.Set(ctx, cacheKey, data, cache.TTLLayout)
			observability.Cache().OnCacheSet(ctx, "layout", len(data))
		}
	}

	return l, false, nil
}

// GenerateLayout is a convenience wrapper that discards the cache hit info.
func (r *Runner) GenerateLayout(ctx context.Context, g entity.Graph, records []entity.Record, opts Options) (layout.Layout, error) {
	l, _, err := r.GenerateLayoutWithCacheInfo(ctx, g, records, opts)
	return l, err
}

// RenderWithCacheInfo generates artifacts with caching and returns cache hit info.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, l layout.Layout, opts Options) (map[string][]byte, bool, error) {
	if err := opts.ValidateForRender(); err != nil {
		return nil, false, err
	}
	r.applyLogger(&opts)

	// Compute cache key from layout data
	layoutData, err := layout.MarshalLayout(l)
	if err != nil {
		return nil, false, fmt.Errorf("serialize layout for cache key: %w", err)
	}
	layoutHash := cache.Hash(layoutData)

	observability.Pipeline().OnRenderStart(ctx, opts.Formats)

	// Try to get all formats from cache
	allCached := true
	artifacts := make(map[string][]byte)

	for _, format := range opts.Formats {
		cacheKey := r.Keyer.ArtifactKey(layoutHash, opts.ArtifactKeyOpts(format))
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			artifacts[format] = data
		} else {
			allCached = false
			break
		}
	}

	if allCached && len(artifacts) == len(opts.Formats) {
		observability.Cache().OnCacheHit(ctx, "artifact")
		observability.Pipeline().OnRenderComplete(ctx, opts.Formats, 0, nil)
		return artifacts, true, nil
	}
	observability.Cache().OnCacheMiss(ctx, "artifact")

	start := time.Now()
	rendered, err := RenderFromLayout(ctx, l, opts)
	observability.Pipeline().OnRenderComplete(ctx, opts.Formats, time.Since(start), err)
	if err != nil {
		return nil, false, err
	}

	// Cache each format
	for format, data := range rendered {
		cacheKey := r.Keyer.ArtifactKey(layoutHash, opts.ArtifactKeyOpts(format))
		_ = r.Cache.Set(ctx, cacheKey, data, cache.TTLArtifact)
		observability.Cache().OnCacheSet(ctx, "artifact", len(data))
	}

	return rendered, false, nil
}

// Render is a convenience wrapper that discards the cache hit info.
func (r *Runner) Render(ctx context.Context, l layout.Layout, opts Options) (map[string][]byte, error) {
	artifacts, _, err := r.RenderWithCacheInfo(ctx, l, opts)
	return artifacts, err
}

// graphKey returns the aggregation cache key. The key hashes the record
// content plus the aggregation options; keyed is false when the records
// can't be serialized (the stage then runs uncached).
func (r *Runner) graphKey(records []entity.Record, opts Options) (key string, keyed bool) {
	data, err := json.Marshal(records)
	if err != nil {
		return "", false
	}
	return r.Keyer.GraphKey(cache.Hash(data), opts.GraphKeyOpts()), true
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
