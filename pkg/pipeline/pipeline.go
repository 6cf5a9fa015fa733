// Package pipeline provides the core visualization pipeline for utxoscope.
//
// This package implements the complete fetch → aggregate → layout → render
// pipeline that can be used by CLI and API components. By centralizing this
// logic, we ensure consistent behavior across all entry points and avoid
// code duplication.
//
// # Architecture
//
// The pipeline consists of four stages:
//
//  1. Fetch: Load UTXO records from a block explorer or a local file
//  2. Aggregate: Group records into the transaction/address entity graph
//  3. Layout: Compute visual positions with one of the four engines
//  4. Render: Generate output in various formats (SVG, PNG, PDF, DOT, JSON)
//
// Each stage can be run independently or as part of the complete pipeline.
//
// # Usage
//
// Create a Runner and execute the pipeline:
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	opts := pipeline.Options{
//	    Address: "bc1q...",
//	    VizType: "treemap",
//	    Formats: []string{"svg"},
//	}
//	result, err := runner.Execute(ctx, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svg := result.Artifacts["svg"]
//
// Run individual stages:
//
//	// Fetch only
//	records, err := runner.Fetch(ctx, opts)
//
//	// Layout with an existing graph
//	l, err := runner.GenerateLayout(ctx, g, records, opts)
//
//	// Render with an existing layout
//	artifacts, err := runner.Render(ctx, l, opts)
package pipeline

import (
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/utxoscope/pkg/cache"
	"github.com/matzehuels/utxoscope/pkg/entity"
	"github.com/matzehuels/utxoscope/pkg/errors"
	"github.com/matzehuels/utxoscope/pkg/layout"
	"github.com/matzehuels/utxoscope/pkg/layout/timeline"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and API
// =============================================================================

const (
	// DefaultMaxNodes is the maximum number of graph entities after
	// aggregation. Matches entity.DefaultMaxNodes.
	DefaultMaxNodes = entity.DefaultMaxNodes

	// DefaultWidth is the default frame width in pixels.
	DefaultWidth = 800.0

	// DefaultHeight is the default frame height in pixels.
	DefaultHeight = 600.0

	// DefaultSeed is the default random seed for reproducibility.
	DefaultSeed = uint64(42)

	// DefaultVizType is the default visualization type.
	DefaultVizType = layout.VizTypeTreemap

	// DefaultUnit is the default timeline bucket granularity.
	DefaultUnit = string(timeline.UnitMonth)
)

// Format constants for output formats.
const (
	FormatSVG  = "svg"
	FormatPNG  = "png"
	FormatPDF  = "pdf"
	FormatDOT  = "dot"
	FormatJSON = "json"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatSVG:  true,
	FormatPNG:  true,
	FormatPDF:  true,
	FormatDOT:  true,
	FormatJSON: true,
}

// Engine constants for raster/vector back ends.
const (
	// EngineNative renders SVG directly and rasterizes via librsvg.
	EngineNative = "native"

	// EngineGraphviz routes node layouts through Graphviz with pinned
	// positions. Treemaps always use the native engine.
	EngineGraphviz = "graphviz"
)

// ValidEngines is the set of supported render engines.
var ValidEngines = map[string]bool{
	EngineNative:   true,
	EngineGraphviz: true,
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for the visualization pipeline.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Fetch options
	Address     string `json:"address,omitempty"`
	RecordsPath string `json:"records_path,omitempty"` // local record file instead of network
	Endpoint    string `json:"endpoint,omitempty"`     // Esplora API base URL override
	Refresh     bool   `json:"refresh,omitempty"`

	// Aggregate options
	MaxNodes     int  `json:"max_nodes,omitempty"`
	IncludeUTXOs bool `json:"include_utxos,omitempty"`
	SkipClassify bool `json:"skip_classify,omitempty"` // skip risk heuristics (default: classify)

	// Layout options
	VizType     string  `json:"viz_type,omitempty"`
	Width       float64 `json:"width,omitempty"`
	Height      float64 `json:"height,omitempty"`
	Unit        string  `json:"unit,omitempty"` // timeline bucket unit: day|month
	Iterations  int     `json:"iterations,omitempty"`
	Seed        uint64  `json:"seed,omitempty"`
	GroupByRisk bool    `json:"group_by_risk,omitempty"` // grouped treemap with risk-tier bands

	// Render options
	Formats []string `json:"formats,omitempty"`
	Engine  string   `json:"engine,omitempty"`
	Title   string   `json:"title,omitempty"`
	Labels  bool     `json:"labels,omitempty"`
	Legend  bool     `json:"legend,omitempty"`

	// Runtime options (not serialized)
	Logger  *log.Logger     `json:"-"`
	Records []entity.Record `json:"-"` // pre-supplied records skip the fetch stage

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool `json:"-"`
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Records are the fetched (and classified) UTXO records.
	Records []entity.Record

	// Graph is the aggregated entity graph.
	Graph entity.Graph

	// GraphHash is the content hash of the graph.
	GraphHash string

	// Layout contains the positioned layout data.
	Layout layout.Layout

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	RecordCount int
	NodeCount   int
	LinkCount   int
	FetchTime   time.Duration
	LayoutTime  time.Duration
	RenderTime  time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	GraphHit  bool // Whether the aggregated graph came from cache
	LayoutHit bool // Whether the layout came from cache
	RenderHit bool // Whether all artifacts came from cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidFormat,
			"invalid format: %q (must be one of: svg, png, pdf, dot, json)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ValidateEngine checks that a render engine is valid.
func ValidateEngine(engine string) error {
	if !ValidEngines[engine] {
		return errors.New(errors.ErrCodeInvalidInput,
			"invalid engine: %q (must be one of: native, graphviz)", engine)
	}
	return nil
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks required fields and applies defaults for the full pipeline.
// This method is idempotent - calling it multiple times has the same effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForFetch(); err != nil {
		return err
	}
	o.SetLayoutDefaults()
	o.SetRenderDefaults()
	if err := layout.ValidateVizType(o.VizType); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidVizType, err, "viz type")
	}
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	if err := ValidateEngine(o.Engine); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// ValidateForFetch checks required fields for the fetch stage.
func (o *Options) ValidateForFetch() error {
	if o.Address == "" && o.RecordsPath == "" && o.Records == nil {
		return errors.New(errors.ErrCodeInvalidInput, "address or records file is required")
	}
	if o.Address != "" {
		if err := errors.ValidateAddress(o.Address); err != nil {
			return err
		}
	}
	if o.RecordsPath != "" {
		if err := errors.ValidatePath(o.RecordsPath); err != nil {
			return err
		}
	}

	// Aggregate defaults
	if o.MaxNodes == 0 {
		o.MaxNodes = DefaultMaxNodes
	}

	// Logger default
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}

	return nil
}

// SetLayoutDefaults sets default values for layout computation.
func (o *Options) SetLayoutDefaults() {
	if o.VizType == "" {
		o.VizType = DefaultVizType
	}
	if o.Width == 0 {
		o.Width = DefaultWidth
	}
	if o.Height == 0 {
		o.Height = DefaultHeight
	}
	if o.Unit == "" {
		o.Unit = DefaultUnit
	}
	if o.Seed == 0 {
		o.Seed = DefaultSeed
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForLayout validates and sets defaults for layout computation.
func (o *Options) ValidateForLayout() error {
	o.SetLayoutDefaults()
	if err := layout.ValidateVizType(o.VizType); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidVizType, err, "viz type")
	}
	if o.VizType == layout.VizTypeTimeline {
		if err := timeline.ValidateUnit(timeline.BucketUnit(o.Unit)); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidInput, err, "bucket unit")
		}
	}
	return nil
}

// SetRenderDefaults sets default values for rendering.
func (o *Options) SetRenderDefaults() {
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatSVG}
	}
	if o.Engine == "" {
		o.Engine = EngineNative
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForRender validates and sets defaults for rendering.
func (o *Options) ValidateForRender() error {
	o.SetLayoutDefaults()
	o.SetRenderDefaults()
	if err := layout.ValidateVizType(o.VizType); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidVizType, err, "viz type")
	}
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	return ValidateEngine(o.Engine)
}

// ShouldClassify returns whether risk heuristics should run on fetched records.
func (o *Options) ShouldClassify() bool {
	return !o.SkipClassify
}

// SourceID identifies the record source for graph cache keys: the address
// for network fetches, a content marker for local files.
func (o *Options) SourceID() string {
	if o.Address != "" {
		return o.Address
	}
	return "file:" + o.RecordsPath
}

// GraphKeyOpts returns cache key options for graph aggregation.
func (o *Options) GraphKeyOpts() cache.GraphKeyOpts {
	return cache.GraphKeyOpts{
		MaxNodes:     o.MaxNodes,
		IncludeUTXOs: o.IncludeUTXOs,
		Classified:   o.ShouldClassify(),
	}
}

// LayoutKeyOpts returns cache key options for layout computation.
func (o *Options) LayoutKeyOpts() cache.LayoutKeyOpts {
	return cache.LayoutKeyOpts{
		VizType:    o.VizType,
		Width:      o.Width,
		Height:     o.Height,
		BucketUnit: o.Unit,
		Iterations: o.Iterations,
		Seed:       o.Seed,
	}
}

// ArtifactKeyOpts returns cache key options for artifact rendering.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	return cache.ArtifactKeyOpts{
		Format: format,
	}
}
