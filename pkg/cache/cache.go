// Package cache provides the caching layer for the utxoscope pipeline.
//
// Three pieces compose here:
//   - Cache: a byte-oriented key/value store with TTLs. FileCache backs the
//     CLI, RedisCache backs server deployments, NullCache disables caching.
//   - Keyer: deterministic cache-key construction for each pipeline stage
//     (source fetch, aggregated graph, layout, rendered artifact).
//   - Hash: content hashing used both for keys and for API responses.
package cache

import (
	"context"
	"time"
)

// TTL tiers per pipeline stage. UTXO sets change with every block, so the
// source tier is short; layouts and artifacts are pure functions of their
// inputs and can live longer.
const (
	TTLSource   = 10 * time.Minute
	TTLGraph    = 24 * time.Hour
	TTLLayout   = 7 * 24 * time.Hour
	TTLArtifact = 7 * 24 * time.Hour
)

// Cache is the storage interface for all pipeline caching.
// Implementations must be safe for concurrent use.
type Cache interface {
	// Get retrieves a value. The second return value reports whether the
	// key was present and fresh.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value with a time-to-live. A ttl of 0 means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a value. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases any resources held by the cache.
	Close() error
}

// =============================================================================
// Keyer - Cache Key Construction
// =============================================================================

// SourceKeyOpts parameterizes source-fetch cache keys.
type SourceKeyOpts struct {
	Endpoint string `json:"endpoint"`
}

// GraphKeyOpts parameterizes aggregated-graph cache keys.
type GraphKeyOpts struct {
	MaxNodes     int  `json:"max_nodes"`
	IncludeUTXOs bool `json:"include_utxos"`
	Classified   bool `json:"classified"` // risk heuristics applied
}

// LayoutKeyOpts parameterizes layout cache keys.
type LayoutKeyOpts struct {
	VizType    string  `json:"viz_type"`
	Width      float64 `json:"width"`
	Height     float64 `json:"height"`
	BucketUnit string  `json:"bucket_unit,omitempty"`
	Iterations int     `json:"iterations,omitempty"`
	Seed       uint64  `json:"seed,omitempty"`
}

// ArtifactKeyOpts parameterizes rendered-artifact cache keys.
type ArtifactKeyOpts struct {
	Format string `json:"format"`
}

// Keyer generates cache keys for each pipeline stage. Keys embed every
// option that affects the cached value, so differing options never collide.
type Keyer interface {
	SourceKey(address string, opts SourceKeyOpts) string
	GraphKey(source string, opts GraphKeyOpts) string
	LayoutKey(graphHash string, opts LayoutKeyOpts) string
	ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string
}

// DefaultKeyer hashes key components with SHA-256 under a stage prefix.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the standard keyer.
func NewDefaultKeyer() Keyer { return &DefaultKeyer{} }

// SourceKey generates a key for source-fetch response caching.
func (k *DefaultKeyer) SourceKey(address string, opts SourceKeyOpts) string {
	return hashKey("source", address, opts)
}

// GraphKey generates a key for aggregated-graph caching. source is the
// address or the content hash of the imported record file.
func (k *DefaultKeyer) GraphKey(source string, opts GraphKeyOpts) string {
	return hashKey("graph", source, opts)
}

// LayoutKey generates a key for layout caching.
func (k *DefaultKeyer) LayoutKey(graphHash string, opts LayoutKeyOpts) string {
	return hashKey("layout", graphHash, opts)
}

// ArtifactKey generates a key for rendered-artifact caching.
func (k *DefaultKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", layoutHash, opts)
}

// Ensure DefaultKeyer implements Keyer.
var _ Keyer = (*DefaultKeyer)(nil)
