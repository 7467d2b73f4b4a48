// Package cache provides pluggable result caching for the puzzle pipeline.
//
// Every pipeline stage is a pure function of its input hash and options, so
// results are content-addressed: extraction keys on the screenshot bytes,
// solving keys on the region graph signature, rendering keys on the graph
// being drawn. The same key always maps to the same value, which keeps
// invalidation trivial (entries only expire, they never go stale).
//
// Four backends are provided: [FileCache] for CLI usage, [RedisCache] and
// [MongoCache] for the HTTP service, and [NullCache] to disable caching.
package cache

import (
	"context"
	"time"
)

// Cache TTLs per pipeline stage. Inputs are immutable, so expiry exists to
// bound storage, not to refresh stale data.
const (
	// TTLExtract is how long extracted region graphs are kept.
	TTLExtract = 30 * 24 * time.Hour

	// TTLSolve is how long solver results are kept.
	TTLSolve = 30 * 24 * time.Hour

	// TTLRender is how long rendered artifacts are kept. Artifacts are
	// cheap to regenerate and large, so they expire sooner.
	TTLRender = 7 * 24 * time.Hour
)

// Cache is the storage interface shared by all backends.
//
// Implementations must be safe for concurrent use. Get reports a miss as
// (nil, false, nil) so callers can tell absent entries from backend
// failures.
type Cache interface {
	// Get retrieves a value. The second return reports whether the key
	// was found.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value with a TTL. A zero TTL means no expiration.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a value. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases resources held by the backend.
	Close() error
}

// Keyer generates cache keys for pipeline stages.
//
// Each method hashes the stage's input hash together with the options that
// change the stage's output, so any change to either yields a new key.
type Keyer interface {
	// ExtractKey generates a key for extraction results.
	// imageHash is the hash of the raw screenshot bytes.
	ExtractKey(imageHash string, opts ExtractKeyOpts) string

	// SolveKey generates a key for solver results.
	// puzzleHash is the signature of the region graph.
	SolveKey(puzzleHash string, opts SolveKeyOpts) string

	// RenderKey generates a key for rendered artifacts.
	// puzzleHash is the signature of the region graph being drawn.
	RenderKey(puzzleHash string, opts RenderKeyOpts) string
}

// ExtractKeyOpts are the extraction options that affect the resulting graph.
type ExtractKeyOpts struct {
	Columns     int `json:"columns"`
	Rows        int `json:"rows"`
	Tolerance   int `json:"tolerance"`
	TopInset    int `json:"top_inset"`
	BottomInset int `json:"bottom_inset"`
}

// SolveKeyOpts are the solver options that affect the resulting solution.
type SolveKeyOpts struct {
	MaxMoves     int `json:"max_moves"`
	MergeRegions int `json:"merge_regions"`
	MergeCells   int `json:"merge_cells"`
}

// RenderKeyOpts are the render options that affect the output bytes.
type RenderKeyOpts struct {
	Format   string `json:"format"`
	Detailed bool   `json:"detailed"`
}

// DefaultKeyer generates hashed, stage-prefixed cache keys.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the standard keyer.
func NewDefaultKeyer() Keyer {
	return &DefaultKeyer{}
}

// ExtractKey generates a key for extraction results.
func (k *DefaultKeyer) ExtractKey(imageHash string, opts ExtractKeyOpts) string {
	return hashKey("extract", imageHash, opts)
}

// SolveKey generates a key for solver results.
func (k *DefaultKeyer) SolveKey(puzzleHash string, opts SolveKeyOpts) string {
	return hashKey("solve", puzzleHash, opts)
}

// RenderKey generates a key for rendered artifacts.
func (k *DefaultKeyer) RenderKey(puzzleHash string, opts RenderKeyOpts) string {
	return hashKey("render", puzzleHash, opts)
}

// Ensure DefaultKeyer implements Keyer.
var _ Keyer = (*DefaultKeyer)(nil)
