// Package cache provides artifact caching for rendered charts.
//
// Rendering the same rows with the same options always produces the same
// bytes, so rendered artifacts are cached under content-derived keys: a
// geometry key hashes the input rows plus the geometry options, and an
// artifact key hashes the geometry plus the output format and canvas
// settings. Backends cover CLI usage (FileCache), server deployments
// (RedisCache), and disabled caching (NullCache).
package cache

import (
	"context"
	"time"
)

// Default TTLs per entry type.
const (
	TTLGeometry = 24 * time.Hour
	TTLArtifact = 7 * 24 * time.Hour
)

// Cache stores rendered artifacts and computed geometry documents.
type Cache interface {
	// Get retrieves a value. The second return reports a hit.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores a value with an optional TTL (0 means no expiry).
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	// Delete removes a value. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	// Close releases backend resources.
	Close() error
}

// GeometryKeyOpts are the option values that change computed geometry.
type GeometryKeyOpts struct {
	Mode        string
	BarWidth    float64
	ClusterGap  float64
	Inset       float64
	WhiskerSize float64
}

// ArtifactKeyOpts are the option values that change a rendered artifact.
type ArtifactKeyOpts struct {
	Format       string
	Width        float64
	Height       float64
	Title        string
	SeriesLabels []string
}

// Keyer builds cache keys. Implementations must be deterministic: the same
// inputs always yield the same key.
type Keyer interface {
	// GeometryKey builds the key for computed geometry from a hash of the
	// input rows and the geometry options.
	GeometryKey(rowsHash string, opts GeometryKeyOpts) string
	// ArtifactKey builds the key for a rendered artifact from a hash of
	// the geometry and the render options.
	ArtifactKey(geometryHash string, opts ArtifactKeyOpts) string
}

// DefaultKeyer builds hash-based keys with type prefixes.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the standard keyer.
func NewDefaultKeyer() Keyer {
	return &DefaultKeyer{}
}

// GeometryKey generates a key for computed geometry.
func (k *DefaultKeyer) GeometryKey(rowsHash string, opts GeometryKeyOpts) string {
	return hashKey("geometry", rowsHash, opts)
}

// ArtifactKey generates a key for a rendered artifact.
func (k *DefaultKeyer) ArtifactKey(geometryHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", geometryHash, opts)
}
