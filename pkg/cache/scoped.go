package cache

// ScopedKeyer wraps a Keyer with a prefix for namespace isolation.
// This is useful when one cache backend serves several deployments or
// users that must not see each other's artifacts.
//
// Example usage:
//
//	// Per-deployment keys
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "prod:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// The prefix is prepended to all generated keys.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// GeometryKey generates a prefixed key for computed geometry.
func (k *ScopedKeyer) GeometryKey(rowsHash string, opts GeometryKeyOpts) string {
	return k.prefix + k.inner.GeometryKey(rowsHash, opts)
}

// ArtifactKey generates a prefixed key for artifact caching.
func (k *ScopedKeyer) ArtifactKey(geometryHash string, opts ArtifactKeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(geometryHash, opts)
}
