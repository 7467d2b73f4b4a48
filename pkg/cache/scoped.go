package cache

// ScopedKeyer wraps a Keyer with a prefix so separate deployments can share
// one backend. The HTTP service uses this when several environments point
// at the same Redis or Mongo instance.
//
// Example usage:
//
//	// Staging keys, isolated from production
//	stagingKeyer := NewScopedKeyer(NewDefaultKeyer(), "staging:")
//
//	// Production keys, unprefixed
//	prodKeyer := NewDefaultKeyer()
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

// ExtractKey generates a prefixed key for extraction results.
func (k *ScopedKeyer) ExtractKey(imageHash string, opts ExtractKeyOpts) string {
	return k.prefix + k.inner.ExtractKey(imageHash, opts)
}

// SolveKey generates a prefixed key for solver results.
func (k *ScopedKeyer) SolveKey(puzzleHash string, opts SolveKeyOpts) string {
	return k.prefix + k.inner.SolveKey(puzzleHash, opts)
}

// RenderKey generates a prefixed key for rendered artifacts.
func (k *ScopedKeyer) RenderKey(puzzleHash string, opts RenderKeyOpts) string {
	return k.prefix + k.inner.RenderKey(puzzleHash, opts)
}
