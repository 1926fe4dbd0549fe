package logic

import (
	"math/bits"
	"strconv"
)

// Resolver maps an observation to the wallpaper it should show.
// It is immutable after construction.
type Resolver struct {
	tags     map[string]string
	fallback string
}

// NewResolver builds a resolver from a tag -> path mapping and a default path.
// The mapping is copied.
func NewResolver(tags map[string]string, fallback string) *Resolver {
	m := make(map[string]string, len(tags))
	for k, v := range tags {
		m[k] = v
	}
	return &Resolver{tags: m, fallback: fallback}
}

// Tag derives the 1-based tag index from a focused-tags bitmask,
// i.e. floor(log2(mask)) + 1. When several bits are set the highest wins.
// An empty mask counts as tag 1.
func Tag(mask uint64) uint {
	if mask == 0 {
		return 1
	}
	return uint(bits.Len64(mask))
}

// Resolve returns the wallpaper path for obs. It never fails: an unmapped
// tag resolves to the default path.
func (r *Resolver) Resolve(obs Observation) string {
	_, path, _ := r.ResolveTag(obs.FocusedTags)
	return path
}

// ResolveTag is Resolve with the derived tag and whether the tag had its
// own mapping.
func (r *Resolver) ResolveTag(mask uint64) (tag uint, path string, mapped bool) {
	tag = Tag(mask)
	if p, ok := r.tags[strconv.FormatUint(uint64(tag), 10)]; ok {
		return tag, p, true
	}
	return tag, r.fallback, false
}

// Default returns the fallback path.
func (r *Resolver) Default() string {
	return r.fallback
}
