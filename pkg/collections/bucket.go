package collections

import "sort"

// ============================================================================
// GainBucket - ordered priority structure keyed by integer gain
// ============================================================================

// GainBucket maps an integer gain value to the set of cell names currently
// at that gain. It supports O(log B) access to the maximum occupied key
// (B = number of distinct gain values currently in use) and O(1) membership
// removal by name, which is exactly what the FM pass controller's selection
// loop needs.
//
// Internally this is a map[int]map[string]struct{} plus a sorted slice of
// occupied keys; the sorted slice is kept lazily valid (rebuilt only when
// stale) rather than re-sorted on every mutation, since passes perform many
// more inserts/removals than max-key queries relative to bucket width.
type GainBucket struct {
	buckets map[int]map[string]struct{}
	keys    []int // sorted ascending, valid iff dirty == false
	dirty   bool
}

// NewGainBucket creates an empty GainBucket.
func NewGainBucket() *GainBucket {
	return &GainBucket{
		buckets: make(map[int]map[string]struct{}),
	}
}

// Insert adds cellName to bucket[gain]. It is the caller's responsibility
// to ensure cellName is not already present at a different gain (the gain
// engine always removes before reinserting; see RemoveFromGain).
func (b *GainBucket) Insert(gain int, cellName string) {
	set, ok := b.buckets[gain]
	if !ok {
		set = make(map[string]struct{})
		b.buckets[gain] = set
		b.dirty = true
	}
	set[cellName] = struct{}{}
}

// RemoveFromGain removes cellName from bucket[gain], dropping the key
// entirely if its set becomes empty so that MaxKey never reports a gain
// no cell currently has.
func (b *GainBucket) RemoveFromGain(gain int, cellName string) {
	set, ok := b.buckets[gain]
	if !ok {
		return
	}
	delete(set, cellName)
	if len(set) == 0 {
		delete(b.buckets, gain)
		b.dirty = true
	}
}

// Empty reports whether the bucket holds no cells at all.
func (b *GainBucket) Empty() bool {
	return len(b.buckets) == 0
}

// MaxKey returns the highest occupied gain value and true, or (0, false)
// if the bucket is empty.
func (b *GainBucket) MaxKey() (int, bool) {
	b.ensureSorted()
	if len(b.keys) == 0 {
		return 0, false
	}
	return b.keys[len(b.keys)-1], true
}

// PopMax removes and returns one cell name from the highest occupied gain
// bucket, along with the gain value it was removed from. Ties at the same
// gain go to the lexicographically smallest name, so selection order is
// reproducible and never depends on map iteration order.
func (b *GainBucket) PopMax() (cellName string, gain int, ok bool) {
	g, ok := b.MaxKey()
	if !ok {
		return "", 0, false
	}
	set := b.buckets[g]
	name := smallest(set)
	b.RemoveFromGain(g, name)
	return name, g, true
}

// ensureSorted rebuilds the sorted key slice if it is stale.
func (b *GainBucket) ensureSorted() {
	if !b.dirty {
		return
	}
	keys := make([]int, 0, len(b.buckets))
	for k := range b.buckets {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	b.keys = keys
	b.dirty = false
}

// smallest returns the lexicographically smallest key of a string set.
func smallest(set map[string]struct{}) string {
	first := true
	var min string
	for name := range set {
		if first || name < min {
			min = name
			first = false
		}
	}
	return min
}

// Len returns the total number of cells tracked across every gain bucket.
func (b *GainBucket) Len() int {
	n := 0
	for _, set := range b.buckets {
		n += len(set)
	}
	return n
}

// Contains reports whether cellName currently sits in bucket[gain].
func (b *GainBucket) Contains(gain int, cellName string) bool {
	set, ok := b.buckets[gain]
	if !ok {
		return false
	}
	_, ok = set[cellName]
	return ok
}

// Snapshot returns, for every occupied gain, the sorted list of cell names
// currently held there. Intended for tests that check bucket contents
// against a freshly recomputed gain map.
func (b *GainBucket) Snapshot() map[int][]string {
	out := make(map[int][]string, len(b.buckets))
	for gain, set := range b.buckets {
		names := make([]string, 0, len(set))
		for name := range set {
			names = append(names, name)
		}
		sort.Strings(names)
		out[gain] = names
	}
	return out
}
