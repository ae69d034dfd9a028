// Package meta defines the attribute data model shared by the backend,
// the sidecar store and the reconciler.
package meta

import (
	"maps"
	"sort"
)

// AttributeSet maps attribute keys to values for one filesystem entry.
type AttributeSet map[string]string

// Clone returns an independent copy. A nil set clones to an empty one.
func (a AttributeSet) Clone() AttributeSet {
	out := make(AttributeSet, len(a))
	maps.Copy(out, a)
	return out
}

// Equal reports whether both sets hold the same pairs
func (a AttributeSet) Equal(b AttributeSet) bool {
	return maps.Equal(a, b)
}

// Keys returns the keys in sorted order
func (a AttributeSet) Keys() []string {
	keys := make([]string, 0, len(a))
	for k := range a {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Pair is a single key/value entry of an AttributeSet.
type Pair struct {
	Key   string
	Value string
}

// Pairs returns the entries sorted by key
func (a AttributeSet) Pairs() []Pair {
	keys := a.Keys()
	pairs := make([]Pair, len(keys))
	for i, k := range keys {
		pairs[i] = Pair{Key: k, Value: a[k]}
	}
	return pairs
}

// Record maps filenames within one directory to their attributes.
// A Record never holds an empty AttributeSet; use Put to maintain that.
type Record map[string]AttributeSet

// Clone returns a deep copy
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for name, attrs := range r {
		out[name] = attrs.Clone()
	}
	return out
}

// Equal reports whether both records hold the same entries
func (r Record) Equal(other Record) bool {
	return maps.EqualFunc(r, other, AttributeSet.Equal)
}

// Put installs attrs for name, deleting the entry when attrs is empty.
func (r Record) Put(name string, attrs AttributeSet) {
	if len(attrs) == 0 {
		delete(r, name)
		return
	}
	r[name] = attrs
}

// Names returns the filenames in sorted order
func (r Record) Names() []string {
	names := make([]string, 0, len(r))
	for name := range r {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// StringSet is a set of strings.
type StringSet map[string]struct{}

// NewStringSet builds a set from the given items
func NewStringSet(items ...string) StringSet {
	s := make(StringSet, len(items))
	for _, item := range items {
		s[item] = struct{}{}
	}
	return s
}

// Has reports membership
func (s StringSet) Has(item string) bool {
	_, ok := s[item]
	return ok
}

// Add inserts item
func (s StringSet) Add(item string) {
	s[item] = struct{}{}
}
