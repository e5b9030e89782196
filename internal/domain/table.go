package domain

import (
	"sort"
)

// PodTable maps row id to row for one symbol+strategy. Keys are unique,
// insertion order is irrelevant; display order comes from SortedIDs.
//
// Mutations follow a copy-on-write discipline: Clone the map, replace the
// pointers of changed rows only, leave the rest aliased. Consumers can then
// diff two tables by row pointer identity.
type PodTable map[string]*Row

// Clone returns a new map sharing the existing row pointers.
func (t PodTable) Clone() PodTable {
	out := make(PodTable, len(t))
	for k, v := range t {
		out[k] = v
	}
	return out
}

// DeepClone returns a new map with cloned rows. Used to seed the
// last-known-server-truth table, which must never alias user-edited rows.
func (t PodTable) DeepClone() PodTable {
	out := make(PodTable, len(t))
	for k, v := range t {
		out[k] = v.Clone()
	}
	return out
}

// SortedIDs returns the row ids in tenor display order.
func (t PodTable) SortedIDs() []string {
	ids := make([]string, 0, len(t))
	for id := range t {
		ids = append(ids, id)
	}
	sort.SliceStable(ids, func(i, j int) bool {
		return CompareTenors(t[ids[i]].Tenor, t[ids[j]].Tenor) < 0
	})
	return ids
}
