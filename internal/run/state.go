// Package run holds the run-blotter state and its pure reducer: the table of
// quote rows a trader is working, reconciled against server truth.
package run

import (
	"reflect"

	"github.com/punishbig2/StreamSystems-sub002/internal/domain"
	"github.com/punishbig2/StreamSystems-sub002/pkg/quant"
)

// State is the full run-blotter state for one symbol+strategy book.
//
// Orders and Original always carry the same key set once initialized;
// Orders[k] diverges from Original[k] exactly while a local edit on row k is
// pending and unconfirmed. History records the action kinds applied per row,
// in application order.
//
// State is a value; the reducer returns new values and shares unchanged
// tables and rows by reference. Exactly one reducer instance owns a given
// book; everything else reads snapshots.
type State struct {
	Orders         domain.PodTable         `json:"orders"`
	Original       domain.PodTable         `json:"original"`
	DefaultBidSize quant.Size              `json:"default_bid_size"`
	DefaultOfrSize quant.Size              `json:"default_ofr_size"`
	IsLoading      bool                    `json:"is_loading"`
	History        map[string][]ActionKind `json:"history,omitempty"`
}

// NewState returns an empty, loading state with the given default sizes.
func NewState(defaultBidSize, defaultOfrSize quant.Size) State {
	return State{
		Orders:         make(domain.PodTable),
		Original:       make(domain.PodTable),
		DefaultBidSize: defaultBidSize,
		DefaultOfrSize: defaultOfrSize,
		IsLoading:      true,
		History:        make(map[string][]ActionKind),
	}
}

// SharesOrders reports whether both states carry the identical working table
// (same map, not just equal contents). The reducer guarantees a no-op returns
// the input table unchanged, so consumers use this to skip unchanged books.
func (s State) SharesOrders(other State) bool {
	return reflect.ValueOf(s.Orders).Pointer() == reflect.ValueOf(other.Orders).Pointer()
}

// Row returns the working row for an id, or nil.
func (s State) Row(rowID string) *domain.Row {
	return s.Orders[rowID]
}

// appendHistory returns a copied history map with kind appended for rowID.
// The previous map is never mutated, so earlier states stay valid.
func (s State) appendHistory(rowID string, kind ActionKind) map[string][]ActionKind {
	out := make(map[string][]ActionKind, len(s.History)+1)
	for k, v := range s.History {
		out[k] = v
	}
	prev := out[rowID]
	tags := make([]ActionKind, len(prev), len(prev)+1)
	copy(tags, prev)
	out[rowID] = append(tags, kind)
	return out
}
