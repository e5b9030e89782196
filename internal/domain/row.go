package domain

import (
	"github.com/punishbig2/StreamSystems-sub002/pkg/quant"
)

// RowStatus is a small set of combinable row-level conditions. RowNormal is
// the empty set. Inverted markets are a status, not an error: reconciliation
// continues and the UI highlights the row.
type RowStatus uint8

const (
	RowInvertedMarkets RowStatus = 1 << iota
	RowIncomplete
	RowCreatingOrder
	RowNegativePrice
	RowExecuted

	RowNormal RowStatus = 0
)

// Has reports whether every flag in mask is set.
func (s RowStatus) Has(mask RowStatus) bool {
	return s&mask == mask
}

// With returns s with the given flags set.
func (s RowStatus) With(mask RowStatus) RowStatus {
	return s | mask
}

// Without returns s with the given flags cleared.
func (s RowStatus) Without(mask RowStatus) RowStatus {
	return s &^ mask
}

// Row is a two-sided quote (a "pod") for one tenor of one symbol+strategy.
// Mid and Spread hold the last derived values; they are not cleared when one
// side temporarily drops out, which keeps the display stable under feed
// jitter.
type Row struct {
	ID        string             `json:"id"`
	Tenor     string             `json:"tenor"`
	Bid       Order              `json:"bid"`
	Ofr       Order              `json:"ofr"`
	Mid       *quant.PriceMicros `json:"mid,omitempty"`
	Spread    *quant.PriceMicros `json:"spread,omitempty"`
	DarkPrice *quant.PriceMicros `json:"dark_price,omitempty"`
	Status    RowStatus          `json:"status"`
}

// NewRow creates an empty row for a tenor with no market yet.
func NewRow(symbol, strategy, tenor string) *Row {
	return &Row{
		ID:    RowID(symbol, strategy, tenor),
		Tenor: tenor,
		Bid:   NewEmptyOrder(symbol, strategy, tenor, Bid),
		Ofr:   NewEmptyOrder(symbol, strategy, tenor, Ofr),
	}
}

// Inverted reports bid over offer with both sides quoted.
func (r *Row) Inverted() bool {
	if r.Bid.Price == nil || r.Ofr.Price == nil {
		return false
	}
	return *r.Bid.Price > *r.Ofr.Price
}

// RefreshStatus recomputes the derived status flags (inversion, negative
// price) from the current sides. Flags owned by the order workflow
// (CreatingOrder, Executed, Incomplete) are left as set.
func (r *Row) RefreshStatus() {
	r.Status = r.Status.Without(RowInvertedMarkets | RowNegativePrice)
	if r.Inverted() {
		r.Status = r.Status.With(RowInvertedMarkets)
	}
	if (r.Bid.Price != nil && *r.Bid.Price < 0) || (r.Ofr.Price != nil && *r.Ofr.Price < 0) {
		r.Status = r.Status.With(RowNegativePrice)
	}
}

// Clone returns a deep copy of the row. Reconciliation never mutates a row
// in place; it clones, edits the clone and swaps the pointer, so shared row
// pointers stay safe to read.
func (r *Row) Clone() *Row {
	out := *r
	out.Bid = r.Bid.Clone()
	out.Ofr = r.Ofr.Clone()
	out.Mid = clonePrice(r.Mid)
	out.Spread = clonePrice(r.Spread)
	out.DarkPrice = clonePrice(r.DarkPrice)
	return &out
}

// Equal reports deep value equality.
func (r *Row) Equal(other *Row) bool {
	if r == other {
		return true
	}
	if r == nil || other == nil {
		return false
	}
	if r.ID != other.ID || r.Tenor != other.Tenor || r.Status != other.Status {
		return false
	}
	if !r.Bid.Equal(other.Bid) || !r.Ofr.Equal(other.Ofr) {
		return false
	}
	return samePricePtr(r.Mid, other.Mid) &&
		samePricePtr(r.Spread, other.Spread) &&
		samePricePtr(r.DarkPrice, other.DarkPrice)
}

func clonePrice(p *quant.PriceMicros) *quant.PriceMicros {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
