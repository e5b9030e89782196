// Package depth collapses a multi-contributor order book for one
// symbol/strategy/tenor/side into top-of-book and aggregated size.
package depth

import (
	"sort"

	"github.com/punishbig2/StreamSystems-sub002/internal/domain"
	"github.com/punishbig2/StreamSystems-sub002/pkg/quant"
	"github.com/punishbig2/StreamSystems-sub002/pkg/safe"
)

// ForSide filters raw orders down to one displayable side. Invalid and
// dark-pool orders never appear in depth.
func ForSide(orders []domain.Order, side domain.OrderType) []domain.Order {
	out := make([]domain.Order, 0, len(orders))
	for _, o := range orders {
		if o.Type == side && (side == domain.Bid || side == domain.Ofr) {
			out = append(out, o)
		}
	}
	return out
}

// Sort returns the orders best-first without mutating the input. All orders
// must be of the same bid/ofr side; mixed input is a caller bug and panics
// inside the comparison.
func Sort(orders []domain.Order) []domain.Order {
	out := make([]domain.Order, len(orders))
	copy(out, orders)
	if len(out) < 2 {
		return out
	}
	for _, o := range out[1:] {
		// Side check only; Better panics on mismatched or unrankable sides.
		domain.Better(out[0], o)
	}
	// Stable sort keeps arrival order among equal prices.
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Price == nil {
			return false
		}
		if b.Price == nil {
			return true
		}
		if a.Type == domain.Bid {
			return *a.Price > *b.Price
		}
		return *a.Price < *b.Price
	})
	return out
}

// TopOfBook reduces the contributed orders to the single best one. The
// second return is false when no order is quoted.
func TopOfBook(orders []domain.Order) (domain.Order, bool) {
	var best domain.Order
	found := false
	for _, o := range orders {
		if !found {
			best = o
			found = true
			continue
		}
		best = domain.Better(best, o)
	}
	if !found || best.Price == nil {
		return domain.Order{}, false
	}
	return best, true
}

// AggregatedSize sums the size of every order priced at the best price,
// where price equality is canonical display-precision equality, not raw
// micro equality. Empty input falls back to the supplied default (which may
// be nil for "no interest"); a single order reports its own size
// unaggregated. Never panics on empty input and never yields NaN-like
// garbage: no quote is always a nil size.
func AggregatedSize(orders []domain.Order, fallback *quant.Size, decimals int) *quant.Size {
	if len(orders) == 0 {
		return cloneSize(fallback)
	}
	if len(orders) == 1 {
		return cloneSize(orders[0].Size)
	}
	best, ok := TopOfBook(orders)
	if !ok {
		return cloneSize(fallback)
	}
	var total int64
	for _, o := range orders {
		if o.Price == nil || o.Size == nil {
			continue
		}
		if quant.SamePrice(*o.Price, *best.Price, decimals) {
			total = safe.SafeAdd(total, int64(*o.Size))
		}
	}
	agg := quant.Size(total)
	return &agg
}

func cloneSize(s *quant.Size) *quant.Size {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
