package run

import (
	"fmt"

	"github.com/punishbig2/StreamSystems-sub002/internal/domain"
	"github.com/punishbig2/StreamSystems-sub002/pkg/quant"
)

// IsValidUpdate is the basic sanity check applied to a prospective bid/ofr
// pair at the per-side update boundary: with both sides quoted the bid must
// be strictly below the offer. One-sided and empty pairs are always valid.
//
// Note the asymmetry with row status: an inverted market that arrives whole
// (snapshot) or is created by a local edit is tolerated and flagged
// RowInvertedMarkets; a per-side server update that would cross or touch the
// existing opposite side is rejected outright.
func IsValidUpdate(bid, ofr domain.Order) bool {
	if bid.Price == nil || ofr.Price == nil {
		return true
	}
	return *bid.Price < *ofr.Price
}

// FillSpreadAndMid recomputes the row's derived quote fields. Both sides
// must be acceptable for computation (quoted, and not cancelled unless
// locally re-edited); otherwise the previous mid/spread are retained rather
// than cleared, so one side dropping out does not blank the display.
func FillSpreadAndMid(row *domain.Row) {
	if !row.Bid.Computable() || !row.Ofr.Computable() {
		return
	}
	mid := quant.Mid(*row.Bid.Price, *row.Ofr.Price)
	spread := quant.SpreadOf(*row.Bid.Price, *row.Ofr.Price)
	row.Mid = &mid
	row.Spread = &spread
}

// EnsureRow returns a state guaranteed to hold a (possibly empty) row for
// the tenor. Existing rows are returned untouched, same state reference.
func EnsureRow(s State, symbol, strategy, tenor string) State {
	rowID := domain.RowID(symbol, strategy, tenor)
	if _, ok := s.Orders[rowID]; ok {
		return s
	}
	orders := s.Orders.Clone()
	orders[rowID] = domain.NewRow(symbol, strategy, tenor)
	original := s.Original.Clone()
	original[rowID] = domain.NewRow(symbol, strategy, tenor)
	s.Orders = orders
	s.Original = original
	return s
}

// updateOrder applies a server-pushed order for one side of one row.
//
// Acceptance rules, in order:
//  1. An update never silently deactivates: if the working side is Active
//     and the incoming order carries Cancelled without a qualifying edit
//     flag, the update is dropped. Real deactivation goes through the
//     explicit cancel-confirmation path (ActOrderConfirmed).
//  2. While a local edit is pending on that side, the update lands in
//     Original only; the user's working copy is never clobbered. Original
//     then feeds a later deactivate ("undo my edit").
//  3. The prospective pair must pass IsValidUpdate against the existing
//     opposite side.
//  4. A merge that reproduces the existing row byte-for-byte is a no-op
//     returning the prior state reference, so duplicate network messages
//     cause no downstream churn.
func updateOrder(s State, rowID string, incoming domain.Order, side domain.OrderType) State {
	if side != domain.Bid && side != domain.Ofr {
		return s
	}
	row := s.Orders[rowID]
	if row == nil {
		return s
	}
	existing := sideOf(row, side)

	if existing.Status.Has(domain.StatusActive) &&
		incoming.Status.Has(domain.StatusCancelled) &&
		!incoming.Status.Edited() {
		return s
	}

	if existing.Status.Edited() {
		// Server truth obeys the same per-side boundary check; a crossed
		// update must not sit in Original waiting to be restored verbatim.
		if orig := s.Original[rowID]; orig != nil {
			oBid, oOfr := orig.Bid, orig.Ofr
			if side == domain.Bid {
				oBid = incoming
			} else {
				oOfr = incoming
			}
			if !IsValidUpdate(oBid, oOfr) {
				return s
			}
		}
		original, changed := mergeIntoTable(s.Original, rowID, incoming, side)
		if !changed {
			return s
		}
		s.Original = original
		s.History = s.appendHistory(rowID, ActUpdateOrder)
		return s
	}

	pBid, pOfr := row.Bid, row.Ofr
	if side == domain.Bid {
		pBid = incoming
	} else {
		pOfr = incoming
	}
	if !IsValidUpdate(pBid, pOfr) {
		return s
	}

	orders, changed := mergeIntoTable(s.Orders, rowID, incoming, side)
	if !changed {
		return s
	}
	// Accepted server updates are the new server truth.
	original, _ := mergeIntoTable(s.Original, rowID, incoming, side)
	s.Orders = orders
	s.Original = original
	s.History = s.appendHistory(rowID, ActUpdateOrder)
	return s
}

// mergeIntoTable merges the incoming order into one side of one row of a
// table, recomputing derived fields. Returns the prior table unchanged when
// the row is absent or the merge is an identity.
func mergeIntoTable(t domain.PodTable, rowID string, incoming domain.Order, side domain.OrderType) (domain.PodTable, bool) {
	row := t[rowID]
	if row == nil {
		return t, false
	}
	next := row.Clone()
	setSide(next, incoming.Clone(), side)
	FillSpreadAndMid(next)
	next.RefreshStatus()
	if next.Equal(row) {
		return t, false
	}
	out := t.Clone()
	out[rowID] = next
	return out, true
}

func sideOf(row *domain.Row, side domain.OrderType) domain.Order {
	if side == domain.Bid {
		return row.Bid
	}
	return row.Ofr
}

func setSide(row *domain.Row, order domain.Order, side domain.OrderType) {
	if side == domain.Bid {
		row.Bid = order
	} else {
		row.Ofr = order
	}
}

// activateSide applies the reactivation rule to one side of a cloned row and
// substitutes the default size where the order has none. Reaching activation
// with no default size configured is a caller bug, not a data condition.
func activateSide(s State, row *domain.Row, side domain.OrderType) {
	ord := sideOf(row, side).Clone()
	ord.Status = ord.Status.ActivateIfPossible()
	if ord.Size == nil {
		def := s.DefaultBidSize
		if side == domain.Ofr {
			def = s.DefaultOfrSize
		}
		if def <= 0 {
			panic(fmt.Sprintf("CORE_MISSING_DEFAULT_SIZE: activating %s of %s with no default", side, row.ID))
		}
		ord.Size = &def
	}
	setSide(row, ord, side)
}
