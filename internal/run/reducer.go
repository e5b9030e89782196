package run

import (
	"github.com/punishbig2/StreamSystems-sub002/internal/domain"
	"github.com/punishbig2/StreamSystems-sub002/pkg/quant"
)

// Reduce is the pure state-transition function for one run blotter.
//
// Contract:
//   - unknown action kinds return the state unchanged, same reference, so
//     memoizing consumers can skip work;
//   - every mutation builds a new table but reuses untouched row pointers
//     (structural sharing), so consumers diff cheaply by identity;
//   - loading and default-size changes never perturb the order tables.
func Reduce(s State, a Action) State {
	switch a.Kind {
	case ActSetTable:
		s.Orders = a.Table
		s.Original = a.Table.DeepClone()
		s.IsLoading = false
		s.History = make(map[string][]ActionKind)
		return s

	case ActUpdateOrder:
		return updateOrder(s, a.RowID, a.Order, a.Side)

	case ActSetPrice:
		return setPrice(s, a)

	case ActSetSize:
		return setSize(s, a)

	case ActSetDarkPrice:
		return setDarkPrice(s, a)

	case ActActivateOrder:
		return activate(s, a.RowID, a.Side, ActActivateOrder)

	case ActActivateRow:
		return activate(s, a.RowID, 0, ActActivateRow)

	case ActDeactivateOrder:
		return deactivateOrder(s, a.RowID, a.Side)

	case ActDeactivateAll:
		return deactivateAll(s, a.RowID)

	case ActRemoveOrder:
		return removeOrder(s, a.OrderID)

	case ActRemoveAllBids:
		return removeAllOfSide(s, domain.Bid)

	case ActRemoveAllOfrs:
		return removeAllOfSide(s, domain.Ofr)

	case ActSetDefaultBidSize:
		if a.Size != nil {
			s.DefaultBidSize = *a.Size
		}
		return s

	case ActSetDefaultOfrSize:
		if a.Size != nil {
			s.DefaultOfrSize = *a.Size
		}
		return s

	case ActSetLoading:
		s.IsLoading = a.Loading
		return s

	case ActOrderSubmitted:
		return markInFlight(s, a, domain.StatusBeingCreated)

	case ActCancelRequested:
		return markInFlight(s, a, domain.StatusBeingCancelled)

	case ActOrderConfirmed:
		return resolveOrder(s, a.OrderID, true)

	case ActOrderRejected:
		return resolveOrder(s, a.OrderID, false)

	default:
		return s
	}
}

// setPrice applies a local price edit: the edit flag is set and a cancelled
// order is reactivated per the single cross-bit rule. Local edits may invert
// the market; that is flagged, not rejected.
func setPrice(s State, a Action) State {
	row := s.Orders[a.RowID]
	if row == nil || (a.Side != domain.Bid && a.Side != domain.Ofr) {
		return s
	}
	next := row.Clone()
	ord := sideOf(next, a.Side)
	ord.Status = ord.Status.ActivateIfPossible().With(domain.StatusPriceEdited)
	ord.Price = a.Price
	setSide(next, ord, a.Side)
	FillSpreadAndMid(next)
	next.RefreshStatus()
	if next.Equal(row) {
		return s
	}
	orders := s.Orders.Clone()
	orders[a.RowID] = next
	s.Orders = orders
	s.History = s.appendHistory(a.RowID, ActSetPrice)
	return s
}

func setSize(s State, a Action) State {
	row := s.Orders[a.RowID]
	if row == nil || (a.Side != domain.Bid && a.Side != domain.Ofr) {
		return s
	}
	next := row.Clone()
	ord := sideOf(next, a.Side)
	ord.Status = ord.Status.ActivateIfPossible().With(domain.StatusSizeEdited)
	ord.Size = a.Size
	setSide(next, ord, a.Side)
	next.RefreshStatus()
	if next.Equal(row) {
		return s
	}
	orders := s.Orders.Clone()
	orders[a.RowID] = next
	s.Orders = orders
	s.History = s.appendHistory(a.RowID, ActSetSize)
	return s
}

// setDarkPrice records the dark-pool print for the row. Nil clears it.
func setDarkPrice(s State, a Action) State {
	row := s.Orders[a.RowID]
	if row == nil {
		return s
	}
	if samePricePtrs(row.DarkPrice, a.Price) {
		return s
	}
	next := row.Clone()
	if a.Price == nil {
		next.DarkPrice = nil
	} else {
		p := *a.Price
		next.DarkPrice = &p
	}
	orders := s.Orders.Clone()
	orders[a.RowID] = next
	s.Orders = orders
	s.History = s.appendHistory(a.RowID, ActSetDarkPrice)
	return s
}

// activate applies the reactivation rule to one side (side Bid/Ofr) or both
// (kind ActActivateRow), substituting default sizes for unsized orders, then
// recomputes market inversion.
func activate(s State, rowID string, side domain.OrderType, kind ActionKind) State {
	row := s.Orders[rowID]
	if row == nil {
		return s
	}
	next := row.Clone()
	if kind == ActActivateRow {
		activateSide(s, next, domain.Bid)
		activateSide(s, next, domain.Ofr)
	} else {
		if side != domain.Bid && side != domain.Ofr {
			return s
		}
		activateSide(s, next, side)
	}
	FillSpreadAndMid(next)
	next.RefreshStatus()
	if next.Equal(row) {
		return s
	}
	orders := s.Orders.Clone()
	orders[rowID] = next
	s.Orders = orders
	s.History = s.appendHistory(rowID, kind)
	return s
}

// deactivateOrder is the explicit "undo my edit" for one side: a pure
// structural copy of that side from the last-known-server-truth table, with
// row-level mid/spread reset to nil so they recompute from restored values.
func deactivateOrder(s State, rowID string, side domain.OrderType) State {
	orig := s.Original[rowID]
	row := s.Orders[rowID]
	if orig == nil || row == nil || (side != domain.Bid && side != domain.Ofr) {
		return s
	}
	next := row.Clone()
	setSide(next, sideOf(orig, side).Clone(), side)
	next.Mid = nil
	next.Spread = nil
	next.RefreshStatus()
	if next.Equal(row) {
		return s
	}
	orders := s.Orders.Clone()
	orders[rowID] = next
	s.Orders = orders
	s.History = s.appendHistory(rowID, ActDeactivateOrder)
	return s
}

// deactivateAll restores the whole row from server truth.
func deactivateAll(s State, rowID string) State {
	orig := s.Original[rowID]
	row := s.Orders[rowID]
	if orig == nil || row == nil {
		return s
	}
	if row.Equal(orig) {
		return s
	}
	orders := s.Orders.Clone()
	orders[rowID] = orig.Clone()
	s.Orders = orders
	s.History = s.appendHistory(rowID, ActDeactivateAll)
	return s
}

// removeOrder cancels the order with the given id wherever it sits. Rows not
// holding the id keep their reference identity.
func removeOrder(s State, orderID string) State {
	if orderID == "" {
		return s
	}
	var orders domain.PodTable
	changedRows := make([]string, 0, 1)
	for id, row := range s.Orders {
		bidHit := row.Bid.OrderID == orderID
		ofrHit := row.Ofr.OrderID == orderID
		if !bidHit && !ofrHit {
			continue
		}
		next := row.Clone()
		if bidHit {
			next.Bid.Status = cancelStatus(next.Bid.Status)
		}
		if ofrHit {
			next.Ofr.Status = cancelStatus(next.Ofr.Status)
		}
		next.RefreshStatus()
		if orders == nil {
			orders = s.Orders.Clone()
		}
		orders[id] = next
		changedRows = append(changedRows, id)
	}
	if orders == nil {
		return s
	}
	s.Orders = orders
	for _, id := range changedRows {
		s.History = s.appendHistory(id, ActRemoveOrder)
	}
	return s
}

// removeAllOfSide cancels one side across the whole table, touching only
// rows where that side is actually quoted.
func removeAllOfSide(s State, side domain.OrderType) State {
	var orders domain.PodTable
	kind := ActRemoveAllBids
	if side == domain.Ofr {
		kind = ActRemoveAllOfrs
	}
	changedRows := make([]string, 0)
	for id, row := range s.Orders {
		if sideOf(row, side).Price == nil {
			continue
		}
		next := row.Clone()
		ord := sideOf(next, side)
		ord.Status = cancelStatus(ord.Status)
		setSide(next, ord, side)
		next.RefreshStatus()
		if next.Equal(row) {
			continue
		}
		if orders == nil {
			orders = s.Orders.Clone()
		}
		orders[id] = next
		changedRows = append(changedRows, id)
	}
	if orders == nil {
		return s
	}
	s.Orders = orders
	for _, id := range changedRows {
		s.History = s.appendHistory(id, kind)
	}
	return s
}

// markInFlight stamps a broker request on one side: the order id the request
// went out under and the lifecycle flag the confirmation path will resolve.
// A submission additionally claims ownership and marks the row as creating.
func markInFlight(s State, a Action, flag domain.OrderStatus) State {
	row := s.Orders[a.RowID]
	if row == nil || (a.Side != domain.Bid && a.Side != domain.Ofr) {
		return s
	}
	next := row.Clone()
	ord := sideOf(next, a.Side)
	if a.OrderID != "" {
		ord.OrderID = a.OrderID
	}
	ord.Status = ord.Status.With(flag)
	if flag == domain.StatusBeingCreated {
		ord.Status = ord.Status.With(domain.StatusOwned).Without(domain.StatusNotOwned)
		next.Status = next.Status.With(domain.RowCreatingOrder)
	}
	setSide(next, ord, a.Side)
	if next.Equal(row) {
		return s
	}
	kind := ActOrderSubmitted
	if flag == domain.StatusBeingCancelled {
		kind = ActCancelRequested
	}
	orders := s.Orders.Clone()
	orders[a.RowID] = next
	s.Orders = orders
	s.History = s.appendHistory(a.RowID, kind)
	return s
}

// resolveOrder settles an in-flight broker request by order id: a confirm
// lands the requested lifecycle transition, a reject restores the side from
// server truth. Both update Original, since the broker's answer is truth.
func resolveOrder(s State, orderID string, confirmed bool) State {
	if orderID == "" {
		return s
	}
	for id, row := range s.Orders {
		for _, side := range []domain.OrderType{domain.Bid, domain.Ofr} {
			ord := sideOf(row, side)
			if ord.OrderID != orderID {
				continue
			}
			if confirmed {
				return confirmSide(s, id, side)
			}
			return deactivateOrder(s, id, side)
		}
	}
	return s
}

func confirmSide(s State, rowID string, side domain.OrderType) State {
	row := s.Orders[rowID]
	next := row.Clone()
	ord := sideOf(next, side)
	if ord.Status.Has(domain.StatusBeingCancelled) {
		ord.Status = ord.Status.
			Without(domain.StatusBeingCancelled | domain.StatusActive).
			With(domain.StatusCancelled)
	} else {
		ord.Status = ord.Status.
			Without(domain.StatusBeingCreated | domain.StatusBeingLoaded |
				domain.StatusPriceEdited | domain.StatusSizeEdited).
			With(domain.StatusActive)
	}
	setSide(next, ord, side)
	next.Status = next.Status.Without(domain.RowCreatingOrder)
	FillSpreadAndMid(next)
	next.RefreshStatus()
	if next.Equal(row) {
		return s
	}
	orders := s.Orders.Clone()
	orders[rowID] = next
	original := s.Original.Clone()
	original[rowID] = next.Clone()
	s.Orders = orders
	s.Original = original
	s.History = s.appendHistory(rowID, ActOrderConfirmed)
	return s
}

func cancelStatus(status domain.OrderStatus) domain.OrderStatus {
	return status.Without(domain.StatusActive).With(domain.StatusCancelled)
}

func samePricePtrs(a, b *quant.PriceMicros) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
