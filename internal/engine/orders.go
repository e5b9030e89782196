package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/punishbig2/StreamSystems-sub002/internal/domain"
	"github.com/punishbig2/StreamSystems-sub002/internal/execution"
	"github.com/punishbig2/StreamSystems-sub002/internal/run"
)

// AttachExecution installs the venue used by SubmitOrder and RequestCancel.
// Call once during startup, before order entry begins.
func (s *Sequencer) AttachExecution(exec execution.Execution) {
	s.venue = exec
}

// SubmitOrder sends one side of a row to the execution venue and marks that
// side in-flight (StatusBeingCreated). The venue's answer arrives later as an
// order response event, which settles the flags through the confirmation
// path; a synchronous venue error rolls the side back to server truth.
func (s *Sequencer) SubmitOrder(ctx context.Context, key BookKey, rowID string, side domain.OrderType) error {
	exec := s.venue
	if exec == nil {
		return fmt.Errorf("no execution venue configured")
	}
	if side != domain.Bid && side != domain.Ofr {
		return fmt.Errorf("cannot submit side %s", side)
	}

	st, ok := s.GetRunState(key)
	if !ok {
		return fmt.Errorf("unknown book %s", domain.BookID(key.Symbol, key.Strategy))
	}
	row := st.Row(rowID)
	if row == nil {
		return fmt.Errorf("unknown row %s", rowID)
	}
	ord := row.Bid
	if side == domain.Ofr {
		ord = row.Ofr
	}
	if ord.Price == nil {
		return fmt.Errorf("row %s has no %s price to submit", rowID, side)
	}

	orderID := ord.OrderID
	if orderID == "" {
		orderID = newOrderID()
	}

	s.applyOrderAction(key, run.Action{
		Kind:    run.ActOrderSubmitted,
		RowID:   rowID,
		Side:    side,
		OrderID: orderID,
	})

	ord = ord.Clone()
	ord.OrderID = orderID
	if err := exec.SubmitOrder(ctx, ord); err != nil {
		s.applyOrderAction(key, run.Action{Kind: run.ActOrderRejected, OrderID: orderID})
		return err
	}
	return nil
}

// RequestCancel asks the venue to pull the working order on one side and
// marks it StatusBeingCancelled; the confirmation lands it Cancelled. Only
// orders that already carry a broker id can be cancelled.
func (s *Sequencer) RequestCancel(ctx context.Context, key BookKey, rowID string, side domain.OrderType) error {
	exec := s.venue
	if exec == nil {
		return fmt.Errorf("no execution venue configured")
	}
	if side != domain.Bid && side != domain.Ofr {
		return fmt.Errorf("cannot cancel side %s", side)
	}

	st, ok := s.GetRunState(key)
	if !ok {
		return fmt.Errorf("unknown book %s", domain.BookID(key.Symbol, key.Strategy))
	}
	row := st.Row(rowID)
	if row == nil {
		return fmt.Errorf("unknown row %s", rowID)
	}
	ord := row.Bid
	if side == domain.Ofr {
		ord = row.Ofr
	}
	if ord.OrderID == "" {
		return fmt.Errorf("row %s %s has no working order to cancel", rowID, side)
	}

	s.applyOrderAction(key, run.Action{
		Kind:    run.ActCancelRequested,
		RowID:   rowID,
		Side:    side,
		OrderID: ord.OrderID,
	})

	if err := exec.CancelOrder(ctx, ord.OrderID); err != nil {
		s.applyOrderAction(key, run.Action{Kind: run.ActOrderRejected, OrderID: ord.OrderID})
		return err
	}
	return nil
}

// applyOrderAction runs one order-entry action through the reducer under the
// write lock, so it cannot race the feed path's read-modify-write.
func (s *Sequencer) applyOrderAction(key BookKey, a run.Action) {
	s.mu.Lock()
	st, ok := s.runs[key]
	if !ok {
		s.mu.Unlock()
		return
	}
	next := run.Reduce(st, a)
	if next.SharesOrders(st) {
		s.mu.Unlock()
		return
	}
	s.runs[key] = next
	s.mu.Unlock()

	if s.onStateUpdate != nil {
		s.onStateUpdate(key, next)
	}
}

func newOrderID() string {
	return fmt.Sprintf("ord-%d", time.Now().UnixNano())
}
