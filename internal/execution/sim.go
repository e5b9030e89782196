package execution

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/punishbig2/StreamSystems-sub002/internal/domain"
	"github.com/punishbig2/StreamSystems-sub002/internal/event"
	"github.com/punishbig2/StreamSystems-sub002/pkg/quant"
)

// SimExecution simulates the broker locally: every request is acknowledged
// with an OrderResponseEvent pushed into the sequencer inbox, so the full
// confirm/reject workflow can be exercised without broker connectivity.
type SimExecution struct {
	inbox chan<- event.Event
	seq   *uint64

	mu     sync.Mutex
	orders map[string]domain.Order

	// AckDelay lets tests and demos control latency; zero means immediate.
	AckDelay time.Duration
}

// NewSimExecution creates a simulated executor feeding the given inbox.
func NewSimExecution(inbox chan<- event.Event, seq *uint64) *SimExecution {
	return &SimExecution{
		inbox:  inbox,
		seq:    seq,
		orders: make(map[string]domain.Order),
	}
}

// SubmitOrder records the order as working and acks it asynchronously.
func (s *SimExecution) SubmitOrder(ctx context.Context, order domain.Order) error {
	if order.OrderID == "" {
		return fmt.Errorf("order has no id")
	}
	if order.Price == nil {
		return fmt.Errorf("order %s has no price", order.OrderID)
	}

	s.mu.Lock()
	s.orders[order.OrderID] = order.Clone()
	s.mu.Unlock()

	slog.Info("SIM EXECUTION: Submit Order",
		slog.String("id", order.OrderID),
		slog.String("side", order.Type.String()))

	s.ack(order.OrderID, true, "")
	return nil
}

// CancelOrder acks success for known orders, rejects unknown ids.
func (s *SimExecution) CancelOrder(ctx context.Context, orderID string) error {
	s.mu.Lock()
	_, known := s.orders[orderID]
	if known {
		delete(s.orders, orderID)
	}
	s.mu.Unlock()

	if !known {
		s.ack(orderID, false, "unknown order")
		return nil
	}

	slog.Info("SIM EXECUTION: Cancel Order", slog.String("id", orderID))
	s.ack(orderID, true, "")
	return nil
}

// OpenOrders returns a snapshot of the currently working orders.
func (s *SimExecution) OpenOrders() []domain.Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Order, 0, len(s.orders))
	for _, o := range s.orders {
		out = append(out, o.Clone())
	}
	return out
}

func (s *SimExecution) ack(orderID string, success bool, reason string) {
	send := func() {
		ev := &event.OrderResponseEvent{
			BaseEvent: event.BaseEvent{
				Seq: quant.NextSeq(s.seq),
				Ts:  quant.TimeStamp(time.Now().UnixMicro()),
			},
			OrderID: orderID,
			Success: success,
			Reason:  reason,
		}
		select {
		case s.inbox <- ev:
		default:
			slog.Warn("Inbox full, sim ack dropped", "order_id", orderID)
		}
	}

	if s.AckDelay <= 0 {
		send()
		return
	}
	go func() {
		time.Sleep(s.AckDelay)
		send()
	}()
}
