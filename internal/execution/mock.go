package execution

import (
	"context"
	"log/slog"

	"github.com/punishbig2/StreamSystems-sub002/internal/domain"
)

// MockExecution is a safe implementation that only logs orders.
type MockExecution struct{}

func NewMockExecution() *MockExecution {
	return &MockExecution{}
}

func (m *MockExecution) SubmitOrder(ctx context.Context, order domain.Order) error {
	price := int64(0)
	if order.Price != nil {
		price = int64(*order.Price)
	}
	size := int64(0)
	if order.Size != nil {
		size = int64(*order.Size)
	}
	slog.Info("MOCK EXECUTION: Submit Order",
		slog.String("id", order.OrderID),
		slog.String("symbol", order.Symbol),
		slog.String("strategy", order.Strategy),
		slog.String("tenor", order.Tenor),
		slog.String("side", order.Type.String()),
		slog.Int64("price", price),
		slog.Int64("size", size),
	)
	return nil
}

func (m *MockExecution) CancelOrder(ctx context.Context, orderID string) error {
	slog.Info("MOCK EXECUTION: Cancel Order", slog.String("id", orderID))
	return nil
}
