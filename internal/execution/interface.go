// Package execution sends order-entry requests to the broker. The answer
// always comes back asynchronously through the event feed, never through the
// return value; the blotter keeps the order in-flight until then.
package execution

import (
	"context"

	"github.com/punishbig2/StreamSystems-sub002/internal/domain"
)

// Execution defines the interface for broker order entry.
type Execution interface {
	// SubmitOrder sends a new order to the broker.
	SubmitOrder(ctx context.Context, order domain.Order) error

	// CancelOrder cancels a working order by ID.
	CancelOrder(ctx context.Context, orderID string) error
}
