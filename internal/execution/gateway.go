package execution

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/punishbig2/StreamSystems-sub002/internal/domain"
	"github.com/punishbig2/StreamSystems-sub002/internal/infra"
)

// RESTExecution sends signed order-entry requests to the broker REST API.
// A rate limiter throttles each endpoint and a circuit breaker isolates a
// failing broker so the UI does not queue doomed requests. The broker only
// acks the HTTP request; the definitive confirm or reject arrives later on
// the feed as an OrderResponseEvent.
type RESTExecution struct {
	baseURL string
	client  *http.Client
	signer  *Signer
	breaker *infra.CircuitBreaker

	orderLimiter  *infra.RateLimiter
	cancelLimiter *infra.RateLimiter
}

// NewRESTExecution creates a live broker gateway.
func NewRESTExecution(baseURL string, signer *Signer) *RESTExecution {
	return &RESTExecution{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 10 * time.Second},
		signer:  signer,
		breaker: infra.NewCircuitBreaker(
			infra.DefaultCircuitBreakerConfig("broker-rest")),
		orderLimiter:  infra.GetBrokerOrderLimiter(),
		cancelLimiter: infra.GetBrokerCancelLimiter(),
	}
}

type submitRequest struct {
	OrderID  string `json:"order_id"`
	Symbol   string `json:"symbol"`
	Strategy string `json:"strategy"`
	Tenor    string `json:"tenor"`
	Side     string `json:"side"`
	Price    string `json:"price"`
	Size     int64  `json:"size"`
}

// SubmitOrder posts the order to the broker.
func (e *RESTExecution) SubmitOrder(ctx context.Context, order domain.Order) error {
	if order.Price == nil || order.Size == nil {
		return fmt.Errorf("order %s is not fully specified", order.OrderID)
	}

	req := submitRequest{
		OrderID:  order.OrderID,
		Symbol:   order.Symbol,
		Strategy: order.Strategy,
		Tenor:    order.Tenor,
		Side:     order.Type.String(),
		Price:    order.Price.Format(6),
		Size:     int64(*order.Size),
	}
	body, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("failed to marshal order: %w", err)
	}

	e.orderLimiter.Wait()
	return e.do(ctx, http.MethodPost, "/api/v1/orders", body)
}

// CancelOrder asks the broker to pull a working order.
func (e *RESTExecution) CancelOrder(ctx context.Context, orderID string) error {
	if orderID == "" {
		return fmt.Errorf("empty order id")
	}

	e.cancelLimiter.Wait()
	path := "/api/v1/orders/" + orderID
	return e.do(ctx, http.MethodDelete, path, nil)
}

func (e *RESTExecution) do(ctx context.Context, method, path string, body []byte) error {
	if !e.breaker.Allow() {
		return fmt.Errorf("broker circuit open, request rejected")
	}

	req, err := http.NewRequestWithContext(ctx, method, e.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	for k, v := range e.signer.GenerateHeaders(method, path, string(body)) {
		req.Header.Set(k, v)
	}

	resp, err := e.client.Do(req)
	if err != nil {
		e.breaker.RecordFailure()
		return fmt.Errorf("broker request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		e.breaker.RecordFailure()
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("broker error %d: %s", resp.StatusCode, msg)
	}

	e.breaker.RecordSuccess()

	if resp.StatusCode >= 400 {
		// Request-level rejection; the feed will not ack this order.
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		slog.Warn("Broker rejected request",
			slog.Int("status", resp.StatusCode),
			slog.String("path", path),
			slog.String("body", string(msg)))
		return fmt.Errorf("broker rejected request: %d", resp.StatusCode)
	}

	return nil
}
