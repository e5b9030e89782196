// Package feed adapts the price-distribution WebSocket feed to sequencer
// events.
package feed

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/gorilla/websocket"

	"github.com/punishbig2/StreamSystems-sub002/internal/event"
	"github.com/punishbig2/StreamSystems-sub002/internal/infra"
	"github.com/punishbig2/StreamSystems-sub002/pkg/quant"
)

// wireEntry is one contributed order on the wire. Numeric fields arrive as
// json.Number to keep float64 out of the hotpath; an absent price or size
// means that side of the quote was pulled.
type wireEntry struct {
	Side    string      `json:"side"` // BID | OFR | DARK
	OrderID string      `json:"order_id"`
	Price   json.Number `json:"price"`
	Size    json.Number `json:"size"`
	Firm    string      `json:"firm"`
	User    string      `json:"user"`
}

// wireMessage is the envelope for every feed message. MsgType "W" carries a
// market snapshot for one tenor, "R" a broker order response.
type wireMessage struct {
	MsgType  string      `json:"msg_type"`
	Symbol   string      `json:"symbol"`
	Strategy string      `json:"strategy"`
	Tenor    string      `json:"tenor"`
	TsMs     int64       `json:"ts"`
	Entries  []wireEntry `json:"entries"`

	OrderID string `json:"order_id"`
	Success bool   `json:"success"`
	Reason  string `json:"reason"`
}

type subscription struct {
	Action     string   `json:"action"`
	Symbols    []string `json:"symbols"`
	Strategies []string `json:"strategies"`
}

// Worker handles the market feed WebSocket connection using BaseWSWorker.
type Worker struct {
	base       *infra.BaseWSWorker
	url        string
	symbols    []string
	strategies []string
	inbox      chan<- event.Event
	seq        *uint64
}

// NewWorker creates a new feed worker. seq is the shared upstream sequence
// counter; the worker stamps every event from it.
func NewWorker(url string, symbols, strategies []string, inbox chan<- event.Event, seq *uint64) *Worker {
	w := &Worker{
		url:        url,
		symbols:    symbols,
		strategies: strategies,
		inbox:      inbox,
		seq:        seq,
	}
	w.base = infra.NewBaseWSWorker(w)
	return w
}

// ID returns the worker identifier.
func (w *Worker) ID() string { return "FEED" }

// GetURL returns the feed WebSocket endpoint.
func (w *Worker) GetURL() string { return w.url }

// Connect starts the WebSocket connection.
func (w *Worker) Connect(ctx context.Context) error {
	w.base.Start(ctx)
	return nil
}

// Disconnect terminates the connection.
func (w *Worker) Disconnect() {
	w.base.Stop()
}

// OnConnect subscribes to every configured symbol+strategy book.
func (w *Worker) OnConnect(ctx context.Context, conn *websocket.Conn) error {
	sub := subscription{
		Action:     "subscribe",
		Symbols:    w.symbols,
		Strategies: w.strategies,
	}
	b, _ := json.Marshal(sub)
	return w.base.Write(websocket.TextMessage, b)
}

// OnMessage decodes one feed message and forwards it to the sequencer inbox.
func (w *Worker) OnMessage(ctx context.Context, msg []byte) {
	var m wireMessage
	if err := json.Unmarshal(msg, &m); err != nil {
		slog.Warn("Feed message decode failed", "err", err)
		return
	}

	switch m.MsgType {
	case "W":
		w.onMarketUpdate(&m)
	case "R":
		w.onOrderResponse(&m)
	default:
		// Heartbeats and administrative messages are ignored.
	}
}

func (w *Worker) onMarketUpdate(m *wireMessage) {
	ev := event.AcquireMarketUpdateEvent()
	ev.Seq = quant.NextSeq(w.seq)
	ev.Ts = quant.TimeStamp(m.TsMs * 1000)
	ev.Symbol = m.Symbol
	ev.Strategy = m.Strategy
	ev.Tenor = m.Tenor

	for _, e := range m.Entries {
		entry := event.MarketEntry{
			Type:    e.Side,
			OrderID: e.OrderID,
			Firm:    e.Firm,
			User:    e.User,
		}
		if s := e.Price.String(); s != "" {
			entry.Price = quant.PricePtr(quant.ToPriceMicrosStr(s))
		}
		if s := e.Size.String(); s != "" {
			entry.Size = quant.SizePtr(quant.ToSizeStr(s))
		}
		ev.Entries = append(ev.Entries, entry)
	}

	select {
	case w.inbox <- ev:
	default:
		// Drop if inbox is full, but release to pool to prevent leak.
		event.ReleaseMarketUpdateEvent(ev)
	}
}

func (w *Worker) onOrderResponse(m *wireMessage) {
	ev := &event.OrderResponseEvent{
		BaseEvent: event.BaseEvent{
			Seq: quant.NextSeq(w.seq),
			Ts:  quant.TimeStamp(m.TsMs * 1000),
		},
		OrderID: m.OrderID,
		Success: m.Success,
		Reason:  m.Reason,
	}

	select {
	case w.inbox <- ev:
	default:
		slog.Warn("Inbox full, order response dropped", "order_id", m.OrderID)
	}
}

// OnPing keeps the session alive with an application-level heartbeat.
func (w *Worker) OnPing(ctx context.Context, conn *websocket.Conn) error {
	hb := map[string]any{"action": "ping", "ts": time.Now().UnixMilli()}
	b, _ := json.Marshal(hb)
	return w.base.Write(websocket.TextMessage, b)
}
