package feed

import (
	"context"
	"testing"

	"github.com/punishbig2/StreamSystems-sub002/internal/event"
)

func newTestWorker(inbox chan event.Event) *Worker {
	var seq uint64
	return NewWorker("ws://localhost/feed", []string{"EURUSD"}, []string{"ATMF"}, inbox, &seq)
}

func TestWorker_DecodesMarketUpdate(t *testing.T) {
	inbox := make(chan event.Event, 4)
	w := newTestWorker(inbox)

	msg := `{
		"msg_type": "W",
		"symbol": "EURUSD",
		"strategy": "ATMF",
		"tenor": "1M",
		"ts": 1704067200000,
		"entries": [
			{"side": "BID", "order_id": "b1", "price": "1.0355", "size": "10", "firm": "BANKA", "user": "x@banka.com"},
			{"side": "OFR", "order_id": "o1", "price": "1.0400", "size": "7"}
		]
	}`
	w.OnMessage(context.Background(), []byte(msg))

	select {
	case ev := <-inbox:
		mu, ok := ev.(*event.MarketUpdateEvent)
		if !ok {
			t.Fatalf("expected a market update, got %T", ev)
		}
		defer event.ReleaseMarketUpdateEvent(mu)

		if mu.Seq != 1 {
			t.Errorf("Seq = %d; want 1", mu.Seq)
		}
		if mu.Symbol != "EURUSD" || mu.Strategy != "ATMF" || mu.Tenor != "1M" {
			t.Errorf("topic = %s/%s/%s", mu.Symbol, mu.Strategy, mu.Tenor)
		}
		if len(mu.Entries) != 2 {
			t.Fatalf("entries = %d; want 2", len(mu.Entries))
		}
		bid := mu.Entries[0]
		if bid.Price == nil || *bid.Price != 1_035_500 {
			t.Errorf("bid price = %v; want 1035500", bid.Price)
		}
		if bid.Size == nil || *bid.Size != 10 {
			t.Errorf("bid size = %v; want 10", bid.Size)
		}
		if bid.Firm != "BANKA" || bid.User != "x@banka.com" {
			t.Errorf("attribution lost: %+v", bid)
		}
	default:
		t.Fatal("no event forwarded")
	}
}

func TestWorker_AbsentPriceMeansPulled(t *testing.T) {
	inbox := make(chan event.Event, 4)
	w := newTestWorker(inbox)

	msg := `{
		"msg_type": "W",
		"symbol": "EURUSD", "strategy": "ATMF", "tenor": "1M", "ts": 1,
		"entries": [{"side": "BID", "order_id": "b1", "size": "10"}]
	}`
	w.OnMessage(context.Background(), []byte(msg))

	ev := (<-inbox).(*event.MarketUpdateEvent)
	defer event.ReleaseMarketUpdateEvent(ev)

	if ev.Entries[0].Price != nil {
		t.Errorf("absent price must decode to nil, got %v", *ev.Entries[0].Price)
	}
	if ev.Entries[0].Size == nil {
		t.Error("present size must survive")
	}
}

func TestWorker_DecodesOrderResponse(t *testing.T) {
	inbox := make(chan event.Event, 4)
	w := newTestWorker(inbox)

	msg := `{"msg_type": "R", "ts": 1704067200000, "order_id": "ord-9", "success": false, "reason": "price off market"}`
	w.OnMessage(context.Background(), []byte(msg))

	select {
	case ev := <-inbox:
		resp, ok := ev.(*event.OrderResponseEvent)
		if !ok {
			t.Fatalf("expected an order response, got %T", ev)
		}
		if resp.OrderID != "ord-9" || resp.Success || resp.Reason != "price off market" {
			t.Errorf("unexpected response: %+v", resp)
		}
	default:
		t.Fatal("no event forwarded")
	}
}

func TestWorker_IgnoresUnknownAndMalformed(t *testing.T) {
	inbox := make(chan event.Event, 4)
	w := newTestWorker(inbox)

	w.OnMessage(context.Background(), []byte(`{"msg_type": "pong"}`))
	w.OnMessage(context.Background(), []byte(`not json at all`))

	select {
	case ev := <-inbox:
		t.Errorf("nothing should have been forwarded, got %T", ev)
	default:
	}
}

func TestWorker_FullInboxDropsNotBlocks(t *testing.T) {
	inbox := make(chan event.Event, 1)
	w := newTestWorker(inbox)

	msg := `{"msg_type": "W", "symbol": "EURUSD", "strategy": "ATMF", "tenor": "1M", "ts": 1, "entries": []}`
	w.OnMessage(context.Background(), []byte(msg))
	// Second message must not block with the buffer full
	w.OnMessage(context.Background(), []byte(msg))

	ev := (<-inbox).(*event.MarketUpdateEvent)
	event.ReleaseMarketUpdateEvent(ev)
	select {
	case <-inbox:
		t.Error("overflowing event should have been dropped")
	default:
	}
}
