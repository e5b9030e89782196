package storage

import (
	"context"
	"os"
	"testing"

	"github.com/punishbig2/StreamSystems-sub002/internal/event"
	"github.com/punishbig2/StreamSystems-sub002/pkg/quant"
)

func TestEventStore_SaveAndLoad(t *testing.T) {
	dbPath := "test_events.db"
	defer os.Remove(dbPath)
	defer os.Remove(dbPath + "-wal")
	defer os.Remove(dbPath + "-shm")

	store, err := NewEventStore(dbPath)
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	defer store.Close()

	ctx := context.Background()

	price := quant.PriceMicros(1_035_500)
	size := quant.Size(10)
	ev1 := &event.MarketUpdateEvent{
		BaseEvent: event.BaseEvent{Seq: 1, Ts: quant.TimeStamp(1000)},
		Symbol:    "EURUSD",
		Strategy:  "ATMF",
		Tenor:     "1M",
		Entries: []event.MarketEntry{
			{Type: "BID", OrderID: "o-1", Price: &price, Size: &size, Firm: "BANKA", User: "trader@banka.com"},
		},
	}
	ev2 := &event.OrderResponseEvent{
		BaseEvent: event.BaseEvent{Seq: 2, Ts: quant.TimeStamp(2000)},
		OrderID:   "o-1",
		Success:   true,
	}

	if err := store.SaveEvent(ctx, ev1); err != nil {
		t.Fatalf("Failed to save ev1: %v", err)
	}
	if err := store.SaveEvent(ctx, ev2); err != nil {
		t.Fatalf("Failed to save ev2: %v", err)
	}

	loaded, err := store.LoadEvents(ctx, 1)
	if err != nil {
		t.Fatalf("Failed to load events: %v", err)
	}

	if len(loaded) != 2 {
		t.Fatalf("Expected 2 events, got %d", len(loaded))
	}

	mu, ok := loaded[0].(*event.MarketUpdateEvent)
	if !ok {
		t.Fatalf("Expected first event to be a market update, got %T", loaded[0])
	}
	if mu.GetSeq() != 1 {
		t.Errorf("Event 1 seq mismatch: got %d", mu.GetSeq())
	}
	if len(mu.Entries) != 1 || mu.Entries[0].Price == nil || *mu.Entries[0].Price != price {
		t.Errorf("Event 1 entries mismatch: %+v", mu.Entries)
	}

	or, ok := loaded[1].(*event.OrderResponseEvent)
	if !ok {
		t.Fatalf("Expected second event to be an order response, got %T", loaded[1])
	}
	if or.GetSeq() != 2 || !or.Success {
		t.Errorf("Event 2 mismatch: %+v", or)
	}
}

func TestEventStore_GetLastSeq(t *testing.T) {
	dbPath := "test_lastseq.db"
	defer os.Remove(dbPath)
	defer os.Remove(dbPath + "-wal")
	defer os.Remove(dbPath + "-shm")

	store, err := NewEventStore(dbPath)
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	defer store.Close()

	ctx := context.Background()

	// Empty DB should return 0
	lastSeq, err := store.GetLastSeq(ctx)
	if err != nil {
		t.Fatalf("GetLastSeq failed: %v", err)
	}
	if lastSeq != 0 {
		t.Errorf("Expected 0 for empty DB, got %d", lastSeq)
	}

	ev := &event.MarketUpdateEvent{
		BaseEvent: event.BaseEvent{Seq: 5, Ts: quant.TimeStamp(1000)},
		Symbol:    "EURUSD",
	}
	if err := store.SaveEvent(ctx, ev); err != nil {
		t.Fatalf("Failed to save event: %v", err)
	}

	ev2 := &event.MarketUpdateEvent{
		BaseEvent: event.BaseEvent{Seq: 10, Ts: quant.TimeStamp(2000)},
		Symbol:    "EURUSD",
	}
	if err := store.SaveEvent(ctx, ev2); err != nil {
		t.Fatalf("Failed to save event: %v", err)
	}

	// Should return highest seq
	lastSeq, err = store.GetLastSeq(ctx)
	if err != nil {
		t.Fatalf("GetLastSeq failed: %v", err)
	}
	if lastSeq != 10 {
		t.Errorf("Expected 10, got %d", lastSeq)
	}
}

func TestEventStore_Metadata(t *testing.T) {
	dbPath := "test_metadata.db"
	defer os.Remove(dbPath)
	defer os.Remove(dbPath + "-wal")
	defer os.Remove(dbPath + "-shm")

	store, err := NewEventStore(dbPath)
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	defer store.Close()

	ctx := context.Background()

	// Missing key returns empty, no error
	val, err := store.GetMetadata(ctx, "default_bid_size")
	if err != nil {
		t.Fatalf("GetMetadata failed: %v", err)
	}
	if val != "" {
		t.Errorf("Expected empty value for missing key, got %q", val)
	}

	if err := store.UpsertMetadata(ctx, "default_bid_size", "10", 1000); err != nil {
		t.Fatalf("UpsertMetadata failed: %v", err)
	}
	if err := store.UpsertMetadata(ctx, "default_bid_size", "25", 2000); err != nil {
		t.Fatalf("UpsertMetadata overwrite failed: %v", err)
	}

	val, err = store.GetMetadata(ctx, "default_bid_size")
	if err != nil {
		t.Fatalf("GetMetadata failed: %v", err)
	}
	if val != "25" {
		t.Errorf("Expected 25, got %q", val)
	}
}
