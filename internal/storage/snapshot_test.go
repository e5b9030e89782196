package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/punishbig2/StreamSystems-sub002/internal/domain"
	"github.com/punishbig2/StreamSystems-sub002/internal/run"
	"github.com/punishbig2/StreamSystems-sub002/pkg/quant"
)

func TestSnapshot_SaveAndLoad(t *testing.T) {
	dir := filepath.Join(os.TempDir(), "snapshot_test")
	defer os.RemoveAll(dir)

	sm := NewSnapshotManager(dir)

	st := run.NewState(10, 10)
	st = run.EnsureRow(st, "EURUSD", "ATMF", "1M")
	rowID := domain.RowID("EURUSD", "ATMF", "1M")
	price := quant.PriceMicros(1_035_500)
	size := quant.Size(10)
	ord := domain.NewEmptyOrder("EURUSD", "ATMF", "1M", domain.Bid)
	ord.OrderID = "o-1"
	ord.Price = &price
	ord.Size = &size
	ord.Status = domain.StatusActive
	st = run.Reduce(st, run.Action{Kind: run.ActUpdateOrder, RowID: rowID, Side: domain.Bid, Order: ord})

	books := map[string]run.State{
		domain.BookID("EURUSD", "ATMF"): st,
	}
	snap := CreateSnapshot(100, books)

	if err := sm.Save(snap); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := sm.LoadLatest()
	if err != nil {
		t.Fatalf("LoadLatest failed: %v", err)
	}

	if loaded == nil {
		t.Fatal("Expected snapshot, got nil")
	}

	if loaded.Seq != 100 {
		t.Errorf("Expected seq 100, got %d", loaded.Seq)
	}

	book := loaded.Books[domain.BookID("EURUSD", "ATMF")]
	row := book.Row(rowID)
	if row == nil {
		t.Fatal("Expected row to survive the round trip")
	}
	if row.Bid.Price == nil || *row.Bid.Price != price {
		t.Errorf("Bid price mismatch after round trip: %+v", row.Bid)
	}
}

func TestSnapshot_LoadLatest_MultipleSnapshots(t *testing.T) {
	dir := filepath.Join(os.TempDir(), "snapshot_test2")
	defer os.RemoveAll(dir)

	sm := NewSnapshotManager(dir)

	for _, seq := range []uint64{10, 50, 30} {
		snap := &Snapshot{
			Seq:    seq,
			TsUnix: int64(seq),
			Books:  make(map[string]run.State),
		}
		if err := sm.Save(snap); err != nil {
			t.Fatalf("Save failed: %v", err)
		}
	}

	// Should load seq=50 (highest)
	loaded, err := sm.LoadLatest()
	if err != nil {
		t.Fatalf("LoadLatest failed: %v", err)
	}

	if loaded.Seq != 50 {
		t.Errorf("Expected latest seq 50, got %d", loaded.Seq)
	}
}

func TestSnapshot_LoadLatest_NoSnapshots(t *testing.T) {
	dir := filepath.Join(os.TempDir(), "snapshot_empty")
	defer os.RemoveAll(dir)

	sm := NewSnapshotManager(dir)

	loaded, err := sm.LoadLatest()
	if err != nil {
		t.Fatalf("LoadLatest failed: %v", err)
	}

	if loaded != nil {
		t.Errorf("Expected nil for empty dir, got %v", loaded)
	}
}

func TestSnapshot_Cleanup(t *testing.T) {
	dir := filepath.Join(os.TempDir(), "snapshot_cleanup")
	defer os.RemoveAll(dir)

	sm := NewSnapshotManager(dir)

	for seq := uint64(1); seq <= 5; seq++ {
		snap := &Snapshot{Seq: seq, TsUnix: int64(seq), Books: make(map[string]run.State)}
		if err := sm.Save(snap); err != nil {
			t.Fatalf("Save failed: %v", err)
		}
	}

	// Cleanup, keep only 2
	if err := sm.Cleanup(2); err != nil {
		t.Fatalf("Cleanup failed: %v", err)
	}

	entries, _ := os.ReadDir(dir)
	if len(entries) != 2 {
		t.Errorf("Expected 2 snapshots after cleanup, got %d", len(entries))
	}

	// Should keep seq 4 and 5
	loaded, _ := sm.LoadLatest()
	if loaded.Seq != 5 {
		t.Errorf("Expected seq 5 to remain, got %d", loaded.Seq)
	}
}
