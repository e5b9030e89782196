// Package backtest replays recorded event logs through a fresh sequencer for
// deterministic reconstruction and offline analysis.
package backtest

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/punishbig2/StreamSystems-sub002/internal/engine"
	"github.com/punishbig2/StreamSystems-sub002/internal/storage"
)

// Replayer reads event logs from SQLite and feeds them into the Sequencer.
type Replayer struct {
	store *storage.EventStore
}

// NewReplayer creates a new replayer instance.
func NewReplayer(dbPath string) (*Replayer, error) {
	store, err := storage.NewEventStore(dbPath)
	if err != nil {
		return nil, err
	}

	return &Replayer{store: store}, nil
}

// Close releases the underlying store.
func (r *Replayer) Close() error {
	return r.store.Close()
}

// RunReplay replays all events into the provided sequencer, synchronously
// for deterministic reconstruction.
func (r *Replayer) RunReplay(ctx context.Context, seq *engine.Sequencer) error {
	events, err := r.store.LoadEvents(ctx, 1)
	if err != nil {
		return fmt.Errorf("failed to load events: %w", err)
	}

	slog.Info("Replaying event log", slog.Int("count", len(events)))

	for _, ev := range events {
		seq.ReplayEvent(ev)
	}

	return nil
}
