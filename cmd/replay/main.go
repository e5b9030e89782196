// Command replay rebuilds run state from a recorded event log and prints the
// final blotters as JSON. Useful for post-mortems and determinism checks.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/punishbig2/StreamSystems-sub002/backtest"
	"github.com/punishbig2/StreamSystems-sub002/internal/domain"
	"github.com/punishbig2/StreamSystems-sub002/internal/engine"
)

func main() {
	dbPath := flag.String("db", "events.db", "path to the event log database")
	email := flag.String("email", "", "user email for ownership flags")
	firm := flag.String("firm", "", "user firm for same-bank flags")
	dump := flag.String("dump", "replay_state.json", "output file for the rebuilt state")
	flag.Parse()

	replayer, err := backtest.NewReplayer(*dbPath)
	if err != nil {
		slog.Error("Failed to open event log", slog.Any("error", err))
		os.Exit(1)
	}
	defer replayer.Close()

	seq := engine.NewSequencer(1, nil, nil,
		domain.Personality{Email: *email, Firm: *firm},
		engine.RunDefaults{BidSize: 10, OfrSize: 10, PriceDecimals: 4},
		nil)

	if err := replayer.RunReplay(context.Background(), seq); err != nil {
		slog.Error("Replay failed", slog.Any("error", err))
		os.Exit(1)
	}

	seq.DumpState(*dump)
	fmt.Printf("Replay complete: next_seq=%d, state written to %s\n",
		seq.GetNextSeq(), *dump)
}
