package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/punishbig2/StreamSystems-sub002/internal/app"
	"github.com/punishbig2/StreamSystems-sub002/internal/domain"
	"github.com/punishbig2/StreamSystems-sub002/internal/engine"
	"github.com/punishbig2/StreamSystems-sub002/internal/execution"
	"github.com/punishbig2/StreamSystems-sub002/internal/infra"
	"github.com/punishbig2/StreamSystems-sub002/internal/infra/feed"
	"github.com/punishbig2/StreamSystems-sub002/internal/run"

	_ "net/http/pprof" // For pprof profiling
)

func main() {
	// 1. Pprof Server (for performance profiling)
	go func() {
		// Localhost only for security
		slog.Info("🕵️ Pprof server started on localhost:6060")
		if err := http.ListenAndServe("localhost:6060", nil); err != nil {
			slog.Error("Pprof server failed", slog.Any("error", err))
		}
	}()

	// 2. System Bootstrapping
	bootstrap := app.NewBootstrap()
	if err := bootstrap.Initialize(); err != nil {
		slog.Error("❌ Bootstrapping failed", slog.Any("error", err))
		os.Exit(1)
	}
	defer bootstrap.Shutdown()

	cfg := bootstrap.Config
	infra.PrintBanner(cfg)

	// 3. Graceful Shutdown Context
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 4. Sequencer (The Hotpath Loop)
	defBid, defOfr := bootstrap.RunDefaults(ctx)
	identity := domain.Personality{
		Email:    cfg.User.Email,
		Firm:     cfg.User.Firm,
		IsBroker: cfg.User.IsBroker,
	}
	hub := engine.NewHub()
	seq := engine.NewSequencer(1024, bootstrap.EventStore, hub, identity,
		engine.RunDefaults{
			BidSize:       defBid,
			OfrSize:       defOfr,
			PriceDecimals: cfg.Run.PricePrecision,
		},
		func(key engine.BookKey, st run.State) {
			// UI binding hook; headless runs just log at debug.
			slog.Debug("Run state updated",
				slog.String("symbol", key.Symbol),
				slog.String("strategy", key.Strategy))
		})

	// 5. Recover state from WAL before accepting live events
	if err := seq.RecoverFromWAL(ctx); err != nil {
		slog.Error("❌ WAL recovery failed", slog.Any("error", err))
		os.Exit(1)
	}

	go seq.Run(ctx)
	slog.InfoContext(ctx, "✅ Sequencer (Hotpath) started")

	// 6. Order entry gateway
	nextSeq := seq.GetNextSeq() - 1
	factory := execution.NewFactory(cfg, seq.Inbox(), &nextSeq)
	exec, err := factory.CreateExecution()
	if err != nil {
		slog.Error("❌ Execution init failed", slog.Any("error", err))
		os.Exit(1)
	}
	// seq.SubmitOrder / seq.RequestCancel are the order-entry surface for
	// the UI binding; headless runs only receive.
	seq.AttachExecution(exec)

	// 7. Market feed worker (Gateway)
	worker := feed.NewWorker(cfg.Feed.WSURL, cfg.Feed.Symbols, cfg.Feed.Strategies,
		seq.Inbox(), &nextSeq)
	if err := worker.Connect(ctx); err != nil {
		slog.Error("Failed to connect feed", slog.Any("error", err))
	}
	defer worker.Disconnect()
	slog.InfoContext(ctx, "✅ Feed worker started",
		slog.Int("symbols", len(cfg.Feed.Symbols)),
		slog.Int("strategies", len(cfg.Feed.Strategies)))

	slog.InfoContext(ctx, "✨ FX Pods core fully operational. Press Ctrl+C to exit.")

	// Wait for shutdown signal
	<-ctx.Done()

	slog.InfoContext(ctx, "👋 Shutting down gracefully...")
}
