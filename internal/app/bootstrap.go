package app

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/punishbig2/StreamSystems-sub002/internal/event"
	"github.com/punishbig2/StreamSystems-sub002/internal/infra"
	"github.com/punishbig2/StreamSystems-sub002/internal/storage"
	"github.com/punishbig2/StreamSystems-sub002/pkg/quant"
)

// Metadata keys for user preferences that survive restarts.
const (
	metaDefaultBidSize = "run:default_bid_size"
	metaDefaultOfrSize = "run:default_ofr_size"
)

// Bootstrap orchestrates the application startup sequence
type Bootstrap struct {
	Config     *infra.Config
	EventStore *storage.EventStore
	Snapshots  *storage.SnapshotManager

	unlock func()
}

// NewBootstrap creates a new Bootstrap instance
func NewBootstrap() *Bootstrap {
	return &Bootstrap{}
}

// Initialize performs core system initialization (DB, Dir, etc.)
func (b *Bootstrap) Initialize() error {
	slog.Info("🚀 Bootstrapping FX Pods...")

	// 0. Runtime Warmup (GC Optimization)
	event.Warmup()
	slog.Info("🔥 Event Pool Warmed up")

	// 1. Load Config (Dynamic Path Resolution)
	cfg, err := infra.LoadConfig(infra.ResolveConfigPath())
	if err != nil {
		return err // Let main handle the error
	}
	b.Config = cfg

	// 2. Setup Logger
	logger := infra.NewLogger(cfg.Logging.Level)
	slog.SetDefault(logger)

	// 3. Initialize EventStore (Single-Writer WAL DB)
	// Data isolation per mode: _workspace/data/{mode}/events.db
	mode := strings.ToLower(cfg.Trading.Mode)
	if mode == "" {
		mode = "mock"
	}

	workDir := infra.GetWorkspaceDir()
	dataDir := filepath.Join(workDir, "data", mode)
	logDir := filepath.Join(workDir, "logs", mode)

	if err := infra.EnsureDir(dataDir); err != nil {
		return fmt.Errorf("failed to create data dir: %w", err)
	}
	if err := infra.EnsureDir(logDir); err != nil {
		return fmt.Errorf("failed to create log dir: %w", err)
	}

	// 3.1 Singleton instance lock: two processes sharing the WAL would
	// corrupt the sequence.
	unlock, err := infra.CreateLockFile(workDir)
	if err != nil {
		return err
	}
	b.unlock = unlock

	dbPath := filepath.Join(dataDir, "events.db")
	evStore, err := storage.NewEventStore(dbPath)
	if err != nil {
		return err
	}
	b.EventStore = evStore
	slog.Info("✅ EventStore initialized (WAL-mode)", "path", dbPath, "mode", mode)

	// 4. Snapshot manager for fast recovery
	b.Snapshots = storage.NewSnapshotManager(filepath.Join(dataDir, "snapshots"))

	return nil
}

// Shutdown releases held resources, including the instance lock.
func (b *Bootstrap) Shutdown() {
	if b.EventStore != nil {
		b.EventStore.Close()
	}
	if b.unlock != nil {
		b.unlock()
	}
}

// RunDefaults returns the default run sizes, preferring the values the user
// persisted over the config file.
func (b *Bootstrap) RunDefaults(ctx context.Context) (quant.Size, quant.Size) {
	bid := quant.Size(b.Config.Run.DefaultBidSize)
	ofr := quant.Size(b.Config.Run.DefaultOfrSize)

	if v, err := b.EventStore.GetMetadata(ctx, metaDefaultBidSize); err == nil && v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
			bid = quant.Size(n)
		}
	}
	if v, err := b.EventStore.GetMetadata(ctx, metaDefaultOfrSize); err == nil && v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
			ofr = quant.Size(n)
		}
	}
	return bid, ofr
}

// SaveRunDefaults persists the user's default sizes.
func (b *Bootstrap) SaveRunDefaults(ctx context.Context, bid, ofr quant.Size) {
	now := time.Now().UnixMicro()
	if err := b.EventStore.UpsertMetadata(ctx, metaDefaultBidSize,
		strconv.FormatInt(int64(bid), 10), now); err != nil {
		slog.Warn("Failed to persist default bid size", "err", err)
	}
	if err := b.EventStore.UpsertMetadata(ctx, metaDefaultOfrSize,
		strconv.FormatInt(int64(ofr), 10), now); err != nil {
		slog.Warn("Failed to persist default ofr size", "err", err)
	}
}
