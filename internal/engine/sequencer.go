package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/punishbig2/StreamSystems-sub002/internal/depth"
	"github.com/punishbig2/StreamSystems-sub002/internal/domain"
	"github.com/punishbig2/StreamSystems-sub002/internal/event"
	"github.com/punishbig2/StreamSystems-sub002/internal/execution"
	"github.com/punishbig2/StreamSystems-sub002/internal/run"
	"github.com/punishbig2/StreamSystems-sub002/internal/storage"
	"github.com/punishbig2/StreamSystems-sub002/pkg/quant"
)

// BookKey identifies one run blotter: one symbol+strategy.
type BookKey struct {
	Symbol   string
	Strategy string
}

type depthKey struct {
	TopicKey
	Side domain.OrderType
}

// RunDefaults carries the per-deployment run parameters every new book
// starts with.
type RunDefaults struct {
	BidSize       quant.Size
	OfrSize       quant.Size
	PriceDecimals int
}

// Sequencer is the core single-threaded event processor. It owns every run
// blotter and every depth book; all mutations happen on its goroutine in
// strict FIFO order, which also gives per-row FIFO for free.
type Sequencer struct {
	inbox    chan event.Event
	runs     map[BookKey]run.State
	depths   map[depthKey][]domain.Order
	nextSeq  uint64
	store    *storage.EventStore
	hub      *Hub
	identity domain.Personality
	defaults RunDefaults

	// Boundary: notifies the UI binding of blotter changes.
	onStateUpdate func(BookKey, run.State)

	// Order-entry venue; see AttachExecution.
	venue execution.Execution

	// Guards runs and depths. Feed mutations happen on the sequencer
	// goroutine, order-entry actions on the caller's; both hold the write
	// lock for their whole read-modify-write.
	mu sync.RWMutex
}

// NewSequencer creates a new sequencer instance.
func NewSequencer(inboxSize int, store *storage.EventStore, hub *Hub, identity domain.Personality, defaults RunDefaults, onUpdate func(BookKey, run.State)) *Sequencer {
	return &Sequencer{
		inbox:         make(chan event.Event, inboxSize),
		runs:          make(map[BookKey]run.State),
		depths:        make(map[depthKey][]domain.Order),
		nextSeq:       1,
		store:         store,
		hub:           hub,
		identity:      identity,
		defaults:      defaults,
		onStateUpdate: onUpdate,
	}
}

// Inbox returns the event channel. External workers send events here.
func (s *Sequencer) Inbox() chan<- event.Event {
	return s.inbox
}

// Run starts the main event loop. This MUST be run in a single goroutine.
func (s *Sequencer) Run(ctx context.Context) {
	slog.Info("Sequencer started (single-thread hotpath)")

	defer func() {
		if r := recover(); r != nil {
			slog.Error("CRITICAL_PANIC_DETECTED", slog.Any("panic", r))
			s.DumpState("panic_dump.json")
			panic(fmt.Sprintf("HALTED: %v", r))
		}
	}()

	for {
		select {
		case <-ctx.Done():
			slog.Info("Sequencer stopping...")
			return
		case ev := <-s.inbox:
			s.processEvent(ev)
		}
	}
}

// ValidateSequence checks the event sequence against the expected one and
// reports whether the event should be applied. Duplicates are skipped (the
// reducer is idempotent anyway, but skipping avoids re-persisting), small
// gaps are tolerated with a fast-forward, large gaps halt.
func (s *Sequencer) ValidateSequence(evSeq uint64) bool {
	expected := s.nextSeq
	if evSeq == expected {
		return true
	}

	diff := int64(evSeq) - int64(expected)

	if diff < 0 {
		slog.Warn("SEQUENCE_DUPLICATE_IGNORED", slog.Uint64("expected", expected), slog.Uint64("got", evSeq))
		return false
	}

	// Small gaps are availability over strictness; a state resync belongs
	// to the transport layer.
	if diff <= 10 {
		slog.Warn("SEQUENCE_GAP_TOLERATED",
			slog.Uint64("expected", expected),
			slog.Uint64("got", evSeq),
			slog.Int64("gap", diff))
		s.nextSeq = evSeq
		return true
	}

	panic(fmt.Sprintf("SEQUENCE_GAP_FATAL: expected %d, got %d", expected, evSeq))
}

func (s *Sequencer) processEvent(ev event.Event) {
	// 1. Sequence check (skip duplicates, tolerate small gaps)
	if !s.ValidateSequence(ev.GetSeq()) {
		return
	}

	// 2. WAL-first: persistence
	if s.store != nil {
		if err := s.store.SaveEvent(context.Background(), ev); err != nil {
			panic(fmt.Sprintf("PERSISTENCE_FAILURE: %v", err))
		}
	}

	// 3. Logic dispatch
	s.dispatch(ev)

	// 4. Increment sequence
	s.nextSeq++
}

// ReplayEvent processes an event synchronously without WAL logging. It
// applies the same sequence discipline as the live path: duplicates are
// skipped and small gaps fast-forward. The WAL legitimately contains the
// holes the live path tolerated, so a stricter check here would make a
// process that ever saw a feed gap unable to restart from its own WAL.
func (s *Sequencer) ReplayEvent(ev event.Event) {
	if !s.ValidateSequence(ev.GetSeq()) {
		return
	}
	s.dispatch(ev)
	s.nextSeq++
}

func (s *Sequencer) dispatch(ev event.Event) {
	switch e := ev.(type) {
	case *event.MarketUpdateEvent:
		s.handleMarketUpdate(e)
	case *event.OrderResponseEvent:
		s.handleOrderResponse(e)
	default:
		slog.Warn("Unknown event type", slog.Any("type", ev.GetType()))
	}
}

// RecoverFromWAL restores state by replaying all events from the WAL, using
// the same dispatch path as live processing.
func (s *Sequencer) RecoverFromWAL(ctx context.Context) error {
	if s.store == nil {
		slog.Info("No store configured, starting fresh")
		return nil
	}

	lastSeq, err := s.store.GetLastSeq(ctx)
	if err != nil {
		return fmt.Errorf("failed to get last seq: %w", err)
	}
	if lastSeq == 0 {
		slog.Info("WAL is empty, starting fresh")
		return nil
	}

	events, err := s.store.LoadEvents(ctx, 1)
	if err != nil {
		return fmt.Errorf("failed to load events: %w", err)
	}

	slog.Info("Replaying events from WAL", slog.Int("count", len(events)))
	for _, ev := range events {
		s.ReplayEvent(ev)
	}

	slog.Info("State recovered from WAL", slog.Uint64("next_seq", s.nextSeq))
	return nil
}

// handleMarketUpdate rebuilds the depth books for the tenor from the
// contributed entries, then pushes each side's top-of-book (with size
// aggregated at the best price) through the run reducer.
func (s *Sequencer) handleMarketUpdate(e *event.MarketUpdateEvent) {
	key := BookKey{Symbol: e.Symbol, Strategy: e.Strategy}
	rowID := domain.RowID(e.Symbol, e.Strategy, e.Tenor)
	topic := TopicKey{Symbol: e.Symbol, Strategy: e.Strategy, Tenor: e.Tenor}

	// The whole read-modify-write runs under the lock so an order action
	// from the UI goroutine cannot interleave and get lost.
	s.mu.Lock()
	st, ok := s.runs[key]
	if !ok {
		st = run.NewState(s.defaults.BidSize, s.defaults.OfrSize)
		st.IsLoading = false
	}
	st = run.EnsureRow(st, e.Symbol, e.Strategy, e.Tenor)

	for _, side := range []domain.OrderType{domain.Bid, domain.Ofr} {
		book := s.entriesToOrders(e, side)
		s.setDepthLocked(depthKey{TopicKey: topic, Side: side}, book)

		ord := s.topOfBookOrder(e, side, book)
		st = run.Reduce(st, run.Action{
			Kind:  run.ActUpdateOrder,
			RowID: rowID,
			Side:  side,
			Order: ord,
		})

		if s.hub != nil {
			update := DepthUpdate{Key: topic, Side: side, Orders: book}
			if top, ok := depth.TopOfBook(book); ok {
				update.TopOfBook = &top
				update.AggregatedSize = depth.AggregatedSize(book, nil, s.defaults.PriceDecimals)
			}
			s.hub.Publish(update)
		}
	}

	if dark := bestDarkPrice(e); dark != nil {
		st = run.Reduce(st, run.Action{Kind: run.ActSetDarkPrice, RowID: rowID, Price: dark})
	}

	s.runs[key] = st
	s.mu.Unlock()

	if s.onStateUpdate != nil {
		s.onStateUpdate(key, st)
	}
}

// handleOrderResponse settles the in-flight order on whichever book holds
// it. Books not holding the order come back with reference-identical state
// and are skipped.
func (s *Sequencer) handleOrderResponse(e *event.OrderResponseEvent) {
	kind := run.ActOrderConfirmed
	if !e.Success {
		kind = run.ActOrderRejected
		slog.Warn("Order rejected by broker",
			slog.String("order_id", e.OrderID),
			slog.String("reason", e.Reason))
	}

	var (
		updatedKey BookKey
		updated    run.State
		found      bool
	)
	s.mu.Lock()
	for key, st := range s.runs {
		next := run.Reduce(st, run.Action{Kind: kind, OrderID: e.OrderID})
		if next.SharesOrders(st) {
			continue
		}
		s.runs[key] = next
		updatedKey, updated, found = key, next, true
		break
	}
	s.mu.Unlock()

	if found && s.onStateUpdate != nil {
		s.onStateUpdate(updatedKey, updated)
	}
}

func (s *Sequencer) entriesToOrders(e *event.MarketUpdateEvent, side domain.OrderType) []domain.Order {
	orders := make([]domain.Order, 0, len(e.Entries))
	for _, entry := range e.Entries {
		typ := domain.ParseOrderType(entry.Type)
		if typ != side {
			continue
		}
		ord := domain.Order{
			OrderID:  entry.OrderID,
			Tenor:    e.Tenor,
			Symbol:   e.Symbol,
			Strategy: e.Strategy,
			User:     entry.User,
			Firm:     entry.Firm,
			Price:    entry.Price,
			Size:     entry.Size,
			Type:     typ,
		}
		ord.Status = domain.StatusActive.With(ord.PersonalityStatus(s.identity))
		orders = append(orders, ord.Clone())
	}
	return orders
}

// topOfBookOrder collapses one side's book into the order the blotter row
// shows: the best price with size aggregated at that price. An empty book
// yields a cancelled empty order, so clearing a side of a live row is
// subject to the no-silent-deactivation rule.
func (s *Sequencer) topOfBookOrder(e *event.MarketUpdateEvent, side domain.OrderType, book []domain.Order) domain.Order {
	top, ok := depth.TopOfBook(book)
	if !ok {
		empty := domain.NewEmptyOrder(e.Symbol, e.Strategy, e.Tenor, side)
		empty.Status = domain.StatusCancelled
		return empty
	}
	ord := top.Clone()
	ord.Size = depth.AggregatedSize(book, nil, s.defaults.PriceDecimals)
	ord.Status = ord.Status.With(domain.StatusHaveOrders)
	if len(book) > 1 {
		ord.Status = ord.Status.With(domain.StatusHasDepth)
	}
	return ord
}

func bestDarkPrice(e *event.MarketUpdateEvent) *quant.PriceMicros {
	var best *quant.PriceMicros
	for _, entry := range e.Entries {
		if domain.ParseOrderType(entry.Type) != domain.DarkPool || entry.Price == nil {
			continue
		}
		if best == nil || *entry.Price < *best {
			p := *entry.Price
			best = &p
		}
	}
	return best
}

// setDepthLocked stores one side's book. Caller holds mu.
func (s *Sequencer) setDepthLocked(key depthKey, book []domain.Order) {
	if len(book) == 0 {
		delete(s.depths, key)
	} else {
		s.depths[key] = book
	}
}

// GetRunState returns a snapshot of one book's blotter state (external
// read). The tables follow a copy-on-write discipline, so the returned value
// is safe to read concurrently with the hotpath.
func (s *Sequencer) GetRunState(key BookKey) (run.State, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, ok := s.runs[key]
	return st, ok
}

// GetDepth returns the current contributed book for one topic side.
func (s *Sequencer) GetDepth(key TopicKey, side domain.OrderType) []domain.Order {
	s.mu.RLock()
	defer s.mu.RUnlock()
	book := s.depths[depthKey{TopicKey: key, Side: side}]
	out := make([]domain.Order, len(book))
	copy(out, book)
	return out
}

// GetNextSeq returns the next expected sequence number (for tests and
// monitoring).
func (s *Sequencer) GetNextSeq() uint64 {
	return s.nextSeq
}

// ProcessEventForTest runs one event through the live path synchronously.
func (s *Sequencer) ProcessEventForTest(ev event.Event) {
	s.processEvent(ev)
}

// DumpState writes the entire internal state to a file (for post-mortem).
func (s *Sequencer) DumpState(filename string) {
	slog.Info("Dumping internal state...", slog.String("file", filename))

	books := make(map[string]run.State, len(s.runs))
	for key, st := range s.runs {
		books[domain.BookID(key.Symbol, key.Strategy)] = st
	}

	data := struct {
		NextSeq uint64               `json:"next_seq"`
		Books   map[string]run.State `json:"books"`
	}{
		NextSeq: s.nextSeq,
		Books:   books,
	}

	b, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		slog.Error("Failed to marshal state", slog.Any("error", err))
		return
	}

	if err := os.WriteFile(filename, b, 0644); err != nil {
		slog.Error("Failed to write state dump", slog.Any("error", err))
	}
}
