package event

import (
	"testing"

	"github.com/punishbig2/StreamSystems-sub002/pkg/quant"
)

func TestPool_ReleaseResetsEvent(t *testing.T) {
	ev := AcquireMarketUpdateEvent()
	ev.Seq = 42
	ev.Ts = quant.TimeStamp(1700000000000)
	ev.Symbol = "EURUSD"
	ev.Strategy = "ATMF"
	ev.Tenor = "1M"
	ev.Entries = append(ev.Entries, MarketEntry{
		Type:    "BID",
		OrderID: "o-1",
		Price:   quant.PricePtr(1_035_000),
		Size:    quant.SizePtr(10),
	})

	ReleaseMarketUpdateEvent(ev)

	got := AcquireMarketUpdateEvent()
	defer ReleaseMarketUpdateEvent(got)
	if got.Seq != 0 || got.Symbol != "" || got.Tenor != "" {
		t.Errorf("acquired event not reset: %+v", got)
	}
	if len(got.Entries) != 0 {
		t.Errorf("entries not cleared: %v", got.Entries)
	}
}

func TestPool_ReleasePreservesEntriesCapacity(t *testing.T) {
	ev := AcquireMarketUpdateEvent()
	for i := 0; i < 8; i++ {
		ev.Entries = append(ev.Entries, MarketEntry{OrderID: "x"})
	}
	capBefore := cap(ev.Entries)

	ReleaseMarketUpdateEvent(ev)

	// The same object comes back from the pool with its backing array intact
	got := AcquireMarketUpdateEvent()
	defer ReleaseMarketUpdateEvent(got)
	if got == ev && cap(got.Entries) != capBefore {
		t.Errorf("entries capacity lost across release: %d != %d", cap(got.Entries), capBefore)
	}
}

func TestWarmup(t *testing.T) {
	// Must be callable repeatedly without blowing up
	Warmup()
	Warmup()

	ev := AcquireMarketUpdateEvent()
	defer ReleaseMarketUpdateEvent(ev)
	if ev.Seq != 0 || len(ev.Entries) != 0 {
		t.Errorf("warmed event not clean: %+v", ev)
	}
}

func BenchmarkAcquireRelease(b *testing.B) {
	Warmup()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		ev := AcquireMarketUpdateEvent()
		ev.Entries = append(ev.Entries, MarketEntry{OrderID: "o-1"})
		ReleaseMarketUpdateEvent(ev)
	}
}
