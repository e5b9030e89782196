package event

import (
	"sync"
)

// Market updates are the hot-path event; they are pooled so a busy feed does
// not hammer the GC. Order responses are rare and allocated normally.
var marketUpdatePool = sync.Pool{
	New: func() any {
		return &MarketUpdateEvent{}
	},
}

// AcquireMarketUpdateEvent returns a reset event from the pool.
func AcquireMarketUpdateEvent() *MarketUpdateEvent {
	return marketUpdatePool.Get().(*MarketUpdateEvent)
}

// ReleaseMarketUpdateEvent resets the event and returns it to the pool. The
// caller must not touch the event afterwards.
func ReleaseMarketUpdateEvent(ev *MarketUpdateEvent) {
	entries := ev.Entries[:0]
	*ev = MarketUpdateEvent{}
	ev.Entries = entries
	marketUpdatePool.Put(ev)
}

// Warmup pre-populates the pool so the first burst of ticks allocates
// nothing.
func Warmup() {
	const warm = 64
	evs := make([]*MarketUpdateEvent, 0, warm)
	for i := 0; i < warm; i++ {
		evs = append(evs, AcquireMarketUpdateEvent())
	}
	for _, ev := range evs {
		ReleaseMarketUpdateEvent(ev)
	}
}
