package engine

import (
	"sync"

	"github.com/punishbig2/StreamSystems-sub002/internal/domain"
	"github.com/punishbig2/StreamSystems-sub002/pkg/quant"
)

// TopicKey identifies one depth topic: one tenor of one symbol+strategy.
// Structured key, not a synthesized string, so subscriptions cannot collide
// on creative symbol names.
type TopicKey struct {
	Symbol   string
	Strategy string
	Tenor    string
}

// DepthUpdate is the snapshot published whenever one side of a topic's book
// changes.
type DepthUpdate struct {
	Key            TopicKey
	Side           domain.OrderType
	Orders         []domain.Order
	TopOfBook      *domain.Order
	AggregatedSize *quant.Size
}

// Hub is the in-process observer for depth updates. Publishing never blocks
// the hotpath: a subscriber that cannot keep up misses updates rather than
// stalling reconciliation.
type Hub struct {
	mu   sync.RWMutex
	subs map[TopicKey][]chan DepthUpdate
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{
		subs: make(map[TopicKey][]chan DepthUpdate),
	}
}

// Subscribe registers interest in one topic. The returned cancel function
// removes the subscription and closes the channel; it is safe to call more
// than once.
func (h *Hub) Subscribe(key TopicKey, buffer int) (<-chan DepthUpdate, func()) {
	if buffer <= 0 {
		buffer = 1
	}
	ch := make(chan DepthUpdate, buffer)

	h.mu.Lock()
	h.subs[key] = append(h.subs[key], ch)
	h.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			subs := h.subs[key]
			for i, c := range subs {
				if c == ch {
					h.subs[key] = append(subs[:i:i], subs[i+1:]...)
					break
				}
			}
			if len(h.subs[key]) == 0 {
				delete(h.subs, key)
			}
			close(ch)
		})
	}
	return ch, cancel
}

// Publish fans the update out to current subscribers, dropping for any
// subscriber with a full buffer.
func (h *Hub) Publish(u DepthUpdate) {
	// Sends stay under the read lock so a concurrent cancel (which closes
	// under the write lock) can never race a send on a closed channel.
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, ch := range h.subs[u.Key] {
		select {
		case ch <- u:
		default:
			// Slow subscriber; it will catch up on the next tick.
		}
	}
}

// SubscriberCount reports the current number of subscriptions for a topic
// (for monitoring).
func (h *Hub) SubscriberCount(key TopicKey) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[key])
}
