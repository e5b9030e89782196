package engine

import (
	"testing"

	"github.com/punishbig2/StreamSystems-sub002/internal/domain"
)

var hubTopic = TopicKey{Symbol: "EURUSD", Strategy: "ATMF", Tenor: "1M"}

func TestHub_PublishToSubscriber(t *testing.T) {
	h := NewHub()
	ch, cancel := h.Subscribe(hubTopic, 4)
	defer cancel()

	h.Publish(DepthUpdate{Key: hubTopic, Side: domain.Bid})

	select {
	case u := <-ch:
		if u.Key != hubTopic || u.Side != domain.Bid {
			t.Errorf("unexpected update: %+v", u)
		}
	default:
		t.Fatal("subscriber did not receive the update")
	}
}

func TestHub_TopicsAreIsolated(t *testing.T) {
	h := NewHub()
	other := TopicKey{Symbol: "GBPUSD", Strategy: "ATMF", Tenor: "1M"}

	ch, cancel := h.Subscribe(other, 4)
	defer cancel()

	h.Publish(DepthUpdate{Key: hubTopic, Side: domain.Bid})

	select {
	case u := <-ch:
		t.Errorf("subscriber of another topic got %+v", u)
	default:
	}
}

func TestHub_SlowSubscriberDropsNotBlocks(t *testing.T) {
	h := NewHub()
	ch, cancel := h.Subscribe(hubTopic, 1)
	defer cancel()

	// Second publish must not block even though the buffer is full
	h.Publish(DepthUpdate{Key: hubTopic, Side: domain.Bid})
	h.Publish(DepthUpdate{Key: hubTopic, Side: domain.Ofr})

	<-ch
	select {
	case u := <-ch:
		t.Errorf("overflowing update should have been dropped, got %+v", u)
	default:
	}
}

func TestHub_CancelIsIdempotent(t *testing.T) {
	h := NewHub()
	_, cancel := h.Subscribe(hubTopic, 1)

	cancel()
	cancel() // Must not panic on double close

	if got := h.SubscriberCount(hubTopic); got != 0 {
		t.Errorf("SubscriberCount = %d after cancel; want 0", got)
	}

	// Publishing to a topic with no subscribers is a no-op
	h.Publish(DepthUpdate{Key: hubTopic, Side: domain.Bid})
}

func TestHub_SubscriberCount(t *testing.T) {
	h := NewHub()
	_, c1 := h.Subscribe(hubTopic, 1)
	_, c2 := h.Subscribe(hubTopic, 1)

	if got := h.SubscriberCount(hubTopic); got != 2 {
		t.Errorf("SubscriberCount = %d; want 2", got)
	}

	c1()
	if got := h.SubscriberCount(hubTopic); got != 1 {
		t.Errorf("SubscriberCount = %d after one cancel; want 1", got)
	}
	c2()
}
