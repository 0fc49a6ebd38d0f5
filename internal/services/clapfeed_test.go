package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestFeed() *ClapFeed {
	return &ClapFeed{subs: make(map[uint]map[chan ClapEvent]struct{})}
}

func TestClapFeedBroadcastReachesSubscriber(t *testing.T) {
	feed := newTestFeed()

	ch, cancel := feed.Subscribe(1)
	defer cancel()

	feed.Broadcast(1, 7)

	select {
	case ev := <-ch:
		assert.Equal(t, uint(1), ev.PostID)
		assert.Equal(t, 7, ev.Claps)
	default:
		t.Fatal("expected a buffered event")
	}
}

func TestClapFeedScopedToPost(t *testing.T) {
	feed := newTestFeed()

	ch1, cancel1 := feed.Subscribe(1)
	defer cancel1()
	ch2, cancel2 := feed.Subscribe(2)
	defer cancel2()

	feed.Broadcast(1, 3)

	require.Len(t, ch1, 1)
	assert.Len(t, ch2, 0, "viewers of other posts must not receive the event")
}

func TestClapFeedCancelStopsDelivery(t *testing.T) {
	feed := newTestFeed()

	ch, cancel := feed.Subscribe(1)
	cancel()

	feed.Broadcast(1, 3)
	assert.Len(t, ch, 0)
}

func TestClapFeedDropsEventsForSlowSubscriber(t *testing.T) {
	feed := newTestFeed()

	ch, cancel := feed.Subscribe(1)
	defer cancel()

	// Fill the buffer and then some; Broadcast must never block
	for i := 0; i < 20; i++ {
		feed.Broadcast(1, i)
	}

	assert.Equal(t, cap(ch), len(ch), "excess events are dropped, not queued")
}
