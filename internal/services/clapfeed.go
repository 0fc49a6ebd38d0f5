package services

import (
	"sync"
)

// ClapEvent is pushed to viewers of a post whenever its aggregate changes.
type ClapEvent struct {
	PostID uint `json:"post_id"`
	Claps  int  `json:"claps"`
}

// ClapFeed fans clap-count updates out to subscribed viewers. Delivery is
// fire-and-forget: at most once per subscriber, no ordering guarantee across
// clients, no retry.
type ClapFeed struct {
	mu   sync.Mutex
	subs map[uint]map[chan ClapEvent]struct{}
}

var (
	clapFeed     *ClapFeed
	clapFeedOnce sync.Once
)

// GetClapFeed returns the singleton feed.
func GetClapFeed() *ClapFeed {
	clapFeedOnce.Do(func() {
		clapFeed = &ClapFeed{
			subs: make(map[uint]map[chan ClapEvent]struct{}),
		}
	})
	return clapFeed
}

// Subscribe registers a viewer for one post and returns the event channel
// plus a cancel func. The channel is buffered; a subscriber that cannot keep
// up just misses events.
func (f *ClapFeed) Subscribe(postID uint) (chan ClapEvent, func()) {
	ch := make(chan ClapEvent, 8)

	f.mu.Lock()
	if f.subs[postID] == nil {
		f.subs[postID] = make(map[chan ClapEvent]struct{})
	}
	f.subs[postID][ch] = struct{}{}
	f.mu.Unlock()

	cancel := func() {
		f.mu.Lock()
		if set, ok := f.subs[postID]; ok {
			delete(set, ch)
			if len(set) == 0 {
				delete(f.subs, postID)
			}
		}
		f.mu.Unlock()
	}
	return ch, cancel
}

// Broadcast pushes the new aggregate to every current viewer of the post.
func (f *ClapFeed) Broadcast(postID uint, claps int) {
	ev := ClapEvent{PostID: postID, Claps: claps}

	f.mu.Lock()
	for ch := range f.subs[postID] {
		select {
		case ch <- ev:
		default:
			// Slow subscriber, drop the event
		}
	}
	f.mu.Unlock()
}
