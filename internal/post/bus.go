package post

import (
	"sync"
	"time"

	"teklip/marketplace/internal/model"
)

const (
	EventCreated   = "post_created"
	EventUpdated   = "post_updated"
	EventModerated = "post_moderated"
	EventDeleted   = "post_deleted"
)

type Event struct {
	Type    string           `json:"type"`
	PostID  string           `json:"postId"`
	OwnerID string           `json:"-"`
	Status  model.PostStatus `json:"status"`
	Time    time.Time        `json:"time"`
}

// Bus fans post events out to in-process subscribers. Slow subscribers
// miss events rather than block publishers.
type Bus struct {
	mu   sync.Mutex
	subs map[chan Event]string
}

func NewBus() *Bus {
	return &Bus{subs: make(map[chan Event]string)}
}

// Subscribe returns a channel receiving events for ownerID's posts, or for
// every post when ownerID is empty.
func (b *Bus) Subscribe(ownerID string) chan Event {
	ch := make(chan Event, 32)
	b.mu.Lock()
	b.subs[ch] = ownerID
	b.mu.Unlock()
	return ch
}

func (b *Bus) Unsubscribe(ch chan Event) {
	if ch == nil {
		return
	}
	b.mu.Lock()
	_, ok := b.subs[ch]
	delete(b.subs, ch)
	b.mu.Unlock()
	if ok {
		close(ch)
	}
}

func (b *Bus) Publish(ev Event) {
	if ev.Time.IsZero() {
		ev.Time = time.Now().UTC()
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	for ch, owner := range b.subs {
		if owner != "" && owner != ev.OwnerID {
			continue
		}
		select {
		case ch <- ev:
		default:
		}
	}
}
