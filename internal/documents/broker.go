package documents

import (
	"sync"

	"augenblick-backend/internal/shared/metrics"
)

const subscriberBuffer = 8

// Broker fans document snapshots out to live-query subscribers. Each write to
// a document publishes the full post-write snapshot to every watcher of that
// id. Delivery is at-most-once per snapshot: when a subscriber's buffer is
// full the oldest pending snapshot is dropped so the latest always wins.
type Broker struct {
	mu   sync.Mutex
	subs map[string]map[int]chan Document
	next int
}

func NewBroker() *Broker {
	return &Broker{subs: make(map[string]map[int]chan Document)}
}

// Subscribe registers a watcher for one document id. The cancel func must be
// called to release the subscription; after cancel the channel is closed.
func (b *Broker) Subscribe(id string) (<-chan Document, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch := make(chan Document, subscriberBuffer)
	if b.subs[id] == nil {
		b.subs[id] = make(map[int]chan Document)
	}
	key := b.next
	b.next++
	b.subs[id][key] = ch

	cancel := func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if set, ok := b.subs[id]; ok {
			if _, ok := set[key]; ok {
				delete(set, key)
				close(ch)
			}
			if len(set) == 0 {
				delete(b.subs, id)
			}
		}
	}
	return ch, cancel
}

// Publish delivers a snapshot to every subscriber of the document.
func (b *Broker) Publish(doc Document) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, ch := range b.subs[doc.ID] {
		for {
			select {
			case ch <- doc:
			default:
				// Buffer full: evict the oldest snapshot and retry.
				select {
				case <-ch:
				default:
				}
				continue
			}
			break
		}
		metrics.IncSnapshotPublished()
	}
}
