package events

import (
	"context"
	"log"
	"sync"
)

const subscriberBuffer = 32

// LocalBus fans events out to in-process subscribers. A subscriber that falls behind
// loses events instead of blocking publishers.
type LocalBus struct {
	mu     sync.Mutex
	nextId int
	subs   map[int]chan SessionEvent
}

func NewLocalBus() *LocalBus {
	return &LocalBus{subs: make(map[int]chan SessionEvent)}
}

func (b *LocalBus) Publish(ctx context.Context, ev SessionEvent) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	for id, ch := range b.subs {
		select {
		case ch <- ev:
		default:
			log.Printf("session event subscriber %d is full, dropping %s event\n", id, ev.Kind)
		}
	}

	return nil
}

func (b *LocalBus) Subscribe(ctx context.Context) (<-chan SessionEvent, error) {
	ch := make(chan SessionEvent, subscriberBuffer)

	b.mu.Lock()
	id := b.nextId
	b.nextId++
	b.subs[id] = ch
	b.mu.Unlock()

	go func() {
		<-ctx.Done()
		b.mu.Lock()
		delete(b.subs, id)
		close(ch)
		b.mu.Unlock()
	}()

	return ch, nil
}

func (b *LocalBus) NumSubscribers() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}
