package events

import (
	"context"

	"postboard/shared"
)

const seenIdsCap = 256

// Watcher turns an at-least-once event feed into a feed of real transitions.
// Redelivered events (same Id) and events that don't change an identity's signed-in
// state are dropped. The first event seen for an identity always passes.
type Watcher struct {
	signedIn map[string]bool
	seen     map[string]bool
	seenRing []string
}

func NewWatcher() *Watcher {
	return &Watcher{
		signedIn: make(map[string]bool),
		seen:     make(map[string]bool),
	}
}

// Observe reports whether ev should be forwarded.
func (w *Watcher) Observe(ev SessionEvent) bool {
	if ev.Id != "" {
		if w.seen[ev.Id] {
			return false
		}
		w.remember(ev.Id)
	}

	var nowSignedIn bool
	switch ev.Kind {
	case shared.SessionEventSignedIn:
		nowSignedIn = true
	case shared.SessionEventSignedOut:
		nowSignedIn = false
	default:
		return true
	}

	prev, known := w.signedIn[ev.IdentityId]
	w.signedIn[ev.IdentityId] = nowSignedIn

	return !known || prev != nowSignedIn
}

func (w *Watcher) remember(id string) {
	if len(w.seenRing) >= seenIdsCap {
		oldest := w.seenRing[0]
		w.seenRing = w.seenRing[1:]
		delete(w.seen, oldest)
	}
	w.seenRing = append(w.seenRing, id)
	w.seen[id] = true
}

// Watch forwards the transitions for identityId found on in. An empty identityId
// watches every identity.
func Watch(ctx context.Context, in <-chan SessionEvent, identityId string) <-chan SessionEvent {
	out := make(chan SessionEvent, subscriberBuffer)
	w := NewWatcher()

	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-in:
				if !ok {
					return
				}
				if identityId != "" && ev.IdentityId != identityId {
					continue
				}
				if !w.Observe(ev) {
					continue
				}
				select {
				case out <- ev:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return out
}
