// Package events carries session state changes (sign up, sign in, sign out) to
// whoever keeps a view in sync with them. Delivery is at least once: subscribers
// must tolerate duplicates, and Watcher collapses them.
package events

import (
	"context"
	"time"

	"postboard/shared"

	"github.com/google/uuid"
)

type SessionEvent struct {
	Id         string
	Kind       shared.SessionEventKind
	IdentityId string
	At         time.Time
}

func NewSessionEvent(kind shared.SessionEventKind, identityId string) SessionEvent {
	return SessionEvent{
		Id:         uuid.New().String(),
		Kind:       kind,
		IdentityId: identityId,
		At:         time.Now(),
	}
}

func (e SessionEvent) ToApi() *shared.SessionEventMessage {
	return &shared.SessionEventMessage{
		Kind:       e.Kind,
		IdentityId: e.IdentityId,
		At:         e.At,
	}
}

type Bus interface {
	Publish(ctx context.Context, ev SessionEvent) error

	// Subscribe returns a channel of events published after the call. The channel is
	// closed once ctx is done.
	Subscribe(ctx context.Context) (<-chan SessionEvent, error)
}
