package handlers

import (
	"context"
	"log"
	"net/http"
	"time"

	"postboard/events"

	"github.com/gorilla/websocket"
)

const (
	sessionEventsWriteWait  = 10 * time.Second
	sessionEventsPingPeriod = 30 * time.Second
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// SessionEventsHandler streams the caller's own session transitions over a websocket
// until either side hangs up.
func SessionEventsHandler(w http.ResponseWriter, r *http.Request) {
	log.Println("Received request for SessionEventsHandler")

	session := authenticate(w, r)
	if session == nil {
		return
	}

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	sub, err := deps.Identity.Subscribe(ctx)
	if err != nil {
		apiErr := reportFailure("subscribe to session events", err)
		writeApiError(w, *apiErr)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("Error upgrading session events connection: %v\n", err)
		return
	}
	defer conn.Close()

	// drain reads so close frames are seen
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(sessionEventsPingPeriod)
	defer ticker.Stop()

	transitions := events.Watch(ctx, sub, session.Identity.Id)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(sessionEventsWriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case ev, ok := <-transitions:
			if !ok {
				return
			}
			conn.SetWriteDeadline(time.Now().Add(sessionEventsWriteWait))
			if err := conn.WriteJSON(ev.ToApi()); err != nil {
				log.Printf("Error writing session event: %v\n", err)
				return
			}
		}
	}
}
