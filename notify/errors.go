package notify

import (
	"log"
	"runtime/debug"
	"sync"
	"time"
)

// Failed operations are logged here and handed to any registered sink, so an error
// monitor can be attached without touching handlers.

type Severity int

const (
	SeverityInfo Severity = iota
	SeverityError
)

type Notification struct {
	Severity Severity
	Op       string
	Err      error
	At       time.Time
}

type Sink func(n Notification)

var (
	mu    sync.RWMutex
	sinks []Sink
)

func RegisterSink(fn Sink) {
	mu.Lock()
	defer mu.Unlock()
	sinks = append(sinks, fn)
}

func ResetSinks() {
	mu.Lock()
	defer mu.Unlock()
	sinks = nil
}

func NotifyErr(severity Severity, op string, err error) {
	log.Printf("FAILED %s: %v\n", op, err)

	n := Notification{Severity: severity, Op: op, Err: err, At: time.Now()}

	mu.RLock()
	fns := append([]Sink(nil), sinks...)
	mu.RUnlock()

	for _, fn := range fns {
		dispatch(fn, n)
	}
}

func dispatch(fn Sink, n Notification) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("panic in NotifyErr sink: %v\n%s", r, debug.Stack())
		}
	}()
	fn(n)
}
