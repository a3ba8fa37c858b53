// Package event is the in-process notification bus. Services emit
// typed events (chat turns, archival runs, memory changes) and the
// websocket fanout pushes their names to connected clients, which then
// fetch fresh data over the HTTP API.
package event

import (
	"log/slog"
	"sync"

	"github.com/nexora/nexora/pkg/utils"
)

// Event is implemented by every event type.
type Event interface {
	// EventName returns the stable name of the event type, e.g.
	// "conversation.archived".
	EventName() string
}

// Listener handles a dispatched event.
type Listener func(Event)

// Emitter dispatches events to subscribed listeners.
type Emitter struct {
	mu        sync.RWMutex
	nextID    int
	byName    map[string]map[int]Listener
	wildcards map[int]Listener
	logger    *slog.Logger
}

// NewEmitter creates an empty emitter.
func NewEmitter() *Emitter {
	return &Emitter{
		byName:    make(map[string]map[int]Listener),
		wildcards: make(map[int]Listener),
		logger:    utils.GetLogger(),
	}
}

// On subscribes to one event name. The returned function unsubscribes.
func (e *Emitter) On(eventName string, fn Listener) func() {
	e.mu.Lock()
	id := e.nextID
	e.nextID++
	if e.byName[eventName] == nil {
		e.byName[eventName] = make(map[int]Listener)
	}
	e.byName[eventName][id] = fn
	e.mu.Unlock()

	return func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		delete(e.byName[eventName], id)
	}
}

// OnAny subscribes to every event. The returned function unsubscribes.
func (e *Emitter) OnAny(fn Listener) func() {
	e.mu.Lock()
	id := e.nextID
	e.nextID++
	e.wildcards[id] = fn
	e.mu.Unlock()

	return func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		delete(e.wildcards, id)
	}
}

// Emit dispatches an event to all matching listeners. Listeners are
// copied first so they run without the lock held.
func (e *Emitter) Emit(ev Event) {
	e.mu.RLock()
	listeners := make([]Listener, 0, len(e.byName[ev.EventName()])+len(e.wildcards))
	for _, fn := range e.byName[ev.EventName()] {
		listeners = append(listeners, fn)
	}
	for _, fn := range e.wildcards {
		listeners = append(listeners, fn)
	}
	e.mu.RUnlock()

	e.logger.Debug("Emitting event", "event", ev.EventName(), "listeners", len(listeners))
	for _, fn := range listeners {
		fn(ev)
	}
}

var (
	globalEmitter *Emitter
	globalOnce    sync.Once
)

// Global returns the process-wide emitter shared by the services.
func Global() *Emitter {
	globalOnce.Do(func() {
		globalEmitter = NewEmitter()
	})
	return globalEmitter
}
