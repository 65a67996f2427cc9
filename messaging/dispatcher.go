package messaging

import (
	"log/slog"
	"sync"

	"github.com/mudvault/mesh-go/contracts"
)

// Event is what registered handlers receive. Envelope is set for
// protocol events; Data carries the lifecycle payload (DisconnectInfo,
// ReconnectInfo, PongInfo, or an error) when there is one.
type Event struct {
	Name     string
	Envelope *contracts.Envelope
	Data     interface{}
}

// Handler processes one dispatched event. Handlers run on their own
// goroutine and may block without stalling the dispatcher.
type Handler func(Event)

// HandlerID identifies a registration so it can be removed later. Go
// function values are not comparable, so removal is by ID rather than
// by handler.
type HandlerID uint64

type registration struct {
	id HandlerID
	fn Handler
}

// EventDispatcher routes events to handlers registered by name. It is
// safe for concurrent use.
type EventDispatcher struct {
	mu       sync.RWMutex
	handlers map[string][]registration
	nextID   HandlerID
	logger   *slog.Logger
}

// DispatcherOption configures the EventDispatcher.
type DispatcherOption func(*EventDispatcher)

// WithDispatcherLogger sets the logger used to report handler panics.
func WithDispatcherLogger(logger *slog.Logger) DispatcherOption {
	return func(d *EventDispatcher) {
		d.logger = logger
	}
}

// NewEventDispatcher creates a new event dispatcher.
func NewEventDispatcher(options ...DispatcherOption) *EventDispatcher {
	d := &EventDispatcher{
		handlers: make(map[string][]registration),
		logger:   slog.Default(),
	}
	for _, opt := range options {
		opt(d)
	}
	return d
}

// On registers a handler for an event name and returns its ID.
func (d *EventDispatcher) On(event string, fn Handler) HandlerID {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.nextID++
	id := d.nextID
	d.handlers[event] = append(d.handlers[event], registration{id: id, fn: fn})
	return id
}

// Off removes the identified handlers for an event. With no IDs it
// clears every handler registered for the event.
func (d *EventDispatcher) Off(event string, ids ...HandlerID) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if len(ids) == 0 {
		delete(d.handlers, event)
		return
	}

	regs := d.handlers[event]
	kept := regs[:0]
	for _, reg := range regs {
		remove := false
		for _, id := range ids {
			if reg.id == id {
				remove = true
				break
			}
		}
		if !remove {
			kept = append(kept, reg)
		}
	}
	if len(kept) == 0 {
		delete(d.handlers, event)
	} else {
		d.handlers[event] = kept
	}
}

// HandlerCount returns the number of handlers registered for an event.
func (d *EventDispatcher) HandlerCount(event string) int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.handlers[event])
}

// Emit dispatches an event to every registered handler. Each handler
// runs on its own goroutine; a handler that panics is logged and does
// not affect the others or the emitter.
func (d *EventDispatcher) Emit(event string, envelope *contracts.Envelope, data interface{}) {
	d.mu.RLock()
	regs := make([]registration, len(d.handlers[event]))
	copy(regs, d.handlers[event])
	d.mu.RUnlock()

	ev := Event{Name: event, Envelope: envelope, Data: data}
	for _, reg := range regs {
		go d.invoke(reg.fn, ev)
	}
}

func (d *EventDispatcher) invoke(fn Handler, ev Event) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("event handler panicked",
				"event", ev.Name,
				"panic", r,
			)
		}
	}()
	fn(ev)
}
