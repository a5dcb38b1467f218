package events

import (
	"sync"

	"go.uber.org/zap"
)

// Handler processes a published event payload.
type Handler func(payload any)

// Dispatcher is a minimal in-process pub/sub hub. Handlers run on the
// publisher's goroutine; long-running work belongs in a worker.
type Dispatcher struct {
	mu       sync.RWMutex
	handlers map[string][]Handler
	logger   *zap.Logger
}

// NewDispatcher creates an empty dispatcher.
func NewDispatcher(logger *zap.Logger) *Dispatcher {
	return &Dispatcher{
		handlers: make(map[string][]Handler),
		logger:   logger,
	}
}

// Subscribe registers a handler for an event name.
func (d *Dispatcher) Subscribe(event string, handler Handler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.handlers[event] = append(d.handlers[event], handler)
}

// Publish invokes every handler registered for the event. A panicking
// handler is recovered and logged so one subscriber cannot take down
// the request path.
func (d *Dispatcher) Publish(event string, payload any) {
	d.mu.RLock()
	handlers := d.handlers[event]
	d.mu.RUnlock()

	for _, handler := range handlers {
		d.safeInvoke(event, handler, payload)
	}
}

func (d *Dispatcher) safeInvoke(event string, handler Handler, payload any) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("event handler panicked",
				zap.String("event", event),
				zap.Any("panic", r))
		}
	}()
	handler(payload)
}
