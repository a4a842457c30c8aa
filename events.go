package kiln

import (
	"time"

	"github.com/google/uuid"

	"github.com/xraph/kiln/logger"
)

// EventType identifies an engine notification.
type EventType string

const (
	EventComponentRegistered EventType = "component.registered"
	EventComponentResolved   EventType = "component.resolved"
	EventManifestRegistered  EventType = "manifest.registered"
	EventInitialized         EventType = "engine.initialized"
	EventRunning             EventType = "engine.running"
	EventShutdown            EventType = "engine.shutdown"
	EventError               EventType = "engine.error"
)

// Event is an engine notification delivered synchronously to subscribers.
type Event struct {
	ID        string        `json:"id"`
	Type      EventType     `json:"type"`
	Component string        `json:"component,omitempty"`
	Time      time.Time     `json:"time"`
	Duration  time.Duration `json:"duration,omitempty"`
	Err       error         `json:"error,omitempty"`
}

// Subscribe registers a callback for engine events. Callbacks run
// synchronously on the emitting goroutine; a panicking subscriber is
// recovered and logged.
func (e *Engine) Subscribe(fn func(Event)) {
	if fn == nil {
		return
	}
	e.mu.Lock()
	e.subscribers = append(e.subscribers, fn)
	e.mu.Unlock()
}

func (e *Engine) emit(event Event) {
	e.mu.RLock()
	subscribers := e.subscribers
	e.mu.RUnlock()

	if len(subscribers) == 0 {
		return
	}

	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Time.IsZero() {
		event.Time = time.Now()
	}

	for _, subscriber := range subscribers {
		func() {
			defer func() {
				if r := recover(); r != nil {
					e.logger.Error("event subscriber panicked",
						logger.String("event", string(event.Type)),
						logger.Any("panic", r))
				}
			}()
			subscriber(event)
		}()
	}
}
