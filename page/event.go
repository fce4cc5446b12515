// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package page

// Event types dispatched on a Document.
const (
	EventReady             = "ready"
	EventResize            = "resize"
	EventClick             = "click"
	EventTouchStart        = "touchstart"
	EventKeyDown           = "keydown"
	EventScroll            = "scroll"
	EventContentWillUpdate = "content-will-update"
	EventContentUpdated    = "content-updated"
)

// Event types dispatched on an Element.
const (
	EventLoad = "load"
)

// GestureEvents are the event types that count as user activation.
var GestureEvents = []string{EventClick, EventTouchStart, EventKeyDown, EventScroll}

// Event is a dispatched event.
type Event struct {
	Type   string
	Target *Element // nil for document-level events
}

// Listener handles an event.
type Listener func(Event)

type listenerEntry struct {
	fn      Listener
	removed bool
}

// EventTarget keeps listeners per event type. The zero value is ready to use.
type EventTarget struct {
	listeners map[string][]*listenerEntry
}

// AddEventListener registers fn for typ and returns a function that removes
// it. The remove function is idempotent.
func (t *EventTarget) AddEventListener(typ string, fn Listener) (remove func()) {
	if t.listeners == nil {
		t.listeners = make(map[string][]*listenerEntry)
	}
	e := &listenerEntry{fn: fn}
	t.listeners[typ] = append(t.listeners[typ], e)
	return func() {
		if e.removed {
			return
		}
		e.removed = true
		list := t.listeners[typ]
		for i, x := range list {
			if x == e {
				t.listeners[typ] = append(list[:i:i], list[i+1:]...)
				break
			}
		}
	}
}

// ListenerCount returns the number of listeners registered for typ.
func (t *EventTarget) ListenerCount(typ string) int {
	return len(t.listeners[typ])
}

// Dispatch calls every listener registered for ev.Type. Listeners added
// during dispatch are not called; listeners removed during dispatch are
// skipped.
func (t *EventTarget) Dispatch(ev Event) {
	list := append([]*listenerEntry(nil), t.listeners[ev.Type]...)
	for _, e := range list {
		if e.removed {
			continue
		}
		e.fn(ev)
	}
}
