// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package page is a small document model for hosting dithered canvases.
//
// It stands in for the parts of a browser page the effect depends on: an
// element tree with classes, attributes and inline style; image elements
// that become complete when their pixels are decoded; canvas elements with
// a backing store; layout boxes and a device pixel ratio; visibility in the
// viewport; and document events, including the two lifecycle signals a
// navigation layer emits around a content swap.
//
// Everything in this package runs on the event loop goroutine.
package page

import "slices"

// Document is the root of an element tree.
type Document struct {
	EventTarget

	body          *Element
	dpr           float64
	reducedMotion bool
	ready         bool
	activated     bool
	query         string

	observers []*IntersectionObserver
}

// Option configures a Document.
type Option func(*Document)

// WithDevicePixelRatio sets the device pixel ratio. Values <= 0 are ignored.
func WithDevicePixelRatio(r float64) Option {
	return func(d *Document) {
		if r > 0 {
			d.dpr = r
		}
	}
}

// WithReducedMotion sets the reduced motion preference.
func WithReducedMotion(v bool) Option {
	return func(d *Document) {
		d.reducedMotion = v
	}
}

// WithQuery sets the raw query string of the document URL.
func WithQuery(q string) Option {
	return func(d *Document) {
		d.query = q
	}
}

// NewDocument creates a document with an empty body.
func NewDocument(opts ...Option) *Document {
	d := &Document{dpr: 1}
	for _, opt := range opts {
		opt(d)
	}
	d.body = d.CreateElement("body")
	return d
}

// CreateElement creates a detached element owned by d. New elements are
// intersecting the viewport until the host says otherwise.
func (d *Document) CreateElement(tag string) *Element {
	return &Element{doc: d, tag: tag, intersecting: true}
}

// Body returns the document body.
func (d *Document) Body() *Element { return d.body }

// DevicePixelRatio returns the ratio of device pixels to CSS pixels.
func (d *Document) DevicePixelRatio() float64 { return d.dpr }

// ReducedMotion reports the platform reduced motion preference.
func (d *Document) ReducedMotion() bool { return d.reducedMotion }

// Query returns the raw query string of the document URL.
func (d *Document) Query() string { return d.query }

// Ready reports whether MarkReady has been called.
func (d *Document) Ready() bool { return d.ready }

// MarkReady marks the document as parsed and dispatches the ready event
// once.
func (d *Document) MarkReady() {
	if d.ready {
		return
	}
	d.ready = true
	d.Dispatch(Event{Type: EventReady})
}

// HasUserActivation reports whether a gesture event has been dispatched.
func (d *Document) HasUserActivation() bool { return d.activated }

// Gesture records user activation and dispatches typ, which should be one
// of GestureEvents.
func (d *Document) Gesture(typ string) {
	d.activated = true
	d.Dispatch(Event{Type: typ})
}

// Resize updates the device pixel ratio (when r > 0) and dispatches a
// resize event. Hosts update element boxes before calling it.
func (d *Document) Resize(r float64) {
	if r > 0 {
		d.dpr = r
	}
	d.Dispatch(Event{Type: EventResize})
}

// SwapBody replaces the body the way a client-side navigation does:
// content-will-update is dispatched before the swap and content-updated
// after it.
func (d *Document) SwapBody(next *Element) {
	d.Dispatch(Event{Type: EventContentWillUpdate})
	next.Remove()
	d.body = next
	d.Dispatch(Event{Type: EventContentUpdated})
}

// IntersectionEntry reports a visibility change of one element.
type IntersectionEntry struct {
	Target       *Element
	Intersecting bool
}

// IntersectionObserver reports visibility changes of observed elements.
type IntersectionObserver struct {
	doc     *Document
	fn      func([]IntersectionEntry)
	targets []*Element
}

// NewIntersectionObserver creates an observer calling fn with visibility
// changes.
func (d *Document) NewIntersectionObserver(fn func([]IntersectionEntry)) *IntersectionObserver {
	o := &IntersectionObserver{doc: d, fn: fn}
	d.observers = append(d.observers, o)
	return o
}

// Observe starts watching el and immediately reports its current state.
func (o *IntersectionObserver) Observe(el *Element) {
	if o.doc == nil || slices.Contains(o.targets, el) {
		return
	}
	o.targets = append(o.targets, el)
	o.fn([]IntersectionEntry{{Target: el, Intersecting: el.intersecting}})
}

// Disconnect stops all observation. It is idempotent.
func (o *IntersectionObserver) Disconnect() {
	o.targets = nil
	if o.doc == nil {
		return
	}
	d := o.doc
	if i := slices.Index(d.observers, o); i >= 0 {
		d.observers = slices.Delete(d.observers, i, i+1)
	}
	o.doc = nil
}

// ObserverCount returns the number of connected observers.
func (d *Document) ObserverCount() int { return len(d.observers) }

func (d *Document) notifyIntersection(el *Element) {
	for _, o := range slices.Clone(d.observers) {
		if slices.Contains(o.targets, el) {
			o.fn([]IntersectionEntry{{Target: el, Intersecting: el.intersecting}})
		}
	}
}
