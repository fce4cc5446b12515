// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package effect

import (
	"errors"

	"github.com/gogpu/dither"
	"github.com/gogpu/dither/loop"
	"github.com/gogpu/dither/page"
)

// Instance is a mounted Inline or Header.
type Instance interface {
	ID() string
	Canvas() *page.Element
	Frames() int
	Disposed() bool
	Dispose()

	onDispose(fn func())
}

// Manager discovers marked images in a document and owns every instance
// it mounts, keyed by canvas element.
type Manager struct {
	loop *loop.Loop
	doc  *page.Document
	opts options
	mode dither.Mode

	instances map[*page.Element]Instance
	pending   map[*page.Element]func()
	detach    []func()
}

// NewManager creates a manager for doc. Unless WithMode is given, the mode
// is resolved once from the document query.
func NewManager(l *loop.Loop, doc *page.Document, opts ...Option) *Manager {
	o := buildOptions(opts)
	mode := o.mode
	if !o.modeSet {
		mode = dither.ModeFromQuery(doc.Query())
	}
	return &Manager{
		loop:      l,
		doc:       doc,
		opts:      o,
		mode:      mode,
		instances: make(map[*page.Element]Instance),
		pending:   make(map[*page.Element]func()),
	}
}

// Mode returns the resolved dither mode.
func (m *Manager) Mode() dither.Mode { return m.mode }

// Len returns the number of live instances.
func (m *Manager) Len() int { return len(m.instances) }

// Instances returns the live instances in no particular order.
func (m *Manager) Instances() []Instance {
	out := make([]Instance, 0, len(m.instances))
	for _, in := range m.instances {
		out = append(out, in)
	}
	return out
}

// Lookup returns the instance mounted on canvas.
func (m *Manager) Lookup(canvas *page.Element) (Instance, bool) {
	in, ok := m.instances[canvas]
	return in, ok
}

// PendingLoads returns the number of marked images waiting to decode.
func (m *Manager) PendingLoads() int { return len(m.pending) }

// InitAll mounts an inline instance for every marked image under root.
// Decoded images are mounted now; the rest when they load. It returns the
// number of instances mounted now.
func (m *Manager) InitAll(root *page.Element) int {
	if root == nil {
		return 0
	}
	n := 0
	for _, img := range root.QueryAllByClass(m.opts.marker) {
		if img.Tag() != "img" {
			continue
		}
		if img.Complete() {
			if m.mount(img) {
				n++
			}
			continue
		}
		if _, waiting := m.pending[img]; waiting {
			continue
		}
		m.pending[img] = img.AddEventListener(page.EventLoad, func(page.Event) {
			m.stopWaiting(img)
			m.mount(img)
		})
	}
	dither.Logger().Debug("effect: discovery finished", "mounted", n, "waiting", len(m.pending))
	return n
}

func (m *Manager) stopWaiting(img *page.Element) {
	if rm, ok := m.pending[img]; ok {
		rm()
		delete(m.pending, img)
	}
}

func (m *Manager) mount(img *page.Element) bool {
	if !img.IsConnected() {
		return false
	}
	in, err := mountInline(m.loop, img, m.mode, m.opts)
	if err != nil {
		var se *dither.ShaderError
		switch {
		case errors.As(err, &se):
			dither.Logger().Error("effect: inline instance aborted", "stage", se.Stage, "error", err)
		case !errors.Is(err, dither.ErrGraphicsUnavailable):
			dither.Logger().Warn("effect: inline instance not mounted", "error", err)
		}
		return false
	}
	m.track(in)
	return true
}

// MountHeader mounts a header on canvas and tracks it with the inline
// instances.
func (m *Manager) MountHeader(canvas *page.Element, cfg HeaderConfig) (*Header, error) {
	if in, ok := m.instances[canvas]; ok {
		if h, isHeader := in.(*Header); isHeader {
			return h, nil
		}
		return nil, errors.New("effect: canvas already hosts an instance")
	}
	h, err := mountHeader(m.loop, canvas, cfg, m.mode, m.opts)
	if err != nil {
		return nil, err
	}
	m.track(h)
	return h, nil
}

func (m *Manager) track(in Instance) {
	canvas := in.Canvas()
	m.instances[canvas] = in
	in.onDispose(func() {
		if m.instances[canvas] == in {
			delete(m.instances, canvas)
		}
	})
}

// DisposeAll tears down every instance and forgets images still waiting
// to decode.
func (m *Manager) DisposeAll() {
	for _, in := range m.Instances() {
		in.Dispose()
	}
	for img := range m.pending {
		m.stopWaiting(img)
	}
}

// Attach subscribes the manager to the document lifecycle. On
// content-will-update inline instances and pending loads are dropped; on
// content-updated headers whose canvas left the document are disposed and
// marked images are discovered again, as they are on ready. Headers kept
// in the document survive navigation. If the document is already ready,
// discovery runs now. Calling Attach twice does nothing.
func (m *Manager) Attach() {
	if len(m.detach) > 0 {
		return
	}
	m.detach = append(m.detach,
		m.doc.AddEventListener(page.EventReady, func(page.Event) { m.InitAll(m.doc.Body()) }),
		m.doc.AddEventListener(page.EventContentWillUpdate, func(page.Event) { m.disposeContent() }),
		m.doc.AddEventListener(page.EventContentUpdated, func(page.Event) {
			m.disposeDetached()
			m.InitAll(m.doc.Body())
		}),
	)
	if m.doc.Ready() {
		m.InitAll(m.doc.Body())
	}
}

// disposeContent tears down the inline instances and forgets images still
// waiting to decode.
func (m *Manager) disposeContent() {
	for _, in := range m.Instances() {
		if _, ok := in.(*Inline); ok {
			in.Dispose()
		}
	}
	for img := range m.pending {
		m.stopWaiting(img)
	}
}

func (m *Manager) disposeDetached() {
	for _, in := range m.Instances() {
		if !in.Canvas().IsConnected() {
			in.Dispose()
		}
	}
}

// Detach removes the lifecycle listeners and disposes every instance.
func (m *Manager) Detach() {
	for _, rm := range m.detach {
		rm()
	}
	m.detach = nil
	m.DisposeAll()
}
