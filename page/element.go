// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package page

import (
	"image"
	"math"
	"slices"
)

// Element is a node of the document tree. Images carry decoded pixel data,
// canvases carry a backing store, and every element has a layout box
// assigned by the host.
type Element struct {
	EventTarget

	doc      *Document
	tag      string
	parent   *Element
	children []*Element

	classes []string
	attrs   map[string]string
	style   map[string]string

	// image elements
	pixels   *image.RGBA
	complete bool

	// canvas elements
	backing *image.RGBA

	boxW, boxH   float64
	intersecting bool
}

// Document returns the document the element belongs to.
func (e *Element) Document() *Document { return e.doc }

// Tag returns the element's tag name.
func (e *Element) Tag() string { return e.tag }

// Parent returns the parent element, or nil when detached.
func (e *Element) Parent() *Element { return e.parent }

// Children returns a copy of the child list.
func (e *Element) Children() []*Element { return slices.Clone(e.children) }

// AppendChild moves child under e.
func (e *Element) AppendChild(child *Element) {
	child.Remove()
	child.parent = e
	e.children = append(e.children, child)
}

// Remove detaches e from its parent.
func (e *Element) Remove() {
	p := e.parent
	if p == nil {
		return
	}
	if i := slices.Index(p.children, e); i >= 0 {
		p.children = slices.Delete(p.children, i, i+1)
	}
	e.parent = nil
}

// ReplaceWith puts other in e's place and detaches e. It does nothing when
// e has no parent.
func (e *Element) ReplaceWith(other *Element) {
	p := e.parent
	if p == nil {
		return
	}
	other.Remove()
	i := slices.Index(p.children, e)
	p.children[i] = other
	other.parent = p
	e.parent = nil
}

// IsConnected reports whether e is attached to its document's body.
func (e *Element) IsConnected() bool {
	if e.doc == nil {
		return false
	}
	n := e
	for n.parent != nil {
		n = n.parent
	}
	return n == e.doc.body
}

// Contains reports whether other is e or a descendant of e.
func (e *Element) Contains(other *Element) bool {
	for n := other; n != nil; n = n.parent {
		if n == e {
			return true
		}
	}
	return false
}

// QueryAllByClass returns e and its descendants that carry class, in
// document order.
func (e *Element) QueryAllByClass(class string) []*Element {
	var out []*Element
	e.walk(func(n *Element) {
		if n.HasClass(class) {
			out = append(out, n)
		}
	})
	return out
}

// QueryAllByTag returns e and its descendants with the given tag, in
// document order.
func (e *Element) QueryAllByTag(tag string) []*Element {
	var out []*Element
	e.walk(func(n *Element) {
		if n.tag == tag {
			out = append(out, n)
		}
	})
	return out
}

func (e *Element) walk(fn func(*Element)) {
	fn(e)
	for _, c := range e.children {
		c.walk(fn)
	}
}

// Classes returns a copy of the class list.
func (e *Element) Classes() []string { return slices.Clone(e.classes) }

// HasClass reports whether e carries class.
func (e *Element) HasClass(class string) bool { return slices.Contains(e.classes, class) }

// AddClass adds class if it is not present.
func (e *Element) AddClass(class string) {
	if !e.HasClass(class) {
		e.classes = append(e.classes, class)
	}
}

// RemoveClass removes class if it is present.
func (e *Element) RemoveClass(class string) {
	if i := slices.Index(e.classes, class); i >= 0 {
		e.classes = slices.Delete(e.classes, i, i+1)
	}
}

// Attr returns the attribute value and whether it is set.
func (e *Element) Attr(name string) (string, bool) {
	v, ok := e.attrs[name]
	return v, ok
}

// SetAttr sets an attribute.
func (e *Element) SetAttr(name, value string) {
	if e.attrs == nil {
		e.attrs = make(map[string]string)
	}
	e.attrs[name] = value
}

// Style returns an inline style property, or "".
func (e *Element) Style(prop string) string { return e.style[prop] }

// SetStyle sets an inline style property. An empty value removes it.
func (e *Element) SetStyle(prop, value string) {
	if value == "" {
		delete(e.style, prop)
		return
	}
	if e.style == nil {
		e.style = make(map[string]string)
	}
	e.style[prop] = value
}

// StyleMap returns a copy of the inline style.
func (e *Element) StyleMap() map[string]string {
	out := make(map[string]string, len(e.style))
	for k, v := range e.style {
		out[k] = v
	}
	return out
}

// SetImage stores decoded pixels on an image element, marks it complete and
// dispatches a load event.
func (e *Element) SetImage(img *image.RGBA) {
	e.pixels = img
	e.complete = true
	e.Dispatch(Event{Type: EventLoad, Target: e})
}

// Image returns the decoded pixels, or nil before load.
func (e *Element) Image() *image.RGBA { return e.pixels }

// Complete reports whether the image has been decoded.
func (e *Element) Complete() bool { return e.complete }

// NaturalSize returns the decoded image size, or zeros before load.
func (e *Element) NaturalSize() (int, int) {
	if e.pixels == nil {
		return 0, 0
	}
	return e.pixels.Rect.Dx(), e.pixels.Rect.Dy()
}

// Canvas returns the canvas backing store, or nil before the first resize.
func (e *Element) Canvas() *image.RGBA { return e.backing }

// SetCanvasSize sets the canvas backing store size in device pixels. Like a
// browser canvas, resizing clears the contents. Setting the current size
// again keeps the store.
func (e *Element) SetCanvasSize(w, h int) {
	if w < 0 {
		w = 0
	}
	if h < 0 {
		h = 0
	}
	if e.backing != nil && e.backing.Rect.Dx() == w && e.backing.Rect.Dy() == h {
		return
	}
	e.backing = image.NewRGBA(image.Rect(0, 0, w, h))
}

// CanvasSize returns the backing store size.
func (e *Element) CanvasSize() (int, int) {
	if e.backing == nil {
		return 0, 0
	}
	return e.backing.Rect.Dx(), e.backing.Rect.Dy()
}

// SetBox sets the on-screen size in CSS pixels. Hosts call this as their
// layout changes.
func (e *Element) SetBox(w, h float64) {
	e.boxW, e.boxH = w, h
}

// Box returns the on-screen size in CSS pixels.
func (e *Element) Box() (float64, float64) { return e.boxW, e.boxH }

// DeviceSize returns the on-screen size multiplied by the document's device
// pixel ratio, truncated to whole pixels.
func (e *Element) DeviceSize() (int, int) {
	dpr := 1.0
	if e.doc != nil {
		dpr = e.doc.DevicePixelRatio()
	}
	return int(math.Floor(e.boxW * dpr)), int(math.Floor(e.boxH * dpr))
}

// SetIntersecting updates the element's visibility in the viewport and
// notifies observers watching it.
func (e *Element) SetIntersecting(v bool) {
	if e.intersecting == v {
		return
	}
	e.intersecting = v
	if e.doc != nil {
		e.doc.notifyIntersection(e)
	}
}

// Intersecting reports whether the element is visible in the viewport.
func (e *Element) Intersecting() bool { return e.intersecting }
