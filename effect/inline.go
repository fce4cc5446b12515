// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package effect

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/gogpu/dither"
	"github.com/gogpu/dither/internal/scheduler"
	"github.com/gogpu/dither/loop"
	"github.com/gogpu/dither/page"
)

// timeUnit is the wall time of one animation time unit.
const timeUnit = 2 * time.Second

// Inline is a dithered canvas standing in for one decoded image element.
type Inline struct {
	id       string
	doc      *page.Document
	img      *page.Element
	canvas   *page.Element
	renderer dither.Renderer
	sched    *scheduler.Scheduler
	start    time.Duration
}

// MountInline replaces a decoded image with an animated dithered canvas
// and renders the first frame.
//
// When no GPU is available (and software fallback is off) the image stays
// in place, un-hidden, and the returned error wraps
// dither.ErrGraphicsUnavailable. A *dither.ShaderError aborts the mount
// and leaves the image untouched.
func MountInline(l *loop.Loop, img *page.Element, mode dither.Mode, opts ...Option) (*Inline, error) {
	o := buildOptions(opts)
	return mountInline(l, img, mode, o)
}

func mountInline(l *loop.Loop, img *page.Element, mode dither.Mode, o options) (*Inline, error) {
	if !img.Complete() || img.Image() == nil {
		return nil, fmt.Errorf("effect: image not decoded: %w", dither.ErrMediaLoad)
	}
	if img.Parent() == nil {
		return nil, errors.New("effect: image is not attached")
	}
	doc := img.Document()

	r, err := o.newRenderer(mode, dither.VariantInline)
	if err != nil {
		if errors.Is(err, dither.ErrGraphicsUnavailable) {
			img.RemoveClass(o.marker)
			img.SetStyle("visibility", "visible")
			dither.Logger().Warn("effect: graphics unavailable, showing original image", "error", err)
		}
		return nil, err
	}

	in := &Inline{
		id:       uuid.NewString(),
		doc:      doc,
		img:      img,
		canvas:   newCanvas(doc, img, o.marker),
		renderer: r,
		start:    l.Now(),
	}
	img.ReplaceWith(in.canvas)
	in.canvas.SetBox(img.Box())

	in.sched = scheduler.New(scheduler.Config{
		Loop:     l,
		Interval: o.intervalOr(DefaultInlineInterval),
		Gate:     func() bool { return !doc.ReducedMotion() },
		Attached: in.canvas.IsConnected,
		Resize:   in.resize,
		Draw:     in.draw,
		Name:     in.id,
	})
	in.sched.OnTeardown(r.Release)

	w, h := img.NaturalSize()
	dither.Logger().Info("effect: inline instance mounted",
		"instance", in.id, "mode", mode.String(), "width", w, "height", h)

	in.sched.RenderNow(l.Now())

	obs := doc.NewIntersectionObserver(func(entries []page.IntersectionEntry) {
		for _, e := range entries {
			in.sched.SetVisible(e.Intersecting)
		}
	})
	obs.Observe(in.canvas)
	in.sched.OnTeardown(obs.Disconnect)
	in.sched.OnTeardown(doc.AddEventListener(page.EventResize, func(page.Event) {
		in.sched.MarkResize()
	}))
	return in, nil
}

// newCanvas builds the replacement canvas for img.
func newCanvas(doc *page.Document, img *page.Element, marker string) *page.Element {
	c := doc.CreateElement("canvas")
	for _, class := range img.Classes() {
		if class != marker {
			c.AddClass(class)
		}
	}
	for prop, v := range img.StyleMap() {
		c.SetStyle(prop, v)
	}
	if v, ok := img.Attr("width"); ok {
		c.SetStyle("width", v+"px")
	}
	if v, ok := img.Attr("height"); ok {
		c.SetStyle("height", v+"px")
	}
	w, h := img.NaturalSize()
	c.SetStyle("aspect-ratio", strconv.Itoa(w)+" / "+strconv.Itoa(h))
	// The image is hidden until dithered; the canvas never is.
	c.SetStyle("visibility", "")
	return c
}

// ID returns the instance id used in log records.
func (in *Inline) ID() string { return in.id }

// Canvas returns the canvas element.
func (in *Inline) Canvas() *page.Element { return in.canvas }

// Image returns the replaced image element.
func (in *Inline) Image() *page.Element { return in.img }

// Frames returns the number of frames drawn.
func (in *Inline) Frames() int { return in.sched.Frames() }

// Animating reports whether a frame is pending.
func (in *Inline) Animating() bool { return in.sched.Pending() }

// Disposed reports whether the instance has been torn down.
func (in *Inline) Disposed() bool { return in.sched.State() == scheduler.Stopped }

// Dispose tears the instance down. It is idempotent.
func (in *Inline) Dispose() { in.sched.Teardown() }

func (in *Inline) onDispose(fn func()) { in.sched.OnTeardown(fn) }

func (in *Inline) resize() {
	w, h := in.canvas.DeviceSize()
	if w <= 0 || h <= 0 {
		w, h = in.img.NaturalSize()
	}
	in.canvas.SetCanvasSize(w, h)
	if err := in.renderer.SetViewport(dither.FullGeometry(w, h)); err != nil {
		dither.Logger().Warn("effect: viewport rejected", "instance", in.id, "error", err)
	}
}

func (in *Inline) draw(ts time.Duration) error {
	in.renderer.SetTime(float64(ts-in.start) / float64(timeUnit))
	return in.renderer.DrawFrame(in.img.Image(), in.canvas.Canvas())
}
