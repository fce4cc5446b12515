package effect

import (
	"errors"
	"fmt"
	"image"
	"time"

	"github.com/gogpu/dither"
	"github.com/gogpu/dither/internal/media"
	"github.com/gogpu/dither/loop"
	"github.com/gogpu/dither/page"
)

type fakeRenderer struct {
	variant   dither.Variant
	viewports []dither.Geometry
	times     []float64
	draws     int
	released  int
}

func (r *fakeRenderer) SetViewport(g dither.Geometry) error {
	if !g.Valid() {
		return errors.New("invalid geometry")
	}
	r.viewports = append(r.viewports, g)
	return nil
}

func (r *fakeRenderer) SetTime(t float64) { r.times = append(r.times, t) }

func (r *fakeRenderer) DrawFrame(src, dst *image.RGBA) error {
	if src == nil || dst == nil {
		return errors.New("missing frame")
	}
	r.draws++
	return nil
}

func (r *fakeRenderer) Release() { r.released++ }

func (r *fakeRenderer) lastViewport() dither.Geometry {
	if len(r.viewports) == 0 {
		return dither.Geometry{}
	}
	return r.viewports[len(r.viewports)-1]
}

// fakeFactory records every renderer it creates. A non-nil err is returned
// instead.
type fakeFactory struct {
	made []*fakeRenderer
	err  error
}

func (f *fakeFactory) create(_ dither.Mode, v dither.Variant) (dither.Renderer, error) {
	if f.err != nil {
		return nil, f.err
	}
	r := &fakeRenderer{variant: v}
	f.made = append(f.made, r)
	return r, nil
}

type fakeClock struct{ now time.Duration }

func (c *fakeClock) Now() time.Duration { return c.now }

func newTestLoop() (*loop.Loop, *fakeClock) {
	c := &fakeClock{}
	return loop.New(loop.WithClock(c.Now)), c
}

// addMarkedImage appends a decoded, marked image of w×h pixels laid out in
// a box of the same CSS size.
func addMarkedImage(parent *page.Element, w, h int) *page.Element {
	img := parent.Document().CreateElement("img")
	img.AddClass(DefaultMarkerClass)
	img.SetStyle("visibility", "hidden")
	img.SetImage(image.NewRGBA(image.Rect(0, 0, w, h)))
	img.SetBox(float64(w), float64(h))
	parent.AppendChild(img)
	return img
}

type fakePlayer struct {
	w, h     int
	frame    *image.RGBA
	ready    bool
	playing  bool
	playErr  error
	loaded   func()
	loadErr  error
	closed   int
	playCall int
}

func newFakePlayer(w, h int) *fakePlayer {
	return &fakePlayer{w: w, h: h, frame: image.NewRGBA(image.Rect(0, 0, w, h))}
}

func (p *fakePlayer) Kind() media.Kind { return media.KindVideo }
func (p *fakePlayer) Size() (int, int) { return p.w, p.h }
func (p *fakePlayer) Frame() *image.RGBA {
	if !p.ready {
		return nil
	}
	return p.frame
}
func (p *fakePlayer) Ready() bool { return p.ready }

func (p *fakePlayer) Load(_ media.Poster, loaded func()) error {
	if p.loadErr != nil {
		return p.loadErr
	}
	p.loaded = loaded
	return nil
}

func (p *fakePlayer) Play() error {
	p.playCall++
	if p.playErr != nil {
		return p.playErr
	}
	p.playing = true
	return nil
}

func (p *fakePlayer) Playing() bool { return p.playing }
func (p *fakePlayer) Close()        { p.closed++ }

// deliver simulates the first decoded frame arriving.
func (p *fakePlayer) deliver() {
	p.ready = true
	if p.loaded != nil {
		p.loaded()
	}
}

var errNoGPU = fmt.Errorf("no adapter: %w", dither.ErrGraphicsUnavailable)
