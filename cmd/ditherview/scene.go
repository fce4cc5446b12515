package main

import (
	"image"
	"image/draw"
	"math"

	xdraw "golang.org/x/image/draw"

	"github.com/gogpu/dither"
	"github.com/gogpu/dither/effect"
	"github.com/gogpu/dither/internal/media"
	"github.com/gogpu/dither/loop"
	"github.com/gogpu/dither/page"
)

const (
	headerShare = 0.55
	gap         = 16
)

// scene is the page shown by the viewer: an optional header canvas on top
// and a row of marked images below it.
type scene struct {
	doc    *page.Document
	header *page.Element
	row    *page.Element
	slots  []*page.Element // original images, in row order
	// decoding counts images whose decode has not finished.
	decoding int

	headerCfg effect.HeaderConfig
	width     int
	height    int
	rects     map[*page.Element]image.Rectangle
}

func newScene(doc *page.Document, headerCfg effect.HeaderConfig, withHeader bool) *scene {
	s := &scene{
		doc:       doc,
		row:       doc.CreateElement("div"),
		headerCfg: headerCfg,
		rects:     make(map[*page.Element]image.Rectangle),
	}
	if withHeader {
		s.header = doc.CreateElement("canvas")
		doc.Body().AppendChild(s.header)
	}
	doc.Body().AppendChild(s.row)
	return s
}

// addImage appends a hidden, marked image and decodes path in the
// background.
func (s *scene) addImage(p media.Poster, path string) *page.Element {
	img := s.doc.CreateElement("img")
	img.AddClass(effect.DefaultMarkerClass)
	img.SetStyle("visibility", "hidden")
	s.row.AppendChild(img)
	s.slots = append(s.slots, img)
	s.decoding++
	media.LoadElement(p, img, path, func(error) { s.decoding-- })
	return img
}

// start mounts the header and attaches a manager to the document.
func (s *scene) start(l *loop.Loop, opts ...effect.Option) *effect.Manager {
	m := effect.NewManager(l, s.doc, opts...)
	if s.header != nil {
		if _, err := m.MountHeader(s.header, s.headerCfg); err != nil {
			dither.Logger().Error("ditherview: header not mounted", "error", err)
		}
	}
	m.Attach()
	s.doc.MarkReady()
	return m
}

// layout assigns boxes for a w×h viewport and dispatches a resize event
// when any box changed.
func (s *scene) layout(w, h int) {
	rects := make(map[*page.Element]image.Rectangle, len(s.slots)+1)
	top := 0
	if s.header != nil {
		hh := int(math.Round(float64(h) * headerShare))
		rects[s.header] = image.Rect(0, 0, w, hh)
		top = hh + gap
	}

	children := s.row.Children()
	if n := len(children); n > 0 {
		cell := (w - gap*(n+1)) / n
		for i, el := range children {
			aspect := 1.0
			if i < len(s.slots) {
				if nw, nh := s.slots[i].NaturalSize(); nw > 0 && nh > 0 {
					aspect = float64(nw) / float64(nh)
				}
			}
			cw := max(cell, 1)
			ch := max(int(float64(cw)/aspect), 1)
			if top+ch > h {
				ch = max(h-top, 1)
				cw = max(int(float64(ch)*aspect), 1)
			}
			x := gap + i*(cell+gap)
			rects[el] = image.Rect(x, top, x+cw, top+ch)
		}
	}

	changed := w != s.width || h != s.height || len(rects) != len(s.rects)
	for el, r := range rects {
		if s.rects[el] != r {
			changed = true
		}
		el.SetBox(float64(r.Dx()), float64(r.Dy()))
	}
	s.width, s.height, s.rects = w, h, rects
	if changed {
		s.doc.Resize(0)
	}
}

// compose paints the current page into dst, reallocating it when the
// viewport size changed.
func (s *scene) compose(dst *image.RGBA) *image.RGBA {
	if dst == nil || dst.Rect.Dx() != s.width || dst.Rect.Dy() != s.height {
		dst = image.NewRGBA(image.Rect(0, 0, s.width, s.height))
	}
	draw.Draw(dst, dst.Rect, image.NewUniform(dither.RGBA8(false)), image.Point{}, draw.Src)

	if s.header != nil {
		s.paint(dst, s.header)
	}
	for _, el := range s.row.Children() {
		s.paint(dst, el)
	}
	return dst
}

func (s *scene) paint(dst *image.RGBA, el *page.Element) {
	r, ok := s.rects[el]
	if !ok || r.Empty() {
		return
	}
	switch el.Tag() {
	case "canvas":
		if src := el.Canvas(); src != nil && !src.Rect.Empty() {
			xdraw.NearestNeighbor.Scale(dst, r, src, src.Rect, xdraw.Src, nil)
		}
	case "img":
		if el.Style("visibility") == "hidden" || el.Image() == nil {
			return
		}
		src := media.NRGBA(el.Image())
		xdraw.ApproxBiLinear.Scale(dst, r, src, src.Rect, xdraw.Over, nil)
	}
}
