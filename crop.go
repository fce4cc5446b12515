// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package dither

// Geometry is the canvas size in device pixels and the rectangle of the
// source, in bottom-up texture coordinates, shown across it.
//
// A valid Geometry satisfies 0 <= TexLeft < TexRight <= 1 and
// 0 <= TexBottom < TexTop <= 1.
type Geometry struct {
	CanvasWidth  int
	CanvasHeight int

	TexLeft   float64
	TexRight  float64
	TexTop    float64
	TexBottom float64
}

// FullGeometry shows the whole source across a w*h canvas.
func FullGeometry(w, h int) Geometry {
	return Geometry{
		CanvasWidth:  w,
		CanvasHeight: h,
		TexLeft:      0,
		TexRight:     1,
		TexTop:       1,
		TexBottom:    0,
	}
}

// ComputeCrop fits a srcW*srcH source over a canvasW*canvasH canvas with
// cover semantics. A source wider than the canvas loses equal strips on the
// left and right. Otherwise only the top of the source is cut off, so the
// bottom edge of the picture always stays on screen.
//
// It reports false, and returns the zero Geometry, when any dimension is not
// positive (the source has not loaded yet or the canvas is not laid out).
func ComputeCrop(srcW, srcH, canvasW, canvasH int) (Geometry, bool) {
	if srcW <= 0 || srcH <= 0 || canvasW <= 0 || canvasH <= 0 {
		return Geometry{}, false
	}

	g := FullGeometry(canvasW, canvasH)
	canvasAspect := float64(canvasW) / float64(canvasH)
	sourceAspect := float64(srcW) / float64(srcH)

	if sourceAspect > canvasAspect {
		scale := canvasAspect / sourceAspect
		g.TexLeft = (1 - scale) / 2
		g.TexRight = 1 - g.TexLeft
	} else {
		g.TexTop = sourceAspect / canvasAspect
		g.TexBottom = 0
	}
	return g, true
}

// Valid reports whether the rectangle invariants hold.
func (g Geometry) Valid() bool {
	return g.CanvasWidth > 0 && g.CanvasHeight > 0 &&
		0 <= g.TexLeft && g.TexLeft < g.TexRight && g.TexRight <= 1 &&
		0 <= g.TexBottom && g.TexBottom < g.TexTop && g.TexTop <= 1
}

// TexCoords returns the per-vertex texture coordinates for a triangle-strip
// quad whose corners are, in order, bottom-left, bottom-right, top-left and
// top-right.
func (g Geometry) TexCoords() [8]float32 {
	l, r := float32(g.TexLeft), float32(g.TexRight)
	t, b := float32(g.TexTop), float32(g.TexBottom)
	return [8]float32{
		l, b, r, b,
		l, t, r, t,
	}
}

// QuadPositions are the clip-space corners matching TexCoords.
var QuadPositions = [8]float32{
	-1, -1, 1, -1,
	-1, 1, 1, 1,
}
