// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package dither

import "image"

// Renderer draws dithered frames of a source picture into a canvas backing
// store. The GPU render surface and SoftwareRenderer both implement it.
//
// Renderers are not safe for concurrent use. All calls are expected to come
// from the event loop goroutine.
type Renderer interface {
	// SetViewport sets the canvas size and the visible source rectangle.
	SetViewport(g Geometry) error

	// SetTime sets the animation time, in abstract units (one unit is two
	// seconds of wall time). Only the inline variant uses it.
	SetTime(t float64)

	// DrawFrame uploads src and renders one frame into dst. dst must match
	// the viewport size set by the last SetViewport call.
	DrawFrame(src, dst *image.RGBA) error

	// Release frees every resource held by the renderer. It is idempotent.
	Release()
}
