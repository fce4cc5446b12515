// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package dither

// Variant selects the fragment program: fade policy and animation.
type Variant int

const (
	// VariantHeader is the full-bleed background: a single fade over the
	// bottom 40% of the canvas, no animation.
	VariantHeader Variant = iota

	// VariantInline is the per-image effect: a four-sided fade whose ramp
	// width is jittered per pixel, plus an animated threshold offset.
	VariantInline
)

// String returns the variant name.
func (v Variant) String() string {
	switch v {
	case VariantHeader:
		return "header"
	case VariantInline:
		return "inline"
	default:
		return "unknown"
	}
}

// headerFadeHeight is the fraction of the canvas height covered by the
// bottom fade.
const headerFadeHeight = 0.4

// Fade returns the luminance multiplier at pixel (x, y) of a w*h canvas.
func (v Variant) Fade(x, y, w, h float32) float32 {
	if v == VariantInline {
		return edgeFade(x, y, w, h)
	}
	return smoothstep(0, headerFadeHeight, y/h)
}

// edgeFade ramps every edge over 10-25% of the canvas, the exact width
// jittered per pixel so the border reads as torn rather than smooth.
func edgeFade(x, y, w, h float32) float32 {
	u, v := x/w, y/h
	ramp := 0.1 + Hash(x*0.5, y*0.5)*0.15
	return smoothstep(0, ramp, u) *
		smoothstep(0, ramp, 1-u) *
		smoothstep(0, ramp, v) *
		smoothstep(0, ramp, 1-v)
}

// Shade evaluates one output pixel. (x, y) is the pixel center with a
// bottom-left origin, w and h the canvas size, rgb the sampled source color
// and t the animation time (ignored by the header variant). It reports
// whether the pixel is light.
func Shade(mode Mode, variant Variant, x, y, w, h float32, r, g, b, t float32) bool {
	gray := Luminance(r, g, b) * variant.Fade(x, y, w, h)
	gray = mode.Adjust(gray)
	threshold := mode.Threshold(x, y)
	if variant == VariantInline {
		threshold += AnimatedOffset(x, y, t, gray)
	}
	return Binarize(gray, threshold)
}
