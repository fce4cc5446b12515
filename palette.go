// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package dither

import (
	"image/color"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// Palette hex values. These are the only two colors any renderer emits.
const (
	DarkHex  = "#111111"
	CreamHex = "#e8d5b7"
)

var (
	// Dark is the color of pixels below threshold, about (0.067, 0.067, 0.067).
	Dark = mustHex(DarkHex)

	// Cream is the color of pixels at or above threshold, about
	// (0.910, 0.835, 0.718).
	Cream = mustHex(CreamHex)
)

func mustHex(s string) colorful.Color {
	c, err := colorful.Hex(s)
	if err != nil {
		panic("dither: bad palette color " + s)
	}
	return c
}

// RGBA8 returns the palette entry as an opaque 8-bit color.
func RGBA8(light bool) color.RGBA {
	c := Dark
	if light {
		c = Cream
	}
	r, g, b := c.RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 0xff}
}

// Vec3 returns the palette entry as float components, the form uploaded to
// fragment programs.
func Vec3(light bool) [3]float32 {
	c := Dark
	if light {
		c = Cream
	}
	return [3]float32{float32(c.R), float32(c.G), float32(c.B)}
}
