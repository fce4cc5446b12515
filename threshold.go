// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package dither

import "math"

// Bias is added to every threshold so that black input always renders dark.
const Bias = 0.1

// Luminance weights (ITU-R BT.601).
const (
	LumaR = 0.299
	LumaG = 0.587
	LumaB = 0.114
)

// OrderedMatrix is the 8x8 rank matrix used by Gaussian mode. Row 0 is the
// bottom row of each tile. Values are 0, 4, ..., 252 and are divided by 255.
var OrderedMatrix = [64]uint8{
	0, 128, 32, 160, 8, 136, 40, 168,
	192, 64, 224, 96, 200, 72, 232, 104,
	48, 176, 16, 144, 56, 184, 24, 152,
	240, 112, 208, 80, 248, 120, 216, 88,
	12, 140, 44, 172, 4, 132, 36, 164,
	204, 76, 236, 108, 196, 68, 228, 100,
	60, 188, 28, 156, 52, 180, 20, 148,
	252, 124, 220, 92, 244, 116, 212, 84,
}

// ClusteredMatrix is the 4x4 rank matrix used by Atkinson mode, indexed
// y*4+x. Values are divided by 16.
var ClusteredMatrix = [16]uint8{
	0, 12, 3, 15,
	8, 4, 11, 7,
	2, 14, 1, 13,
	10, 6, 9, 5,
}

func fract(x float32) float32 {
	return x - float32(math.Floor(float64(x)))
}

// glMod matches the GLSL/WGSL mod definition x - y*floor(x/y), which is
// never negative for positive y.
func glMod(x, y float32) float32 {
	return x - y*float32(math.Floor(float64(x/y)))
}

func clamp01(x float32) float32 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}

func smoothstep(edge0, edge1, x float32) float32 {
	t := clamp01((x - edge0) / (edge1 - edge0))
	return t * t * (3 - 2*t)
}

func mix(a, b, t float32) float32 {
	return a*(1-t) + b*t
}

// Hash is a stable pseudo-random value in [0, 1) for the point (x, y).
// It has no time input, so the same pixel always gets the same value.
func Hash(x, y float32) float32 {
	px := fract(x * 0.1031)
	py := fract(y * 0.1031)
	pz := fract(x * 0.1031)
	d := px*(py+33.33) + py*(pz+33.33) + pz*(px+33.33)
	px += d
	py += d
	pz += d
	return fract((px + py) * pz)
}

// OrderedThreshold samples OrderedMatrix tiled every 8 pixels.
func OrderedThreshold(x, y float32) float32 {
	cx := int(glMod(x, 8))
	cy := int(glMod(y, 8))
	return float32(OrderedMatrix[cy*8+cx]) / 255
}

// ClusteredThreshold samples ClusteredMatrix tiled every 4 pixels.
func ClusteredThreshold(x, y float32) float32 {
	cx := int(glMod(x, 4))
	cy := int(glMod(y, 4))
	return float32(ClusteredMatrix[cy*4+cx]) / 16
}

// Luminance converts a linear [0,1] color to gray with BT.601 weights.
func Luminance(r, g, b float32) float32 {
	return r*LumaR + g*LumaG + b*LumaB
}

// ContrastBoost is the Atkinson luminance remap clamp(gray*1.2-0.1, 0, 1).
func ContrastBoost(gray float32) float32 {
	return clamp01(gray*1.2 - 0.1)
}

// AnimatedNoise blends two hash samples one time unit apart, so the field
// changes once per unit of t.
func AnimatedNoise(x, y, t float32) float32 {
	ft := float32(math.Floor(float64(t)))
	n1 := Hash(x+ft, y+ft)
	n2 := Hash(x+ft+1, y+ft+1)
	return mix(n1, n2, smoothstep(0, 1, fract(t)))
}

// AnimatedOffset is the time-varying threshold offset used by inline
// instances at pixel (x, y). gray is the luminance after fade and mode
// adjustment; dark regions are left unperturbed.
func AnimatedOffset(x, y, t, gray float32) float32 {
	noise := AnimatedNoise(x*0.15, y*0.15, t) - 0.5
	flicker := 0.08 * float32(math.Sin(float64(t*2+Hash(x*0.2, y*0.2)*6.28)))
	intensity := smoothstep(0.05, 0.3, gray)
	return (noise*0.15 + flicker) * intensity
}

// Binarize reports whether a pixel with the given luminance renders light.
func Binarize(gray, threshold float32) bool {
	return gray >= threshold+Bias
}
