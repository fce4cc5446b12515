// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package dither

// Mode selects the per-pixel threshold generator.
//
// The numeric values are part of the GPU program interface: the fragment
// stage receives the mode as an i32 uniform and branches on it.
type Mode int32

const (
	// Gaussian is ordered dithering against a fixed 8x8 rank matrix.
	Gaussian Mode = 0

	// Atkinson is a clustered 4x4 ordered pattern with a contrast boost that
	// approximates the look of Atkinson error diffusion. It is not error
	// diffusion.
	Atkinson Mode = 1

	// Noise thresholds against a stable per-pixel hash.
	Noise Mode = 2
)

// DefaultMode is used when no mode is configured or the configured value is
// not recognized.
const DefaultMode = Atkinson

// modeNames maps configuration values to modes. Matching is exact.
var modeNames = map[string]Mode{
	"gaussian": Gaussian,
	"atkinson": Atkinson,
	"noise":    Noise,
}

// ResolveMode maps a configuration value to a Mode. Recognized values are
// "gaussian", "atkinson" and "noise"; anything else, including the empty
// string, resolves to DefaultMode.
func ResolveMode(value string) Mode {
	if m, ok := modeNames[value]; ok {
		return m
	}
	return DefaultMode
}

// LookupMode is like ResolveMode but reports whether value was recognized.
func LookupMode(value string) (Mode, bool) {
	m, ok := modeNames[value]
	if !ok {
		return DefaultMode, false
	}
	return m, true
}

// Valid reports whether m is one of the three defined modes.
func (m Mode) Valid() bool {
	return m == Gaussian || m == Atkinson || m == Noise
}

// String returns the configuration name of the mode.
func (m Mode) String() string {
	switch m {
	case Gaussian:
		return "gaussian"
	case Atkinson:
		return "atkinson"
	case Noise:
		return "noise"
	default:
		return "unknown"
	}
}

// Threshold returns the threshold in [0, 1) for the pixel center (x, y),
// with the origin at the bottom-left of the canvas.
func (m Mode) Threshold(x, y float32) float32 {
	switch m {
	case Gaussian:
		return OrderedThreshold(x, y)
	case Noise:
		return Hash(x, y)
	default:
		return ClusteredThreshold(x, y)
	}
}

// Adjust applies the mode's luminance remapping before thresholding.
// Only Atkinson changes the value.
func (m Mode) Adjust(gray float32) float32 {
	if m == Atkinson {
		return ContrastBoost(gray)
	}
	return gray
}
