// Package dither renders continuous-tone pictures as a two-color ordered
// dither in the fixed dark/cream palette.
//
// # Overview
//
// The package holds the pure parts of the pipeline: the dither [Mode]
// enumeration and its resolver, the per-pixel threshold generators, the
// bottom-anchored cover crop ([ComputeCrop]) and a CPU [SoftwareRenderer]
// that evaluates exactly the same math as the GPU fragment programs.
//
// GPU rendering lives in internal packages and is reached through the
// effect package, which mounts live canvases onto a page model and drives
// them from the loop package's frame callbacks.
//
// # Quick Start
//
//	import "github.com/gogpu/dither"
//
//	mode := dither.ResolveMode(os.Getenv("DITHER_MODE"))
//	r := dither.NewSoftwareRenderer(mode, dither.VariantHeader)
//	geom, _ := dither.ComputeCrop(srcW, srcH, 800, 450)
//	_ = r.SetViewport(geom)
//	_ = r.DrawFrame(src, dst)
//
// # Coordinate System
//
// Threshold and fade functions take pixel coordinates with the origin at
// the bottom-left corner of the canvas and Y increasing upwards, sampled at
// pixel centers. Texture coordinates are bottom-up as well: V=0 is the
// bottom row of the source picture.
//
// # Output
//
// Every output pixel is exactly [Dark] or [Cream]. There are no
// intermediate colors.
package dither

// Version information
const (
	// Version is the current version of the library
	Version = "0.3.0"
)
