// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package shader holds the WGSL programs of the dither pass and compiles
// them into a render pipeline.
//
// Both variants share one vertex stage and one bind group:
//
//	binding 0: Uniforms (uniform buffer, fragment)
//	binding 1: source texture (texture_2d<f32>, fragment)
//	binding 2: linear clamp-to-edge sampler (fragment)
//	binding 3: 8x8 ordered matrix (R8Unorm texture, fragment)
package shader

import (
	_ "embed"
	"encoding/binary"
	"fmt"
	"math"

	"github.com/gogpu/dither"
	"github.com/gogpu/naga"
)

//go:embed wgsl/quad.wgsl
var quadWGSL string

//go:embed wgsl/common.wgsl
var commonWGSL string

//go:embed wgsl/header.wgsl
var headerWGSL string

//go:embed wgsl/inline.wgsl
var inlineWGSL string

// Entry points.
const (
	VertexEntry   = "vs_main"
	FragmentEntry = "fs_main"
)

// UniformSize is the byte size of the uniform buffer.
// Layout: resolution (vec2<f32>) = 8 + time (f32) = 4 + mode (i32) = 4 +
// dark (vec4<f32>) = 16 + cream (vec4<f32>) = 16 = 48 bytes.
const UniformSize = 48

// VertexStride is the byte stride of both vertex buffers (one vec2<f32>).
const VertexStride = 8

// VertexSource returns the WGSL of the shared vertex stage.
func VertexSource() string { return quadWGSL }

// FragmentSource returns the WGSL of the fragment stage for v.
func FragmentSource(v dither.Variant) string {
	if v == dither.VariantInline {
		return commonWGSL + "\n" + inlineWGSL
	}
	return commonWGSL + "\n" + headerWGSL
}

// Uniforms mirrors the Uniforms struct in common.wgsl.
type Uniforms struct {
	Width, Height float32
	Time          float32
	Mode          dither.Mode
}

// Bytes serializes u, appending the palette, in the std140-compatible
// layout the shader expects.
func (u Uniforms) Bytes() []byte {
	buf := make([]byte, UniformSize)
	putF32(buf[0:], u.Width)
	putF32(buf[4:], u.Height)
	putF32(buf[8:], u.Time)
	binary.LittleEndian.PutUint32(buf[12:], uint32(int32(u.Mode))) //nolint:gosec // mode is a small enum
	dark, cream := dither.Vec3(false), dither.Vec3(true)
	for i := range 3 {
		putF32(buf[16+i*4:], dark[i])
		putF32(buf[32+i*4:], cream[i])
	}
	putF32(buf[28:], 1)
	putF32(buf[44:], 1)
	return buf
}

func putF32(b []byte, v float32) {
	binary.LittleEndian.PutUint32(b, math.Float32bits(v))
}

// ToSPIRV compiles WGSL source to SPIR-V words.
func ToSPIRV(wgsl string) ([]uint32, error) {
	spirvBytes, err := naga.Compile(wgsl)
	if err != nil {
		return nil, err
	}
	if len(spirvBytes)%4 != 0 {
		return nil, fmt.Errorf("shader: SPIR-V length %d is not word aligned", len(spirvBytes))
	}
	// SPIR-V is little-endian 32-bit words.
	words := make([]uint32, len(spirvBytes)/4)
	for i := range words {
		words[i] = binary.LittleEndian.Uint32(spirvBytes[i*4:])
	}
	return words, nil
}

// OrderedTexels returns the 8x8 ordered matrix as R8 texel rows, row 0
// first. Row 0 is the bottom row of each tile.
func OrderedTexels() []byte {
	out := make([]byte, len(dither.OrderedMatrix))
	copy(out, dither.OrderedMatrix[:])
	return out
}
