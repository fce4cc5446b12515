// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

//go:build !nogpu

// Package surface is the GPU implementation of dither.Renderer: one
// full-screen quad per frame, drawn with the dither program into an RGBA8
// target and read back into the canvas backing store.
package surface

import (
	"encoding/binary"
	"fmt"
	"image"
	"math"
	"time"

	"github.com/gogpu/dither"
	"github.com/gogpu/dither/internal/shader"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// copyRowAlignment is the required bytes-per-row alignment of
// texture-to-buffer copies.
const copyRowAlignment = 256

// waitTimeout bounds the fence wait of one frame.
const waitTimeout = 5 * time.Second

// Surface renders dithered frames on a GPU device.
//
// Static resources (program, quad positions, uniform buffer, sampler,
// ordered matrix) live for the whole surface. The source texture follows
// the source size and the target texture follows the viewport size.
type Surface struct {
	device hal.Device
	queue  hal.Queue

	mode    dither.Mode
	variant dither.Variant

	program    *shader.Program
	posBuf     hal.Buffer
	texBuf     hal.Buffer
	uniformBuf hal.Buffer
	sampler    hal.Sampler

	orderedTex  hal.Texture
	orderedView hal.TextureView

	srcTex     hal.Texture
	srcView    hal.TextureView
	srcW, srcH uint32
	bindGroup  hal.BindGroup
	scratch    []byte

	targetTex  hal.Texture
	targetView hal.TextureView
	staging    hal.Buffer
	width      uint32
	height     uint32

	geom     dither.Geometry
	time     float32
	released bool

	onRelease []func()
}

// New compiles the program for variant and allocates the static resources.
// Compilation failures are *dither.ShaderError.
func New(device hal.Device, queue hal.Queue, mode dither.Mode, variant dither.Variant) (*Surface, error) {
	if device == nil || queue == nil {
		return nil, fmt.Errorf("surface: nil device: %w", dither.ErrGraphicsUnavailable)
	}
	s := &Surface{device: device, queue: queue, mode: mode, variant: variant}
	program, err := shader.Compile(device, variant)
	if err != nil {
		return nil, err
	}
	s.program = program
	if err := s.createStatic(); err != nil {
		s.Release()
		return nil, err
	}
	return s, nil
}

// OnRelease registers fn to run after the surface has freed its resources.
// Factories use it to release the device a surface was created on.
func (s *Surface) OnRelease(fn func()) {
	if s.released {
		fn()
		return
	}
	s.onRelease = append(s.onRelease, fn)
}

func (s *Surface) createStatic() error {
	var err error
	s.posBuf, err = s.createAndUploadBuffer("dither_positions", PositionBytes(),
		gputypes.BufferUsageVertex|gputypes.BufferUsageCopyDst)
	if err != nil {
		return err
	}
	s.texBuf, err = s.createAndUploadBuffer("dither_texcoords", TexCoordBytes(dither.FullGeometry(1, 1)),
		gputypes.BufferUsageVertex|gputypes.BufferUsageCopyDst)
	if err != nil {
		return err
	}
	s.uniformBuf, err = s.createAndUploadBuffer("dither_uniforms", s.uniforms().Bytes(),
		gputypes.BufferUsageUniform|gputypes.BufferUsageCopyDst)
	if err != nil {
		return err
	}

	s.sampler, err = s.device.CreateSampler(&hal.SamplerDescriptor{
		Label:        "dither_sampler",
		AddressModeU: gputypes.AddressModeClampToEdge,
		AddressModeV: gputypes.AddressModeClampToEdge,
		AddressModeW: gputypes.AddressModeClampToEdge,
		MagFilter:    gputypes.FilterModeLinear,
		MinFilter:    gputypes.FilterModeLinear,
		MipmapFilter: gputypes.FilterModeNearest,
	})
	if err != nil {
		return fmt.Errorf("create sampler: %w", err)
	}

	s.orderedTex, s.orderedView, err = s.createTexture("dither_ordered", 8, 8,
		gputypes.TextureFormatR8Unorm, gputypes.TextureUsageTextureBinding|gputypes.TextureUsageCopyDst)
	if err != nil {
		return err
	}
	s.queue.WriteTexture(
		&hal.ImageCopyTexture{Texture: s.orderedTex, MipLevel: 0},
		shader.OrderedTexels(),
		&hal.ImageDataLayout{Offset: 0, BytesPerRow: 8, RowsPerImage: 8},
		&hal.Extent3D{Width: 8, Height: 8, DepthOrArrayLayers: 1},
	)
	return nil
}

// SetViewport implements dither.Renderer. The target is reallocated only
// when the canvas size changes.
func (s *Surface) SetViewport(g dither.Geometry) error {
	if s.released {
		return dither.ErrReleased
	}
	if !g.Valid() {
		return fmt.Errorf("surface: invalid viewport %+v", g)
	}
	w, h := uint32(g.CanvasWidth), uint32(g.CanvasHeight) //nolint:gosec // validated positive
	if err := s.ensureTarget(w, h); err != nil {
		return err
	}
	s.queue.WriteBuffer(s.texBuf, 0, TexCoordBytes(g))
	s.geom = g
	return nil
}

// SetTime implements dither.Renderer.
func (s *Surface) SetTime(t float64) { s.time = float32(t) }

// DrawFrame implements dither.Renderer.
func (s *Surface) DrawFrame(src, dst *image.RGBA) error {
	if s.released {
		return dither.ErrReleased
	}
	if src == nil || dst == nil {
		return fmt.Errorf("surface: nil frame")
	}
	if s.width == 0 || s.height == 0 {
		return fmt.Errorf("surface: viewport not set")
	}
	if dst.Rect.Dx() != int(s.width) || dst.Rect.Dy() != int(s.height) {
		return fmt.Errorf("surface: target %dx%d does not match viewport %dx%d",
			dst.Rect.Dx(), dst.Rect.Dy(), s.width, s.height)
	}
	if src.Rect.Empty() {
		return fmt.Errorf("surface: empty source")
	}
	if err := s.uploadSource(src); err != nil {
		return err
	}
	s.queue.WriteBuffer(s.uniformBuf, 0, s.uniforms().Bytes())
	return s.encodeAndReadback(dst)
}

func (s *Surface) uniforms() shader.Uniforms {
	return shader.Uniforms{
		Width:  float32(s.geom.CanvasWidth),
		Height: float32(s.geom.CanvasHeight),
		Time:   s.time,
		Mode:   s.mode,
	}
}

// uploadSource copies src into the source texture, recreating it and the
// bind group when the source size changes.
func (s *Surface) uploadSource(src *image.RGBA) error {
	w, h := uint32(src.Rect.Dx()), uint32(src.Rect.Dy()) //nolint:gosec // image sizes fit uint32
	if s.srcTex == nil || s.bindGroup == nil || s.srcW != w || s.srcH != h {
		s.destroySource()
		tex, view, err := s.createTexture("dither_source", w, h,
			gputypes.TextureFormatRGBA8Unorm, gputypes.TextureUsageTextureBinding|gputypes.TextureUsageCopyDst)
		if err != nil {
			return err
		}
		s.srcTex, s.srcView, s.srcW, s.srcH = tex, view, w, h
		if err := s.createBindGroup(); err != nil {
			s.destroySource()
			return err
		}
	}
	data := src.Pix
	if !IsPacked(src) {
		s.scratch = PackRGBA(src, s.scratch)
		data = s.scratch
	}
	s.queue.WriteTexture(
		&hal.ImageCopyTexture{Texture: s.srcTex, MipLevel: 0},
		data[:int(w)*int(h)*4],
		&hal.ImageDataLayout{Offset: 0, BytesPerRow: w * 4, RowsPerImage: h},
		&hal.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1},
	)
	return nil
}

func (s *Surface) createBindGroup() error {
	bg, err := s.device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:  "dither_bind",
		Layout: s.program.BindGroupLayout(),
		Entries: []gputypes.BindGroupEntry{
			{Binding: 0, Resource: gputypes.BufferBinding{Buffer: s.uniformBuf.NativeHandle(), Offset: 0, Size: shader.UniformSize}},
			{Binding: 1, Resource: gputypes.TextureViewBinding{TextureView: gputypes.TextureViewHandle(s.srcView.NativeHandle())}},
			{Binding: 2, Resource: gputypes.SamplerBinding{Sampler: gputypes.SamplerHandle(s.sampler.NativeHandle())}},
			{Binding: 3, Resource: gputypes.TextureViewBinding{TextureView: gputypes.TextureViewHandle(s.orderedView.NativeHandle())}},
		},
	})
	if err != nil {
		return fmt.Errorf("create bind group: %w", err)
	}
	s.bindGroup = bg
	return nil
}

// ensureTarget (re)creates the render target and the readback buffer for
// a w x h canvas.
func (s *Surface) ensureTarget(w, h uint32) error {
	if s.targetTex != nil && s.width == w && s.height == h {
		return nil
	}
	s.destroyTarget()
	tex, view, err := s.createTexture("dither_target", w, h, shader.TargetFormat,
		gputypes.TextureUsageRenderAttachment|gputypes.TextureUsageCopySrc)
	if err != nil {
		return err
	}
	s.targetTex, s.targetView = tex, view

	staging, err := s.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "dither_staging",
		Size:  uint64(AlignedRowPitch(w)) * uint64(h),
		Usage: gputypes.BufferUsageMapRead | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		s.destroyTarget()
		return fmt.Errorf("create staging buffer: %w", err)
	}
	s.staging = staging
	s.width, s.height = w, h
	dither.Logger().Debug("surface: target resized", "width", w, "height", h)
	return nil
}

// encodeAndReadback draws the quad, copies the target into the staging
// buffer, submits, waits and unpacks the rows into dst.
func (s *Surface) encodeAndReadback(dst *image.RGBA) error {
	encoder, err := s.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{
		Label: "dither_encoder",
	})
	if err != nil {
		return fmt.Errorf("create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding("dither_frame"); err != nil {
		return fmt.Errorf("begin encoding: %w", err)
	}

	rp := encoder.BeginRenderPass(&hal.RenderPassDescriptor{
		Label: "dither_pass",
		ColorAttachments: []hal.RenderPassColorAttachment{
			{
				View:       s.targetView,
				LoadOp:     gputypes.LoadOpClear,
				StoreOp:    gputypes.StoreOpStore,
				ClearValue: gputypes.Color{R: 0, G: 0, B: 0, A: 1},
			},
		},
	})
	rp.SetPipeline(s.program.Pipeline())
	rp.SetBindGroup(0, s.bindGroup, nil)
	rp.SetVertexBuffer(0, s.posBuf, 0)
	rp.SetVertexBuffer(1, s.texBuf, 0)
	rp.Draw(4, 1, 0, 0)
	rp.End()

	encoder.TransitionTextures([]hal.TextureBarrier{{
		Texture: s.targetTex,
		Usage: hal.TextureUsageTransition{
			OldUsage: gputypes.TextureUsageRenderAttachment,
			NewUsage: gputypes.TextureUsageCopySrc,
		},
	}})

	pitch := AlignedRowPitch(s.width)
	encoder.CopyTextureToBuffer(s.targetTex, s.staging, []hal.BufferTextureCopy{{
		BufferLayout: hal.ImageDataLayout{Offset: 0, BytesPerRow: pitch, RowsPerImage: s.height},
		TextureBase:  hal.ImageCopyTexture{Texture: s.targetTex, MipLevel: 0},
		Size:         hal.Extent3D{Width: s.width, Height: s.height, DepthOrArrayLayers: 1},
	}})

	cmdBuf, err := encoder.EndEncoding()
	if err != nil {
		return fmt.Errorf("end encoding: %w", err)
	}
	defer s.device.FreeCommandBuffer(cmdBuf)

	fence, err := s.device.CreateFence()
	if err != nil {
		return fmt.Errorf("create fence: %w", err)
	}
	defer s.device.DestroyFence(fence)

	if err := s.queue.Submit([]hal.CommandBuffer{cmdBuf}, fence, 1); err != nil {
		return fmt.Errorf("submit: %w", err)
	}
	fenceOK, err := s.device.Wait(fence, 1, waitTimeout)
	if err != nil || !fenceOK {
		return fmt.Errorf("wait for GPU: ok=%v err=%w", fenceOK, err)
	}

	readback := make([]byte, uint64(pitch)*uint64(s.height))
	if err := s.queue.ReadBuffer(s.staging, 0, readback); err != nil {
		return fmt.Errorf("readback: %w", err)
	}
	UnpackRows(readback, pitch, dst)
	return nil
}

func (s *Surface) createTexture(label string, w, h uint32, format gputypes.TextureFormat,
	usage gputypes.TextureUsage) (hal.Texture, hal.TextureView, error) {
	tex, err := s.device.CreateTexture(&hal.TextureDescriptor{
		Label:         label,
		Size:          hal.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        format,
		Usage:         usage,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("create %s texture: %w", label, err)
	}
	view, err := s.device.CreateTextureView(tex, &hal.TextureViewDescriptor{
		Label:         label + "_view",
		Format:        format,
		Dimension:     gputypes.TextureViewDimension2D,
		Aspect:        gputypes.TextureAspectAll,
		MipLevelCount: 1,
	})
	if err != nil {
		s.device.DestroyTexture(tex)
		return nil, nil, fmt.Errorf("create %s view: %w", label, err)
	}
	return tex, view, nil
}

func (s *Surface) createAndUploadBuffer(label string, data []byte, usage gputypes.BufferUsage) (hal.Buffer, error) {
	buf, err := s.device.CreateBuffer(&hal.BufferDescriptor{
		Label: label,
		Size:  uint64(len(data)),
		Usage: usage,
	})
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", label, err)
	}
	s.queue.WriteBuffer(buf, 0, data)
	return buf, nil
}

// Release implements dither.Renderer. Resources are freed in reverse
// creation order; it is safe to call more than once.
func (s *Surface) Release() {
	if s.released {
		return
	}
	s.released = true
	s.destroyTarget()
	s.destroySource()
	if s.orderedView != nil {
		s.device.DestroyTextureView(s.orderedView)
		s.orderedView = nil
	}
	if s.orderedTex != nil {
		s.device.DestroyTexture(s.orderedTex)
		s.orderedTex = nil
	}
	if s.sampler != nil {
		s.device.DestroySampler(s.sampler)
		s.sampler = nil
	}
	for _, b := range []*hal.Buffer{&s.uniformBuf, &s.texBuf, &s.posBuf} {
		if *b != nil {
			s.device.DestroyBuffer(*b)
			*b = nil
		}
	}
	if s.program != nil {
		s.program.Destroy()
		s.program = nil
	}
	hooks := s.onRelease
	s.onRelease = nil
	for _, fn := range hooks {
		fn()
	}
}

func (s *Surface) destroySource() {
	if s.bindGroup != nil {
		s.device.DestroyBindGroup(s.bindGroup)
		s.bindGroup = nil
	}
	if s.srcView != nil {
		s.device.DestroyTextureView(s.srcView)
		s.srcView = nil
	}
	if s.srcTex != nil {
		s.device.DestroyTexture(s.srcTex)
		s.srcTex = nil
	}
	s.srcW, s.srcH = 0, 0
}

func (s *Surface) destroyTarget() {
	if s.staging != nil {
		s.device.DestroyBuffer(s.staging)
		s.staging = nil
	}
	if s.targetView != nil {
		s.device.DestroyTextureView(s.targetView)
		s.targetView = nil
	}
	if s.targetTex != nil {
		s.device.DestroyTexture(s.targetTex)
		s.targetTex = nil
	}
	s.width, s.height = 0, 0
}

// Size returns the current target size.
func (s *Surface) Size() (uint32, uint32) { return s.width, s.height }

var _ dither.Renderer = (*Surface)(nil)

// PositionBytes returns the quad corner positions as vertex data.
func PositionBytes() []byte {
	return floatBytes(dither.QuadPositions[:])
}

// TexCoordBytes returns the per-corner texture coordinates of g as vertex
// data.
func TexCoordBytes(g dither.Geometry) []byte {
	tc := g.TexCoords()
	return floatBytes(tc[:])
}

func floatBytes(v []float32) []byte {
	out := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(out[i*4:], math.Float32bits(f))
	}
	return out
}

// AlignedRowPitch returns the bytes per row of a w-pixel RGBA8 row padded
// to the copy alignment.
func AlignedRowPitch(w uint32) uint32 {
	return (w*4 + copyRowAlignment - 1) &^ (copyRowAlignment - 1)
}

// UnpackRows copies tightly the first dst-width pixels of each padded row
// of data into dst.
func UnpackRows(data []byte, pitch uint32, dst *image.RGBA) {
	w, h := dst.Rect.Dx(), dst.Rect.Dy()
	for y := 0; y < h; y++ {
		off := dst.PixOffset(dst.Rect.Min.X, dst.Rect.Min.Y+y)
		start := y * int(pitch)
		copy(dst.Pix[off:off+w*4], data[start:start+w*4])
	}
}

// IsPacked reports whether src's rows are contiguous from the start of Pix.
func IsPacked(src *image.RGBA) bool {
	return src.Stride == src.Rect.Dx()*4 && src.Rect.Min == (image.Point{})
}

// PackRGBA copies src's pixels into tightly packed rows, reusing buf when
// it is large enough.
func PackRGBA(src *image.RGBA, buf []byte) []byte {
	w, h := src.Rect.Dx(), src.Rect.Dy()
	n := w * h * 4
	if cap(buf) < n {
		buf = make([]byte, n)
	}
	buf = buf[:n]
	for y := 0; y < h; y++ {
		off := src.PixOffset(src.Rect.Min.X, src.Rect.Min.Y+y)
		copy(buf[y*w*4:(y+1)*w*4], src.Pix[off:off+w*4])
	}
	return buf
}
