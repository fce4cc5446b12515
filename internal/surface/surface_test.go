//go:build !nogpu

package surface

import (
	"encoding/binary"
	"errors"
	"image"
	"math"
	"strings"
	"testing"

	"github.com/gogpu/dither"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
	"github.com/gogpu/wgpu/hal/noop"
)

func createNoopDevice(t *testing.T) (hal.Device, hal.Queue, func()) {
	t.Helper()
	api := noop.API{}
	instance, err := api.CreateInstance(nil)
	if err != nil {
		t.Fatalf("CreateInstance failed: %v", err)
	}
	adapters := instance.EnumerateAdapters(nil)
	openDev, err := adapters[0].Adapter.Open(0, gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		t.Fatalf("Open failed: %v", err)
	}
	return openDev.Device, openDev.Queue, func() {
		openDev.Device.Destroy()
		instance.Destroy()
	}
}

func newTestSurface(t *testing.T, v dither.Variant) (*Surface, func()) {
	t.Helper()
	device, queue, cleanup := createNoopDevice(t)
	s, err := New(device, queue, dither.Atkinson, v)
	if err != nil {
		cleanup()
		if strings.Contains(err.Error(), "not yet implemented") {
			t.Skipf("naga feature not yet implemented: %v", err)
		}
		t.Fatalf("New: %v", err)
	}
	return s, cleanup
}

func TestNewAndRelease(t *testing.T) {
	s, cleanup := newTestSurface(t, dither.VariantInline)
	defer cleanup()

	hooks := 0
	s.OnRelease(func() { hooks++ })
	s.Release()
	s.Release()
	if hooks != 1 {
		t.Errorf("release hooks ran %d times, want 1", hooks)
	}
	s.OnRelease(func() { hooks++ })
	if hooks != 2 {
		t.Error("hook registered after release did not run")
	}
	if s.program != nil || s.posBuf != nil || s.sampler != nil {
		t.Error("resources kept after Release")
	}
}

func TestNilDevice(t *testing.T) {
	if _, err := New(nil, nil, dither.Atkinson, dither.VariantHeader); !errors.Is(err, dither.ErrGraphicsUnavailable) {
		t.Errorf("err = %v, want ErrGraphicsUnavailable", err)
	}
}

func TestSetViewport(t *testing.T) {
	s, cleanup := newTestSurface(t, dither.VariantHeader)
	defer cleanup()
	defer s.Release()

	if err := s.SetViewport(dither.Geometry{}); err == nil {
		t.Error("invalid viewport accepted")
	}
	g, ok := dither.ComputeCrop(1920, 1080, 400, 800)
	if !ok {
		t.Fatal("ComputeCrop failed")
	}
	if err := s.SetViewport(g); err != nil {
		t.Fatalf("SetViewport: %v", err)
	}
	if w, h := s.Size(); w != 400 || h != 800 {
		t.Errorf("Size = %d,%d, want 400,800", w, h)
	}
	target := s.targetTex
	if err := s.SetViewport(g); err != nil {
		t.Fatal(err)
	}
	if s.targetTex != target {
		t.Error("same size reallocated the target")
	}
}

func TestDrawFrameErrors(t *testing.T) {
	s, cleanup := newTestSurface(t, dither.VariantHeader)
	defer cleanup()

	src := image.NewRGBA(image.Rect(0, 0, 4, 4))
	if err := s.DrawFrame(src, image.NewRGBA(image.Rect(0, 0, 4, 4))); err == nil {
		t.Error("DrawFrame without viewport succeeded")
	}
	if err := s.SetViewport(dither.FullGeometry(8, 8)); err != nil {
		t.Fatal(err)
	}
	if err := s.DrawFrame(src, image.NewRGBA(image.Rect(0, 0, 4, 4))); err == nil {
		t.Error("DrawFrame with mismatched target succeeded")
	}
	if err := s.DrawFrame(nil, image.NewRGBA(image.Rect(0, 0, 8, 8))); err == nil {
		t.Error("DrawFrame with nil source succeeded")
	}
	s.Release()
	if err := s.DrawFrame(src, image.NewRGBA(image.Rect(0, 0, 8, 8))); !errors.Is(err, dither.ErrReleased) {
		t.Errorf("err = %v, want ErrReleased", err)
	}
	if err := s.SetViewport(dither.FullGeometry(8, 8)); !errors.Is(err, dither.ErrReleased) {
		t.Errorf("err = %v, want ErrReleased", err)
	}
}

type bindFailDevice struct {
	hal.Device
	fail bool
}

func (d *bindFailDevice) CreateBindGroup(desc *hal.BindGroupDescriptor) (hal.BindGroup, error) {
	if d.fail {
		return nil, errors.New("out of descriptors")
	}
	return d.Device.CreateBindGroup(desc)
}

func TestUploadSourceBindGroupFailure(t *testing.T) {
	device, queue, cleanup := createNoopDevice(t)
	defer cleanup()
	dev := &bindFailDevice{Device: device}
	s, err := New(dev, queue, dither.Atkinson, dither.VariantInline)
	if err != nil {
		if strings.Contains(err.Error(), "not yet implemented") {
			t.Skipf("naga feature not yet implemented: %v", err)
		}
		t.Fatalf("New: %v", err)
	}
	defer s.Release()

	src := image.NewRGBA(image.Rect(0, 0, 6, 4))
	dev.fail = true
	if err := s.uploadSource(src); err == nil {
		t.Fatal("uploadSource succeeded without a bind group")
	}
	if s.srcTex != nil || s.srcView != nil || s.bindGroup != nil {
		t.Error("failed upload left a half-built source")
	}

	dev.fail = false
	if err := s.uploadSource(src); err != nil {
		t.Fatalf("uploadSource after failure: %v", err)
	}
	if s.srcTex == nil || s.bindGroup == nil {
		t.Error("same-size upload did not rebuild the source")
	}
}

func readFloats(b []byte) []float32 {
	out := make([]float32, len(b)/4)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
	}
	return out
}

func TestVertexBytes(t *testing.T) {
	pos := readFloats(PositionBytes())
	want := []float32{-1, -1, 1, -1, -1, 1, 1, 1}
	for i := range want {
		if pos[i] != want[i] {
			t.Fatalf("positions = %v, want %v", pos, want)
		}
	}
	g := dither.Geometry{CanvasWidth: 10, CanvasHeight: 10, TexLeft: 0.25, TexRight: 0.75, TexTop: 1, TexBottom: 0}
	tc := readFloats(TexCoordBytes(g))
	wantTC := []float32{0.25, 0, 0.75, 0, 0.25, 1, 0.75, 1}
	for i := range wantTC {
		if tc[i] != wantTC[i] {
			t.Fatalf("texcoords = %v, want %v", tc, wantTC)
		}
	}
}

func TestAlignedRowPitch(t *testing.T) {
	tests := []struct{ w, want uint32 }{
		{1, 256}, {64, 256}, {65, 512}, {400, 1792}, {0, 0},
	}
	for _, tt := range tests {
		if got := AlignedRowPitch(tt.w); got != tt.want {
			t.Errorf("AlignedRowPitch(%d) = %d, want %d", tt.w, got, tt.want)
		}
	}
}

func TestUnpackRows(t *testing.T) {
	const w, h = 3, 2
	pitch := AlignedRowPitch(w)
	data := make([]byte, int(pitch)*h)
	for y := 0; y < h; y++ {
		for i := 0; i < w*4; i++ {
			data[y*int(pitch)+i] = byte(y*100 + i)
		}
		data[y*int(pitch)+w*4] = 0xEE // padding
	}
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	UnpackRows(data, pitch, dst)
	for y := 0; y < h; y++ {
		for i := 0; i < w*4; i++ {
			if got := dst.Pix[y*dst.Stride+i]; got != byte(y*100+i) {
				t.Fatalf("pixel byte (%d,%d) = %d", y, i, got)
			}
		}
	}
}

func TestPackRGBA(t *testing.T) {
	parent := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for i := range parent.Pix {
		parent.Pix[i] = byte(i)
	}
	if !IsPacked(parent) {
		t.Error("fresh image not packed")
	}
	sub := parent.SubImage(image.Rect(1, 1, 3, 3)).(*image.RGBA)
	if IsPacked(sub) {
		t.Error("sub-image reported packed")
	}
	got := PackRGBA(sub, nil)
	if len(got) != 2*2*4 {
		t.Fatalf("len = %d", len(got))
	}
	// Row 1, column 1 of the parent.
	if got[0] != parent.Pix[parent.PixOffset(1, 1)] || got[8] != parent.Pix[parent.PixOffset(1, 2)] {
		t.Error("packed rows do not match the sub-image")
	}
	buf := make([]byte, 64)
	if out := PackRGBA(sub, buf); &out[0] != &buf[0] {
		t.Error("large enough buffer was not reused")
	}
}
