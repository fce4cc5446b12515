package dither

import (
	"fmt"
	"image"
	"math"

	"github.com/gogpu/dither/internal/parallel"
)

// parallelMinPixels is the canvas area from which rows are shaded on a
// worker pool.
const parallelMinPixels = 64 * 64

// SoftwareRenderer is a CPU implementation of Renderer. It evaluates the
// same per-pixel math as the GPU fragment programs, including bilinear
// clamp-to-edge source sampling, and is used where no GPU is present and
// as a reference in tests.
type SoftwareRenderer struct {
	mode    Mode
	variant Variant
	geom    Geometry
	time    float32

	pool     *parallel.Pool
	released bool
}

// NewSoftwareRenderer creates a new software renderer.
func NewSoftwareRenderer(mode Mode, variant Variant) *SoftwareRenderer {
	return &SoftwareRenderer{mode: mode, variant: variant}
}

// SetViewport implements Renderer.
func (r *SoftwareRenderer) SetViewport(g Geometry) error {
	if r.released {
		return ErrReleased
	}
	if !g.Valid() {
		return fmt.Errorf("dither: invalid viewport %+v", g)
	}
	r.geom = g
	return nil
}

// SetTime implements Renderer.
func (r *SoftwareRenderer) SetTime(t float64) {
	r.time = float32(t)
}

// DrawFrame implements Renderer.
func (r *SoftwareRenderer) DrawFrame(src, dst *image.RGBA) error {
	if r.released {
		return ErrReleased
	}
	if src == nil || dst == nil {
		return fmt.Errorf("dither: nil frame")
	}
	w, h := r.geom.CanvasWidth, r.geom.CanvasHeight
	if w == 0 || h == 0 {
		return fmt.Errorf("dither: viewport not set")
	}
	if dst.Rect.Dx() != w || dst.Rect.Dy() != h {
		return fmt.Errorf("dither: target %dx%d does not match viewport %dx%d",
			dst.Rect.Dx(), dst.Rect.Dy(), w, h)
	}

	if w*h < parallelMinPixels {
		r.shadeRows(src, dst, 0, h)
		return nil
	}
	if r.pool == nil {
		r.pool = parallel.NewPool(0)
	}
	r.pool.Rows(h, func(y0, y1 int) { r.shadeRows(src, dst, y0, y1) })
	return nil
}

// shadeRows shades canvas rows [y0, y1).
func (r *SoftwareRenderer) shadeRows(src, dst *image.RGBA, y0, y1 int) {
	w, h := r.geom.CanvasWidth, r.geom.CanvasHeight
	fw, fh := float32(w), float32(h)
	dark, cream := RGBA8(false), RGBA8(true)
	for row := y0; row < y1; row++ {
		// Canvas rows are stored top-down; shading uses a bottom-left origin.
		y := float32(h-1-row) + 0.5
		v := r.geom.TexBottom + (float64(y)/float64(fh))*(r.geom.TexTop-r.geom.TexBottom)
		off := dst.PixOffset(dst.Rect.Min.X, dst.Rect.Min.Y+row)
		for col := 0; col < w; col++ {
			x := float32(col) + 0.5
			u := r.geom.TexLeft + (float64(x)/float64(fw))*(r.geom.TexRight-r.geom.TexLeft)
			cr, cg, cb := sampleBilinear(src, u, v)
			c := dark
			if Shade(r.mode, r.variant, x, y, fw, fh, cr, cg, cb, r.time) {
				c = cream
			}
			p := dst.Pix[off+col*4 : off+col*4+4 : off+col*4+4]
			p[0], p[1], p[2], p[3] = c.R, c.G, c.B, c.A
		}
	}
}

// Release implements Renderer.
func (r *SoftwareRenderer) Release() {
	r.released = true
	if r.pool != nil {
		r.pool.Close()
		r.pool = nil
	}
}

// sampleBilinear samples src at bottom-up texture coordinates (u, v) with
// linear filtering and clamp-to-edge addressing.
func sampleBilinear(src *image.RGBA, u, v float64) (float32, float32, float32) {
	b := src.Rect
	sw, sh := b.Dx(), b.Dy()
	if sw == 0 || sh == 0 {
		return 0, 0, 0
	}
	// Texel space: x right, y down from the top row of the image.
	tx := u*float64(sw) - 0.5
	ty := (1-v)*float64(sh) - 0.5

	x0 := math.Floor(tx)
	y0 := math.Floor(ty)
	fx := float32(tx - x0)
	fy := float32(ty - y0)

	ix0, iy0 := clampInt(int(x0), sw), clampInt(int(y0), sh)
	ix1, iy1 := clampInt(int(x0)+1, sw), clampInt(int(y0)+1, sh)

	var out [3]float32
	for c := 0; c < 3; c++ {
		p00 := texel(src, ix0, iy0, c)
		p10 := texel(src, ix1, iy0, c)
		p01 := texel(src, ix0, iy1, c)
		p11 := texel(src, ix1, iy1, c)
		top := mix(p00, p10, fx)
		bot := mix(p01, p11, fx)
		out[c] = mix(top, bot, fy)
	}
	return out[0], out[1], out[2]
}

func texel(src *image.RGBA, x, y, c int) float32 {
	i := src.PixOffset(src.Rect.Min.X+x, src.Rect.Min.Y+y)
	return float32(src.Pix[i+c]) / 255
}

func clampInt(i, n int) int {
	if i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}
