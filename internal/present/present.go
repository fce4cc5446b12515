// Package present draws composed frames into a gogpu window.
//
// A Presenter keeps one window texture. The texture is created from the
// first frame, updated in place while the frame size stays the same, and
// replaced when it changes. The replaced texture is destroyed only after
// its successor exists, because command buffers still in flight may read
// it until then.
package present

import (
	"errors"
	"fmt"
	"image"

	"github.com/gogpu/gpucontext"
)

var (
	// ErrClosed is returned by Present after Close.
	ErrClosed = errors.New("present: presenter closed")

	// ErrNoTextureCreator is returned when the draw context cannot create
	// textures.
	ErrNoTextureCreator = errors.New("present: draw context has no texture creator")

	// ErrNotTexture is returned when the created texture cannot be drawn.
	ErrNotTexture = errors.New("present: created texture is not drawable")
)

type textureDestroyer interface {
	Destroy()
}

// Presenter uploads frames to a window texture and draws it.
type Presenter struct {
	texture any
	old     any
	width   int
	height  int
	closed  bool
}

// New creates a presenter with no texture.
func New() *Presenter { return &Presenter{} }

// Size returns the size of the current texture.
func (p *Presenter) Size() (int, int) { return p.width, p.height }

// Present uploads frame and draws it at the window origin. frame must be
// tightly packed with a zero origin.
func (p *Presenter) Present(dc gpucontext.TextureDrawer, frame *image.RGBA) error {
	if p.closed {
		return ErrClosed
	}
	w, h := frame.Rect.Dx(), frame.Rect.Dy()
	if w <= 0 || h <= 0 {
		return nil
	}
	data := frame.Pix[:w*h*4]
	p.resize(w, h)

	if p.texture == nil {
		creator := dc.TextureCreator()
		if creator == nil {
			return ErrNoTextureCreator
		}
		tex, err := creator.NewTextureFromRGBA(w, h, data)
		if err != nil {
			return fmt.Errorf("present: create %dx%d texture: %w", w, h, err)
		}
		p.texture = tex
		p.dropOld()
	} else if updater, ok := p.texture.(gpucontext.TextureUpdater); ok {
		if err := updater.UpdateData(data); err != nil {
			return fmt.Errorf("present: update texture: %w", err)
		}
	}

	tex, ok := p.texture.(gpucontext.Texture)
	if !ok {
		return ErrNotTexture
	}
	return dc.DrawTexture(tex, 0, 0)
}

// resize retires the current texture when the frame size changes.
func (p *Presenter) resize(w, h int) {
	if w == p.width && h == p.height {
		return
	}
	p.width, p.height = w, h
	if p.texture == nil {
		return
	}
	p.dropOld()
	p.old = p.texture
	p.texture = nil
}

func (p *Presenter) dropOld() {
	destroy(p.old)
	p.old = nil
}

// Close destroys the textures. It is idempotent.
func (p *Presenter) Close() {
	if p.closed {
		return
	}
	p.closed = true
	p.dropOld()
	destroy(p.texture)
	p.texture = nil
}

func destroy(tex any) {
	if d, ok := tex.(textureDestroyer); ok {
		d.Destroy()
	}
}
