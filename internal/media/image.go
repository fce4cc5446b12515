// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package media

import (
	"fmt"
	"image"
	"io"
	"os"

	// Registered decoders for fallback and inline images.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	xdraw "golang.org/x/image/draw"

	"github.com/gogpu/dither"
	"github.com/gogpu/dither/page"
)

// DecodeImage decodes a PNG, JPEG, GIF, WebP, BMP or TIFF image into
// 8-bit pixels with the origin at (0, 0). Failures wrap dither.ErrMediaLoad.
//
// The color channels are not premultiplied by alpha: the renderers read
// them as the source color. Use NRGBA to composite the result.
func DecodeImage(r io.Reader) (*image.RGBA, error) {
	src, format, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("decode image: %v: %w", err, dither.ErrMediaLoad)
	}
	b := src.Bounds()
	if b.Empty() {
		return nil, fmt.Errorf("decode %s image: empty: %w", format, dither.ErrMediaLoad)
	}
	if rgba, ok := src.(*image.RGBA); ok && b.Min == (image.Point{}) && rgba.Opaque() {
		return rgba, nil
	}
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	if n, ok := src.(*image.NRGBA); ok {
		for y := 0; y < b.Dy(); y++ {
			copy(dst.Pix[y*dst.Stride:y*dst.Stride+b.Dx()*4], n.Pix[n.PixOffset(b.Min.X, b.Min.Y+y):])
		}
	} else {
		xdraw.Draw(dst, dst.Bounds(), src, b.Min, xdraw.Src)
	}
	return &image.RGBA{Pix: dst.Pix, Stride: dst.Stride, Rect: dst.Rect}, nil
}

// NRGBA views pixels returned by DecodeImage as straight-alpha color
// without copying.
func NRGBA(img *image.RGBA) *image.NRGBA {
	return &image.NRGBA{Pix: img.Pix, Stride: img.Stride, Rect: img.Rect}
}

// DecodeFile decodes the image at path through the shared decode cache.
// The returned image must not be modified.
func DecodeFile(path string) (*image.RGBA, error) {
	return defaultCache.Decode(path)
}

func decodeFile(path string) (*image.RGBA, error) {
	f, err := os.Open(path) //nolint:gosec // path comes from the host configuration
	if err != nil {
		return nil, fmt.Errorf("open image: %v: %w", err, dither.ErrMediaLoad)
	}
	defer f.Close()
	img, err := DecodeImage(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return img, nil
}

// LoadImage decodes path on its own goroutine and posts done with the
// result to p.
func LoadImage(p Poster, path string, done func(*image.RGBA, error)) {
	go func() {
		img, err := DecodeFile(path)
		p.Post(func() { done(img, err) })
	}()
}

// LoadElement decodes path into the image element el. The load event
// fires on the poster's goroutine; failures are logged and leave el
// incomplete. done, if not nil, runs after either outcome.
func LoadElement(p Poster, el *page.Element, path string, done func(error)) {
	LoadImage(p, path, func(img *image.RGBA, err error) {
		if err != nil {
			dither.Logger().Error("media: image load failed", "path", path, "error", err)
		} else {
			el.SetImage(img)
		}
		if done != nil {
			done(err)
		}
	})
}
