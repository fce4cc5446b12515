// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package media provides the pictures a renderer dithers: decoded still
// images, a looping video player, and the header's source binding that
// switches between the two.
package media

import (
	"image"
	"sync"
)

// Kind identifies the type of a Source.
type Kind int

const (
	// KindImage is a static decoded image.
	KindImage Kind = iota
	// KindVideo is a video whose frames change over time.
	KindVideo
)

// String returns "image" or "video".
func (k Kind) String() string {
	if k == KindVideo {
		return "video"
	}
	return "image"
}

// Source is a picture that can be uploaded to a renderer.
type Source interface {
	Kind() Kind

	// Size returns the intrinsic pixel size, or zeros until Ready.
	Size() (w, h int)

	// Frame returns the current pixels, or nil until Ready. Video sources
	// return a new frame whenever one has been decoded.
	Frame() *image.RGBA

	// Ready reports whether at least one frame is available.
	Ready() bool
}

// Poster hands a function to the goroutine that owns the document.
// *loop.Loop implements it.
type Poster interface {
	Post(fn func())
}

// ImageSource is a Source over one decoded image.
type ImageSource struct {
	mu  sync.RWMutex
	img *image.RGBA
}

// NewImageSource returns a source for img. A nil img is not ready.
func NewImageSource(img *image.RGBA) *ImageSource {
	return &ImageSource{img: img}
}

// Kind implements Source.
func (s *ImageSource) Kind() Kind { return KindImage }

// Size implements Source.
func (s *ImageSource) Size() (int, int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.img == nil {
		return 0, 0
	}
	return s.img.Rect.Dx(), s.img.Rect.Dy()
}

// Frame implements Source.
func (s *ImageSource) Frame() *image.RGBA {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.img
}

// Ready implements Source.
func (s *ImageSource) Ready() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.img != nil
}

// Set replaces the image.
func (s *ImageSource) Set(img *image.RGBA) {
	s.mu.Lock()
	s.img = img
	s.mu.Unlock()
}
