// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package dither

import (
	"errors"
	"fmt"
)

// Errors returned by renderers, sources and the effect package. Each one is
// scoped to a single instance; none of them stops other instances.
var (
	// ErrGraphicsUnavailable indicates that no GPU device could be obtained.
	// Inline instances leave the original image in place; the header aborts.
	ErrGraphicsUnavailable = errors.New("dither: graphics unavailable")

	// ErrAutoplayBlocked is reported when starting playback was refused.
	// It is recoverable: playback is retried on the first user gesture.
	ErrAutoplayBlocked = errors.New("dither: autoplay blocked")

	// ErrMediaLoad indicates that a video or image could not be loaded.
	ErrMediaLoad = errors.New("dither: media load failed")

	// ErrReleased is returned by renderers used after Release.
	ErrReleased = errors.New("dither: renderer released")
)

// Shader stages reported by ShaderError.
const (
	StageVertex   = "vertex"
	StageFragment = "fragment"
	StageLink     = "link"
)

// ShaderError carries the compiler or linker diagnostic for a failed
// program build.
type ShaderError struct {
	Stage string // StageVertex, StageFragment or StageLink
	Log   string // diagnostic text
	Err   error  // underlying error, if any
}

func (e *ShaderError) Error() string {
	return fmt.Sprintf("dither: %s shader: %s", e.Stage, e.Log)
}

func (e *ShaderError) Unwrap() error { return e.Err }
