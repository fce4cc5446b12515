// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package effect

import (
	"errors"

	"github.com/gogpu/dither"
)

// newRenderer creates a renderer with the configured factory, falling back
// to the software renderer when enabled and no GPU is available.
func (o options) newRenderer(mode dither.Mode, variant dither.Variant) (dither.Renderer, error) {
	factory := o.factory
	if factory == nil {
		factory = gpuFactory(o.provider)
	}
	r, err := factory(mode, variant)
	if err == nil {
		return r, nil
	}
	if o.softwareFallback && errors.Is(err, dither.ErrGraphicsUnavailable) {
		dither.Logger().Warn("effect: GPU unavailable, rendering in software", "variant", variant.String(), "error", err)
		return dither.NewSoftwareRenderer(mode, variant), nil
	}
	return nil, err
}

// SoftwareFactory is a RendererFactory producing CPU renderers.
func SoftwareFactory(mode dither.Mode, variant dither.Variant) (dither.Renderer, error) {
	return dither.NewSoftwareRenderer(mode, variant), nil
}
