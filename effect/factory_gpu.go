// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

//go:build !nogpu

package effect

import (
	"github.com/gogpu/gpucontext"

	"github.com/gogpu/dither"
	"github.com/gogpu/dither/internal/device"
	"github.com/gogpu/dither/internal/surface"
)

// gpuFactory returns a factory that gives every renderer its own device
// context. Releasing the renderer releases the context.
func gpuFactory(provider gpucontext.DeviceProvider) RendererFactory {
	return func(mode dither.Mode, variant dither.Variant) (dither.Renderer, error) {
		ctx, err := device.Open(provider)
		if err != nil {
			return nil, err
		}
		s, err := surface.New(ctx.Device(), ctx.Queue(), mode, variant)
		if err != nil {
			ctx.Release()
			return nil, err
		}
		s.OnRelease(ctx.Release)
		dither.Logger().Info("effect: GPU renderer ready", "variant", variant.String(), "device", ctx.Name())
		return s, nil
	}
}
