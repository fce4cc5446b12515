// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

//go:build nogpu

package effect

import (
	"fmt"

	"github.com/gogpu/gpucontext"

	"github.com/gogpu/dither"
)

func gpuFactory(gpucontext.DeviceProvider) RendererFactory {
	return func(dither.Mode, dither.Variant) (dither.Renderer, error) {
		return nil, fmt.Errorf("built with nogpu: %w", dither.ErrGraphicsUnavailable)
	}
}
