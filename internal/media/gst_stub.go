// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

//go:build nogst

package media

import (
	"fmt"

	"github.com/gogpu/dither"
)

// OpenVideo fails in builds without GStreamer; headers fall back to their
// image.
func OpenVideo(path string) (Player, error) {
	return nil, fmt.Errorf("open %s: built without GStreamer: %w", path, dither.ErrMediaLoad)
}
