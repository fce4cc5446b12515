//go:build nogpu

// Package device obtains the GPU device a render surface draws with. This
// build has no GPU support.
package device

import (
	"fmt"

	"github.com/gogpu/dither"
	"github.com/gogpu/gpucontext"
)

// Context is empty without GPU support.
type Context struct{}

// Open always fails without GPU support.
func Open(gpucontext.DeviceProvider) (*Context, error) {
	return nil, fmt.Errorf("built with nogpu: %w", dither.ErrGraphicsUnavailable)
}

// Release does nothing.
func (*Context) Release() {}
