//go:build !linux

package main

import (
	"context"
	"errors"

	"github.com/gogpu/dither/effect"
	"github.com/gogpu/dither/loop"
)

func runFramebuffer(context.Context, *scene, *loop.Loop, string, []effect.Option) error {
	return errors.New("framebuffer output is only supported on Linux")
}
