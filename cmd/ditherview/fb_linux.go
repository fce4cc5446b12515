//go:build linux

package main

import (
	"context"
	"fmt"
	"image"
	"time"

	fb "github.com/gonutz/framebuffer"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/sys/unix"

	"github.com/gogpu/dither"
	"github.com/gogpu/dither/effect"
	"github.com/gogpu/dither/loop"
)

// KD console modes from linux/kd.h.
const (
	kdText     = 0x00
	kdGraphics = 0x01
	kdSetMode  = 0x4B3A
)

const fbFrameInterval = time.Second / 30

// runFramebuffer shows the scene on a Linux framebuffer device until ctx
// is cancelled.
func runFramebuffer(ctx context.Context, s *scene, l *loop.Loop, path string, opts []effect.Option) error {
	dev, err := fb.Open(path)
	if err != nil {
		return fmt.Errorf("framebuffer %s: %w", path, err)
	}
	defer dev.Close()

	if err := setConsoleMode(kdGraphics); err != nil {
		dither.Logger().Warn("ditherview: console stays in text mode", "error", err)
	} else {
		defer func() {
			if err := setConsoleMode(kdText); err != nil {
				dither.Logger().Warn("ditherview: restoring text mode failed", "error", err)
			}
		}()
	}

	b := dev.Bounds()
	dither.Logger().Info("ditherview: framebuffer open", "path", path, "width", b.Dx(), "height", b.Dy())
	s.layout(b.Dx(), b.Dy())
	m := s.start(l, opts...)
	defer m.Detach()

	var frame *image.RGBA
	ticker := time.NewTicker(fbFrameInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			s.layout(b.Dx(), b.Dy())
			l.Step()
			frame = s.compose(frame)
			xdraw.NearestNeighbor.Scale(dev, b, frame, frame.Rect, xdraw.Src, nil)
		}
	}
}

// setConsoleMode switches the active virtual terminal between text and
// graphics mode. Graphics mode hides the console cursor.
func setConsoleMode(mode int) error {
	var lastErr error
	for _, p := range []string{"/dev/tty", "/dev/tty0"} {
		fd, err := unix.Open(p, unix.O_RDONLY, 0)
		if err != nil {
			lastErr = fmt.Errorf("open %s: %w", p, err)
			continue
		}
		err = unix.IoctlSetInt(fd, kdSetMode, mode)
		unix.Close(fd)
		if err != nil {
			lastErr = fmt.Errorf("KDSETMODE on %s: %w", p, err)
			continue
		}
		return nil
	}
	return lastErr
}
