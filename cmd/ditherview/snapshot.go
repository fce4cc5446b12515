package main

import (
	"fmt"
	"image/png"
	"os"
	"time"

	"github.com/gogpu/dither"
	"github.com/gogpu/dither/effect"
	"github.com/gogpu/dither/loop"
)

// snapshotTimeout bounds the wait for background image decodes.
const snapshotTimeout = 10 * time.Second

// runSnapshot renders frames headless and writes the last one as a PNG.
func runSnapshot(s *scene, l *loop.Loop, path string, w, h, frames int, opts []effect.Option) error {
	s.layout(w, h)
	m := s.start(l, opts...)
	defer m.Detach()

	deadline := time.Now().Add(snapshotTimeout)
	for !s.loaded() && time.Now().Before(deadline) {
		l.RunTasks()
		time.Sleep(10 * time.Millisecond)
	}
	for i := 0; i < frames; i++ {
		s.layout(w, h)
		l.Step()
		time.Sleep(16 * time.Millisecond)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("snapshot: %w", err)
	}
	defer f.Close()
	if err := png.Encode(f, s.compose(nil)); err != nil {
		return fmt.Errorf("snapshot: encode: %w", err)
	}
	dither.Logger().Info("ditherview: snapshot written", "path", path, "instances", m.Len())
	return nil
}

// loaded reports whether every inline image has finished decoding or
// failed.
func (s *scene) loaded() bool { return s.decoding == 0 }
