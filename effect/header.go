// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package effect

import (
	"errors"
	"image"
	"time"

	"github.com/google/uuid"

	"github.com/gogpu/dither"
	"github.com/gogpu/dither/internal/media"
	"github.com/gogpu/dither/internal/scheduler"
	"github.com/gogpu/dither/loop"
	"github.com/gogpu/dither/page"
)

// AutoplayPolicy decides whether header video may start without a user
// gesture.
type AutoplayPolicy = media.AutoplayPolicy

// Autoplay policies.
const (
	AutoplayAllowed         = media.AutoplayAllowed
	AutoplayRequiresGesture = media.AutoplayRequiresGesture
	AutoplayDisabled        = media.AutoplayDisabled
)

// SourceState is the header's source binding state.
type SourceState = media.BindingState

// Source states.
const (
	Unstarted  = media.Unstarted
	ImageShown = media.ImageShown
	VideoShown = media.VideoShown
)

// Player is a looping, muted video source.
type Player = media.Player

// HeaderConfig describes the media of a header.
//
// Example:
//
//	cfg := effect.DefaultHeaderConfig().
//		WithVideo("hero.mp4").
//		WithFallback("hero.jpg")
type HeaderConfig struct {
	// VideoPath is opened with GStreamer unless Video is set.
	VideoPath string
	// Video overrides VideoPath with an already opened player.
	Video Player

	// FallbackPath is decoded on a background goroutine unless
	// FallbackImage is set.
	FallbackPath string
	// FallbackImage is an already decoded fallback.
	FallbackImage *image.RGBA

	// Autoplay decides whether the video may start before a gesture.
	Autoplay AutoplayPolicy
}

// DefaultHeaderConfig returns a config with no media and autoplay allowed.
func DefaultHeaderConfig() HeaderConfig {
	return HeaderConfig{Autoplay: AutoplayAllowed}
}

// WithVideo sets the video path.
func (c HeaderConfig) WithVideo(path string) HeaderConfig {
	c.VideoPath = path
	return c
}

// WithPlayer sets an opened player.
func (c HeaderConfig) WithPlayer(p Player) HeaderConfig {
	c.Video = p
	return c
}

// WithFallback sets the fallback image path.
func (c HeaderConfig) WithFallback(path string) HeaderConfig {
	c.FallbackPath = path
	return c
}

// WithFallbackImage sets a decoded fallback image.
func (c HeaderConfig) WithFallbackImage(img *image.RGBA) HeaderConfig {
	c.FallbackImage = img
	return c
}

// WithAutoplay sets the autoplay policy.
func (c HeaderConfig) WithAutoplay(p AutoplayPolicy) HeaderConfig {
	c.Autoplay = p
	return c
}

// Header renders a video, or its fallback image, cropped to cover a
// canvas. The animation runs only while the video is shown and playing.
type Header struct {
	id       string
	canvas   *page.Element
	renderer dither.Renderer
	binding  *media.Binding
	sched    *scheduler.Scheduler
	sized    bool
}

// MountHeader starts a header on an attached canvas. Media loading runs in
// the background; nothing is drawn until a source is shown.
func MountHeader(l *loop.Loop, canvas *page.Element, cfg HeaderConfig, mode dither.Mode, opts ...Option) (*Header, error) {
	return mountHeader(l, canvas, cfg, mode, buildOptions(opts))
}

func mountHeader(l *loop.Loop, canvas *page.Element, cfg HeaderConfig, mode dither.Mode, o options) (*Header, error) {
	if !canvas.IsConnected() {
		return nil, errors.New("effect: header canvas is not attached")
	}
	doc := canvas.Document()

	r, err := o.newRenderer(mode, dither.VariantHeader)
	if err != nil {
		return nil, err
	}

	video := cfg.Video
	if video == nil && cfg.VideoPath != "" {
		video, err = media.OpenVideo(cfg.VideoPath)
		if err != nil {
			dither.Logger().Warn("effect: header video unavailable", "path", cfg.VideoPath, "error", err)
			video = nil
		}
	}

	h := &Header{
		id:       uuid.NewString(),
		canvas:   canvas,
		renderer: r,
	}
	h.binding = media.NewBinding(doc, video, cfg.Autoplay, h.sourceChanged)
	h.sched = scheduler.New(scheduler.Config{
		Loop:     l,
		Interval: o.intervalOr(0),
		Gate: func() bool {
			return h.binding.State() == media.VideoShown && h.binding.Playing()
		},
		Attached: canvas.IsConnected,
		Resize:   h.resize,
		Draw:     h.draw,
		Name:     h.id,
	})
	h.sched.OnTeardown(r.Release)
	h.sched.OnTeardown(h.binding.Close)
	h.sched.OnTeardown(doc.AddEventListener(page.EventResize, func(page.Event) {
		h.sched.MarkResize()
		h.sched.Restart()
	}))

	dither.Logger().Info("effect: header mounted", "instance", h.id, "mode", mode.String(), "video", video != nil)

	h.binding.Start()
	if video != nil {
		if err := video.Load(l, h.binding.VideoLoaded); err != nil {
			dither.Logger().Error("effect: header video failed to load", "instance", h.id, "error", err)
		}
	}
	switch {
	case cfg.FallbackImage != nil:
		h.binding.FallbackLoaded(cfg.FallbackImage)
	case cfg.FallbackPath != "":
		media.LoadImage(l, cfg.FallbackPath, func(img *image.RGBA, err error) {
			if err != nil {
				dither.Logger().Error("effect: header fallback failed to load", "instance", h.id, "error", err)
				return
			}
			h.binding.FallbackLoaded(img)
		})
	}
	return h, nil
}

// ID returns the instance id used in log records.
func (h *Header) ID() string { return h.id }

// Canvas returns the canvas element.
func (h *Header) Canvas() *page.Element { return h.canvas }

// State returns the source binding state.
func (h *Header) State() SourceState { return h.binding.State() }

// Frames returns the number of frames drawn.
func (h *Header) Frames() int { return h.sched.Frames() }

// Animating reports whether a frame is pending.
func (h *Header) Animating() bool { return h.sched.Pending() }

// Disposed reports whether the header has been torn down.
func (h *Header) Disposed() bool { return h.sched.State() == scheduler.Stopped }

// Dispose tears the header down and closes its video. It is idempotent.
func (h *Header) Dispose() { h.sched.Teardown() }

func (h *Header) onDispose(fn func()) { h.sched.OnTeardown(fn) }

func (h *Header) sourceChanged(media.Source) {
	h.sched.MarkResize()
	h.sched.Restart()
}

func (h *Header) resize() {
	src := h.binding.Current()
	if src == nil {
		return
	}
	sw, sh := src.Size()
	w, ht := h.canvas.DeviceSize()
	g, ok := dither.ComputeCrop(sw, sh, w, ht)
	if !ok {
		// Not laid out yet.
		h.sized = false
		h.sched.MarkResize()
		return
	}
	h.sized = true
	h.canvas.SetCanvasSize(w, ht)
	if err := h.renderer.SetViewport(g); err != nil {
		dither.Logger().Warn("effect: viewport rejected", "instance", h.id, "error", err)
	}
}

func (h *Header) draw(time.Duration) error {
	src := h.binding.Current()
	if src == nil {
		return errors.New("no source shown")
	}
	if !h.sized {
		return scheduler.ErrSkipFrame
	}
	frame := src.Frame()
	if frame == nil {
		return errors.New("source has no frame")
	}
	return h.renderer.DrawFrame(frame, h.canvas.Canvas())
}
