// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package effect

import (
	"time"

	"github.com/gogpu/gpucontext"

	"github.com/gogpu/dither"
)

// Defaults.
const (
	// DefaultMarkerClass marks images to be dithered.
	DefaultMarkerClass = "dithered-image"

	// DefaultInlineInterval caps inline animation at 20 frames per second.
	DefaultInlineInterval = 50 * time.Millisecond
)

// RendererFactory creates the renderer of one instance.
type RendererFactory func(mode dither.Mode, variant dither.Variant) (dither.Renderer, error)

// Option configures a Manager, an Inline instance or a Header.
//
// Example:
//
//	m := effect.NewManager(l, doc,
//		effect.WithMode(dither.Noise),
//		effect.WithDeviceProvider(app),
//	)
type Option func(*options)

type options struct {
	mode             dither.Mode
	modeSet          bool
	provider         gpucontext.DeviceProvider
	factory          RendererFactory
	interval         time.Duration
	intervalSet      bool
	marker           string
	softwareFallback bool
}

func defaultOptions() options {
	return options{
		mode:   dither.DefaultMode,
		marker: DefaultMarkerClass,
	}
}

func buildOptions(opts []Option) options {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithMode fixes the dither mode instead of resolving it from the
// document query.
func WithMode(m dither.Mode) Option {
	return func(o *options) {
		if m.Valid() {
			o.mode = m
			o.modeSet = true
		}
	}
}

// WithDeviceProvider shares a host's GPU device with every renderer. The
// provider must expose HalDevice() and HalQueue(); otherwise each renderer
// opens its own device.
func WithDeviceProvider(p gpucontext.DeviceProvider) Option {
	return func(o *options) {
		o.provider = p
	}
}

// WithRendererFactory replaces renderer creation. Tests and hosts with
// their own surfaces use it.
func WithRendererFactory(f RendererFactory) Option {
	return func(o *options) {
		o.factory = f
	}
}

// WithFrameInterval sets the minimum time between animated frames. Zero
// draws on every loop frame.
func WithFrameInterval(d time.Duration) Option {
	return func(o *options) {
		if d >= 0 {
			o.interval = d
			o.intervalSet = true
		}
	}
}

// WithMarkerClass sets the class that marks images to be dithered.
func WithMarkerClass(class string) Option {
	return func(o *options) {
		if class != "" {
			o.marker = class
		}
	}
}

// WithSoftwareFallback renders on the CPU when no GPU is available,
// instead of leaving images undithered.
func WithSoftwareFallback(enabled bool) Option {
	return func(o *options) {
		o.softwareFallback = enabled
	}
}

// intervalOr returns the configured interval or def.
func (o options) intervalOr(def time.Duration) time.Duration {
	if o.intervalSet {
		return o.interval
	}
	return def
}
