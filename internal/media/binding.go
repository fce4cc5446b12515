// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package media

import (
	"fmt"
	"image"

	"github.com/gogpu/dither"
	"github.com/gogpu/dither/page"
)

// BindingState is the state of a Binding.
type BindingState int

const (
	// Unstarted: no source is shown yet.
	Unstarted BindingState = iota
	// ImageShown: the fallback image is the current source.
	ImageShown
	// VideoShown: the video is the current source. Terminal.
	VideoShown
)

// String returns the state name.
func (s BindingState) String() string {
	switch s {
	case Unstarted:
		return "Unstarted"
	case ImageShown:
		return "ImageShown"
	case VideoShown:
		return "VideoShown"
	default:
		return "Unknown"
	}
}

// Binding decides which of a video and its fallback image is the current
// source of a header. It runs on the document goroutine.
//
// The fallback is shown as soon as it loads, unless the video is already
// shown. The video is shown once it has data and playback started; a
// refused start is retried on the first user gesture. Nothing ever
// switches back from the video.
type Binding struct {
	doc      *page.Document
	video    Player
	policy   AutoplayPolicy
	onChange func(Source)

	state    BindingState
	current  Source
	fallback *ImageSource
	removers []func()
	closed   bool
}

// NewBinding creates an unstarted binding. video may be nil when only the
// fallback is available. onChange runs synchronously after every switch of
// the current source.
func NewBinding(doc *page.Document, video Player, policy AutoplayPolicy, onChange func(Source)) *Binding {
	return &Binding{doc: doc, video: video, policy: policy, onChange: onChange}
}

// Start arms the gesture listeners. The first click, touchstart, keydown
// or scroll retries playback and removes all four listeners.
func (b *Binding) Start() {
	if b.closed || len(b.removers) > 0 || b.video == nil {
		return
	}
	for _, typ := range page.GestureEvents {
		b.removers = append(b.removers, b.doc.AddEventListener(typ, func(page.Event) {
			b.disarm()
			b.tryPlay()
		}))
	}
}

func (b *Binding) disarm() {
	removers := b.removers
	b.removers = nil
	for _, rm := range removers {
		rm()
	}
}

// Armed reports whether the gesture listeners are installed.
func (b *Binding) Armed() bool { return len(b.removers) > 0 }

// State returns the current state.
func (b *Binding) State() BindingState { return b.state }

// Current returns the current source, or nil while Unstarted.
func (b *Binding) Current() Source { return b.current }

// Playing reports whether the video is playing.
func (b *Binding) Playing() bool { return b.video != nil && b.video.Playing() }

// FallbackLoaded records the decoded fallback image and shows it if
// nothing is shown yet.
func (b *Binding) FallbackLoaded(img *image.RGBA) {
	if b.closed || img == nil {
		return
	}
	b.fallback = NewImageSource(img)
	if b.current == nil {
		b.set(ImageShown, b.fallback)
	}
}

// VideoLoaded handles the video's first frame: playback is attempted and,
// on success, the video becomes the current source. On failure the fallback
// is shown if it has loaded.
func (b *Binding) VideoLoaded() {
	if b.closed || b.video == nil {
		return
	}
	if err := b.play(); err != nil {
		dither.Logger().Warn("media: video playback refused", "error", err)
		if b.fallback != nil && b.state == Unstarted {
			b.set(ImageShown, b.fallback)
		}
		return
	}
	b.set(VideoShown, b.video)
}

// tryPlay is the gesture retry. It does nothing while playing; after a
// successful start the video is shown only if it already has data.
func (b *Binding) tryPlay() {
	if b.closed || b.video == nil || b.video.Playing() {
		return
	}
	if err := b.play(); err != nil {
		dither.Logger().Warn("media: video playback refused after gesture", "error", err)
		return
	}
	if b.video.Ready() {
		b.set(VideoShown, b.video)
	}
}

func (b *Binding) play() error {
	switch {
	case b.policy == AutoplayDisabled:
		return fmt.Errorf("policy %s: %w", b.policy, dither.ErrAutoplayBlocked)
	case b.policy == AutoplayRequiresGesture && !b.doc.HasUserActivation():
		return fmt.Errorf("no user activation: %w", dither.ErrAutoplayBlocked)
	}
	return b.video.Play()
}

func (b *Binding) set(state BindingState, src Source) {
	if b.state == VideoShown {
		return
	}
	if b.state == state && b.current == src {
		return
	}
	from := b.state
	b.state, b.current = state, src
	dither.Logger().Info("media: source switched", "from", from.String(), "to", state.String(), "kind", src.Kind().String())
	if b.onChange != nil {
		b.onChange(src)
	}
}

// Close removes the gesture listeners and closes the video. It is
// idempotent.
func (b *Binding) Close() {
	if b.closed {
		return
	}
	b.closed = true
	b.disarm()
	if b.video != nil {
		b.video.Close()
	}
}
