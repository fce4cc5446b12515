// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

//go:build !nogst

package media

import (
	"fmt"
	"image"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/tinyzimmer/go-gst/gst"
	"github.com/tinyzimmer/go-gst/gst/app"

	"github.com/gogpu/dither"
)

// busPollInterval bounds how long the bus goroutine blocks per poll, and
// so how quickly Close is observed.
const busPollInterval = 100 * time.Millisecond

// GstPlayer decodes a video file to RGBA frames with GStreamer:
//
//	filesrc → decodebin → videoconvert → capsfilter(RGBA) → appsink
//
// Audio is never linked, so playback is muted. End of stream rewinds and
// continues, so playback loops.
type GstPlayer struct {
	path string
	id   string

	pipeline *gst.Pipeline
	sink     *app.Sink

	mu      sync.RWMutex
	frame   *image.RGBA
	playing bool
	closed  bool
	frames  uint64

	loadOnce sync.Once
	stop     chan struct{}
}

// NewGstPlayer builds the decode pipeline for the file at path. The
// pipeline is not started. Failures wrap dither.ErrMediaLoad.
func NewGstPlayer(path string) (*GstPlayer, error) {
	gst.Init(nil)

	pipeline, err := gst.NewPipeline("")
	if err != nil {
		return nil, fmt.Errorf("create pipeline: %v: %w", err, dither.ErrMediaLoad)
	}
	src, err := gst.NewElement("filesrc")
	if err != nil {
		return nil, fmt.Errorf("create filesrc: %v: %w", err, dither.ErrMediaLoad)
	}
	src.SetProperty("location", path)

	decode, err := gst.NewElement("decodebin")
	if err != nil {
		return nil, fmt.Errorf("create decodebin: %v: %w", err, dither.ErrMediaLoad)
	}
	convert, err := gst.NewElement("videoconvert")
	if err != nil {
		return nil, fmt.Errorf("create videoconvert: %v: %w", err, dither.ErrMediaLoad)
	}
	capsfilter, err := gst.NewElement("capsfilter")
	if err != nil {
		return nil, fmt.Errorf("create capsfilter: %v: %w", err, dither.ErrMediaLoad)
	}
	capsfilter.SetProperty("caps", gst.NewCapsFromString("video/x-raw,format=RGBA"))

	sink, err := app.NewAppSink()
	if err != nil {
		return nil, fmt.Errorf("create appsink: %v: %w", err, dither.ErrMediaLoad)
	}
	sink.SetProperty("max-buffers", 1) // keep only the latest frame
	sink.SetProperty("drop", true)

	pipeline.AddMany(src, decode, convert, capsfilter, sink.Element)
	if err := src.Link(decode); err != nil {
		return nil, fmt.Errorf("link filesrc: %v: %w", err, dither.ErrMediaLoad)
	}
	if err := gst.ElementLinkMany(convert, capsfilter, sink.Element); err != nil {
		return nil, fmt.Errorf("link video branch: %v: %w", err, dither.ErrMediaLoad)
	}

	p := &GstPlayer{
		path:     path,
		id:       uuid.New().String(),
		pipeline: pipeline,
		sink:     sink,
		stop:     make(chan struct{}),
	}

	// decodebin pads appear once the container is parsed. Only the first
	// video pad is linked; audio pads stay unlinked.
	decode.Connect("pad-added", func(self *gst.Element, srcPad *gst.Pad) {
		sinkPad := convert.GetStaticPad("sink")
		if sinkPad == nil || sinkPad.IsLinked() {
			return
		}
		if ret := srcPad.Link(sinkPad); ret != gst.PadLinkOK {
			dither.Logger().Debug("media: decodebin pad not linked", "pad", srcPad.GetName(), "ret", ret)
			return
		}
		dither.Logger().Debug("media: decodebin pad linked", "pad", srcPad.GetName(), "player", p.id)
	})
	return p, nil
}

// Load implements Player. The pipeline is prerolled in the paused state;
// the preroll frame makes the player ready.
func (p *GstPlayer) Load(poster Poster, loaded func()) error {
	notify := func() {
		p.loadOnce.Do(func() { poster.Post(loaded) })
	}
	p.sink.SetCallbacks(&app.SinkCallbacks{
		NewPrerollFunc: func(sink *app.Sink) gst.FlowReturn {
			p.storeSample(sink.PullPreroll())
			notify()
			return gst.FlowOK
		},
		NewSampleFunc: func(sink *app.Sink) gst.FlowReturn {
			p.storeSample(sink.PullSample())
			notify()
			return gst.FlowOK
		},
	})
	if err := p.pipeline.SetState(gst.StatePaused); err != nil {
		return fmt.Errorf("preroll %s: %v: %w", p.path, err, dither.ErrMediaLoad)
	}
	go p.watchBus()
	dither.Logger().Debug("media: video loading", "path", p.path, "player", p.id)
	return nil
}

// storeSample copies a decoded RGBA sample into a new frame.
func (p *GstPlayer) storeSample(sample *gst.Sample) {
	if sample == nil {
		return
	}
	w, h := sampleSize(sample)
	buffer := sample.GetBuffer()
	if buffer == nil || w <= 0 || h <= 0 {
		return
	}
	data := buffer.Map(gst.MapRead).Bytes()
	if len(data) < w*h*4 {
		buffer.Unmap()
		dither.Logger().Warn("media: short video frame", "bytes", len(data), "width", w, "height", h)
		return
	}
	frame := image.NewRGBA(image.Rect(0, 0, w, h))
	copy(frame.Pix, data[:w*h*4])
	buffer.Unmap()

	p.mu.Lock()
	p.frame = frame
	p.frames++
	p.mu.Unlock()
}

func sampleSize(sample *gst.Sample) (int, int) {
	caps := sample.GetCaps()
	if caps == nil || caps.GetSize() == 0 {
		return 0, 0
	}
	s := caps.GetStructureAt(0)
	var w, h int
	if v, err := s.GetValue("width"); err == nil {
		w, _ = v.(int)
	}
	if v, err := s.GetValue("height"); err == nil {
		h, _ = v.(int)
	}
	return w, h
}

// watchBus loops the video on end of stream and logs pipeline errors
// until Close.
func (p *GstPlayer) watchBus() {
	bus := p.pipeline.GetPipelineBus()
	for {
		select {
		case <-p.stop:
			return
		default:
		}
		msg := bus.TimedPop(busPollInterval)
		if msg == nil {
			continue
		}
		switch msg.Type() {
		case gst.MessageEOS:
			dither.Logger().Debug("media: video looped", "player", p.id)
			p.rewind()
		case gst.MessageError:
			gerr := msg.ParseError()
			dither.Logger().Error("media: video pipeline error",
				"player", p.id,
				"error", gerr.Error(),
				"debug", gerr.DebugString(),
			)
		case gst.MessageStateChanged:
			if msg.Source() == p.pipeline.GetName() {
				old, now := msg.ParseStateChanged()
				dither.Logger().Debug("media: video state changed", "player", p.id, "from", old, "to", now)
			}
		}
	}
}

// rewind restarts the stream from the beginning.
func (p *GstPlayer) rewind() {
	if err := p.pipeline.SetState(gst.StateReady); err != nil {
		dither.Logger().Warn("media: rewind failed", "player", p.id, "error", err)
		return
	}
	if err := p.pipeline.SetState(gst.StatePlaying); err != nil {
		dither.Logger().Warn("media: restart failed", "player", p.id, "error", err)
	}
}

// Play implements Player.
// The lock is not held across SetState: streaming threads take it in
// storeSample.
func (p *GstPlayer) Play() error {
	p.mu.RLock()
	closed, playing := p.closed, p.playing
	p.mu.RUnlock()
	if closed {
		return fmt.Errorf("play %s: player closed: %w", p.path, dither.ErrMediaLoad)
	}
	if playing {
		return nil
	}
	if err := p.pipeline.SetState(gst.StatePlaying); err != nil {
		return fmt.Errorf("play %s: %v: %w", p.path, err, dither.ErrMediaLoad)
	}
	p.mu.Lock()
	p.playing = !p.closed
	p.mu.Unlock()
	dither.Logger().Info("media: video playing", "path", p.path, "player", p.id)
	return nil
}

// Playing implements Player.
func (p *GstPlayer) Playing() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.playing
}

// Kind implements Source.
func (p *GstPlayer) Kind() Kind { return KindVideo }

// Size implements Source.
func (p *GstPlayer) Size() (int, int) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.frame == nil {
		return 0, 0
	}
	return p.frame.Rect.Dx(), p.frame.Rect.Dy()
}

// Frame implements Source.
func (p *GstPlayer) Frame() *image.RGBA {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.frame
}

// Ready implements Source.
func (p *GstPlayer) Ready() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.frame != nil
}

// Close implements Player.
func (p *GstPlayer) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	p.playing = false
	frames := p.frames
	p.mu.Unlock()

	close(p.stop)
	if err := p.pipeline.SetState(gst.StateNull); err != nil {
		dither.Logger().Warn("media: pipeline stop failed", "player", p.id, "error", err)
	}
	dither.Logger().Debug("media: video closed", "player", p.id, "frames", frames)
}

// ID returns the player's log id.
func (p *GstPlayer) ID() string { return p.id }

var _ Player = (*GstPlayer)(nil)

// OpenVideo opens the video file at path.
func OpenVideo(path string) (Player, error) {
	return NewGstPlayer(path)
}
