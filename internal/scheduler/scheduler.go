// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package scheduler drives the frame loop of one canvas instance: it
// throttles frames to an interval, applies pending resizes before drawing,
// pauses while the canvas is invisible or the gate is closed, and runs the
// instance's teardown exactly once.
package scheduler

import (
	"errors"
	"time"

	"github.com/gogpu/dither"
	"github.com/gogpu/dither/loop"
)

// ErrSkipFrame is returned by Draw when there is nothing to draw yet. The
// frame is neither counted nor logged.
var ErrSkipFrame = errors.New("scheduler: frame skipped")

// State is the scheduler lifecycle state.
type State int

const (
	// Idle: no frame is requested.
	Idle State = iota
	// Scheduled: a frame callback is pending.
	Scheduled
	// Running: a frame body is executing.
	Running
	// Stopped: torn down. Terminal.
	Stopped
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case Idle:
		return "Idle"
	case Scheduled:
		return "Scheduled"
	case Running:
		return "Running"
	case Stopped:
		return "Stopped"
	default:
		return "Unknown"
	}
}

// Config wires a Scheduler to its instance.
type Config struct {
	// Loop provides frame callbacks. Required.
	Loop *loop.Loop

	// Interval is the minimum time between drawn frames. Zero draws on
	// every display frame.
	Interval time.Duration

	// Gate reports whether the loop should keep running after a frame,
	// in addition to visibility. Nil means always.
	Gate func() bool

	// Attached reports whether the canvas is still in the document.
	// A false result tears the scheduler down. Nil means always attached.
	Attached func() bool

	// Resize applies a pending resize. It runs before the draw of the
	// same frame.
	Resize func()

	// Draw renders one frame.
	Draw func(ts time.Duration) error

	// Name labels log records.
	Name string
}

// Scheduler is the per-instance frame state machine. It is not safe for
// concurrent use; all methods run on the loop goroutine.
type Scheduler struct {
	cfg Config

	state       State
	handle      loop.Handle
	visible     bool
	needsResize bool
	drawn       bool
	lastFrame   time.Duration
	frames      int

	disposers []func()
}

// New creates an idle, visible scheduler with a pending resize.
func New(cfg Config) *Scheduler {
	return &Scheduler{
		cfg:         cfg,
		visible:     true,
		needsResize: true,
	}
}

// State returns the current state.
func (s *Scheduler) State() State { return s.state }

// Visible reports the visibility flag.
func (s *Scheduler) Visible() bool { return s.visible }

// Frames returns the number of frames drawn.
func (s *Scheduler) Frames() int { return s.frames }

// Pending reports whether a frame callback is requested.
func (s *Scheduler) Pending() bool { return s.handle != 0 }

// MarkResize flags the canvas for a resize on the next drawn frame.
func (s *Scheduler) MarkResize() {
	if s.state == Stopped {
		return
	}
	s.needsResize = true
}

// OnTeardown registers fn to run once at teardown. Disposers run in
// reverse registration order.
func (s *Scheduler) OnTeardown(fn func()) {
	if s.state == Stopped {
		fn()
		return
	}
	s.disposers = append(s.disposers, fn)
}

// RenderNow runs a frame body immediately at ts, as if the loop had
// called it. A pending request is replaced.
func (s *Scheduler) RenderNow(ts time.Duration) {
	if s.state == Stopped {
		return
	}
	s.cancel()
	s.tick(ts)
}

// Restart draws a frame now unless one is already requested. Source
// switches use it so that a running loop is not doubled.
func (s *Scheduler) Restart() {
	if s.state == Stopped || s.handle != 0 {
		return
	}
	s.tick(s.cfg.Loop.Now())
}

// Arm requests a frame if the loop may run and none is pending.
func (s *Scheduler) Arm() {
	if s.state == Stopped || s.handle != 0 {
		return
	}
	if !s.visible || !s.gateOpen() {
		return
	}
	s.handle = s.cfg.Loop.RequestFrame(s.tick)
	s.state = Scheduled
}

// SetVisible updates the visibility flag. Becoming invisible cancels the
// pending frame without releasing anything; becoming visible re-arms.
func (s *Scheduler) SetVisible(v bool) {
	if s.state == Stopped {
		return
	}
	s.visible = v
	if v {
		s.Arm()
		return
	}
	s.cancel()
}

// Teardown stops the scheduler, cancels any pending frame and runs the
// disposers. It is idempotent.
func (s *Scheduler) Teardown() {
	if s.state == Stopped {
		return
	}
	s.cancel()
	s.state = Stopped
	disposers := s.disposers
	s.disposers = nil
	for i := len(disposers) - 1; i >= 0; i-- {
		disposers[i]()
	}
	dither.Logger().Debug("scheduler: torn down", "instance", s.cfg.Name, "frames", s.frames)
}

func (s *Scheduler) cancel() {
	if s.handle != 0 {
		s.cfg.Loop.CancelFrame(s.handle)
		s.handle = 0
	}
	if s.state == Scheduled {
		s.state = Idle
	}
}

func (s *Scheduler) gateOpen() bool {
	return s.cfg.Gate == nil || s.cfg.Gate()
}

// tick is the frame body.
func (s *Scheduler) tick(ts time.Duration) {
	s.handle = 0
	if s.state == Stopped {
		return
	}
	if s.cfg.Attached != nil && !s.cfg.Attached() {
		s.Teardown()
		return
	}
	if s.state == Scheduled {
		s.state = Idle
	}

	if s.drawn && ts-s.lastFrame < s.cfg.Interval {
		s.Arm()
		return
	}

	s.state = Running
	s.lastFrame = ts
	s.drawn = true

	if s.needsResize {
		s.needsResize = false
		if s.cfg.Resize != nil {
			s.cfg.Resize()
		}
	}
	if s.cfg.Draw != nil {
		err := s.cfg.Draw(ts)
		switch {
		case errors.Is(err, ErrSkipFrame):
		case err != nil:
			dither.Logger().Warn("scheduler: draw failed", "instance", s.cfg.Name, "error", err)
		default:
			s.frames++
		}
	}

	// Draw may have torn the instance down.
	if s.state == Stopped {
		return
	}
	s.state = Idle
	s.Arm()
}
