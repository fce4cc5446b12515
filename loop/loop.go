// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package loop provides the single-threaded event loop that every canvas
// instance, scheduler and media callback runs on.
//
// The loop has two queues. Tasks posted with Post run in FIFO order and may
// be posted from any goroutine; this is how decoders hand results back.
// Frame callbacks registered with RequestFrame run once per display frame
// with the frame timestamp, and can be cancelled until they run.
//
// Hosts either call Run, which ticks at a fixed refresh interval, or drive
// the loop themselves with RunTasks and RunFrame from their own draw
// callback.
package loop

import (
	"context"
	"sync"
	"time"
)

// Handle identifies a pending frame request. The zero Handle is never
// returned by RequestFrame and is safe to cancel.
type Handle uint64

// FrameFunc receives the timestamp of the frame, measured from the loop's
// origin.
type FrameFunc func(ts time.Duration)

// Clock returns the current time relative to the loop's origin.
type Clock func() time.Duration

type frameRequest struct {
	id Handle
	fn FrameFunc
}

// Loop is a cooperative event loop. The zero value is not usable; create
// loops with New.
type Loop struct {
	clock Clock

	mu     sync.Mutex
	tasks  []func()
	frames []frameRequest
	live   map[Handle]bool
	nextID Handle
	wake   chan struct{}
}

// Option configures a Loop.
type Option func(*Loop)

// WithClock replaces the wall clock. Tests use it to control timestamps.
func WithClock(c Clock) Option {
	return func(l *Loop) {
		l.clock = c
	}
}

// New creates a loop whose clock starts at zero.
func New(opts ...Option) *Loop {
	origin := time.Now()
	l := &Loop{
		clock: func() time.Duration { return time.Since(origin) },
		live:  make(map[Handle]bool),
		wake:  make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Now returns the loop clock.
func (l *Loop) Now() time.Duration {
	return l.clock()
}

// Post queues fn to run on the loop. It is safe to call from any goroutine.
func (l *Loop) Post(fn func()) {
	l.mu.Lock()
	l.tasks = append(l.tasks, fn)
	l.mu.Unlock()
	select {
	case l.wake <- struct{}{}:
	default:
	}
}

// RequestFrame schedules fn for the next frame and returns a handle that
// can be passed to CancelFrame.
func (l *Loop) RequestFrame(fn FrameFunc) Handle {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.nextID++
	id := l.nextID
	l.frames = append(l.frames, frameRequest{id: id, fn: fn})
	l.live[id] = true
	return id
}

// CancelFrame cancels a pending frame request. Cancelling a request that
// already ran, or the zero Handle, does nothing.
func (l *Loop) CancelFrame(h Handle) {
	l.mu.Lock()
	delete(l.live, h)
	l.mu.Unlock()
}

// PendingFrames returns the number of frame requests that will run on the
// next RunFrame.
func (l *Loop) PendingFrames() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.live)
}

// RunTasks runs posted tasks until the queue is empty, including tasks
// posted by the tasks themselves. It returns the number of tasks run.
func (l *Loop) RunTasks() int {
	n := 0
	for {
		l.mu.Lock()
		if len(l.tasks) == 0 {
			l.mu.Unlock()
			return n
		}
		batch := l.tasks
		l.tasks = nil
		l.mu.Unlock()

		for _, fn := range batch {
			fn()
			n++
		}
	}
}

// RunFrame runs the frame callbacks that were pending when it was called.
// Callbacks requested while the frame runs wait for the next frame, and a
// callback cancelled by an earlier one in the same frame is skipped.
// It returns the number of callbacks run.
func (l *Loop) RunFrame(ts time.Duration) int {
	l.mu.Lock()
	batch := l.frames
	l.frames = nil
	l.mu.Unlock()

	n := 0
	for _, req := range batch {
		l.mu.Lock()
		ok := l.live[req.id]
		delete(l.live, req.id)
		l.mu.Unlock()
		if !ok {
			continue
		}
		req.fn(ts)
		n++
	}
	return n
}

// Step runs posted tasks, then one frame at the current clock time.
func (l *Loop) Step() {
	l.RunTasks()
	l.RunFrame(l.clock())
}

// Run drives the loop until ctx is cancelled, running tasks as they arrive
// and frames every interval.
func (l *Loop) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.wake:
			l.RunTasks()
		case <-ticker.C:
			l.RunTasks()
			l.RunFrame(l.clock())
		}
	}
}
