// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package media

// Player is a looping, muted video Source.
type Player interface {
	Source

	// Load starts decoding without playing. loaded is posted once, when
	// the first frame is available.
	Load(p Poster, loaded func()) error

	// Play starts or resumes playback. Calling it while playing is a
	// no-op.
	Play() error

	// Playing reports whether playback is running.
	Playing() bool

	// Close stops playback and frees the decoder. It is idempotent.
	Close()
}

// AutoplayPolicy decides whether playback may start without a user
// gesture.
type AutoplayPolicy int

const (
	// AutoplayAllowed lets playback start at any time.
	AutoplayAllowed AutoplayPolicy = iota
	// AutoplayRequiresGesture refuses playback until the document has
	// seen a user gesture.
	AutoplayRequiresGesture
	// AutoplayDisabled refuses playback always.
	AutoplayDisabled
)

// String returns the policy name.
func (p AutoplayPolicy) String() string {
	switch p {
	case AutoplayAllowed:
		return "allowed"
	case AutoplayRequiresGesture:
		return "gesture"
	case AutoplayDisabled:
		return "disabled"
	default:
		return "unknown"
	}
}

// ParseAutoplayPolicy maps "allowed", "gesture" and "disabled" to a
// policy. Anything else is AutoplayAllowed.
func ParseAutoplayPolicy(s string) AutoplayPolicy {
	switch s {
	case "gesture":
		return AutoplayRequiresGesture
	case "disabled":
		return AutoplayDisabled
	default:
		return AutoplayAllowed
	}
}
