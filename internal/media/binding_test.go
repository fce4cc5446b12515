package media

import (
	"errors"
	"image"
	"testing"

	"github.com/gogpu/dither"
	"github.com/gogpu/dither/page"
)

// fakePlayer is an in-memory Player.
type fakePlayer struct {
	frame   *image.RGBA
	playErr error
	plays   int
	playing bool
	closed  int
}

func (p *fakePlayer) Kind() Kind { return KindVideo }
func (p *fakePlayer) Size() (int, int) {
	if p.frame == nil {
		return 0, 0
	}
	return p.frame.Rect.Dx(), p.frame.Rect.Dy()
}
func (p *fakePlayer) Frame() *image.RGBA        { return p.frame }
func (p *fakePlayer) Ready() bool               { return p.frame != nil }
func (p *fakePlayer) Load(Poster, func()) error { return nil }
func (p *fakePlayer) Playing() bool             { return p.playing }
func (p *fakePlayer) Close()                    { p.closed++ }
func (p *fakePlayer) Play() error {
	p.plays++
	if p.playing {
		return nil
	}
	if p.playErr != nil {
		return p.playErr
	}
	p.playing = true
	return nil
}

func frame(w, h int) *image.RGBA { return image.NewRGBA(image.Rect(0, 0, w, h)) }

type changes struct{ kinds []Kind }

func (c *changes) record(s Source) { c.kinds = append(c.kinds, s.Kind()) }

func TestFallbackFirstThenVideo(t *testing.T) {
	doc := page.NewDocument()
	video := &fakePlayer{}
	var c changes
	b := NewBinding(doc, video, AutoplayAllowed, c.record)
	b.Start()

	b.FallbackLoaded(frame(8, 8))
	if b.State() != ImageShown || b.Current().Kind() != KindImage {
		t.Fatalf("state = %v, want ImageShown", b.State())
	}
	video.frame = frame(16, 9)
	b.VideoLoaded()
	if b.State() != VideoShown || !b.Playing() {
		t.Fatalf("state = %v playing = %v, want VideoShown and playing", b.State(), b.Playing())
	}
	// A late fallback never replaces the video.
	b.FallbackLoaded(frame(8, 8))
	if b.State() != VideoShown {
		t.Error("fallback replaced the video")
	}
	if len(c.kinds) != 2 || c.kinds[0] != KindImage || c.kinds[1] != KindVideo {
		t.Errorf("changes = %v", c.kinds)
	}
}

func TestVideoBeforeFallback(t *testing.T) {
	doc := page.NewDocument()
	video := &fakePlayer{frame: frame(4, 4)}
	b := NewBinding(doc, video, AutoplayAllowed, nil)
	b.VideoLoaded()
	b.FallbackLoaded(frame(8, 8))
	if b.State() != VideoShown {
		t.Errorf("state = %v, want VideoShown", b.State())
	}
}

func TestAutoplayRejected(t *testing.T) {
	doc := page.NewDocument()
	video := &fakePlayer{frame: frame(16, 9), playErr: dither.ErrAutoplayBlocked}
	var c changes
	b := NewBinding(doc, video, AutoplayAllowed, c.record)
	b.Start()
	b.FallbackLoaded(frame(8, 8))
	b.VideoLoaded()
	if b.State() != ImageShown {
		t.Fatalf("state = %v after rejected autoplay, want ImageShown", b.State())
	}
	if !b.Armed() {
		t.Fatal("gesture listeners not armed")
	}

	// The click retries once, fails again, and removes every listener.
	doc.Gesture(page.EventClick)
	if video.plays != 2 {
		t.Errorf("plays = %d after click, want 2", video.plays)
	}
	if b.State() != ImageShown {
		t.Errorf("state = %v after failed retry, want ImageShown", b.State())
	}
	if b.Armed() {
		t.Error("listeners still armed after a gesture")
	}
	for _, typ := range page.GestureEvents {
		if n := doc.ListenerCount(typ); n != 0 {
			t.Errorf("%s listeners = %d, want 0", typ, n)
		}
		doc.Gesture(typ)
	}
	if video.plays != 2 {
		t.Errorf("plays = %d after further gestures, want no more retries", video.plays)
	}
	if len(c.kinds) != 1 {
		t.Errorf("changes = %v, want only the image", c.kinds)
	}
}

func TestAutoplayRejectedThenGestureSucceeds(t *testing.T) {
	doc := page.NewDocument()
	video := &fakePlayer{frame: frame(16, 9)}
	b := NewBinding(doc, video, AutoplayRequiresGesture, nil)
	b.Start()
	b.FallbackLoaded(frame(8, 8))
	b.VideoLoaded()
	if b.State() != ImageShown || video.plays != 0 {
		t.Fatalf("state = %v plays = %d, want ImageShown and no play before a gesture", b.State(), video.plays)
	}
	doc.Gesture(page.EventKeyDown)
	if b.State() != VideoShown {
		t.Errorf("state = %v after gesture, want VideoShown", b.State())
	}
}

func TestGestureBeforeVideoData(t *testing.T) {
	doc := page.NewDocument()
	video := &fakePlayer{}
	b := NewBinding(doc, video, AutoplayRequiresGesture, nil)
	b.Start()
	b.FallbackLoaded(frame(8, 8))
	doc.Gesture(page.EventTouchStart)
	if b.State() != ImageShown || !video.playing {
		t.Fatalf("state = %v playing = %v, want ImageShown while playing without data", b.State(), video.playing)
	}
	video.frame = frame(4, 4)
	b.VideoLoaded()
	if b.State() != VideoShown {
		t.Errorf("state = %v after data, want VideoShown", b.State())
	}
}

func TestAutoplayDisabled(t *testing.T) {
	doc := page.NewDocument()
	video := &fakePlayer{frame: frame(4, 4)}
	b := NewBinding(doc, video, AutoplayDisabled, nil)
	b.Start()
	b.VideoLoaded()
	doc.Gesture(page.EventScroll)
	if b.State() != Unstarted || video.plays != 0 {
		t.Errorf("state = %v plays = %d", b.State(), video.plays)
	}
	if !errors.Is(b.play(), dither.ErrAutoplayBlocked) {
		t.Error("disabled policy did not report ErrAutoplayBlocked")
	}
}

func TestBindingClose(t *testing.T) {
	doc := page.NewDocument()
	video := &fakePlayer{}
	b := NewBinding(doc, video, AutoplayAllowed, nil)
	b.Start()
	b.Close()
	b.Close()
	if video.closed != 1 {
		t.Errorf("video closed %d times, want 1", video.closed)
	}
	if doc.ListenerCount(page.EventClick) != 0 {
		t.Error("listeners left after Close")
	}
	b.FallbackLoaded(frame(2, 2))
	if b.State() != Unstarted {
		t.Error("closed binding changed state")
	}
}

func TestFallbackOnly(t *testing.T) {
	doc := page.NewDocument()
	b := NewBinding(doc, nil, AutoplayAllowed, nil)
	b.Start()
	if b.Armed() {
		t.Error("armed gesture listeners without a video")
	}
	b.FallbackLoaded(frame(2, 2))
	b.VideoLoaded()
	if b.State() != ImageShown || b.Playing() {
		t.Errorf("state = %v playing = %v", b.State(), b.Playing())
	}
}
