package media

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gogpu/dither"
	"github.com/gogpu/dither/page"
)

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestDecodeImage(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 5, 3))
	src.Set(4, 2, color.NRGBA{R: 200, G: 100, B: 50, A: 255})
	img, err := DecodeImage(bytes.NewReader(encodePNG(t, src)))
	if err != nil {
		t.Fatalf("DecodeImage: %v", err)
	}
	if img.Rect != image.Rect(0, 0, 5, 3) {
		t.Errorf("bounds = %v", img.Rect)
	}
	if c := img.RGBAAt(4, 2); c.R != 200 || c.G != 100 || c.B != 50 {
		t.Errorf("pixel = %v", c)
	}
}

func TestDecodeImageKeepsStraightAlpha(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 2, 1))
	src.SetNRGBA(0, 0, color.NRGBA{R: 255, G: 255, B: 255, A: 64})
	src.SetNRGBA(1, 0, color.NRGBA{R: 200, G: 100, B: 50, A: 0})
	img, err := DecodeImage(bytes.NewReader(encodePNG(t, src)))
	if err != nil {
		t.Fatalf("DecodeImage: %v", err)
	}
	want := []byte{255, 255, 255, 64, 200, 100, 50, 0}
	if !bytes.Equal(img.Pix[:8], want) {
		t.Errorf("pixels = %v, want %v", img.Pix[:8], want)
	}
	if l := dither.Luminance(float32(img.Pix[0])/255, float32(img.Pix[1])/255, float32(img.Pix[2])/255); l < 0.99 {
		t.Errorf("translucent white luminance = %.3f, want 1", l)
	}
	if c := NRGBA(img).NRGBAAt(0, 0); c != (color.NRGBA{R: 255, G: 255, B: 255, A: 64}) {
		t.Errorf("NRGBA view = %v", c)
	}
}

func TestDecodeImageErrors(t *testing.T) {
	_, err := DecodeImage(strings.NewReader("not an image"))
	if !errors.Is(err, dither.ErrMediaLoad) {
		t.Errorf("err = %v, want ErrMediaLoad", err)
	}
	_, err = DecodeFile(filepath.Join(t.TempDir(), "missing.png"))
	if !errors.Is(err, dither.ErrMediaLoad) {
		t.Errorf("missing file err = %v, want ErrMediaLoad", err)
	}
}

// syncPoster runs posted functions on a channel the test drains.
type syncPoster struct {
	fns chan func()
}

func newSyncPoster() *syncPoster { return &syncPoster{fns: make(chan func(), 4)} }

func (p *syncPoster) Post(fn func()) { p.fns <- fn }

func TestLoadElement(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.png")
	if err := os.WriteFile(path, encodePNG(t, image.NewRGBA(image.Rect(0, 0, 7, 4))), 0o600); err != nil {
		t.Fatal(err)
	}
	doc := page.NewDocument()
	el := doc.CreateElement("img")
	loads := 0
	el.AddEventListener(page.EventLoad, func(page.Event) { loads++ })

	p := newSyncPoster()
	LoadElement(p, el, path, nil)
	(<-p.fns)()
	if !el.Complete() || loads != 1 {
		t.Fatalf("complete = %v loads = %d", el.Complete(), loads)
	}
	if w, h := el.NaturalSize(); w != 7 || h != 4 {
		t.Errorf("NaturalSize = %d,%d", w, h)
	}

	bad := doc.CreateElement("img")
	var loadErr error
	LoadElement(p, bad, filepath.Join(t.TempDir(), "missing.png"), func(err error) { loadErr = err })
	(<-p.fns)()
	if bad.Complete() {
		t.Error("failed load marked the element complete")
	}
	if !errors.Is(loadErr, dither.ErrMediaLoad) {
		t.Errorf("done err = %v, want ErrMediaLoad", loadErr)
	}
}

func TestImageSource(t *testing.T) {
	s := NewImageSource(nil)
	if s.Ready() || s.Kind() != KindImage {
		t.Error("nil image source is ready")
	}
	s.Set(frame(3, 2))
	if w, h := s.Size(); !s.Ready() || w != 3 || h != 2 {
		t.Errorf("Size = %d,%d ready = %v", w, h, s.Ready())
	}
	if KindVideo.String() != "video" || KindImage.String() != "image" {
		t.Error("Kind names")
	}
}

func TestParseAutoplayPolicy(t *testing.T) {
	tests := map[string]AutoplayPolicy{
		"":         AutoplayAllowed,
		"allowed":  AutoplayAllowed,
		"gesture":  AutoplayRequiresGesture,
		"disabled": AutoplayDisabled,
		"bogus":    AutoplayAllowed,
	}
	for in, want := range tests {
		if got := ParseAutoplayPolicy(in); got != want {
			t.Errorf("ParseAutoplayPolicy(%q) = %v, want %v", in, got, want)
		}
	}
}
