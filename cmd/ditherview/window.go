package main

import (
	"image"

	"github.com/gogpu/gogpu"
	"github.com/gogpu/gpucontext"

	"github.com/gogpu/dither"
	"github.com/gogpu/dither/effect"
	"github.com/gogpu/dither/internal/present"
	"github.com/gogpu/dither/loop"
	"github.com/gogpu/dither/page"
)

// runWindow shows the scene in a gogpu window. Renderers share the
// window's GPU device.
func runWindow(s *scene, l *loop.Loop, width, height int, opts []effect.Option) error {
	app := gogpu.NewApp(gogpu.DefaultConfig().
		WithTitle("ditherview").
		WithSize(width, height).
		WithContinuousRender(true))

	var (
		m     *effect.Manager
		frame *image.RGBA
		pres  = present.New()
	)

	app.OnDraw(func(dc *gogpu.Context) {
		w, h := dc.Width(), dc.Height()
		if w <= 0 || h <= 0 {
			return
		}
		if m == nil {
			provider := app.GPUContextProvider()
			if provider == nil {
				return
			}
			s.layout(w, h)
			m = s.start(l, append(opts, effect.WithDeviceProvider(provider))...)
			dither.Logger().Info("ditherview: window ready", "backend", dc.Backend(), "width", w, "height", h)
		}

		s.layout(w, h)
		l.Step()
		frame = s.compose(frame)
		if err := pres.Present(dc.AsTextureDrawer(), frame); err != nil {
			dither.Logger().Warn("ditherview: present failed", "error", err)
		}
	})

	// Any key counts as a user gesture for autoplay.
	app.EventSource().OnKeyPress(func(gpucontext.Key, gpucontext.Modifiers) {
		s.doc.Gesture(page.EventKeyDown)
	})

	app.OnClose(func() {
		if m != nil {
			m.Detach()
		}
		pres.Close()
	})

	return app.Run()
}
