// Command ditherview shows dithered images and a dithered header video in
// a gogpu window, on a Linux framebuffer, or as a PNG snapshot.
//
// Usage:
//
//	ditherview -video hero.mp4 -fallback hero.jpg -image a.png -image b.jpg
//	ditherview -fb /dev/fb0 -software -image kiosk.png
//	ditherview -snapshot out.png -dither noise -image a.png
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/gogpu/dither"
	"github.com/gogpu/dither/effect"
	"github.com/gogpu/dither/internal/media"
	"github.com/gogpu/dither/loop"
	"github.com/gogpu/dither/page"
)

type imageList []string

func (l *imageList) String() string { return fmt.Sprint(*l) }

func (l *imageList) Set(v string) error {
	*l = append(*l, v)
	return nil
}

func main() {
	var images imageList
	var (
		mode      = flag.String("dither", "", "dither mode: gaussian, atkinson or noise (default $"+dither.EnvVar+" or atkinson)")
		video     = flag.String("video", "", "header video file")
		fallback  = flag.String("fallback", "", "header fallback image")
		fbPath    = flag.String("fb", "", "render to this framebuffer device instead of a window")
		snapshot  = flag.String("snapshot", "", "render headless and write a PNG to this file")
		software  = flag.Bool("software", false, "render on the CPU when no GPU is available")
		autoplay  = flag.String("autoplay", "allowed", "autoplay policy: allowed, gesture or disabled")
		width     = flag.Int("width", 1280, "window or snapshot width")
		height    = flag.Int("height", 800, "window or snapshot height")
		reduced   = flag.Bool("reduced-motion", false, "prefer reduced motion (inline images render once)")
		verbose   = flag.Bool("v", false, "debug logging")
		snapSteps = flag.Int("snapshot-frames", 20, "frames to run before writing the snapshot")
	)
	flag.Var(&images, "image", "inline image file (repeatable)")
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	dither.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	resolved := dither.ModeFromEnv()
	if *mode != "" {
		resolved = dither.ResolveMode(*mode)
	}

	l := loop.New()
	doc := page.NewDocument(page.WithReducedMotion(*reduced))
	cfg := effect.DefaultHeaderConfig().
		WithVideo(*video).
		WithFallback(*fallback).
		WithAutoplay(media.ParseAutoplayPolicy(*autoplay))
	s := newScene(doc, cfg, *video != "" || *fallback != "")
	for _, path := range images {
		s.addImage(l, path)
	}

	opts := []effect.Option{
		effect.WithMode(resolved),
		effect.WithSoftwareFallback(*software),
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var err error
	switch {
	case *snapshot != "":
		err = runSnapshot(s, l, *snapshot, *width, *height, *snapSteps, opts)
	case *fbPath != "":
		err = runFramebuffer(ctx, s, l, *fbPath, opts)
	default:
		err = runWindow(s, l, *width, *height, opts)
	}
	if err != nil {
		dither.Logger().Error("ditherview: exiting", "error", err)
		os.Exit(1)
	}
}
