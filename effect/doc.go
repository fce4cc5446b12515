// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package effect mounts dithered canvases into a page.Document.
//
// A Manager discovers image elements carrying the marker class
// ("dithered-image" by default) and replaces each decoded one with an
// animated Inline canvas. A Header renders a looping video, or its
// fallback image, cropped to cover a canvas. Every instance owns its
// renderer and its frame scheduler, and tears both down exactly once:
// when its canvas leaves the document, when the navigation layer signals
// content-will-update, or when Dispose is called.
//
// Quick start:
//
//	l := loop.New()
//	doc := page.NewDocument(page.WithQuery("dither=noise"))
//	m := effect.NewManager(l, doc)
//	m.Attach()
//	doc.MarkReady()
//	_ = l.Run(ctx, 16*time.Millisecond)
package effect
