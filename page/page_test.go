package page

import (
	"image"
	"testing"
)

func TestAddRemoveListener(t *testing.T) {
	d := NewDocument()
	calls := 0
	remove := d.AddEventListener(EventClick, func(Event) { calls++ })
	d.Gesture(EventClick)
	remove()
	remove()
	d.Gesture(EventClick)
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
	if n := d.ListenerCount(EventClick); n != 0 {
		t.Errorf("ListenerCount = %d, want 0", n)
	}
	if !d.HasUserActivation() {
		t.Error("HasUserActivation() = false after gesture")
	}
}

func TestRemoveDuringDispatch(t *testing.T) {
	d := NewDocument()
	var removeSecond func()
	secondCalled := false
	d.AddEventListener(EventScroll, func(Event) { removeSecond() })
	removeSecond = d.AddEventListener(EventScroll, func(Event) { secondCalled = true })
	d.Dispatch(Event{Type: EventScroll})
	if secondCalled {
		t.Error("listener removed during dispatch was still called")
	}
}

func TestTreeOperations(t *testing.T) {
	d := NewDocument()
	div := d.CreateElement("div")
	img := d.CreateElement("img")
	d.Body().AppendChild(div)
	div.AppendChild(img)

	if !img.IsConnected() {
		t.Fatal("img not connected")
	}
	canvas := d.CreateElement("canvas")
	if canvas.IsConnected() {
		t.Error("detached canvas reports connected")
	}
	img.ReplaceWith(canvas)
	if img.IsConnected() || img.Parent() != nil {
		t.Error("replaced img still attached")
	}
	if !canvas.IsConnected() || canvas.Parent() != div {
		t.Error("canvas not attached in place of img")
	}
	if !div.Contains(canvas) || !d.Body().Contains(canvas) {
		t.Error("Contains() = false for descendant")
	}
	canvas.Remove()
	if canvas.IsConnected() {
		t.Error("removed canvas still connected")
	}
	// Replacing a detached element does nothing.
	img.ReplaceWith(canvas)
	if canvas.Parent() != nil {
		t.Error("ReplaceWith on a detached element attached the replacement")
	}
}

func TestQueryAllByClass(t *testing.T) {
	d := NewDocument()
	a := d.CreateElement("img")
	a.AddClass("dithered-image")
	b := d.CreateElement("img")
	b.AddClass("dithered-image")
	b.AddClass("wide")
	c := d.CreateElement("img")
	d.Body().AppendChild(a)
	d.Body().AppendChild(c)
	c.AppendChild(b)

	got := d.Body().QueryAllByClass("dithered-image")
	if len(got) != 2 || got[0] != a || got[1] != b {
		t.Errorf("QueryAllByClass = %v", got)
	}
	b.RemoveClass("dithered-image")
	if b.HasClass("dithered-image") || !b.HasClass("wide") {
		t.Errorf("classes after remove = %v", b.Classes())
	}
}

func TestImageLoad(t *testing.T) {
	d := NewDocument()
	img := d.CreateElement("img")
	loads := 0
	img.AddEventListener(EventLoad, func(ev Event) {
		if ev.Target != img {
			t.Error("load event target mismatch")
		}
		loads++
	})
	if img.Complete() {
		t.Error("new image is complete")
	}
	img.SetImage(image.NewRGBA(image.Rect(0, 0, 30, 20)))
	if !img.Complete() || loads != 1 {
		t.Errorf("complete=%v loads=%d", img.Complete(), loads)
	}
	if w, h := img.NaturalSize(); w != 30 || h != 20 {
		t.Errorf("NaturalSize = %d,%d", w, h)
	}
}

func TestCanvasSize(t *testing.T) {
	d := NewDocument(WithDevicePixelRatio(2))
	c := d.CreateElement("canvas")
	c.SetBox(100.6, 50.2)
	w, h := c.DeviceSize()
	if w != 201 || h != 100 {
		t.Errorf("DeviceSize = %d,%d, want 201,100", w, h)
	}
	c.SetCanvasSize(w, h)
	store := c.Canvas()
	c.SetCanvasSize(w, h)
	if c.Canvas() != store {
		t.Error("same size reallocated the backing store")
	}
	c.SetCanvasSize(10, 10)
	if cw, ch := c.CanvasSize(); cw != 10 || ch != 10 {
		t.Errorf("CanvasSize = %d,%d", cw, ch)
	}
}

func TestSwapBodyOrdering(t *testing.T) {
	d := NewDocument()
	old := d.Body()
	next := d.CreateElement("body")
	var events []string
	d.AddEventListener(EventContentWillUpdate, func(Event) {
		if d.Body() != old {
			t.Error("body swapped before content-will-update")
		}
		events = append(events, EventContentWillUpdate)
	})
	d.AddEventListener(EventContentUpdated, func(Event) {
		if d.Body() != next {
			t.Error("body not swapped before content-updated")
		}
		events = append(events, EventContentUpdated)
	})
	d.SwapBody(next)
	if len(events) != 2 || events[0] != EventContentWillUpdate || events[1] != EventContentUpdated {
		t.Errorf("events = %v", events)
	}
}

func TestMarkReadyOnce(t *testing.T) {
	d := NewDocument()
	n := 0
	d.AddEventListener(EventReady, func(Event) { n++ })
	d.MarkReady()
	d.MarkReady()
	if n != 1 || !d.Ready() {
		t.Errorf("ready events = %d, Ready() = %v", n, d.Ready())
	}
}

func TestIntersectionObserver(t *testing.T) {
	d := NewDocument()
	el := d.CreateElement("canvas")
	var seen []bool
	o := d.NewIntersectionObserver(func(entries []IntersectionEntry) {
		for _, e := range entries {
			seen = append(seen, e.Intersecting)
		}
	})
	o.Observe(el)
	el.SetIntersecting(false)
	el.SetIntersecting(false)
	el.SetIntersecting(true)
	o.Disconnect()
	o.Disconnect()
	el.SetIntersecting(false)

	want := []bool{true, false, true}
	if len(seen) != len(want) {
		t.Fatalf("entries = %v, want %v", seen, want)
	}
	for i := range want {
		if seen[i] != want[i] {
			t.Fatalf("entries = %v, want %v", seen, want)
		}
	}
	if d.ObserverCount() != 0 {
		t.Errorf("ObserverCount = %d after disconnect", d.ObserverCount())
	}
}

func TestStyle(t *testing.T) {
	d := NewDocument()
	el := d.CreateElement("img")
	el.SetStyle("visibility", "hidden")
	el.SetStyle("width", "10px")
	el.SetStyle("width", "")
	m := el.StyleMap()
	if len(m) != 1 || m["visibility"] != "hidden" {
		t.Errorf("StyleMap = %v", m)
	}
}
