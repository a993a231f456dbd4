package tui

import (
	"image"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"gitlab.com/tinyland/lab/loupe/pkg/browse"
	"gitlab.com/tinyland/lab/loupe/pkg/decode"
	"gitlab.com/tinyland/lab/loupe/pkg/loader"
	"gitlab.com/tinyland/lab/loupe/pkg/render"
	"gitlab.com/tinyland/lab/loupe/pkg/terminal"
	"gitlab.com/tinyland/lab/loupe/pkg/viewer"
)

// stubHandle is a scripted loader for driving the model without a worker.
type stubHandle struct {
	nexts   []browse.Request
	deletes []string
	queue   []loader.Response
	waiting bool
}

func (s *stubHandle) LoadImage(path string) loader.SendResult { return loader.Sent }

func (s *stubHandle) Next(req browse.Request) loader.SendResult {
	s.nexts = append(s.nexts, req)
	return loader.Sent
}

func (s *stubHandle) DeleteFile(path string) loader.SendResult {
	s.deletes = append(s.deletes, path)
	return loader.Sent
}

func (s *stubHandle) PollResponse() (loader.Response, bool) {
	if len(s.queue) == 0 {
		return loader.Response{}, false
	}
	resp := s.queue[0]
	s.queue = s.queue[1:]
	return resp, true
}

func (s *stubHandle) Waiting() bool { return s.waiting }

func testModel(t *testing.T, h *stubHandle) Model {
	t.Helper()
	m := New(Config{
		State:    viewer.New(h),
		Renderer: render.New(render.Options{Protocol: terminal.ProtocolHalfblocks}),
	})
	m.width = 80
	m.height = 24
	return m
}

func queuedImage(path string) loader.Response {
	return loader.Response{Loaded: &loader.LoadedImage{
		Path: path,
		Image: &decode.Image{
			Format: "png",
			Width:  2,
			Height: 2,
			Frames: []decode.Frame{{Pix: image.NewNRGBA(image.Rect(0, 0, 2, 2))}},
		},
	}}
}

func keyMsg(s string) tea.KeyMsg {
	if s == " " {
		return tea.KeyMsg{Type: tea.KeySpace}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestNavigationKeys(t *testing.T) {
	h := &stubHandle{}
	m := testModel(t, h)

	m.Update(keyMsg("l"))
	m.Update(keyMsg("h"))
	m.Update(keyMsg("r"))

	if len(h.nexts) != 3 {
		t.Fatalf("got %d navigation requests, want 3", len(h.nexts))
	}
	if h.nexts[0] != browse.Next {
		t.Errorf("l = %+v, want Next", h.nexts[0])
	}
	if h.nexts[1] != browse.Prev {
		t.Errorf("h = %+v, want Prev", h.nexts[1])
	}
	if !h.nexts[2].Mode.Random {
		t.Errorf("r = %+v, want Random mode", h.nexts[2])
	}
}

func TestQuitKey(t *testing.T) {
	h := &stubHandle{}
	m := testModel(t, h)

	_, cmd := m.Update(keyMsg("q"))
	if cmd == nil {
		t.Fatal("q produced no command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q did not quit")
	}
}

func TestDeleteKeyTargetsCurrent(t *testing.T) {
	h := &stubHandle{queue: []loader.Response{queuedImage("a.png")}}
	m := testModel(t, h)
	m.Update(RepaintMsg{})

	m.Update(keyMsg("d"))
	if len(h.deletes) != 1 || h.deletes[0] != "a.png" {
		t.Errorf("deletes = %v, want [a.png]", h.deletes)
	}
}

func TestRepaintDrainsResponses(t *testing.T) {
	h := &stubHandle{queue: []loader.Response{queuedImage("a.png")}}
	m := testModel(t, h)

	updated, _ := m.Update(RepaintMsg{})
	m = updated.(Model)
	if cur := m.state.Current(); cur == nil || cur.Path != "a.png" {
		t.Errorf("Current = %+v, want a.png", cur)
	}
}

func TestSlideshowAdvances(t *testing.T) {
	h := &stubHandle{}
	m := testModel(t, h)
	m.slideshowInterval = 100 * time.Millisecond

	updated, _ := m.Update(keyMsg("s"))
	m = updated.(Model)
	if !m.slideshowOn {
		t.Fatal("s did not start the slideshow")
	}

	now := m.lastTick
	for i := 0; i < 3; i++ {
		now = now.Add(60 * time.Millisecond)
		updated, _ = m.Update(TickMsg{Time: now})
		m = updated.(Model)
	}

	if len(h.nexts) == 0 {
		t.Error("slideshow never advanced")
	}
}

func TestSlideshowPausesWhileWaiting(t *testing.T) {
	h := &stubHandle{waiting: true}
	m := testModel(t, h)
	m.slideshowOn = true
	m.slideshowInterval = time.Millisecond

	updated, _ := m.Update(TickMsg{Time: m.lastTick.Add(time.Second)})
	m = updated.(Model)

	if len(h.nexts) != 0 {
		t.Errorf("slideshow advanced while a command was in flight: %v", h.nexts)
	}
}

func TestDismissKeyRemovesOldestNotice(t *testing.T) {
	h := &stubHandle{queue: []loader.Response{
		{Err: errFake("one")},
		{Err: errFake("two")},
	}}
	m := testModel(t, h)
	m.Update(RepaintMsg{})

	m.Update(keyMsg("x"))
	notices := m.state.Notices()
	if len(notices) != 1 || notices[0].Message != "two" {
		t.Errorf("notices = %v, want [two]", notices)
	}
}

type errFake string

func (e errFake) Error() string { return string(e) }

func TestViewStates(t *testing.T) {
	h := &stubHandle{}
	m := testModel(t, h)

	if view := m.View(); !strings.Contains(view, "no image") {
		t.Error("empty state view has no placeholder")
	}

	h.queue = []loader.Response{queuedImage("a.png")}
	updated, _ := m.Update(RepaintMsg{})
	m = updated.(Model)
	if view := m.View(); !strings.Contains(view, "a.png") {
		t.Error("status bar does not show the file name")
	}

	h.queue = []loader.Response{{Loaded: &loader.LoadedImage{Path: "bad.png", Err: errFake("boom")}}}
	updated, _ = m.Update(RepaintMsg{})
	m = updated.(Model)
	if view := m.View(); !strings.Contains(view, "boom") {
		t.Error("error entry does not render the error panel")
	}
}

func TestSidebarToggle(t *testing.T) {
	h := &stubHandle{queue: []loader.Response{queuedImage("a.png")}}
	m := testModel(t, h)
	updated, _ := m.Update(RepaintMsg{})
	m = updated.(Model)

	updated, _ = m.Update(keyMsg("i"))
	m = updated.(Model)
	if view := m.View(); !strings.Contains(view, "format:") {
		t.Error("sidebar not shown after toggle")
	}

	updated, _ = m.Update(keyMsg("i"))
	m = updated.(Model)
	if view := m.View(); strings.Contains(view, "format:") {
		t.Error("sidebar still shown after second toggle")
	}
}
