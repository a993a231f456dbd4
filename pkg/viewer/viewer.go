// Package viewer tracks what the UI is showing: the current image (or the
// error that took its place), a queue of dismissible notices, and an
// animation clock for animated images. It is the polling-side counterpart
// of the loader worker.
package viewer

import (
	"gitlab.com/tinyland/lab/loupe/pkg/browse"
	"gitlab.com/tinyland/lab/loupe/pkg/decode"
	"gitlab.com/tinyland/lab/loupe/pkg/loader"
)

// Commands is the slice of the loader handle the state drives. Declared
// here so tests can substitute a fake worker.
type Commands interface {
	LoadImage(path string) loader.SendResult
	Next(req browse.Request) loader.SendResult
	DeleteFile(path string) loader.SendResult
	PollResponse() (loader.Response, bool)
	Waiting() bool
}

// OpenImage is the currently displayed entry. Either Image or Err is set;
// an entry with Err renders as an error panel in place of the picture.
type OpenImage struct {
	Path  string
	Image *decode.Image
	Err   error
	Play  *PlayState
}

// Notice is one dismissible message, usually an error from the worker.
// IDs are unique within a State and never reused.
type Notice struct {
	ID      uint64
	Message string
}

// State wraps the loader handle for the UI goroutine. Not safe for
// concurrent use.
type State struct {
	handle  Commands
	current *OpenImage
	notices []Notice
	lastID  uint64
}

// New wraps handle. The initial current entry is empty until the worker's
// first response arrives.
func New(handle Commands) *State {
	return &State{handle: handle}
}

// Open switches to the image at path. When path is the entry already on
// screen there is nothing to do; everything else goes through the worker,
// which owns the cache and the navigation state.
func (s *State) Open(path string) loader.SendResult {
	if s.current != nil && s.current.Path == path && s.current.Image != nil {
		return loader.Sent
	}
	return s.handle.LoadImage(path)
}

// Next requests a navigation step. Always delegated: the directory may
// have changed on disk since the last listing.
func (s *State) Next(req browse.Request) loader.SendResult {
	return s.handle.Next(req)
}

// Delete removes the currently displayed file. With nothing on screen it
// reports Sent and does nothing.
func (s *State) Delete() loader.SendResult {
	if s.current == nil {
		return loader.Sent
	}
	return s.handle.DeleteFile(s.current.Path)
}

// HandleResponses drains every response the worker has ready and applies
// it. Reports whether the display changed.
func (s *State) HandleResponses() bool {
	changed := false
	for {
		resp, ok := s.handle.PollResponse()
		if !ok {
			return changed
		}

		if resp.Err != nil {
			s.addNotice(resp.Err.Error())
			changed = true
		}
		if resp.Cleared {
			s.current = nil
			changed = true
			continue
		}
		loaded := resp.Loaded
		if loaded == nil {
			continue
		}

		if loaded.CacheErr != nil {
			s.addNotice(loaded.CacheErr.Error())
		}
		open := &OpenImage{Path: loaded.Path, Image: loaded.Image, Err: loaded.Err}
		if loaded.Image != nil {
			open.Play = newPlayState(loaded.Image)
		}
		s.current = open
		changed = true
	}
}

// Current returns the displayed entry, nil when nothing is open.
func (s *State) Current() *OpenImage {
	return s.current
}

// Waiting reports whether a worker command is in flight.
func (s *State) Waiting() bool {
	return s.handle.Waiting()
}

// Notices returns the queue in arrival order.
func (s *State) Notices() []Notice {
	return s.notices
}

// DismissNotice removes the notice with the given ID, if still queued.
func (s *State) DismissNotice(id uint64) {
	for i, n := range s.notices {
		if n.ID == id {
			s.notices = append(s.notices[:i], s.notices[i+1:]...)
			return
		}
	}
}

func (s *State) addNotice(msg string) {
	s.lastID++
	s.notices = append(s.notices, Notice{ID: s.lastID, Message: msg})
}
