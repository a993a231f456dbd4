package loader

import (
	"gitlab.com/tinyland/lab/loupe/pkg/browse"
	"gitlab.com/tinyland/lab/loupe/pkg/decode"
)

// SendResult reports whether a command was enqueued.
type SendResult int

const (
	// Sent means the command is on its way to the worker.
	Sent SendResult = iota
	// AlreadyWaiting means a previous command has not produced its
	// response yet; the new command was dropped. Retry after the next
	// successful PollResponse.
	AlreadyWaiting
)

// LoadedImage is the worker's answer to a load or navigation command.
type LoadedImage struct {
	// Path is the resolved path of the image the command landed on.
	Path string

	// Image is the decoded result, shared with the cache. Nil when Err
	// is set.
	Image *decode.Image

	// Err is the decode or listing failure for Path, if any.
	Err error

	// CacheErr reports a failed cache insert. The image was decoded and
	// is usable; it just will not be retained for revisits.
	CacheErr error
}

// Response is the worker's answer to one command. The zero value is a
// no-op: the command ran but there is nothing to show (for example a
// navigation step with no candidate).
type Response struct {
	// Loaded is set when the command resolved to an image, successfully
	// decoded or not.
	Loaded *LoadedImage

	// Err carries a command failure that is not tied to a particular
	// image, such as a file deletion error.
	Err error

	// Cleared means no images remain and the current selection should
	// be emptied.
	Cleared bool
}

type commandKind int

const (
	cmdLoad commandKind = iota
	cmdNext
	cmdDelete
)

type command struct {
	kind commandKind
	path string
	req  browse.Request
}

// Handle is the UI side of the worker. It enforces the single-outstanding-
// command rule through its waiting flag. Not safe for concurrent use; it
// belongs to the UI goroutine.
type Handle struct {
	commands  chan<- command
	responses <-chan Response
	waiting   bool
}

// LoadImage asks the worker to load the image at path and make it the
// navigation anchor.
func (h *Handle) LoadImage(path string) SendResult {
	return h.send(command{kind: cmdLoad, path: path})
}

// Next asks the worker for a navigation step.
func (h *Handle) Next(req browse.Request) SendResult {
	return h.send(command{kind: cmdNext, req: req})
}

// DeleteFile asks the worker to delete path from disk. If path is the
// current image the worker moves to the next one.
func (h *Handle) DeleteFile(path string) SendResult {
	return h.send(command{kind: cmdDelete, path: path})
}

// Waiting reports whether a command is in flight.
func (h *Handle) Waiting() bool {
	return h.waiting
}

// PollResponse is a non-blocking check for the in-flight command's answer.
// A closed response channel means the worker died, which cannot happen in
// a correct program; it panics rather than limping on.
func (h *Handle) PollResponse() (Response, bool) {
	select {
	case resp, ok := <-h.responses:
		if !ok {
			panic("loader: image loader disconnected")
		}
		h.waiting = false
		return resp, true
	default:
		return Response{}, false
	}
}

func (h *Handle) send(cmd command) SendResult {
	if h.waiting {
		return AlreadyWaiting
	}
	// With no command outstanding the capacity-1 channel is empty, so
	// this never blocks.
	h.commands <- cmd
	h.waiting = true
	return Sent
}
