package loader

import (
	"fmt"
	"log/slog"
	"os"

	"gitlab.com/tinyland/lab/loupe/pkg/browse"
	"gitlab.com/tinyland/lab/loupe/pkg/cache"
	"gitlab.com/tinyland/lab/loupe/pkg/decode"
)

type navKind int

const (
	navEmpty navKind = iota
	navDirectory
	navList
)

// NavigationMode tracks where "next" and "previous" come from: the
// directory around the current image, re-listed on every step, or a fixed
// ordered list of paths with a moving index. The worker owns the value;
// the UI only supplies the initial one.
type NavigationMode struct {
	kind    navKind
	current string
	paths   []string
	index   int
}

// NavigateEmpty is the mode with no images at all.
func NavigateEmpty() NavigationMode {
	return NavigationMode{kind: navEmpty}
}

// NavigateDirectory follows the directory containing path, starting at
// path itself.
func NavigateDirectory(path string) NavigationMode {
	return NavigationMode{kind: navDirectory, current: path}
}

// NavigateList follows the fixed list of paths, starting at index.
func NavigateList(paths []string, index int) NavigationMode {
	if len(paths) == 0 {
		return NavigateEmpty()
	}
	if index < 0 || index >= len(paths) {
		index = 0
	}
	return NavigationMode{kind: navList, paths: paths, index: index}
}

// CurrentPath returns the path the mode currently points at.
func (n NavigationMode) CurrentPath() (string, bool) {
	switch n.kind {
	case navDirectory:
		return n.current, true
	case navList:
		return n.paths[n.index], true
	default:
		return "", false
	}
}

// step advances the mode under req and returns the new current path.
func (n *NavigationMode) step(req browse.Request) (string, bool, error) {
	switch n.kind {
	case navDirectory:
		path, ok, err := browse.NextInDirectory(n.current, req)
		if err != nil || !ok {
			return "", false, err
		}
		n.current = path
		return path, true, nil
	case navList:
		idx, ok := browse.NextInList(n.paths, n.paths[n.index], req)
		if !ok {
			return "", false, nil
		}
		n.index = idx
		return n.paths[idx], true, nil
	default:
		return "", false, nil
	}
}

// moveTo re-anchors the mode at path. A directory mode follows the path;
// a list mode only moves its index when path is a member, since the list
// itself is fixed for the session.
func (n *NavigationMode) moveTo(path string) {
	switch n.kind {
	case navEmpty:
		*n = NavigateDirectory(path)
	case navDirectory:
		n.current = path
	case navList:
		for i, p := range n.paths {
			if p == path {
				n.index = i
				return
			}
		}
	}
}

type actor struct {
	nav     NavigationMode
	cache   *cache.Cache
	repaint func()
	log     *slog.Logger
	seed    uint64
}

// run is the worker loop: one optional synthesized load for the starting
// path, then strictly one response per received command.
func (a *actor) run(commands <-chan command, responses chan<- Response) {
	if path, ok := a.nav.CurrentPath(); ok {
		responses <- a.load(path)
		a.repaint()
	}

	for cmd := range commands {
		var resp Response
		switch cmd.kind {
		case cmdLoad:
			a.nav.moveTo(cmd.path)
			resp = a.load(cmd.path)
		case cmdNext:
			resp = a.next(cmd.req)
		case cmdDelete:
			resp = a.delete(cmd.path)
		}
		responses <- resp
		a.repaint()
	}
}

// next computes the step's candidate and loads it. No candidate is a
// no-op, not an error: a directory with a single image simply has nowhere
// to go.
func (a *actor) next(req browse.Request) Response {
	req.Mode.Seed = a.seed

	path, ok, err := a.nav.step(req)
	if err != nil {
		return Response{Err: fmt.Errorf("list directory: %w", err)}
	}
	if !ok {
		return Response{}
	}
	return a.load(path)
}

// load resolves path to a decoded image, from cache when possible. Decode
// errors ride inside the LoadedImage so the UI can show them against the
// path; cache-insert failures are demoted to a note, the image is shown
// either way.
func (a *actor) load(path string) Response {
	if img, ok := a.cache.Get(path); ok {
		a.cache.Pin(path)
		return Response{Loaded: &LoadedImage{Path: path, Image: img}}
	}

	img, err := decode.Decode(path)
	if err != nil {
		a.log.Debug("decode failed", "path", path, "error", err)
		return Response{Loaded: &LoadedImage{Path: path, Err: err}}
	}

	a.cache.Pin(path)
	loaded := &LoadedImage{Path: path, Image: img}
	if err := a.cache.Insert(path, img); err != nil {
		a.log.Debug("image not cached", "path", path, "weight", img.SizeInMemory(), "error", err)
		loaded.CacheErr = fmt.Errorf("cache %s: %w", path, err)
	}
	return Response{Loaded: loaded}
}

// delete removes path from disk and from the cache. Deleting the current
// image steps right to a replacement; when nothing remains the selection
// is cleared and navigation goes empty.
func (a *actor) delete(path string) Response {
	current, _ := a.nav.CurrentPath()

	if err := os.Remove(path); err != nil {
		return Response{Err: fmt.Errorf("delete %s: %w", path, err)}
	}
	a.cache.Remove(path)

	if path != current {
		return Response{}
	}

	resp := a.next(browse.Next)
	if resp.Loaded == nil && resp.Err == nil {
		a.nav = NavigateEmpty()
		a.cache.Pin("")
		return Response{Cleared: true}
	}
	return resp
}
