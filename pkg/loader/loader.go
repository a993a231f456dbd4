// Package loader runs image loading on a dedicated worker goroutine. The
// worker owns the navigation state and the image cache; the UI talks to it
// through a Handle over a pair of capacity-1 channels, with at most one
// command in flight at a time. Decoded images cross the boundary as shared
// immutable pointers.
package loader

import (
	"log/slog"
	"math/rand/v2"

	"gitlab.com/tinyland/lab/loupe/pkg/cache"
)

// Config carries the collaborators of a worker.
type Config struct {
	// Navigation is the starting navigation state. If it has a current
	// path, the worker loads it immediately, before any command arrives.
	Navigation NavigationMode

	// Cache holds decoded images. Must not be nil.
	Cache *cache.Cache

	// Repaint is invoked after every response so the UI wakes up even
	// when it is idle between its own events. May be nil.
	Repaint func()

	// Logger defaults to slog.Default.
	Logger *slog.Logger
}

// Spawn starts the worker goroutine and returns the Handle the UI drives
// it through. Each worker draws its own random-navigation seed, so two
// viewer instances shuffle through the same directory in different orders.
func Spawn(cfg Config) *Handle {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Repaint == nil {
		cfg.Repaint = func() {}
	}

	commands := make(chan command, 1)
	responses := make(chan Response, 1)
	h := &Handle{commands: commands, responses: responses}

	a := &actor{
		nav:     cfg.Navigation,
		cache:   cfg.Cache,
		repaint: cfg.Repaint,
		log:     cfg.Logger,
		seed:    rand.Uint64(),
	}

	// The synthesized initial load counts as an outstanding command so
	// the UI spins until its response lands.
	if _, ok := a.nav.CurrentPath(); ok {
		h.waiting = true
	}

	go a.run(commands, responses)
	return h
}
