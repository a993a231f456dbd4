package terminal

import (
	"os"
	"sync"
)

// Capabilities is the cached capability summary for the current session:
// detected terminal, selected graphics protocol, window size, and the
// environment facts that influenced the choice. The diagnostics view and
// the halfblock renderer read from here.
type Capabilities struct {
	Term      Terminal         // Detected terminal emulator
	Protocol  GraphicsProtocol // Selected graphics protocol
	Size      Size             // Terminal dimensions
	TrueColor bool             // 24-bit color support
	SSH       bool             // Running over SSH
	Mux       bool             // Inside a multiplexer (tmux, screen)
}

var (
	cached     *Capabilities
	detectOnce sync.Once
	mu         sync.Mutex // guards ForceRefresh reset
)

// DetectCapabilities performs full terminal detection and caches the
// result. Safe to call from multiple goroutines; detection runs exactly
// once. Subsequent calls return the cached value.
func DetectCapabilities() *Capabilities {
	detectOnce.Do(func() {
		cached = detect()
	})
	return cached
}

// ForceRefresh re-detects capabilities, replacing the cached value. Use
// after a terminal change, such as attaching to or detaching from tmux.
func ForceRefresh() *Capabilities {
	mu.Lock()
	defer mu.Unlock()

	detectOnce = sync.Once{}
	// Consume the fresh Once here so later DetectCapabilities calls keep
	// returning this value instead of detecting again.
	detectOnce.Do(func() {
		cached = detect()
	})
	return cached
}

// Cached returns the previously cached capabilities without re-detection,
// nil if DetectCapabilities has not been called yet.
func Cached() *Capabilities {
	return cached
}

func detect() *Capabilities {
	term := Detect()
	tmux := os.Getenv("TMUX") != ""
	screen := os.Getenv("STY") != ""

	// True color: either the terminal natively supports it, or
	// COLORTERM announces it.
	trueColor := term.SupportsTrueColor()
	if !trueColor {
		ct := os.Getenv("COLORTERM")
		trueColor = ct == "truecolor" || ct == "24bit"
	}

	return &Capabilities{
		Term:      term,
		Protocol:  SelectProtocol(term),
		Size:      GetSize(),
		TrueColor: trueColor,
		SSH:       isSSH(),
		Mux:       tmux || screen,
	}
}
