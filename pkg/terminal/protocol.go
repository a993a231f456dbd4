package terminal

import (
	"os"
	"strings"
)

// GraphicsProtocol identifies which image rendering protocol to use.
type GraphicsProtocol int

const (
	ProtocolNone       GraphicsProtocol = iota // No graphics at all
	ProtocolKitty                              // Kitty graphics protocol (Ghostty, Kitty, WezTerm)
	ProtocolITerm2                             // iTerm2 inline images protocol
	ProtocolSixel                              // Sixel graphics protocol
	ProtocolHalfblocks                         // Unicode half-block characters with ANSI color
)

// protocolNames maps GraphicsProtocol values to human-readable strings.
var protocolNames = [...]string{
	ProtocolNone:       "none",
	ProtocolKitty:      "kitty",
	ProtocolITerm2:     "iterm2",
	ProtocolSixel:      "sixel",
	ProtocolHalfblocks: "halfblocks",
}

// String returns the human-readable name of the graphics protocol.
func (p GraphicsProtocol) String() string {
	if int(p) < len(protocolNames) {
		return protocolNames[p]
	}
	return "unknown"
}

// SelectProtocol returns the best graphics protocol for the detected
// terminal:
//   - Ghostty, Kitty, WezTerm -> ProtocolKitty
//   - iTerm2 -> ProtocolITerm2
//   - everything else -> ProtocolHalfblocks (safest fallback)
//
// SSH sessions degrade to halfblocks: pixel protocols across a network
// hop are often broken in ways the viewer cannot detect.
func SelectProtocol(term Terminal) GraphicsProtocol {
	proto := selectBaseProtocol(term)

	if isSSH() {
		switch proto {
		case ProtocolKitty, ProtocolITerm2, ProtocolSixel:
			return ProtocolHalfblocks
		}
	}

	return proto
}

// selectBaseProtocol returns the ideal protocol for a terminal without
// considering environmental degradation (SSH, etc.).
func selectBaseProtocol(term Terminal) GraphicsProtocol {
	switch term {
	case TermGhostty, TermKitty, TermWezTerm:
		return ProtocolKitty
	case TermITerm2:
		return ProtocolITerm2
	default:
		return ProtocolHalfblocks
	}
}

// SelectProtocolWithOverride lets the config or -protocol flag force a
// specific graphics protocol. Empty and "auto" proceed with detection.
// Valid overrides: "kitty", "iterm2", "sixel", "halfblocks", "none".
func SelectProtocolWithOverride(term Terminal, override string) GraphicsProtocol {
	switch strings.ToLower(override) {
	case "", "auto":
		return SelectProtocol(term)
	case "kitty":
		return ProtocolKitty
	case "iterm2":
		return ProtocolITerm2
	case "sixel":
		return ProtocolSixel
	case "halfblocks", "unicode", "half-blocks":
		return ProtocolHalfblocks
	case "none", "off", "disabled":
		return ProtocolNone
	default:
		// Unknown override, fall back to detection.
		return SelectProtocol(term)
	}
}

// isSSH reports whether the current session is running over SSH.
func isSSH() bool {
	return os.Getenv("SSH_TTY") != "" ||
		os.Getenv("SSH_CONNECTION") != "" ||
		os.Getenv("SSH_CLIENT") != ""
}
