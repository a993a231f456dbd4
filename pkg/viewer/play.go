package viewer

import (
	"time"

	"gitlab.com/tinyland/lab/loupe/pkg/decode"
)

// PlayState is the frame clock of the displayed image. Static images get
// an inert clock; animated ones start playing at frame zero.
type PlayState struct {
	img       *decode.Image
	frame     int
	remaining time.Duration
	playing   bool
}

func newPlayState(img *decode.Image) *PlayState {
	p := &PlayState{img: img}
	if img.Animated() {
		p.playing = true
		p.remaining = img.Frames[0].Delay
	}
	return p
}

// Frame returns the index of the frame to display.
func (p *PlayState) Frame() int {
	return p.frame
}

// Animated reports whether there is more than one frame.
func (p *PlayState) Animated() bool {
	return p.img.Animated()
}

// Playing reports whether the clock is running.
func (p *PlayState) Playing() bool {
	return p.playing
}

// Advance feeds elapsed wall time into the clock and reports whether the
// displayed frame changed. It moves forward at most one frame per call:
// after a stall the animation resumes from the next frame instead of
// skipping ahead to catch up.
func (p *PlayState) Advance(elapsed time.Duration) bool {
	if !p.playing || !p.img.Animated() {
		return false
	}
	p.remaining -= elapsed
	if p.remaining > 0 {
		return false
	}

	p.frame = (p.frame + 1) % len(p.img.Frames)
	p.remaining += p.img.Frames[p.frame].Delay
	if p.remaining <= 0 {
		p.remaining = p.img.Frames[p.frame].Delay
	}
	return true
}

// TogglePlay pauses or resumes an animated image. On resume the current
// frame gets a fresh delay so it does not flip immediately.
func (p *PlayState) TogglePlay() {
	if !p.img.Animated() {
		return
	}
	p.playing = !p.playing
	if p.playing {
		p.remaining = p.img.Frames[p.frame].Delay
	}
}

// MoveTo jumps to the given frame and pauses there. Out-of-range indexes
// are ignored.
func (p *PlayState) MoveTo(frame int) {
	if frame < 0 || frame >= len(p.img.Frames) {
		return
	}
	p.frame = frame
	p.playing = false
}
