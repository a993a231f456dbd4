package render

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"strings"

	"github.com/blacktop/go-termimg"

	"gitlab.com/tinyland/lab/loupe/pkg/terminal"
)

// Options configures a Renderer.
type Options struct {
	// Protocol is the graphics protocol to emit. ProtocolNone makes every
	// Render call fail; the TUI should not construct an image pane then.
	Protocol terminal.GraphicsProtocol

	// CellW and CellH are the pixel dimensions of one terminal cell,
	// from the size query. Zero falls back to 8x16.
	CellW, CellH int

	// Checkered puts the classic checkerboard behind transparent pixels;
	// otherwise they show the terminal's own background.
	Checkered bool

	// DarkBackground selects the dark variant of the backdrop.
	DarkBackground bool

	// CacheBytes bounds the rendered-string cache. Zero means 32 MiB.
	CacheBytes int64
}

// Renderer converts decoded frames into terminal escape strings. Safe for
// use from a single goroutine; the underlying cache is safe for more.
type Renderer struct {
	protocol  terminal.GraphicsProtocol
	cellW     int
	cellH     int
	checkered bool
	dark      bool
	cache     *Cache
}

// New creates a Renderer.
func New(opts Options) *Renderer {
	cellW, cellH := opts.CellW, opts.CellH
	if cellW <= 0 {
		cellW = 8
	}
	if cellH <= 0 {
		cellH = 16
	}
	return &Renderer{
		protocol:  opts.Protocol,
		cellW:     cellW,
		cellH:     cellH,
		checkered: opts.Checkered,
		dark:      opts.DarkBackground,
		cache:     NewCache(opts.CacheBytes),
	}
}

// Protocol returns the active rendering protocol.
func (r *Renderer) Protocol() terminal.GraphicsProtocol {
	return r.protocol
}

// Cache returns the renderer's cache for inspection or invalidation.
func (r *Renderer) Cache() *Cache {
	return r.cache
}

// Render converts one frame of the image at path into an escape string
// fitting the given cell area. path and frame key the cache; the pixel
// data is only touched on a miss.
func (r *Renderer) Render(path string, frame int, pix *image.NRGBA, widthCells, heightCells int) (string, error) {
	if pix == nil {
		return "", fmt.Errorf("render %s: nil frame", path)
	}
	if r.protocol == terminal.ProtocolNone {
		return "", fmt.Errorf("render %s: graphics disabled", path)
	}

	key := Key{Path: path, Frame: frame, Width: widthCells, Height: heightCells, Protocol: r.protocol.String()}
	if cached, ok := r.cache.Get(key); ok {
		return cached, nil
	}

	// Halfblocks emit one character per pixel column and one line per two
	// pixel rows, so their pixel budget is the cell grid itself, not the
	// terminal's pixel dimensions.
	cellW, cellH := r.cellW, r.cellH
	if r.protocol == terminal.ProtocolHalfblocks {
		cellW, cellH = 1, 2
	}
	resized := ResizeToFit(pix, widthCells, heightCells, cellW, cellH)

	var rendered string
	var err error
	switch r.protocol {
	case terminal.ProtocolKitty:
		rendered, err = r.renderTermimg(resized, termimg.Kitty, widthCells, heightCells)
	case terminal.ProtocolITerm2:
		rendered, err = r.renderTermimg(resized, termimg.ITerm2, widthCells, heightCells)
	case terminal.ProtocolSixel:
		rendered, err = r.renderTermimg(resized, termimg.Sixel, widthCells, heightCells)
	default:
		rendered, err = r.renderHalfblocks(r.flatten(ToNRGBA(resized)))
	}
	if err != nil {
		return "", fmt.Errorf("render %s: %w", path, err)
	}

	r.cache.Put(key, rendered)
	return rendered, nil
}

// renderTermimg delegates to go-termimg for the pixel protocols. Those
// terminals composite alpha themselves.
func (r *Renderer) renderTermimg(img image.Image, proto termimg.Protocol, widthCells, heightCells int) (string, error) {
	ti := termimg.New(img)
	if ti == nil {
		return "", fmt.Errorf("go-termimg rejected image")
	}
	ti.Protocol(proto).Size(widthCells, heightCells).Scale(termimg.ScaleFit)
	return ti.Render()
}

// renderHalfblocks renders with Unicode upper-half-block characters and
// 24-bit ANSI color. Each character cell encodes two vertical pixels: the
// top as foreground of U+2580, the bottom as background. Works on every
// terminal with true color support, no graphics protocol needed.
func (r *Renderer) renderHalfblocks(img *image.NRGBA) (string, error) {
	bounds := img.Bounds()
	w := bounds.Dx()
	h := bounds.Dy()
	if w <= 0 || h <= 0 {
		return "", nil
	}

	var b strings.Builder
	// Rough estimate of 30 bytes per cell for escapes plus the rune.
	b.Grow(w * (h/2 + 1) * 30)

	for y := 0; y < h; y += 2 {
		if y > 0 {
			b.WriteString("\x1b[0m\n")
		}
		for x := 0; x < w; x++ {
			top := img.NRGBAAt(bounds.Min.X+x, bounds.Min.Y+y)

			var bot color.NRGBA
			if y+1 < h {
				bot = img.NRGBAAt(bounds.Min.X+x, bounds.Min.Y+y+1)
			}

			switch {
			case top.A == 0 && bot.A == 0:
				b.WriteString("\x1b[0m ")
			case top.A == 0:
				// Only the bottom pixel: lower half block, fg = bottom.
				fmt.Fprintf(&b, "\x1b[38;2;%d;%d;%dm\x1b[49m▄", bot.R, bot.G, bot.B)
			case bot.A == 0:
				// Only the top pixel: upper half block, fg = top.
				fmt.Fprintf(&b, "\x1b[38;2;%d;%d;%dm\x1b[49m▀", top.R, top.G, top.B)
			default:
				fmt.Fprintf(&b, "\x1b[38;2;%d;%d;%dm\x1b[48;2;%d;%d;%dm▀",
					top.R, top.G, top.B, bot.R, bot.G, bot.B)
			}
		}
	}

	b.WriteString("\x1b[0m")
	return b.String(), nil
}

// flatten composites a frame with an alpha channel onto the checkerboard
// backdrop. With the checkerboard off, transparent pixels pass through and
// the halfblock encoder leaves them as the terminal's own background.
func (r *Renderer) flatten(img *image.NRGBA) *image.NRGBA {
	if !r.checkered || !hasAlpha(img) {
		return img
	}

	bounds := img.Bounds()
	flat := image.NewNRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	drawChecker(flat, r.dark)
	draw.Draw(flat, flat.Bounds(), img, bounds.Min, draw.Over)
	return flat
}

// checkerSquare is the side length in pixels of one backdrop square.
const checkerSquare = 8

// drawChecker fills dst with the two-tone checkerboard, in a dark or
// light variant.
func drawChecker(dst *image.NRGBA, dark bool) {
	a, b := color.NRGBA{R: 0xcc, G: 0xcc, B: 0xcc, A: 0xff}, color.NRGBA{R: 0xa0, G: 0xa0, B: 0xa0, A: 0xff}
	if dark {
		a, b = color.NRGBA{R: 0x28, G: 0x28, B: 0x28, A: 0xff}, color.NRGBA{R: 0x3c, G: 0x3c, B: 0x3c, A: 0xff}
	}

	bounds := dst.Bounds()
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			if (x/checkerSquare+y/checkerSquare)%2 == 0 {
				dst.SetNRGBA(x, y, a)
			} else {
				dst.SetNRGBA(x, y, b)
			}
		}
	}
}

// hasAlpha reports whether any pixel is not fully opaque.
func hasAlpha(img *image.NRGBA) bool {
	bounds := img.Bounds()
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			if img.NRGBAAt(x, y).A != 0xff {
				return true
			}
		}
	}
	return false
}
