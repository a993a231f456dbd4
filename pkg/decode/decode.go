// Package decode loads image files into reference-shareable pixel frames.
// Static formats go through disintegration/imaging (which applies EXIF
// orientation); animated GIFs are expanded frame by frame. All frames come
// out as NRGBA so the rest of the program never deals with pixel formats.
package decode

import (
	"errors"
	"fmt"
	"image"
	"image/draw"
	"image/gif"
	"io"
	"math"
	"os"
	"time"

	"github.com/disintegration/imaging"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
	_ "image/jpeg"
	_ "image/png"
)

// Structural decode failures: the file parsed but does not describe an
// image the viewer can show.
var (
	ErrNoFrames     = errors.New("image has no frames")
	ErrPartialFrame = errors.New("partial frames are unsupported")
)

// FormatError reports a file whose format could not be recognized or is
// not supported.
type FormatError struct {
	Path string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("unsupported image format: %s", e.Path)
}

// Frame is one decoded frame and how long it should stay on screen.
// Delay is zero for static images.
type Frame struct {
	Pix   *image.NRGBA
	Delay time.Duration
}

// Metadata is the filesystem-level information shown alongside an image.
type Metadata struct {
	FileSize int64
	ModTime  time.Time
}

// Image is a fully decoded image: one or more equally sized frames plus
// file metadata. Instances are immutable after Decode returns and are
// shared by pointer between the cache and the active view.
type Image struct {
	Format string
	Width  int
	Height int
	Frames []Frame
	Meta   Metadata
}

// Animated reports whether the image has more than one frame.
func (img *Image) Animated() bool {
	return len(img.Frames) > 1
}

// Kind returns "Animated" or "Static" for display.
func (img *Image) Kind() string {
	if img.Animated() {
		return "Animated"
	}
	return "Static"
}

// SizeInMemory returns the pixel byte footprint of all frames: width x
// height x 4 bytes per frame, saturating instead of overflowing on
// pathological dimensions.
func (img *Image) SizeInMemory() int64 {
	var total int64
	for _, f := range img.Frames {
		b := f.Pix.Bounds()
		total = satAdd(total, satMul(satMul(int64(b.Dx()), int64(b.Dy())), 4))
	}
	return total
}

func satMul(a, b int64) int64 {
	if a == 0 || b == 0 {
		return 0
	}
	if a > math.MaxInt64/b {
		return math.MaxInt64
	}
	return a * b
}

func satAdd(a, b int64) int64 {
	if a > math.MaxInt64-b {
		return math.MaxInt64
	}
	return a + b
}

// Decode reads and fully decodes the image at path. Every frame of an
// animated image must cover the full canvas at offset (0,0); partial
// frames are rejected rather than composited.
func Decode(path string) (*Image, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat image: %w", err)
	}
	meta := Metadata{FileSize: info.Size(), ModTime: info.ModTime()}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open image: %w", err)
	}
	defer f.Close()

	_, format, err := image.DecodeConfig(f)
	if err != nil {
		if errors.Is(err, image.ErrFormat) {
			return nil, &FormatError{Path: path}
		}
		return nil, fmt.Errorf("read image header: %w", err)
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("rewind image: %w", err)
	}

	if format == "gif" {
		return decodeGIF(f, meta)
	}
	return decodeStatic(f, format, meta)
}

// decodeStatic handles every single-frame format.
func decodeStatic(r io.Reader, format string, meta Metadata) (*Image, error) {
	src, err := imaging.Decode(r, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", format, err)
	}

	pix := toNRGBA(src)
	b := pix.Bounds()
	return &Image{
		Format: format,
		Width:  b.Dx(),
		Height: b.Dy(),
		Frames: []Frame{{Pix: pix}},
		Meta:   meta,
	}, nil
}

// decodeGIF expands an animated GIF into full frames. GIFs that rely on
// partial-frame composition are rejected; every frame must span the whole
// logical screen.
func decodeGIF(r io.Reader, meta Metadata) (*Image, error) {
	g, err := gif.DecodeAll(r)
	if err != nil {
		return nil, fmt.Errorf("decode gif: %w", err)
	}
	if len(g.Image) == 0 {
		return nil, fmt.Errorf("decode gif: %w", ErrNoFrames)
	}

	width, height := g.Config.Width, g.Config.Height
	if width == 0 || height == 0 {
		b := g.Image[0].Bounds()
		width, height = b.Dx(), b.Dy()
	}
	canvas := image.Rect(0, 0, width, height)

	frames := make([]Frame, 0, len(g.Image))
	for i, src := range g.Image {
		if src.Bounds() != canvas {
			return nil, fmt.Errorf("decode gif: %w", ErrPartialFrame)
		}

		pix := image.NewNRGBA(canvas)
		draw.Draw(pix, canvas, src, canvas.Min, draw.Src)

		delay := g.Delay[i] // hundredths of a second
		if delay <= 0 {
			// A zero delay is conventionally shown as 100ms.
			delay = 10
		}
		frames = append(frames, Frame{
			Pix:   pix,
			Delay: time.Duration(delay) * 10 * time.Millisecond,
		})
	}

	return &Image{
		Format: "gif",
		Width:  width,
		Height: height,
		Frames: frames,
		Meta:   meta,
	}, nil
}

// toNRGBA converts an arbitrary decoded image to NRGBA, reusing the
// buffer when it already is one.
func toNRGBA(src image.Image) *image.NRGBA {
	if nrgba, ok := src.(*image.NRGBA); ok {
		return nrgba
	}
	bounds := src.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(dst, dst.Bounds(), src, bounds.Min, draw.Src)
	return dst
}
