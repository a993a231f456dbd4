package render

import (
	"image"
	"image/draw"
	"math"

	xdraw "golang.org/x/image/draw"
)

// ResizeToFit scales an image to fit within the given cell area while
// keeping its aspect ratio, using CatmullRom resampling. Images that
// already fit are returned unmodified; there is no upscaling, a small
// image shown in a large window stays small and sharp.
//
// cellW/cellH are the pixel dimensions of one terminal cell; zero values
// get the conventional 8x16 defaults.
func ResizeToFit(img image.Image, maxWidthCells, maxHeightCells, cellW, cellH int) image.Image {
	if img == nil {
		return nil
	}

	if cellW <= 0 {
		cellW = 8
	}
	if cellH <= 0 {
		cellH = 16
	}
	if maxWidthCells <= 0 {
		maxWidthCells = 1
	}
	if maxHeightCells <= 0 {
		maxHeightCells = 1
	}

	maxW := maxWidthCells * cellW
	maxH := maxHeightCells * cellH

	bounds := img.Bounds()
	srcW := bounds.Dx()
	srcH := bounds.Dy()
	if srcW <= 0 || srcH <= 0 {
		return img
	}
	if srcW <= maxW && srcH <= maxH {
		return img
	}

	scale := math.Min(float64(maxW)/float64(srcW), float64(maxH)/float64(srcH))
	dstW := max(int(math.Round(float64(srcW)*scale)), 1)
	dstH := max(int(math.Round(float64(srcH)*scale)), 1)

	dst := image.NewNRGBA(image.Rect(0, 0, dstW, dstH))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, xdraw.Over, nil)
	return dst
}

// ToNRGBA converts any image.Image to *image.NRGBA for direct pixel
// access. NRGBA input passes through without copying.
func ToNRGBA(src image.Image) *image.NRGBA {
	if nrgba, ok := src.(*image.NRGBA); ok {
		return nrgba
	}
	bounds := src.Bounds()
	dst := image.NewNRGBA(bounds)
	draw.Draw(dst, bounds, src, bounds.Min, draw.Src)
	return dst
}
