// Package raster normalizes uploaded floor-plan images into a canonical
// binary frame that the connected-component room detector can flood-fill.
package raster

import (
	"bytes"
	"image"
	"image/color"
	_ "image/jpeg"
	_ "image/png"

	"golang.org/x/image/draw"

	"github.com/arxfloor/roomdetect/internal/apperror"
)

// MaxDecodedPixels bounds decoded image area to guard against decompression
// bombs (a small file that inflates to an enormous frame).
const MaxDecodedPixels = 64_000_000 // e.g. 8000x8000

// CanonicalSize is the default square side that images are letterboxed into
// before binarization.
const CanonicalSize = 1000

// ImageFrame is a normalized, single-channel binary frame: true marks an
// "ink" (wall) pixel, false marks background.
type ImageFrame struct {
	Width, Height int
	Ink           []bool // row-major, len == Width*Height
}

// At reports whether (x, y) is an ink pixel. Out-of-bounds reads return
// false.
func (f *ImageFrame) At(x, y int) bool {
	if x < 0 || y < 0 || x >= f.Width || y >= f.Height {
		return false
	}
	return f.Ink[y*f.Width+x]
}

// Decode parses PNG or JPEG bytes into an image.Image, rejecting inputs that
// would decode into an unreasonably large frame.
func Decode(data []byte) (image.Image, error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, apperror.Wrap(err, apperror.DecodeError, "decode image header")
	}
	if cfg.Width*cfg.Height > MaxDecodedPixels {
		return nil, apperror.New(apperror.ImageTooLarge, "decoded image exceeds maximum pixel count")
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, apperror.Wrap(err, apperror.DecodeError, "decode image")
	}
	return img, nil
}

// Letterbox resizes img to fit within a size x size square via a
// high-quality Catmull-Rom scaler, preserving aspect ratio and padding the
// remainder with white.
func Letterbox(img image.Image, size int) *image.RGBA {
	b := img.Bounds()
	srcW, srcH := b.Dx(), b.Dy()
	if srcW == 0 || srcH == 0 {
		return image.NewRGBA(image.Rect(0, 0, size, size))
	}

	scale := float64(size) / float64(srcW)
	if s := float64(size) / float64(srcH); s < scale {
		scale = s
	}
	dstW := maxInt(1, int(float64(srcW)*scale))
	dstH := maxInt(1, int(float64(srcH)*scale))

	scaled := image.NewRGBA(image.Rect(0, 0, dstW, dstH))
	draw.CatmullRom.Scale(scaled, scaled.Bounds(), img, b, draw.Over, nil)

	canvas := image.NewRGBA(image.Rect(0, 0, size, size))
	white := color.RGBA{R: 255, G: 255, B: 255, A: 255}
	draw.Draw(canvas, canvas.Bounds(), &image.Uniform{C: white}, image.Point{}, draw.Src)

	offX := (size - dstW) / 2
	offY := (size - dstH) / 2
	draw.Draw(canvas, image.Rect(offX, offY, offX+dstW, offY+dstH), scaled, image.Point{}, draw.Over)

	return canvas
}

// Binarize converts img to an ImageFrame. If threshold <= 0, Otsu's method
// picks the threshold automatically; otherwise threshold (0-255) is used
// directly as a fixed luminance cutoff. Pixels darker than the threshold are
// ink.
func Binarize(img image.Image, threshold int) *ImageFrame {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	gray := make([]uint8, w*h)
	hist := [256]int{}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r, g, bl, _ := img.At(b.Min.X+x, b.Min.Y+y).RGBA()
			lum := uint8((299*r + 587*g + 114*bl) / 1000 >> 8)
			gray[y*w+x] = lum
			hist[lum]++
		}
	}

	t := threshold
	if t <= 0 {
		t = otsuThreshold(hist, w*h)
	}

	frame := &ImageFrame{Width: w, Height: h, Ink: make([]bool, w*h)}
	for i, lum := range gray {
		frame.Ink[i] = int(lum) < t
	}
	return frame
}

// otsuThreshold computes Otsu's between-class-variance-maximizing threshold
// from a 256-bucket luminance histogram.
func otsuThreshold(hist [256]int, total int) int {
	var sumAll float64
	for i, c := range hist {
		sumAll += float64(i * c)
	}

	var sumB, wB float64
	var best float64
	bestT := 127
	for t := 0; t < 256; t++ {
		wB += float64(hist[t])
		if wB == 0 {
			continue
		}
		wF := float64(total) - wB
		if wF == 0 {
			break
		}
		sumB += float64(t * hist[t])
		mB := sumB / wB
		mF := (sumAll - sumB) / wF
		between := wB * wF * (mB - mF) * (mB - mF)
		if between > best {
			best = between
			bestT = t
		}
	}
	return bestT
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
