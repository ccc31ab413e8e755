package extract

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os/exec"

	"github.com/arxfloor/roomdetect/internal/apperror"
	"github.com/arxfloor/roomdetect/internal/raster"
)

// Vectorizer converts a normalized raster frame into an SVG document. The
// vtracer_only and vtracer_ai_parser strategies depend only on this
// interface, never on a concrete implementation.
type Vectorizer interface {
	Vectorize(ctx context.Context, frame *raster.ImageFrame) (svgText string, err error)
}

// ExecVectorizer shells out to an external raster-to-vector binary (e.g.
// vtracer), treating it as an out-of-process collaborator.
// It is the default Vectorizer outside of tests.
type ExecVectorizer struct {
	BinaryPath string
}

// Vectorize writes frame as a PNG to the external binary's stdin and reads
// an SVG document from its stdout.
func (v *ExecVectorizer) Vectorize(ctx context.Context, frame *raster.ImageFrame) (string, error) {
	img := frameToImage(frame)
	var pngBuf bytes.Buffer
	if err := png.Encode(&pngBuf, img); err != nil {
		return "", apperror.Wrap(err, apperror.DecodeError, "encode frame for vectorizer")
	}

	binary := v.BinaryPath
	if binary == "" {
		binary = "vtracer"
	}
	cmd := exec.CommandContext(ctx, binary, "--input", "-", "--output", "-", "--colormode", "bw")
	cmd.Stdin = &pngBuf

	out, err := cmd.Output()
	if err != nil {
		return "", apperror.Wrap(err, apperror.ExternalMalformedResponse, fmt.Sprintf("%s vectorization failed", binary))
	}
	return string(out), nil
}

// StubVectorizer returns a fixed SVG document (or error) regardless of
// input, for tests that exercise the vtracer strategies without the real
// binary.
type StubVectorizer struct {
	SVG string
	Err error
}

func (v *StubVectorizer) Vectorize(ctx context.Context, frame *raster.ImageFrame) (string, error) {
	if v.Err != nil {
		return "", v.Err
	}
	return v.SVG, nil
}

func frameToImage(frame *raster.ImageFrame) image.Image {
	img := image.NewGray(image.Rect(0, 0, frame.Width, frame.Height))
	for y := 0; y < frame.Height; y++ {
		for x := 0; x < frame.Width; x++ {
			v := uint8(255)
			if frame.At(x, y) {
				v = 0
			}
			img.SetGray(x, y, color.Gray{Y: v})
		}
	}
	return img
}
