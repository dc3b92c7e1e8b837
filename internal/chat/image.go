// AngelaMos | 2026
// image.go

package chat

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"math"

	_ "golang.org/x/image/bmp"
	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

var (
	ErrImage = errors.New("invalid image")
	// ErrImageTooLarge means the declared dimensions exceed the pixel
	// budget. Such uploads are never forwarded, not even as raw bytes.
	ErrImageTooLarge = errors.New("image dimensions exceed limit")
)

type ImageOptions struct {
	MaxWidth  int
	MaxHeight int
	Quality   int
	// MaxPixels caps width*height before any pixel buffer is allocated.
	// Zero disables the check.
	MaxPixels int64
}

// NormalizeImage decodes data, flattens it onto an opaque white canvas,
// shrinks it to fit within the configured box and re-encodes it as JPEG.
// Images already inside the box keep their size.
func NormalizeImage(data []byte, opts ImageOptions) ([]byte, string, error) {
	if len(data) == 0 {
		return nil, "", fmt.Errorf("empty upload: %w", ErrImage)
	}

	header, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("decode image header: %w: %w", ErrImage, err)
	}
	pixels := int64(header.Width) * int64(header.Height)
	if opts.MaxPixels > 0 && pixels > opts.MaxPixels {
		return nil, "", fmt.Errorf("%dx%d: %w: %w",
			header.Width, header.Height, ErrImageTooLarge, ErrImage)
	}

	src, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("decode image: %w: %w", ErrImage, err)
	}

	bounds := src.Bounds()
	w, h := fitWithin(bounds.Dx(), bounds.Dy(), opts.MaxWidth, opts.MaxHeight)

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	xdraw.Draw(dst, dst.Bounds(), &image.Uniform{C: color.White}, image.Point{}, xdraw.Src)

	if w == bounds.Dx() && h == bounds.Dy() {
		xdraw.Draw(dst, dst.Bounds(), src, bounds.Min, xdraw.Over)
	} else {
		xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, xdraw.Over, nil)
	}

	var out bytes.Buffer
	if err := jpeg.Encode(&out, dst, &jpeg.Options{Quality: opts.Quality}); err != nil {
		return nil, "", fmt.Errorf("encode %s as jpeg: %w", format, err)
	}

	return out.Bytes(), "image/jpeg", nil
}

func fitWithin(w, h, maxW, maxH int) (int, int) {
	if w <= maxW && h <= maxH {
		return w, h
	}

	scale := math.Min(float64(maxW)/float64(w), float64(maxH)/float64(h))
	nw := max(1, int(math.Round(float64(w)*scale)))
	nh := max(1, int(math.Round(float64(h)*scale)))

	return min(nw, maxW), min(nh, maxH)
}
