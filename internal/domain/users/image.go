package users

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"

	// Register decoders for the supported upload formats.
	_ "image/gif"
	_ "image/png"

	"golang.org/x/image/draw"
)

// Rect is a caller-supplied square crop region in source pixels.
type Rect struct {
	X    int `json:"x"`
	Y    int `json:"y"`
	Size int `json:"size"`
}

const jpegQuality = 85

// processImage decodes, crops to a square, scales to size x size, and
// re-encodes as JPEG. When crop is nil a centered square is derived.
func processImage(data []byte, crop *Rect, size int) ([]byte, error) {
	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}

	region := squareRegion(src.Bounds(), crop)
	dst := image.NewRGBA(image.Rect(0, 0, size, size))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, region, draw.Src, nil)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}

// squareRegion clamps the requested crop to the image bounds, falling
// back to the largest centered square.
func squareRegion(bounds image.Rectangle, crop *Rect) image.Rectangle {
	if crop != nil && crop.Size > 0 {
		region := image.Rect(crop.X, crop.Y, crop.X+crop.Size, crop.Y+crop.Size)
		region = region.Intersect(bounds)
		if !region.Empty() && region.Dx() == region.Dy() {
			return region
		}
	}

	side := bounds.Dx()
	if bounds.Dy() < side {
		side = bounds.Dy()
	}
	x0 := bounds.Min.X + (bounds.Dx()-side)/2
	y0 := bounds.Min.Y + (bounds.Dy()-side)/2
	return image.Rect(x0, y0, x0+side, y0+side)
}
