package packaging

import (
	"fmt"
	"image"
	"image/draw"
	"image/jpeg"
	_ "image/png"
	"math"
	"os"

	"github.com/nfnt/resize"

	"freestyle/internal/fileutil"
)

// coverQuality is the JPEG quality used for generated covers.
const coverQuality = 90

// RenderPlaceholder decodes src (JPEG or PNG), scales it to fill a size x
// size square, center-crops, and writes a JPEG to dst.
func RenderPlaceholder(src, dst string, size int) error {
	if size <= 0 {
		return fmt.Errorf("placeholder: invalid size %d", size)
	}
	f, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("placeholder: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return fmt.Errorf("placeholder: decode %s: %w", src, err)
	}

	cover := fillSquare(img, size)

	out, err := os.CreateTemp("", "cover-*.jpg")
	if err != nil {
		return fmt.Errorf("placeholder: %w", err)
	}
	tmp := out.Name()
	defer os.Remove(tmp)

	if err := jpeg.Encode(out, cover, &jpeg.Options{Quality: coverQuality}); err != nil {
		_ = out.Close()
		return fmt.Errorf("placeholder: encode: %w", err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("placeholder: %w", err)
	}
	return fileutil.CopyFile(tmp, dst)
}

// fillSquare scales img so its shorter edge equals size, then crops the
// centered size x size region.
func fillSquare(img image.Image, size int) image.Image {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w == 0 || h == 0 {
		return image.NewRGBA(image.Rect(0, 0, size, size))
	}

	scale := math.Max(float64(size)/float64(w), float64(size)/float64(h))
	sw := uint(math.Ceil(float64(w) * scale))
	sh := uint(math.Ceil(float64(h) * scale))
	scaled := resize.Resize(sw, sh, img, resize.Lanczos3)

	sb := scaled.Bounds()
	x0 := sb.Min.X + (sb.Dx()-size)/2
	y0 := sb.Min.Y + (sb.Dy()-size)/2

	dst := image.NewRGBA(image.Rect(0, 0, size, size))
	draw.Draw(dst, dst.Bounds(), scaled, image.Pt(x0, y0), draw.Src)
	return dst
}
