package imageops

import (
	"image"
	"image/color"

	"github.com/disintegration/imaging"
	"github.com/nfnt/resize"
	"github.com/pkg/errors"
)

// Resize scales img to width x height. Without preserveAspect the image is
// stretched to the target. With preserveAspect it is scaled to fit and
// centred on a black canvas of the target size.
func Resize(img image.Image, width, height int, preserveAspect bool) (*image.NRGBA, error) {
	if width <= 0 || height <= 0 {
		return nil, errors.Errorf("invalid resize target %dx%d", width, height)
	}
	size := img.Bounds().Size()
	if size.X <= 0 || size.Y <= 0 {
		return nil, errors.Errorf("cannot resize empty image %v", img.Bounds())
	}
	if !preserveAspect {
		return toNRGBA(resize.Resize(uint(width), uint(height), img, resize.Bilinear)), nil
	}

	wRatio := float64(width) / float64(size.X)
	hRatio := float64(height) / float64(size.Y)
	fitW, fitH := width, height
	if wRatio < hRatio {
		fitH = max(1, int(wRatio*float64(size.Y)))
	} else if hRatio < wRatio {
		fitW = max(1, int(hRatio*float64(size.X)))
	}
	scaled := resize.Resize(uint(fitW), uint(fitH), img, resize.Bilinear)
	if fitW == width && fitH == height {
		return toNRGBA(scaled), nil
	}
	bg := imaging.New(width, height, color.NRGBA{A: 0xFF})
	return imaging.PasteCenter(bg, scaled), nil
}

// Downscale divides both dimensions of img by factor, truncating.
func Downscale(img image.Image, factor float64) (*image.NRGBA, error) {
	if factor <= 0 {
		return nil, errors.Errorf("invalid downscale factor %v", factor)
	}
	w, h := DownscaledSize(img.Bounds().Dx(), img.Bounds().Dy(), factor)
	return Resize(img, w, h, false)
}

// DownscaledSize returns (width/factor, height/factor), truncated.
func DownscaledSize(width, height int, factor float64) (int, int) {
	return int(float64(width) / factor), int(float64(height) / factor)
}

// toNRGBA returns img as an *image.NRGBA anchored at the origin.
func toNRGBA(img image.Image) *image.NRGBA {
	if n, ok := img.(*image.NRGBA); ok && n.Rect.Min == (image.Point{}) {
		return n
	}
	return imaging.Clone(img)
}
