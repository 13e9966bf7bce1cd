// Package imageops implements the image operations the samplers apply to
// trajectory frames: direct resizing, fixed margin crops, augmentation with
// one random draw shared by a whole frame sequence, and conversion to a
// channel-first float32 layout.
package imageops

import (
	"image"
	"image/color"

	"github.com/pkg/errors"
)

// Planar is a channel-first (C, H, W) float32 image.
type Planar struct {
	Channels int
	Height   int
	Width    int
	Pix      []float32
}

// Shape returns (C, H, W).
func (p Planar) Shape() []int {
	return []int{p.Channels, p.Height, p.Width}
}

// At returns the value of channel c at (x, y).
func (p Planar) At(c, y, x int) float32 {
	return p.Pix[(c*p.Height+y)*p.Width+x]
}

// Image converts p back to an 8-bit image, dividing every value by scale and
// clamping to [0,255]. Planars with fewer than 3 channels repeat the first.
func (p Planar) Image(scale float32) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, p.Width, p.Height))
	if scale == 0 {
		scale = 1
	}
	for y := 0; y < p.Height; y++ {
		for x := 0; x < p.Width; x++ {
			var rgb [3]uint8
			for c := range rgb {
				v := p.At(min(c, p.Channels-1), y, x) / scale
				rgb[c] = uint8(min(max(v+0.5, 0), 255))
			}
			img.SetNRGBA(x, y, color.NRGBA{R: rgb[0], G: rgb[1], B: rgb[2], A: 255})
		}
	}
	return img
}

// ToPlanar converts img to a 3 channel (RGB) Planar, multiplying every
// 8-bit value by scale. Use 1 to keep [0,255] and 1.0/255 for [0,1].
func ToPlanar(img image.Image, scale float32) Planar {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	p := Planar{Channels: 3, Height: h, Width: w, Pix: make([]float32, 3*w*h)}
	plane := w * h

	if nrgba, ok := img.(*image.NRGBA); ok {
		for y := 0; y < h; y++ {
			row := nrgba.Pix[y*nrgba.Stride : y*nrgba.Stride+4*w]
			for x := 0; x < w; x++ {
				i := y*w + x
				p.Pix[i] = float32(row[4*x]) * scale
				p.Pix[plane+i] = float32(row[4*x+1]) * scale
				p.Pix[2*plane+i] = float32(row[4*x+2]) * scale
			}
		}
		return p
	}

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := color.NRGBAModel.Convert(img.At(b.Min.X+x, b.Min.Y+y)).(color.NRGBA)
			i := y*w + x
			p.Pix[i] = float32(c.R) * scale
			p.Pix[plane+i] = float32(c.G) * scale
			p.Pix[2*plane+i] = float32(c.B) * scale
		}
	}
	return p
}

// Stack concatenates same-shaped planars into one flat (N, C, H, W) buffer.
func Stack(ps []Planar) ([]float32, []int, error) {
	if len(ps) == 0 {
		return nil, []int{0, 0, 0, 0}, nil
	}
	first := ps[0]
	size := first.Channels * first.Height * first.Width
	flat := make([]float32, 0, len(ps)*size)
	for i, p := range ps {
		if p.Channels != first.Channels || p.Height != first.Height || p.Width != first.Width {
			return nil, nil, errors.Errorf("planar %d has shape %v, expected %v", i, p.Shape(), first.Shape())
		}
		flat = append(flat, p.Pix...)
	}
	return flat, []int{len(ps), first.Channels, first.Height, first.Width}, nil
}
