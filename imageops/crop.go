package imageops

import (
	"image"

	"github.com/disintegration/imaging"
	"github.com/pkg/errors"
)

// Trim is a fixed crop given as the number of pixels removed from each
// border. The zero Trim leaves the image untouched.
type Trim struct {
	Top    int `yaml:"top"`
	Bottom int `yaml:"bottom"`
	Left   int `yaml:"left"`
	Right  int `yaml:"right"`
}

// TrimFromSlice builds a Trim from [top, bottom, left, right]. An empty
// slice is the zero Trim.
func TrimFromSlice(v []int) (Trim, error) {
	switch len(v) {
	case 0:
		return Trim{}, nil
	case 4:
		return Trim{Top: v[0], Bottom: v[1], Left: v[2], Right: v[3]}, nil
	}
	return Trim{}, errors.Errorf("crop needs 4 values (top, bottom, left, right), got %d", len(v))
}

// IsZero reports whether t removes nothing.
func (t Trim) IsZero() bool {
	return t == Trim{}
}

// Rect returns the region of bounds kept by t.
func (t Trim) Rect(bounds image.Rectangle) (image.Rectangle, error) {
	if t.Top < 0 || t.Bottom < 0 || t.Left < 0 || t.Right < 0 {
		return image.Rectangle{}, errors.Errorf("negative crop %+v", t)
	}
	if t.Left+t.Right >= bounds.Dx() || t.Top+t.Bottom >= bounds.Dy() {
		return image.Rectangle{}, errors.Errorf("crop %+v leaves nothing of %v", t, bounds)
	}
	r := image.Rect(bounds.Min.X+t.Left, bounds.Min.Y+t.Top, bounds.Max.X-t.Right, bounds.Max.Y-t.Bottom)
	return r, nil
}

// Crop removes the borders described by t.
func Crop(img image.Image, t Trim) (*image.NRGBA, error) {
	if t.IsZero() {
		return toNRGBA(img), nil
	}
	r, err := t.Rect(img.Bounds())
	if err != nil {
		return nil, err
	}
	return imaging.Crop(img, r), nil
}
