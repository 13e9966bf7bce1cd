package imageops

import (
	"image"
	"image/color"
	"math/rand"

	"github.com/disintegration/imaging"
	"github.com/nfnt/resize"
	"github.com/pkg/errors"
)

// ColorJitter gives the maximum random change of each colour property.
// Brightness, Contrast and Saturation draw a factor in [1-v, 1+v] (floored
// at 0); Hue draws a shift in [-v, v] of a full turn, v <= 0.5. Zero fields
// are left alone.
type ColorJitter struct {
	Brightness float64 `yaml:"brightness"`
	Contrast   float64 `yaml:"contrast"`
	Saturation float64 `yaml:"saturation"`
	Hue        float64 `yaml:"hue"`
}

// IsZero reports whether no property is jittered.
func (c ColorJitter) IsZero() bool {
	return c == ColorJitter{}
}

// CropSize is the size of a random crop window. The window is resized back
// to the frame size so the output keeps the input dimensions.
type CropSize struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

// IsZero reports whether random cropping is disabled.
func (c CropSize) IsZero() bool {
	return c.Width <= 0 || c.Height <= 0
}

// AugmentConfig configures an Augmenter.
type AugmentConfig struct {
	ColorJitter ColorJitter `yaml:"color_jitter"`
	// Grayscale is the probability of converting the frames to gray.
	Grayscale  float64  `yaml:"grayscale"`
	RandomCrop CropSize `yaml:"random_crop"`
}

// Validate checks the ranges of c.
func (c AugmentConfig) Validate() error {
	j := c.ColorJitter
	if j.Brightness < 0 || j.Contrast < 0 || j.Saturation < 0 {
		return errors.Errorf("negative colour jitter %+v", j)
	}
	if j.Hue < 0 || j.Hue > 0.5 {
		return errors.Errorf("hue jitter %v outside [0, 0.5]", j.Hue)
	}
	if c.Grayscale < 0 || c.Grayscale > 1 {
		return errors.Errorf("grayscale probability %v outside [0, 1]", c.Grayscale)
	}
	if c.RandomCrop.Width < 0 || c.RandomCrop.Height < 0 {
		return errors.Errorf("negative random crop %+v", c.RandomCrop)
	}
	return nil
}

// Params is one random draw of augmentation parameters.
type Params struct {
	Brightness float64
	Contrast   float64
	Saturation float64
	Hue        float64
	Gray       bool
	// Crop is the window kept by the random crop; empty when disabled.
	Crop image.Rectangle
}

// Augmenter applies colour jitter, random grayscale and random crop to a
// sequence of frames using a single draw for the whole sequence, so every
// frame of a sample is transformed the same way.
type Augmenter struct {
	cfg AugmentConfig
}

// NewAugmenter validates cfg and returns an Augmenter.
func NewAugmenter(cfg AugmentConfig) (*Augmenter, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Augmenter{cfg: cfg}, nil
}

// Config returns the configuration of a.
func (a *Augmenter) Config() AugmentConfig { return a.cfg }

func factor(rng *rand.Rand, v float64) float64 {
	if v == 0 {
		return 1
	}
	lo := max(0, 1-v)
	return lo + rng.Float64()*(1+v-lo)
}

// Draw picks the parameters for frames of the given size.
func (a *Augmenter) Draw(rng *rand.Rand, width, height int) (Params, error) {
	j := a.cfg.ColorJitter
	p := Params{
		Brightness: factor(rng, j.Brightness),
		Contrast:   factor(rng, j.Contrast),
		Saturation: factor(rng, j.Saturation),
	}
	if j.Hue > 0 {
		p.Hue = (rng.Float64()*2 - 1) * j.Hue
	}
	if a.cfg.Grayscale > 0 {
		p.Gray = rng.Float64() < a.cfg.Grayscale
	}
	if c := a.cfg.RandomCrop; !c.IsZero() {
		if c.Width > width || c.Height > height {
			return Params{}, errors.Errorf("random crop %dx%d larger than frame %dx%d", c.Width, c.Height, width, height)
		}
		x := rng.Intn(width - c.Width + 1)
		y := rng.Intn(height - c.Height + 1)
		p.Crop = image.Rect(x, y, x+c.Width, y+c.Height)
	}
	return p, nil
}

// Apply transforms img with p. Frames are expected to be anchored at the origin.
func (a *Augmenter) Apply(p Params, img *image.NRGBA) *image.NRGBA {
	out := img
	if p.Brightness != 1 {
		out = imaging.AdjustBrightness(out, (p.Brightness-1)*100)
	}
	if p.Contrast != 1 {
		out = imaging.AdjustContrast(out, (p.Contrast-1)*100)
	}
	if p.Saturation != 1 {
		out = imaging.AdjustSaturation(out, (p.Saturation-1)*100)
	}
	if p.Hue != 0 {
		out = imaging.AdjustFunc(out, func(c color.NRGBA) color.NRGBA {
			return rotateHue(c, p.Hue)
		})
	}
	if p.Gray {
		out = imaging.Grayscale(out)
	}
	if !p.Crop.Empty() {
		w, h := out.Bounds().Dx(), out.Bounds().Dy()
		out = toNRGBA(resize.Resize(uint(w), uint(h), imaging.Crop(out, p.Crop), resize.Bilinear))
	}
	return out
}

// Augment draws one set of parameters and applies it to every frame. All
// frames must have the same size.
func (a *Augmenter) Augment(rng *rand.Rand, frames []*image.NRGBA) ([]*image.NRGBA, error) {
	if len(frames) == 0 {
		return nil, nil
	}
	size := frames[0].Bounds().Size()
	for i, f := range frames[1:] {
		if f.Bounds().Size() != size {
			return nil, errors.Errorf("frame %d is %v, expected %v", i+1, f.Bounds().Size(), size)
		}
	}
	p, err := a.Draw(rng, size.X, size.Y)
	if err != nil {
		return nil, err
	}
	out := make([]*image.NRGBA, len(frames))
	for i, f := range frames {
		out[i] = a.Apply(p, f)
	}
	return out, nil
}
