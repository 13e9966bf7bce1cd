package datasets

import (
	"image"
	"math/rand"
	"time"

	"github.com/Noofbiz/gripgoal/imageops"
	"github.com/Noofbiz/gripgoal/trajectory"
	"github.com/pkg/errors"
)

const unitScale = float32(1.0 / 255)

// clampStep limits t to [0, n).
func clampStep(t, n int) int {
	return min(max(t, 0), n-1)
}

// newRand returns a generator seeded with seed, or from the clock when seed is 0.
func newRand(seed int64) *rand.Rand {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return rand.New(rand.NewSource(seed))
}

// stepImage returns the camera frame of step t.
func stepImage(traj *trajectory.Trajectory, t int) (*image.NRGBA, error) {
	step, err := traj.At(t)
	if err != nil {
		return nil, err
	}
	if !step.Obs.Image.Valid() {
		return nil, errors.Errorf("%q step %d has an invalid %dx%d frame with %d bytes",
			traj.Name, t, step.Obs.Image.Width, step.Obs.Image.Height, len(step.Obs.Image.Pix))
	}
	return step.Obs.Image.Image(), nil
}

// contextFrame crops step t of traj by trim and resizes it to width x height.
func contextFrame(traj *trajectory.Trajectory, t int, trim imageops.Trim, width, height int) (*image.NRGBA, error) {
	img, err := stepImage(traj, t)
	if err != nil {
		return nil, err
	}
	cropped, err := imageops.Crop(img, trim)
	if err != nil {
		return nil, errors.Wrapf(err, "cropping %q step %d", traj.Name, t)
	}
	return imageops.Resize(cropped, width, height, false)
}

// planars converts frames to channel-first arrays with the given scale.
func planars(frames []*image.NRGBA, scale float32) []imageops.Planar {
	out := make([]imageops.Planar, len(frames))
	for i, f := range frames {
		out[i] = imageops.ToPlanar(f, scale)
	}
	return out
}
