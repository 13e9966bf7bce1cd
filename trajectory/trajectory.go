// Package trajectory holds the recorded robot trajectories consumed by the
// samplers in package datasets, and the file formats they are stored in.
//
// A trajectory is an ordered list of steps. Each step carries the camera
// frame, the object detection flags, the gripper joint positions and the
// action that was issued at that step:
//
//	traj, err := trajectory.NewFileStore().Load("demos/traj0_robot.gob.sz")
//	step, err := traj.At(0)
//	img := step.Obs.Image.Image()
package trajectory

import (
	"image"
	"image/color"

	"github.com/pkg/errors"
)

// ErrStepOutOfRange is returned by Trajectory.At for t outside [0, Len()).
var ErrStepOutOfRange = errors.New("trajectory step out of range")

// Frame is an RGB image stored row major, 3 bytes per pixel.
type Frame struct {
	Width  int
	Height int
	Pix    []uint8
}

// FrameFromImage copies img into a Frame, dropping alpha.
func FrameFromImage(img image.Image) Frame {
	b := img.Bounds()
	f := Frame{Width: b.Dx(), Height: b.Dy(), Pix: make([]uint8, 3*b.Dx()*b.Dy())}
	pos := 0
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
			f.Pix[pos], f.Pix[pos+1], f.Pix[pos+2] = c.R, c.G, c.B
			pos += 3
		}
	}
	return f
}

// Image returns the frame as an opaque NRGBA image.
func (f Frame) Image() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, f.Width, f.Height))
	for i, j := 0, 0; i+2 < len(f.Pix) && j+3 < len(img.Pix); i, j = i+3, j+4 {
		img.Pix[j], img.Pix[j+1], img.Pix[j+2], img.Pix[j+3] = f.Pix[i], f.Pix[i+1], f.Pix[i+2], 0xFF
	}
	return img
}

// Valid reports whether Pix matches the declared dimensions.
func (f Frame) Valid() bool {
	return f.Width > 0 && f.Height > 0 && len(f.Pix) == 3*f.Width*f.Height
}

// Observation is what the robot saw at one step.
type Observation struct {
	Image          Frame
	ObjectDetected []bool
	GripperQpos    []float64
}

// Step is one timestep of a trajectory.
type Step struct {
	Obs    Observation
	Action []float64
}

// Trajectory is one recorded task execution.
type Trajectory struct {
	// Name identifies the trajectory, usually the file name it was loaded from.
	Name  string
	Steps []Step
}

// Len returns the number of steps.
func (t *Trajectory) Len() int {
	return len(t.Steps)
}

// At returns step i.
func (t *Trajectory) At(i int) (*Step, error) {
	if i < 0 || i >= len(t.Steps) {
		return nil, errors.Wrapf(ErrStepOutOfRange, "step %d of %q (len %d)", i, t.Name, len(t.Steps))
	}
	return &t.Steps[i], nil
}

// Append adds a step recorded from img.
func (t *Trajectory) Append(img image.Image, detected []bool, qpos, action []float64) {
	t.Steps = append(t.Steps, Step{
		Obs: Observation{
			Image:          FrameFromImage(img),
			ObjectDetected: detected,
			GripperQpos:    qpos,
		},
		Action: action,
	})
}
