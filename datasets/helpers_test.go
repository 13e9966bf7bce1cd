package datasets

import (
	"image"
	"image/color"
	"math/rand"
	"path/filepath"
	"testing"

	"github.com/Noofbiz/gripgoal/trajectory"
	"github.com/stretchr/testify/require"
)

const (
	frameW = 16
	frameH = 12
)

// synthTraj describes a synthetic trajectory.
type synthTraj struct {
	name  string
	steps int
	// detectAt is the first step with an object detected, -1 for never.
	detectAt int
	// closeAt is the first step with the gripper closed, -1 for never.
	closeAt int
	// trigger holds the last action component per step; nil means zeros.
	trigger []float64
}

// stepFrame encodes x in red, y in green and the step in blue.
func stepFrame(t int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, frameW, frameH))
	for y := 0; y < frameH; y++ {
		for x := 0; x < frameW; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: uint8(x * 8), G: uint8(y * 8), B: uint8(t * 10), A: 255})
		}
	}
	return img
}

func makeTraj(s synthTraj) *trajectory.Trajectory {
	traj := &trajectory.Trajectory{Name: s.name}
	for t := range s.steps {
		detected := []bool{s.detectAt >= 0 && t >= s.detectAt}
		qpos := []float64{0.04, -0.04}
		if s.closeAt >= 0 && t >= s.closeAt {
			qpos = []float64{0, 0}
		}
		action := []float64{0.1, 0.2, 0}
		if s.trigger != nil {
			action[2] = s.trigger[t]
		}
		traj.Append(stepFrame(t), detected, qpos, action)
	}
	return traj
}

// writeTraj saves a synthetic trajectory under dir and returns its path.
func writeTraj(t *testing.T, dir string, s synthTraj) string {
	t.Helper()
	path := filepath.Join(dir, s.name)
	require.NoError(t, trajectory.NewFileStore().Save(path, makeTraj(s)))
	return path
}

// writeGripTable writes the grip timings file under dir.
func writeGripTable(t *testing.T, dir string, names []string, values []float64) {
	t.Helper()
	g, err := trajectory.NewGripTimings(names, values)
	require.NoError(t, err)
	require.NoError(t, trajectory.WriteGripTimings(filepath.Join(dir, trajectory.DefaultGripTimingsFile), g))
}

// countingAugmenter passes frames through unchanged and records each call.
type countingAugmenter struct {
	calls  int
	frames []int
}

func (c *countingAugmenter) Augment(_ *rand.Rand, frames []*image.NRGBA) ([]*image.NRGBA, error) {
	c.calls++
	c.frames = append(c.frames, len(frames))
	return frames, nil
}

func seeded(seed int64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}
