package datasets

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/Noofbiz/gripgoal/imageops"
	"github.com/Noofbiz/gripgoal/trajectory"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func goalConfig(root string) GoalConfig {
	cfg := DefaultGoalConfig(root)
	cfg.Width, cfg.Height = frameW, frameH
	cfg.Split = []float64{1}
	cfg.Seed = 3
	return cfg
}

func assertRange(t *testing.T, p imageops.Planar, lo, hi float32) {
	t.Helper()
	for _, v := range p.Pix {
		if v < lo || v > hi {
			t.Fatalf("value %v outside [%v, %v]", v, lo, hi)
		}
	}
}

func TestGoalFromDirectory(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.gob", "a.gob.sz", "c.gob.gz"} {
		writeTraj(t, dir, synthTraj{name: name, steps: 12, detectAt: -1, closeAt: -1})
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0o644))

	ds, err := NewGoalDataset(goalConfig(dir))
	require.NoError(t, err)
	require.Equal(t, 3, ds.Len())

	for i := range ds.Len() {
		s, err := ds.Example(i)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, s.StartStep, 0)
		assert.GreaterOrEqual(t, s.GoalStep, s.StartStep+DefaultSGSep)
		assert.Less(t, s.GoalStep, 12)

		assert.Equal(t, []int{3, frameH, frameW}, s.Start.Shape())
		assert.Equal(t, []int{3, frameH, frameW}, s.Goal.Shape())
		assert.Equal(t, []int{3, frameH / 4, frameW / 4}, s.Target.Shape())
		assertRange(t, s.Start, 0, 1)
		assertRange(t, s.Target, 0, 1)
	}

	_, err = NewGoalDataset(goalConfig(t.TempDir()))
	assert.Error(t, err, "no trajectory files")
}

func TestGoalFromShards(t *testing.T) {
	prefix := filepath.Join(t.TempDir(), "replay")
	var trajs []*trajectory.Trajectory
	for i := range 5 {
		trajs = append(trajs, makeTraj(synthTraj{name: robotName(i), steps: 8, detectAt: -1, closeAt: -1}))
	}
	n, err := trajectory.NewFileStore().WriteShards(prefix, trajs, 2)
	require.NoError(t, err)
	require.Equal(t, 3, n)

	cfg := goalConfig(prefix)
	cfg.ReplayShards = n
	ds, err := NewGoalDataset(cfg)
	require.NoError(t, err)
	assert.Equal(t, 5, ds.Len())

	cfg.ReplayShards = n + 1
	_, err = NewGoalDataset(cfg)
	assert.Error(t, err, "missing shard")
}

func TestGoalTargetMatchesGoalFrame(t *testing.T) {
	traj := makeTraj(synthTraj{name: "t", steps: 10, detectAt: -1, closeAt: -1})
	cfg := goalConfig("")
	cfg.Augment.ColorJitter = imageops.ColorJitter{Brightness: 0.5, Contrast: 0.5}
	ds, err := NewGoalDatasetFromTrajectories([]*trajectory.Trajectory{traj}, cfg)
	require.NoError(t, err)

	s, err := ds.Example(0)
	require.NoError(t, err)
	goal, err := imageops.Resize(traj.Steps[s.GoalStep].Obs.Image.Image(), frameW/4, frameH/4, false)
	require.NoError(t, err)
	assert.Equal(t, imageops.ToPlanar(goal, unitScale), s.Target, "the target is never augmented")
}

func TestGoalNormalize(t *testing.T) {
	traj := makeTraj(synthTraj{name: "t", steps: 10, detectAt: -1, closeAt: -1})
	cfg := goalConfig("")
	cfg.Normalize = false
	ds, err := NewGoalDatasetFromTrajectories([]*trajectory.Trajectory{traj}, cfg)
	require.NoError(t, err)

	s, err := ds.Example(0)
	require.NoError(t, err)
	assertRange(t, s.Start, 0, 255)
	assert.Greater(t, s.Start.At(0, 0, frameW-1), float32(1), "raw pixel values are kept")
	assertRange(t, s.Target, 0, 1)
}

func TestGoalCrop(t *testing.T) {
	traj := makeTraj(synthTraj{name: "t", steps: 10, detectAt: -1, closeAt: -1})
	cfg := goalConfig("")
	cfg.Crop = imageops.Trim{Left: 4, Right: 4, Top: 2, Bottom: 2}
	cfg.Width, cfg.Height = 8, 8
	cfg.TargetDownscale = 2
	ds, err := NewGoalDatasetFromTrajectories([]*trajectory.Trajectory{traj}, cfg)
	require.NoError(t, err)

	s, err := ds.Example(0)
	require.NoError(t, err)
	assert.Equal(t, []int{3, 8, 8}, s.Start.Shape())
	assert.Equal(t, []int{3, 4, 4}, s.Target.Shape())

	// Red encodes x, so after dropping four columns on each side it stays
	// within the kept columns [4, 12).
	lo, hi := float32(4*8)/255, float32(11*8)/255
	for x := range 8 {
		v := s.Start.At(0, 4, x)
		assert.True(t, v >= lo-1e-3 && v <= hi+1e-3, "red %v at x=%d", v, x)
	}

	cfg.Crop = imageops.Trim{Left: 10, Right: 10}
	ds, err = NewGoalDatasetFromTrajectories([]*trajectory.Trajectory{traj}, cfg)
	require.NoError(t, err)
	_, err = ds.Example(0)
	assert.Error(t, err, "crop larger than the frame")
}

func TestGoalActionTrigger(t *testing.T) {
	trigger := []float64{0, 0.1, 0.3, 0.9, 0.2, 0.1}
	traj := makeTraj(synthTraj{name: "t", steps: len(trigger), detectAt: -1, closeAt: -1, trigger: trigger})
	cfg := goalConfig("")
	cfg.Goal = GoalActionTrigger
	ds, err := NewGoalDatasetFromTrajectories([]*trajectory.Trajectory{traj}, cfg)
	require.NoError(t, err)

	s, err := ds.Example(0)
	require.NoError(t, err)
	assert.Equal(t, 0, s.StartStep)
	assert.Equal(t, 3, s.GoalStep)

	cfg.Goal = "nearest"
	_, err = NewGoalDatasetFromTrajectories([]*trajectory.Trajectory{traj}, cfg)
	assert.Error(t, err)
}

func TestGoalRejectsNegativeBatchSize(t *testing.T) {
	traj := makeTraj(synthTraj{name: "t", steps: 10, detectAt: -1, closeAt: -1})
	cfg := goalConfig("")
	cfg.BatchSize = -1
	_, err := NewGoalDatasetFromTrajectories([]*trajectory.Trajectory{traj}, cfg)
	assert.Error(t, err)

	cfg.BatchSize = 0
	ds, err := NewGoalDatasetFromTrajectories([]*trajectory.Trajectory{traj}, cfg)
	require.NoError(t, err)
	_, _, _, err = ds.Yield()
	assert.NoError(t, err, "zero uses the default batch size")
}

func TestGoalTooShort(t *testing.T) {
	traj := makeTraj(synthTraj{name: "short", steps: DefaultSGSep, detectAt: -1, closeAt: -1})
	ds, err := NewGoalDatasetFromTrajectories([]*trajectory.Trajectory{traj}, goalConfig(""))
	require.NoError(t, err)
	_, err = ds.Example(0)
	assert.True(t, errors.Is(err, ErrTrajectoryTooShort))

	_, err = ds.Example(1)
	assert.True(t, errors.Is(err, ErrIndexOutOfRange))
}

func TestGoalAugmentationShared(t *testing.T) {
	traj := makeTraj(synthTraj{name: "t", steps: 10, detectAt: -1, closeAt: -1})
	stub := &countingAugmenter{}
	ds, err := NewGoalDatasetFromTrajectories([]*trajectory.Trajectory{traj}, goalConfig(""))
	require.NoError(t, err)
	ds.WithAugmenter(stub)

	_, err = ds.Example(0)
	require.NoError(t, err)
	assert.Equal(t, 1, stub.calls)
	assert.Equal(t, []int{2}, stub.frames)
}

func TestGoalBatchAndYield(t *testing.T) {
	var trajs []*trajectory.Trajectory
	for i := range 3 {
		trajs = append(trajs, makeTraj(synthTraj{name: robotName(i), steps: 9, detectAt: -1, closeAt: -1}))
	}
	cfg := goalConfig("")
	cfg.BatchSize = 2
	ds, err := NewGoalDatasetFromTrajectories(trajs, cfg)
	require.NoError(t, err)

	batch, err := ds.Batch([]int{2, 0})
	require.NoError(t, err)
	assert.Equal(t, []int{2, 3, frameH, frameW}, batch.ContextDims())
	assert.Equal(t, []int{2, 3, frameH / 4, frameW / 4}, batch.TargetDims())
	assert.Len(t, batch.Start, 2*3*frameH*frameW)
	assert.Len(t, batch.Goal, 2*3*frameH*frameW)

	var sizes []int
	for {
		_, inputs, labels, err := ds.Yield()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		require.Len(t, inputs, 2)
		require.Len(t, labels, 1)
		sizes = append(sizes, labels[0].Shape().Dimensions[0])
	}
	assert.Equal(t, []int{2, 1}, sizes)
	assert.Equal(t, "GoalDataset[train]", ds.Name())

	other := ds.Clone(9)
	other.Reset()
	_, _, _, err = other.Yield()
	assert.NoError(t, err)
	_, _, _, err = ds.Yield()
	assert.Equal(t, io.EOF, err, "clones keep their own epoch")
}
