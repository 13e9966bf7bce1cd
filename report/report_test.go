package report

import (
	"bytes"
	"fmt"
	"image"
	_ "image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/Noofbiz/gripgoal/datasets"
	"github.com/Noofbiz/gripgoal/trajectory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeTrajectories saves n trajectories of the given length under dir. Step
// s is a flat frame with red s*10, and the gripper closes half way through.
func writeTrajectories(t *testing.T, dir string, n, steps int) {
	t.Helper()
	store := trajectory.NewFileStore()
	for i := range n {
		traj := &trajectory.Trajectory{Name: fmt.Sprintf("traj%d_robot.gob", i)}
		for s := range steps {
			img := image.NewNRGBA(image.Rect(0, 0, 16, 12))
			for p := 0; p < len(img.Pix); p += 4 {
				img.Pix[p], img.Pix[p+3] = uint8(s*10), 255
			}
			qpos := []float64{0.04, -0.04}
			if s >= steps/2 {
				qpos = []float64{0, 0}
			}
			traj.Append(img, []bool{false}, qpos, []float64{0, 0, float64(s % 3)})
		}
		require.NoError(t, store.Save(filepath.Join(dir, traj.Name), traj))
	}
}

func smallGoalConfig(root string) datasets.GoalConfig {
	cfg := datasets.DefaultGoalConfig(root)
	cfg.Width, cfg.Height = 16, 12
	cfg.Split = []float64{1}
	cfg.Seed = 1
	return cfg
}

func TestCollectStats(t *testing.T) {
	dir := t.TempDir()
	writeTrajectories(t, dir, 4, 8)
	cfg := smallGoalConfig(dir)
	cfg.Split = datasets.DefaultSplit
	ds, err := datasets.NewGoalDataset(cfg)
	require.NoError(t, err)

	s, err := Collect(ds, nil)
	require.NoError(t, err)
	// The default 0.9 / 0.1 split keeps 3 of 4 for training.
	assert.Equal(t, Stats{Name: "GoalDataset[train]", Trajectories: 3, Steps: 24, MinSteps: 8, MaxSteps: 8}, s)

	s.Bytes = DiskUsage(dir)
	assert.Greater(t, s.Bytes, uint64(0))
	var out bytes.Buffer
	_, err = s.WriteTo(&out)
	require.NoError(t, err)
	assert.Contains(t, out.String(), "trajectories: 3")
	assert.Contains(t, out.String(), "steps:        24 (min 8, max 8)")
	assert.Contains(t, out.String(), "on disk:")
}

func TestPackThenHistogram(t *testing.T) {
	src, work := t.TempDir(), t.TempDir()
	writeTrajectories(t, src, 5, 10)
	prefix := filepath.Join(work, "replay")

	shards, n, err := Pack(trajectory.NewFileStore(), src, prefix, 2, nil)
	require.NoError(t, err)
	assert.Equal(t, 3, shards)
	assert.Equal(t, 5, n)

	cfg := smallGoalConfig(prefix)
	cfg.ReplayShards = shards
	ds, err := datasets.NewGoalDataset(cfg)
	require.NoError(t, err)
	require.Equal(t, 5, ds.Len())

	values, err := GoalSeparations(ds, 4, nil)
	require.NoError(t, err)
	require.Len(t, values, 20)
	for _, v := range values {
		assert.GreaterOrEqual(t, v, float64(datasets.DefaultSGSep))
	}

	outPath := filepath.Join(work, "plots", "sep.png")
	require.NoError(t, WriteHistogram(values, 5, "separation", "steps", outPath))
	info, err := os.Stat(outPath)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))

	assert.Error(t, WriteHistogram(nil, 5, "empty", "steps", outPath))

	_, _, err = Pack(trajectory.NewFileStore(), t.TempDir(), prefix, 2, nil)
	assert.Error(t, err, "nothing to pack")
}

func TestGripStepsAndPreview(t *testing.T) {
	dir := t.TempDir()
	writeTrajectories(t, dir, 2, 10)
	store := trajectory.NewFileStore()
	paths, err := store.List(dir)
	require.NoError(t, err)
	var trajs []*trajectory.Trajectory
	for _, p := range paths {
		traj, err := store.Load(p)
		require.NoError(t, err)
		trajs = append(trajs, traj)
	}
	list := filepath.Join(t.TempDir(), "all.gob")
	require.NoError(t, store.SaveList(list, trajs))

	cfg := datasets.DefaultTripletConfig(list)
	cfg.Source = datasets.SourceInMemory
	cfg.Width, cfg.Height = 16, 12
	cfg.Split = []float64{1}
	ds, err := datasets.NewTripletDataset(cfg)
	require.NoError(t, err)

	values, err := GripSteps(ds, nil)
	require.NoError(t, err)
	assert.Equal(t, []float64{5, 5}, []float64(values))

	s, err := ds.Example(0)
	require.NoError(t, err)
	written, err := SavePreview(t.TempDir(), "triplet0", TripletImages(s))
	require.NoError(t, err)
	require.Len(t, written, 4)
	assert.Contains(t, written[1], "triplet0_context1_step5.png")

	f, err := os.Open(written[1])
	require.NoError(t, err)
	defer f.Close()
	img, _, err := image.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, image.Pt(16, 12), img.Bounds().Size())
	r, _, _, _ := img.At(0, 0).RGBA()
	assert.Equal(t, uint8(50), uint8(r>>8), "step 5 is red 50")
}

func TestGoalImagesScale(t *testing.T) {
	traj := &trajectory.Trajectory{Name: "t"}
	for s := range 8 {
		img := image.NewNRGBA(image.Rect(0, 0, 16, 12))
		for p := 0; p < len(img.Pix); p += 4 {
			img.Pix[p], img.Pix[p+3] = uint8(s*20), 255
		}
		traj.Append(img, []bool{false}, []float64{0.04}, []float64{0})
	}
	cfg := smallGoalConfig("")
	cfg.Normalize = false
	ds, err := datasets.NewGoalDatasetFromTrajectories([]*trajectory.Trajectory{traj}, cfg)
	require.NoError(t, err)
	s, err := ds.Example(0)
	require.NoError(t, err)

	images := GoalImages(s, false)
	require.Len(t, images, 3)
	goal := images[1].Planar.Image(images[1].Scale)
	assert.Equal(t, uint8(s.GoalStep*20), goal.Pix[0])
	target := images[2].Planar.Image(images[2].Scale)
	assert.Equal(t, uint8(s.GoalStep*20), target.Pix[0])
}
