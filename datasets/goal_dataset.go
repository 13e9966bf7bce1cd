package datasets

import (
	"fmt"
	"image"
	"math/rand"

	"github.com/Noofbiz/gripgoal/imageops"
	"github.com/Noofbiz/gripgoal/trajectory"
	"github.com/gomlx/gomlx/pkg/core/tensors"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// GoalSample is one GoalDataset example.
type GoalSample struct {
	// Start and Goal are the context frames, (3, H, W) each.
	Start imageops.Planar
	Goal  imageops.Planar
	// Target is the un-augmented goal frame downscaled, (3, H/d, W/d), in [0,1].
	Target imageops.Planar

	StartStep int
	GoalStep  int
}

// GoalDataset yields ({start, goal}, target) samples for goal image prediction.
type GoalDataset struct {
	cfg     GoalConfig
	src     trajectorySource
	goal    GoalSelector
	augment FrameAugmenter
	rng     *rand.Rand
	epoch   *epoch
}

// NewGoalDataset builds the dataset index described by cfg. With
// cfg.ReplayShards > 0 the shards "<Root>_0.gob".. are loaded into memory and
// concatenated; otherwise every trajectory file under cfg.Root is indexed and
// loaded on demand.
func NewGoalDataset(cfg GoalConfig) (*GoalDataset, error) {
	cfg.withDefaults()
	if err := cfg.FrameConfig.validate(); err != nil {
		return nil, err
	}

	var src trajectorySource
	if cfg.ReplayShards > 0 {
		ls, err := listStore(cfg.Store)
		if err != nil {
			return nil, err
		}
		trajs, err := ls.LoadShards(cfg.Root, cfg.ReplayShards)
		if err != nil {
			return nil, err
		}
		src = &memorySource{trajs: trajs}
	} else {
		paths, err := cfg.Store.List(cfg.Root)
		if err != nil {
			return nil, err
		}
		src = &fileSource{store: cfg.Store, names: paths}
	}
	return newGoalDataset(cfg, src)
}

// NewGoalDatasetFromTrajectories builds a GoalDataset over trajectories
// already in memory. cfg.Root, cfg.ReplayShards and cfg.Store are ignored.
func NewGoalDatasetFromTrajectories(trajs []*trajectory.Trajectory, cfg GoalConfig) (*GoalDataset, error) {
	cfg.withDefaults()
	if err := cfg.FrameConfig.validate(); err != nil {
		return nil, err
	}
	return newGoalDataset(cfg, &memorySource{trajs: trajs})
}

func newGoalDataset(cfg GoalConfig, src trajectorySource) (*GoalDataset, error) {
	if err := validateBatchSize(cfg.BatchSize); err != nil {
		return nil, err
	}
	goal, err := newGoalSelector(cfg.Goal, cfg.SGSep)
	if err != nil {
		return nil, err
	}
	total := src.Len()
	src, err = splitSource(src, cfg.SplitConfig)
	if err != nil {
		return nil, err
	}
	aug, err := imageops.NewAugmenter(cfg.Augment)
	if err != nil {
		return nil, err
	}
	klog.V(1).Infof("GoalDataset: %d of %d trajectories for %s (goal %s)", src.Len(), total, cfg.Mode, cfg.Goal)
	return &GoalDataset{
		cfg:     cfg,
		src:     src,
		goal:    goal,
		augment: aug,
		rng:     newRand(cfg.Seed),
		epoch:   newEpoch(src.Len(), cfg.BatchSize),
	}, nil
}

// WithRand replaces the generator used for frame selection and augmentation.
//
// Returns itself, to allow chain of method calls.
func (ds *GoalDataset) WithRand(rng *rand.Rand) *GoalDataset {
	ds.rng = rng
	return ds
}

// WithAugmenter replaces the augmentation configured by GoalConfig.Augment.
//
// Returns itself, to allow chain of method calls.
func (ds *GoalDataset) WithAugmenter(a FrameAugmenter) *GoalDataset {
	ds.augment = a
	return ds
}

// Clone returns a copy sharing the read-only index but with its own
// generator seeded by seed.
func (ds *GoalDataset) Clone(seed int64) *GoalDataset {
	c := *ds
	c.rng = newRand(seed)
	c.epoch = ds.epoch.clone()
	return &c
}

// Config returns the configuration with defaults applied.
func (ds *GoalDataset) Config() GoalConfig { return ds.cfg }

// Len returns the number of trajectories in the selected split.
func (ds *GoalDataset) Len() int {
	return ds.src.Len()
}

// Trajectory loads trajectory idx.
func (ds *GoalDataset) Trajectory(idx int) (*trajectory.Trajectory, error) {
	if err := checkIndex(idx, ds.Len()); err != nil {
		return nil, err
	}
	return ds.src.Load(idx)
}

// Example builds the sample for trajectory idx.
func (ds *GoalDataset) Example(idx int) (*GoalSample, error) {
	traj, err := ds.Trajectory(idx)
	if err != nil {
		return nil, err
	}
	start, goal, err := ds.goal.Select(ds.rng, traj)
	if err != nil {
		return nil, err
	}

	ctxt := make([]*image.NRGBA, 2)
	for i, t := range []int{start, goal} {
		if ctxt[i], err = contextFrame(traj, t, ds.cfg.Crop, ds.cfg.Width, ds.cfg.Height); err != nil {
			return nil, err
		}
	}
	ctxt, err = ds.augment.Augment(ds.rng, ctxt)
	if err != nil {
		return nil, errors.Wrapf(err, "augmenting %q", ds.src.Name(idx))
	}
	scale := float32(1)
	if ds.cfg.Normalize {
		scale = unitScale
	}

	tw, th := imageops.DownscaledSize(ds.cfg.Width, ds.cfg.Height, ds.cfg.TargetDownscale)
	target, err := contextFrame(traj, goal, ds.cfg.Crop, tw, th)
	if err != nil {
		return nil, err
	}

	return &GoalSample{
		Start:     imageops.ToPlanar(ctxt[0], scale),
		Goal:      imageops.ToPlanar(ctxt[1], scale),
		Target:    imageops.ToPlanar(target, unitScale),
		StartStep: start,
		GoalStep:  goal,
	}, nil
}

// Batch builds the samples for indices and packs them into flat buffers.
func (ds *GoalDataset) Batch(indices []int) (*GoalBatchFlat, error) {
	samples := make([]*GoalSample, len(indices))
	for i, idx := range indices {
		s, err := ds.Example(idx)
		if err != nil {
			return nil, err
		}
		samples[i] = s
	}
	return MakeGoalBatchFlat(samples)
}

// Shuffle shuffles the order in which Yield visits the examples.
func (ds *GoalDataset) Shuffle(seed int64) {
	ds.epoch.shuffle(seed)
}

// Name implements train.Dataset.
func (ds *GoalDataset) Name() string {
	return fmt.Sprintf("GoalDataset[%s]", ds.cfg.Mode)
}

// Reset implements train.Dataset. It restarts the epoch.
func (ds *GoalDataset) Reset() {
	ds.epoch.reset()
}

// Yield implements train.Dataset: inputs holds the start and goal batches,
// (B, 3, H, W) each, and labels the target batch (B, 3, H/d, W/d).
// It returns io.EOF at the end of an epoch.
func (ds *GoalDataset) Yield() (spec any, inputs []*tensors.Tensor, labels []*tensors.Tensor, err error) {
	indices, err := ds.epoch.next()
	if err != nil {
		return nil, nil, nil, err
	}
	batch, err := ds.Batch(indices)
	if err != nil {
		return nil, nil, nil, err
	}
	start, goal, target := batch.ToGomlxTensors()
	return ds, []*tensors.Tensor{start, goal}, []*tensors.Tensor{target}, nil
}
