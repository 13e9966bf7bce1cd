package datasets

import (
	"fmt"
	"image"
	"math/rand"
	"path/filepath"

	"github.com/Noofbiz/gripgoal/imageops"
	"github.com/Noofbiz/gripgoal/trajectory"
	"github.com/gomlx/gomlx/pkg/core/tensors"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// FrameAugmenter transforms the frames of one example with a single random
// draw. *imageops.Augmenter implements it.
type FrameAugmenter interface {
	Augment(rng *rand.Rand, frames []*image.NRGBA) ([]*image.NRGBA, error)
}

// TripletSample is one TripletDataset example.
type TripletSample struct {
	// Context holds the first, grip and last frames, (3, H, W) each.
	Context [3]imageops.Planar
	// Frame is the grip frame downscaled, (3, H/d, W/d).
	Frame imageops.Planar
	// Steps are the trajectory steps the context frames were taken from.
	Steps [3]int
}

// GripStep returns the step of the middle frame.
func (s TripletSample) GripStep() int { return s.Steps[1] }

// TripletDataset yields (context, frame) samples built around the step at
// which the gripper closes.
type TripletDataset struct {
	cfg     TripletConfig
	src     trajectorySource
	grip    GripLocator
	augment FrameAugmenter
	rng     *rand.Rand
	epoch   *epoch
}

// NewTripletDataset builds the dataset index described by cfg.
//
// With SourceInMemory, cfg.Root is a trajectory list file that is read once.
// With SourceGripTable, cfg.Root is a directory holding the grip table and
// the trajectory files: the index holds every table entry recorded after
// cfg.GripThreshold followed by the robot trajectories named by
// cfg.RobotNameFormat, one per table entry.
func NewTripletDataset(cfg TripletConfig) (*TripletDataset, error) {
	cfg.withDefaults()
	if err := cfg.FrameConfig.validate(); err != nil {
		return nil, err
	}

	heuristic := HeuristicGrip{Tolerance: cfg.GripTolerance}
	var (
		src  trajectorySource
		grip GripLocator
	)
	switch cfg.Source {
	case SourceInMemory:
		ls, err := listStore(cfg.Store)
		if err != nil {
			return nil, err
		}
		trajs, err := ls.LoadList(cfg.Root)
		if err != nil {
			return nil, errors.Wrap(err, "loading trajectory list")
		}
		src, grip = &memorySource{trajs: trajs}, heuristic

	case SourceGripTable:
		table, err := trajectory.LoadGripTimings(filepath.Join(cfg.Root, cfg.GripTableFile))
		if err != nil {
			return nil, err
		}
		names := tripletCandidates(table, cfg.GripThreshold, cfg.RobotNameFormat)
		src = &fileSource{store: cfg.Store, root: cfg.Root, names: names}
		grip = TableGrip{Table: table, Fallback: heuristic}

	default:
		return nil, errors.Errorf("unknown source mode %q", string(cfg.Source))
	}
	return newTripletDataset(cfg, src, grip)
}

// NewTripletDatasetFromTrajectories builds a TripletDataset over trajectories
// already in memory. cfg.Root, cfg.Source and cfg.Store are ignored.
func NewTripletDatasetFromTrajectories(trajs []*trajectory.Trajectory, cfg TripletConfig) (*TripletDataset, error) {
	cfg.Source = SourceInMemory
	cfg.withDefaults()
	if err := cfg.FrameConfig.validate(); err != nil {
		return nil, err
	}
	return newTripletDataset(cfg, &memorySource{trajs: trajs}, HeuristicGrip{Tolerance: cfg.GripTolerance})
}

func newTripletDataset(cfg TripletConfig, src trajectorySource, grip GripLocator) (*TripletDataset, error) {
	if err := validateBatchSize(cfg.BatchSize); err != nil {
		return nil, err
	}
	total := src.Len()
	src, err := splitSource(src, cfg.SplitConfig)
	if err != nil {
		return nil, err
	}
	aug, err := imageops.NewAugmenter(cfg.Augment)
	if err != nil {
		return nil, err
	}
	klog.V(1).Infof("TripletDataset: %d of %d trajectories for %s (source %s)", src.Len(), total, cfg.Mode, cfg.Source)
	return &TripletDataset{
		cfg:     cfg,
		src:     src,
		grip:    grip,
		augment: aug,
		rng:     newRand(cfg.Seed),
		epoch:   newEpoch(src.Len(), cfg.BatchSize),
	}, nil
}

// tripletCandidates lists the table entries recorded after threshold, in table
// order, followed by one robot trajectory per table entry. A negative
// threshold keeps every entry.
func tripletCandidates(table *trajectory.GripTimings, threshold float64, robotFormat string) []string {
	var names []string
	for _, name := range table.Names() {
		if v, _ := table.Lookup(name); threshold < 0 || v > threshold {
			names = append(names, name)
		}
	}
	for i := range table.Len() {
		name := fmt.Sprintf(robotFormat, i)
		if _, ok := table.Lookup(name); ok {
			continue
		}
		names = append(names, name)
	}
	return names
}

// WithRand replaces the generator used for frame selection and augmentation.
//
// Returns itself, to allow chain of method calls.
func (ds *TripletDataset) WithRand(rng *rand.Rand) *TripletDataset {
	ds.rng = rng
	return ds
}

// WithAugmenter replaces the augmentation configured by TripletConfig.Augment.
//
// Returns itself, to allow chain of method calls.
func (ds *TripletDataset) WithAugmenter(a FrameAugmenter) *TripletDataset {
	ds.augment = a
	return ds
}

// Clone returns a copy sharing the read-only index but with its own
// generator seeded by seed, for use by another worker.
func (ds *TripletDataset) Clone(seed int64) *TripletDataset {
	c := *ds
	c.rng = newRand(seed)
	c.epoch = ds.epoch.clone()
	return &c
}

// Config returns the configuration with defaults applied.
func (ds *TripletDataset) Config() TripletConfig { return ds.cfg }

// Len returns the number of trajectories in the selected split.
func (ds *TripletDataset) Len() int {
	return ds.src.Len()
}

// TrajectoryName returns the index name of trajectory idx.
func (ds *TripletDataset) TrajectoryName(idx int) (string, error) {
	if err := checkIndex(idx, ds.Len()); err != nil {
		return "", err
	}
	return ds.src.Name(idx), nil
}

// Trajectory loads trajectory idx.
func (ds *TripletDataset) Trajectory(idx int) (*trajectory.Trajectory, error) {
	if err := checkIndex(idx, ds.Len()); err != nil {
		return nil, err
	}
	return ds.src.Load(idx)
}

// Example builds the sample for trajectory idx.
func (ds *TripletDataset) Example(idx int) (*TripletSample, error) {
	traj, err := ds.Trajectory(idx)
	if err != nil {
		return nil, err
	}
	n := traj.Len()
	if n == 0 {
		return nil, errors.Wrapf(ErrTrajectoryTooShort, "%q has no steps", ds.src.Name(idx))
	}

	gripT := clampStep(ds.grip.Locate(ds.src.Name(idx), traj), n)
	edge := min(3, n)
	first := ds.rng.Intn(edge)
	last := n - 1 - ds.rng.Intn(edge)
	steps := [3]int{first, gripT, last}

	frames := make([]*image.NRGBA, len(steps))
	for i, t := range steps {
		if frames[i], err = contextFrame(traj, t, imageops.Trim{}, ds.cfg.Width, ds.cfg.Height); err != nil {
			return nil, err
		}
	}
	frames, err = ds.augment.Augment(ds.rng, frames)
	if err != nil {
		return nil, errors.Wrapf(err, "augmenting %q", ds.src.Name(idx))
	}

	tw, th := imageops.DownscaledSize(ds.cfg.Width, ds.cfg.Height, ds.cfg.TargetDownscale)
	target, err := imageops.Resize(frames[1], tw, th, false)
	if err != nil {
		return nil, err
	}

	sample := &TripletSample{Frame: imageops.ToPlanar(target, unitScale), Steps: steps}
	copy(sample.Context[:], planars(frames, unitScale))
	return sample, nil
}

// Batch builds the samples for indices and packs them into flat buffers.
func (ds *TripletDataset) Batch(indices []int) (*TripletBatchFlat, error) {
	samples := make([]*TripletSample, len(indices))
	for i, idx := range indices {
		s, err := ds.Example(idx)
		if err != nil {
			return nil, err
		}
		samples[i] = s
	}
	return MakeTripletBatchFlat(samples)
}

// Shuffle shuffles the order in which Yield visits the examples.
func (ds *TripletDataset) Shuffle(seed int64) {
	ds.epoch.shuffle(seed)
}

// Name implements train.Dataset.
func (ds *TripletDataset) Name() string {
	return fmt.Sprintf("TripletDataset[%s]", ds.cfg.Mode)
}

// Reset implements train.Dataset. It restarts the epoch.
func (ds *TripletDataset) Reset() {
	ds.epoch.reset()
}

// Yield implements train.Dataset: inputs holds the context batch
// (B, 3, 3, H, W) and labels the target frame batch (B, 3, H/d, W/d).
// It returns io.EOF at the end of an epoch.
func (ds *TripletDataset) Yield() (spec any, inputs []*tensors.Tensor, labels []*tensors.Tensor, err error) {
	indices, err := ds.epoch.next()
	if err != nil {
		return nil, nil, nil, err
	}
	batch, err := ds.Batch(indices)
	if err != nil {
		return nil, nil, nil, err
	}
	ctx, frame := batch.ToGomlxTensors()
	return ds, []*tensors.Tensor{ctx}, []*tensors.Tensor{frame}, nil
}
