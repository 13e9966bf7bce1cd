package datasets

import (
	"github.com/Noofbiz/gripgoal/imageops"
	"github.com/Noofbiz/gripgoal/trajectory"
	"github.com/pkg/errors"
)

// Defaults shared by both datasets.
const (
	DefaultWidth           = 320
	DefaultHeight          = 240
	DefaultTargetDownscale = 4
	DefaultBatchSize       = 32

	// DefaultGripThreshold is the smallest recorded grip time (exclusive) for
	// a human demonstration to be kept.
	DefaultGripThreshold = 5
	// DefaultGripTolerance is how close to zero every gripper joint must be
	// for the gripper to count as closed.
	DefaultGripTolerance = 1e-8
	// DefaultRobotNameFormat names the robot trajectories that accompany the
	// human demonstrations listed in the grip table.
	DefaultRobotNameFormat = "traj%d_robot" + trajectory.ExtGob

	DefaultSGSep = 5
)

// DefaultSplit is the train / held-out split used when none is given.
var DefaultSplit = []float64{0.9, 0.1}

// SourceMode selects where a TripletDataset gets its trajectories from.
type SourceMode string

const (
	// SourceInMemory reads one file holding the whole list of trajectories.
	SourceInMemory SourceMode = "in_memory"
	// SourceGripTable reads per-trajectory files named by a grip timing table.
	SourceGripTable SourceMode = "grip_table"
)

// GoalStrategy selects how a GoalDataset picks start and goal steps.
type GoalStrategy string

const (
	// GoalRandomInterval picks a random start and a goal at least SGSep steps later.
	GoalRandomInterval GoalStrategy = "random_interval"
	// GoalActionTrigger starts at step 0 and uses the step where the last
	// action component is largest as the goal.
	GoalActionTrigger GoalStrategy = "action_trigger"
)

// FrameConfig holds the image settings common to both datasets.
type FrameConfig struct {
	// Width and Height of the context frames. Zero uses 320x240.
	Width  int `yaml:"width"`
	Height int `yaml:"height"`

	// TargetDownscale divides Width and Height for the target frame. Zero uses 4.
	TargetDownscale float64 `yaml:"target_downscale"`

	Augment imageops.AugmentConfig `yaml:"augment"`
}

func (c *FrameConfig) withDefaults() {
	if c.Width == 0 {
		c.Width = DefaultWidth
	}
	if c.Height == 0 {
		c.Height = DefaultHeight
	}
	if c.TargetDownscale == 0 {
		c.TargetDownscale = DefaultTargetDownscale
	}
}

func (c FrameConfig) validate() error {
	if c.Width <= 0 || c.Height <= 0 {
		return errors.Errorf("invalid frame size %dx%d", c.Width, c.Height)
	}
	if c.TargetDownscale <= 0 {
		return errors.Errorf("invalid target downscale %v", c.TargetDownscale)
	}
	if w, h := imageops.DownscaledSize(c.Width, c.Height, c.TargetDownscale); w < 1 || h < 1 {
		return errors.Errorf("downscale %v of %dx%d leaves an empty target", c.TargetDownscale, c.Width, c.Height)
	}
	return c.Augment.Validate()
}

func validateBatchSize(n int) error {
	if n <= 0 {
		return errors.Errorf("invalid batch size %d", n)
	}
	return nil
}

// SplitConfig selects one part of the train / held-out partition.
type SplitConfig struct {
	// Split holds the fraction of trajectories in each part. Nil uses [0.9, 0.1].
	Split []float64 `yaml:"split"`
	// Mode names the part to use. Empty uses ModeTrain.
	Mode Mode `yaml:"mode"`
}

func (c *SplitConfig) withDefaults() {
	if len(c.Split) == 0 {
		c.Split = append([]float64(nil), DefaultSplit...)
	}
	if c.Mode == "" {
		c.Mode = ModeTrain
	}
}

// TripletConfig configures a TripletDataset.
type TripletConfig struct {
	// Root is the directory holding the trajectories and the grip table, or
	// the trajectory list file when Source is SourceInMemory.
	Root   string     `yaml:"root"`
	Source SourceMode `yaml:"source"`

	FrameConfig `yaml:",inline"`
	SplitConfig `yaml:",inline"`

	// GripTableFile is the grip table name under Root.
	GripTableFile string `yaml:"grip_table_file"`
	// GripThreshold filters grip table entries: only entries with a larger
	// recorded time are used. Zero uses DefaultGripThreshold; a negative
	// value keeps every entry.
	GripThreshold float64 `yaml:"grip_threshold"`
	// GripTolerance is used by grip detection on gripper joint positions.
	GripTolerance float64 `yaml:"grip_tolerance"`
	// RobotNameFormat is a fmt format with one %d verb.
	RobotNameFormat string `yaml:"robot_name_format"`

	// Seed for frame selection and augmentation; zero seeds from the clock.
	Seed int64 `yaml:"seed"`
	// BatchSize is the number of examples per Yield. Zero uses 32.
	BatchSize int `yaml:"batch_size"`

	// Store reads trajectory files. Nil uses trajectory.FileStore.
	Store trajectory.Store `yaml:"-"`
}

// DefaultTripletConfig returns the grip-table configuration for root with
// every default applied.
func DefaultTripletConfig(root string) TripletConfig {
	cfg := TripletConfig{Root: root, Source: SourceGripTable}
	cfg.withDefaults()
	return cfg
}

func (c *TripletConfig) withDefaults() {
	c.FrameConfig.withDefaults()
	c.SplitConfig.withDefaults()
	if c.Source == "" {
		c.Source = SourceGripTable
	}
	if c.GripTableFile == "" {
		c.GripTableFile = trajectory.DefaultGripTimingsFile
	}
	if c.GripThreshold == 0 {
		c.GripThreshold = DefaultGripThreshold
	}
	if c.GripTolerance == 0 {
		c.GripTolerance = DefaultGripTolerance
	}
	if c.RobotNameFormat == "" {
		c.RobotNameFormat = DefaultRobotNameFormat
	}
	if c.BatchSize == 0 {
		c.BatchSize = DefaultBatchSize
	}
	if c.Store == nil {
		c.Store = trajectory.NewFileStore()
	}
}

// GoalConfig configures a GoalDataset. Start from DefaultGoalConfig: a zero
// SGSep and Normalize are taken literally.
type GoalConfig struct {
	// Root is the trajectory directory, or the shard prefix when ReplayShards > 0.
	Root string `yaml:"root"`
	// ReplayShards is the number of "<Root>_<i>.gob" shards to concatenate.
	// Zero discovers trajectory files under Root instead.
	ReplayShards int `yaml:"replay_shards"`

	FrameConfig `yaml:",inline"`
	SplitConfig `yaml:",inline"`

	// SGSep is the minimum number of steps between start and goal.
	SGSep int `yaml:"sg_sep"`
	// Normalize scales context frames to [0,1]. The target is always scaled.
	Normalize bool `yaml:"normalize"`
	// Crop is applied to raw frames before resizing.
	Crop imageops.Trim `yaml:"crop"`
	Goal GoalStrategy  `yaml:"goal"`

	Seed int64 `yaml:"seed"`
	// BatchSize is the number of examples per Yield. Zero uses 32.
	BatchSize int `yaml:"batch_size"`

	Store trajectory.Store `yaml:"-"`
}

// DefaultGoalConfig returns the default goal image configuration for root.
func DefaultGoalConfig(root string) GoalConfig {
	cfg := GoalConfig{Root: root, SGSep: DefaultSGSep, Normalize: true, Goal: GoalRandomInterval}
	cfg.withDefaults()
	return cfg
}

func (c *GoalConfig) withDefaults() {
	c.FrameConfig.withDefaults()
	c.SplitConfig.withDefaults()
	if c.Goal == "" {
		c.Goal = GoalRandomInterval
	}
	if c.BatchSize == 0 {
		c.BatchSize = DefaultBatchSize
	}
	if c.Store == nil {
		c.Store = trajectory.NewFileStore()
	}
}
