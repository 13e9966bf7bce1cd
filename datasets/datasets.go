package datasets

import (
	"github.com/gomlx/gomlx/pkg/ml/train"
	"github.com/pkg/errors"
)

// This file provides the two dataset implementations that turn recorded robot
// trajectories into image samples suitable for model training.
//
// Both datasets build their index once at construction and then read
// trajectories on demand - only the trajectory needed for an example is loaded,
// unless the dataset was built from an in-memory list.
//
// Layout and intended usage:
//
// TripletDataset
//   - Picks three temporally ordered frames per trajectory: one near the start,
//     the frame at which the gripper closes on the object and one near the end.
//   - Context: the three frames resized to (Width, Height), augmented with a
//     single shared random draw, channel first: (3, 3, H, W), values in [0,1].
//   - Frame: the augmented grip frame downscaled by TargetDownscale: (3, H/d, W/d).
//
// GoalDataset
//   - Picks a start frame and a later goal frame per trajectory, either at a
//     random separation or at the step where the last action component peaks.
//   - Start, Goal: (3, H, W) each, sharing one augmentation draw.
//   - Target: the un-augmented goal frame downscaled by TargetDownscale, in [0,1].
//
// Examples are independent of each other and may be requested in any order.
// Frame choice and augmentation are random, so asking twice for the same
// index gives different samples. A dataset owns its *rand.Rand and is not
// safe for concurrent use; give each worker its own copy with Clone.
//
// Both datasets can be converted to contiguous float32 batches (Batch) and to
// gomlx tensors, and they implement gomlx's train.Dataset.
type Dataset interface {
	Len() int
	Shuffle(seed int64)

	// To implement gomlx's train.Dataset interface
	train.Dataset
}

var (
	_ Dataset = (*TripletDataset)(nil)
	_ Dataset = (*GoalDataset)(nil)
)

var (
	// ErrIndexOutOfRange is returned when an example index is outside [0, Len()).
	ErrIndexOutOfRange = errors.New("example index out of range")

	// ErrTrajectoryTooShort is returned when a trajectory has too few steps
	// for the configured frame selection.
	ErrTrajectoryTooShort = errors.New("trajectory too short")
)

func checkIndex(idx, n int) error {
	if idx < 0 || idx >= n {
		return errors.Wrapf(ErrIndexOutOfRange, "index %d, len %d", idx, n)
	}
	return nil
}
