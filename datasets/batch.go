package datasets

import (
	"github.com/Noofbiz/gripgoal/imageops"
	"github.com/gomlx/gomlx/pkg/core/tensors"
	"github.com/pkg/errors"
)

// TripletBatchFlat stores a batch of triplet samples in contiguous buffers.
type TripletBatchFlat struct {
	// Context is (Batch, 3, 3, Height, Width).
	Context []float32
	// Frames is (Batch, 3, TargetHeight, TargetWidth).
	Frames []float32

	Batch        int
	Height       int
	Width        int
	TargetHeight int
	TargetWidth  int
}

// ContextDims returns the dimensions of Context.
func (b *TripletBatchFlat) ContextDims() []int {
	return []int{b.Batch, 3, 3, b.Height, b.Width}
}

// FrameDims returns the dimensions of Frames.
func (b *TripletBatchFlat) FrameDims() []int {
	return []int{b.Batch, 3, b.TargetHeight, b.TargetWidth}
}

// MakeTripletBatchFlat packs samples into a TripletBatchFlat. All samples must
// share the same shapes.
func MakeTripletBatchFlat(samples []*TripletSample) (*TripletBatchFlat, error) {
	if len(samples) == 0 {
		return &TripletBatchFlat{}, nil
	}
	var ctx, frames []imageops.Planar
	for _, s := range samples {
		ctx = append(ctx, s.Context[:]...)
		frames = append(frames, s.Frame)
	}
	ctxFlat, ctxDims, err := imageops.Stack(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "inconsistent context shapes")
	}
	frameFlat, frameDims, err := imageops.Stack(frames)
	if err != nil {
		return nil, errors.Wrap(err, "inconsistent frame shapes")
	}
	return &TripletBatchFlat{
		Context:      ctxFlat,
		Frames:       frameFlat,
		Batch:        len(samples),
		Height:       ctxDims[2],
		Width:        ctxDims[3],
		TargetHeight: frameDims[2],
		TargetWidth:  frameDims[3],
	}, nil
}

// ToGomlxTensors converts the batch to (context, frame) gomlx tensors.
func (b *TripletBatchFlat) ToGomlxTensors() (*tensors.Tensor, *tensors.Tensor) {
	return tensors.FromFlatDataAndDimensions(b.Context, b.ContextDims()...),
		tensors.FromFlatDataAndDimensions(b.Frames, b.FrameDims()...)
}

// GoalBatchFlat stores a batch of goal samples in contiguous buffers.
type GoalBatchFlat struct {
	// Start and Goal are (Batch, 3, Height, Width).
	Start []float32
	Goal  []float32
	// Targets is (Batch, 3, TargetHeight, TargetWidth).
	Targets []float32

	Batch        int
	Height       int
	Width        int
	TargetHeight int
	TargetWidth  int
}

// ContextDims returns the dimensions of Start and Goal.
func (b *GoalBatchFlat) ContextDims() []int {
	return []int{b.Batch, 3, b.Height, b.Width}
}

// TargetDims returns the dimensions of Targets.
func (b *GoalBatchFlat) TargetDims() []int {
	return []int{b.Batch, 3, b.TargetHeight, b.TargetWidth}
}

// MakeGoalBatchFlat packs samples into a GoalBatchFlat.
func MakeGoalBatchFlat(samples []*GoalSample) (*GoalBatchFlat, error) {
	if len(samples) == 0 {
		return &GoalBatchFlat{}, nil
	}
	start := make([]imageops.Planar, len(samples))
	goal := make([]imageops.Planar, len(samples))
	target := make([]imageops.Planar, len(samples))
	for i, s := range samples {
		start[i], goal[i], target[i] = s.Start, s.Goal, s.Target
	}
	startFlat, dims, err := imageops.Stack(append(start, goal...))
	if err != nil {
		return nil, errors.Wrap(err, "inconsistent context shapes")
	}
	targetFlat, targetDims, err := imageops.Stack(target)
	if err != nil {
		return nil, errors.Wrap(err, "inconsistent target shapes")
	}
	half := len(startFlat) / 2
	return &GoalBatchFlat{
		Start:        startFlat[:half:half],
		Goal:         startFlat[half:],
		Targets:      targetFlat,
		Batch:        len(samples),
		Height:       dims[2],
		Width:        dims[3],
		TargetHeight: targetDims[2],
		TargetWidth:  targetDims[3],
	}, nil
}

// ToGomlxTensors converts the batch to (start, goal, target) gomlx tensors.
func (b *GoalBatchFlat) ToGomlxTensors() (*tensors.Tensor, *tensors.Tensor, *tensors.Tensor) {
	dims := b.ContextDims()
	return tensors.FromFlatDataAndDimensions(b.Start, dims...),
		tensors.FromFlatDataAndDimensions(b.Goal, dims...),
		tensors.FromFlatDataAndDimensions(b.Targets, b.TargetDims()...)
}
