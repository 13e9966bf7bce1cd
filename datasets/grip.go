package datasets

import (
	"math"

	"github.com/Noofbiz/gripgoal/trajectory"
	"gonum.org/v1/gonum/floats"
	"k8s.io/klog/v2"
)

// GripLocator finds the step at which the gripper closes on the object.
type GripLocator interface {
	// Locate returns a step in [0, traj.Len()). name is the trajectory's
	// index name, which may differ from traj.Name.
	Locate(name string, traj *trajectory.Trajectory) int
}

// HeuristicGrip detects the grip step from the observations.
type HeuristicGrip struct {
	// Tolerance is how close to zero every gripper joint must be for the
	// gripper to count as closed.
	Tolerance float64
}

// Locate implements GripLocator.
func (h HeuristicGrip) Locate(name string, traj *trajectory.Trajectory) int {
	t, ok := DetectGrip(traj, h.Tolerance)
	if !ok {
		klog.V(2).Infof("no grip signal in %q, using step 0", name)
	}
	return t
}

// DetectGrip returns the first step flagged by object detection or, when no
// step is, the first step whose gripper joints are all within tol of zero.
// When neither ever happens it returns (0, false): callers rely on step 0 in
// that case, so it is not treated as an error.
func DetectGrip(traj *trajectory.Trajectory, tol float64) (int, bool) {
	n := traj.Len()
	if n == 0 {
		return 0, false
	}

	detected := make([]float64, n)
	closed := make([]float64, n)
	for t, step := range traj.Steps {
		for _, d := range step.Obs.ObjectDetected {
			if d {
				detected[t] = 1
				break
			}
		}
		if allNear(step.Obs.GripperQpos, 0, tol) {
			closed[t] = 1
		}
	}

	if floats.Max(detected) > 0 {
		return floats.MaxIdx(detected), true
	}
	// MaxIdx returns the first maximum, so 0 when nothing is closed.
	idx := floats.MaxIdx(closed)
	return idx, closed[idx] > 0
}

func allNear(v []float64, target, tol float64) bool {
	if len(v) == 0 {
		return false
	}
	for _, x := range v {
		if math.Abs(x-target) > tol {
			return false
		}
	}
	return true
}

// TableGrip uses recorded grip times where available and falls back to
// detection otherwise.
type TableGrip struct {
	Table    *trajectory.GripTimings
	Fallback GripLocator
}

// Locate implements GripLocator. Recorded times are truncated to a step and
// clamped into the trajectory.
func (g TableGrip) Locate(name string, traj *trajectory.Trajectory) int {
	if v, ok := g.Table.Lookup(name); ok {
		return clampStep(int(v), traj.Len())
	}
	return g.Fallback.Locate(name, traj)
}
