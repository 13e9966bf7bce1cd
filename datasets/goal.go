package datasets

import (
	"math/rand"

	"github.com/Noofbiz/gripgoal/trajectory"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
)

// GoalSelector picks the start and goal steps of a GoalDataset example.
type GoalSelector interface {
	Select(rng *rand.Rand, traj *trajectory.Trajectory) (start, goal int, err error)
}

// IntervalGoal picks start uniformly in [0, len-Sep) and goal uniformly in
// [start+Sep, len).
type IntervalGoal struct {
	Sep int
}

// Select implements GoalSelector.
func (g IntervalGoal) Select(rng *rand.Rand, traj *trajectory.Trajectory) (int, int, error) {
	n := traj.Len()
	if g.Sep < 0 {
		return 0, 0, errors.Errorf("negative start-goal separation %d", g.Sep)
	}
	if n-g.Sep <= 0 {
		return 0, 0, errors.Wrapf(ErrTrajectoryTooShort, "%q has %d steps, separation is %d", traj.Name, n, g.Sep)
	}
	start := rng.Intn(n - g.Sep)
	goal := start + g.Sep + rng.Intn(n-start-g.Sep)
	return start, goal, nil
}

// TriggerGoal starts at step 0 and takes as goal the first step, from step 1
// on, at which the last action component reaches its maximum.
type TriggerGoal struct{}

// Select implements GoalSelector. It draws nothing from rng.
func (TriggerGoal) Select(_ *rand.Rand, traj *trajectory.Trajectory) (int, int, error) {
	n := traj.Len()
	if n < 2 {
		return 0, 0, errors.Wrapf(ErrTrajectoryTooShort, "%q has %d steps, action trigger needs 2", traj.Name, n)
	}
	trigger := make([]float64, n-1)
	for t := 1; t < n; t++ {
		action := traj.Steps[t].Action
		if len(action) == 0 {
			return 0, 0, errors.Errorf("%q step %d has no action", traj.Name, t)
		}
		trigger[t-1] = action[len(action)-1]
	}
	return 0, floats.MaxIdx(trigger) + 1, nil
}

// newGoalSelector returns the selector for strategy.
func newGoalSelector(strategy GoalStrategy, sep int) (GoalSelector, error) {
	switch strategy {
	case GoalRandomInterval:
		if sep < 0 {
			return nil, errors.Errorf("negative start-goal separation %d", sep)
		}
		return IntervalGoal{Sep: sep}, nil
	case GoalActionTrigger:
		return TriggerGoal{}, nil
	}
	return nil, errors.Errorf("unknown goal strategy %q", string(strategy))
}
