package report

import (
	"github.com/Noofbiz/gripgoal/trajectory"
	"github.com/pkg/errors"
	"github.com/schollz/progressbar/v3"
	"k8s.io/klog/v2"
)

// Pack loads every trajectory file under src and writes them as replay
// shards of at most perShard trajectories named "<prefix>_<i>.gob", the
// layout GoalConfig.ReplayShards reads. It returns the number of shards and
// trajectories written.
func Pack(store trajectory.FileStore, src, prefix string, perShard int, bar *progressbar.ProgressBar) (shards, count int, err error) {
	paths, err := store.List(src)
	if err != nil {
		return 0, 0, err
	}
	trajs := make([]*trajectory.Trajectory, 0, len(paths))
	for _, path := range paths {
		traj, err := store.Load(path)
		if err != nil {
			return 0, 0, err
		}
		trajs = append(trajs, traj)
		if bar != nil {
			_ = bar.Add(1)
		}
	}
	shards, err = store.WriteShards(prefix, trajs, perShard)
	if err != nil {
		return shards, 0, errors.Wrapf(err, "packing %s", src)
	}
	klog.V(1).Infof("packed %d trajectories from %s into %d shards", len(trajs), src, shards)
	return shards, len(trajs), nil
}
