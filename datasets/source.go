package datasets

import (
	"path/filepath"

	"github.com/Noofbiz/gripgoal/trajectory"
	"github.com/pkg/errors"
)

// trajectorySource resolves the trajectories of a dataset index.
type trajectorySource interface {
	Len() int
	// Name identifies trajectory i, as used by the grip table.
	Name(i int) string
	Load(i int) (*trajectory.Trajectory, error)
	// subset returns a source over the given positions, in that order.
	subset(idx []int) trajectorySource
}

// memorySource holds trajectories already loaded in memory.
type memorySource struct {
	trajs []*trajectory.Trajectory
}

func (s *memorySource) Len() int { return len(s.trajs) }

func (s *memorySource) Name(i int) string { return s.trajs[i].Name }

func (s *memorySource) Load(i int) (*trajectory.Trajectory, error) {
	if s.trajs[i] == nil {
		return nil, errors.Errorf("trajectory %d is nil", i)
	}
	return s.trajs[i], nil
}

func (s *memorySource) subset(idx []int) trajectorySource {
	trajs := make([]*trajectory.Trajectory, len(idx))
	for i, j := range idx {
		trajs[i] = s.trajs[j]
	}
	return &memorySource{trajs: trajs}
}

// fileSource loads trajectories from files on demand. Names are relative to
// root; an empty root means names are paths.
type fileSource struct {
	store trajectory.Store
	root  string
	names []string
}

func (s *fileSource) Len() int { return len(s.names) }

func (s *fileSource) Name(i int) string { return s.names[i] }

func (s *fileSource) Load(i int) (*trajectory.Trajectory, error) {
	path := s.names[i]
	if s.root != "" {
		path = filepath.Join(s.root, path)
	}
	traj, err := s.store.Load(path)
	if err != nil {
		return nil, errors.Wrapf(err, "loading trajectory %q", s.names[i])
	}
	return traj, nil
}

func (s *fileSource) subset(idx []int) trajectorySource {
	names := make([]string, len(idx))
	for i, j := range idx {
		names[i] = s.names[j]
	}
	return &fileSource{store: s.store, root: s.root, names: names}
}

// splitSource keeps the part of src selected by cfg.
func splitSource(src trajectorySource, cfg SplitConfig) (trajectorySource, error) {
	idx, err := partitionMode(src.Len(), cfg)
	if err != nil {
		return nil, err
	}
	return src.subset(idx), nil
}

func listStore(s trajectory.Store) (trajectory.ListStore, error) {
	ls, ok := s.(trajectory.ListStore)
	if !ok {
		return nil, errors.Errorf("store %T cannot load trajectory lists", s)
	}
	return ls, nil
}
