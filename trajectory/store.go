package trajectory

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// Store loads trajectories and lists the ones available under a root.
type Store interface {
	// Load reads the trajectory stored at path.
	Load(path string) (*Trajectory, error)
	// List returns the paths of every trajectory under root, in a stable order.
	List(root string) ([]string, error)
}

// ListStore is a Store that also reads files holding whole lists of
// trajectories, alone or split into numbered shards.
type ListStore interface {
	Store
	LoadList(path string) ([]*Trajectory, error)
	LoadShards(prefix string, n int) ([]*Trajectory, error)
}

// FileStore is a Store over gob files on the local filesystem.
type FileStore struct{}

var _ ListStore = FileStore{}

// NewFileStore returns a Store reading gob encoded trajectory files.
func NewFileStore() FileStore {
	return FileStore{}
}

// Load implements Store. The trajectory name defaults to the file's base name
// when the stored record has none.
func (FileStore) Load(path string) (*Trajectory, error) {
	var traj Trajectory
	if err := decodeFile(path, &traj); err != nil {
		return nil, err
	}
	if traj.Name == "" {
		traj.Name = filepath.Base(path)
	}
	return &traj, nil
}

// List implements Store. It returns every trajectory file directly under
// root, sorted by name.
func (FileStore) List(root string) ([]string, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, errors.Wrapf(err, "listing trajectories in %s", root)
	}
	var paths []string
	for _, e := range entries {
		if e.IsDir() || !HasTrajectoryExt(e.Name()) {
			continue
		}
		paths = append(paths, filepath.Join(root, e.Name()))
	}
	sort.Strings(paths)
	if len(paths) == 0 {
		return nil, errors.Errorf("no trajectory files found in %s", root)
	}
	return paths, nil
}

// Save writes traj to path. The suffix selects the compression.
func (FileStore) Save(path string, traj *Trajectory) error {
	return encodeFile(path, traj)
}

// LoadList reads a file holding a whole list of trajectories.
func (FileStore) LoadList(path string) ([]*Trajectory, error) {
	var trajs []*Trajectory
	if err := decodeFile(path, &trajs); err != nil {
		return nil, err
	}
	return trajs, nil
}

// SaveList writes trajs to a single file.
func (FileStore) SaveList(path string, trajs []*Trajectory) error {
	return encodeFile(path, trajs)
}

// ShardPath returns the path of shard i for the given prefix: "<prefix>_<i>.gob".
func ShardPath(prefix string, i int) string {
	return fmt.Sprintf("%s_%d%s", prefix, i, ExtGob)
}

// LoadShards reads shards 0..n-1 written with the given prefix and
// concatenates them in shard order.
func (s FileStore) LoadShards(prefix string, n int) ([]*Trajectory, error) {
	if n <= 0 {
		return nil, errors.Errorf("invalid shard count %d", n)
	}
	var all []*Trajectory
	for i := range n {
		trajs, err := s.LoadList(ShardPath(prefix, i))
		if err != nil {
			return nil, errors.Wrapf(err, "loading shard %d", i)
		}
		all = append(all, trajs...)
	}
	klog.V(1).Infof("loaded %d trajectories from %d shards of %s", len(all), n, prefix)
	return all, nil
}

// WriteShards splits trajs into shards of at most perShard trajectories and
// writes them with the given prefix. It returns the number of shards written.
func (s FileStore) WriteShards(prefix string, trajs []*Trajectory, perShard int) (int, error) {
	if perShard <= 0 {
		return 0, errors.Errorf("invalid shard size %d", perShard)
	}
	n := 0
	for start := 0; start < len(trajs); start += perShard {
		end := min(start+perShard, len(trajs))
		if err := s.SaveList(ShardPath(prefix, n), trajs[start:end]); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}
