// Package report summarises the trajectory datasets for a human: trajectory
// and step counts, histograms of the sampled grip steps and start to goal
// separations, PNG previews of single samples, and packing of trajectory
// directories into replay shards.
//
// Every function taking a *progressbar.ProgressBar accepts nil.
package report

import (
	"fmt"
	"io"
	"io/fs"
	"path/filepath"

	"github.com/Noofbiz/gripgoal/trajectory"
	humanize "github.com/dustin/go-humanize"
	"github.com/schollz/progressbar/v3"
)

// Indexed is the part of both datasets the reports walk over.
type Indexed interface {
	Name() string
	Len() int
	Trajectory(idx int) (*trajectory.Trajectory, error)
}

// Stats summarises the trajectories of a dataset.
type Stats struct {
	Name         string
	Trajectories int
	Steps        int
	MinSteps     int
	MaxSteps     int
	// Bytes is the size on disk, zero when unknown.
	Bytes uint64
}

func (s *Stats) add(traj *trajectory.Trajectory) {
	n := traj.Len()
	if s.Trajectories == 0 || n < s.MinSteps {
		s.MinSteps = n
	}
	s.MaxSteps = max(s.MaxSteps, n)
	s.Steps += n
	s.Trajectories++
}

// WriteTo implements io.WriterTo.
func (s Stats) WriteTo(w io.Writer) (int64, error) {
	text := fmt.Sprintf("%s\n  trajectories: %s\n  steps:        %s (min %d, max %d)\n",
		s.Name, humanize.Comma(int64(s.Trajectories)), humanize.Comma(int64(s.Steps)), s.MinSteps, s.MaxSteps)
	if s.Bytes > 0 {
		text += fmt.Sprintf("  on disk:      %s\n", humanize.Bytes(s.Bytes))
	}
	n, err := io.WriteString(w, text)
	return int64(n), err
}

// Collect loads every trajectory of ds.
func Collect(ds Indexed, bar *progressbar.ProgressBar) (Stats, error) {
	s := Stats{Name: ds.Name()}
	for i := range ds.Len() {
		traj, err := ds.Trajectory(i)
		if err != nil {
			return s, err
		}
		s.add(traj)
		if bar != nil {
			_ = bar.Add(1)
		}
	}
	return s, nil
}

// DiskUsage returns the size of the trajectory files under root, which may
// also be a single file. Unreadable entries are skipped.
func DiskUsage(root string) uint64 {
	var total uint64
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() || !trajectory.HasTrajectoryExt(path) {
			return nil
		}
		if info, err := d.Info(); err == nil {
			total += uint64(info.Size())
		}
		return nil
	})
	return total
}
