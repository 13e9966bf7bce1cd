package main

// Example command that demonstrates building the grip-frame (triplet) and
// goal image datasets and converting small batches into gomlx tensors.
//
// Trajectories are loaded lazily: the datasets keep file names and only read
// a trajectory when one of its examples is requested.
//
// Usage:
//   go run ./example -config run.yaml -report out/
//   go run ./example -grip_root /data/grip -goal_root /data/replay
//
// The grip root holds human_grip_timings.json next to the trajectory files.
// Without roots the example writes a few synthetic trajectories to a
// temporary directory and uses that for both datasets. With -report it also
// saves histograms and a preview of the first sample of each dataset.

import (
	"flag"
	"fmt"
	"image"
	"image/color"
	"os"
	"path/filepath"

	"github.com/Noofbiz/gripgoal/datasets"
	"github.com/Noofbiz/gripgoal/report"
	"github.com/Noofbiz/gripgoal/trajectory"
	"github.com/schollz/progressbar/v3"
	"k8s.io/klog/v2"
)

var (
	flagConfig   = flag.String("config", "", "YAML file with the triplet and goal configuration")
	flagReport   = flag.String("report", "", "if set, directory for histograms and sample previews")
	flagGripRoot = flag.String("grip_root", "", "directory with the grip timing table and trajectories")
	flagGoalRoot = flag.String("goal_root", "", "directory with trajectory files for the goal dataset")
	flagBatch    = flag.Int("batch", 4, "batch size")
)

// writeSynthetic writes n short human and robot trajectory pairs and the
// grip table under dir.
func writeSynthetic(dir string, n int) error {
	store := trajectory.NewFileStore()
	names := make([]string, n)
	grips := make([]float64, n)
	for i := range n {
		names[i] = fmt.Sprintf("human_%d.gob", i)
		grips[i] = float64(6 + i)
		traj := &trajectory.Trajectory{Name: names[i]}
		for t := range 20 {
			img := image.NewNRGBA(image.Rect(0, 0, 64, 48))
			for y := range 48 {
				for x := range 64 {
					img.SetNRGBA(x, y, color.NRGBA{R: uint8(4 * x), G: uint8(5 * y), B: uint8(12 * t), A: 255})
				}
			}
			traj.Append(img, []bool{t >= 10}, []float64{0.04, -0.04}, []float64{0, 0, float64(t % 7)})
		}
		if err := store.Save(filepath.Join(dir, names[i]), traj); err != nil {
			return err
		}
		// Each human demonstration is paired with a robot trajectory.
		if err := store.Save(filepath.Join(dir, fmt.Sprintf(datasets.DefaultRobotNameFormat, i)), traj); err != nil {
			return err
		}
	}
	table, err := trajectory.NewGripTimings(names, grips)
	if err != nil {
		return err
	}
	return trajectory.WriteGripTimings(filepath.Join(dir, trajectory.DefaultGripTimingsFile), table)
}

func main() {
	klog.InitFlags(nil)
	flag.Parse()
	defer klog.Flush()

	cfg := datasets.DefaultConfig()
	if *flagConfig != "" {
		var err error
		if cfg, err = datasets.LoadConfig(*flagConfig); err != nil {
			klog.Fatalf("failed to load config: %v", err)
		}
	}
	gripRoot, goalRoot := cfg.Triplet.Root, cfg.Goal.Root
	if *flagGripRoot != "" {
		gripRoot = *flagGripRoot
	}
	if *flagGoalRoot != "" {
		goalRoot = *flagGoalRoot
	}
	if gripRoot == "" || goalRoot == "" {
		dir, err := os.MkdirTemp("", "gripgoal-example")
		if err != nil {
			klog.Fatalf("failed to create temp dir: %v", err)
		}
		defer os.RemoveAll(dir)
		if err := writeSynthetic(dir, 8); err != nil {
			klog.Fatalf("failed to write synthetic trajectories: %v", err)
		}
		fmt.Printf("Using synthetic trajectories in %s\n", dir)
		if gripRoot == "" {
			gripRoot = dir
		}
		if goalRoot == "" {
			goalRoot = dir
		}
	}

	// Grip-frame dataset: context = (first, grip, last) frames, label = grip frame downscaled.
	tcfg := cfg.Triplet
	tcfg.Root, tcfg.BatchSize = gripRoot, *flagBatch
	if *flagConfig == "" {
		tcfg.Width, tcfg.Height = 64, 48
	}
	tripletDS, err := datasets.NewTripletDataset(tcfg)
	if err != nil {
		klog.Fatalf("failed to create triplet dataset: %v", err)
	}
	fmt.Printf("%s: %d trajectories\n", tripletDS.Name(), tripletDS.Len())

	_, inputs, labels, err := tripletDS.Yield()
	if err != nil {
		klog.Fatalf("failed to yield triplet batch: %v", err)
	}
	fmt.Printf("  context tensor: %s\n", inputs[0].Shape())
	fmt.Printf("  frame tensor:   %s\n", labels[0].Shape())

	s, err := tripletDS.Example(0)
	if err != nil {
		klog.Fatalf("failed to build triplet example: %v", err)
	}
	fmt.Printf("  first example used steps %v (grip at %d)\n", s.Steps, s.GripStep())

	fmt.Println()

	// Goal dataset: inputs = (start, goal) frames at least SGSep steps apart,
	// label = the goal frame downscaled.
	gcfg := cfg.Goal
	gcfg.Root, gcfg.BatchSize = goalRoot, *flagBatch
	if *flagConfig == "" {
		gcfg.Width, gcfg.Height = 64, 48
	}
	goalDS, err := datasets.NewGoalDataset(gcfg)
	if err != nil {
		klog.Fatalf("failed to create goal dataset: %v", err)
	}
	fmt.Printf("%s: %d trajectories\n", goalDS.Name(), goalDS.Len())

	n := min(*flagBatch, goalDS.Len())
	indices := make([]int, n)
	for i := range n {
		indices[i] = i
	}
	batch, err := goalDS.Batch(indices)
	if err != nil {
		klog.Fatalf("failed to build goal batch: %v", err)
	}
	start, goal, target := batch.ToGomlxTensors()
	fmt.Printf("  start tensor:  %s\n", start.Shape())
	fmt.Printf("  goal tensor:   %s\n", goal.Shape())
	fmt.Printf("  target tensor: %s\n", target.Shape())

	if *flagReport != "" {
		if err := writeReport(*flagReport, tripletDS, goalDS); err != nil {
			klog.Fatalf("failed to write report: %v", err)
		}
	}

	fmt.Println("\nExample completed successfully!")
}

// writeReport prints the statistics of both datasets and saves their
// histograms and the preview of their first sample under dir.
func writeReport(dir string, tripletDS *datasets.TripletDataset, goalDS *datasets.GoalDataset) error {
	for _, ds := range []report.Indexed{tripletDS, goalDS} {
		s, err := report.Collect(ds, progressbar.Default(int64(ds.Len()), "loading "+ds.Name()))
		if err != nil {
			return err
		}
		if _, err := s.WriteTo(os.Stdout); err != nil {
			return err
		}
	}

	grips, err := report.GripSteps(tripletDS, progressbar.Default(int64(tripletDS.Len()), "grip steps"))
	if err != nil {
		return err
	}
	if err := report.WriteHistogram(grips, 20, tripletDS.Name()+" grip step", "step", filepath.Join(dir, "grip_steps.png")); err != nil {
		return err
	}
	seps, err := report.GoalSeparations(goalDS, 10, progressbar.Default(int64(goalDS.Len()), "goal separations"))
	if err != nil {
		return err
	}
	if err := report.WriteHistogram(seps, 20, goalDS.Name()+" start to goal", "steps", filepath.Join(dir, "goal_separations.png")); err != nil {
		return err
	}

	ts, err := tripletDS.Example(0)
	if err != nil {
		return err
	}
	gs, err := goalDS.Example(0)
	if err != nil {
		return err
	}
	images := append(report.TripletImages(ts), report.GoalImages(gs, goalDS.Config().Normalize)...)
	paths, err := report.SavePreview(dir, "sample0", images)
	if err != nil {
		return err
	}
	fmt.Printf("Report written to %s (%d previews)\n", dir, len(paths))
	return nil
}
