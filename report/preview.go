package report

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/Noofbiz/gripgoal/datasets"
	"github.com/Noofbiz/gripgoal/imageops"
	"github.com/disintegration/imaging"
)

// Image is one picture of a sample with the file stem it is saved under.
type Image struct {
	Name   string
	Planar imageops.Planar
	// Scale is the factor the planar values were multiplied by.
	Scale float32
}

const unit = float32(1.0 / 255)

// TripletImages lists the context frames and target of s.
func TripletImages(s *datasets.TripletSample) []Image {
	return []Image{
		{fmt.Sprintf("context0_step%d", s.Steps[0]), s.Context[0], unit},
		{fmt.Sprintf("context1_step%d", s.Steps[1]), s.Context[1], unit},
		{fmt.Sprintf("context2_step%d", s.Steps[2]), s.Context[2], unit},
		{"target", s.Frame, unit},
	}
}

// GoalImages lists the start, goal and target frames of s. normalized is
// GoalConfig.Normalize of the dataset s came from.
func GoalImages(s *datasets.GoalSample, normalized bool) []Image {
	scale := float32(1)
	if normalized {
		scale = unit
	}
	return []Image{
		{fmt.Sprintf("start_step%d", s.StartStep), s.Start, scale},
		{fmt.Sprintf("goal_step%d", s.GoalStep), s.Goal, scale},
		{"target", s.Target, unit},
	}
}

// SavePreview writes each image as "<prefix>_<name>.png" under dir and
// returns the paths written.
func SavePreview(dir, prefix string, images []Image) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	paths := make([]string, 0, len(images))
	for _, img := range images {
		path := filepath.Join(dir, fmt.Sprintf("%s_%s.png", prefix, img.Name))
		if err := imaging.Save(img.Planar.Image(img.Scale), path); err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}
