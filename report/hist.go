package report

import (
	"image/color"
	"os"
	"path/filepath"

	"github.com/Noofbiz/gripgoal/datasets"
	"github.com/pkg/errors"
	"github.com/schollz/progressbar/v3"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// GripSteps returns the grip step of one sample of every trajectory in ds.
func GripSteps(ds *datasets.TripletDataset, bar *progressbar.ProgressBar) (plotter.Values, error) {
	values := make(plotter.Values, 0, ds.Len())
	for i := range ds.Len() {
		s, err := ds.Example(i)
		if err != nil {
			return nil, err
		}
		values = append(values, float64(s.GripStep()))
		if bar != nil {
			_ = bar.Add(1)
		}
	}
	return values, nil
}

// GoalSeparations draws samples examples per trajectory and returns the
// number of steps between start and goal of each.
func GoalSeparations(ds *datasets.GoalDataset, samples int, bar *progressbar.ProgressBar) (plotter.Values, error) {
	values := make(plotter.Values, 0, ds.Len()*samples)
	for i := range ds.Len() {
		for range samples {
			s, err := ds.Example(i)
			if err != nil {
				return nil, err
			}
			values = append(values, float64(s.GoalStep-s.StartStep))
		}
		if bar != nil {
			_ = bar.Add(1)
		}
	}
	return values, nil
}

// WriteHistogram saves a histogram of values, the image format taken from
// the extension of outPath.
func WriteHistogram(values plotter.Values, bins int, title, xlabel, outPath string) error {
	if len(values) == 0 {
		return errors.New("no values to plot")
	}
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = xlabel
	p.Y.Label.Text = "count"

	h, err := plotter.NewHist(values, bins)
	if err != nil {
		return err
	}
	h.FillColor = color.RGBA{R: 20, G: 80, B: 200, A: 200}
	p.Add(h, plotter.NewGrid())

	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return err
	}
	if err := p.Save(6*vg.Inch, 4*vg.Inch, outPath); err != nil {
		return errors.Wrapf(err, "saving %s", outPath)
	}
	return nil
}
