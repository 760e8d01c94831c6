// Package report renders loss histories as line charts.
package report

import (
	"fmt"
	"os"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"github.com/YuminosukeSato/scigo-abide/pkg/errors"
	"github.com/YuminosukeSato/scigo-abide/pkg/log"
	"github.com/YuminosukeSato/scigo-abide/train"
)

// Default figure size.
const (
	DefaultWidth  = 8 * vg.Inch
	DefaultHeight = 5 * vg.Inch
)

var legendNames = map[train.Phase]string{
	train.PhaseTrain:      "Train",
	train.PhaseValidation: "Validation",
	train.PhaseTest:       "Test",
}

// LossPlot builds a figure with one line per non-empty phase, each plotted
// against its own batch index.
func LossPlot(h *train.History, title string) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Batch"
	p.Y.Label.Text = "Loss"
	p.Legend.Top = true
	p.Add(plotter.NewGrid())

	lines := 0
	for i, phase := range train.Phases {
		values := h.Values(phase)
		if len(values) == 0 {
			continue
		}
		pts := make(plotter.XYs, len(values))
		for j, v := range values {
			pts[j].X = float64(j)
			pts[j].Y = v
		}
		line, err := plotter.NewLine(pts)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to build %s line", phase)
		}
		line.Color = plotutil.Color(i)
		line.Width = vg.Points(1)
		p.Add(line)
		p.Legend.Add(legendNames[phase], line)
		lines++
	}
	if lines == 0 {
		return nil, errors.Wrap(errors.ErrEmptyData, "no losses recorded")
	}
	return p, nil
}

// PlotLosses writes the loss curves of h to path. The image format follows
// the file extension (.png, .svg, .pdf, ...).
func PlotLosses(h *train.History, path string, width, height vg.Length) error {
	p, err := LossPlot(h, "Autoencoder loss")
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.Wrapf(err, "failed to create plot directory %s", dir)
		}
	}
	if err := p.Save(width, height, path); err != nil {
		return errors.Wrapf(err, "failed to save plot %s", path)
	}
	log.GetLoggerWithName("report").Info("Loss plot written",
		log.PathKey, path,
		log.SamplesKey, h.Len(train.PhaseTrain),
	)
	return nil
}

// PlotPerFold writes one figure per experiment fold into dir, named
// "<experiment>_<fold>_losses<ext>". It returns the written paths.
func PlotPerFold(h *train.History, dir, ext string, width, height vg.Length) ([]string, error) {
	var paths []string
	for _, run := range runs(h) {
		sub := h.Select(run.experiment, run.fold)
		p, err := LossPlot(sub, fmt.Sprintf("%s fold %s", run.experiment, run.fold))
		if err != nil {
			return paths, err
		}
		path := filepath.Join(dir, fmt.Sprintf("%s_%s_losses%s", run.experiment, run.fold, ext))
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return paths, errors.Wrapf(err, "failed to create plot directory %s", dir)
		}
		if err := p.Save(width, height, path); err != nil {
			return paths, errors.Wrapf(err, "failed to save plot %s", path)
		}
		paths = append(paths, path)
	}
	return paths, nil
}

type runKey struct {
	experiment string
	fold       string
}

// runs lists the experiment folds of h in first-seen order.
func runs(h *train.History) []runKey {
	seen := make(map[runKey]bool)
	var out []runKey
	for _, phase := range train.Phases {
		for _, e := range h.Entries(phase) {
			k := runKey{e.Experiment, e.Fold}
			if !seen[k] {
				seen[k] = true
				out = append(out, k)
			}
		}
	}
	return out
}
