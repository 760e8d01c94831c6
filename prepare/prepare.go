// Package prepare builds the experiment data store from the phenotype table
// and the per-subject ROI time series: it computes functional connectivity
// features for every derivative and writes stratified cross-validation folds
// for every experiment.
package prepare

import (
	"context"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/YuminosukeSato/scigo-abide/core/parallel"
	"github.com/YuminosukeSato/scigo-abide/experiment"
	"github.com/YuminosukeSato/scigo-abide/phenotype"
	"github.com/YuminosukeSato/scigo-abide/pkg/errors"
	"github.com/YuminosukeSato/scigo-abide/pkg/log"
	"github.com/YuminosukeSato/scigo-abide/store"
)

// Options configures Prepare.
type Options struct {
	PhenotypePath string
	// FunctionalDir holds rois_<derivative>/<FILE_ID>_rois_<derivative>.1D
	FunctionalDir string
	StoreDir      string
	Derivatives   []experiment.Derivative
	Selection     experiment.Selection
	Folds         int
	ValidFraction float64
	Seed          uint64
	Workers       int
}

// DefaultOptions returns 10 folds, a 10% validation split and seed 19.
func DefaultOptions() Options {
	return Options{
		PhenotypePath: "./data/ABIDE/phenotypes/Phenotypic_V1_0b_preprocessed1.csv",
		FunctionalDir: "./data/ABIDE/functionals/cpac/filt_global",
		StoreDir:      "./data/ABIDE/abide",
		Derivatives:   []experiment.Derivative{experiment.CC200},
		Selection:     experiment.Selection{Whole: true},
		Folds:         10,
		ValidFraction: 0.1,
		Seed:          19,
	}
}

// Validate checks the option ranges.
func (o Options) Validate() error {
	switch {
	case len(o.Derivatives) == 0:
		return errors.NewValidationError("derivatives", "at least one supported derivative is required", o.Derivatives)
	case o.Folds < 2:
		return errors.NewValidationError("folds", "must be at least 2", o.Folds)
	case o.ValidFraction <= 0 || o.ValidFraction >= 1:
		return errors.NewValidationError("valid_fraction", "must be in (0, 1)", o.ValidFraction)
	}
	return nil
}

// TimeSeriesPath is the location of a subject's ROI time series.
func TimeSeriesPath(dir string, d experiment.Derivative, fileID string) string {
	name := fileID + "_rois_" + string(d) + ".1D"
	return filepath.Join(dir, "rois_"+string(d), name)
}

// Prepare writes features and folds for every selected experiment.
func Prepare(ctx context.Context, opts Options) error {
	if err := opts.Validate(); err != nil {
		return err
	}
	logger := log.GetLoggerWithName("prepare")
	start := time.Now()

	pheno, err := phenotype.Load(opts.PhenotypePath)
	if err != nil {
		return err
	}
	w, err := store.Create(opts.StoreDir)
	if err != nil {
		return err
	}

	for _, d := range opts.Derivatives {
		if err := ctx.Err(); err != nil {
			return errors.WithStack(err)
		}
		if err := writeFeatures(ctx, w, pheno, d, opts); err != nil {
			return errors.Wrapf(err, "derivative %s", d)
		}
		logger.Info("Features written",
			log.DerivativeKey, string(d),
			log.SamplesKey, pheno.Len(),
		)
	}

	for _, exp := range experiment.Build(opts.Derivatives, opts.Selection, pheno.Sites()) {
		if err := ctx.Err(); err != nil {
			return errors.WithStack(err)
		}
		folds, err := writeExperiment(w, pheno, exp, opts)
		if err != nil {
			return errors.Wrapf(err, "experiment %s", exp.ID())
		}
		logger.Info("Experiment written",
			log.ExperimentKey, exp.ID(),
			"folds", folds,
		)
	}

	logger.Info("Data store prepared",
		log.PathKey, opts.StoreDir,
		log.DurationSecondsKey, time.Since(start).Seconds(),
	)
	return nil
}

// writeFeatures computes the connectivity vector of every subject for one
// derivative. Subjects are processed in parallel; the first error wins.
func writeFeatures(ctx context.Context, w *store.Writer, pheno *phenotype.Table, d experiment.Derivative, opts Options) error {
	subjects := pheno.Subjects()

	var (
		mu       sync.Mutex
		firstErr error
	)
	fail := func(err error) {
		mu.Lock()
		defer mu.Unlock()
		if firstErr == nil {
			firstErr = err
		}
	}

	parallel.Parallelize(len(subjects), opts.Workers, func(start, end int) {
		for _, s := range subjects[start:end] {
			if ctx.Err() != nil {
				fail(errors.WithStack(ctx.Err()))
				return
			}
			err := errors.SafeExecute("prepare.writeFeatures", func() error {
				return writeSubject(w, s, d, opts.FunctionalDir)
			})
			if err != nil {
				fail(errors.Wrapf(err, "subject %s", s.FileID))
				return
			}
		}
	})
	return firstErr
}

func writeSubject(w *store.Writer, s phenotype.Subject, d experiment.Derivative, dir string) error {
	ts, err := LoadTimeSeries(TimeSeriesPath(dir, d, s.FileID))
	if err != nil {
		return err
	}
	features, err := Connectivity(ts)
	if err != nil {
		return err
	}
	attrs := store.PatientAttrs{Y: s.Label, Site: s.Site, Sex: s.Sex}
	return w.PutPatient(s.FileID, attrs, string(d), features)
}

// writeExperiment writes the folds of exp and returns how many it wrote.
func writeExperiment(w *store.Writer, pheno *phenotype.Table, exp experiment.Experiment, opts Options) (int, error) {
	if err := w.PutExperiment(exp.ID(), string(exp.Derivative)); err != nil {
		return 0, err
	}

	subjects := Population(pheno, exp).Subjects()
	ids := make([]string, len(subjects))
	strata := make([]string, len(subjects))
	for i, s := range subjects {
		ids[i] = s.FileID
		strata[i] = s.Strat()
	}
	pick := func(idx []int) []string {
		out := make([]string, len(idx))
		for i, j := range idx {
			out[i] = ids[j]
		}
		return out
	}

	var folds []Fold
	if exp.Population == experiment.LeaveSiteOut {
		var f Fold
		for i, s := range subjects {
			if s.Site == exp.Site {
				f.Test = append(f.Test, i)
			} else {
				f.Train = append(f.Train, i)
			}
		}
		if len(f.Test) == 0 || len(f.Train) == 0 {
			return 0, errors.Wrapf(errors.ErrEmptyData, "site %s", exp.Site)
		}
		folds = []Fold{f}
	} else {
		var err error
		folds, err = NewStratifiedKFold(opts.Folds, true, opts.Seed).Split(strata)
		if err != nil {
			return 0, err
		}
	}

	for i, f := range folds {
		train, valid := ValidationSplit(f.Train, strata, opts.ValidFraction, opts.Seed+uint64(i))
		if err := w.PutFold(exp.ID(), strconv.Itoa(i), pick(train), pick(valid), pick(f.Test)); err != nil {
			return i, err
		}
	}
	return len(folds), nil
}

// Population filters the phenotype table to the subjects of exp. Leave-site-
// out experiments use every subject; the site only decides the test set.
func Population(pheno *phenotype.Table, exp experiment.Experiment) *phenotype.Table {
	switch exp.Population {
	case experiment.Male:
		return pheno.Filter(phenotype.Male)
	case experiment.Threshold:
		return pheno.Filter(phenotype.Threshold)
	default:
		return pheno.Filter(phenotype.Whole)
	}
}
