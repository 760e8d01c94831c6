// Package train runs the autoencoder sweep: for every experiment and fold it
// trains a fresh denoising sparse autoencoder over mini-batches, validates
// periodically, evaluates once on the test split, and writes a checkpoint.
package train

import (
	"context"
	"math/rand/v2"
	"sort"
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/scigo-abide/autoencoder"
	"github.com/YuminosukeSato/scigo-abide/config"
	"github.com/YuminosukeSato/scigo-abide/dataset"
	"github.com/YuminosukeSato/scigo-abide/experiment"
	"github.com/YuminosukeSato/scigo-abide/metrics"
	"github.com/YuminosukeSato/scigo-abide/pkg/errors"
	"github.com/YuminosukeSato/scigo-abide/pkg/log"
	"github.com/YuminosukeSato/scigo-abide/store"
)

// Trainer drives the sweep. It is not safe for concurrent use.
type Trainer struct {
	cfg       config.Config
	store     *store.Store
	device    config.Device
	logger    log.Logger
	callbacks []Callback
}

// Option configures a Trainer.
type Option func(*Trainer)

// WithLogger replaces the default "train" logger.
func WithLogger(l log.Logger) Option {
	return func(t *Trainer) {
		t.logger = l
	}
}

// WithCallbacks adds callbacks run after the built-in recorder and logger.
func WithCallbacks(cbs ...Callback) Option {
	return func(t *Trainer) {
		t.callbacks = append(t.callbacks, cbs...)
	}
}

// NewTrainer validates cfg and returns a trainer reading folds from st.
func NewTrainer(cfg config.Config, st *store.Store, device config.Device, opts ...Option) (*Trainer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	t := &Trainer{
		cfg:    cfg,
		store:  st,
		device: device,
		logger: log.GetLoggerWithName("train"),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t, nil
}

// Run trains every fold of every experiment in ID order and returns the
// collected losses. The first error aborts the sweep; the history gathered
// so far is returned alongside it.
func (t *Trainer) Run(ctx context.Context, experiments []experiment.Experiment) (*History, error) {
	history := NewHistory()
	callbacks := t.callbacksFor(history)

	t.logger.Info("Starting training sweep",
		log.DeviceKey, t.device.Name,
		log.WorkersKey, t.device.Workers,
		log.SIMDKey, t.device.SIMD,
		"experiments", len(experiments),
	)

	sorted := append([]experiment.Experiment(nil), experiments...)
	sortExperiments(sorted)

	var seq uint64
	if t.store == nil {
		return history, errors.NewValueError("Trainer.Run", "no data store configured")
	}
	for _, exp := range sorted {
		folds, err := t.store.Folds(exp.ID())
		if err != nil {
			return history, err
		}
		for _, fold := range folds {
			seq++
			if err := t.runFold(ctx, exp, fold, seq, callbacks); err != nil {
				return history, errors.Wrapf(err, "experiment %s fold %s", exp.ID(), fold)
			}
		}
	}
	return history, nil
}

// RunFold trains a single fold and returns its losses.
func (t *Trainer) RunFold(ctx context.Context, exp experiment.Experiment, fold string) (*History, error) {
	history := NewHistory()
	callbacks := t.callbacksFor(history)
	err := t.runFold(ctx, exp, fold, 0, callbacks)
	return history, err
}

// FitFold trains on an already loaded fold.
func (t *Trainer) FitFold(ctx context.Context, exp experiment.Experiment, fold string, data *store.Fold) (*History, error) {
	history := NewHistory()
	callbacks := t.callbacksFor(history)
	err := t.fitFold(ctx, exp, fold, 0, data, callbacks)
	return history, err
}

func (t *Trainer) runFold(ctx context.Context, exp experiment.Experiment, fold string, seq uint64, callbacks []Callback) error {
	if t.store == nil {
		return errors.NewValueError("Trainer.RunFold", "no data store configured")
	}
	data, err := t.store.LoadFold(exp.ID(), fold)
	if err != nil {
		return err
	}
	return t.fitFold(ctx, exp, fold, seq, data, callbacks)
}

// fitFold trains one fold. seq decorrelates the shuffling streams of folds
// within a sweep.
func (t *Trainer) fitFold(ctx context.Context, exp experiment.Experiment, fold string, seq uint64, data *store.Fold, callbacks []Callback) error {
	start := time.Now()
	logger := t.logger.With(log.ExperimentKey, exp.ID(), log.FoldKey, fold)

	trainSet, err := dataset.New(data.XTrain, data.YTrain)
	if err != nil {
		return errors.Wrap(err, "train split")
	}
	validSet, err := dataset.New(data.XValid, data.YValid)
	if err != nil {
		return errors.Wrap(err, "validation split")
	}
	testSet, err := dataset.New(data.XTest, data.YTest)
	if err != nil {
		return errors.Wrap(err, "test split")
	}
	if trainSet.Features() != t.cfg.InputSize {
		return errors.NewDimensionError("train.LoadFold", t.cfg.InputSize, trainSet.Features(), 1)
	}

	rng := rand.New(rand.NewPCG(t.cfg.Seed, seq))
	trainLoader := dataset.NewLoader(trainSet, t.cfg.BatchSize, t.cfg.Shuffle, rng)
	validLoader := dataset.NewLoader(validSet, t.cfg.BatchSize, t.cfg.Shuffle, rng)
	testLoader := dataset.NewLoader(testSet, t.cfg.BatchSize, t.cfg.Shuffle, rng)

	ae, err := t.newModel()
	if err != nil {
		return err
	}
	opt := autoencoder.NewAdam(t.cfg.LearningRate)
	obj := autoencoder.Objective{SparseParam: t.cfg.SparseParam, SparseCoeff: t.cfg.SparseCoeff}

	logger.Info("Training fold",
		log.SamplesKey, trainSet.Len(),
		log.FeaturesKey, trainSet.Features(),
		log.BatchesKey, trainLoader.NumBatches(),
		log.LearningRateKey, t.cfg.LearningRate,
	)

	emit := func(phase Phase, epoch, batch int, loss autoencoder.Loss) error {
		ev := &Event{
			Phase: phase,
			Entry: Entry{
				Experiment: exp.ID(),
				Fold:       fold,
				Epoch:      epoch,
				Batch:      batch,
				Loss:       loss.Total(),
			},
			Loss:    loss,
			Elapsed: time.Since(start),
		}
		for _, cb := range callbacks {
			if err := cb(ev); err != nil {
				return err
			}
		}
		return nil
	}

	evaluate := func(loader *dataset.Loader, phase Phase, epoch int) error {
		for _, b := range loader.Batches() {
			if err := ctx.Err(); err != nil {
				return errors.WithStack(err)
			}
			loss, err := ae.Evaluate(b.X, obj)
			if err != nil {
				return err
			}
			if err := emit(phase, epoch, b.Index, loss); err != nil {
				return err
			}
		}
		return nil
	}

	for epoch := 0; epoch < t.cfg.Epochs; epoch++ {
		for _, b := range trainLoader.Batches() {
			if err := ctx.Err(); err != nil {
				return errors.WithStack(err)
			}
			loss, err := ae.TrainStep(b.X, obj, opt)
			if err != nil {
				return errors.Wrapf(err, "epoch %d batch %d", epoch, b.Index)
			}
			if err := emit(PhaseTrain, epoch, b.Index, loss); err != nil {
				return err
			}

			if t.shouldValidate(b.Index) {
				if err := evaluate(validLoader, PhaseValidation, epoch); err != nil {
					return errors.Wrapf(err, "validation after epoch %d batch %d", epoch, b.Index)
				}
			}
		}
	}

	if err := evaluate(testLoader, PhaseTest, -1); err != nil {
		return errors.Wrap(err, "test pass")
	}
	if err := t.logTestErrors(logger, ae, data.XTest); err != nil {
		return errors.Wrap(err, "test pass")
	}

	paths := experiment.CheckpointPaths(t.cfg.ModelDir, exp, fold)
	if err := ae.Save(paths.Autoencoder1); err != nil {
		return err
	}

	logger.Info("Fold finished",
		log.PathKey, paths.Autoencoder1,
		log.DurationSecondsKey, time.Since(start).Seconds(),
	)
	return nil
}

// logTestErrors reports the reconstruction RMSE and MAE over the whole test
// split.
func (t *Trainer) logTestErrors(logger log.Logger, ae *autoencoder.Autoencoder, X *mat.Dense) error {
	rec, err := ae.Reconstruct(X)
	if err != nil {
		return err
	}
	rmse, err := metrics.RMSE(X, rec)
	if err != nil {
		return err
	}
	mae, err := metrics.MAE(X, rec)
	if err != nil {
		return err
	}
	logger.Info("Test reconstruction error",
		log.SamplesKey, X.RawMatrix().Rows,
		log.RMSEKey, rmse,
		log.MAEKey, mae,
	)
	return nil
}

func (t *Trainer) callbacksFor(h *History) []Callback {
	return append([]Callback{Record(h), LogLoss(t.logger)}, t.callbacks...)
}

// shouldValidate reports whether a validation pass follows training batch i.
func (t *Trainer) shouldValidate(i int) bool {
	return t.cfg.ValidateEvery > 0 && i%t.cfg.ValidateEvery == 0 && i != 0
}

func (t *Trainer) newModel() (*autoencoder.Autoencoder, error) {
	opts := []autoencoder.Option{
		autoencoder.WithHiddenSizes(t.cfg.CodeSize1),
		autoencoder.WithSeed(t.cfg.Seed),
		autoencoder.WithWorkers(t.device.Workers),
	}
	if t.cfg.Denoising {
		opts = append(opts, autoencoder.WithDenoising(t.cfg.DenoisingRate))
	}
	return autoencoder.New(t.cfg.InputSize, t.cfg.InputSize, opts...)
}

func sortExperiments(exps []experiment.Experiment) {
	sort.Slice(exps, func(i, j int) bool { return exps[i].ID() < exps[j].ID() })
}
