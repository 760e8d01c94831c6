// Package autoencoder implements a fully connected (optionally denoising)
// autoencoder trained with a sparsity-regularised reconstruction loss.
//
// The encoder stacks sigmoid layers through the hidden sizes; the decoder
// mirrors them in reverse and ends in a linear layer back to the input
// dimension. Forward takes the Mode explicitly: denoising corruption and
// gradient caching happen only in Train mode.
//
//	ae, err := autoencoder.New(19900, 19900,
//	    autoencoder.WithHiddenSizes(1000),
//	    autoencoder.WithDenoising(0.7),
//	)
//	enc, rec, err := ae.Forward(X, autoencoder.Eval)
package autoencoder

import (
	"fmt"
	"math/rand/v2"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/YuminosukeSato/scigo-abide/core/model"
	"github.com/YuminosukeSato/scigo-abide/core/parallel"
	"github.com/YuminosukeSato/scigo-abide/pkg/errors"
	"github.com/YuminosukeSato/scigo-abide/pkg/log"
)

// Mode selects training or evaluation behaviour for Forward.
type Mode int

const (
	// Eval disables corruption and caching; output is deterministic.
	Eval Mode = iota
	// Train applies denoising corruption and caches activations for Backward.
	Train
)

func (m Mode) String() string {
	if m == Train {
		return "train"
	}
	return "eval"
}

// Option configures an Autoencoder.
type Option func(*Autoencoder)

// WithHiddenSizes sets the encoder layer widths. The last one is the code size.
func WithHiddenSizes(sizes ...int) Option {
	return func(a *Autoencoder) {
		a.hidden = append([]int(nil), sizes...)
	}
}

// WithDenoising enables masking noise with the given corruption rate.
func WithDenoising(rate float64) Option {
	return func(a *Autoencoder) {
		a.denoising = true
		a.corruption = rate
	}
}

// WithSeed fixes the seed used for weight init and corruption.
func WithSeed(seed uint64) Option {
	return func(a *Autoencoder) {
		a.seed = seed
	}
}

// WithWorkers sets the goroutine count of the row kernels. <= 0 uses all CPUs.
func WithWorkers(n int) Option {
	return func(a *Autoencoder) {
		a.workers = n
	}
}

// Autoencoder is a dense autoencoder. It is not safe for concurrent use.
type Autoencoder struct {
	state *model.StateManager

	inputSize  int
	outputSize int
	hidden     []int
	denoising  bool
	corruption float64
	seed       uint64
	workers    int

	encoder []*dense
	decoder []*dense
	rng     *rand.Rand

	// true after a Train-mode Forward until the next Backward
	cached bool
}

// New builds an autoencoder mapping inputSize features back to outputSize.
// outputSize must equal inputSize.
func New(inputSize, outputSize int, opts ...Option) (*Autoencoder, error) {
	a := &Autoencoder{
		state:      model.NewStateManager(),
		inputSize:  inputSize,
		outputSize: outputSize,
		hidden:     []int{1000},
		seed:       42,
	}
	for _, opt := range opts {
		opt(a)
	}
	if err := a.validate(); err != nil {
		return nil, err
	}
	a.build()
	return a, nil
}

func (a *Autoencoder) validate() error {
	if a.inputSize <= 0 {
		return errors.NewValidationError("inputSize", "must be positive", a.inputSize)
	}
	if a.outputSize != a.inputSize {
		return errors.NewValidationError("outputSize", "must equal input size", a.outputSize)
	}
	if len(a.hidden) == 0 {
		return errors.NewValidationError("hiddenSizes", "at least one hidden layer is required", a.hidden)
	}
	for _, h := range a.hidden {
		if h <= 0 {
			return errors.NewValidationError("hiddenSizes", "must be positive", a.hidden)
		}
	}
	if a.denoising && (a.corruption < 0 || a.corruption >= 1) {
		return errors.NewValidationError("denoisingRate", "must be in [0, 1)", a.corruption)
	}
	return nil
}

func (a *Autoencoder) build() {
	a.rng = newRand(a.seed)

	a.encoder = a.encoder[:0]
	prev := a.inputSize
	for _, h := range a.hidden {
		a.encoder = append(a.encoder, newDense(prev, h, Sigmoid, a.rng))
		prev = h
	}

	a.decoder = a.decoder[:0]
	for i := len(a.hidden) - 2; i >= 0; i-- {
		a.decoder = append(a.decoder, newDense(prev, a.hidden[i], Sigmoid, a.rng))
		prev = a.hidden[i]
	}
	a.decoder = append(a.decoder, newDense(prev, a.outputSize, Identity, a.rng))
}

func newRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// InputSize returns the feature count expected by Forward.
func (a *Autoencoder) InputSize() int { return a.inputSize }

// CodeSize returns the width of the encoded representation.
func (a *Autoencoder) CodeSize() int { return a.hidden[len(a.hidden)-1] }

// HiddenSizes returns a copy of the encoder widths.
func (a *Autoencoder) HiddenSizes() []int { return append([]int(nil), a.hidden...) }

// IsFitted reports whether at least one optimizer step has been applied.
func (a *Autoencoder) IsFitted() bool { return a.state.IsFitted() }

// Steps returns the number of optimizer steps applied so far.
func (a *Autoencoder) Steps() int { return a.state.GetState().Steps }

// Forward encodes X and reconstructs it. In Train mode with denoising on,
// the input is corrupted first and activations are cached for Backward.
func (a *Autoencoder) Forward(X mat.Matrix, mode Mode) (encoded, reconstruction *mat.Dense, err error) {
	defer errors.Recover(&err, "Autoencoder.Forward")

	rows, cols := X.Dims()
	if rows == 0 {
		return nil, nil, errors.ErrEmptyData
	}
	if cols != a.inputSize {
		return nil, nil, errors.NewDimensionError("Autoencoder.Forward", a.inputSize, cols, 1)
	}

	x := mat.DenseCopyOf(X)
	train := mode == Train
	if train && a.denoising && a.corruption > 0 {
		a.corrupt(x)
	}

	h := x
	for _, l := range a.encoder {
		h = l.forward(h, train, a.workers)
	}
	encoded = h
	for _, l := range a.decoder {
		h = l.forward(h, train, a.workers)
	}
	a.cached = train
	return encoded, h, nil
}

// corrupt applies masking noise: each entry is zeroed with probability equal
// to the corruption rate. Survivors are left unscaled.
func (a *Autoencoder) corrupt(x *mat.Dense) {
	keep := distuv.Bernoulli{P: 1 - a.corruption, Src: a.rng}
	rows, cols := x.Dims()
	mask := make([]float64, rows*cols)
	for i := range mask {
		mask[i] = keep.Rand()
	}
	parallel.ParallelizeWithThreshold(rows, rowThreshold, a.workers, func(start, end int) {
		for i := start; i < end; i++ {
			row := x.RawRowView(i)
			m := mask[i*cols : (i+1)*cols]
			for j := range row {
				row[j] *= m[j]
			}
		}
	})
}

// Backward propagates dRec (gradient w.r.t. the reconstruction) and dEnc
// (gradient w.r.t. the code, may be nil) through the network, filling every
// parameter gradient. It requires a preceding Train-mode Forward.
func (a *Autoencoder) Backward(dRec, dEnc *mat.Dense) (err error) {
	defer errors.Recover(&err, "Autoencoder.Backward")

	if !a.cached {
		return errors.NewModelError("Autoencoder.Backward", "no Train-mode forward pass to differentiate", nil)
	}
	_, cols := dRec.Dims()
	if cols != a.outputSize {
		return errors.NewDimensionError("Autoencoder.Backward", a.outputSize, cols, 1)
	}

	g := dRec
	for i := len(a.decoder) - 1; i >= 0; i-- {
		g = a.decoder[i].backward(g, true, a.workers)
	}
	if dEnc != nil {
		g.Add(g, dEnc)
	}
	for i := len(a.encoder) - 1; i >= 0; i-- {
		g = a.encoder[i].backward(g, i > 0, a.workers)
	}
	a.cached = false
	return nil
}

// Param is a trainable tensor and its gradient, both flattened row-major.
type Param struct {
	Name  string
	Value []float64
	Grad  []float64
}

// Params returns views on every weight and bias in forward order.
func (a *Autoencoder) Params() []Param {
	layers := a.layers()
	params := make([]Param, 0, 2*len(layers))
	for i, l := range layers {
		params = append(params,
			Param{
				Name:  fmt.Sprintf("layer%d.weight", i),
				Value: l.W.RawMatrix().Data,
				Grad:  l.dW.RawMatrix().Data,
			},
			Param{
				Name:  fmt.Sprintf("layer%d.bias", i),
				Value: l.B.RawVector().Data,
				Grad:  l.dB.RawVector().Data,
			},
		)
	}
	return params
}

func (a *Autoencoder) layers() []*dense {
	out := make([]*dense, 0, len(a.encoder)+len(a.decoder))
	out = append(out, a.encoder...)
	return append(out, a.decoder...)
}

// TrainStep runs one forward/backward pass on the batch X in Train mode,
// applies one optimizer step, and returns the loss measured before the update.
func (a *Autoencoder) TrainStep(X mat.Matrix, obj Objective, opt *Adam) (Loss, error) {
	enc, rec, err := a.Forward(X, Train)
	if err != nil {
		return Loss{}, err
	}
	loss, err := obj.Evaluate(X, enc, rec)
	if err != nil {
		return Loss{}, err
	}
	if err := errors.CheckScalar("Autoencoder.TrainStep", loss.Total(), a.Steps()); err != nil {
		return loss, err
	}

	dRec, dEnc := obj.Gradients(X, enc, rec)
	if err := a.Backward(dRec, dEnc); err != nil {
		return loss, err
	}
	if err := opt.Step(a.Params()); err != nil {
		return loss, err
	}

	rows, cols := X.Dims()
	a.state.RecordStep(cols, rows)
	log.GetLoggerWithName("autoencoder").Debug("Optimizer step",
		log.BatchSizeKey, rows,
		log.LossKey, loss.Total(),
		log.PenaltyKey, loss.Penalty,
	)
	return loss, nil
}

// Evaluate returns the loss on X in Eval mode without touching the weights.
func (a *Autoencoder) Evaluate(X mat.Matrix, obj Objective) (Loss, error) {
	enc, rec, err := a.Forward(X, Eval)
	if err != nil {
		return Loss{}, err
	}
	loss, err := obj.Evaluate(X, enc, rec)
	if err != nil {
		return Loss{}, err
	}
	if err := errors.CheckScalar("Autoencoder.Evaluate", loss.Total(), a.Steps()); err != nil {
		return loss, err
	}
	return loss, nil
}

// Reconstruct returns the Eval-mode reconstruction of X.
func (a *Autoencoder) Reconstruct(X mat.Matrix) (*mat.Dense, error) {
	_, rec, err := a.Forward(X, Eval)
	return rec, err
}
