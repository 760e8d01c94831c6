package autoencoder

import (
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/YuminosukeSato/scigo-abide/core/parallel"
)

// rowThreshold is the batch size below which row kernels run inline.
const rowThreshold = 32

// Activation selects the non-linearity of a dense layer.
type Activation int

const (
	// Identity passes pre-activations through unchanged.
	Identity Activation = iota
	// Sigmoid squashes pre-activations into (0, 1).
	Sigmoid
)

func (a Activation) String() string {
	switch a {
	case Sigmoid:
		return "sigmoid"
	default:
		return "identity"
	}
}

// dense is a fully connected layer computing act(x·W + b).
type dense struct {
	W   *mat.Dense    // in × out
	B   *mat.VecDense // out
	Act Activation

	dW *mat.Dense
	dB *mat.VecDense

	// set by a Train-mode forward pass
	in  *mat.Dense
	out *mat.Dense
}

// newDense creates a layer with Glorot-normal weights and zero biases.
func newDense(in, out int, act Activation, rng *rand.Rand) *dense {
	dist := distuv.Normal{
		Mu:    0,
		Sigma: math.Sqrt(2.0 / float64(in+out)),
		Src:   rng,
	}
	w := make([]float64, in*out)
	for i := range w {
		w[i] = dist.Rand()
	}
	return &dense{
		W:   mat.NewDense(in, out, w),
		B:   mat.NewVecDense(out, nil),
		Act: act,
		dW:  mat.NewDense(in, out, nil),
		dB:  mat.NewVecDense(out, nil),
	}
}

func (l *dense) inputs() int {
	r, _ := l.W.Dims()
	return r
}

func (l *dense) outputs() int {
	_, c := l.W.Dims()
	return c
}

// forward computes the layer output for x. With cache set the input and
// output are kept for backward.
func (l *dense) forward(x *mat.Dense, cache bool, workers int) *mat.Dense {
	n, _ := x.Dims()
	z := mat.NewDense(n, l.outputs(), nil)
	z.Mul(x, l.W)

	bias := l.B.RawVector().Data
	parallel.ParallelizeWithThreshold(n, rowThreshold, workers, func(start, end int) {
		for i := start; i < end; i++ {
			row := z.RawRowView(i)
			floats.Add(row, bias)
			if l.Act == Sigmoid {
				for j, v := range row {
					row[j] = sigmoid(v)
				}
			}
		}
	})

	if cache {
		l.in = x
		l.out = z
	} else {
		l.in, l.out = nil, nil
	}
	return z
}

// backward accumulates dW and dB from the gradient with respect to the
// layer output and returns the gradient with respect to the input. The
// input gradient is skipped when needInput is false.
func (l *dense) backward(dOut *mat.Dense, needInput bool, workers int) *mat.Dense {
	n, _ := dOut.Dims()
	dZ := mat.DenseCopyOf(dOut)
	if l.Act == Sigmoid {
		parallel.ParallelizeWithThreshold(n, rowThreshold, workers, func(start, end int) {
			for i := start; i < end; i++ {
				dz := dZ.RawRowView(i)
				out := l.out.RawRowView(i)
				for j, a := range out {
					dz[j] *= a * (1 - a)
				}
			}
		})
	}

	l.dW.Mul(l.in.T(), dZ)

	ones := make([]float64, n)
	floats.AddConst(1, ones)
	l.dB.MulVec(dZ.T(), mat.NewVecDense(n, ones))

	if !needInput {
		return nil
	}
	dIn := mat.NewDense(n, l.inputs(), nil)
	dIn.Mul(dZ, l.W.T())
	return dIn
}

func sigmoid(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}
