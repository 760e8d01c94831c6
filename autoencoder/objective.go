package autoencoder

import (
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/YuminosukeSato/scigo-abide/metrics"
	"github.com/YuminosukeSato/scigo-abide/pkg/errors"
)

// rhoEpsilon keeps mean activations strictly inside (0, 1).
const rhoEpsilon = 1e-6

// Objective is the reconstruction MSE plus a KL sparsity penalty on the code.
type Objective struct {
	SparseParam float64 // target mean activation rho
	SparseCoeff float64 // penalty weight
}

// Loss splits a batch loss into its two terms.
type Loss struct {
	Reconstruction float64
	Penalty        float64
}

// Total returns Reconstruction + Penalty.
func (l Loss) Total() float64 {
	return l.Reconstruction + l.Penalty
}

// KLDivergence is KL(rho ‖ rhoHat) between two Bernoulli distributions.
// rhoHat is clipped into (0, 1).
func KLDivergence(rho, rhoHat float64) float64 {
	rhoHat = errors.ClipValue(rhoHat, rhoEpsilon, 1-rhoEpsilon)
	return rho*math.Log(rho/rhoHat) + (1-rho)*math.Log((1-rho)/(1-rhoHat))
}

// MeanActivations returns the mean of every column of enc.
func MeanActivations(enc mat.Matrix) []float64 {
	_, cols := enc.Dims()
	means := make([]float64, cols)
	for j := range means {
		means[j] = stat.Mean(mat.Col(nil, j, enc), nil)
	}
	return means
}

// SparsityPenalty is coeff · Σ_j KL(rho ‖ rhoHat_j), where rhoHat_j is the
// mean activation of code unit j over the batch.
func SparsityPenalty(enc mat.Matrix, rho, coeff float64) float64 {
	var sum float64
	for _, rhoHat := range MeanActivations(enc) {
		sum += KLDivergence(rho, rhoHat)
	}
	return coeff * sum
}

// Evaluate computes the loss of a reconstruction of the clean input X.
func (o Objective) Evaluate(X mat.Matrix, enc, rec *mat.Dense) (Loss, error) {
	mse, err := metrics.MSE(X, rec)
	if err != nil {
		return Loss{}, err
	}
	return Loss{
		Reconstruction: mse,
		Penalty:        SparsityPenalty(enc, o.SparseParam, o.SparseCoeff),
	}, nil
}

// Gradients returns the loss gradients with respect to the reconstruction
// and the code.
func (o Objective) Gradients(X mat.Matrix, enc, rec *mat.Dense) (dRec, dEnc *mat.Dense) {
	n, d := rec.Dims()

	dRec = mat.NewDense(n, d, nil)
	dRec.Sub(rec, X)
	dRec.Scale(2/float64(n*d), dRec)

	_, k := enc.Dims()
	dEnc = mat.NewDense(n, k, nil)
	if o.SparseCoeff == 0 {
		return dRec, dEnc
	}
	rho := o.SparseParam
	col := make([]float64, k)
	for j, rhoHat := range MeanActivations(enc) {
		rhoHat = errors.ClipValue(rhoHat, rhoEpsilon, 1-rhoEpsilon)
		col[j] = o.SparseCoeff / float64(n) * (-rho/rhoHat + (1-rho)/(1-rhoHat))
	}
	for i := 0; i < n; i++ {
		dEnc.SetRow(i, col)
	}
	return dRec, dEnc
}
