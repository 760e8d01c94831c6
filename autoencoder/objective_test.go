package autoencoder

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/scigo-abide/pkg/errors"
)

func constantCode(rows, cols int, v float64) *mat.Dense {
	data := make([]float64, rows*cols)
	for i := range data {
		data[i] = v
	}
	return mat.NewDense(rows, cols, data)
}

func TestKLDivergence(t *testing.T) {
	const rho = 0.2
	assert.InDelta(t, 0, KLDivergence(rho, rho), 1e-12)

	prev := 0.0
	for _, rhoHat := range []float64{0.25, 0.35, 0.5, 0.7, 0.9} {
		kl := KLDivergence(rho, rhoHat)
		assert.Greater(t, kl, prev, "rhoHat=%v", rhoHat)
		prev = kl
	}
	prev = 0.0
	for _, rhoHat := range []float64{0.15, 0.1, 0.05, 0.01} {
		kl := KLDivergence(rho, rhoHat)
		assert.Greater(t, kl, prev, "rhoHat=%v", rhoHat)
		prev = kl
	}

	assert.False(t, math.IsInf(KLDivergence(rho, 0), 0))
	assert.False(t, math.IsInf(KLDivergence(rho, 1), 0))
}

func TestSparsityPenalty(t *testing.T) {
	assert.InDelta(t, 0, SparsityPenalty(constantCode(10, 4, 0.2), 0.2, 0.5), 1e-12)

	p1 := SparsityPenalty(constantCode(10, 4, 0.3), 0.2, 0.5)
	p2 := SparsityPenalty(constantCode(10, 4, 0.6), 0.2, 0.5)
	assert.Greater(t, p1, 0.0)
	assert.Greater(t, p2, p1)

	// coefficient scales linearly
	assert.InDelta(t, 2*p1, SparsityPenalty(constantCode(10, 4, 0.3), 0.2, 1.0), 1e-12)
}

func TestMeanActivations(t *testing.T) {
	enc := mat.NewDense(2, 3, []float64{
		0.1, 0.5, 1,
		0.3, 0.5, 0,
	})
	assert.InDeltaSlice(t, []float64{0.2, 0.5, 0.5}, MeanActivations(enc), 1e-12)
}

func TestObjectiveEvaluate(t *testing.T) {
	X := mat.NewDense(2, 2, []float64{1, 2, 3, 4})
	rec := mat.NewDense(2, 2, []float64{1, 2, 3, 6})
	obj := Objective{SparseParam: 0.2, SparseCoeff: 0.5}

	loss, err := obj.Evaluate(X, constantCode(2, 3, 0.2), rec)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, loss.Reconstruction, 1e-12)
	assert.InDelta(t, 0, loss.Penalty, 1e-12)
	assert.InDelta(t, 1.0, loss.Total(), 1e-12)

	_, err = obj.Evaluate(X, constantCode(2, 3, 0.2), mat.NewDense(2, 3, nil))
	assert.Error(t, err)
}

func TestAdamStep(t *testing.T) {
	value := []float64{1, -1}
	grad := []float64{0.5, -0.5}
	opt := NewAdam(0.1)

	require.NoError(t, opt.Step([]Param{{Name: "w", Value: value, Grad: grad}}))
	// first Adam step moves each coordinate by lr against the gradient sign
	assert.InDelta(t, 0.9, value[0], 1e-6)
	assert.InDelta(t, -0.9, value[1], 1e-6)

	err := opt.Step([]Param{{Name: "w", Value: value, Grad: grad}, {Name: "b", Value: []float64{0}, Grad: []float64{0}}})
	assert.Error(t, err)
}

func TestAdamRejectsNonFiniteGradient(t *testing.T) {
	w := []float64{1, 2}
	b := []float64{3}
	opt := NewAdam(0.1)

	err := opt.Step([]Param{
		{Name: "w", Value: w, Grad: []float64{0.5, 0.5}},
		{Name: "b", Value: b, Grad: []float64{math.Inf(1)}},
	})
	var numErr *errors.NumericalInstabilityError
	require.True(t, errors.As(err, &numErr), "got %v", err)
	assert.Equal(t, "Adam.Step b", numErr.Operation)
	assert.Equal(t, []float64{1, 2}, w)
	assert.Equal(t, []float64{3}, b)
	assert.Zero(t, opt.Steps())
}
