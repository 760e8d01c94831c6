package autoencoder

import (
	"math"

	"github.com/YuminosukeSato/scigo-abide/pkg/errors"
)

// Adam is the Adam optimizer with a fixed learning rate.
type Adam struct {
	LearningRate float64
	Beta1        float64
	Beta2        float64
	Epsilon      float64

	t int
	m [][]float64
	v [][]float64
}

// NewAdam returns Adam with β1 0.9, β2 0.999 and ε 1e-8.
func NewAdam(learningRate float64) *Adam {
	return &Adam{
		LearningRate: learningRate,
		Beta1:        0.9,
		Beta2:        0.999,
		Epsilon:      1e-8,
	}
}

// Step applies one update to every parameter in place. The parameter list
// must keep the same shapes across calls. A NaN or Inf gradient is rejected
// before any parameter changes.
func (a *Adam) Step(params []Param) error {
	if a.m == nil {
		a.m = make([][]float64, len(params))
		a.v = make([][]float64, len(params))
		for i, p := range params {
			a.m[i] = make([]float64, len(p.Value))
			a.v[i] = make([]float64, len(p.Value))
		}
	}
	if len(params) != len(a.m) {
		return errors.NewDimensionError("Adam.Step", len(a.m), len(params), 0)
	}

	for i, p := range params {
		if len(p.Value) != len(a.m[i]) || len(p.Grad) != len(p.Value) {
			return errors.NewDimensionError("Adam.Step "+p.Name, len(a.m[i]), len(p.Value), 1)
		}
		if err := errors.CheckNumericalStability("Adam.Step "+p.Name, p.Grad, a.t); err != nil {
			return err
		}
	}

	a.t++
	bc1 := 1 - math.Pow(a.Beta1, float64(a.t))
	bc2 := 1 - math.Pow(a.Beta2, float64(a.t))
	stepSize := a.LearningRate / bc1

	for i, p := range params {
		m, v := a.m[i], a.v[i]
		for j, g := range p.Grad {
			m[j] = a.Beta1*m[j] + (1-a.Beta1)*g
			v[j] = a.Beta2*v[j] + (1-a.Beta2)*g*g
			p.Value[j] -= stepSize * m[j] / (math.Sqrt(v[j]/bc2) + a.Epsilon)
		}
	}
	return nil
}

// Steps returns the number of updates applied.
func (a *Adam) Steps() int {
	return a.t
}
