// Package metrics computes reconstruction errors between a target matrix and
// a model's reconstruction of it.
package metrics

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/scigo-abide/pkg/errors"
)

func checkShapes(op string, yTrue, yPred mat.Matrix) (int, int, error) {
	rTrue, cTrue := yTrue.Dims()
	rPred, cPred := yPred.Dims()
	if rTrue == 0 || cTrue == 0 {
		return 0, 0, errors.NewValueError(op, "empty matrix")
	}
	if rTrue != rPred {
		return 0, 0, errors.NewDimensionError(op, rTrue, rPred, 0)
	}
	if cTrue != cPred {
		return 0, 0, errors.NewDimensionError(op, cTrue, cPred, 1)
	}
	return rTrue, cTrue, nil
}

// MSE is the mean squared error over every element:
// (1/(n·d)) · Σ (yTrue - yPred)².
func MSE(yTrue, yPred mat.Matrix) (float64, error) {
	r, c, err := checkShapes("MSE", yTrue, yPred)
	if err != nil {
		return 0, err
	}

	var diff mat.Dense
	diff.Sub(yTrue, yPred)
	sq := mat.Norm(&diff, 2) // Frobenius norm
	return sq * sq / float64(r*c), nil
}

// RMSE is the square root of MSE.
func RMSE(yTrue, yPred mat.Matrix) (float64, error) {
	mse, err := MSE(yTrue, yPred)
	if err != nil {
		return 0, err
	}
	return math.Sqrt(mse), nil
}

// MAE is the mean absolute error over every element.
func MAE(yTrue, yPred mat.Matrix) (float64, error) {
	r, c, err := checkShapes("MAE", yTrue, yPred)
	if err != nil {
		return 0, err
	}

	var sum float64
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			sum += math.Abs(yTrue.At(i, j) - yPred.At(i, j))
		}
	}
	return sum / float64(r*c), nil
}
