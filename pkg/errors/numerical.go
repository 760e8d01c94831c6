package errors

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// CheckNumericalStability returns a NumericalInstabilityError if values
// contain NaN or Inf.
func CheckNumericalStability(operation string, values []float64, iteration int) error {
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return NewNumericalInstabilityError(operation, values, iteration)
		}
	}
	return nil
}

// CheckScalar checks a single loss value.
func CheckScalar(operation string, value float64, iteration int) error {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return NewNumericalInstabilityError(operation, []float64{value}, iteration)
	}
	return nil
}

// CheckMatrix scans a matrix and reports up to ten offending values from the
// first row that contains any.
func CheckMatrix(operation string, m mat.Matrix, iteration int) error {
	rows, cols := m.Dims()
	var unstable []float64
	for i := 0; i < rows && len(unstable) == 0; i++ {
		for j := 0; j < cols; j++ {
			v := m.At(i, j)
			if math.IsNaN(v) || math.IsInf(v, 0) {
				unstable = append(unstable, v)
				if len(unstable) >= 10 {
					break
				}
			}
		}
	}
	if len(unstable) > 0 {
		return NewNumericalInstabilityError(operation, unstable, iteration)
	}
	return nil
}

// ClipValue clips a value to the range [min, max].
func ClipValue(value, min, max float64) float64 {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}
