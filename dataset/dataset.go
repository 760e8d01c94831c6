// Package dataset pairs feature matrices with labels and serves them in
// shuffled mini-batches.
package dataset

import (
	"math/rand/v2"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/scigo-abide/pkg/errors"
)

// Dataset is a feature matrix with one label per row.
type Dataset struct {
	X *mat.Dense
	Y *mat.VecDense
}

// New pairs X and y. Row counts must match.
func New(X *mat.Dense, y *mat.VecDense) (*Dataset, error) {
	if X == nil || y == nil {
		return nil, errors.ErrEmptyData
	}
	rows, _ := X.Dims()
	if rows == 0 {
		return nil, errors.ErrEmptyData
	}
	if y.Len() != rows {
		return nil, errors.NewDimensionError("dataset.New", rows, y.Len(), 0)
	}
	return &Dataset{X: X, Y: y}, nil
}

// Len returns the number of rows.
func (d *Dataset) Len() int {
	rows, _ := d.X.Dims()
	return rows
}

// Features returns the number of columns.
func (d *Dataset) Features() int {
	_, cols := d.X.Dims()
	return cols
}

// Batch is one mini-batch.
type Batch struct {
	Index int
	X     *mat.Dense
	Y     *mat.VecDense
}

// Size returns the number of rows in the batch.
func (b Batch) Size() int {
	return b.Y.Len()
}

// Loader iterates a Dataset in fixed-size batches.
type Loader struct {
	ds        *Dataset
	batchSize int
	shuffle   bool
	rng       *rand.Rand
}

// NewLoader creates a loader. rng is only used when shuffle is set; a nil rng
// falls back to a fixed seed.
func NewLoader(ds *Dataset, batchSize int, shuffle bool, rng *rand.Rand) *Loader {
	if batchSize <= 0 {
		batchSize = 1
	}
	if shuffle && rng == nil {
		rng = rand.New(rand.NewPCG(0, 0))
	}
	return &Loader{ds: ds, batchSize: batchSize, shuffle: shuffle, rng: rng}
}

// NumBatches returns ceil(rows / batch size).
func (l *Loader) NumBatches() int {
	return (l.ds.Len() + l.batchSize - 1) / l.batchSize
}

// BatchSize returns the configured batch size.
func (l *Loader) BatchSize() int {
	return l.batchSize
}

// Batches returns the batches of one pass. With shuffling on, every call
// draws a new permutation. The last batch may be shorter.
func (l *Loader) Batches() []Batch {
	n := l.ds.Len()
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	if l.shuffle {
		l.rng.Shuffle(n, func(i, j int) {
			order[i], order[j] = order[j], order[i]
		})
	}

	cols := l.ds.Features()
	batches := make([]Batch, 0, l.NumBatches())
	for start := 0; start < n; start += l.batchSize {
		end := min(start+l.batchSize, n)
		X := mat.NewDense(end-start, cols, nil)
		y := mat.NewVecDense(end-start, nil)
		for i, row := range order[start:end] {
			X.SetRow(i, l.ds.X.RawRowView(row))
			y.SetVec(i, l.ds.Y.AtVec(row))
		}
		batches = append(batches, Batch{Index: len(batches), X: X, Y: y})
	}
	return batches
}
