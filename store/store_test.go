package store

import (
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YuminosukeSato/scigo-abide/pkg/errors"
)

func writeFixture(t *testing.T, features int) string {
	t.Helper()
	root := t.TempDir()
	w, err := Create(root)
	require.NoError(t, err)

	for i := 0; i < 10; i++ {
		vec := make([]float64, features)
		for j := range vec {
			vec[j] = float64(i*features + j)
		}
		id := fmt.Sprintf("SITE_%07d", i)
		require.NoError(t, w.PutPatient(id, PatientAttrs{Y: i % 2, Site: "SITE"}, "cc200", vec))
	}

	require.NoError(t, w.PutExperiment("cc200_whole", "cc200"))
	ids := func(idx ...int) []string {
		out := make([]string, len(idx))
		for i, v := range idx {
			out[i] = fmt.Sprintf("SITE_%07d", v)
		}
		return out
	}
	require.NoError(t, w.PutFold("cc200_whole", "0", ids(0, 1, 2, 3, 4, 5), ids(6, 7), ids(8, 9)))
	require.NoError(t, w.PutFold("cc200_whole", "1", ids(4, 5, 6, 7, 8, 9), ids(0, 1), ids(2, 3)))
	require.NoError(t, w.PutFold("cc200_whole", "10", ids(0, 1, 2), ids(3), ids(4)))
	return root
}

func TestLoadFoldShapes(t *testing.T) {
	s, err := Open(writeFixture(t, 6))
	require.NoError(t, err)

	fold, err := s.LoadFold("cc200_whole", "0")
	require.NoError(t, err)

	pairs := []struct {
		name string
		rows int
		y    int
	}{
		{Train, rowsOf(fold.XTrain), fold.YTrain.Len()},
		{Valid, rowsOf(fold.XValid), fold.YValid.Len()},
		{Test, rowsOf(fold.XTest), fold.YTest.Len()},
	}
	for _, p := range pairs {
		assert.Equal(t, p.rows, p.y, "split %s", p.name)
	}
	assert.Equal(t, 6, rowsOf(fold.XTrain))
	_, cols := fold.XTrain.Dims()
	assert.Equal(t, 6, cols)

	// patient 8 is the first test row
	assert.Equal(t, 48.0, fold.XTest.At(0, 0))
	assert.Equal(t, 0.0, fold.YTest.AtVec(0))
	assert.Equal(t, 1.0, fold.YTest.AtVec(1))
}

func rowsOf(m interface{ Dims() (int, int) }) int {
	r, _ := m.Dims()
	return r
}

func TestExperimentsAndFolds(t *testing.T) {
	s, err := Open(writeFixture(t, 3))
	require.NoError(t, err)

	exps, err := s.Experiments()
	require.NoError(t, err)
	assert.Equal(t, []string{"cc200_whole"}, exps)

	folds, err := s.Folds("cc200_whole")
	require.NoError(t, err)
	assert.Equal(t, []string{"0", "1", "10"}, folds)

	attrs, err := s.ExperimentAttrs("cc200_whole")
	require.NoError(t, err)
	assert.Equal(t, "cc200", attrs.Derivative)
}

func TestNotFound(t *testing.T) {
	s, err := Open(writeFixture(t, 3))
	require.NoError(t, err)

	_, err = s.Folds("aal_whole")
	assertNotFound(t, err, "experiment")

	_, err = s.LoadFold("aal_whole", "0")
	assertNotFound(t, err, "experiment")

	_, err = s.LoadFold("cc200_whole", "7")
	assertNotFound(t, err, "fold")

	_, _, err = s.Patient("SITE_0000001", "aal")
	assertNotFound(t, err, "derivative")

	_, _, err = s.Patient("NOPE", "cc200")
	assertNotFound(t, err, "patient")
}

func assertNotFound(t *testing.T, err error, kind string) {
	t.Helper()
	var nf *errors.NotFoundError
	require.True(t, errors.As(err, &nf), "expected NotFoundError, got %v", err)
	assert.Equal(t, kind, nf.Kind)
}

func TestLoadFoldDimensionMismatch(t *testing.T) {
	root := writeFixture(t, 4)
	w, err := Create(root)
	require.NoError(t, err)
	require.NoError(t, w.PutPatient("SITE_0000001", PatientAttrs{Y: 1}, "cc200", []float64{1, 2}))

	s, err := Open(root)
	require.NoError(t, err)
	_, err = s.LoadFold("cc200_whole", "0")

	var dimErr *errors.DimensionError
	require.True(t, errors.As(err, &dimErr), "got %v", err)
	assert.Equal(t, 4, dimErr.Expected)
	assert.Equal(t, 2, dimErr.Got)
}

func TestLoadFoldRejectsNonFiniteFeatures(t *testing.T) {
	root := writeFixture(t, 3)
	w, err := Create(root)
	require.NoError(t, err)
	require.NoError(t, w.PutPatient("SITE_0000007", PatientAttrs{Y: 1}, "cc200", []float64{0.1, math.NaN(), 0.3}))

	s, err := Open(root)
	require.NoError(t, err)

	_, err = s.LoadFold("cc200_whole", "0")
	var numErr *errors.NumericalInstabilityError
	require.True(t, errors.As(err, &numErr), "got %v", err)

	// fold 10 does not contain the subject
	_, err = s.LoadFold("cc200_whole", "10")
	assert.NoError(t, err)
}

func TestEmptySplit(t *testing.T) {
	root := writeFixture(t, 2)
	w, err := Create(root)
	require.NoError(t, err)
	require.NoError(t, w.PutFold("cc200_whole", "2", []string{"SITE_0000000"}, nil, []string{"SITE_0000001"}))

	s, err := Open(root)
	require.NoError(t, err)
	_, err = s.LoadFold("cc200_whole", "2")
	assert.True(t, errors.Is(err, errors.ErrEmptyData))
}

func TestOpenMissing(t *testing.T) {
	_, err := Open(t.TempDir())
	assert.Error(t, err)
}

func TestPutPatientRejectsBadInput(t *testing.T) {
	w, err := Create(t.TempDir())
	require.NoError(t, err)

	assert.Error(t, w.PutPatient("", PatientAttrs{}, "cc200", []float64{1}))
	assert.Error(t, w.PutPatient("a/b", PatientAttrs{}, "cc200", []float64{1}))
	assert.Error(t, w.PutPatient("ok", PatientAttrs{}, "cc200", nil))
}
