package model

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YuminosukeSato/scigo-abide/pkg/errors"
)

func TestStateManagerLifecycle(t *testing.T) {
	s := NewStateManager()
	assert.False(t, s.IsFitted())

	err := s.RequireFitted("Autoencoder", "Save")
	var nfErr *errors.NotFittedError
	require.True(t, errors.As(err, &nfErr))
	assert.Equal(t, "Save", nfErr.Method)

	s.RecordStep(19900, 100)
	s.RecordStep(19900, 50)
	assert.True(t, s.IsFitted())
	assert.Equal(t, ModelState{Fitted: true, Steps: 2, NFeatures: 19900, NSamples: 150}, s.GetState())

	s.Reset()
	assert.Equal(t, ModelState{}, s.GetState())

	s.SetState(ModelState{Fitted: true, Steps: 7})
	assert.NoError(t, s.RequireFitted("Autoencoder", "Save"))
}

type checkpoint struct {
	Name    string
	Weights []float64
}

func TestSaveLoadModel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "models", "cc200_whole_0_autoencoder-1.ckpt")
	in := checkpoint{Name: "ae1", Weights: []float64{0.1, -0.2, 0.3}}

	require.NoError(t, SaveModel(in, path))

	var out checkpoint
	require.NoError(t, LoadModel(&out, path))
	assert.Equal(t, in, out)
}

func TestLoadModelMissingFile(t *testing.T) {
	var out checkpoint
	err := LoadModel(&out, filepath.Join(t.TempDir(), "missing.ckpt"))
	assert.Error(t, err)
}

func TestWriterRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, SaveModelToWriter(checkpoint{Name: "x"}, &buf))

	var out checkpoint
	require.NoError(t, LoadModelFromReader(&out, &buf))
	assert.Equal(t, "x", out.Name)
}
