package main

import (
	"context"
	"flag"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/scigo-abide/config"
	"github.com/YuminosukeSato/scigo-abide/experiment"
	"github.com/YuminosukeSato/scigo-abide/pkg/errors"
	"github.com/YuminosukeSato/scigo-abide/pkg/log"
	"github.com/YuminosukeSato/scigo-abide/store"
	"github.com/YuminosukeSato/scigo-abide/train"
)

func TestApplyFlagsOnlyCopiesSetFlags(t *testing.T) {
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	overrides := config.Default()
	fs.IntVar(&overrides.Epochs, "epochs", overrides.Epochs, "")
	fs.Uint64Var(&overrides.Seed, "seed", overrides.Seed, "")
	fs.StringVar(&overrides.DataDir, "data", overrides.DataDir, "")
	require.NoError(t, fs.Parse([]string{"-epochs", "3", "cc200"}))

	cfg := config.Default()
	cfg.Seed = 99
	cfg.DataDir = "/from/config"
	applyFlags(fs, &cfg, overrides)

	assert.Equal(t, 3, cfg.Epochs)
	assert.Equal(t, uint64(99), cfg.Seed)
	assert.Equal(t, "/from/config", cfg.DataDir)
	assert.Equal(t, []string{"cc200"}, fs.Args())
}

func uniformFold(rows, cols int) (*mat.Dense, *mat.VecDense) {
	data := make([]float64, rows*cols)
	for i := range data {
		data[i] = float64(i%7) / 7
	}
	return mat.NewDense(rows, cols, data), mat.NewVecDense(rows, nil)
}

func TestTimeLimitFlagStopsTraining(t *testing.T) {
	assert.Empty(t, trainerOptions(0))

	cfg := config.Default()
	cfg.InputSize = 6
	cfg.CodeSize1 = 3
	cfg.BatchSize = 4
	cfg.Epochs = 2
	cfg.ModelDir = t.TempDir()

	var fold store.Fold
	fold.XTrain, fold.YTrain = uniformFold(8, 6)
	fold.XValid, fold.YValid = uniformFold(4, 6)
	fold.XTest, fold.YTest = uniformFold(4, 6)

	logger, _ := log.NewTestLogger(log.LevelWarn)
	opts := append(trainerOptions(time.Nanosecond), train.WithLogger(logger))
	require.Len(t, opts, 2)

	tr, err := train.NewTrainer(cfg, nil, config.Device{Name: config.DeviceCPU, Workers: 1}, opts...)
	require.NoError(t, err)

	exp := experiment.Experiment{Derivative: experiment.CC200, Population: experiment.Whole}
	h, err := tr.FitFold(context.Background(), exp, "0", &fold)
	require.Error(t, err)
	assert.True(t, errors.Is(err, train.ErrTimeLimit))
	assert.Equal(t, 1, h.Len(train.PhaseTrain))
}
