package report

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YuminosukeSato/scigo-abide/pkg/errors"
	"github.com/YuminosukeSato/scigo-abide/train"
)

func sampleHistory() *train.History {
	h := train.NewHistory()
	for fold, exp := range []string{"cc200_whole", "aal_male"} {
		f := string(rune('0' + fold))
		for i := 0; i < 10; i++ {
			h.Append(train.PhaseTrain, train.Entry{Experiment: exp, Fold: f, Batch: i, Loss: 1 / float64(i+1)})
		}
		h.Append(train.PhaseValidation, train.Entry{Experiment: exp, Fold: f, Batch: 0, Loss: 0.6})
		h.Append(train.PhaseTest, train.Entry{Experiment: exp, Fold: f, Epoch: -1, Loss: 0.5})
	}
	return h
}

func TestPlotLosses(t *testing.T) {
	for _, name := range []string{"losses.png", "nested/losses.svg"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), name)
			require.NoError(t, PlotLosses(sampleHistory(), path, DefaultWidth, DefaultHeight))

			info, err := os.Stat(path)
			require.NoError(t, err)
			assert.Positive(t, info.Size())
		})
	}
}

func TestPlotLossesSkipsEmptyPhases(t *testing.T) {
	h := train.NewHistory()
	h.Append(train.PhaseTrain, train.Entry{Loss: 1})
	h.Append(train.PhaseTrain, train.Entry{Loss: 0.5})

	p, err := LossPlot(h, "train only")
	require.NoError(t, err)
	assert.NotNil(t, p)
}

func TestPlotLossesEmptyHistory(t *testing.T) {
	err := PlotLosses(train.NewHistory(), filepath.Join(t.TempDir(), "x.png"), DefaultWidth, DefaultHeight)
	assert.True(t, errors.Is(err, errors.ErrEmptyData))
}

func TestPlotPerFold(t *testing.T) {
	dir := t.TempDir()
	paths, err := PlotPerFold(sampleHistory(), dir, ".png", DefaultWidth, DefaultHeight)
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "cc200_whole_0_losses.png"),
		filepath.Join(dir, "aal_male_1_losses.png"),
	}, paths)
	for _, p := range paths {
		assert.FileExists(t, p)
	}
}
