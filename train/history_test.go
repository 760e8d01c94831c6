package train

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YuminosukeSato/scigo-abide/autoencoder"
	"github.com/YuminosukeSato/scigo-abide/pkg/log"
)

func TestHistoryAppendAndValues(t *testing.T) {
	h := NewHistory()
	h.Append(PhaseTrain, Entry{Experiment: "cc200_whole", Fold: "0", Loss: 1.5})
	h.Append(PhaseTrain, Entry{Experiment: "cc200_whole", Fold: "1", Loss: 1.0})
	h.Append(PhaseValidation, Entry{Experiment: "cc200_whole", Fold: "0", Loss: 2})
	h.Append(PhaseTest, Entry{Experiment: "aal_whole", Fold: "0", Loss: 3})
	h.Append(Phase("bogus"), Entry{Loss: 9})

	assert.Equal(t, []float64{1.5, 1.0}, h.Values(PhaseTrain))
	assert.Equal(t, []float64{2}, h.Values(PhaseValidation))
	assert.Equal(t, []float64{3}, h.Values(PhaseTest))
	assert.Empty(t, h.Values(Phase("bogus")))

	sel := h.Select("cc200_whole", "0")
	assert.Equal(t, 1, sel.Len(PhaseTrain))
	assert.Equal(t, 1, sel.Len(PhaseValidation))
	assert.Zero(t, sel.Len(PhaseTest))

	assert.Equal(t, 2, h.Select("cc200_whole", "").Len(PhaseTrain))
}

func TestLogLossEveryPhaseAtInfo(t *testing.T) {
	logger, _ := log.NewTestLogger(log.LevelInfo)
	cb := LogLoss(logger)

	require.NoError(t, cb(&Event{Phase: PhaseTrain, Entry: Entry{Experiment: "cc200_whole", Fold: "3", Loss: 0.5}, Loss: autoencoder.Loss{Reconstruction: 0.4, Penalty: 0.1}}))
	require.NoError(t, cb(&Event{Phase: PhaseValidation, Entry: Entry{Experiment: "cc200_whole", Fold: "3", Loss: 0.7}}))
	require.NoError(t, cb(&Event{Phase: PhaseTest, Entry: Entry{Experiment: "cc200_whole", Fold: "3", Epoch: -1, Loss: 0.9}}))

	assert.Equal(t, 1, logger.CountMessages("Train loss"))
	assert.Equal(t, 1, logger.CountMessages("Validation loss"))
	assert.Equal(t, 1, logger.CountMessages("Test loss"))
	assert.True(t, logger.ContainsField(log.PhaseKey, string(PhaseValidation)))
	assert.True(t, logger.ContainsField(log.PhaseKey, string(PhaseTest)))
	assert.True(t, logger.ContainsField(log.FoldKey, "3"))
	assert.True(t, logger.ContainsField(log.LossKey, 0.5))
}
