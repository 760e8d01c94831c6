package train

import (
	"time"

	"github.com/YuminosukeSato/scigo-abide/autoencoder"
	"github.com/YuminosukeSato/scigo-abide/pkg/errors"
	"github.com/YuminosukeSato/scigo-abide/pkg/log"
)

// Event describes one recorded batch loss.
type Event struct {
	Phase   Phase
	Entry   Entry
	Loss    autoencoder.Loss
	Elapsed time.Duration // since the start of the fold
}

// Callback is invoked for every recorded batch loss. A returned error aborts
// the sweep.
type Callback func(ev *Event) error

var lossMessages = map[Phase]string{
	PhaseTrain:      "Train loss",
	PhaseValidation: "Validation loss",
	PhaseTest:       "Test loss",
}

// LogLoss logs every batch loss at Info, one line per batch, with the phase
// in the message and under log.PhaseKey.
func LogLoss(logger log.Logger) Callback {
	return func(ev *Event) error {
		args := []any{
			log.ExperimentKey, ev.Entry.Experiment,
			log.FoldKey, ev.Entry.Fold,
			log.PhaseKey, string(ev.Phase),
			log.EpochKey, ev.Entry.Epoch,
			log.BatchKey, ev.Entry.Batch,
			log.LossKey, ev.Entry.Loss,
			log.PenaltyKey, ev.Loss.Penalty,
		}
		logger.Info(lossMessages[ev.Phase], args...)
		return nil
	}
}

// Record appends every event to h.
func Record(h *History) Callback {
	return func(ev *Event) error {
		h.Append(ev.Phase, ev.Entry)
		return nil
	}
}

// ErrTimeLimit is returned by TimeLimit once the budget is spent.
var ErrTimeLimit = errors.New("training time limit reached")

// TimeLimit aborts the sweep once maxDuration has passed since the callback
// was created.
func TimeLimit(maxDuration time.Duration) Callback {
	start := time.Now()
	return func(ev *Event) error {
		if time.Since(start) > maxDuration {
			return errors.Wrapf(ErrTimeLimit, "after %s at %s fold %s epoch %d batch %d",
				maxDuration, ev.Entry.Experiment, ev.Entry.Fold, ev.Entry.Epoch, ev.Entry.Batch)
		}
		return nil
	}
}
