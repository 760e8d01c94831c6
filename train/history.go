package train

import "github.com/YuminosukeSato/scigo-abide/pkg/log"

// Phase is the split a loss was measured on.
type Phase string

const (
	PhaseTrain      Phase = log.PhaseTrain
	PhaseValidation Phase = log.PhaseValidation
	PhaseTest       Phase = log.PhaseTest
)

// Phases lists the phases in plotting order.
var Phases = []Phase{PhaseTrain, PhaseValidation, PhaseTest}

// Entry is one recorded batch loss.
type Entry struct {
	Experiment string
	Fold       string
	Epoch      int // -1 for the final test pass
	Batch      int
	Loss       float64
}

// History collects batch losses per phase. Entries keep their experiment
// and fold so curves from different folds can be told apart.
type History struct {
	Train      []Entry
	Validation []Entry
	Test       []Entry
}

// NewHistory returns an empty history.
func NewHistory() *History {
	return &History{}
}

// Append records e under phase.
func (h *History) Append(phase Phase, e Entry) {
	switch phase {
	case PhaseTrain:
		h.Train = append(h.Train, e)
	case PhaseValidation:
		h.Validation = append(h.Validation, e)
	case PhaseTest:
		h.Test = append(h.Test, e)
	}
}

// Entries returns the entries of phase.
func (h *History) Entries(phase Phase) []Entry {
	switch phase {
	case PhaseTrain:
		return h.Train
	case PhaseValidation:
		return h.Validation
	case PhaseTest:
		return h.Test
	}
	return nil
}

// Len returns the number of entries of phase.
func (h *History) Len(phase Phase) int {
	return len(h.Entries(phase))
}

// Values flattens the losses of phase in recording order.
func (h *History) Values(phase Phase) []float64 {
	entries := h.Entries(phase)
	out := make([]float64, len(entries))
	for i, e := range entries {
		out[i] = e.Loss
	}
	return out
}

// Select returns a history restricted to one experiment and fold. An empty
// fold keeps every fold of the experiment.
func (h *History) Select(experiment, fold string) *History {
	keep := func(in []Entry) []Entry {
		var out []Entry
		for _, e := range in {
			if e.Experiment == experiment && (fold == "" || e.Fold == fold) {
				out = append(out, e)
			}
		}
		return out
	}
	return &History{
		Train:      keep(h.Train),
		Validation: keep(h.Validation),
		Test:       keep(h.Test),
	}
}
