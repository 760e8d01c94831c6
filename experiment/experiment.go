// Package experiment names the experiment/fold configurations of a sweep and
// the checkpoint paths derived from them.
package experiment

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
)

// Derivative is a brain-atlas feature pipeline.
type Derivative string

// Supported derivatives.
const (
	CC200        Derivative = "cc200"
	AAL          Derivative = "aal"
	EZ           Derivative = "ez"
	HO           Derivative = "ho"
	TT           Derivative = "tt"
	Dosenbach160 Derivative = "dosenbach160"
)

// Derivatives lists the supported atlases in their canonical order.
var Derivatives = []Derivative{CC200, AAL, EZ, HO, TT, Dosenbach160}

// Valid reports whether d is a supported derivative.
func (d Derivative) Valid() bool {
	for _, v := range Derivatives {
		if v == d {
			return true
		}
	}
	return false
}

// ParseDerivatives keeps the supported names in input order and silently
// drops the rest.
func ParseDerivatives(names []string) []Derivative {
	var out []Derivative
	for _, name := range names {
		if d := Derivative(name); d.Valid() {
			out = append(out, d)
		}
	}
	return out
}

// Population is the subject filter of an experiment.
type Population string

// Supported populations.
const (
	Whole        Population = "whole"
	Male         Population = "male"
	Threshold    Population = "threshold"
	LeaveSiteOut Population = "leavesiteout"
)

// Experiment identifies one population/derivative/site configuration.
type Experiment struct {
	Derivative Derivative
	Population Population
	Site       string // only for LeaveSiteOut
}

// ID renders the store key, e.g. "cc200_whole" or "cc200_leavesiteout-NYU".
func (e Experiment) ID() string {
	if e.Population == LeaveSiteOut {
		return fmt.Sprintf("%s_%s-%s", e.Derivative, e.Population, e.Site)
	}
	return fmt.Sprintf("%s_%s", e.Derivative, e.Population)
}

func (e Experiment) String() string {
	return e.ID()
}

// Parse is the inverse of ID.
func Parse(id string) (Experiment, bool) {
	deriv, rest, ok := strings.Cut(id, "_")
	if !ok || !Derivative(deriv).Valid() {
		return Experiment{}, false
	}
	e := Experiment{Derivative: Derivative(deriv)}
	switch pop := Population(rest); pop {
	case Whole, Male, Threshold:
		e.Population = pop
		return e, true
	}
	site, ok := strings.CutPrefix(rest, string(LeaveSiteOut)+"-")
	if !ok || site == "" {
		return Experiment{}, false
	}
	e.Population = LeaveSiteOut
	e.Site = site
	return e, true
}

// Selection mirrors the population flags of the command line.
type Selection struct {
	Whole        bool
	Male         bool
	Threshold    bool
	LeaveSiteOut bool
}

// Build enumerates the experiments for the requested derivatives and
// populations. sites is only consulted for leave-site-out. The result is
// sorted by ID.
func Build(derivatives []Derivative, sel Selection, sites []string) []Experiment {
	var out []Experiment
	for _, d := range derivatives {
		if sel.Whole {
			out = append(out, Experiment{Derivative: d, Population: Whole})
		}
		if sel.Male {
			out = append(out, Experiment{Derivative: d, Population: Male})
		}
		if sel.Threshold {
			out = append(out, Experiment{Derivative: d, Population: Threshold})
		}
		if sel.LeaveSiteOut {
			for _, site := range sites {
				out = append(out, Experiment{Derivative: d, Population: LeaveSiteOut, Site: site})
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID() < out[j].ID() })
	return out
}

// FoldID names one fold of an experiment, e.g. "cc200_whole_3".
func FoldID(e Experiment, fold string) string {
	return fmt.Sprintf("%s_%s", e.ID(), fold)
}

// Checkpoints are the model files of one experiment fold.
type Checkpoints struct {
	Autoencoder1 string
	Autoencoder2 string
	MLP          string
}

// CheckpointPaths computes the three checkpoint files under modelDir.
func CheckpointPaths(modelDir string, e Experiment, fold string) Checkpoints {
	base := FoldID(e, fold)
	return Checkpoints{
		Autoencoder1: filepath.Join(modelDir, base+"_autoencoder-1.ckpt"),
		Autoencoder2: filepath.Join(modelDir, base+"_autoencoder-2.ckpt"),
		MLP:          filepath.Join(modelDir, base+"_mlp.ckpt"),
	}
}
