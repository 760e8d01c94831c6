package experiment

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseDerivatives(t *testing.T) {
	got := ParseDerivatives([]string{"aal", "bogus", "cc200", "CC200", "dosenbach160"})
	assert.Equal(t, []Derivative{AAL, CC200, Dosenbach160}, got)
	assert.Empty(t, ParseDerivatives(nil))
}

func TestID(t *testing.T) {
	tests := []struct {
		exp  Experiment
		want string
	}{
		{Experiment{Derivative: CC200, Population: Whole}, "cc200_whole"},
		{Experiment{Derivative: AAL, Population: Male}, "aal_male"},
		{Experiment{Derivative: HO, Population: Threshold}, "ho_threshold"},
		{Experiment{Derivative: EZ, Population: LeaveSiteOut, Site: "NYU"}, "ez_leavesiteout-NYU"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.exp.ID())

			parsed, ok := Parse(tt.want)
			assert.True(t, ok)
			assert.Equal(t, tt.exp, parsed)
		})
	}

	for _, bad := range []string{"", "cc200", "xx_whole", "cc200_female", "cc200_leavesiteout-"} {
		_, ok := Parse(bad)
		assert.False(t, ok, bad)
	}
}

func TestBuild(t *testing.T) {
	sites := []string{"NYU", "PITT"}

	got := Build([]Derivative{CC200, AAL}, Selection{Whole: true, LeaveSiteOut: true}, sites)

	ids := make([]string, len(got))
	for i, e := range got {
		ids[i] = e.ID()
	}
	assert.Equal(t, []string{
		"aal_leavesiteout-NYU",
		"aal_leavesiteout-PITT",
		"aal_whole",
		"cc200_leavesiteout-NYU",
		"cc200_leavesiteout-PITT",
		"cc200_whole",
	}, ids)
}

func TestBuildNoSelection(t *testing.T) {
	assert.Empty(t, Build([]Derivative{CC200}, Selection{}, []string{"NYU"}))
	assert.Len(t, Build([]Derivative{CC200}, Selection{Whole: true, Male: true, Threshold: true}, nil), 3)
}

func TestCheckpointPaths(t *testing.T) {
	e := Experiment{Derivative: CC200, Population: Whole}
	got := CheckpointPaths("models", e, "2")

	assert.Equal(t, "cc200_whole_2", FoldID(e, "2"))
	assert.Equal(t, filepath.Join("models", "cc200_whole_2_autoencoder-1.ckpt"), got.Autoencoder1)
	assert.Equal(t, filepath.Join("models", "cc200_whole_2_autoencoder-2.ckpt"), got.Autoencoder2)
	assert.Equal(t, filepath.Join("models", "cc200_whole_2_mlp.ckpt"), got.MLP)
}
