package phenotype

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YuminosukeSato/scigo-abide/pkg/errors"
)

const sample = `SUB_ID,FILE_ID,SITE_ID,DX_GROUP,SEX,func_mean_fd,SUB_IN_SMP
50002,Pitt_0050002,PITT,1,1,0.11,1
50003,Pitt_0050003,PITT,2,2,0.31,0
50004,no_filename,PITT,1,1,0.05,1
50601,UM_1_0050272,UM_1,2,1,0.08,1
50602,UM_2_0050382,UM_2,1,2,0.20,1
50772,NYU_0050952,NYU,2,1,,1
`

func TestRead(t *testing.T) {
	tbl, err := Read(strings.NewReader(sample))
	require.NoError(t, err)

	assert.Equal(t, 5, tbl.Len(), "no_filename rows are dropped")

	s, err := tbl.Lookup("Pitt_0050002")
	require.NoError(t, err)
	assert.Equal(t, LabelAutism, s.Label)
	assert.Equal(t, "M", s.Sex)
	assert.Equal(t, "PITT", s.Site)
	assert.InDelta(t, 0.11, s.MeanFD, 1e-12)
	assert.True(t, s.InSample)
	assert.Equal(t, "PITT_1", s.Strat())

	s, err = tbl.Lookup("UM_1_0050272")
	require.NoError(t, err)
	assert.Equal(t, "UM", s.Site, "site suffix is stripped")
	assert.Equal(t, LabelControl, s.Label)
}

func TestThresholdDropsMissingMeanFD(t *testing.T) {
	tbl, err := Read(strings.NewReader("SUB_ID,FILE_ID,SITE_ID,DX_GROUP,SEX,func_mean_fd\n" +
		"1,NYU_0000001,NYU,1,1,\n" +
		"2,NYU_0000002,NYU,2,1,0.5\n" +
		"3,NYU_0000003,NYU,2,1,0.0\n"))
	require.NoError(t, err)

	missing, err := tbl.Lookup("NYU_0000001")
	require.NoError(t, err)
	assert.False(t, missing.HasFD)
	assert.False(t, Threshold(missing))

	kept := tbl.Filter(Threshold)
	assert.Equal(t, 1, kept.Len())
	_, err = kept.Lookup("NYU_0000003")
	assert.NoError(t, err, "a recorded 0.0 is below the cut-off")
}

func TestSites(t *testing.T) {
	tbl, err := Read(strings.NewReader(sample))
	require.NoError(t, err)
	assert.Equal(t, []string{"NYU", "PITT", "UM"}, tbl.Sites())
}

func TestFilters(t *testing.T) {
	tbl, err := Read(strings.NewReader(sample))
	require.NoError(t, err)

	assert.Equal(t, 5, tbl.Filter(Whole).Len())
	assert.Equal(t, 3, tbl.Filter(Male).Len())
	assert.Equal(t, 3, tbl.Filter(Threshold).Len(), "0.20 is kept, 0.31 and a missing value are not")
	assert.Equal(t, 2, tbl.Filter(AtSite("UM")).Len())

	_, err = tbl.Filter(Male).Lookup("Pitt_0050003")
	var nf *errors.NotFoundError
	assert.True(t, errors.As(err, &nf))
}

func TestReadErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"missing column", "SUB_ID,FILE_ID,SITE_ID,SEX\n1,a,b,1\n"},
		{"bad dx group", "SUB_ID,FILE_ID,SITE_ID,DX_GROUP,SEX\n1,a,b,3,1\n"},
		{"bad sex", "SUB_ID,FILE_ID,SITE_ID,DX_GROUP,SEX\n1,a,b,1,x\n"},
		{"bad mean fd", "SUB_ID,FILE_ID,SITE_ID,DX_GROUP,SEX,func_mean_fd\n1,a,b,1,1,abc\n"},
		{"duplicate", "SUB_ID,FILE_ID,SITE_ID,DX_GROUP,SEX\n1,a,b,1,1\n2,a,b,1,1\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Read(strings.NewReader(tt.input))
			assert.Error(t, err)
		})
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pheno.csv")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0o644))

	tbl, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 5, tbl.Len())

	_, err = Load(filepath.Join(t.TempDir(), "missing.csv"))
	assert.Error(t, err)
}
