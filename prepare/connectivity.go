package prepare

import (
	"bufio"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/YuminosukeSato/scigo-abide/pkg/errors"
)

// FeatureSize returns the connectivity vector length for n ROIs.
func FeatureSize(rois int) int {
	return rois * (rois - 1) / 2
}

// Connectivity computes the Pearson correlation between every pair of ROI
// columns of ts (time points × ROIs) and returns the strict lower triangle
// in row-major order. Undefined correlations, e.g. from a constant ROI,
// become 0.
func Connectivity(ts *mat.Dense) ([]float64, error) {
	t, rois := ts.Dims()
	if t < 2 || rois < 2 {
		return nil, errors.NewValueError("prepare.Connectivity",
			"need at least two time points and two ROIs")
	}

	corr := mat.NewSymDense(rois, nil)
	stat.CorrelationMatrix(corr, ts, nil)
	out := make([]float64, 0, FeatureSize(rois))
	nans := 0
	for i := 1; i < rois; i++ {
		for j := 0; j < i; j++ {
			v := corr.At(i, j)
			if math.IsNaN(v) {
				v = 0
				nans++
			}
			out = append(out, v)
		}
	}
	if nans > 0 {
		errors.Warn(errors.NewDataConversionWarning("NaN", "0",
			strconv.Itoa(nans)+" undefined correlations from constant ROI signals"))
	}
	return out, nil
}

// LoadTimeSeries reads an ROI time-series file.
func LoadTimeSeries(path string) (*mat.Dense, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewNotFoundError("time series", path)
		}
		return nil, errors.Wrapf(err, "failed to open time series %s", path)
	}
	defer f.Close()

	ts, err := ReadTimeSeries(f)
	if err != nil {
		return nil, errors.Wrapf(err, "time series %s", path)
	}
	return ts, nil
}

// ReadTimeSeries parses whitespace-separated rows of ROI values, one time
// point per line. Blank lines and lines starting with '#' are skipped.
func ReadTimeSeries(r io.Reader) (*mat.Dense, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	var data []float64
	cols, rows := 0, 0
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		fields := strings.Fields(text)
		if cols == 0 {
			cols = len(fields)
		}
		if len(fields) != cols {
			return nil, errors.Wrapf(errors.ErrMalformedInput,
				"line %d has %d values, expected %d", line, len(fields), cols)
		}
		for _, field := range fields {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, errors.Wrapf(errors.ErrMalformedInput, "line %d: %v", line, err)
			}
			data = append(data, v)
		}
		rows++
	}
	if err := sc.Err(); err != nil {
		return nil, errors.WithStack(err)
	}
	if rows == 0 {
		return nil, errors.ErrEmptyData
	}
	return mat.NewDense(rows, cols, data), nil
}
