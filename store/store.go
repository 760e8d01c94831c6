// Package store reads and writes the hierarchical experiment/fold data
// store. The layout is a directory tree of HDF5-style groups:
//
//	<root>/patients/<file_id>/attrs.json
//	<root>/patients/<file_id>/<derivative>.vec
//	<root>/experiments/<experiment>/attrs.json
//	<root>/experiments/<experiment>/<fold>/{train,valid,test}
//
// Feature vectors are gonum mat.VecDense binary blobs; split files list one
// file_id per line.
package store

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/scigo-abide/pkg/errors"
)

const (
	patientsGroup    = "patients"
	experimentsGroup = "experiments"
	attrsFile        = "attrs.json"
	vectorExt        = ".vec"
)

// Split names.
const (
	Train = "train"
	Valid = "valid"
	Test  = "test"
)

// Splits lists the split files of every fold.
var Splits = []string{Train, Valid, Test}

// PatientAttrs are the per-subject attributes.
type PatientAttrs struct {
	Y    int    `json:"y"`
	Site string `json:"site,omitempty"`
	Sex  string `json:"sex,omitempty"`
}

// ExperimentAttrs are the per-experiment attributes.
type ExperimentAttrs struct {
	Derivative string `json:"derivative"`
}

// Fold holds the three splits of one fold. Rows of each X match the length
// of the corresponding y.
type Fold struct {
	XTrain *mat.Dense
	YTrain *mat.VecDense
	XValid *mat.Dense
	YValid *mat.VecDense
	XTest  *mat.Dense
	YTest  *mat.VecDense
}

// Store is a read-only handle on a data store.
type Store struct {
	root string
}

// Open opens the store rooted at root.
func Open(root string) (*Store, error) {
	info, err := os.Stat(filepath.Join(root, experimentsGroup))
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open data store %s", root)
	}
	if !info.IsDir() {
		return nil, errors.Wrapf(errors.ErrMalformedInput, "%s is not a data store", root)
	}
	return &Store{root: root}, nil
}

// Root returns the store directory.
func (s *Store) Root() string {
	return s.root
}

// Experiments lists the stored experiment IDs, sorted.
func (s *Store) Experiments() ([]string, error) {
	return listDirs(filepath.Join(s.root, experimentsGroup))
}

// Folds lists the folds of an experiment, numeric names in numeric order.
func (s *Store) Folds(experiment string) ([]string, error) {
	dir := filepath.Join(s.root, experimentsGroup, experiment)
	if _, err := os.Stat(dir); err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewNotFoundError("experiment", experiment)
		}
		return nil, errors.Wrapf(err, "failed to stat experiment %s", experiment)
	}
	folds, err := listDirs(dir)
	if err != nil {
		return nil, err
	}
	sortFolds(folds)
	return folds, nil
}

// ExperimentAttrs reads the attributes of an experiment.
func (s *Store) ExperimentAttrs(experiment string) (ExperimentAttrs, error) {
	var attrs ExperimentAttrs
	path := filepath.Join(s.root, experimentsGroup, experiment, attrsFile)
	if err := readJSON(path, &attrs); err != nil {
		if os.IsNotExist(errors.UnwrapAll(err)) {
			return attrs, errors.NewNotFoundError("experiment", experiment)
		}
		return attrs, err
	}
	return attrs, nil
}

// SplitIDs reads the file_ids of one split of a fold.
func (s *Store) SplitIDs(experiment, fold, split string) ([]string, error) {
	path := filepath.Join(s.root, experimentsGroup, experiment, fold, split)
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewNotFoundError("fold", experiment+"/"+fold+"/"+split)
		}
		return nil, errors.Wrapf(err, "failed to open split %s", path)
	}
	defer f.Close()

	var ids []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		if id := strings.TrimSpace(sc.Text()); id != "" {
			ids = append(ids, id)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrapf(err, "failed to read split %s", path)
	}
	return ids, nil
}

// Patient reads the attributes and features of one subject.
func (s *Store) Patient(fileID, derivative string) (PatientAttrs, *mat.VecDense, error) {
	var attrs PatientAttrs
	dir := filepath.Join(s.root, patientsGroup, fileID)
	if err := readJSON(filepath.Join(dir, attrsFile), &attrs); err != nil {
		if os.IsNotExist(errors.UnwrapAll(err)) {
			return attrs, nil, errors.NewNotFoundError("patient", fileID)
		}
		return attrs, nil, err
	}

	raw, err := os.ReadFile(filepath.Join(dir, derivative+vectorExt))
	if err != nil {
		if os.IsNotExist(err) {
			return attrs, nil, errors.NewNotFoundError("derivative", fileID+"/"+derivative)
		}
		return attrs, nil, errors.Wrapf(err, "failed to read features of %s", fileID)
	}
	var v mat.VecDense
	if err := v.UnmarshalBinary(raw); err != nil {
		return attrs, nil, errors.Wrapf(err, "failed to decode features of %s", fileID)
	}
	return attrs, &v, nil
}

// LoadFold loads the train/validation/test matrices and labels of a fold.
func (s *Store) LoadFold(experiment, fold string) (*Fold, error) {
	attrs, err := s.ExperimentAttrs(experiment)
	if err != nil {
		return nil, err
	}

	out := &Fold{}
	for _, split := range Splits {
		ids, err := s.SplitIDs(experiment, fold, split)
		if err != nil {
			return nil, err
		}
		X, y, err := s.loadSplit(ids, attrs.Derivative)
		if err != nil {
			return nil, errors.Wrapf(err, "%s/%s/%s", experiment, fold, split)
		}
		switch split {
		case Train:
			out.XTrain, out.YTrain = X, y
		case Valid:
			out.XValid, out.YValid = X, y
		case Test:
			out.XTest, out.YTest = X, y
		}
	}
	return out, nil
}

func (s *Store) loadSplit(ids []string, derivative string) (*mat.Dense, *mat.VecDense, error) {
	if len(ids) == 0 {
		return nil, nil, errors.ErrEmptyData
	}

	var X *mat.Dense
	y := mat.NewVecDense(len(ids), nil)
	for i, id := range ids {
		attrs, features, err := s.Patient(id, derivative)
		if err != nil {
			return nil, nil, err
		}
		if X == nil {
			X = mat.NewDense(len(ids), features.Len(), nil)
		}
		if _, cols := X.Dims(); features.Len() != cols {
			return nil, nil, errors.NewDimensionError("store.LoadFold", cols, features.Len(), 1)
		}
		X.SetRow(i, features.RawVector().Data)
		y.SetVec(i, float64(attrs.Y))
	}
	if err := errors.CheckMatrix("store.LoadFold", X, 0); err != nil {
		return nil, nil, err
	}
	return X, y, nil
}

func readJSON(path string, v interface{}) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return errors.WithStack(err)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return errors.Wrapf(err, "failed to decode %s", path)
	}
	return nil
}

func listDirs(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to list %s", dir)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

func sortFolds(folds []string) {
	sort.SliceStable(folds, func(i, j int) bool {
		a, errA := strconv.Atoi(folds[i])
		b, errB := strconv.Atoi(folds[j])
		if errA == nil && errB == nil {
			return a < b
		}
		if (errA == nil) != (errB == nil) {
			return errA == nil
		}
		return folds[i] < folds[j]
	})
}
