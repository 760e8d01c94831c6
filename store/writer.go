package store

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/scigo-abide/pkg/errors"
)

// Writer populates a data store.
type Writer struct {
	root string
}

// Create creates (or reuses) a store rooted at root.
func Create(root string) (*Writer, error) {
	for _, group := range []string{patientsGroup, experimentsGroup} {
		if err := os.MkdirAll(filepath.Join(root, group), 0o755); err != nil {
			return nil, errors.Wrapf(err, "failed to create data store %s", root)
		}
	}
	return &Writer{root: root}, nil
}

// PutPatient stores the attributes and one derivative's features of a subject.
func (w *Writer) PutPatient(fileID string, attrs PatientAttrs, derivative string, features []float64) error {
	if fileID == "" || strings.ContainsAny(fileID, `/\`) {
		return errors.NewValueError("store.PutPatient", "invalid file id "+fileID)
	}
	if len(features) == 0 {
		return errors.Wrapf(errors.ErrEmptyData, "features of %s", fileID)
	}
	dir := filepath.Join(w.root, patientsGroup, fileID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrapf(err, "failed to create patient %s", fileID)
	}
	if err := writeJSON(filepath.Join(dir, attrsFile), attrs); err != nil {
		return err
	}

	raw, err := mat.NewVecDense(len(features), features).MarshalBinary()
	if err != nil {
		return errors.Wrapf(err, "failed to encode features of %s", fileID)
	}
	return errors.Wrapf(os.WriteFile(filepath.Join(dir, derivative+vectorExt), raw, 0o644),
		"failed to write features of %s", fileID)
}

// PutExperiment creates an experiment group.
func (w *Writer) PutExperiment(experiment, derivative string) error {
	dir := filepath.Join(w.root, experimentsGroup, experiment)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrapf(err, "failed to create experiment %s", experiment)
	}
	return writeJSON(filepath.Join(dir, attrsFile), ExperimentAttrs{Derivative: derivative})
}

// PutFold writes the split files of one fold.
func (w *Writer) PutFold(experiment, fold string, train, valid, test []string) error {
	dir := filepath.Join(w.root, experimentsGroup, experiment, fold)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrapf(err, "failed to create fold %s/%s", experiment, fold)
	}
	for split, ids := range map[string][]string{Train: train, Valid: valid, Test: test} {
		body := strings.Join(ids, "\n")
		if len(ids) > 0 {
			body += "\n"
		}
		if err := os.WriteFile(filepath.Join(dir, split), []byte(body), 0o644); err != nil {
			return errors.Wrapf(err, "failed to write split %s/%s/%s", experiment, fold, split)
		}
	}
	return nil
}

func writeJSON(path string, v interface{}) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return errors.Wrapf(err, "failed to encode %s", path)
	}
	return errors.Wrapf(os.WriteFile(path, raw, 0o644), "failed to write %s", path)
}
