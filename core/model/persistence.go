package model

import (
	"encoding/gob"
	"io"
	"os"
	"path/filepath"

	"github.com/YuminosukeSato/scigo-abide/pkg/errors"
)

// SaveModel gob-encodes v into filename, creating parent directories.
//
//	err := model.SaveModel(ae.Snapshot(), paths.Autoencoder1)
func SaveModel(v interface{}, filename string) error {
	if dir := filepath.Dir(filename); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.Wrapf(err, "failed to create checkpoint directory %s", dir)
		}
	}
	file, err := os.Create(filename)
	if err != nil {
		return errors.Wrapf(err, "failed to create checkpoint %s", filename)
	}
	defer file.Close()

	if err := SaveModelToWriter(v, file); err != nil {
		return errors.Wrapf(err, "failed to write checkpoint %s", filename)
	}
	return nil
}

// LoadModel decodes a gob checkpoint from filename into v (a pointer).
func LoadModel(v interface{}, filename string) error {
	file, err := os.Open(filename)
	if err != nil {
		return errors.Wrapf(err, "failed to open checkpoint %s", filename)
	}
	defer file.Close()

	if err := LoadModelFromReader(v, file); err != nil {
		return errors.Wrapf(err, "failed to read checkpoint %s", filename)
	}
	return nil
}

// SaveModelToWriter gob-encodes v into w.
func SaveModelToWriter(v interface{}, w io.Writer) error {
	if err := gob.NewEncoder(w).Encode(v); err != nil {
		return errors.Wrap(err, "failed to encode model")
	}
	return nil
}

// LoadModelFromReader decodes a gob stream from r into v.
func LoadModelFromReader(v interface{}, r io.Reader) error {
	if err := gob.NewDecoder(r).Decode(v); err != nil {
		return errors.Wrap(err, "failed to decode model")
	}
	return nil
}
