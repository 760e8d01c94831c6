// Package config holds the training configuration of the ABIDE autoencoder
// sweep. Defaults reproduce the reference experiment; a JSON file may
// overlay them and command-line flags override both.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/YuminosukeSato/scigo-abide/pkg/errors"
)

// Config describes one training sweep.
type Config struct {
	// Paths
	PhenotypePath string `json:"phenotype_path"`
	DataDir       string `json:"data_dir"`
	ModelDir      string `json:"model_dir"`
	PlotPath      string `json:"plot_path"`

	// Autoencoder
	InputSize     int     `json:"input_size"`
	CodeSize1     int     `json:"code_size_1"`
	Denoising     bool    `json:"denoising"`
	DenoisingRate float64 `json:"denoising_rate"`

	// Optimisation
	BatchSize     int     `json:"batch_size"`
	LearningRate  float64 `json:"learning_rate"`
	SparseParam   float64 `json:"sparse_param"`
	SparseCoeff   float64 `json:"sparse_coeff"`
	Epochs        int     `json:"epochs"`
	ValidateEvery int     `json:"validate_every"`
	Shuffle       bool    `json:"shuffle"`
	Seed          uint64  `json:"seed"`

	// Execution
	Device   string `json:"device"`
	LogLevel string `json:"log_level"`
}

// Default returns the reference configuration.
func Default() Config {
	return Config{
		PhenotypePath: "./data/ABIDE/phenotypes/Phenotypic_V1_0b_preprocessed1.csv",
		DataDir:       "./data/ABIDE/abide",
		ModelDir:      "./data/ABIDE/models",
		PlotPath:      "./data/ABIDE/losses.png",

		InputSize:     19900,
		CodeSize1:     1000,
		Denoising:     true,
		DenoisingRate: 0.7,

		BatchSize:     100,
		LearningRate:  0.0001,
		SparseParam:   0.2,
		SparseCoeff:   0.5,
		Epochs:        10,
		ValidateEvery: 5,
		Shuffle:       true,
		Seed:          19,

		Device:   DeviceAuto,
		LogLevel: "info",
	}
}

// Load overlays the JSON file at path onto the defaults.
func Load(path string) (Config, error) {
	c := Default()
	f, err := os.Open(path)
	if err != nil {
		return c, errors.Wrapf(err, "failed to open config %s", path)
	}
	defer f.Close()

	dec := json.NewDecoder(f)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&c); err != nil {
		return c, errors.Wrapf(err, "failed to decode config %s", path)
	}
	return c, nil
}

// Save writes the configuration as indented JSON.
func (c Config) Save(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "failed to create config %s", path)
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return errors.Wrap(enc.Encode(c), "failed to encode config")
}

// Validate checks ranges of the numeric parameters.
func (c Config) Validate() error {
	switch {
	case c.InputSize <= 0:
		return errors.NewValidationError("input_size", "must be positive", c.InputSize)
	case c.CodeSize1 <= 0:
		return errors.NewValidationError("code_size_1", "must be positive", c.CodeSize1)
	case c.DenoisingRate < 0 || c.DenoisingRate >= 1:
		return errors.NewValidationError("denoising_rate", "must be in [0, 1)", c.DenoisingRate)
	case c.BatchSize <= 0:
		return errors.NewValidationError("batch_size", "must be positive", c.BatchSize)
	case c.LearningRate <= 0:
		return errors.NewValidationError("learning_rate", "must be positive", c.LearningRate)
	case c.SparseParam <= 0 || c.SparseParam >= 1:
		return errors.NewValidationError("sparse_param", "must be in (0, 1)", c.SparseParam)
	case c.SparseCoeff < 0:
		return errors.NewValidationError("sparse_coeff", "must not be negative", c.SparseCoeff)
	case c.Epochs <= 0:
		return errors.NewValidationError("epochs", "must be positive", c.Epochs)
	case c.ValidateEvery <= 0:
		return errors.NewValidationError("validate_every", "must be positive", c.ValidateEvery)
	}
	if _, err := ParseDevice(c.Device); err != nil {
		return err
	}
	return nil
}

// String renders one "key: value" line per field.
func (c Config) String() string {
	lines := []string{
		"== Config ==",
		fmt.Sprintf("%-14s: %s", "Phenotypes", c.PhenotypePath),
		fmt.Sprintf("%-14s: %s", "DataDir", c.DataDir),
		fmt.Sprintf("%-14s: %s", "ModelDir", c.ModelDir),
		fmt.Sprintf("%-14s: %d -> [%d] -> %d", "Autoencoder", c.InputSize, c.CodeSize1, c.InputSize),
		fmt.Sprintf("%-14s: %v (rate %.2f)", "Denoising", c.Denoising, c.DenoisingRate),
		fmt.Sprintf("%-14s: %d", "BatchSize", c.BatchSize),
		fmt.Sprintf("%-14s: %g", "LearningRate", c.LearningRate),
		fmt.Sprintf("%-14s: rho=%g coeff=%g", "Sparsity", c.SparseParam, c.SparseCoeff),
		fmt.Sprintf("%-14s: %d (validate every %d)", "Epochs", c.Epochs, c.ValidateEvery),
		fmt.Sprintf("%-14s: %s", "Device", c.Device),
	}
	return strings.Join(lines, "\n")
}
