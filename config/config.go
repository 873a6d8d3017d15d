// Package config implements the persisted training configuration record
package config

import (
	"bytes"
	"encoding/json"
	"io"

	"github.com/pkg/errors"
	"github.com/spf13/afero"

	"github.com/neurlang/harness/artifact"
)

// Model configures the dropout -> linear topology.
type Model struct {
	Dropout    float64 `json:"dropout"`
	InputSize  int     `json:"input_size"`
	NumClasses int     `json:"num_classes"`
}

// Adam configures the optimizer. WeightDecay is disabled when nil.
type Adam struct {
	Beta1       float64  `json:"beta_1"`
	Beta2       float64  `json:"beta_2"`
	Epsilon     float64  `json:"epsilon"`
	WeightDecay *float64 `json:"weight_decay"`
}

// Training is the hyperparameter record of one run. Once persisted into an
// artifact directory it is the only record a resumed run may use.
type Training struct {
	Model         Model   `json:"model"`
	Optimizer     Adam    `json:"optimizer"`
	NumEpochs     int     `json:"num_epochs"`
	BatchSize     int     `json:"batch_size"`
	NumWorkers    int     `json:"num_workers"`
	Seed          uint64  `json:"seed"`
	LearningRate  float64 `json:"learning_rate"`
	StartingEpoch int     `json:"starting_epoch"`
}

// DefaultModel returns the model defaults.
func DefaultModel() Model {
	return Model{Dropout: 0.5}
}

// DefaultAdam returns the optimizer defaults.
func DefaultAdam() Adam {
	return Adam{Beta1: 0.9, Beta2: 0.999, Epsilon: 1e-5}
}

// Default returns the record every field missing from a loaded file falls back to.
func Default() Training {
	return Training{
		Model:        DefaultModel(),
		Optimizer:    DefaultAdam(),
		NumEpochs:    10,
		BatchSize:    64,
		NumWorkers:   4,
		Seed:         42,
		LearningRate: 1e-4,
	}
}

// Marshal encodes the record in its canonical indented JSON form.
func (c Training) Marshal() ([]byte, error) {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

// Unmarshal decodes data over the defaults.
func Unmarshal(data []byte) (Training, error) {
	c := Default()
	dec := json.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&c); err != nil {
		return Training{}, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return Training{}, errors.New("trailing data after config record")
	}
	return c, nil
}

// Save writes the record to path on fs.
func (c Training) Save(fs afero.Fs, path string) error {
	data, err := c.Marshal()
	if err != nil {
		return &artifact.ConfigSaveError{Path: path, Err: errors.Wrap(err, "encode")}
	}
	if err := afero.WriteFile(fs, path, data, 0644); err != nil {
		return &artifact.ConfigSaveError{Path: path, Err: err}
	}
	return nil
}

// Load reads the record at path on fs.
func Load(fs afero.Fs, path string) (Training, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return Training{}, &artifact.ConfigLoadError{Path: path, Err: err}
	}
	c, err := Unmarshal(data)
	if err != nil {
		return Training{}, &artifact.ConfigLoadError{Path: path, Err: errors.Wrap(err, "decode")}
	}
	return c, nil
}
