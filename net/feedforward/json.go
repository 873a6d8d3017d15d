package feedforward

import (
	"github.com/pkg/errors"
	"github.com/spf13/afero"
	"gonum.org/v1/gonum/mat"

	"github.com/neurlang/harness/artifact"
	"github.com/neurlang/harness/layer"
	"github.com/neurlang/harness/record"
)

// RecordVersion is the current weight record version.
const RecordVersion = 1

// Record is the serialized form of the learned parameters.
type Record struct {
	Version    int       `json:"version"`
	InputSize  int       `json:"input_size"`
	OutputSize int       `json:"output_size"`
	Weight     []float64 `json:"weight"`
	Bias       []float64 `json:"bias"`
}

// Record snapshots the learned parameters.
func (f *FeedforwardNetwork) Record() Record {
	return Record{
		Version:    RecordVersion,
		InputSize:  f.InputSize(),
		OutputSize: f.OutputSize(),
		Weight:     append([]float64(nil), f.linear.Weight.RawMatrix().Data...),
		Bias:       append([]float64(nil), f.linear.Bias...),
	}
}

// LoadRecord replaces the learned parameters. A record whose shape disagrees
// with the network's topology is a *layer.ShapeMismatchError.
func (f *FeedforwardNetwork) LoadRecord(r Record) error {
	if r.Version != RecordVersion {
		return errors.Errorf("weights: unsupported record version %d", r.Version)
	}
	if r.InputSize != f.InputSize() {
		return &layer.ShapeMismatchError{Layer: "weights", What: "input", Want: f.InputSize(), Got: r.InputSize}
	}
	if r.OutputSize != f.OutputSize() {
		return &layer.ShapeMismatchError{Layer: "weights", What: "output", Want: f.OutputSize(), Got: r.OutputSize}
	}
	if len(r.Weight) != r.InputSize*r.OutputSize {
		return &layer.ShapeMismatchError{Layer: "weights", What: "weight length", Want: r.InputSize * r.OutputSize, Got: len(r.Weight)}
	}
	if len(r.Bias) != r.OutputSize {
		return &layer.ShapeMismatchError{Layer: "weights", What: "bias length", Want: r.OutputSize, Got: len(r.Bias)}
	}
	f.linear.Weight = mat.NewDense(r.InputSize, r.OutputSize, append([]float64(nil), r.Weight...))
	f.linear.Bias = append([]float64(nil), r.Bias...)
	return nil
}

// WriteCompressedWeightsToFile writes the model weights to a compressed record file
func (f *FeedforwardNetwork) WriteCompressedWeightsToFile(fs afero.Fs, name string) error {
	if err := record.Save(fs, name, f.Record()); err != nil {
		return &artifact.ModelSaveError{Path: name, Err: err}
	}
	return nil
}

// ReadCompressedWeightsFromFile reads the model weights from a compressed record file
func (f *FeedforwardNetwork) ReadCompressedWeightsFromFile(fs afero.Fs, name string) error {
	var r Record
	if err := record.Load(fs, name, &r); err != nil {
		return &artifact.ModelLoadError{Path: name, Err: err}
	}
	if err := f.LoadRecord(r); err != nil {
		return &artifact.ModelLoadError{Path: name, Err: err}
	}
	return nil
}
