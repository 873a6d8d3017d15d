package main

import (
	"encoding/json"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/spf13/afero"

	"github.com/neurlang/harness/artifact"
	"github.com/neurlang/harness/datasets"
	"github.com/neurlang/harness/datasets/isalnum"
	"github.com/neurlang/harness/datasets/mnist"
	"github.com/neurlang/harness/datasets/squareroot"
)

const (
	datasetIsAlnum = "isalnum"
	datasetMNIST   = "mnist"
	defaultSize    = "small"
	// datasetFile records the data a run was trained on, next to config.json.
	datasetFile = "dataset.json"
)

type datasetArgs struct {
	Dataset string `arg:"--dataset" help:"classification dataset: isalnum or mnist"`
	DataDir string `arg:"--data-dir,env:HARNESS_DATA_DIR" help:"directory holding the mnist files"`
	Small   bool   `arg:"--small" help:"downscale mnist images to 13x13"`
	Size    string `arg:"--size" help:"regression dataset size: small, medium or big; defaults to the size the run was trained with, else small"`
}

func defaultDatasetArgs() datasetArgs {
	return datasetArgs{Dataset: datasetIsAlnum}
}

func (a datasetArgs) validate(task string) error {
	if err := validateTask(task); err != nil {
		return err
	}
	if a.Size != "" {
		if _, err := parseSize(a.Size); err != nil {
			return err
		}
	}
	switch a.Dataset {
	case datasetIsAlnum:
	case datasetMNIST:
		if task != taskClassification {
			return errors.New("mnist is a classification dataset")
		}
		if a.DataDir == "" {
			return errors.New("mnist requires --data-dir")
		}
	default:
		return errors.Errorf("unknown dataset %q, want %s or %s", a.Dataset, datasetIsAlnum, datasetMNIST)
	}
	return nil
}

// classification returns the provider with its feature width and class count.
func (a datasetArgs) classification(fs afero.Fs) (datasets.Provider[datasets.ClassificationItem], int, int, error) {
	if a.Dataset == datasetMNIST {
		p, err := mnist.Load(fs, a.DataDir, mnist.Options{Small: a.Small})
		if err != nil {
			return nil, 0, 0, err
		}
		return p, mnist.InputSize(a.Small), mnist.Classes, nil
	}
	return isalnum.New(), isalnum.InputSize, isalnum.Classes, nil
}

func (a datasetArgs) regression() (datasets.Provider[datasets.RegressionItem], uint32) {
	name := a.Size
	if name == "" {
		name = defaultSize
	}
	size, _ := parseSize(name)
	return squareroot.New(size), size
}

type datasetRecord struct {
	Task    string `json:"task"`
	Dataset string `json:"dataset,omitempty"`
	Small   bool   `json:"small,omitempty"`
	Size    string `json:"size,omitempty"`
}

func datasetPath(dir artifact.Dir) string {
	return filepath.Join(dir.Root, datasetFile)
}

func (a datasetArgs) record(task string) datasetRecord {
	if task == taskRegression {
		return datasetRecord{Task: task, Size: a.Size}
	}
	return datasetRecord{Task: task, Dataset: a.Dataset, Small: a.Small}
}

func saveDatasetRecord(dir artifact.Dir, rec datasetRecord) error {
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return errors.Wrap(err, "encode dataset record")
	}
	return errors.Wrap(afero.WriteFile(dir.Fs, datasetPath(dir), append(data, '\n'), 0644), "write dataset record")
}

// loadDatasetRecord returns nil when the run in dir has no record.
func loadDatasetRecord(dir artifact.Dir) (*datasetRecord, error) {
	path := datasetPath(dir)
	ok, err := afero.Exists(dir.Fs, path)
	if err != nil || !ok {
		return nil, err
	}
	data, err := afero.ReadFile(dir.Fs, path)
	if err != nil {
		return nil, err
	}
	var rec datasetRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, errors.Wrapf(err, "dataset record %s", path)
	}
	return &rec, nil
}

// resolveSize fills an unset --size from the record of the run in dir and
// rejects one that disagrees with it, since the features are scaled by size.
func (a *datasetArgs) resolveSize(dir artifact.Dir) error {
	rec, err := loadDatasetRecord(dir)
	if err != nil {
		return err
	}
	switch {
	case rec == nil || rec.Size == "":
		if a.Size == "" {
			a.Size = defaultSize
		}
	case a.Size == "":
		a.Size = rec.Size
	case a.Size != rec.Size:
		return errors.Errorf("run in %s was trained with --size %s, got --size %s", dir.Root, rec.Size, a.Size)
	}
	return nil
}

func parseSize(s string) (uint32, error) {
	switch s {
	case "small":
		return squareroot.Small, nil
	case "medium":
		return squareroot.Medium, nil
	case "big":
		return squareroot.Big, nil
	}
	return 0, errors.Errorf("unknown size %q, want small, medium or big", s)
}
