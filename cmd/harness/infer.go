package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/pkg/errors"

	"github.com/neurlang/harness/artifact"
	"github.com/neurlang/harness/datasets"
	"github.com/neurlang/harness/datasets/isalnum"
	"github.com/neurlang/harness/datasets/squareroot"
	"github.com/neurlang/harness/device"
	"github.com/neurlang/harness/inference"
)

type inferArgs struct {
	datasetArgs
	Task        string `arg:"--task,required" help:"classification or regression"`
	ArtifactDir string `arg:"--artifact-dir,required,env:HARNESS_ARTIFACT_DIR" help:"directory of a finished run"`
	Input       string `arg:"--input" help:"isalnum: a character, mnist: a test image index, regression: a sample number"`
	Eval        bool   `arg:"--eval" help:"evaluate the test split"`
	Workers     int    `arg:"--workers" help:"evaluation goroutines"`
}

func newInferArgs() *inferArgs {
	return &inferArgs{datasetArgs: defaultDatasetArgs(), Workers: device.Threads()}
}

func (a *inferArgs) Validate() error {
	if err := a.validate(a.Task); err != nil {
		return err
	}
	if a.Eval == (a.Input != "") {
		return errors.New("exactly one of --input and --eval is required")
	}
	if a.Input != "" && a.Task == taskClassification && a.Dataset == datasetIsAlnum && len(a.Input) != 1 {
		return errors.Errorf("isalnum input must be a single character, got %q", a.Input)
	}
	return nil
}

func (a *inferArgs) Handle(ctx context.Context, e *env) error {
	dir := artifact.New(e.fs, a.ArtifactDir)
	if a.Task == taskClassification {
		return a.classify(e, dir)
	}
	return a.regress(e, dir)
}

func (a *inferArgs) classify(e *env, dir artifact.Dir) error {
	c, err := inference.LoadClassifier(dir, device.CPU())
	if err != nil {
		return err
	}
	var test datasets.Dataset[datasets.ClassificationItem]
	if a.Eval || a.Dataset == datasetMNIST {
		provider, _, _, err := a.classification(e.fs)
		if err != nil {
			return err
		}
		test = provider.Test()
	}
	if a.Eval {
		rep, err := c.Evaluate(test, a.Workers)
		if err != nil {
			return err
		}
		fmt.Fprintf(e.stdout, "items %d correct %d accuracy %.4f\n", rep.Items, rep.Correct, rep.Accuracy)
		return nil
	}

	item := isalnum.Sample(a.Input[0]).Item()
	if a.Dataset == datasetMNIST {
		n, err := strconv.Atoi(a.Input)
		if err != nil {
			return errors.Wrap(err, "mnist input")
		}
		var ok bool
		if item, ok = test.Get(n); !ok {
			return errors.Errorf("mnist test image %d does not exist", n)
		}
	}
	class, err := c.Predict(item)
	if err != nil {
		return err
	}
	fmt.Fprintf(e.stdout, "%q -> %d\n", a.Input, class)
	return nil
}

func (a *inferArgs) regress(e *env, dir artifact.Dir) error {
	r, err := inference.LoadRegressor(dir, device.CPU())
	if err != nil {
		return err
	}
	if err := a.resolveSize(dir); err != nil {
		return err
	}
	provider, size := a.regression()
	if a.Eval {
		rep, err := r.Evaluate(provider.Test(), a.Workers)
		if err != nil {
			return err
		}
		fmt.Fprintf(e.stdout, "items %d mse %g max error %g\n", rep.Items, rep.MSE, rep.MaxError)
		return nil
	}
	n, err := strconv.ParseUint(a.Input, 10, 32)
	if err != nil {
		return errors.Wrap(err, "regression input")
	}
	item := squareroot.Sample(n).Item(size)
	v, err := r.Predict(item)
	if err != nil {
		return err
	}
	fmt.Fprintf(e.stdout, "%d -> %g (expected %g)\n", n, v, item.Value)
	return nil
}
