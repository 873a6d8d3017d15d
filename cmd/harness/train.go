package main

import (
	"context"
	"fmt"

	"github.com/neurlang/harness/artifact"
	"github.com/neurlang/harness/config"
	"github.com/neurlang/harness/datasets/squareroot"
	"github.com/neurlang/harness/device"
	"github.com/neurlang/harness/trainer"
)

type trainArgs struct {
	logArgs
	datasetArgs
	Task        string  `arg:"--task,required" help:"classification or regression"`
	ArtifactDir string  `arg:"--artifact-dir,required,env:HARNESS_ARTIFACT_DIR" help:"directory for config, checkpoints and model"`
	Resume      bool    `arg:"--resume" help:"continue the run in artifact-dir using its persisted config"`
	Epochs      int     `arg:"--epochs" help:"number of epochs"`
	BatchSize   int     `arg:"--batch-size" help:"items per batch"`
	Workers     int     `arg:"--workers" help:"data loading goroutines"`
	Seed        uint64  `arg:"--seed" help:"random seed"`
	LR          float64 `arg:"--lr" help:"learning rate"`
	Dropout     float64 `arg:"--dropout" help:"dropout probability"`
	Device      string  `arg:"--device" help:"placement, cpu only"`
}

func newTrainArgs() *trainArgs {
	d := config.Default()
	return &trainArgs{
		logArgs:     defaultLogArgs(),
		datasetArgs: defaultDatasetArgs(),
		Epochs:      d.NumEpochs,
		BatchSize:   d.BatchSize,
		Workers:     d.NumWorkers,
		Seed:        d.Seed,
		LR:          d.LearningRate,
		Dropout:     d.Model.Dropout,
		Device:      "cpu",
	}
}

func (a *trainArgs) Validate() error {
	if err := a.validate(a.Task); err != nil {
		return err
	}
	_, err := device.Parse(a.Device)
	return err
}

func (a *trainArgs) config() config.Training {
	cfg := config.Default()
	cfg.NumEpochs = a.Epochs
	cfg.BatchSize = a.BatchSize
	cfg.NumWorkers = a.Workers
	cfg.Seed = a.Seed
	cfg.LearningRate = a.LR
	cfg.Model.Dropout = a.Dropout
	return cfg
}

func (a *trainArgs) Handle(ctx context.Context, e *env) error {
	log, err := a.logger(e)
	if err != nil {
		return err
	}
	defer log.Sync()
	dev, err := device.Parse(a.Device)
	if err != nil {
		return err
	}
	dir := artifact.New(e.fs, a.ArtifactDir)
	opts := trainer.Options{
		ArtifactDir: a.ArtifactDir,
		Fs:          e.fs,
		Fresh:       !a.Resume,
		Device:      dev,
		Logger:      log,
	}

	cfg := a.config()
	var res *trainer.Result
	switch a.Task {
	case taskClassification:
		provider, inputs, classes, err := a.classification(e.fs)
		if err != nil {
			return err
		}
		cfg.Model.InputSize = inputs
		cfg.Model.NumClasses = classes
		res, err = trainer.TrainClassification(ctx, provider, cfg, opts)
		if err != nil {
			return err
		}
	case taskRegression:
		if a.Resume {
			if err := a.resolveSize(dir); err != nil {
				return err
			}
		} else if a.Size == "" {
			a.Size = defaultSize
		}
		provider, _ := a.regression()
		cfg.Model.InputSize = squareroot.InputSize
		res, err = trainer.TrainRegression(ctx, provider, cfg, opts)
		if err != nil {
			return err
		}
	}
	if err := saveDatasetRecord(dir, a.record(a.Task)); err != nil {
		return err
	}
	fmt.Fprintf(e.stdout, "epochs %d-%d of %d, model %s\n%s",
		res.FirstEpoch, res.LastEpoch, res.Config.NumEpochs, res.ModelPath, res.Summary)
	return nil
}
