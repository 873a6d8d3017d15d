package main

import (
	"context"
	"os"

	arg "github.com/alexflint/go-arg"
	"go.uber.org/zap/zapcore"

	"github.com/neurlang/harness/config"
	"github.com/neurlang/harness/datasets/squareroot"
	"github.com/neurlang/harness/logger"
	"github.com/neurlang/harness/trainer"
)

func main() {
	var args struct {
		ArtifactDir string `arg:"--artifact-dir" help:"run directory"`
		Resume      bool   `arg:"--resume" help:"resume training"`
		Epochs      int    `arg:"--epochs"`
	}
	args.ArtifactDir = "squareroot"
	args.Epochs = 50
	arg.MustParse(&args)

	cfg := config.Default()
	cfg.Model.InputSize = squareroot.InputSize
	cfg.Model.Dropout = 0.1
	cfg.NumEpochs = args.Epochs
	cfg.BatchSize = 32
	cfg.LearningRate = 1e-2

	log := logger.New(logger.Options{Level: zapcore.InfoLevel, Console: true})
	defer log.Sync()

	res, err := trainer.TrainRegression(context.Background(), squareroot.New(squareroot.Medium), cfg, trainer.Options{
		ArtifactDir: args.ArtifactDir,
		Fresh:       !args.Resume,
		Logger:      log,
	})
	if err != nil {
		println(err.Error())
		os.Exit(1)
	}
	print(res.Summary.String())
}
