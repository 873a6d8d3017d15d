package main

import (
	"context"
	"os"

	arg "github.com/alexflint/go-arg"
	"go.uber.org/zap/zapcore"

	"github.com/neurlang/harness/config"
	"github.com/neurlang/harness/datasets/isalnum"
	"github.com/neurlang/harness/logger"
	"github.com/neurlang/harness/trainer"
)

func main() {
	var args struct {
		ArtifactDir string `arg:"--artifact-dir" help:"run directory"`
		Resume      bool   `arg:"--resume" help:"resume training"`
		Epochs      int    `arg:"--epochs"`
	}
	args.ArtifactDir = "is_alnum"
	args.Epochs = 30
	arg.MustParse(&args)

	cfg := config.Default()
	cfg.Model.InputSize = isalnum.InputSize
	cfg.Model.NumClasses = isalnum.Classes
	cfg.NumEpochs = args.Epochs
	cfg.BatchSize = 16
	cfg.LearningRate = 1e-2

	log := logger.New(logger.Options{Level: zapcore.InfoLevel, Console: true})
	defer log.Sync()

	res, err := trainer.TrainClassification(context.Background(), isalnum.New(), cfg, trainer.Options{
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
