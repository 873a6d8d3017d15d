package trainer

import (
	"context"
	"math/rand"

	"github.com/pkg/errors"
	"github.com/spf13/afero"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/neurlang/harness/artifact"
	"github.com/neurlang/harness/batcher"
	"github.com/neurlang/harness/checkpoint"
	"github.com/neurlang/harness/config"
	"github.com/neurlang/harness/dataloader"
	"github.com/neurlang/harness/datasets"
	"github.com/neurlang/harness/device"
	"github.com/neurlang/harness/learning"
	"github.com/neurlang/harness/learning/adam"
	"github.com/neurlang/harness/logger"
	"github.com/neurlang/harness/metrics"
	"github.com/neurlang/harness/seed"
)

// Options configures where and how a run executes.
type Options struct {
	ArtifactDir string
	// Fs defaults to the OS filesystem.
	Fs afero.Fs
	// Fresh wipes the artifact directory. Without it an existing directory is resumed.
	Fresh  bool
	Device device.Device
	// Logger defaults to a no-op logger.
	Logger *zap.Logger
	// Observers are notified in addition to the built-in metric recorder.
	Observers []metrics.Observer
}

// Result describes a finished run.
type Result struct {
	// Config is the record the run used, which for a resume is the persisted one.
	Config     config.Training
	Fresh      bool
	FirstEpoch int
	LastEpoch  int
	ModelPath  string
	Summary    metrics.Summary
}

type variant[I, B any] struct {
	task    string
	batcher batcher.Batcher[I, B]
	newTask func(cfg config.Model, rng *rand.Rand) (learning.Task[B], error)
	metrics func() []metrics.Metric
}

// TrainClassification trains a classifier on provider's train split, validating
// on its valid split.
func TrainClassification(ctx context.Context, provider datasets.Provider[datasets.ClassificationItem], cfg config.Training, opts Options) (*Result, error) {
	return run(ctx, variant[datasets.ClassificationItem, batcher.ClassificationBatch]{
		task:    "classification",
		batcher: batcher.NewClassification(opts.Device),
		newTask: func(m config.Model, rng *rand.Rand) (learning.Task[batcher.ClassificationBatch], error) {
			return learning.NewClassification(m, rng)
		},
		metrics: metrics.Classification,
	}, provider, cfg, opts)
}

// TrainRegression trains a regressor on provider's train split, validating on
// its valid split.
func TrainRegression(ctx context.Context, provider datasets.Provider[datasets.RegressionItem], cfg config.Training, opts Options) (*Result, error) {
	return run(ctx, variant[datasets.RegressionItem, batcher.RegressionBatch]{
		task:    "regression",
		batcher: batcher.NewRegression(opts.Device),
		newTask: func(m config.Model, rng *rand.Rand) (learning.Task[batcher.RegressionBatch], error) {
			return learning.NewRegression(m, rng)
		},
		metrics: metrics.Regression,
	}, provider, cfg, opts)
}

func run[I, B any](ctx context.Context, v variant[I, B], provider datasets.Provider[I], cfg config.Training, opts Options) (_ *Result, err error) {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	log = log.With(zap.String("task", v.task), zap.String("artifact_dir", opts.ArtifactDir))
	m := &machine{log: log}
	m.enter(FreshInit, zap.Bool("fresh_requested", opts.Fresh), zap.Stringer("device", opts.Device))
	var file *logger.File
	defer func() {
		if err != nil {
			m.fail(err)
		}
		// after fail, so the failure entry reaches experiment.log
		if file != nil {
			file.Close()
		}
	}()

	if provider == nil || provider.Train() == nil || provider.Valid() == nil {
		return nil, errors.New("dataset provider must supply train and valid splits")
	}

	dir := artifact.New(opts.Fs, opts.ArtifactDir)
	cfg, fresh, err := prepare(dir, opts.Fresh, cfg, log)
	if err != nil {
		return nil, err
	}
	log, file, err = logger.AttachFile(log, dir.Fs, dir.LogPath(), zapcore.InfoLevel)
	if err != nil {
		return nil, &artifact.DirectoryError{Path: dir.LogPath(), Err: err}
	}
	m.log = log
	m.enter(ConfigPersisted, zap.Bool("fresh", fresh), zap.Uint64("seed", cfg.Seed))

	s := seed.New(cfg.Seed)
	train, err := dataloader.New(provider.Train(), v.batcher, dataloader.Options{
		BatchSize: cfg.BatchSize,
		Workers:   cfg.NumWorkers,
		Shuffle:   true,
		Seed:      s,
		Purpose:   seed.TrainShuffle,
	})
	if err != nil {
		return nil, errors.Wrap(err, "train data")
	}
	valid, err := dataloader.New(provider.Valid(), v.batcher, dataloader.Options{
		BatchSize: cfg.BatchSize,
		Workers:   cfg.NumWorkers,
		Shuffle:   true,
		Seed:      s,
		Purpose:   seed.ValidShuffle,
	})
	if err != nil {
		return nil, errors.Wrap(err, "valid data")
	}
	m.enter(DataReady,
		zap.Int("train_items", train.NumItems()),
		zap.Int("valid_items", valid.NumItems()),
		zap.Int("batch_size", cfg.BatchSize),
		zap.Int("workers", cfg.NumWorkers))

	task, err := v.newTask(cfg.Model, s.Stream(seed.Init, 0))
	if err != nil {
		return nil, errors.Wrap(err, "model")
	}
	ckpt, err := checkpoint.New(dir, log)
	if err != nil {
		return nil, err
	}
	recorder := metrics.NewRecorder(log, v.metrics()...)
	learner := &Learner[B]{
		Task:         task,
		Optimizer:    adam.New(cfg.Optimizer),
		Checkpointer: ckpt,
		Observers:    append([]metrics.Observer{recorder}, opts.Observers...),
		Seed:         s,
		LearningRate: cfg.LearningRate,
		NumEpochs:    cfg.NumEpochs,
		Log:          log,
	}
	m.enter(LearnerReady)

	start := 1
	if !fresh {
		last, err := checkpoint.Recover(checkpoint.FsLister{Fs: dir.Fs}, dir)
		if err != nil {
			return nil, err
		}
		if last > 0 {
			if err := learner.Resume(last); err != nil {
				return nil, err
			}
		}
		start = last + 1
		log.Info("resume point", zap.Int("last_epoch", last))
	}

	m.enter(EpochLoop, zap.Int("first_epoch", start), zap.Int("num_epochs", cfg.NumEpochs))
	if err := learner.Fit(ctx, train, valid, start); err != nil {
		return nil, err
	}

	if err := task.Model().WriteCompressedWeightsToFile(dir.Fs, dir.ModelPath()); err != nil {
		return nil, err
	}
	summary := recorder.Summary()
	m.enter(Finalized, zap.String("model", dir.ModelPath()))
	log.Info("summary", zap.String("table", summary.String()))

	last := cfg.NumEpochs
	if start-1 > last {
		last = start - 1
	}
	return &Result{
		Config:     cfg,
		Fresh:      fresh,
		FirstEpoch: start,
		LastEpoch:  last,
		ModelPath:  dir.ModelPath(),
		Summary:    summary,
	}, nil
}
