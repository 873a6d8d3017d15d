package trainer

import (
	"context"
	"io"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/neurlang/harness/checkpoint"
	"github.com/neurlang/harness/dataloader"
	"github.com/neurlang/harness/learning"
	"github.com/neurlang/harness/learning/adam"
	"github.com/neurlang/harness/metrics"
	"github.com/neurlang/harness/seed"
)

// Batches produces the batches of one epoch.
type Batches[B any] interface {
	Iter(epoch int) *dataloader.Iterator[B]
}

// Learner trains a task epoch by epoch and checkpoints after every epoch.
type Learner[B any] struct {
	Task         learning.Task[B]
	Optimizer    *adam.Adam
	Checkpointer *checkpoint.Checkpointer
	Observers    []metrics.Observer
	Seed         seed.Seed
	LearningRate float64
	NumEpochs    int
	Log          *zap.Logger
}

// Resume restores the model and optimizer from the checkpoint of epoch.
func (l *Learner[B]) Resume(epoch int) error {
	return l.Checkpointer.Load(epoch, l.Task.Model(), l.Optimizer)
}

// Fit runs epochs start through NumEpochs. Each epoch trains on every batch
// of train, then evaluates every batch of valid, then writes a checkpoint.
func (l *Learner[B]) Fit(ctx context.Context, train, valid Batches[B], start int) error {
	for epoch := start; epoch <= l.NumEpochs; epoch++ {
		if err := l.trainEpoch(ctx, train, epoch); err != nil {
			return errors.Wrapf(err, "epoch %d: train", epoch)
		}
		if err := l.validEpoch(ctx, valid, epoch); err != nil {
			return errors.Wrapf(err, "epoch %d: valid", epoch)
		}
		if err := l.Checkpointer.Save(epoch, l.Task.Model(), l.Optimizer); err != nil {
			return err
		}
		l.Log.Info("epoch complete", zap.Int("epoch", epoch), zap.Int("num_epochs", l.NumEpochs))
	}
	return nil
}

func (l *Learner[B]) trainEpoch(ctx context.Context, train Batches[B], epoch int) error {
	it := train.Iter(epoch)
	defer it.Close()
	rng := l.Seed.Stream(seed.Dropout, epoch)
	model := l.Task.Model()
	for i := 1; ; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		batch, err := it.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}
		out, err := l.Task.TrainStep(batch, rng)
		if err != nil {
			return err
		}
		if err := l.Optimizer.Step(model.Params(out.Grads), l.LearningRate); err != nil {
			return err
		}
		l.notify(metrics.Train, epoch, i, out.Item)
	}
	l.epochEnd(metrics.Train, epoch)
	return nil
}

func (l *Learner[B]) validEpoch(ctx context.Context, valid Batches[B], epoch int) error {
	it := valid.Iter(epoch)
	defer it.Close()
	for i := 1; ; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		batch, err := it.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}
		out, err := l.Task.ValidStep(batch)
		if err != nil {
			return err
		}
		l.notify(metrics.Valid, epoch, i, out)
	}
	l.epochEnd(metrics.Valid, epoch)
	return nil
}

func (l *Learner[B]) notify(phase metrics.Phase, epoch, iteration int, out learning.Output) {
	e := metrics.Event{
		Phase:        phase,
		Epoch:        epoch,
		NumEpochs:    l.NumEpochs,
		Iteration:    iteration,
		Items:        out.Len(),
		Loss:         out.Loss(),
		Output:       out.Output(),
		LearningRate: l.LearningRate,
	}
	if c, ok := out.(interface{ Targets() []int }); ok {
		e.Targets = c.Targets()
	}
	for _, o := range l.Observers {
		o.OnBatch(e)
	}
}

func (l *Learner[B]) epochEnd(phase metrics.Phase, epoch int) {
	for _, o := range l.Observers {
		o.OnEpochEnd(phase, epoch)
	}
}
