// Package inference predicts with the final model of an artifact directory.
package inference

import (
	"github.com/neurlang/harness/artifact"
	"github.com/neurlang/harness/config"
	"github.com/neurlang/harness/net/feedforward"
	"github.com/neurlang/harness/seed"
)

// load reads the config and final weights of dir into a network with the
// given output width.
func load(dir artifact.Dir, outputs func(config.Model) int) (config.Training, *feedforward.FeedforwardNetwork, error) {
	cfg, err := config.Load(dir.Fs, dir.ConfigPath())
	if err != nil {
		return cfg, nil, err
	}
	net, err := feedforward.New(cfg.Model, outputs(cfg.Model), seed.New(cfg.Seed).Stream(seed.Init, 0))
	if err != nil {
		return cfg, nil, &artifact.ModelLoadError{Path: dir.ModelPath(), Err: err}
	}
	if err := net.ReadCompressedWeightsFromFile(dir.Fs, dir.ModelPath()); err != nil {
		return cfg, nil, err
	}
	return cfg, net, nil
}
