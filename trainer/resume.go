package trainer

import (
	"go.uber.org/zap"

	"github.com/neurlang/harness/artifact"
	"github.com/neurlang/harness/config"
)

// prepare makes the directory decision. A fresh run, or a resume of a missing
// directory, recreates dir and persists cfg. Otherwise the persisted record
// replaces cfg. It reports whether the run is fresh.
func prepare(dir artifact.Dir, fresh bool, cfg config.Training, log *zap.Logger) (config.Training, bool, error) {
	exists, err := dir.Exists()
	if err != nil {
		return cfg, false, err
	}
	if fresh || !exists {
		log.Info("starting fresh", zap.Bool("requested", fresh), zap.Bool("existed", exists))
		if err := dir.Recreate(); err != nil {
			return cfg, false, err
		}
		if err := cfg.Save(dir.Fs, dir.ConfigPath()); err != nil {
			return cfg, false, err
		}
		return cfg, true, nil
	}
	loaded, err := config.Load(dir.Fs, dir.ConfigPath())
	if err != nil {
		return cfg, false, err
	}
	log.Info("resuming with persisted config", zap.String("path", dir.ConfigPath()))
	return loaded, false, nil
}
