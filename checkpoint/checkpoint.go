package checkpoint

import (
	"path/filepath"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/neurlang/harness/artifact"
	"github.com/neurlang/harness/learning/adam"
	"github.com/neurlang/harness/net/feedforward"
	"github.com/neurlang/harness/record"
)

// BundleVersion is the current checkpoint bundle version.
const BundleVersion = 1

// FileName is the bundle file inside an epoch entry.
const FileName = "checkpoint"

// Bundle is everything needed to continue training after an epoch.
type Bundle struct {
	Version   int                `json:"version"`
	Epoch     int                `json:"epoch"`
	Model     feedforward.Record `json:"model"`
	Optimizer adam.Record        `json:"optimizer"`
}

// Checkpointer writes and reads the bundles of one artifact directory.
type Checkpointer struct {
	dir artifact.Dir
	log *zap.Logger
}

// New creates the train subdirectory of dir if needed and returns a
// checkpointer bound to it.
func New(dir artifact.Dir, log *zap.Logger) (*Checkpointer, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if err := dir.Fs.MkdirAll(dir.TrainPath(), 0755); err != nil {
		return nil, &artifact.DirectoryError{Path: dir.TrainPath(), Err: err}
	}
	return &Checkpointer{dir: dir, log: log}, nil
}

// Path returns the bundle path of epoch.
func (c *Checkpointer) Path(epoch int) string {
	return filepath.Join(c.dir.EpochPath(epoch), FileName)
}

// Save writes the bundle of epoch. Leftovers of an unfinished earlier write
// of the same entry are removed first. The bundle appears under its final
// name only once fully written.
func (c *Checkpointer) Save(epoch int, net *feedforward.FeedforwardNetwork, opt *adam.Adam) error {
	path := c.Path(epoch)
	if err := c.dir.Fs.RemoveAll(c.dir.EpochPath(epoch)); err != nil {
		return &artifact.ModelSaveError{Path: path, Err: errors.Wrap(err, "clear entry")}
	}
	b := Bundle{
		Version:   BundleVersion,
		Epoch:     epoch,
		Model:     net.Record(),
		Optimizer: opt.Record(),
	}
	if err := record.Save(c.dir.Fs, path, b); err != nil {
		return &artifact.ModelSaveError{Path: path, Err: err}
	}
	c.log.Debug("checkpoint saved", zap.Int("epoch", epoch), zap.String("path", path))
	return nil
}

// Load restores net and opt from the bundle of epoch.
func (c *Checkpointer) Load(epoch int, net *feedforward.FeedforwardNetwork, opt *adam.Adam) error {
	path := c.Path(epoch)
	var b Bundle
	if err := record.Load(c.dir.Fs, path, &b); err != nil {
		return &artifact.ModelLoadError{Path: path, Err: err}
	}
	if b.Version != BundleVersion {
		return &artifact.ModelLoadError{Path: path, Err: errors.Errorf("unsupported bundle version %d", b.Version)}
	}
	if b.Epoch != epoch {
		return &artifact.ModelLoadError{Path: path, Err: errors.Errorf("bundle holds epoch %d", b.Epoch)}
	}
	if err := net.LoadRecord(b.Model); err != nil {
		return &artifact.ModelLoadError{Path: path, Err: err}
	}
	if err := opt.LoadRecord(b.Optimizer); err != nil {
		return &artifact.ModelLoadError{Path: path, Err: err}
	}
	c.log.Debug("checkpoint loaded", zap.Int("epoch", epoch), zap.Int("optimizer_steps", opt.Steps()))
	return nil
}
