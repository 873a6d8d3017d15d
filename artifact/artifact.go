// Package artifact implements the on-disk layout of a training run
package artifact

import (
	"os"
	"path/filepath"
	"strconv"

	"github.com/pkg/errors"
	"github.com/spf13/afero"
)

const (
	// ConfigFile holds the persisted hyperparameters of the run.
	ConfigFile = "config.json"
	// ModelFile holds the final trained weights.
	ModelFile = "model"
	// TrainDir holds one checkpoint entry per completed epoch.
	TrainDir = "train"
	// EpochPrefix prefixes every checkpoint entry name inside TrainDir.
	EpochPrefix = "epoch-"
	// LogFile collects the log entries of every run in the directory.
	LogFile = "experiment.log"
)

// Dir is the artifact directory of one run, rooted at Root on filesystem Fs.
type Dir struct {
	Fs   afero.Fs
	Root string
}

// New returns the artifact directory root on fs. A nil fs means the OS filesystem.
func New(fs afero.Fs, root string) Dir {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	return Dir{Fs: fs, Root: root}
}

// ConfigPath is {root}/config.json.
func (d Dir) ConfigPath() string {
	return filepath.Join(d.Root, ConfigFile)
}

// ModelPath is {root}/model.
func (d Dir) ModelPath() string {
	return filepath.Join(d.Root, ModelFile)
}

// LogPath is {root}/experiment.log.
func (d Dir) LogPath() string {
	return filepath.Join(d.Root, LogFile)
}

// TrainPath is {root}/train.
func (d Dir) TrainPath() string {
	return filepath.Join(d.Root, TrainDir)
}

// EpochName is the checkpoint entry name of epoch n.
func EpochName(n int) string {
	return EpochPrefix + strconv.Itoa(n)
}

// EpochPath is {root}/train/epoch-n.
func (d Dir) EpochPath(n int) string {
	return filepath.Join(d.TrainPath(), EpochName(n))
}

// Exists reports whether the root exists.
func (d Dir) Exists() (bool, error) {
	ok, err := afero.Exists(d.Fs, d.Root)
	if err != nil {
		return false, &DirectoryError{Path: d.Root, Err: err}
	}
	return ok, nil
}

// Recreate wipes any previous contents of the root and creates it empty.
func (d Dir) Recreate() error {
	if err := d.Fs.RemoveAll(d.Root); err != nil && !os.IsNotExist(err) {
		return &DirectoryError{Path: d.Root, Err: errors.Wrap(err, "wipe")}
	}
	if err := d.Fs.MkdirAll(d.Root, 0755); err != nil {
		return &DirectoryError{Path: d.Root, Err: errors.Wrap(err, "create")}
	}
	return nil
}
