// Package checkpoint implements per-epoch checkpoints and the recovery of the
// last completed epoch from an artifact directory.
package checkpoint

import (
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/afero"

	"github.com/neurlang/harness/artifact"
)

// Lister lists the names of the immediate children of a directory.
type Lister interface {
	List(dir string) ([]string, error)
}

// FsLister lists directories on an afero filesystem.
type FsLister struct {
	Fs afero.Fs
}

func (l FsLister) List(dir string) ([]string, error) {
	infos, err := afero.ReadDir(l.Fs, dir)
	if err != nil {
		return nil, err
	}
	names := make([]string, len(infos))
	for i, info := range infos {
		names[i] = info.Name()
	}
	return names, nil
}

// ListerFunc adapts a function to Lister.
type ListerFunc func(dir string) ([]string, error)

func (f ListerFunc) List(dir string) ([]string, error) { return f(dir) }

// ParseEpoch parses a checkpoint entry name "epoch-N" with N a non-negative integer.
func ParseEpoch(name string) (int, bool) {
	rest, ok := strings.CutPrefix(name, artifact.EpochPrefix)
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(rest)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

// LastEpoch returns the largest N among names of the form "epoch-N", or 0.
// Other names are ignored.
func LastEpoch(names []string) int {
	var max int
	for _, name := range names {
		if n, ok := ParseEpoch(name); ok && n > max {
			max = n
		}
	}
	return max
}

// Entry is a checkpoint entry name with its epoch number.
type Entry struct {
	Name  string
	Epoch int
}

// Entries returns the names of the form "epoch-N" with their N, largest first.
func Entries(names []string) []Entry {
	var entries []Entry
	for _, name := range names {
		if n, ok := ParseEpoch(name); ok {
			entries = append(entries, Entry{Name: name, Epoch: n})
		}
	}
	sort.SliceStable(entries, func(i, j int) bool { return entries[i].Epoch > entries[j].Epoch })
	return entries
}

// Complete reports whether the listing of an epoch entry holds a bundle.
func Complete(names []string) bool {
	for _, name := range names {
		if name == FileName {
			return true
		}
	}
	return false
}

// Recover returns the last completed epoch recorded under dir's train
// subdirectory. An epoch entry without a bundle, as left by a write that
// never finished, does not count. A failure to list the train subdirectory
// is a *artifact.DirectoryError.
func Recover(l Lister, dir artifact.Dir) (int, error) {
	names, err := l.List(dir.TrainPath())
	if err != nil {
		return 0, &artifact.DirectoryError{Path: dir.TrainPath(), Err: err}
	}
	for _, e := range Entries(names) {
		files, err := l.List(filepath.Join(dir.TrainPath(), e.Name))
		if err != nil {
			continue
		}
		if Complete(files) {
			return e.Epoch, nil
		}
	}
	return 0, nil
}
