// Package record implements the compact on-disk encoding of weights and checkpoints:
// JSON compressed with the snappy framing format.
package record

import (
	"bufio"
	"encoding/json"
	"io"
	"os"
	"path/filepath"

	"github.com/golang/snappy"
	"github.com/pkg/errors"
	"github.com/spf13/afero"
)

// Encode writes v to w.
func Encode(w io.Writer, v interface{}) error {
	sw := snappy.NewBufferedWriter(w)
	if err := json.NewEncoder(sw).Encode(v); err != nil {
		sw.Close()
		return errors.Wrap(err, "encode")
	}
	return errors.Wrap(sw.Close(), "compress")
}

// Decode reads one value written by Encode from r into v.
func Decode(r io.Reader, v interface{}) error {
	dec := json.NewDecoder(bufio.NewReader(snappy.NewReader(r)))
	if err := dec.Decode(v); err != nil {
		return errors.Wrap(err, "decode")
	}
	return nil
}

// Save writes v to path on fs. The file is written under a temporary name
// and renamed into place, so path never holds a partial record.
func Save(fs afero.Fs, path string, v interface{}) error {
	if err := fs.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	tmp := path + ".tmp"
	f, err := fs.OpenFile(tmp, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	if err := Encode(f, v); err != nil {
		f.Close()
		fs.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		fs.Remove(tmp)
		return err
	}
	return fs.Rename(tmp, path)
}

// Load reads the record at path on fs into v.
func Load(fs afero.Fs, path string, v interface{}) error {
	f, err := fs.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return Decode(f, v)
}
