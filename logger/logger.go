// Package logger builds the zap loggers of the harness.
package logger

import (
	"io"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/afero"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Options selects the level and encoding of a logger.
type Options struct {
	Level zapcore.Level
	// Console selects the human readable encoder instead of JSON.
	Console bool
}

func encoder(console bool) zapcore.Encoder {
	config := zap.NewProductionEncoderConfig()
	config.EncodeTime = zapcore.RFC3339TimeEncoder
	if console {
		config.EncodeLevel = zapcore.CapitalLevelEncoder
		return zapcore.NewConsoleEncoder(config)
	}
	return zapcore.NewJSONEncoder(config)
}

// New returns a logger writing entries at or above opts.Level, errors to
// stderr and everything else to stdout.
func New(opts Options) *zap.Logger {
	return NewWriters(opts, os.Stdout, os.Stderr)
}

// NewWriters is New with explicit destinations.
func NewWriters(opts Options, stdout, stderr io.Writer) *zap.Logger {
	isErrorLevel := zap.LevelEnablerFunc(func(lvl zapcore.Level) bool {
		return lvl >= zapcore.ErrorLevel && lvl >= opts.Level
	})
	isInfoLevel := zap.LevelEnablerFunc(func(lvl zapcore.Level) bool {
		return lvl < zapcore.ErrorLevel && lvl >= opts.Level
	})
	enc := encoder(opts.Console)
	core := zapcore.NewTee(
		zapcore.NewCore(enc, zapcore.Lock(zapcore.AddSync(stderr)), isErrorLevel),
		zapcore.NewCore(enc, zapcore.Lock(zapcore.AddSync(stdout)), isInfoLevel),
	)
	return zap.New(core, zap.AddCaller())
}

// File is a log file attached to a logger.
type File struct {
	f afero.File
}

// Close flushes and closes the file.
func (f *File) Close() error {
	if err := f.f.Sync(); err != nil {
		f.f.Close()
		return errors.Wrap(err, "sync log file")
	}
	return errors.Wrap(f.f.Close(), "close log file")
}

// AttachFile returns a logger that writes every entry of base, plus JSON
// entries at or above level, appended to path on fs.
func AttachFile(base *zap.Logger, fs afero.Fs, path string, level zapcore.Level) (*zap.Logger, *File, error) {
	f, err := fs.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0644)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "open log file %s", path)
	}
	core := zapcore.NewCore(encoder(false), zapcore.Lock(zapcore.AddSync(f)), level)
	log := base.WithOptions(zap.WrapCore(func(c zapcore.Core) zapcore.Core {
		return zapcore.NewTee(c, core)
	}))
	return log, &File{f: f}, nil
}

// ParseLevel parses a level name such as "debug" or "info".
func ParseLevel(s string) (zapcore.Level, error) {
	var l zapcore.Level
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return l, errors.Wrapf(err, "log level %q", s)
	}
	return l, nil
}
