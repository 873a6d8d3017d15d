package artifact

import (
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLayout(t *testing.T) {
	d := New(afero.NewMemMapFs(), "/runs/a")
	assert.Equal(t, filepath.Join("/runs/a", "config.json"), d.ConfigPath())
	assert.Equal(t, filepath.Join("/runs/a", "model"), d.ModelPath())
	assert.Equal(t, filepath.Join("/runs/a", "train", "epoch-12"), d.EpochPath(12))
	assert.Equal(t, filepath.Join("/runs/a", "experiment.log"), d.LogPath())
	assert.Equal(t, "epoch-3", EpochName(3))
}

func TestRecreateWipes(t *testing.T) {
	fs := afero.NewMemMapFs()
	d := New(fs, "/runs/a")
	require.NoError(t, afero.WriteFile(fs, "/runs/a/train/epoch-1/checkpoint", []byte("x"), 0644))

	require.NoError(t, d.Recreate())

	ok, err := d.Exists()
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = afero.Exists(fs, "/runs/a/train")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestErrorsUnwrap(t *testing.T) {
	cause := errors.New("boom")
	err := errors.Wrap(&ModelLoadError{Path: "/m", Err: cause}, "resume")

	var mle *ModelLoadError
	require.True(t, errors.As(err, &mle))
	assert.Equal(t, "/m", mle.Path)
	assert.True(t, errors.Is(err, cause))
	assert.Contains(t, err.Error(), "model /m: load failed: boom")
}
