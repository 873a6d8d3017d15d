package config

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neurlang/harness/artifact"
)

func TestSaveLoadRoundTrip(t *testing.T) {
	fs := afero.NewMemMapFs()
	decay := 1e-3
	records := []Training{
		Default(),
		{
			Model:         Model{Dropout: 0.1, InputSize: 8, NumClasses: 2},
			Optimizer:     Adam{Beta1: 0.8, Beta2: 0.99, Epsilon: 1e-8, WeightDecay: &decay},
			NumEpochs:     3,
			BatchSize:     7,
			NumWorkers:    1,
			Seed:          1<<63 + 5,
			LearningRate:  0.0125,
			StartingEpoch: 2,
		},
	}
	for _, c := range records {
		require.NoError(t, c.Save(fs, "/run/config.json"))
		got, err := Load(fs, "/run/config.json")
		require.NoError(t, err)
		assert.Equal(t, c, got)
	}
}

func TestLoadLegacyDefaults(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/c.json", []byte(`{"model":{"input_size":3},"seed":7}`), 0644))

	got, err := Load(fs, "/c.json")
	require.NoError(t, err)

	want := Default()
	want.Model.InputSize = 3
	want.Seed = 7
	assert.Equal(t, want, got)
	assert.Equal(t, 10, got.NumEpochs)
	assert.Equal(t, 64, got.BatchSize)
	assert.Equal(t, 4, got.NumWorkers)
	assert.Equal(t, 1e-4, got.LearningRate)
	assert.Equal(t, 0, got.StartingEpoch)
	assert.Equal(t, 0.5, got.Model.Dropout)
	assert.Nil(t, got.Optimizer.WeightDecay)
}

func TestLoadDoesNotValidateRanges(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/c.json", []byte(`{"batch_size":0}`), 0644))

	got, err := Load(fs, "/c.json")
	require.NoError(t, err)
	assert.Equal(t, 0, got.BatchSize)
}

func TestLoadErrors(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/corrupt.json", []byte(`{"num_epochs":`), 0644))
	require.NoError(t, afero.WriteFile(fs, "/badtype.json", []byte(`{"num_epochs":"ten"}`), 0644))
	require.NoError(t, afero.WriteFile(fs, "/trailing.json", []byte(`{"seed":1} garbage`), 0644))
	require.NoError(t, afero.WriteFile(fs, "/twice.json", []byte(`{"seed":1}{"seed":2}`), 0644))

	for _, path := range []string{"/missing.json", "/corrupt.json", "/badtype.json", "/trailing.json", "/twice.json"} {
		_, err := Load(fs, path)
		var cle *artifact.ConfigLoadError
		require.True(t, errors.As(err, &cle), path)
		assert.Equal(t, path, cle.Path)
	}
}

func TestUnmarshalAllowsTrailingWhitespace(t *testing.T) {
	c, err := Unmarshal([]byte("{\"seed\":1}\n\t \n"))
	require.NoError(t, err)
	assert.Equal(t, uint64(1), c.Seed)
}

func TestSaveError(t *testing.T) {
	fs := afero.NewReadOnlyFs(afero.NewMemMapFs())
	err := Default().Save(fs, "/c.json")
	var cse *artifact.ConfigSaveError
	require.True(t, errors.As(err, &cse))
}
