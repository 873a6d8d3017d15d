package record

import (
	"bytes"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Name   string    `json:"name"`
	Values []float64 `json:"values"`
}

func TestSaveLoad(t *testing.T) {
	fs := afero.NewMemMapFs()
	in := sample{Name: "w", Values: []float64{0.1, -2.5e-9, 3}}
	require.NoError(t, Save(fs, "/a/b/rec", in))

	var out sample
	require.NoError(t, Load(fs, "/a/b/rec", &out))
	assert.Equal(t, in, out)

	ok, err := afero.Exists(fs, "/a/b/rec.tmp")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestEncodeDeterministic(t *testing.T) {
	var a, b bytes.Buffer
	in := sample{Name: "w", Values: []float64{1.0 / 3, 2.0 / 3}}
	require.NoError(t, Encode(&a, in))
	require.NoError(t, Encode(&b, in))
	assert.Equal(t, a.Bytes(), b.Bytes())
}

func TestLoadCorrupt(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/rec", []byte("not snappy"), 0644))

	var out sample
	assert.Error(t, Load(fs, "/rec", &out))
	assert.Error(t, Load(fs, "/missing", &out))
}
